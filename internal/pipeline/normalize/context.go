package normalize

// ClassLevel is one class entry of the owning character
type ClassLevel struct {
	Name  string
	Level int
}

// Modifier is a bonus granted by a component of the owning character.
// ComponentID points at the record that grants it.
type Modifier struct {
	ComponentID int64
	Type        string
	SubType     string
	Value       int
}

// Modifiers groups modifiers by what granted them
type Modifiers struct {
	Race       []Modifier
	Class      []Modifier
	Background []Modifier
	Feat       []Modifier
	Item       []Modifier
	Condition  []Modifier
}

// ParseContext is the minimal owner the inventory parser reads. Only the fields
// the parser touches exist, and every collection is non-nil once built.
type ParseContext struct {
	Classes       []ClassLevel
	Proficiencies []string
	RacialTraits  []string
	Feats         []string
	Modifiers     Modifiers
	Inventory     []InventoryItem
	// Compendium marks the items as compendium entries rather than owned copies
	Compendium bool
}

// TotalLevels sums class levels
func (c *ParseContext) TotalLevels() int {
	total := 0
	for _, class := range c.Classes {
		total += class.Level
	}
	return total
}

// ParseContextBuilder builds a ParseContext with empty defaults
type ParseContextBuilder struct {
	ctx ParseContext
}

// NewParseContextBuilder starts a compendium import context
func NewParseContextBuilder() *ParseContextBuilder {
	return &ParseContextBuilder{ctx: ParseContext{Compendium: true}}
}

// WithInventory sets the items to parse
func (b *ParseContextBuilder) WithInventory(items []InventoryItem) *ParseContextBuilder {
	b.ctx.Inventory = items
	return b
}

// WithProficiencies sets proficiency names
func (b *ParseContextBuilder) WithProficiencies(proficiencies ...string) *ParseContextBuilder {
	b.ctx.Proficiencies = append(b.ctx.Proficiencies, proficiencies...)
	return b
}

// WithItemModifiers adds item-granted modifiers
func (b *ParseContextBuilder) WithItemModifiers(modifiers ...Modifier) *ParseContextBuilder {
	b.ctx.Modifiers.Item = append(b.ctx.Modifiers.Item, modifiers...)
	return b
}

// Build returns the context
func (b *ParseContextBuilder) Build() *ParseContext {
	ctx := b.ctx
	if ctx.Classes == nil {
		ctx.Classes = []ClassLevel{}
	}
	if ctx.Proficiencies == nil {
		ctx.Proficiencies = []string{}
	}
	if ctx.RacialTraits == nil {
		ctx.RacialTraits = []string{}
	}
	if ctx.Feats == nil {
		ctx.Feats = []string{}
	}
	if ctx.Inventory == nil {
		ctx.Inventory = []InventoryItem{}
	}
	ctx.Modifiers = ctx.Modifiers.nonNil()
	return &ctx
}

func (m Modifiers) nonNil() Modifiers {
	orEmpty := func(in []Modifier) []Modifier {
		if in == nil {
			return []Modifier{}
		}
		return in
	}
	return Modifiers{
		Race:       orEmpty(m.Race),
		Class:      orEmpty(m.Class),
		Background: orEmpty(m.Background),
		Feat:       orEmpty(m.Feat),
		Item:       orEmpty(m.Item),
		Condition:  orEmpty(m.Condition),
	}
}
