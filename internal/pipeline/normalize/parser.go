package normalize

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	"github.com/KirkDiggler/rpg-muncher/internal/pkg/idgen"
)

// Flag paths written by the parser
const (
	FlagDefinitionID = "ddbimporter.definitionId"
	FlagHomebrew     = "ddbimporter.isHomebrew"
	FlagParseError   = "ddbimporter.parseError"
	FlagSources      = "ddbimporter.sources"
	FlagCompendium   = "ddbimporter.compendium"
	FlagItemSpells   = "magicitems.spells"
)

// ParserConfig holds the configuration for creating a parser
type ParserConfig struct {
	// SourceNames maps source ids to book abbreviations for the source field (optional)
	SourceNames map[int]string
}

// Validate ensures the configuration is valid
func (c *ParserConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("parser config is required")
	}
	if c.SourceNames == nil {
		c.SourceNames = map[int]string{}
	}
	return nil
}

type parser struct {
	sourceNames map[int]string
}

// NewParser creates a new parser
func NewParser(cfg *ParserConfig) (Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &parser{sourceNames: cfg.SourceNames}, nil
}

func (p *parser) ParseInventory(ctx *ParseContext) *Result {
	if ctx == nil {
		ctx = NewParseContextBuilder().Build()
	}

	result := &Result{
		Entities:   make([]*entities.Entity, 0, len(ctx.Inventory)),
		ItemSpells: []*entities.Entity{},
	}
	seenSpells := map[string]struct{}{}

	for _, item := range ctx.Inventory {
		entity, err := p.safeParse("item", item.Definition, func() (*entities.Entity, error) {
			return p.parseItem(ctx, item)
		})
		if err != nil {
			slog.Warn("Failed to parse item",
				"name", item.Definition.Name,
				"definition_id", item.Definition.ID,
				"error", err)
		}
		result.Entities = append(result.Entities, entity)

		for _, spell := range item.Definition.ItemSpells {
			if spell.Name == "" {
				continue
			}
			if _, ok := seenSpells[spell.Name]; ok {
				continue
			}
			seenSpells[spell.Name] = struct{}{}
			result.ItemSpells = append(result.ItemSpells, spellStub(spell))
		}
	}

	slog.Info("Parsed inventory",
		"items", len(result.Entities),
		"item_spells", len(result.ItemSpells),
		"total_levels", ctx.TotalLevels())

	return result
}

func (p *parser) ParseMonsters(records []entities.RawRecord) []*entities.Entity {
	out := make([]*entities.Entity, 0, len(records))
	for _, record := range records {
		entity, err := p.safeParse("monster", record, func() (*entities.Entity, error) {
			return p.parseMonster(record)
		})
		if err != nil {
			slog.Warn("Failed to parse monster",
				"name", record.Name,
				"definition_id", record.ID,
				"error", err)
		}
		out = append(out, entity)
	}
	slog.Info("Parsed monsters", "count", len(out))
	return out
}

// safeParse runs parse and falls back to a minimal entity on error or panic
func (p *parser) safeParse(kind string, record entities.RawRecord, parse func() (*entities.Entity, error)) (entity *entities.Entity, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Internalf("panic parsing %s: %v", kind, r)
			entity = minimalEntity(kind, record, err)
		}
	}()

	entity, err = parse()
	if err != nil {
		return minimalEntity(kind, record, err), err
	}
	return entity, nil
}

func (p *parser) parseItem(ctx *ParseContext, item InventoryItem) (*entities.Entity, error) {
	record := item.Definition
	if err := validateRecord(record); err != nil {
		return nil, err
	}

	entityType := itemType(record)
	overlay := map[string]any{
		"description": map[string]any{"value": record.Description},
		"source":      p.sourceLabel(record.Sources),
		"quantity":    item.Quantity,
		"weight":      record.Weight,
		"rarity":      strings.ToLower(strings.ReplaceAll(record.Rarity, " ", "")),
		"equipped":    item.Equipped,
		"attuned":     item.IsAttuned,
		"proficient":  isProficient(ctx.Proficiencies, record),
		"properties":  map[string]any{"mgc": record.Magic},
	}
	if record.CanAttune {
		overlay["attunement"] = "required"
	}
	if bonus := itemBonus(ctx.Modifiers.Item, record.ID); bonus != 0 {
		overlay["bonus"] = bonus
	}

	entity := &entities.Entity{
		ID:     idgen.Stable("item", record.DefinitionID()),
		Name:   record.Name,
		Type:   entityType,
		Img:    record.AvatarURL,
		System: mergeOver(systemTemplate(entityType), overlay),
	}
	p.setProvenance(entity, record, ctx.Compendium)

	if len(record.ItemSpells) > 0 {
		spells := make([]any, 0, len(record.ItemSpells))
		for _, spell := range record.ItemSpells {
			spells = append(spells, map[string]any{
				"name":        spell.Name,
				"level":       spell.Level,
				"consumption": spell.Charges,
			})
		}
		entity.Flags.Set("magicitems.enabled", true)
		entity.Flags.Set(FlagItemSpells, spells)
	}

	return entity, nil
}

func (p *parser) parseMonster(record entities.RawRecord) (*entities.Entity, error) {
	if err := validateRecord(record); err != nil {
		return nil, err
	}

	entity := &entities.Entity{
		ID:   idgen.Stable("monster", record.DefinitionID()),
		Name: record.Name,
		Type: entities.TypeNPC,
		Img:  record.AvatarURL,
		System: mergeOver(systemTemplate(entities.TypeNPC), map[string]any{
			"description": map[string]any{"value": record.Description},
			"source":      p.sourceLabel(record.Sources),
			"details": map[string]any{
				"type":      map[string]any{"value": strings.ToLower(record.Type)},
				"biography": map[string]any{"value": record.Description},
			},
		}),
		SubItems: make([]*entities.Entity, 0, len(record.Features)),
		Effects:  []*entities.Effect{},
	}
	p.setProvenance(entity, record, true)

	for i, feature := range record.Features {
		sub := &entities.Entity{
			ID:   idgen.Stable("monster", record.DefinitionID(), "feature", fmt.Sprint(i), feature.Name),
			Name: feature.Name,
			Type: entities.TypeFeat,
			System: mergeOver(systemTemplate(entities.TypeFeat), map[string]any{
				"description": map[string]any{"value": feature.Description},
				"activation":  map[string]any{"type": activationType(feature.Type)},
			}),
			Effects: []*entities.Effect{},
			Flags:   entities.Flags{},
		}
		if feature.Type == entities.TypeSpell {
			sub.Type = entities.TypeSpell
		}
		entity.SubItems = append(entity.SubItems, sub)
	}

	return entity, nil
}

func (p *parser) setProvenance(entity *entities.Entity, record entities.RawRecord, compendium bool) {
	flags := entity.EnsureFlags()
	flags.Set(FlagDefinitionID, record.DefinitionID())
	flags.Set(FlagHomebrew, record.IsHomebrew)
	flags.Set(FlagCompendium, compendium)
	flags.Set("ddbimporter.dndbeyond.type", record.Type)
	flags.Set("ddbimporter.dndbeyond.filterType", record.FilterType)

	sources := make([]any, 0, len(record.Sources))
	for _, source := range record.Sources {
		entry := map[string]any{"sourceId": source.SourceID}
		if source.PageNumber != nil {
			entry["pageNumber"] = *source.PageNumber
		}
		sources = append(sources, entry)
	}
	flags.Set(FlagSources, sources)
}

func (p *parser) sourceLabel(sources []entities.RawSource) string {
	labels := make([]string, 0, len(sources))
	for _, source := range sources {
		name, ok := p.sourceNames[source.SourceID]
		if !ok {
			continue
		}
		if source.PageNumber != nil {
			name = fmt.Sprintf("%s pg. %d", name, *source.PageNumber)
		}
		labels = append(labels, name)
	}
	return strings.Join(labels, ", ")
}

func validateRecord(record entities.RawRecord) error {
	vb := errors.NewValidationBuilder()
	if record.ID <= 0 {
		vb.RequiredField("id")
	}
	errors.ValidateRequired("name", record.Name, vb)
	if record.BundleSize < 0 {
		vb.Field("bundleSize", "cannot be negative")
	}
	return vb.Build()
}

// minimalEntity keeps a record in the batch when parsing failed
func minimalEntity(kind string, record entities.RawRecord, cause error) *entities.Entity {
	entityType := entities.TypeLoot
	if kind == "monster" {
		entityType = entities.TypeNPC
	}

	id := idgen.Stable(kind, record.DefinitionID())
	if record.ID <= 0 {
		id = idgen.Stable(kind, "name", record.Name)
	}

	entity := &entities.Entity{
		ID:      id,
		Name:    record.Name,
		Type:    entityType,
		System:  systemTemplate(entityType),
		Effects: []*entities.Effect{},
	}
	flags := entity.EnsureFlags()
	flags.Set(FlagDefinitionID, record.DefinitionID())
	flags.Set(FlagHomebrew, record.IsHomebrew)
	flags.Set(FlagParseError, cause.Error())
	return entity
}

func spellStub(spell entities.RawItemSpell) *entities.Entity {
	entity := &entities.Entity{
		ID:   idgen.Stable("spell", fmt.Sprint(spell.SpellID), spell.Name),
		Name: spell.Name,
		Type: entities.TypeSpell,
		System: mergeOver(systemTemplate(entities.TypeSpell), map[string]any{
			"level": spell.Level,
		}),
	}
	entity.EnsureFlags().Set(FlagDefinitionID, fmt.Sprint(spell.SpellID))
	return entity
}

// itemType maps the remote filter type onto the host item types
func itemType(record entities.RawRecord) string {
	filter := strings.ToLower(record.FilterType)
	kind := strings.ToLower(record.Type)

	switch filter {
	case "weapon", "staff":
		return entities.TypeWeapon
	case "armor", "ring", "rod", "wand", "wondrous item":
		if kind == "container" || strings.Contains(kind, "bag") {
			return entities.TypeContainer
		}
		return entities.TypeEquipment
	case "potion", "scroll":
		return entities.TypeConsumable
	}

	switch {
	case kind == "container":
		return entities.TypeContainer
	case strings.Contains(kind, "tool"), strings.Contains(kind, "kit"), strings.Contains(kind, "instrument"):
		return entities.TypeTool
	case kind == "ammunition", kind == "food", kind == "poison":
		return entities.TypeConsumable
	}
	return entities.TypeLoot
}

func activationType(featureType string) string {
	switch strings.ToLower(featureType) {
	case "action":
		return "action"
	case "bonus", "bonus action":
		return "bonus"
	case "reaction":
		return "reaction"
	case "legendary":
		return "legendary"
	case "lair":
		return "lair"
	default:
		return ""
	}
}

func isProficient(proficiencies []string, record entities.RawRecord) bool {
	for _, proficiency := range proficiencies {
		if strings.EqualFold(proficiency, record.Name) || strings.EqualFold(proficiency, record.Type) {
			return true
		}
	}
	return false
}

func itemBonus(modifiers []Modifier, recordID int64) int {
	bonus := 0
	for _, modifier := range modifiers {
		if modifier.ComponentID == recordID && modifier.Type == "bonus" {
			bonus += modifier.Value
		}
	}
	return bonus
}
