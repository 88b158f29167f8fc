package srd

import "strings"

// Cost is a price in a coin denomination
type Cost struct {
	Quantity int
	Unit     string
}

// Reference is the SRD version of one piece of equipment
type Reference struct {
	Key                 string
	Name                string
	Type                string // "weapon", "armor", "equipment"
	Category            string
	Weight              float64
	Cost                *Cost
	WeaponCategory      string
	WeaponRange         string
	DamageDice          string
	DamageType          string
	Properties          []string
	ArmorCategory       string
	ArmorClassBase      int
	ArmorDexBonus       bool
	StrengthMinimum     int
	StealthDisadvantage bool
}

// Table indexes references by case-insensitive name. It is read-only once built.
type Table struct {
	byName map[string]*Reference
}

// NewTable builds a table; nil references are skipped and the first entry wins on
// duplicate names.
func NewTable(references []*Reference) *Table {
	t := &Table{byName: make(map[string]*Reference, len(references))}
	for _, ref := range references {
		if ref == nil || ref.Name == "" {
			continue
		}
		key := normalizeName(ref.Name)
		if _, exists := t.byName[key]; !exists {
			t.byName[key] = ref
		}
	}
	return t
}

// Lookup finds the reference for name.
func (t *Table) Lookup(name string) (*Reference, bool) {
	if t == nil {
		return nil, false
	}
	ref, ok := t.byName[normalizeName(name)]
	return ref, ok
}

// Len returns the number of indexed references.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byName)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
