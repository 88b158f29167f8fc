// Package normalize turns raw source records into canonical entities.
package normalize

//go:generate mockgen -destination=mock/mock_parser.go -package=normalizemock github.com/KirkDiggler/rpg-muncher/internal/pipeline/normalize Parser

import (
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

// Parser converts raw records into entities. It never drops a record: a record
// that cannot be parsed comes back as a minimal entity flagged with the failure.
type Parser interface {
	// ParseInventory converts the wrapped inventory of a parse context into items.
	// The result carries the spells granted by those items as a side channel.
	ParseInventory(ctx *ParseContext) *Result

	// ParseMonsters converts monster records into npc entities with their features as sub-items
	ParseMonsters(records []entities.RawRecord) []*entities.Entity
}

// Result is the output of inventory parsing
type Result struct {
	// Entities has exactly one entry per inventory item, in order
	Entities []*entities.Entity
	// ItemSpells holds one spell stub per distinct spell name granted by an item
	ItemSpells []*entities.Entity
}
