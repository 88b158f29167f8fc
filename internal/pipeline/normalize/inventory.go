package normalize

import "github.com/KirkDiggler/rpg-muncher/internal/entities"

// InventoryItem is an owned copy of a raw item definition
type InventoryItem struct {
	ChargesUsed int
	Equipped    bool
	IsAttuned   bool
	Quantity    int
	Definition  entities.RawRecord
}

// WrapInventory wraps every record with default ownership counters.
func WrapInventory(records []entities.RawRecord) []InventoryItem {
	items := make([]InventoryItem, len(records))
	for i, record := range records {
		quantity := record.BundleSize
		if quantity <= 0 {
			quantity = 1
		}
		items[i] = InventoryItem{
			Quantity:   quantity,
			Definition: record,
		}
	}
	return items
}
