package normalize

import "github.com/KirkDiggler/rpg-muncher/internal/entities"

// systemTemplate returns the default system block for an entity type.
// Parsed values are merged over it so every key the host reads is present.
func systemTemplate(entityType string) map[string]any {
	base := map[string]any{
		"description": map[string]any{"value": "", "chat": "", "unidentified": ""},
		"source":      "",
	}

	switch entityType {
	case entities.TypeNPC:
		base["attributes"] = map[string]any{
			"hp": map[string]any{"value": 0, "max": 0, "formula": ""},
			"ac": map[string]any{"flat": nil, "calc": "natural"},
		}
		base["details"] = map[string]any{
			"type":      map[string]any{"value": "", "subtype": ""},
			"cr":        0,
			"biography": map[string]any{"value": ""},
		}
		return base
	case entities.TypeFeat:
		base["activation"] = map[string]any{"type": "", "cost": 0, "condition": ""}
		base["uses"] = map[string]any{"value": nil, "max": "", "per": nil}
		return base
	case entities.TypeSpell:
		base["level"] = 0
		base["preparation"] = map[string]any{"mode": "innate", "prepared": false}
		return base
	}

	base["quantity"] = 1
	base["weight"] = 0.0
	base["price"] = map[string]any{"value": 0, "denomination": "gp"}
	base["rarity"] = ""
	base["identified"] = true
	base["equipped"] = false
	base["attuned"] = false
	base["attunement"] = ""
	base["proficient"] = false
	base["properties"] = map[string]any{}
	base["uses"] = map[string]any{"value": nil, "max": "", "per": nil}

	switch entityType {
	case entities.TypeWeapon:
		base["damage"] = map[string]any{"parts": []any{}, "versatile": ""}
		base["weaponType"] = ""
	case entities.TypeEquipment:
		base["armor"] = map[string]any{"value": nil, "type": "", "dex": nil}
		base["strength"] = 0
		base["stealth"] = false
	case entities.TypeConsumable:
		base["consumableType"] = ""
	case entities.TypeTool:
		base["toolType"] = ""
	case entities.TypeContainer:
		base["capacity"] = map[string]any{"type": "weight", "value": 0}
	}
	return base
}

// mergeOver writes overlay onto base, recursing into maps present in both.
func mergeOver(base, overlay map[string]any) map[string]any {
	for key, value := range overlay {
		if nested, ok := value.(map[string]any); ok {
			if existing, ok := base[key].(map[string]any); ok {
				base[key] = mergeOver(existing, nested)
				continue
			}
		}
		base[key] = value
	}
	return base
}
