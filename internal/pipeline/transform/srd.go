package transform

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/rpg-muncher/internal/clients/srd"
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

// FlagSRD records the SRD key an entity's rules content came from
const FlagSRD = "ddbimporter.srdKey"

// srdPass replaces the mechanical fields of items that have an SRD version
type srdPass struct {
	table *srd.Table
}

func (p *srdPass) Name() string { return "srd" }

func (p *srdPass) Apply(entity *entities.Entity) (*entities.Entity, error) {
	if entity.Type == entities.TypeNPC || entity.Type == entities.TypeSpell || entity.Type == entities.TypeFeat {
		return entity, nil
	}
	// Homebrew items can reuse SRD names without sharing their rules
	if entity.Flags.GetBool("ddbimporter.isHomebrew") {
		return entity, nil
	}

	ref, ok := p.table.Lookup(entity.Name)
	if !ok {
		return entity, nil
	}

	if entity.System == nil {
		entity.System = map[string]any{}
	}
	entity.System["weight"] = ref.Weight
	if ref.Cost != nil {
		entity.System["price"] = map[string]any{"value": ref.Cost.Quantity, "denomination": ref.Cost.Unit}
	}

	switch {
	case ref.DamageDice != "":
		entity.System["damage"] = map[string]any{
			"parts":     []any{[]any{ref.DamageDice + " + @mod", strings.ToLower(ref.DamageType)}},
			"versatile": "",
		}
		entity.System["weaponType"] = weaponType(ref)
		entity.System["properties"] = weaponProperties(ref.Properties, entity.System["properties"])
	case ref.ArmorClassBase > 0:
		dex := any(nil)
		if !ref.ArmorDexBonus {
			dex = 0
		}
		entity.System["armor"] = map[string]any{
			"value": ref.ArmorClassBase,
			"type":  strings.ToLower(ref.ArmorCategory),
			"dex":   dex,
		}
		entity.System["strength"] = ref.StrengthMinimum
		entity.System["stealth"] = ref.StealthDisadvantage
	}

	entity.EnsureFlags().Set(FlagSRD, ref.Key)
	return entity, nil
}

func weaponType(ref *srd.Reference) string {
	category := "simple"
	if strings.EqualFold(ref.WeaponCategory, "martial") {
		category = "martial"
	}
	if strings.EqualFold(ref.WeaponRange, "ranged") {
		return category + "R"
	}
	return category + "M"
}

var propertyCodes = map[string]string{
	"ammunition": "amm",
	"finesse":    "fin",
	"heavy":      "hvy",
	"light":      "lgt",
	"loading":    "lod",
	"reach":      "rch",
	"special":    "spc",
	"thrown":     "thr",
	"two-handed": "two",
	"versatile":  "ver",
	"monk":       "mnk",
}

// weaponProperties sets SRD property codes, keeping flags such as mgc already present
func weaponProperties(names []string, existing any) map[string]any {
	props := map[string]any{}
	if current, ok := existing.(map[string]any); ok {
		for k, v := range current {
			props[k] = v
		}
	}
	for _, name := range names {
		code, ok := propertyCodes[strings.ToLower(name)]
		if !ok {
			code = fmt.Sprintf("x-%s", strings.ToLower(strings.ReplaceAll(name, " ", "-")))
		}
		props[code] = true
	}
	return props
}
