package effects

import (
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/pkg/idgen"
)

// NewFeatureEffect returns an empty effect for a document. The id is derived
// from the document id and label so repeated imports produce the same id.
func NewFeatureEffect(doc *entities.Entity, label string) *entities.Effect {
	effect := &entities.Effect{
		ID:      EffectID(doc.ID, label),
		Name:    label,
		Icon:    doc.Img,
		Changes: []entities.Change{},
		Flags: entities.Flags{
			"dae": map[string]any{
				"transfer":  false,
				"stackable": "none",
			},
			"ddbimporter": map[string]any{
				"disabled": false,
			},
			"midi-qol": map[string]any{
				"forceCEOff": true,
			},
		},
	}
	effect.SetOriginName(doc.Name)
	return effect
}

// SetTransfer marks whether the effect is copied onto the owning entity
func SetTransfer(effect *entities.Effect, transfer bool) {
	effect.Transfer = transfer
	if effect.Flags == nil {
		effect.Flags = entities.Flags{}
	}
	effect.Flags.Set("dae.transfer", transfer)
}

// EffectID derives a stable effect id
func EffectID(ownerID, label string) string {
	return idgen.Stable(ownerID, "effect", label)
}

func setSystem(doc *entities.Entity, key string, value any) {
	if doc.System == nil {
		doc.System = map[string]any{}
	}
	if nested, ok := value.(map[string]any); ok {
		if existing, ok := doc.System[key].(map[string]any); ok {
			for k, v := range nested {
				existing[k] = v
			}
			return
		}
	}
	doc.System[key] = value
}
