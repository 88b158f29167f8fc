package effects

import (
	"fmt"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/pkg/idgen"
)

// transferEffects copies transfer effects of every sub-item onto entity.
// A copy from an earlier run (same name and origin) is replaced.
func transferEffects(entity *entities.Entity, compendium string) {
	if entity.Effects == nil {
		entity.Effects = []*entities.Effect{}
	}

	for _, item := range entity.SubItems {
		if item == nil {
			continue
		}
		if item.ID == "" {
			item.ID = idgen.Stable(entity.ID, "item", item.Name)
		}
		for _, effect := range item.Effects {
			if effect == nil || !effect.Transfer {
				continue
			}
			if effect.ID == "" {
				effect.ID = EffectID(item.ID, effect.Name)
			}

			copied := effect.Clone()
			copied.ID = idgen.Stable(entity.ID, "transfer", item.ID, effect.ID)
			SetTransfer(copied, false)
			copied.Origin = fmt.Sprintf("Compendium.%s.%s.Item.%s", compendium, entity.ID, item.ID)
			copied.SetOriginName(item.Name)

			replaceOrAppend(entity, copied)
		}
	}
}

func replaceOrAppend(entity *entities.Entity, effect *entities.Effect) {
	for i, existing := range entity.Effects {
		if existing != nil && existing.Name == effect.Name && existing.OriginName() == effect.OriginName() {
			entity.Effects[i] = effect
			return
		}
	}
	entity.Effects = append(entity.Effects, effect)
}
