package effects

import (
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

// FlagForced marks placeholder effects added for a uniform shape
const FlagForced = "ddbimporter.forced"

// forceEffect gives item a passive placeholder when its text names a
// condition but no effect was synthesized for it.
func forceEffect(_, item *entities.Entity) error {
	if len(item.Effects) > 0 {
		return nil
	}
	conditions := ConditionsIn(item.Description())
	if len(conditions) == 0 {
		return nil
	}

	effect := NewFeatureEffect(item, item.Name)
	effect.Flags.Set(FlagForced, true)
	named := make([]any, len(conditions))
	for i, condition := range conditions {
		named[i] = condition
	}
	effect.Flags.Set("ddbimporter.conditions", named)
	item.PutEffect(effect)
	return nil
}
