package transform

import (
	"strings"

	"github.com/KirkDiggler/rpg-muncher/internal/effects"
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

// daePass brings effect records into the shape the dynamic effects module expects
type daePass struct {
	modules effects.Modules
}

func (p *daePass) Name() string { return "dae" }

func (p *daePass) Apply(entity *entities.Entity) (*entities.Entity, error) {
	if !p.modules.DAE {
		return entity, nil
	}
	shimEffects(entity.Effects)
	for _, item := range entity.SubItems {
		if item != nil {
			shimEffects(item.Effects)
		}
	}
	return entity, nil
}

func shimEffects(list []*entities.Effect) {
	for _, effect := range list {
		if effect == nil {
			continue
		}
		if effect.Flags == nil {
			effect.Flags = entities.Flags{}
		}
		effect.Flags.Set("dae.transfer", effect.Transfer)
		if !effect.Flags.Has("dae.stackable") {
			effect.Flags.Set("dae.stackable", "none")
		}
		for i := range effect.Changes {
			// Older records address the system block as "data."
			if strings.HasPrefix(effect.Changes[i].Key, "data.") {
				effect.Changes[i].Key = "system." + strings.TrimPrefix(effect.Changes[i].Key, "data.")
			}
		}
	}
}
