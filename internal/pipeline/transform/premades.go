package transform

import (
	"github.com/KirkDiggler/rpg-muncher/internal/effects"
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

// PremadeRules are ready-made effects for common item archetypes
func PremadeRules() []effects.Rule {
	return []effects.Rule{
		{Name: "cloak-of-protection", Match: effects.Exact("Cloak of Protection"), Build: protectionBonus("Cloak of Protection")},
		{Name: "ring-of-protection", Match: effects.Exact("Ring of Protection"), Build: protectionBonus("Ring of Protection")},
		{Name: "bracers-of-defense", Match: effects.Exact("Bracers of Defense"), Build: bracersOfDefense},
		{Name: "potion-of-giant-strength", Match: effects.Prefix("Potion of Giant Strength"), Build: giantStrength},
		{Name: "boots-of-speed", Match: effects.Exact("Boots of Speed"), Build: bootsOfSpeed},
	}
}

// premadePass applies premade effects to items when the premades module is installed
type premadePass struct {
	modules effects.Modules
	rules   []effects.Rule
}

func (p *premadePass) Name() string { return "premades" }

func (p *premadePass) Apply(entity *entities.Entity) (*entities.Entity, error) {
	if !p.modules.Premades() {
		return entity, nil
	}
	if _, err := effects.Dispatch(p.rules, nil, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func protectionBonus(label string) effects.Builder {
	return func(_, item *entities.Entity) error {
		effect := effects.NewFeatureEffect(item, label)
		effects.SetTransfer(effect, true)
		effect.AddChanges(
			entities.Change{Key: "system.attributes.ac.bonus", Mode: entities.ModeAdd, Value: "+1", Priority: 20},
			entities.Change{Key: "system.bonuses.abilities.save", Mode: entities.ModeAdd, Value: "+1", Priority: 20},
		)
		item.PutEffect(effect)
		return nil
	}
}

func bracersOfDefense(_, item *entities.Entity) error {
	effect := effects.NewFeatureEffect(item, "Bracers of Defense")
	effects.SetTransfer(effect, true)
	effect.AddChanges(entities.Change{Key: "system.attributes.ac.bonus", Mode: entities.ModeAdd, Value: "+2", Priority: 20})
	item.PutEffect(effect)
	return nil
}

var giantStrengthScores = map[string]string{
	"Potion of Giant Strength (Hill)":  "21",
	"Potion of Giant Strength (Frost)": "23",
	"Potion of Giant Strength (Stone)": "23",
	"Potion of Giant Strength (Fire)":  "25",
	"Potion of Giant Strength (Cloud)": "27",
	"Potion of Giant Strength (Storm)": "29",
}

func giantStrength(_, item *entities.Entity) error {
	score, ok := giantStrengthScores[item.Name]
	if !ok {
		return nil
	}
	effect := effects.NewFeatureEffect(item, item.Name)
	effect.Duration = entities.Duration{Seconds: 3600}
	effect.AddChanges(entities.Change{Key: "system.abilities.str.value", Mode: entities.ModeUpgrade, Value: score, Priority: 20})
	item.PutEffect(effect)
	return nil
}

func bootsOfSpeed(_, item *entities.Entity) error {
	effect := effects.NewFeatureEffect(item, "Boots of Speed")
	effect.Duration = entities.Duration{Seconds: 600, Rounds: 100}
	effect.AddChanges(entities.Change{Key: "system.attributes.movement.walk", Mode: entities.ModeMultiply, Value: "2", Priority: 20})
	item.PutEffect(effect)
	return nil
}
