package effects

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

// MonsterFeatureRules are the special-case builders for monster features.
// Order matters: the first match wins.
func MonsterFeatureRules() []Rule {
	return []Rule{
		{Name: "legendary-resistance", Match: Prefix("Legendary Resistance"), Build: legendaryResistance},
		{Name: "pack-tactics", Match: Prefix("Pack Tactics"), Build: packTactics},
		{Name: "reversal-of-fortune", Match: Exact("Reversal of Fortune"), Build: reversalOfFortune},
		{Name: "suave-defense", Match: Exact("Suave Defense"), Build: suaveDefense},
		{Name: "uncanny-dodge", Match: Exact("Uncanny Dodge"), Build: uncannyDodge},
	}
}

var perDayPattern = regexp.MustCompile(`\((\d+)/Day\)`)

func legendaryResistance(_, item *entities.Entity) error {
	match := perDayPattern.FindStringSubmatch(item.Name)
	if match == nil {
		match = perDayPattern.FindStringSubmatch(item.Description())
	}
	if match == nil {
		return errors.FailedPrecondition("legendary resistance has no uses per day")
	}
	uses, err := strconv.Atoi(match[1])
	if err != nil {
		return errors.Wrap(err, "invalid legendary resistance uses")
	}

	setSystem(item, "uses", map[string]any{"value": uses, "max": strconv.Itoa(uses), "per": "day"})

	effect := NewFeatureEffect(item, "Legendary Resistance")
	SetTransfer(effect, true)
	effect.AddChanges(
		entities.Change{Key: "flags.midi-qol.optional.LegRes.label", Mode: entities.ModeCustom, Value: "Use Legendary Resistance to Succeed", Priority: 20},
		entities.Change{Key: "flags.midi-qol.optional.LegRes.save.fail.all", Mode: entities.ModeCustom, Value: "success", Priority: 20},
		entities.Change{Key: "flags.midi-qol.optional.LegRes.count", Mode: entities.ModeCustom, Value: "ItemUses.Legendary Resistance", Priority: 20},
	)
	item.PutEffect(effect)
	return nil
}

func packTactics(_, item *entities.Entity) error {
	effect := NewFeatureEffect(item, "Pack Tactics")
	SetTransfer(effect, true)
	effect.AddChanges(entities.Change{
		Key:      "flags.midi-qol.advantage.attack.all",
		Mode:     entities.ModeCustom,
		Value:    "findNearby(-1, targetUuid, 5, 0).length > 1",
		Priority: 20,
	})
	item.PutEffect(effect)
	return nil
}

func reversalOfFortune(_, item *entities.Entity) error {
	setSystem(item, "activation", map[string]any{"type": "reaction", "cost": 1, "condition": "Takes damage from another creature"})

	effect := NewFeatureEffect(item, "Reversal of Fortune")
	effect.Duration = entities.Duration{Turns: 1}
	effect.AddChanges(entities.Change{
		Key:      "flags.midi-qol.DR.all",
		Mode:     entities.ModeAdd,
		Value:    "floor(@damage / 2)",
		Priority: 20,
	})
	item.PutEffect(effect)
	return nil
}

func suaveDefense(_, item *entities.Entity) error {
	desc := strings.ToLower(item.Description())
	if !strings.Contains(desc, "charisma") {
		return errors.FailedPrecondition("suave defense text does not name the ability")
	}

	effect := NewFeatureEffect(item, "Suave Defense")
	SetTransfer(effect, true)
	effect.AddChanges(entities.Change{
		Key:      "system.attributes.ac.bonus",
		Mode:     entities.ModeAdd,
		Value:    "+@abilities.cha.mod",
		Priority: 20,
	})
	item.PutEffect(effect)
	return nil
}

func uncannyDodge(_, item *entities.Entity) error {
	setSystem(item, "activation", map[string]any{"type": "reaction", "cost": 1, "condition": "Hit by an attack from an attacker it can see"})

	effect := NewFeatureEffect(item, "Uncanny Dodge")
	effect.Duration = entities.Duration{Turns: 1}
	effect.AddChanges(entities.Change{
		Key:      "flags.midi-qol.uncanny-dodge",
		Mode:     entities.ModeCustom,
		Value:    "1",
		Priority: 20,
	})
	item.PutEffect(effect)
	return nil
}

var absorptionPattern = regexp.MustCompile(`^(Acid|Cold|Fire|Force|Lightning|Necrotic|Poison|Psychic|Radiant|Thunder) Absorption$`)

// absorption gives the owner an effect that heals it instead of taking the
// named damage type. It applies once per matching feature.
func absorption(entity *entities.Entity) error {
	for _, item := range entity.SubItems {
		if item == nil {
			continue
		}
		match := absorptionPattern.FindStringSubmatch(item.Name)
		if match == nil {
			continue
		}
		damageType := strings.ToLower(match[1])

		effect := NewFeatureEffect(entity, item.Name)
		effect.Icon = item.Img
		effect.SetOriginName(item.Name)
		effect.AddChanges(entities.Change{
			Key:      "system.traits.da." + damageType,
			Mode:     entities.ModeCustom,
			Value:    "1",
			Priority: 20,
		})
		entity.PutEffect(effect)
	}
	return nil
}
