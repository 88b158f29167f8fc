package effects

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

var (
	turnPattern     = regexp.MustCompile(`(?i)at the (start|end) of (?:each of )?(?:its|their|his|her|your) turns?`)
	damagePattern   = regexp.MustCompile(`(?i)\d+ \((\d+)d(\d+)(?:\s*([+-])\s*(\d+))?\) (\w+) damage`)
	savePattern     = regexp.MustCompile(`(?i)DC (\d+) (Strength|Dexterity|Constitution|Intelligence|Wisdom|Charisma) saving throw`)
	removePattern   = regexp.MustCompile(`(?i)(ending the \w+ on itself on a success|repeat the saving throw)`)
	durationPattern = regexp.MustCompile(`(?i)for (\d+) (round|minute|hour)s?`)
)

// OverTime describes a recurring save or damage found in descriptive text
type OverTime struct {
	Turn        string // "start" or "end"
	DamageRoll  string
	DamageType  string
	SaveDC      int
	SaveAbility string
	SaveRemove  bool
	Duration    entities.Duration
}

// ParseOverTime reads an over-time pattern from text. It reports false when
// the text has no turn trigger or nothing happens on that trigger.
func ParseOverTime(text string) (*OverTime, bool, error) {
	turn := turnPattern.FindStringSubmatch(text)
	if turn == nil {
		return nil, false, nil
	}

	ot := &OverTime{Turn: strings.ToLower(turn[1])}

	// Only the text after the trigger describes what recurs
	tail := text[strings.Index(text, turn[0]):]

	if m := damagePattern.FindStringSubmatch(tail); m != nil {
		roll, err := diceExpression(m[1], m[2], m[3], m[4])
		if err != nil {
			return nil, false, err
		}
		ot.DamageRoll = roll
		ot.DamageType = strings.ToLower(m[5])
	}

	if m := savePattern.FindStringSubmatch(text); m != nil {
		dc, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, false, errors.Wrap(err, "invalid save dc")
		}
		ot.SaveDC = dc
		ot.SaveAbility = strings.ToLower(m[2][:3])
		ot.SaveRemove = removePattern.MatchString(text)
	}

	if ot.DamageRoll == "" && ot.SaveDC == 0 {
		return nil, false, nil
	}

	if m := durationPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch strings.ToLower(m[2]) {
		case "round":
			ot.Duration = entities.Duration{Rounds: n, Seconds: n * 6}
		case "minute":
			ot.Duration = entities.Duration{Rounds: n * 10, Seconds: n * 60}
		case "hour":
			ot.Duration = entities.Duration{Seconds: n * 3600}
		}
	}

	return ot, true, nil
}

// Value renders the over-time change value
func (o *OverTime) Value(label string) string {
	parts := []string{
		"turn=" + o.Turn,
		"label=" + label,
	}
	if o.DamageRoll != "" {
		parts = append(parts, "damageRoll="+o.DamageRoll, "damageType="+o.DamageType)
	}
	if o.SaveDC > 0 {
		parts = append(parts,
			fmt.Sprintf("saveDC=%d", o.SaveDC),
			"saveAbility="+o.SaveAbility,
			fmt.Sprintf("saveRemove=%t", o.SaveRemove))
	}
	return strings.Join(parts, ",")
}

// diceExpression validates the dice through the toolkit and renders them
func diceExpression(count, size, sign, modifier string) (string, error) {
	n, err := strconv.Atoi(count)
	if err != nil {
		return "", errors.Wrap(err, "invalid dice count")
	}
	sides, err := strconv.Atoi(size)
	if err != nil {
		return "", errors.Wrap(err, "invalid dice size")
	}
	if n <= 0 || sides <= 0 {
		return "", errors.InvalidArgumentf("invalid dice %dd%d", n, sides)
	}
	if _, err := dice.NewRoll(n, sides); err != nil {
		return "", errors.Wrapf(err, "invalid dice %dd%d", n, sides)
	}

	expr := fmt.Sprintf("%dd%d", n, sides)
	if sign != "" && modifier != "" {
		expr += " " + sign + " " + modifier
	}
	return expr, nil
}

// overTime attaches a timed effect to item when its text describes one
func overTime(_, item *entities.Entity) error {
	ot, found, err := ParseOverTime(item.Description())
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	label := item.Name + " (Over Time)"
	effect := NewFeatureEffect(item, item.Name+": Over Time")
	effect.Duration = ot.Duration
	effect.AddChanges(entities.Change{
		Key:      "flags.midi-qol.OverTime",
		Mode:     entities.ModeOverride,
		Value:    ot.Value(label),
		Priority: 20,
	})
	item.PutEffect(effect)
	return nil
}
