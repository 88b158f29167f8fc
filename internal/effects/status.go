package effects

import (
	"strings"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

// Conditions recognized in descriptive text
var Conditions = []string{
	"Blinded", "Charmed", "Deafened", "Frightened", "Grappled", "Incapacitated",
	"Invisible", "Paralyzed", "Petrified", "Poisoned", "Prone", "Restrained",
	"Stunned", "Unconscious",
}

// StatusChange builds a change that applies a condition when the effect resolves
func StatusChange(status string, priority int, macro bool) entities.Change {
	if macro {
		return entities.Change{
			Key:      "macro.CE",
			Mode:     entities.ModeCustom,
			Value:    status,
			Priority: priority,
		}
	}
	return entities.Change{
		Key:      "StatusEffect",
		Mode:     entities.ModeCustom,
		Value:    "Convenient Effect: " + status,
		Priority: priority,
	}
}

// ConditionsIn returns the known conditions named in text, in table order
func ConditionsIn(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, condition := range Conditions {
		if containsWord(lower, strings.ToLower(condition)) {
			found = append(found, condition)
		}
	}
	return found
}

func containsWord(text, word string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)
		before := idx == 0 || !isLetter(text[idx-1])
		after := end == len(text) || !isLetter(text[end])
		if before && after {
			return true
		}
		start = idx + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
