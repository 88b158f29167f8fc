package effects

import (
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

// Adjustment is a hand-maintained fix for one feature of named entities
type Adjustment struct {
	Entities []string
	SubItem  string
	Apply    func(item *entities.Entity, modules Modules) error
}

// Adjustments lists mechanics that cannot be read from text
func Adjustments() []Adjustment {
	return []Adjustment{
		{
			Entities: []string{"Carrion Crawler", "Reduced-threat Carrion Crawler"},
			SubItem:  "Tentacles",
			Apply: func(item *entities.Entity, modules Modules) error {
				return pushStatus(item, "Paralyzed", 20, modules.MacroStatus())
			},
		},
	}
}

// pushStatus appends a status change to the first effect of item
func pushStatus(item *entities.Entity, status string, priority int, macro bool) error {
	if len(item.Effects) == 0 || item.Effects[0] == nil {
		return errors.FailedPrecondition("no effect to adjust on " + item.Name)
	}
	change := StatusChange(status, priority, macro)
	for _, existing := range item.Effects[0].Changes {
		if existing == change {
			return nil
		}
	}
	item.Effects[0].AddChanges(change)
	return nil
}

func (a Adjustment) matches(entityName string) bool {
	for _, name := range a.Entities {
		if name == entityName {
			return true
		}
	}
	return false
}
