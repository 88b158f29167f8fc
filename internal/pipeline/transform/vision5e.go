package transform

import (
	"regexp"
	"strconv"

	"github.com/KirkDiggler/rpg-muncher/internal/effects"
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

// visionModes maps feature names to the detection mode they grant
var visionModes = map[string]string{
	"Blindsight":       "blindsight",
	"Devil's Sight":    "devilsSight",
	"Ethereal Sight":   "etherealSight",
	"Tremorsense":      "feelTremor",
	"Truesight":        "seeAll",
	"See Invisibility": "seeInvisibility",
}

var rangePattern = regexp.MustCompile(`(\d+)[ -](?:feet|ft)`)

// vision5ePass adds detection-mode stubs for the vision module. Nothing happens
// when the module is not installed.
type vision5ePass struct {
	modules effects.Modules
}

func (p *vision5ePass) Name() string { return "vision5e" }

func (p *vision5ePass) Apply(entity *entities.Entity) (*entities.Entity, error) {
	if !p.modules.Vision5e {
		return entity, nil
	}

	addVisionStub(entity)
	for _, item := range entity.SubItems {
		if item != nil {
			addVisionStub(item)
		}
	}
	return entity, nil
}

func addVisionStub(doc *entities.Entity) {
	mode, ok := visionModes[doc.Name]
	if !ok {
		return
	}

	distance := 0
	if m := rangePattern.FindStringSubmatch(doc.Description()); m != nil {
		distance, _ = strconv.Atoi(m[1])
	}

	effect := effects.NewFeatureEffect(doc, doc.Name)
	effects.SetTransfer(effect, true)
	effect.AddChanges(entities.Change{
		Key:      "ATL.detectionModes." + mode + ".range",
		Mode:     entities.ModeUpgrade,
		Value:    strconv.Itoa(distance),
		Priority: 20,
	})
	doc.PutEffect(effect)
}
