package muncher

import (
	"github.com/KirkDiggler/rpg-muncher/internal/clients/proxy"
	"github.com/KirkDiggler/rpg-muncher/internal/effects"
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/pipeline/selection"
	"github.com/KirkDiggler/rpg-muncher/internal/services/compendium"
)

// RunInput contains the parameters for one import run
type RunInput struct {
	Kind   proxy.Kind
	Params proxy.Params
	// Policy filters the raw batch (optional, nil keeps everything)
	Policy *selection.Policy
	// UpdateExisting replaces stored documents with matching names
	UpdateExisting bool
	// InstalledModules lists the companion module ids active for this run
	InstalledModules []string
}

// RunOutput reports what a run produced and stored
type RunOutput struct {
	Kind       proxy.Kind
	Collection string
	// Modules is the snapshot every stage of the run saw
	Modules effects.Modules
	// Entities is the final batch, one per selected record, in selection order
	Entities []*entities.Entity
	// Results has one upsert result per entity
	Results []compendium.Result
	// ItemSpellResults is empty unless item spells were stored
	ItemSpellResults []compendium.Result
}
