package muncher

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/pipeline/normalize"
	compendiumrepo "github.com/KirkDiggler/rpg-muncher/internal/repositories/compendium"
	"github.com/KirkDiggler/rpg-muncher/internal/services/compendium"
)

// storeItemSpells upserts the spells granted by items and points each item's
// spell entries at the stored documents. Failed spells leave their entries as parsed.
func (o *orchestrator) storeItemSpells(ctx context.Context, r *run, items, spells []*entities.Entity) []compendium.Result {
	upserted, err := o.upserter.Upsert(ctx, &compendium.UpsertInput{
		Collection:     compendiumrepo.CollectionItemSpells,
		Entities:       spells,
		UpdateExisting: r.updateExisting,
	})
	if err != nil {
		slog.Warn("Failed to store item spells", "count", len(spells), "error", err)
		return nil
	}

	stored := make(map[string]compendium.Result, len(upserted.Results))
	for _, result := range upserted.Results {
		if result.Operation == compendium.OperationFailed {
			continue
		}
		stored[result.Name] = result
	}

	for _, item := range items {
		linkItemSpells(item, stored)
	}

	slog.Debug("Stored item spells",
		"collection", compendiumrepo.CollectionItemSpells,
		"spells", len(spells),
		"linked", len(stored))

	return upserted.Results
}

// linkItemSpells copies the stored spell's identity into the item's spell entries by name
func linkItemSpells(item *entities.Entity, stored map[string]compendium.Result) {
	if item == nil {
		return
	}
	value, ok := item.Flags.Get(normalize.FlagItemSpells)
	if !ok {
		return
	}
	list, ok := value.([]any)
	if !ok {
		return
	}

	for _, raw := range list {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		result, ok := stored[name]
		if !ok {
			continue
		}
		entry["id"] = result.StorageID
		entry["pack"] = compendiumrepo.CollectionItemSpells
		if result.Entity != nil {
			entry["name"] = result.Entity.Name
			if level, ok := result.Entity.System["level"]; ok {
				entry["level"] = level
			}
		}
	}
}
