package compendium

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	compendiumrepo "github.com/KirkDiggler/rpg-muncher/internal/repositories/compendium"
)

const maxConcurrentLimit = 64

// Config holds the configuration for the upserter
type Config struct {
	Repository compendiumrepo.Repository
	// MaxConcurrent caps parallel writes (optional, defaults to 8)
	MaxConcurrent int
}

// Validate validates the config and sets defaults
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	vb := errors.NewValidationBuilder()
	if c.Repository == nil {
		vb.RequiredField("repository")
	}
	errors.ValidateRange("max_concurrent", c.MaxConcurrent, 0, maxConcurrentLimit, vb)
	if err := vb.Build(); err != nil {
		return err
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 8
	}
	return nil
}

type upserter struct {
	repo          compendiumrepo.Repository
	maxConcurrent int
	locks         *keyedMutex
}

// New creates the upsert service
func New(cfg *Config) (Upserter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &upserter{
		repo:          cfg.Repository,
		maxConcurrent: cfg.MaxConcurrent,
		locks:         newKeyedMutex(),
	}, nil
}

func (u *upserter) Upsert(ctx context.Context, input *UpsertInput) (*UpsertOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("collection", input.Collection, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	results := make([]Result, len(input.Entities))
	seenIDs := make(map[string]int, len(input.Entities))

	var g errgroup.Group
	g.SetLimit(u.maxConcurrent)

	for i, entity := range input.Entities {
		if entity == nil {
			results[i] = Result{Operation: OperationFailed, Err: errors.InvalidArgument("entity is nil")}
			continue
		}
		if first, dup := seenIDs[entity.ID]; dup && entity.ID != "" {
			results[i] = Result{
				Name:      entity.Name,
				Operation: OperationFailed,
				Err:       errors.InvalidArgumentf("duplicate entity id %s (first seen at position %d)", entity.ID, first),
			}
			continue
		}
		seenIDs[entity.ID] = i

		g.Go(func() error {
			results[i] = u.upsertOne(ctx, input.Collection, entity, input.UpdateExisting)
			return nil
		})
	}

	// Every goroutine returns nil; failures live in the results
	_ = g.Wait()

	output := &UpsertOutput{Results: results}
	slog.Info("Upserted collection",
		"collection", input.Collection,
		"total", len(results),
		"inserted", output.Count(OperationInserted),
		"updated", output.Count(OperationUpdated),
		"skipped", output.Count(OperationSkipped),
		"failed", output.Count(OperationFailed))

	return output, nil
}

func (u *upserter) upsertOne(ctx context.Context, collection string, entity *entities.Entity, updateExisting bool) Result {
	unlock := u.locks.Lock(collection + "\x00" + entity.Name)
	defer unlock()

	result, err := u.reconcile(ctx, collection, entity, updateExisting)
	if errors.IsAlreadyExists(err) {
		// Another writer claimed the name between lookup and insert
		result, err = u.reconcile(ctx, collection, entity, updateExisting)
	}
	if err != nil {
		slog.Warn("Failed to upsert entity",
			"collection", collection,
			"name", entity.Name,
			"error", err)
		return Result{Name: entity.Name, Operation: OperationFailed, Err: err}
	}
	return result
}

func (u *upserter) reconcile(ctx context.Context, collection string, entity *entities.Entity, updateExisting bool) (Result, error) {
	found, err := u.repo.FindByName(ctx, compendiumrepo.FindByNameInput{
		Collection: collection,
		Name:       entity.Name,
	})
	switch {
	case errors.IsNotFound(err):
		inserted, err := u.repo.Insert(ctx, compendiumrepo.InsertInput{
			Collection: collection,
			Entity:     entity,
		})
		if err != nil {
			return Result{}, err
		}
		return Result{
			Name:      entity.Name,
			Operation: OperationInserted,
			StorageID: inserted.Document.StorageID,
			Entity:    entity,
		}, nil

	case err != nil:
		return Result{}, err

	case !updateExisting:
		return Result{
			Name:      entity.Name,
			Operation: OperationSkipped,
			StorageID: found.Document.StorageID,
			Entity:    found.Document.Entity,
		}, nil
	}

	updated, err := u.repo.Update(ctx, compendiumrepo.UpdateInput{
		Collection: collection,
		StorageID:  found.Document.StorageID,
		Entity:     entity,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{
		Name:      entity.Name,
		Operation: OperationUpdated,
		StorageID: updated.Document.StorageID,
		Entity:    entity,
	}, nil
}

// keyedMutex serializes work per key. Entries are dropped when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*keyedEntry{}}
}

// Lock blocks until key is free and returns the unlock function
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
