// Package compendium reconciles imported entities with stored collections.
package compendium

import (
	"context"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

//go:generate mockgen -destination=mock/mock_service.go -package=upsertermock github.com/KirkDiggler/rpg-muncher/internal/services/compendium Upserter

// Upserter reconciles entity batches with a collection
type Upserter interface {
	// Upsert stores every entity by name. It waits for all writes to settle and
	// reports one result per input entity, in input order. Individual failures
	// are reported in the results; the error return is only for invalid input.
	Upsert(ctx context.Context, input *UpsertInput) (*UpsertOutput, error)
}

// Operation says what happened to one entity
type Operation string

// Upsert operations
const (
	OperationInserted Operation = "inserted"
	OperationUpdated  Operation = "updated"
	OperationSkipped  Operation = "skipped"
	OperationFailed   Operation = "failed"
)

// UpsertInput contains upsert parameters
type UpsertInput struct {
	Collection string
	Entities   []*entities.Entity
	// UpdateExisting replaces stored documents with the same name instead of skipping them
	UpdateExisting bool
}

// Result is the outcome for one entity
type Result struct {
	Name      string
	Operation Operation
	// StorageID is the id of the stored document, empty when the operation failed
	StorageID string
	// Entity is the stored content: the input for inserts and updates, the existing document for skips
	Entity *entities.Entity
	Err    error
}

// UpsertOutput contains the per-entity results
type UpsertOutput struct {
	Results []Result
}

// Count returns how many results had the operation
func (o *UpsertOutput) Count(op Operation) int {
	n := 0
	for _, result := range o.Results {
		if result.Operation == op {
			n++
		}
	}
	return n
}

// Stored returns the entities that are in the collection after the upsert, in input order
func (o *UpsertOutput) Stored() []*entities.Entity {
	stored := make([]*entities.Entity, 0, len(o.Results))
	for _, result := range o.Results {
		if result.Operation != OperationFailed && result.Entity != nil {
			stored = append(stored, result.Entity)
		}
	}
	return stored
}
