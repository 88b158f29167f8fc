// Package compendium provides persistence for imported collections
package compendium

//go:generate mockgen -destination=mock/mock_repository.go -package=compendiummock github.com/KirkDiggler/rpg-muncher/internal/repositories/compendium Repository

import (
	"context"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

// Collection names used by the importer
const (
	CollectionInventory  = "inventory"
	CollectionMonsters   = "monsters"
	CollectionItemSpells = "itemspells"
)

// Document is one stored entity. StorageID is assigned on insert and never
// changes, so other documents can keep referring to it.
type Document struct {
	StorageID string
	Name      string
	Entity    *entities.Entity
	UpdatedAt time.Time
}

// Repository defines the interface for compendium persistence.
// Documents are unique by name within a collection.
type Repository interface {
	// FindByName returns the document with exactly this name
	// Returns errors.InvalidArgument for an empty collection or name
	// Returns errors.NotFound if no document has the name
	// Returns errors.Internal for storage failures
	FindByName(ctx context.Context, input FindByNameInput) (*FindByNameOutput, error)

	// Insert stores a new document under a fresh storage id
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if the name is taken
	// Returns errors.Internal for storage failures
	Insert(ctx context.Context, input InsertInput) (*InsertOutput, error)

	// Update replaces the content of an existing document, keeping its storage id
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.NotFound if the storage id does not exist
	// Returns errors.AlreadyExists if a rename collides with another document
	// Returns errors.Internal for storage failures
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// List returns every document of a collection ordered by name
	// Returns errors.InvalidArgument for an empty collection
	// Returns errors.Internal for storage failures
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// FindByNameInput defines the input for finding a document
type FindByNameInput struct {
	Collection string
	Name       string
}

// FindByNameOutput defines the output for finding a document
type FindByNameOutput struct {
	Document *Document
}

// InsertInput defines the input for inserting a document
type InsertInput struct {
	Collection string
	Entity     *entities.Entity
}

// InsertOutput defines the output for inserting a document
type InsertOutput struct {
	Document *Document
}

// UpdateInput defines the input for updating a document
type UpdateInput struct {
	Collection string
	StorageID  string
	Entity     *entities.Entity
}

// UpdateOutput defines the output for updating a document
type UpdateOutput struct {
	Document *Document
}

// ListInput defines the input for listing a collection
type ListInput struct {
	Collection string
}

// ListOutput defines the output for listing a collection
type ListOutput struct {
	Documents []*Document
}

func validateCollection(collection string, vb *errors.ValidationBuilder) {
	errors.ValidateRequired("collection", collection, vb)
	if strings.Contains(collection, ":") {
		vb.InvalidField("collection", "must not contain ':'")
	}
}

func validateEntity(entity *entities.Entity, vb *errors.ValidationBuilder) {
	if entity == nil {
		vb.RequiredField("entity")
		return
	}
	errors.ValidateRequired("entity.name", entity.Name, vb)
}
