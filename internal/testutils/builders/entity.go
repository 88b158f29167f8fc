// Package builders provides test data builders for creating test fixtures
package builders

import (
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

// EntityBuilder provides a fluent interface for building test Entity instances
type EntityBuilder struct {
	entity *entities.Entity
}

// NewEntityBuilder creates a new builder with minimal defaults
func NewEntityBuilder() *EntityBuilder {
	return &EntityBuilder{
		entity: &entities.Entity{
			ID:      "entity-test-123",
			Name:    "Test Entity",
			Type:    entities.TypeLoot,
			System:  map[string]any{},
			Effects: []*entities.Effect{},
			Flags:   entities.Flags{},
		},
	}
}

// NewMonsterBuilder starts an npc with the given name
func NewMonsterBuilder(name string) *EntityBuilder {
	return NewEntityBuilder().
		WithID("monster-" + name).
		WithName(name).
		WithType(entities.TypeNPC)
}

// WithID sets the entity ID
func (b *EntityBuilder) WithID(id string) *EntityBuilder {
	b.entity.ID = id
	return b
}

// WithName sets the entity name
func (b *EntityBuilder) WithName(name string) *EntityBuilder {
	b.entity.Name = name
	return b
}

// WithType sets the entity type
func (b *EntityBuilder) WithType(entityType string) *EntityBuilder {
	b.entity.Type = entityType
	return b
}

// WithDescription sets the descriptive text
func (b *EntityBuilder) WithDescription(text string) *EntityBuilder {
	b.entity.SetDescription(text)
	return b
}

// WithFlag sets a flag path
func (b *EntityBuilder) WithFlag(path string, value any) *EntityBuilder {
	b.entity.Flags.Set(path, value)
	return b
}

// WithFeature adds a feat sub-item
func (b *EntityBuilder) WithFeature(name, text string) *EntityBuilder {
	feature := NewEntityBuilder().
		WithID(b.entity.ID + "-" + name).
		WithName(name).
		WithType(entities.TypeFeat).
		WithDescription(text).
		Build()
	b.entity.SubItems = append(b.entity.SubItems, feature)
	return b
}

// WithSubItem adds a prepared sub-item
func (b *EntityBuilder) WithSubItem(item *entities.Entity) *EntityBuilder {
	b.entity.SubItems = append(b.entity.SubItems, item)
	return b
}

// WithEffect adds an effect
func (b *EntityBuilder) WithEffect(effect *entities.Effect) *EntityBuilder {
	b.entity.Effects = append(b.entity.Effects, effect)
	return b
}

// Build returns the built entity
func (b *EntityBuilder) Build() *entities.Entity {
	return b.entity
}
