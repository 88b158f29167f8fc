// Package entities holds the canonical documents that flow through the import pipeline.
package entities

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
)

// Entity type tags
const (
	TypeNPC        = "npc"
	TypeCharacter  = "character"
	TypeWeapon     = "weapon"
	TypeEquipment  = "equipment"
	TypeConsumable = "consumable"
	TypeTool       = "tool"
	TypeLoot       = "loot"
	TypeContainer  = "backpack"
	TypeSpell      = "spell"
	TypeFeat       = "feat"
)

// Entity is one imported document: a monster, an item or a character.
// SubItems are owned documents such as a monster's features or an inventory.
type Entity struct {
	ID       string         `json:"_id"`
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Img      string         `json:"img,omitempty"`
	System   map[string]any `json:"system,omitempty"`
	SubItems []*Entity      `json:"items,omitempty"`
	Effects  []*Effect      `json:"effects,omitempty"`
	Flags    Flags          `json:"flags,omitempty"`
}

var _ core.Entity = (*Entity)(nil)

// GetID returns the entity id
func (e *Entity) GetID() string {
	return e.ID
}

// GetType returns the entity type tag
func (e *Entity) GetType() string {
	return e.Type
}

// Description returns the descriptive text, or "" when the entity has none.
func (e *Entity) Description() string {
	if e == nil || e.System == nil {
		return ""
	}
	desc, ok := e.System["description"].(map[string]any)
	if !ok {
		return ""
	}
	value, _ := desc["value"].(string)
	return value
}

// SetDescription stores the descriptive text in the host schema location.
func (e *Entity) SetDescription(value string) {
	if e.System == nil {
		e.System = map[string]any{}
	}
	desc, ok := e.System["description"].(map[string]any)
	if !ok {
		desc = map[string]any{}
		e.System["description"] = desc
	}
	desc["value"] = value
}

// FindEffect returns the first effect with the given name.
func (e *Entity) FindEffect(name string) *Effect {
	for _, effect := range e.Effects {
		if effect != nil && effect.Name == name {
			return effect
		}
	}
	return nil
}

// PutEffect adds effect, replacing an existing effect of the same name.
// A replaced effect keeps its id so stored references stay valid.
func (e *Entity) PutEffect(effect *Effect) {
	for i, existing := range e.Effects {
		if existing != nil && existing.Name == effect.Name {
			if effect.ID == "" {
				effect.ID = existing.ID
			}
			e.Effects[i] = effect
			return
		}
	}
	e.Effects = append(e.Effects, effect)
}

// EnsureFlags initializes the flag map.
func (e *Entity) EnsureFlags() Flags {
	if e.Flags == nil {
		e.Flags = Flags{}
	}
	return e.Flags
}

// Clone returns a deep copy of the entity and everything it owns.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}

	out := &Entity{
		ID:     e.ID,
		Name:   e.Name,
		Type:   e.Type,
		Img:    e.Img,
		System: cloneMap(e.System),
		Flags:  e.Flags.Clone(),
	}
	if e.SubItems != nil {
		out.SubItems = make([]*Entity, len(e.SubItems))
		for i, item := range e.SubItems {
			out.SubItems[i] = item.Clone()
		}
	}
	if e.Effects != nil {
		out.Effects = make([]*Effect, len(e.Effects))
		for i, effect := range e.Effects {
			out.Effects[i] = effect.Clone()
		}
	}
	return out
}
