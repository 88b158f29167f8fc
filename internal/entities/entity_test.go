package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

func TestFlags_SetAndGet(t *testing.T) {
	flags := entities.Flags{}
	flags.Set("ddbimporter.dndbeyond.definitionId", "123")
	flags.Set("ddbimporter.homebrew", true)

	assert.Equal(t, "123", flags.GetString("ddbimporter.dndbeyond.definitionId"))
	assert.True(t, flags.GetBool("ddbimporter.homebrew"))
	assert.True(t, flags.Has("ddbimporter.dndbeyond"))
	assert.False(t, flags.Has("ddbimporter.missing.path"))
	assert.Equal(t, "", flags.GetString("ddbimporter.homebrew"))

	var nilFlags entities.Flags
	_, ok := nilFlags.Get("anything")
	assert.False(t, ok)
}

func TestFlags_SetOverwritesScalarWithMap(t *testing.T) {
	flags := entities.Flags{"dae": "legacy"}
	flags.Set("dae.transfer", true)

	assert.True(t, flags.GetBool("dae.transfer"))
}

func TestFlags_CloneCopiesTypedValues(t *testing.T) {
	type charge struct{ Max int }
	flags := entities.Flags{
		"ids":     []int{1, 2},
		"levels":  map[string]int{"Fireball": 3},
		"charges": &charge{Max: 7},
		"nested":  map[string]any{"spells": []map[string]string{{"name": "Shield"}}},
		"mixed":   []any{[]int{4}},
	}

	clone := flags.Clone()
	flags["ids"].([]int)[0] = 99
	flags["levels"].(map[string]int)["Fireball"] = 9
	flags["charges"].(*charge).Max = 0
	flags["nested"].(map[string]any)["spells"].([]map[string]string)[0]["name"] = "changed"
	flags["mixed"].([]any)[0].([]int)[0] = 0

	assert.Equal(t, []int{1, 2}, clone["ids"])
	assert.Equal(t, map[string]int{"Fireball": 3}, clone["levels"])
	assert.Equal(t, 7, clone["charges"].(*charge).Max)
	assert.Equal(t, "Shield", clone["nested"].(map[string]any)["spells"].([]map[string]string)[0]["name"])
	assert.Equal(t, []int{4}, clone["mixed"].([]any)[0])
}

func TestEntity_CloneIsIndependent(t *testing.T) {
	original := &entities.Entity{
		ID:   "npc-1",
		Name: "Carrion Crawler",
		Type: entities.TypeNPC,
		SubItems: []*entities.Entity{
			{ID: "feat-1", Name: "Tentacles", Type: entities.TypeWeapon, Effects: []*entities.Effect{
				{ID: "eff-1", Name: "Tentacles", Changes: []entities.Change{{Key: "StatusEffect", Value: "Poisoned"}}},
			}},
		},
		Flags: entities.Flags{"ddbimporter": map[string]any{"tags": []any{"a"}}},
	}
	original.SetDescription("A scavenger.")

	clone := original.Clone()
	clone.Name = "changed"
	clone.SubItems[0].Effects[0].Changes[0].Value = "Paralyzed"
	clone.Flags.Set("ddbimporter.extra", 1)
	clone.SetDescription("changed")

	assert.Equal(t, "Carrion Crawler", original.Name)
	assert.Equal(t, "Poisoned", original.SubItems[0].Effects[0].Changes[0].Value)
	assert.False(t, original.Flags.Has("ddbimporter.extra"))
	assert.Equal(t, "A scavenger.", original.Description())
	assert.Equal(t, original.SubItems[0].ID, clone.SubItems[0].ID)
}

func TestEntity_PutEffectReplacesByName(t *testing.T) {
	entity := &entities.Entity{Name: "Wolf"}
	entity.PutEffect(&entities.Effect{ID: "first", Name: "Pack Tactics"})
	entity.PutEffect(&entities.Effect{Name: "Pack Tactics", Transfer: true})
	entity.PutEffect(&entities.Effect{ID: "other", Name: "Keen Hearing"})

	require.Len(t, entity.Effects, 2)
	assert.Equal(t, "first", entity.Effects[0].ID)
	assert.True(t, entity.Effects[0].Transfer)
	assert.Equal(t, entity.Effects[0], entity.FindEffect("Pack Tactics"))
	assert.Nil(t, entity.FindEffect("Nope"))
}

func TestEffect_OriginName(t *testing.T) {
	effect := &entities.Effect{Name: "Legendary Resistance"}
	assert.Equal(t, "", effect.OriginName())

	effect.SetOriginName("Legendary Resistance (3/Day)")
	assert.Equal(t, "Legendary Resistance (3/Day)", effect.OriginName())
	assert.True(t, entities.Duration{}.IsOpenEnded())
	assert.False(t, entities.Duration{Rounds: 1}.IsOpenEnded())
}

func TestRawRecord_DefinitionIDAndSources(t *testing.T) {
	record := entities.RawRecord{ID: 4567, Sources: []entities.RawSource{{SourceID: 1}, {SourceID: 27}}}

	assert.Equal(t, "4567", record.DefinitionID())
	assert.True(t, record.HasSource(map[int]struct{}{27: {}}))
	assert.False(t, record.HasSource(map[int]struct{}{2: {}}))
}
