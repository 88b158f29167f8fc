package transform_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-muncher/internal/clients/srd"
	"github.com/KirkDiggler/rpg-muncher/internal/effects"
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	"github.com/KirkDiggler/rpg-muncher/internal/pipeline/transform"
)

type ChainTestSuite struct {
	suite.Suite
	table   *srd.Table
	modules effects.Modules
}

func (s *ChainTestSuite) SetupTest() {
	s.table = srd.NewTable([]*srd.Reference{
		{
			Key:            "longsword",
			Name:           "Longsword",
			Weight:         3,
			Cost:           &srd.Cost{Quantity: 15, Unit: "gp"},
			WeaponCategory: "Martial",
			WeaponRange:    "Melee",
			DamageDice:     "1d8",
			DamageType:     "Slashing",
			Properties:     []string{"Versatile"},
		},
		{
			Key:                 "chain-mail",
			Name:                "Chain Mail",
			Weight:              55,
			ArmorCategory:       "Heavy",
			ArmorClassBase:      16,
			StrengthMinimum:     13,
			StealthDisadvantage: true,
		},
	})
	s.modules = effects.DetectModules([]string{effects.ModuleDAE, effects.ModuleMidiQOL, effects.ModuleVision5e})
}

func TestChainSuite(t *testing.T) {
	suite.Run(t, new(ChainTestSuite))
}

func item(name, entityType string) *entities.Entity {
	return &entities.Entity{
		ID:     "id-" + name,
		Name:   name,
		Type:   entityType,
		System: map[string]any{"properties": map[string]any{"mgc": false}},
	}
}

type recordingPass struct {
	name  string
	calls *[]string
	fn    func(*entities.Entity) (*entities.Entity, error)
}

func (p *recordingPass) Name() string { return p.name }

func (p *recordingPass) Apply(e *entities.Entity) (*entities.Entity, error) {
	*p.calls = append(*p.calls, p.name+":"+e.Name)
	if p.fn != nil {
		return p.fn(e)
	}
	return e, nil
}

func (s *ChainTestSuite) TestNewChain() {
	_, err := transform.NewChain(nil)
	s.True(errors.IsInvalidArgument(err))

	chain, err := transform.NewChain(&transform.Config{})
	s.Require().NoError(err)
	s.Equal([]string{"srd", "dae", "vision5e", "premades"}, chain.Passes())
}

func (s *ChainTestSuite) TestPassOrderAndFailureIsolation() {
	var calls []string
	chain := transform.NewChainWithPasses(
		&recordingPass{name: "first", calls: &calls, fn: func(e *entities.Entity) (*entities.Entity, error) {
			e.Name += "!"
			if e.ID == "id-Bad" {
				return nil, errors.Internal("cannot handle")
			}
			return e, nil
		}},
		&recordingPass{name: "second", calls: &calls, fn: func(e *entities.Entity) (*entities.Entity, error) {
			if e.ID == "id-Worse" {
				e.Name = "mutated"
				panic("boom")
			}
			return e, nil
		}},
	)

	input := []*entities.Entity{item("Good", entities.TypeLoot), item("Bad", entities.TypeLoot), item("Worse", entities.TypeLoot)}
	out := chain.Transform(input)

	s.Require().Len(out, 3)
	s.Equal("Good!", out[0].Name)
	s.Equal("Bad", out[1].Name, "failed pass is discarded")
	s.Equal("Worse!", out[2].Name, "panicking pass keeps output of earlier pass")
	s.Equal("Good", input[0].Name, "input entities are not modified")
	s.Equal([]string{"first:Good", "second:Good!", "first:Bad", "second:Bad", "first:Worse", "second:Worse!"}, calls)
}

func (s *ChainTestSuite) TestSRDSubstitution() {
	chain, err := transform.NewChain(&transform.Config{SRD: s.table})
	s.Require().NoError(err)

	sword := item("Longsword", entities.TypeWeapon)
	mail := item("Chain Mail", entities.TypeEquipment)
	homebrew := item("Longsword", entities.TypeWeapon)
	homebrew.EnsureFlags().Set("ddbimporter.isHomebrew", true)
	unknown := item("Vorpal Sword", entities.TypeWeapon)

	out := chain.Transform([]*entities.Entity{sword, mail, homebrew, unknown})
	s.Require().Len(out, 4)

	s.Run("weapon", func() {
		s.Equal("longsword", out[0].Flags.GetString(transform.FlagSRD))
		s.Equal(float64(3), out[0].System["weight"])
		s.Equal("martialM", out[0].System["weaponType"])
		damage := out[0].System["damage"].(map[string]any)
		s.Equal([]any{[]any{"1d8 + @mod", "slashing"}}, damage["parts"])
		props := out[0].System["properties"].(map[string]any)
		s.Equal(true, props["ver"])
		s.Equal(false, props["mgc"])
		s.Equal(map[string]any{"value": 15, "denomination": "gp"}, out[0].System["price"])
	})

	s.Run("armor", func() {
		armor := out[1].System["armor"].(map[string]any)
		s.Equal(16, armor["value"])
		s.Equal("heavy", armor["type"])
		s.Equal(0, armor["dex"])
		s.Equal(13, out[1].System["strength"])
		s.Equal(true, out[1].System["stealth"])
	})

	s.Run("homebrew and unknown untouched", func() {
		s.False(out[2].Flags.Has(transform.FlagSRD))
		s.Nil(out[3].Flags)
	})
}

func (s *ChainTestSuite) TestDAEShim() {
	chain, err := transform.NewChain(&transform.Config{Modules: s.modules})
	s.Require().NoError(err)

	npc := &entities.Entity{
		ID:   "npc",
		Name: "Knight",
		Type: entities.TypeNPC,
		Effects: []*entities.Effect{{
			Name:     "Old",
			Transfer: true,
			Changes:  []entities.Change{{Key: "data.attributes.ac.bonus", Mode: entities.ModeAdd, Value: "1"}},
		}},
	}

	out := chain.Transform([]*entities.Entity{npc})
	effect := out[0].Effects[0]
	s.Equal("system.attributes.ac.bonus", effect.Changes[0].Key)
	s.True(effect.Flags.GetBool("dae.transfer"))
	s.Equal("none", effect.Flags.GetString("dae.stackable"))
	s.Equal("data.attributes.ac.bonus", npc.Effects[0].Changes[0].Key)
}

func (s *ChainTestSuite) TestVisionStubs() {
	sight := &entities.Entity{ID: "ds", Name: "Devil's Sight", Type: entities.TypeFeat}
	sight.SetDescription("Magical darkness doesn't impede its darkvision out to 120 feet.")
	npc := &entities.Entity{ID: "npc", Name: "Imp", Type: entities.TypeNPC, SubItems: []*entities.Entity{sight}}

	s.Run("module present", func() {
		chain, err := transform.NewChain(&transform.Config{Modules: s.modules})
		s.Require().NoError(err)

		out := chain.Transform([]*entities.Entity{npc})
		stub := out[0].SubItems[0].FindEffect("Devil's Sight")
		s.Require().NotNil(stub)
		s.Equal("ATL.detectionModes.devilsSight.range", stub.Changes[0].Key)
		s.Equal("120", stub.Changes[0].Value)
		s.True(stub.Transfer)
	})

	s.Run("module absent", func() {
		chain, err := transform.NewChain(&transform.Config{Modules: effects.DetectModules([]string{effects.ModuleDAE, effects.ModuleMidiQOL})})
		s.Require().NoError(err)

		out := chain.Transform([]*entities.Entity{npc})
		s.Empty(out[0].SubItems[0].Effects)
	})
}

func (s *ChainTestSuite) TestPremades() {
	modules := effects.DetectModules([]string{effects.ModuleDAE, effects.ModuleMidiQOL, effects.ModuleChrisPremades})
	chain, err := transform.NewChain(&transform.Config{Modules: modules})
	s.Require().NoError(err)

	out := chain.Transform([]*entities.Entity{
		item("Cloak of Protection", entities.TypeEquipment),
		item("Potion of Giant Strength (Fire)", entities.TypeConsumable),
		item("Potion of Giant Strength (Swamp)", entities.TypeConsumable),
		item("Rope", entities.TypeLoot),
	})

	cloak := out[0].FindEffect("Cloak of Protection")
	s.Require().NotNil(cloak)
	s.True(cloak.Transfer)
	s.Len(cloak.Changes, 2)

	potion := out[1].FindEffect("Potion of Giant Strength (Fire)")
	s.Require().NotNil(potion)
	s.Equal("25", potion.Changes[0].Value)

	s.Empty(out[2].Effects)
	s.Empty(out[3].Effects)

	s.Run("premades module absent", func() {
		chain, err := transform.NewChain(&transform.Config{Modules: s.modules})
		s.Require().NoError(err)
		out := chain.Transform([]*entities.Entity{item("Cloak of Protection", entities.TypeEquipment)})
		s.Empty(out[0].Effects)
	})

	s.Run("premades module without core modules", func() {
		chain, err := transform.NewChain(&transform.Config{
			Modules: effects.DetectModules([]string{effects.ModuleChrisPremades}),
		})
		s.Require().NoError(err)
		out := chain.Transform([]*entities.Entity{item("Ring of Protection", entities.TypeEquipment)})
		s.NotNil(out[0].FindEffect("Ring of Protection"))
	})

	s.Run("rerun keeps one effect per name", func() {
		again := chain.Transform(out)
		s.Len(again[0].Effects, 1)
	})
}

func (s *ChainTestSuite) TestNilEntityKeepsPosition() {
	chain, err := transform.NewChain(&transform.Config{})
	s.Require().NoError(err)

	out := chain.Transform([]*entities.Entity{nil, item("Rope", entities.TypeLoot)})
	s.Require().Len(out, 2)
	s.Nil(out[0])
}
