package testutils

import (
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

// Source ids used by the fixtures
const (
	SourceBasicRules = 1
	SourceDMG        = 3
	SourceMonsters   = 5
)

// CarrionCrawlerTentacles is the full text of the crawler's tentacle attack
const CarrionCrawlerTentacles = "Melee Weapon Attack: +8 to hit, reach 10 ft., one creature. Hit: 4 (1d4 + 2) poison damage, " +
	"and the target must succeed on a DC 13 Constitution saving throw or be poisoned for 1 minute. " +
	"Until this poison ends, the target is paralyzed. The target can repeat the saving throw at the end " +
	"of each of its turns, ending the poison on itself on a success."

// RawItems returns five item records: three official and two homebrew
func RawItems() []entities.RawRecord {
	return []entities.RawRecord{
		{ID: 101, Name: "Longsword", FilterType: "Weapon", Type: "Longsword", Weight: 3,
			Sources: []entities.RawSource{{SourceID: SourceBasicRules}}},
		{ID: 102, Name: "Flametongue", FilterType: "Weapon", Type: "Longsword", Rarity: "Rare", CanAttune: true, Magic: true,
			Description: "While the sword is ablaze, it deals an extra 2d6 fire damage.",
			Sources:     []entities.RawSource{{SourceID: SourceDMG}}},
		{ID: 103, Name: "Wand of Fireballs", FilterType: "Wand", Rarity: "Rare", CanAttune: true, Magic: true,
			Sources:    []entities.RawSource{{SourceID: SourceDMG}},
			ItemSpells: []entities.RawItemSpell{{SpellID: 9001, Name: "Fireball", Level: 3, Charges: 1}}},
		{ID: 104, Name: "Spoon of Slurping", FilterType: "Wondrous item", IsHomebrew: true},
		{ID: 105, Name: "Hat of Many Feathers", FilterType: "Wondrous item", IsHomebrew: true},
	}
}

// RawMonsters returns monster records covering the synthesis rules
func RawMonsters() []entities.RawRecord {
	return []entities.RawRecord{
		{
			ID: 201, Name: "Carrion Crawler", Type: "Monstrosity",
			Sources: []entities.RawSource{{SourceID: SourceMonsters}},
			Features: []entities.RawFeature{
				{Name: "Keen Smell", Description: "The carrion crawler has advantage on Wisdom (Perception) checks that rely on smell."},
				{Name: "Tentacles", Type: "action", Description: CarrionCrawlerTentacles},
			},
		},
		{
			ID: 202, Name: "Lich", Type: "Undead",
			Sources: []entities.RawSource{{SourceID: SourceMonsters}},
			Features: []entities.RawFeature{
				{Name: "Legendary Resistance (3/Day)", Description: "If the lich fails a saving throw, it can choose to succeed instead."},
			},
		},
		{
			ID: 203, Name: "Wolf", Type: "Beast",
			Sources: []entities.RawSource{{SourceID: SourceMonsters}},
			Features: []entities.RawFeature{
				{Name: "Pack Tactics", Description: "The wolf has advantage on an attack roll against a creature if at least one of the wolf's allies is within 5 feet of the creature."},
			},
		},
	}
}
