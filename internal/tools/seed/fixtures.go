package seed

import (
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/rules"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/storage"
)

// Fixture ids reference well-known TBC content: Tempest Keep (map 550,
// Kael'thas 19622), Serpentshrine Cavern (map 548, Vashj 21212) and the
// Heroic Shattered Halls (map 540).

func fixtureRules() []storage.RuleRecord {
	normal := uint8(rules.ModeNormal)
	hard := uint8(rules.ModeHard)
	return []storage.RuleRecord{
		// Duel tuning, phase 0 only.
		{Zone: rules.DuelZone, Phase: 0, Healing: 0.6, Absorb: 0.6, MeleeDamage: 1, SpellDamage: 1, Modes: normal},

		// Tempest Keep: normal pre-nerf tuning plus a hard-mode row.
		{Zone: 3845, Phase: 0, Healing: 0.5, Absorb: 0.5, MeleeDamage: 1.2, SpellDamage: 1.2, Modes: normal},
		{Zone: 3845, Phase: 0, Healing: 0.35, Absorb: 0.35, MeleeDamage: 1.5, SpellDamage: 1.5, Modes: hard},

		// Serpentshrine Cavern.
		{Zone: 3607, Phase: 0, Healing: 0.5, Absorb: 0.5, MeleeDamage: 1.2, SpellDamage: 1.2, Modes: normal},

		// Shattered Halls, phased tuning example.
		{Zone: 3713, Phase: 1, Healing: 0.8, Absorb: 0.8, MeleeDamage: 1.1, SpellDamage: 1.1, Modes: normal},
		{Zone: 3713, Phase: 4, Healing: 0.7, Absorb: 0.7, MeleeDamage: 1.15, SpellDamage: 1.15, Modes: normal},
	}
}

func fixtureSpellOverrides() []storage.SpellOverrideRecord {
	return []storage.SpellOverrideRecord{
		// Earth Shield healing kept at a fixed fraction regardless of zone.
		{SpellID: 379, Factor: 0.5},
		// Vampiric Touch mana return.
		{SpellID: 34919, Factor: 0.6},
	}
}

func fixtureDisallowedBuffs() [][2]uint32 {
	return [][2]uint32{
		// WotLK food buffs stripped on entering Outland raids.
		{550, 57399},
		{550, 57327},
		{548, 57399},
	}
}

func fixtureCreatureOverrides() []storage.CreatureOverrideRecord {
	return []storage.CreatureOverrideRecord{
		// Kael'thas gets a steeper hard-mode health boost than the default.
		{Entry: 19622, Factor: 3},
	}
}

func fixtureAbilities() map[uint32][]storage.AbilityRecord {
	return map[uint32][]storage.AbilityRecord{
		// Kael'thas: guaranteed Pyroblast at the tank, random Flamestrike.
		19622: {
			{Chance: 100, SpellID: 36819, Selector: uint8(rules.SelectorVictim), DelayMS: 10000, CooldownMS: 25000},
			{Chance: 50, SpellID: 36731, Selector: uint8(rules.SelectorRandomNotTop), DelayMS: 15000, CooldownMS: 30000},
		},
		// Vashj: Static Charge on everyone within 40 yards, once.
		21212: {
			{Chance: 100, SpellID: 38280, Selector: uint8(rules.SelectorDistance), TargetArg: 40, DelayMS: 20000, Repetitions: 1},
		},
	}
}

func fixtureHardmodeMaps() []storage.HardmodeMapRecord {
	t5 := uint8(rules.CategoryRaidT5)
	return []storage.HardmodeMapRecord{
		{MapID: 550, EncounterEntry: 19622, Category: t5},
		{MapID: 548, EncounterEntry: 21212, Category: t5},
	}
}

func fixtureRewards() []storage.RewardRecord {
	t5 := uint8(rules.CategoryRaidT5)
	return []storage.RewardRecord{
		{Category: t5, SlotClass: uint8(rules.SlotClassCloth), ItemID: 30107, Price: 2},
		{Category: t5, SlotClass: uint8(rules.SlotClassCloth), ItemID: 30109, Price: 5, EnchantID: 2928, EnchantSlot: 1},
		{Category: t5, SlotClass: uint8(rules.SlotClassWeapons), ItemID: 32837, Price: 10, RequiredAchievement: 426},
		{Category: t5, SlotClass: uint8(rules.SlotClassMisc), ItemID: 30018, Price: 3},
	}
}
