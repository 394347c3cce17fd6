// Package storage defines the persistence boundary for the difficulty
// engine. Tuning data lives in the world database and is read-only at
// runtime; player score, instance hard-mode saves and encounter logs live
// in the characters database and are written through as they change.
package storage

import "context"

// RuleRecord is one row of zone adjustment tuning. Modes is the mode
// bitmask the row applies to.
type RuleRecord struct {
	Zone        uint32
	Phase       uint32
	Healing     float64
	Absorb      float64
	MeleeDamage float64
	SpellDamage float64
	Modes       uint8
}

// SpellOverrideRecord pins a single spell to a fixed multiplier.
type SpellOverrideRecord struct {
	SpellID uint32
	Factor  float64
}

// DisallowedBuffRecord lists auras stripped from players entering a map.
type DisallowedBuffRecord struct {
	MapID    uint32
	SpellIDs []uint32
}

// CreatureOverrideRecord retunes a creature template's max health.
type CreatureOverrideRecord struct {
	Entry  uint32
	Factor float64
}

// AbilityRecord is one scripted hard-mode cast for a creature template.
// Durations are milliseconds.
type AbilityRecord struct {
	Entry       uint32
	Chance      uint8
	SpellID     uint32
	Selector    uint8
	TargetArg   uint8
	DelayMS     int64
	CooldownMS  int64
	Repetitions uint8
}

// HardmodeMapRecord marks an encounter on a map as score-awarding and
// names the map's reward category and switch object.
type HardmodeMapRecord struct {
	MapID          uint32
	EncounterEntry uint32
	OverrideGO     uint32
	Category       uint8
}

// RewardRecord is one redeemable catalog entry.
type RewardRecord struct {
	Category            uint8
	SlotClass           uint8
	ItemID              uint32
	Price               uint32
	EnchantID           uint32
	EnchantSlot         uint8
	RequiredAchievement uint32
}

// WorldStore reads the tuning tables. Implementations return rows in a
// stable order so loads are deterministic.
type WorldStore interface {
	ListRules(ctx context.Context) ([]RuleRecord, error)
	ListSpellOverrides(ctx context.Context) ([]SpellOverrideRecord, error)
	ListDisallowedBuffs(ctx context.Context) ([]DisallowedBuffRecord, error)
	ListCreatureOverrides(ctx context.Context) ([]CreatureOverrideRecord, error)
	ListAbilities(ctx context.Context) ([]AbilityRecord, error)
	ListHardmodeMaps(ctx context.Context) ([]HardmodeMapRecord, error)
	ListRewards(ctx context.Context) ([]RewardRecord, error)
	Close() error
}

// InstanceSaveRecord persists the hard-mode switch for one live instance.
// Completed marks that a tracked encounter has finished there, which
// permanently locks the switch against being turned back on.
type InstanceSaveRecord struct {
	InstanceID uint32
	MapID      uint32
	Hardmode   bool
	Completed  bool
}

// ScoreRecord is one character's balance in one reward category.
type ScoreRecord struct {
	CharacterID uint64
	Category    uint8
	Score       uint32
}

// EncounterLogRecord is an audit row written per present player when a
// tracked encounter completes in hard mode. Timestamps are milliseconds
// since epoch, UTC.
type EncounterLogRecord struct {
	InstanceID     uint32
	MapID          uint32
	EncounterEntry uint32
	CharacterID    uint64
	Mode           uint32
	StartTimestamp int64
	EndTimestamp   int64
}

// CharactersStore holds the player-facing runtime state.
type CharactersStore interface {
	ListInstanceSaves(ctx context.Context) ([]InstanceSaveRecord, error)
	UpsertInstanceSave(ctx context.Context, rec InstanceSaveRecord) error
	DeleteInstanceSave(ctx context.Context, instanceID uint32) error

	ListScores(ctx context.Context) ([]ScoreRecord, error)
	UpsertScore(ctx context.Context, rec ScoreRecord) error

	InsertEncounterLog(ctx context.Context, rec EncounterLogRecord) error

	Close() error
}
