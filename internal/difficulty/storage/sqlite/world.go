package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/storage"
	world "github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/storage/sqlite/migrations/world"
)

// WorldStore reads the tuning tables from a SQLite world database.
type WorldStore struct {
	sqlDB *sql.DB
}

// OpenWorld opens the world tuning store and applies embedded migrations.
func OpenWorld(path string) (*WorldStore, error) {
	sqlDB, err := open(path, world.FS)
	if err != nil {
		return nil, err
	}
	return &WorldStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *WorldStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ListRules returns every zone adjustment row, duel rows included.
func (s *WorldStore) ListRules(ctx context.Context) ([]storage.RuleRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT zone, phase, healing, absorb, melee_damage, spell_damage, modes
		FROM zone_difficulty_info
		ORDER BY zone, phase, modes`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []storage.RuleRecord
	for rows.Next() {
		var rec storage.RuleRecord
		if err := rows.Scan(&rec.Zone, &rec.Phase, &rec.Healing, &rec.Absorb, &rec.MeleeDamage, &rec.SpellDamage, &rec.Modes); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListSpellOverrides returns the per-spell multiplier rows.
func (s *WorldStore) ListSpellOverrides(ctx context.Context) ([]storage.SpellOverrideRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT spell_id, factor
		FROM zone_difficulty_spell_overrides
		ORDER BY spell_id`)
	if err != nil {
		return nil, fmt.Errorf("list spell overrides: %w", err)
	}
	defer rows.Close()

	var out []storage.SpellOverrideRecord
	for rows.Next() {
		var rec storage.SpellOverrideRecord
		if err := rows.Scan(&rec.SpellID, &rec.Factor); err != nil {
			return nil, fmt.Errorf("scan spell override: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListDisallowedBuffs returns stripped auras grouped per map.
func (s *WorldStore) ListDisallowedBuffs(ctx context.Context) ([]storage.DisallowedBuffRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT map_id, spell_id
		FROM zone_difficulty_disallowed_buffs
		ORDER BY map_id, spell_id`)
	if err != nil {
		return nil, fmt.Errorf("list disallowed buffs: %w", err)
	}
	defer rows.Close()

	var out []storage.DisallowedBuffRecord
	for rows.Next() {
		var mapID, spellID uint32
		if err := rows.Scan(&mapID, &spellID); err != nil {
			return nil, fmt.Errorf("scan disallowed buff: %w", err)
		}
		if n := len(out); n > 0 && out[n-1].MapID == mapID {
			out[n-1].SpellIDs = append(out[n-1].SpellIDs, spellID)
			continue
		}
		out = append(out, storage.DisallowedBuffRecord{MapID: mapID, SpellIDs: []uint32{spellID}})
	}
	return out, rows.Err()
}

// ListCreatureOverrides returns the creature health retuning rows.
func (s *WorldStore) ListCreatureOverrides(ctx context.Context) ([]storage.CreatureOverrideRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT entry, health_factor
		FROM zone_difficulty_creature_overrides
		ORDER BY entry`)
	if err != nil {
		return nil, fmt.Errorf("list creature overrides: %w", err)
	}
	defer rows.Close()

	var out []storage.CreatureOverrideRecord
	for rows.Next() {
		var rec storage.CreatureOverrideRecord
		if err := rows.Scan(&rec.Entry, &rec.Factor); err != nil {
			return nil, fmt.Errorf("scan creature override: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListAbilities returns the scripted ability rows in scheduling order.
func (s *WorldStore) ListAbilities(ctx context.Context) ([]storage.AbilityRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT entry, chance, spell_id, selector, target_arg, delay_ms, cooldown_ms, repetitions
		FROM zone_difficulty_hardmode_ai
		ORDER BY entry, ordinal`)
	if err != nil {
		return nil, fmt.Errorf("list abilities: %w", err)
	}
	defer rows.Close()

	var out []storage.AbilityRecord
	for rows.Next() {
		var rec storage.AbilityRecord
		err := rows.Scan(&rec.Entry, &rec.Chance, &rec.SpellID, &rec.Selector, &rec.TargetArg, &rec.DelayMS, &rec.CooldownMS, &rec.Repetitions)
		if err != nil {
			return nil, fmt.Errorf("scan ability: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListHardmodeMaps returns the score-awarding encounter rows.
func (s *WorldStore) ListHardmodeMaps(ctx context.Context) ([]storage.HardmodeMapRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT map_id, encounter_entry, override_go, category
		FROM zone_difficulty_hardmode_maps
		ORDER BY map_id, encounter_entry`)
	if err != nil {
		return nil, fmt.Errorf("list hardmode maps: %w", err)
	}
	defer rows.Close()

	var out []storage.HardmodeMapRecord
	for rows.Next() {
		var rec storage.HardmodeMapRecord
		if err := rows.Scan(&rec.MapID, &rec.EncounterEntry, &rec.OverrideGO, &rec.Category); err != nil {
			return nil, fmt.Errorf("scan hardmode map: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListRewards returns the reward catalog rows in menu order.
func (s *WorldStore) ListRewards(ctx context.Context) ([]storage.RewardRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT category, slot_class, item_id, price, enchant_id, enchant_slot, required_achievement
		FROM zone_difficulty_rewards
		ORDER BY category, slot_class, item_id`)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var out []storage.RewardRecord
	for rows.Next() {
		var rec storage.RewardRecord
		err := rows.Scan(&rec.Category, &rec.SlotClass, &rec.ItemID, &rec.Price, &rec.EnchantID, &rec.EnchantSlot, &rec.RequiredAchievement)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// InsertRule writes one tuning row; used by seeding and tests.
func (s *WorldStore) InsertRule(ctx context.Context, rec storage.RuleRecord) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		REPLACE INTO zone_difficulty_info (zone, phase, healing, absorb, melee_damage, spell_damage, modes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Zone, rec.Phase, rec.Healing, rec.Absorb, rec.MeleeDamage, rec.SpellDamage, rec.Modes)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

// InsertSpellOverride writes one per-spell multiplier row.
func (s *WorldStore) InsertSpellOverride(ctx context.Context, rec storage.SpellOverrideRecord) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		REPLACE INTO zone_difficulty_spell_overrides (spell_id, factor) VALUES (?, ?)`,
		rec.SpellID, rec.Factor)
	if err != nil {
		return fmt.Errorf("insert spell override: %w", err)
	}
	return nil
}

// InsertDisallowedBuff writes one stripped-aura row.
func (s *WorldStore) InsertDisallowedBuff(ctx context.Context, mapID, spellID uint32) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		REPLACE INTO zone_difficulty_disallowed_buffs (map_id, spell_id) VALUES (?, ?)`,
		mapID, spellID)
	if err != nil {
		return fmt.Errorf("insert disallowed buff: %w", err)
	}
	return nil
}

// InsertCreatureOverride writes one creature health row.
func (s *WorldStore) InsertCreatureOverride(ctx context.Context, rec storage.CreatureOverrideRecord) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		REPLACE INTO zone_difficulty_creature_overrides (entry, health_factor) VALUES (?, ?)`,
		rec.Entry, rec.Factor)
	if err != nil {
		return fmt.Errorf("insert creature override: %w", err)
	}
	return nil
}

// InsertAbility writes one scripted ability row at the given ordinal.
func (s *WorldStore) InsertAbility(ctx context.Context, ordinal int, rec storage.AbilityRecord) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		REPLACE INTO zone_difficulty_hardmode_ai
			(entry, ordinal, chance, spell_id, selector, target_arg, delay_ms, cooldown_ms, repetitions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Entry, ordinal, rec.Chance, rec.SpellID, rec.Selector, rec.TargetArg, rec.DelayMS, rec.CooldownMS, rec.Repetitions)
	if err != nil {
		return fmt.Errorf("insert ability: %w", err)
	}
	return nil
}

// InsertHardmodeMap writes one score-awarding encounter row.
func (s *WorldStore) InsertHardmodeMap(ctx context.Context, rec storage.HardmodeMapRecord) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		REPLACE INTO zone_difficulty_hardmode_maps (map_id, encounter_entry, override_go, category)
		VALUES (?, ?, ?, ?)`,
		rec.MapID, rec.EncounterEntry, rec.OverrideGO, rec.Category)
	if err != nil {
		return fmt.Errorf("insert hardmode map: %w", err)
	}
	return nil
}

// InsertReward writes one reward catalog row.
func (s *WorldStore) InsertReward(ctx context.Context, rec storage.RewardRecord) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		REPLACE INTO zone_difficulty_rewards
			(category, slot_class, item_id, price, enchant_id, enchant_slot, required_achievement)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Category, rec.SlotClass, rec.ItemID, rec.Price, rec.EnchantID, rec.EnchantSlot, rec.RequiredAchievement)
	if err != nil {
		return fmt.Errorf("insert reward: %w", err)
	}
	return nil
}
