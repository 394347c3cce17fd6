package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/storage"
	characters "github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/storage/sqlite/migrations/characters"
)

// CharactersStore persists player score, instance saves and encounter
// logs in a SQLite characters database.
type CharactersStore struct {
	sqlDB *sql.DB
}

// OpenCharacters opens the characters store and applies embedded
// migrations.
func OpenCharacters(path string) (*CharactersStore, error) {
	sqlDB, err := open(path, characters.FS)
	if err != nil {
		return nil, err
	}
	return &CharactersStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *CharactersStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ListInstanceSaves returns every persisted hard-mode switch.
func (s *CharactersStore) ListInstanceSaves(ctx context.Context) ([]storage.InstanceSaveRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT instance_id, map_id, hardmode, completed
		FROM zone_difficulty_instance_saves
		ORDER BY instance_id`)
	if err != nil {
		return nil, fmt.Errorf("list instance saves: %w", err)
	}
	defer rows.Close()

	var out []storage.InstanceSaveRecord
	for rows.Next() {
		var rec storage.InstanceSaveRecord
		if err := rows.Scan(&rec.InstanceID, &rec.MapID, &rec.Hardmode, &rec.Completed); err != nil {
			return nil, fmt.Errorf("scan instance save: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpsertInstanceSave writes the hard-mode switch for one instance.
func (s *CharactersStore) UpsertInstanceSave(ctx context.Context, rec storage.InstanceSaveRecord) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		REPLACE INTO zone_difficulty_instance_saves (instance_id, map_id, hardmode, completed)
		VALUES (?, ?, ?, ?)`,
		rec.InstanceID, rec.MapID, rec.Hardmode, rec.Completed)
	if err != nil {
		return fmt.Errorf("upsert instance save: %w", err)
	}
	return nil
}

// DeleteInstanceSave removes the row for a destroyed instance.
func (s *CharactersStore) DeleteInstanceSave(ctx context.Context, instanceID uint32) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM zone_difficulty_instance_saves WHERE instance_id = ?`, instanceID)
	if err != nil {
		return fmt.Errorf("delete instance save: %w", err)
	}
	return nil
}

// ListScores returns every character score row.
func (s *CharactersStore) ListScores(ctx context.Context) ([]storage.ScoreRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT character_id, category, score
		FROM zone_difficulty_score
		ORDER BY character_id, category`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var out []storage.ScoreRecord
	for rows.Next() {
		var rec storage.ScoreRecord
		if err := rows.Scan(&rec.CharacterID, &rec.Category, &rec.Score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpsertScore writes one character's balance in one category.
func (s *CharactersStore) UpsertScore(ctx context.Context, rec storage.ScoreRecord) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		REPLACE INTO zone_difficulty_score (character_id, category, score)
		VALUES (?, ?, ?)`,
		rec.CharacterID, rec.Category, rec.Score)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// InsertEncounterLog appends one audit row.
func (s *CharactersStore) InsertEncounterLog(ctx context.Context, rec storage.EncounterLogRecord) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO zone_difficulty_encounter_logs
			(instance_id, map_id, encounter_entry, character_id, mode, start_ts, end_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.InstanceID, rec.MapID, rec.EncounterEntry, rec.CharacterID, rec.Mode, rec.StartTimestamp, rec.EndTimestamp)
	if err != nil {
		return fmt.Errorf("insert encounter log: %w", err)
	}
	return nil
}

// ListEncounterLogs returns audit rows for one character, newest first.
func (s *CharactersStore) ListEncounterLogs(ctx context.Context, characterID uint64) ([]storage.EncounterLogRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT instance_id, map_id, encounter_entry, character_id, mode, start_ts, end_ts
		FROM zone_difficulty_encounter_logs
		WHERE character_id = ?
		ORDER BY end_ts DESC`, characterID)
	if err != nil {
		return nil, fmt.Errorf("list encounter logs: %w", err)
	}
	defer rows.Close()

	var out []storage.EncounterLogRecord
	for rows.Next() {
		var rec storage.EncounterLogRecord
		err := rows.Scan(&rec.InstanceID, &rec.MapID, &rec.EncounterEntry, &rec.CharacterID, &rec.Mode, &rec.StartTimestamp, &rec.EndTimestamp)
		if err != nil {
			return nil, fmt.Errorf("scan encounter log: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
