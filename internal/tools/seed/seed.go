// Package seed populates a development world database with a small set
// of tuning fixtures: zone rules, scripted abilities, hard-mode maps and
// a reward catalog, enough to exercise every engine path locally.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"

	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	WorldDBPath      string `env:"ZONE_DIFFICULTY_WORLD_DB" envDefault:"world.db"`
	CharactersDBPath string `env:"ZONE_DIFFICULTY_CHARACTERS_DB" envDefault:"characters.db"`
	Verbose          bool
}

// ParseConfig parses flags into a Config. Environment variables provide
// the defaults; flags override.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.WorldDBPath, "world-db", cfg.WorldDBPath, "path to the world sqlite database")
	fs.StringVar(&cfg.CharactersDBPath, "characters-db", cfg.CharactersDBPath, "path to the characters sqlite database")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run creates both databases and writes the fixture rows.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	world, err := sqlite.OpenWorld(cfg.WorldDBPath)
	if err != nil {
		return fmt.Errorf("open world db: %w", err)
	}
	defer world.Close()

	// Opening the characters database applies its migrations; no
	// fixture rows are written, runtime state starts empty.
	characters, err := sqlite.OpenCharacters(cfg.CharactersDBPath)
	if err != nil {
		return fmt.Errorf("open characters db: %w", err)
	}
	defer characters.Close()

	if err := seedWorld(ctx, world, cfg.Verbose, out); err != nil {
		return err
	}

	fmt.Fprintf(out, "seeded %s and %s\n", cfg.WorldDBPath, cfg.CharactersDBPath)
	return nil
}

func seedWorld(ctx context.Context, world *sqlite.WorldStore, verbose bool, out io.Writer) error {
	for _, rec := range fixtureRules() {
		if err := world.InsertRule(ctx, rec); err != nil {
			return fmt.Errorf("insert rule zone=%d: %w", rec.Zone, err)
		}
		if verbose {
			fmt.Fprintf(out, "rule zone=%d phase=%d modes=%d\n", rec.Zone, rec.Phase, rec.Modes)
		}
	}

	for _, rec := range fixtureSpellOverrides() {
		if err := world.InsertSpellOverride(ctx, rec); err != nil {
			return fmt.Errorf("insert spell override %d: %w", rec.SpellID, err)
		}
	}

	for _, pair := range fixtureDisallowedBuffs() {
		if err := world.InsertDisallowedBuff(ctx, pair[0], pair[1]); err != nil {
			return fmt.Errorf("insert disallowed buff map=%d spell=%d: %w", pair[0], pair[1], err)
		}
	}

	for _, rec := range fixtureCreatureOverrides() {
		if err := world.InsertCreatureOverride(ctx, rec); err != nil {
			return fmt.Errorf("insert creature override %d: %w", rec.Entry, err)
		}
	}

	for entry, list := range fixtureAbilities() {
		for ordinal, rec := range list {
			rec.Entry = entry
			if err := world.InsertAbility(ctx, ordinal, rec); err != nil {
				return fmt.Errorf("insert ability entry=%d ordinal=%d: %w", entry, ordinal, err)
			}
		}
	}

	for _, rec := range fixtureHardmodeMaps() {
		if err := world.InsertHardmodeMap(ctx, rec); err != nil {
			return fmt.Errorf("insert hardmode map %d: %w", rec.MapID, err)
		}
	}

	for _, rec := range fixtureRewards() {
		if err := world.InsertReward(ctx, rec); err != nil {
			return fmt.Errorf("insert reward item=%d: %w", rec.ItemID, err)
		}
	}

	return nil
}
