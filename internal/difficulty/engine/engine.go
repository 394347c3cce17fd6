// Package engine assembles the difficulty subsystems behind one facade.
// The host wires storage and its own collaborators in, then drives the
// engine through combat hooks and a periodic Advance tick.
package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/host"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/instance"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/modifier"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/redemption"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/rules"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/scheduler"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/score"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/storage"
	"github.com/Nyeriah/mod-zone-difficulty/internal/platform/config"
)

// Config holds the engine's tunables, loaded from the environment.
type Config struct {
	Enabled bool `env:"ZONE_DIFFICULTY_ENABLED" envDefault:"true"`
	Debug   bool `env:"ZONE_DIFFICULTY_DEBUG"`

	// HardmodeHealthModifier is the default hard-mode creature health
	// multiplier when no per-creature override exists.
	HardmodeHealthModifier float64 `env:"ZONE_DIFFICULTY_HARDMODE_HEALTH_MODIFIER" envDefault:"2"`

	SpellBuffOnlyBosses bool `env:"ZONE_DIFFICULTY_SPELL_BUFF_ONLY_BOSSES"`
	MeleeBuffOnlyBosses bool `env:"ZONE_DIFFICULTY_MELEE_BUFF_ONLY_BOSSES"`

	WorldDBPath      string `env:"ZONE_DIFFICULTY_WORLD_DB" envDefault:"world.db"`
	CharactersDBPath string `env:"ZONE_DIFFICULTY_CHARACTERS_DB" envDefault:"characters.db"`
}

// LoadConfig reads engine configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Deps are the host collaborators the engine needs. All fields except
// Rand and Now are required.
type Deps struct {
	Notifier     host.Notifier
	SpellRanges  host.SpellRanges
	ItemGranter  host.ItemGranter
	Achievements host.AchievementSource
	ItemNames    host.ItemNames

	// Rand seeds ability chance rolls and target selection; nil uses a
	// time-seeded source.
	Rand *rand.Rand
	// Now supplies the tracker clock; nil uses time.Now.
	Now func() time.Time
}

// Engine is the composed difficulty runtime.
type Engine struct {
	cfg        Config
	world      storage.WorldStore
	characters storage.CharactersStore

	set       *rules.Set
	pipeline  *modifier.Pipeline
	scheduler *scheduler.Scheduler
	tracker   *instance.Tracker
	ledger    *score.Ledger
	flow      *redemption.Flow
}

// New wires the engine's subsystems together. Rules start empty; call
// Load before serving combat hooks.
func New(cfg Config, world storage.WorldStore, characters storage.CharactersStore, deps Deps) *Engine {
	e := &Engine{
		cfg:        cfg,
		world:      world,
		characters: characters,
		set:        rules.NewSet(),
	}
	e.ledger = score.NewLedger(characters, deps.Notifier)
	e.tracker = instance.NewTracker(characters, deps.Notifier, e.ledger, e.set, deps.Now)
	e.pipeline = modifier.New(e.set, e.tracker.HardmodeOn, cfg.SpellBuffOnlyBosses, cfg.MeleeBuffOnlyBosses)
	e.scheduler = scheduler.New(e.set, deps.SpellRanges, e.tracker.HardmodeOn, deps.Rand)
	e.flow = redemption.NewFlow(e.set, e.ledger, deps.ItemGranter, deps.Achievements, deps.ItemNames, deps.Notifier)
	return e
}

// Load reads all rule tables and persisted runtime state. isLive reports
// whether an instance id still exists on the host; stale saves for dead
// instances are purged.
func (e *Engine) Load(ctx context.Context, isLive func(instanceID uint32) bool) error {
	ctx, span := otel.Tracer("difficulty/engine").Start(ctx, "engine.Load")
	defer span.End()

	set, err := e.buildSet(ctx)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	e.swap(set)

	if err := e.ledger.Load(ctx); err != nil {
		return fmt.Errorf("load scores: %w", err)
	}
	if err := e.tracker.Load(ctx, isLive); err != nil {
		return fmt.Errorf("load instance saves: %w", err)
	}

	span.SetAttributes(attribute.Int("rules.abilities_pending", e.scheduler.Pending()))
	return nil
}

// Reload rebuilds the rule set from the world store and swaps it into
// every subsystem. Runtime state (scores, hard-mode flags, pending
// ability casts) is untouched.
func (e *Engine) Reload(ctx context.Context) error {
	set, err := e.buildSet(ctx)
	if err != nil {
		return fmt.Errorf("reload rules: %w", err)
	}
	e.swap(set)
	log.Printf("difficulty: rules reloaded")
	return nil
}

func (e *Engine) swap(set *rules.Set) {
	e.set = set
	e.pipeline.SwapRules(set)
	e.scheduler.SwapRules(set)
	e.tracker.SwapRules(set)
	e.flow.SwapRules(set)
}

// buildSet converts persisted records into a validated rule set. Invalid
// rows are logged and skipped; the rest of the table still loads.
func (e *Engine) buildSet(ctx context.Context) (*rules.Set, error) {
	set := rules.NewSet()

	ruleRecs, err := e.world.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range ruleRecs {
		err := set.AddRule(rec.Zone, rec.Phase, rec.Healing, rec.Absorb, rec.MeleeDamage, rec.SpellDamage, rules.Mode(rec.Modes))
		if err != nil {
			log.Printf("difficulty: skipping rule zone=%d phase=%d: %v", rec.Zone, rec.Phase, err)
		}
	}

	overrides, err := e.world.ListSpellOverrides(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range overrides {
		set.AddSpellOverride(rec.SpellID, rec.Factor)
	}

	buffs, err := e.world.ListDisallowedBuffs(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range buffs {
		set.AddDisallowedBuffs(rec.MapID, rec.SpellIDs)
	}

	creatures, err := e.world.ListCreatureOverrides(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range creatures {
		set.AddCreatureHealthOverride(rec.Entry, rec.Factor)
	}

	abilities, err := e.world.ListAbilities(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range abilities {
		err := set.AddAbility(rec.Entry, rules.Ability{
			Chance:      rec.Chance,
			SpellID:     rec.SpellID,
			Selector:    rules.TargetSelector(rec.Selector),
			TargetArg:   rec.TargetArg,
			Delay:       time.Duration(rec.DelayMS) * time.Millisecond,
			Cooldown:    time.Duration(rec.CooldownMS) * time.Millisecond,
			Repetitions: rec.Repetitions,
		})
		if err != nil {
			log.Printf("difficulty: skipping ability entry=%d spell=%d: %v", rec.Entry, rec.SpellID, err)
		}
	}

	maps, err := e.world.ListHardmodeMaps(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range maps {
		set.AddHardmodeEncounter(rec.MapID, rec.EncounterEntry, rec.OverrideGO, rules.Category(rec.Category))
	}

	rewards, err := e.world.ListRewards(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range rewards {
		set.AddReward(rules.Category(rec.Category), rules.SlotClass(rec.SlotClass), rules.Reward{
			ItemID:              rec.ItemID,
			Price:               rec.Price,
			EnchantID:           rec.EnchantID,
			EnchantSlot:         rec.EnchantSlot,
			RequiredAchievement: rec.RequiredAchievement,
		})
	}

	return set, nil
}

// Rules exposes the loaded rule set for host-side menus.
func (e *Engine) Rules() *rules.Set { return e.set }

// Ledger exposes the score ledger.
func (e *Engine) Ledger() *score.Ledger { return e.ledger }

// Tracker exposes the per-instance hard-mode tracker.
func (e *Engine) Tracker() *instance.Tracker { return e.tracker }

// Redemption exposes the reward redemption flow.
func (e *Engine) Redemption() *redemption.Flow { return e.flow }

// Advance fires all scripted ability casts due at or before now.
func (e *Engine) Advance(now time.Time) {
	if !e.cfg.Enabled {
		return
	}
	e.scheduler.Advance(now)
}

// OnUnitEnterCombat rolls and schedules the unit's scripted abilities.
func (e *Engine) OnUnitEnterCombat(unit host.Unit, now time.Time) {
	if !e.cfg.Enabled {
		return
	}
	e.scheduler.OnCombatStart(unit, now)
}

// OnUnitLeaveCombat drops the unit's pending scripted casts.
func (e *Engine) OnUnitLeaveCombat(unit host.Unit) {
	e.scheduler.CancelUnit(unit.ID())
}

// AdjustHeal rescales an incoming direct heal.
func (e *Engine) AdjustHeal(t modifier.Target, spell *modifier.Spell, raw int64) int64 {
	if !e.cfg.Enabled {
		return raw
	}
	adjusted := e.pipeline.AdjustHeal(t, spell, raw)
	e.debugAmount("heal", spell, raw, adjusted)
	return adjusted
}

// AdjustAbsorb rescales an absorb shield amount.
func (e *Engine) AdjustAbsorb(t modifier.Target, spell *modifier.Spell, raw int64) int64 {
	if !e.cfg.Enabled {
		return raw
	}
	adjusted := e.pipeline.AdjustAbsorb(t, spell, raw)
	e.debugAmount("absorb", spell, raw, adjusted)
	return adjusted
}

// AdjustSpellDamage rescales incoming direct spell damage.
func (e *Engine) AdjustSpellDamage(t modifier.Target, spell *modifier.Spell, attacker modifier.Attacker, raw int64) int64 {
	if !e.cfg.Enabled {
		return raw
	}
	adjusted := e.pipeline.AdjustSpellDamage(t, spell, attacker, raw)
	e.debugAmount("spell damage", spell, raw, adjusted)
	return adjusted
}

// AdjustPeriodicDamage rescales one tick of damage-over-time.
func (e *Engine) AdjustPeriodicDamage(t modifier.Target, spell *modifier.Spell, attacker modifier.Attacker, raw int64) int64 {
	if !e.cfg.Enabled {
		return raw
	}
	adjusted := e.pipeline.AdjustPeriodicDamage(t, spell, attacker, raw)
	e.debugAmount("periodic damage", spell, raw, adjusted)
	return adjusted
}

// AdjustMeleeDamage rescales incoming melee damage.
func (e *Engine) AdjustMeleeDamage(t modifier.Target, attacker modifier.Attacker, raw int64) int64 {
	if !e.cfg.Enabled {
		return raw
	}
	return e.pipeline.AdjustMeleeDamage(t, attacker, raw)
}

func (e *Engine) debugAmount(kind string, spell *modifier.Spell, raw, adjusted int64) {
	if !e.cfg.Debug || raw == adjusted {
		return
	}
	var spellID uint32
	if spell != nil {
		spellID = spell.ID
	}
	log.Printf("difficulty: %s spell=%d %d -> %d", kind, spellID, raw, adjusted)
}

// OnEncounterStarted marks a tracked encounter in progress.
func (e *Engine) OnEncounterStarted(enc instance.Encounter) {
	if !e.cfg.Enabled {
		return
	}
	e.tracker.OnEncounterStarted(enc)
}

// OnEncounterDone finishes a tracked encounter: audit rows are written
// and hard-mode score is credited to eligible players.
func (e *Engine) OnEncounterDone(ctx context.Context, enc instance.Encounter) {
	if !e.cfg.Enabled {
		return
	}
	e.tracker.OnEncounterDone(ctx, enc)
}

// OnEncounterFailed clears the in-progress flag after a wipe.
func (e *Engine) OnEncounterFailed(enc instance.Encounter) {
	e.tracker.OnEncounterFailed(enc)
}

// OnInstanceRemoved drops all tracked state for a dead instance.
func (e *Engine) OnInstanceRemoved(ctx context.Context, instanceID uint32) {
	e.tracker.OnInstanceRemoved(ctx, instanceID)
}

// OnMapChanged strips the map's disallowed buffs from the entering
// character.
func (e *Engine) OnMapChanged(holder host.BuffHolder, mapID uint32) {
	if !e.cfg.Enabled {
		return
	}
	for _, spellID := range e.set.DisallowedBuffs(mapID) {
		holder.RemoveAura(spellID)
	}
}

// OnPetAdded strips the map's disallowed buffs from a freshly added pet.
// Hosts invoke it once the pet has finished receiving its owner's auras.
func (e *Engine) OnPetAdded(holder host.BuffHolder, mapID uint32) {
	e.OnMapChanged(holder, mapID)
}

// ScoreSummary returns the character's balances across every category as
// a whisperable string.
func (e *Engine) ScoreSummary(characterID uint64) string {
	categories := make([]rules.Category, 0, int(rules.MaxCategory))
	for c := rules.Category(1); c <= rules.MaxCategory; c++ {
		categories = append(categories, c)
	}
	return e.ledger.Summary(characterID, categories)
}

// Creature is a snapshot of a spawning creature for health retuning.
type Creature struct {
	Entry    uint32
	MaxLevel uint8
	IsBoss   bool
	// PlayerControlled covers pets, guardians and other player summons.
	PlayerControlled bool

	MapIsRaid    bool
	MapIsHeroic  bool
	MapIsDungeon bool
}

// CreatureHealthFactor returns the max-health multiplier to apply to a
// creature spawning into the instance, and whether one applies at all.
// Bosses are only retuned when a per-creature override row exists; other
// creatures fall back to the configured default. Critters, player
// summons and non-raid non-heroic maps are never retuned.
func (e *Engine) CreatureHealthFactor(c Creature, instanceID uint32) (float64, bool) {
	if !e.cfg.Enabled || !e.tracker.HardmodeOn(instanceID) {
		return 1, false
	}
	if c.PlayerControlled || c.MaxLevel <= 1 {
		return 1, false
	}
	if !c.MapIsRaid && !(c.MapIsHeroic && c.MapIsDungeon) {
		return 1, false
	}
	if factor, ok := e.set.CreatureHealthOverride(c.Entry); ok {
		return factor, true
	}
	if c.IsBoss {
		return 1, false
	}
	if e.cfg.HardmodeHealthModifier > 0 && e.cfg.HardmodeHealthModifier != 1 {
		return e.cfg.HardmodeHealthModifier, true
	}
	return 1, false
}
