// Package instance tracks the hard-mode switch and encounter progress of
// every live instance. The switch follows a one-way lock: once any tracked
// encounter has been completed, hard mode can never be turned back on for
// that instance, and turning it off asks for an explicit confirmation.
package instance

import (
	"context"
	"log"
	"time"

	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/host"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/rules"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/score"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/storage"
)

// hardmodeLogMode is the mode value stamped on encounter audit rows.
const hardmodeLogMode = 64

// SwitchResult is the outcome of a hard-mode switch request.
type SwitchResult uint8

const (
	// SwitchApplied means the switch changed and was announced.
	SwitchApplied SwitchResult = iota
	// SwitchRefusedLocked means a completed encounter permanently blocks
	// turning hard mode on.
	SwitchRefusedLocked
	// SwitchRefusedInProgress means a fight is running right now.
	SwitchRefusedInProgress
	// SwitchNeedsConfirmation means turning hard mode off would be
	// irreversible and the caller must confirm the request.
	SwitchNeedsConfirmation
)

func (r SwitchResult) String() string {
	switch r {
	case SwitchApplied:
		return "applied"
	case SwitchRefusedLocked:
		return "refused: locked"
	case SwitchRefusedInProgress:
		return "refused: encounter in progress"
	case SwitchNeedsConfirmation:
		return "needs confirmation"
	default:
		return "unknown"
	}
}

// Encounter describes a boss state transition reported by the host.
type Encounter struct {
	InstanceID uint32
	MapID      uint32
	Entry      uint32

	MapIsRaid    bool
	MapIsHeroic  bool
	MapIsDungeon bool

	// Players present in the instance at the moment of the transition.
	Players []host.Presence
}

func (e Encounter) scoringMapKind() bool {
	return e.MapIsRaid || (e.MapIsHeroic && e.MapIsDungeon)
}

type record struct {
	mapID        uint32
	hardmode     bool
	anyCompleted bool
	inProgress   bool
	started      time.Time
}

// Tracker owns the per-instance hard-mode state.
type Tracker struct {
	store  storage.CharactersStore
	notify host.Notifier
	ledger *score.Ledger
	rules  *rules.Set
	now    func() time.Time

	records map[uint32]*record
}

// NewTracker wires the tracker to its collaborators. now may be nil and
// defaults to the wall clock.
func NewTracker(store storage.CharactersStore, notify host.Notifier, ledger *score.Ledger, set *rules.Set, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		store:   store,
		notify:  notify,
		ledger:  ledger,
		rules:   set,
		now:     now,
		records: make(map[uint32]*record),
	}
}

// SwapRules replaces the rule set after a reload.
func (t *Tracker) SwapRules(set *rules.Set) {
	t.rules = set
}

// Load restores saved hard-mode flags. Saves for instances the host no
// longer knows are deleted; isLive may be nil to keep everything.
func (t *Tracker) Load(ctx context.Context, isLive func(instanceID uint32) bool) error {
	saves, err := t.store.ListInstanceSaves(ctx)
	if err != nil {
		return err
	}
	t.records = make(map[uint32]*record)
	for _, save := range saves {
		if isLive != nil && !isLive(save.InstanceID) {
			if err := t.store.DeleteInstanceSave(ctx, save.InstanceID); err != nil {
				log.Printf("delete stale instance save %d: %v", save.InstanceID, err)
			}
			continue
		}
		t.records[save.InstanceID] = &record{
			mapID:        save.MapID,
			hardmode:     save.Hardmode,
			anyCompleted: save.Completed,
		}
	}
	return nil
}

// HardmodeOn reports the live hard-mode flag for an instance.
func (t *Tracker) HardmodeOn(instanceID uint32) bool {
	rec, ok := t.records[instanceID]
	return ok && rec.hardmode
}

// Tracked reports whether the instance has any recorded state.
func (t *Tracker) Tracked(instanceID uint32) bool {
	_, ok := t.records[instanceID]
	return ok
}

// RequestHardmodeOn tries to enable hard mode for the instance.
func (t *Tracker) RequestHardmodeOn(ctx context.Context, instanceID, mapID uint32) SwitchResult {
	rec := t.ensure(instanceID, mapID)
	if rec.anyCompleted {
		t.persist(ctx, instanceID, rec)
		return SwitchRefusedLocked
	}
	if rec.inProgress {
		return SwitchRefusedInProgress
	}
	rec.hardmode = true
	t.persist(ctx, instanceID, rec)
	t.announce(instanceID, "We're switching to the challenging version of the history lesson now. (Hard mode)")
	return SwitchApplied
}

// RequestHardmodeOff tries to disable hard mode. Once an encounter has
// been completed the change is irreversible, so an unconfirmed request is
// answered with SwitchNeedsConfirmation instead of being applied.
func (t *Tracker) RequestHardmodeOff(ctx context.Context, instanceID, mapID uint32, confirmed bool) SwitchResult {
	rec := t.ensure(instanceID, mapID)
	if rec.anyCompleted && !confirmed {
		return SwitchNeedsConfirmation
	}
	rec.hardmode = false
	t.persist(ctx, instanceID, rec)
	t.announce(instanceID, "We're switching to the cinematic version of the history lesson now. (Normal mode)")
	return SwitchApplied
}

// OnEncounterStarted records a fight beginning. Untracked maps are
// ignored.
func (t *Tracker) OnEncounterStarted(enc Encounter) {
	if _, ok := t.rules.HardmodeMap(enc.MapID); !ok {
		return
	}
	rec := t.ensure(enc.InstanceID, enc.MapID)
	rec.inProgress = true
	if rec.hardmode {
		rec.started = t.now()
	}
}

// OnEncounterDone records a fight ending in victory. In hard mode it
// writes one audit row per present player and, when the encounter is a
// tracked one on a scoring map kind, credits score to every eligible
// player.
func (t *Tracker) OnEncounterDone(ctx context.Context, enc Encounter) {
	if _, ok := t.rules.HardmodeMap(enc.MapID); !ok {
		return
	}
	rec := t.ensure(enc.InstanceID, enc.MapID)
	rec.inProgress = false
	rec.anyCompleted = true
	t.persist(ctx, enc.InstanceID, rec)
	if !rec.hardmode {
		return
	}

	end := t.now()
	start := rec.started
	rec.started = time.Time{}
	if !start.IsZero() {
		for _, p := range enc.Players {
			if !p.Eligible() {
				continue
			}
			err := t.store.InsertEncounterLog(ctx, storage.EncounterLogRecord{
				InstanceID:     enc.InstanceID,
				MapID:          enc.MapID,
				EncounterEntry: enc.Entry,
				CharacterID:    p.CharacterID,
				Mode:           hardmodeLogMode,
				StartTimestamp: start.UTC().UnixMilli(),
				EndTimestamp:   end.UTC().UnixMilli(),
			})
			if err != nil {
				log.Printf("log encounter %d in instance %d: %v", enc.Entry, enc.InstanceID, err)
			}
		}
	}

	category, ok := t.rules.AwardsScore(enc.MapID, enc.Entry)
	if !ok || !enc.scoringMapKind() {
		return
	}
	for _, p := range enc.Players {
		if !p.Eligible() {
			continue
		}
		t.ledger.Credit(ctx, p.CharacterID, category)
	}
}

// OnEncounterFailed records a fight ending in a wipe or reset.
func (t *Tracker) OnEncounterFailed(enc Encounter) {
	rec, ok := t.records[enc.InstanceID]
	if !ok {
		return
	}
	rec.inProgress = false
	rec.started = time.Time{}
}

// OnInstanceRemoved drops all state for a destroyed instance.
func (t *Tracker) OnInstanceRemoved(ctx context.Context, instanceID uint32) {
	delete(t.records, instanceID)
	if err := t.store.DeleteInstanceSave(ctx, instanceID); err != nil {
		log.Printf("delete instance save %d: %v", instanceID, err)
	}
}

func (t *Tracker) ensure(instanceID, mapID uint32) *record {
	rec, ok := t.records[instanceID]
	if !ok {
		rec = &record{mapID: mapID}
		t.records[instanceID] = rec
	}
	if rec.mapID == 0 {
		rec.mapID = mapID
	}
	return rec
}

func (t *Tracker) persist(ctx context.Context, instanceID uint32, rec *record) {
	err := t.store.UpsertInstanceSave(ctx, storage.InstanceSaveRecord{
		InstanceID: instanceID,
		MapID:      rec.mapID,
		Hardmode:   rec.hardmode,
		Completed:  rec.anyCompleted,
	})
	if err != nil {
		log.Printf("persist instance save %d: %v", instanceID, err)
	}
}

func (t *Tracker) announce(instanceID uint32, message string) {
	if t.notify != nil {
		t.notify.BroadcastToInstance(instanceID, message)
	}
}
