package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/host"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/rules"
)

type cast struct {
	targetID uint64
	spellID  uint32
}

type fakeUnit struct {
	id       uint64
	entry    uint32
	instance uint32
	name     string

	alive   bool
	combat  bool
	casting bool
	trigger bool
	player  bool

	victim host.Unit
	threat []host.Unit
	dist   map[uint64]float64

	casts []cast
}

func newCreature(id uint64, entry uint32) *fakeUnit {
	return &fakeUnit{id: id, entry: entry, instance: 1, alive: true, combat: true}
}

func newPlayer(id uint64) *fakeUnit {
	return &fakeUnit{id: id, instance: 1, alive: true, combat: true, player: true}
}

func (u *fakeUnit) ID() uint64         { return u.id }
func (u *fakeUnit) Entry() uint32      { return u.entry }
func (u *fakeUnit) InstanceID() uint32 { return u.instance }
func (u *fakeUnit) Name() string       { return u.name }
func (u *fakeUnit) IsAlive() bool      { return u.alive }
func (u *fakeUnit) InCombat() bool     { return u.combat }
func (u *fakeUnit) IsCasting() bool    { return u.casting }
func (u *fakeUnit) IsTrigger() bool    { return u.trigger }
func (u *fakeUnit) Victim() host.Unit  { return u.victim }
func (u *fakeUnit) IsPlayer() bool     { return u.player }

func (u *fakeUnit) ThreatList() []host.Unit { return u.threat }

func (u *fakeUnit) DistanceTo(other host.Unit) float64 {
	if d, ok := u.dist[other.ID()]; ok {
		return d
	}
	return 5
}

func (u *fakeUnit) CastSpell(target host.Unit, spellID uint32) {
	u.casts = append(u.casts, cast{targetID: target.ID(), spellID: spellID})
}

type fakeRanges map[uint32][2]float64

func (r fakeRanges) SpellRange(spellID uint32) (float64, float64, bool) {
	limits, ok := r[spellID]
	return limits[0], limits[1], ok
}

func hardmodeAlways(uint32) bool { return true }

func newScheduler(t *testing.T, set *rules.Set, ranges fakeRanges) *Scheduler {
	t.Helper()
	return New(set, ranges, hardmodeAlways, rand.New(rand.NewSource(1)))
}

func addAbility(t *testing.T, set *rules.Set, entry uint32, a rules.Ability) {
	t.Helper()
	if err := set.AddAbility(entry, a); err != nil {
		t.Fatalf("add ability: %v", err)
	}
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCombatStartSchedulesGuaranteedAbility(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorSelf,
		Delay: 5 * time.Second, Repetitions: 1,
	})
	s := newScheduler(t, set, nil)

	unit := newCreature(1, 100)
	s.OnCombatStart(unit, t0)

	s.Advance(t0.Add(4 * time.Second))
	if len(unit.casts) != 0 {
		t.Fatalf("cast fired before its delay: %+v", unit.casts)
	}

	s.Advance(t0.Add(5 * time.Second))
	if len(unit.casts) != 1 || unit.casts[0] != (cast{targetID: 1, spellID: 777}) {
		t.Fatalf("casts = %+v, want one self cast of 777", unit.casts)
	}
}

// fixedSource always yields the same raw value, pinning the 1..100 roll.
type fixedSource struct{ v int64 }

func (f fixedSource) Int63() int64 { return f.v << 32 }
func (f fixedSource) Seed(int64)   {}

func TestChanceGatesScheduling(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 50, SpellID: 777, Selector: rules.SelectorSelf, Repetitions: 1,
	})

	tests := []struct {
		name string
		roll int64 // Intn(100) result; the roll is this plus one
		want int
	}{
		{"roll above chance", 99, 0},
		{"roll at chance", 49, 1},
		{"roll below chance", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(set, nil, hardmodeAlways, rand.New(fixedSource{v: tt.roll}))
			s.OnCombatStart(newCreature(1, 100), t0)
			if s.Pending() != tt.want {
				t.Fatalf("Pending() = %d, want %d", s.Pending(), tt.want)
			}
		})
	}
}

func TestCombatStartSkipsTriggers(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 200, rules.Ability{
		Chance: 100, SpellID: 778, Selector: rules.SelectorSelf, Repetitions: 1,
	})
	s := newScheduler(t, set, nil)

	trigger := newCreature(2, 200)
	trigger.trigger = true
	s.OnCombatStart(trigger, t0)
	if s.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0 for trigger unit", s.Pending())
	}
}

func TestCombatStartRequiresHardmode(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorSelf, Repetitions: 1,
	})
	s := New(set, nil, func(uint32) bool { return false }, rand.New(rand.NewSource(1)))

	s.OnCombatStart(newCreature(1, 100), t0)
	if s.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0 with hard mode off", s.Pending())
	}
}

func TestCombatStartReplacesPendingCasts(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorSelf,
		Delay: time.Minute, Repetitions: 1,
	})
	s := newScheduler(t, set, nil)

	unit := newCreature(1, 100)
	s.OnCombatStart(unit, t0)
	s.OnCombatStart(unit, t0.Add(time.Second))

	if s.Pending() != 1 {
		t.Fatalf("Pending() = %d, want stale cast replaced", s.Pending())
	}
}

func TestDeadUnitConsumesCast(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorSelf, Repetitions: 0,
		Cooldown: 10 * time.Second,
	})
	s := newScheduler(t, set, nil)

	unit := newCreature(1, 100)
	s.OnCombatStart(unit, t0)
	unit.alive = false

	s.Advance(t0)
	if len(unit.casts) != 0 {
		t.Fatalf("dead unit cast: %+v", unit.casts)
	}
	if s.Pending() != 0 {
		t.Fatalf("Pending() = %d, want dead unit's cast consumed", s.Pending())
	}
}

func TestLeavingCombatCancelsWholeGroup(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorSelf, Repetitions: 1,
	})
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 778, Selector: rules.SelectorSelf,
		Delay: time.Minute, Repetitions: 1,
	})
	s := newScheduler(t, set, nil)

	unit := newCreature(1, 100)
	s.OnCombatStart(unit, t0)
	unit.combat = false

	s.Advance(t0)
	if len(unit.casts) != 0 {
		t.Fatalf("out-of-combat unit cast: %+v", unit.casts)
	}
	if s.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0 after group cancel", s.Pending())
	}
}

func TestCastingUnitRetriesAfterOneSecond(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorSelf, Repetitions: 1,
	})
	s := newScheduler(t, set, nil)

	unit := newCreature(1, 100)
	unit.casting = true
	s.OnCombatStart(unit, t0)

	s.Advance(t0)
	if len(unit.casts) != 0 {
		t.Fatalf("busy unit cast: %+v", unit.casts)
	}

	unit.casting = false
	s.Advance(t0.Add(time.Second))
	if len(unit.casts) != 1 {
		t.Fatalf("casts after retry = %+v, want one", unit.casts)
	}
}

func TestRepeatingAbilityRequeuesAtCooldown(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorSelf,
		Cooldown: 10 * time.Second, Repetitions: 0,
	})
	s := newScheduler(t, set, nil)

	unit := newCreature(1, 100)
	s.OnCombatStart(unit, t0)

	s.Advance(t0)
	s.Advance(t0.Add(10 * time.Second))
	s.Advance(t0.Add(20 * time.Second))
	if len(unit.casts) != 3 {
		t.Fatalf("casts = %d, want 3 over two cooldown cycles", len(unit.casts))
	}
}

func TestSingleShotAbilityDoesNotRequeue(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorSelf,
		Cooldown: 10 * time.Second, Repetitions: 1,
	})
	s := newScheduler(t, set, nil)

	unit := newCreature(1, 100)
	s.OnCombatStart(unit, t0)

	s.Advance(t0.Add(time.Hour))
	if len(unit.casts) != 1 {
		t.Fatalf("casts = %d, want exactly 1", len(unit.casts))
	}
}

func TestVictimSelector(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorVictim, Repetitions: 1,
	})
	s := newScheduler(t, set, nil)

	victim := newPlayer(50)
	unit := newCreature(1, 100)
	unit.victim = victim
	s.OnCombatStart(unit, t0)

	s.Advance(t0)
	if len(unit.casts) != 1 || unit.casts[0].targetID != 50 {
		t.Fatalf("casts = %+v, want one cast at victim 50", unit.casts)
	}
}

func TestDistanceSelectorHitsEveryPlayerInRange(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorDistance,
		TargetArg: 15, Repetitions: 1,
	})
	s := newScheduler(t, set, nil)

	near := newPlayer(50)
	mid := newPlayer(51)
	far := newPlayer(52)
	pet := newCreature(53, 9000)
	unit := newCreature(1, 100)
	unit.threat = []host.Unit{near, pet, mid, far}
	unit.dist = map[uint64]float64{50: 5, 51: 12, 52: 40, 53: 3}
	s.OnCombatStart(unit, t0)

	s.Advance(t0)
	want := []cast{{50, 777}, {51, 777}}
	if len(unit.casts) != len(want) {
		t.Fatalf("casts = %+v, want %+v", unit.casts, want)
	}
	for i, c := range want {
		if unit.casts[i] != c {
			t.Fatalf("casts[%d] = %+v, want %+v", i, unit.casts[i], c)
		}
	}
}

func TestSpellRangeFiltersCandidates(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorAggroTop, Repetitions: 1,
	})
	ranges := fakeRanges{777: {10, 30}}
	s := newScheduler(t, set, ranges)

	tooClose := newPlayer(50)
	inRange := newPlayer(51)
	tooFar := newPlayer(52)
	victim := newPlayer(53)
	unit := newCreature(1, 100)
	unit.victim = victim
	unit.threat = []host.Unit{tooClose, inRange, tooFar}
	unit.dist = map[uint64]float64{50: 5, 51: 20, 52: 50}
	s.OnCombatStart(unit, t0)

	// Only one candidate survives the range filter, which falls back to
	// the current victim.
	s.Advance(t0)
	if len(unit.casts) != 1 || unit.casts[0].targetID != 53 {
		t.Fatalf("casts = %+v, want victim fallback at 53", unit.casts)
	}
}

func TestAggroRankSelectors(t *testing.T) {
	ranges := fakeRanges{}

	tests := []struct {
		name     string
		selector rules.TargetSelector
		want     uint64
	}{
		{"from top picks last rank", rules.SelectorAggroTop, 52},
		{"from bottom picks first rank", rules.SelectorAggroBottom, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := rules.NewSet()
			addAbility(t, set, 100, rules.Ability{
				Chance: 100, SpellID: 777, Selector: tt.selector, Repetitions: 1,
			})
			s := newScheduler(t, set, ranges)

			a, b, c := newPlayer(50), newPlayer(51), newPlayer(52)
			unit := newCreature(1, 100)
			unit.threat = []host.Unit{a, b, c}
			s.OnCombatStart(unit, t0)

			s.Advance(t0)
			if len(unit.casts) != 1 || unit.casts[0].targetID != tt.want {
				t.Fatalf("casts = %+v, want target %d", unit.casts, tt.want)
			}
		})
	}
}

func TestRandomNotTopNeverPicksTopAggro(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorRandomNotTop,
		Cooldown: time.Second, Repetitions: 0,
	})
	s := newScheduler(t, set, fakeRanges{})

	top, other := newPlayer(50), newPlayer(51)
	unit := newCreature(1, 100)
	unit.threat = []host.Unit{top, other}
	s.OnCombatStart(unit, t0)

	for i := 0; i < 20; i++ {
		s.Advance(t0.Add(time.Duration(i) * time.Second))
	}
	if len(unit.casts) == 0 {
		t.Fatal("no casts fired")
	}
	for _, c := range unit.casts {
		if c.targetID == 50 {
			t.Fatalf("cast hit top aggro target: %+v", c)
		}
	}
}

func TestRandomSelectorStaysInCandidateList(t *testing.T) {
	set := rules.NewSet()
	addAbility(t, set, 100, rules.Ability{
		Chance: 100, SpellID: 777, Selector: rules.SelectorRandom,
		Cooldown: time.Second, Repetitions: 0,
	})
	s := newScheduler(t, set, fakeRanges{})

	a, b, c := newPlayer(50), newPlayer(51), newPlayer(52)
	unit := newCreature(1, 100)
	unit.threat = []host.Unit{a, b, c}
	s.OnCombatStart(unit, t0)

	for i := 0; i < 20; i++ {
		s.Advance(t0.Add(time.Duration(i) * time.Second))
	}
	if len(unit.casts) == 0 {
		t.Fatal("no casts fired")
	}
	for _, cc := range unit.casts {
		if cc.targetID < 50 || cc.targetID > 52 {
			t.Fatalf("cast left candidate list: %+v", cc)
		}
	}
}
