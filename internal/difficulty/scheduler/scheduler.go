// Package scheduler runs the scripted hard-mode abilities. Creatures with
// ability rows get their casts queued when they enter combat; the host
// drives the queue forward by calling Advance from its update loop, so the
// scheduler needs no goroutines or locks of its own.
package scheduler

import (
	"container/heap"
	"math/rand"
	"time"

	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/host"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/rules"
)

// castingRetry is the backoff applied when a cast comes due while the
// creature is busy with another spell.
const castingRetry = time.Second

type event struct {
	due   time.Time
	seq   uint64
	unit  host.Unit
	entry uint32
	index int
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return ev
}

// Scheduler owns the pending ability casts for every live creature.
type Scheduler struct {
	rules      *rules.Set
	ranges     host.SpellRanges
	hardmodeOn func(instanceID uint32) bool
	rng        *rand.Rand

	queue eventQueue
	seq   uint64
}

// New builds a scheduler over the loaded rule set. rng may be nil, in
// which case the shared source is used; tests pass a seeded one.
func New(set *rules.Set, ranges host.SpellRanges, hardmodeOn func(instanceID uint32) bool, rng *rand.Rand) *Scheduler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scheduler{
		rules:      set,
		ranges:     ranges,
		hardmodeOn: hardmodeOn,
		rng:        rng,
	}
}

// SwapRules replaces the rule set after a reload. Pending events keep
// firing against the new set; events whose ability row disappeared are
// dropped at fire time.
func (s *Scheduler) SwapRules(set *rules.Set) {
	s.rules = set
}

// Pending returns the number of queued casts. Intended for tests and
// diagnostics.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// OnCombatStart rolls trigger chances for the unit's scripted abilities
// and queues the winners. Any casts still pending from a previous fight
// of the same unit are discarded first.
func (s *Scheduler) OnCombatStart(unit host.Unit, now time.Time) {
	if !s.hardmodeOn(unit.InstanceID()) {
		return
	}
	if unit.IsTrigger() {
		return
	}
	s.CancelUnit(unit.ID())

	entry := unit.Entry()
	for i, ability := range s.rules.Abilities(entry) {
		if ability.Chance == 100 || int(ability.Chance) >= s.rng.Intn(100)+1 {
			s.push(unit, entry, i, now.Add(ability.Delay))
		}
	}
}

// CancelUnit drops every queued cast belonging to the unit.
func (s *Scheduler) CancelUnit(unitID uint64) {
	kept := s.queue[:0]
	for _, ev := range s.queue {
		if ev.unit.ID() != unitID {
			kept = append(kept, ev)
		}
	}
	for i := len(kept); i < len(s.queue); i++ {
		s.queue[i] = nil
	}
	s.queue = kept
	heap.Init(&s.queue)
}

// Advance fires every cast due at or before now.
func (s *Scheduler) Advance(now time.Time) {
	for len(s.queue) > 0 && !s.queue[0].due.After(now) {
		ev := heap.Pop(&s.queue).(*event)
		s.fire(ev, now)
	}
}

func (s *Scheduler) push(unit host.Unit, entry uint32, index int, due time.Time) {
	s.seq++
	heap.Push(&s.queue, &event{
		due:   due,
		seq:   s.seq,
		unit:  unit,
		entry: entry,
		index: index,
	})
}

func (s *Scheduler) fire(ev *event, now time.Time) {
	unit := ev.unit
	if !unit.IsAlive() {
		return
	}
	if !unit.InCombat() {
		s.CancelUnit(unit.ID())
		return
	}
	if unit.IsCasting() {
		s.push(unit, ev.entry, ev.index, now.Add(castingRetry))
		return
	}

	ability, ok := s.rules.Ability(ev.entry, ev.index)
	if !ok {
		return
	}

	// Repeating abilities are requeued before the cast attempt, so a
	// failed target pick does not stop the cycle.
	if ability.Repetitions == 0 {
		s.push(unit, ev.entry, ev.index, now.Add(ability.Cooldown))
	}

	switch ability.Selector {
	case rules.SelectorSelf:
		unit.CastSpell(unit, ability.SpellID)
	case rules.SelectorVictim:
		if victim := unit.Victim(); victim != nil {
			unit.CastSpell(victim, ability.SpellID)
		}
	case rules.SelectorDistance:
		for _, target := range s.candidates(unit, ability) {
			unit.CastSpell(target, ability.SpellID)
		}
	default:
		if target := s.pickHostile(unit, ability); target != nil {
			unit.CastSpell(target, ability.SpellID)
		}
	}
}

// candidates gathers the player entries of the unit's threat list that
// pass the ability's range filter. For the distance selector that filter
// is TargetArg yards from the caster; for everything else it is the
// spell's own min and max cast range.
func (s *Scheduler) candidates(unit host.Unit, ability rules.Ability) []host.Unit {
	var out []host.Unit
	for _, target := range unit.ThreatList() {
		if target == nil || !target.IsPlayer() {
			continue
		}
		dist := unit.DistanceTo(target)
		if ability.Selector == rules.SelectorDistance {
			if dist > float64(ability.TargetArg) {
				continue
			}
		} else if min, max, ok := s.ranges.SpellRange(ability.SpellID); ok {
			if dist <= min || dist > max {
				continue
			}
		}
		out = append(out, target)
	}
	return out
}

func (s *Scheduler) pickHostile(unit host.Unit, ability rules.Ability) host.Unit {
	list := s.candidates(unit, ability)
	if len(list) == 0 {
		return nil
	}
	if len(list) < 2 {
		return unit.Victim()
	}

	rank := len(list) - 1
	if int(ability.TargetArg) > rank {
		rank = int(ability.TargetArg)
	}
	if rank > len(list)-1 {
		rank = len(list) - 1
	}

	switch ability.Selector {
	case rules.SelectorAggroTop:
		return list[rank]
	case rules.SelectorAggroBottom:
		return list[len(list)-1-rank]
	case rules.SelectorRandom:
		return list[s.rng.Intn(len(list))]
	case rules.SelectorRandomNotTop:
		return list[s.rng.Intn(len(list)-1)+1]
	}
	return nil
}
