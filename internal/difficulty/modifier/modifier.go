// Package modifier computes the multiplicative combat adjustments the host
// applies to raw amounts. The pipeline is a pure function of the loaded
// rule set, the per-instance hard-mode flag and the snapshots passed in;
// it has no side effects of its own.
package modifier

import (
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/rules"
)

// TargetKind classifies the entity an amount is about to be applied to.
type TargetKind uint8

const (
	KindOther TargetKind = iota
	KindPlayer
	KindPet
	KindGuardian
	KindCreature
)

// Target is a snapshot of the affected entity at the moment of adjustment.
// The host adapter fills it from its entity model; for temporary summons
// the duel fields describe the owning player.
type Target struct {
	Kind       TargetKind
	ZoneID     uint32
	PhaseMask  uint32
	AreaID     uint32
	InstanceID uint32

	MapIsRaid    bool
	MapIsHeroic  bool
	MapIsDungeon bool

	// DuelInProgress is true when the owning player has an opponent and
	// their duel is in the in-progress state.
	DuelInProgress bool
}

// nerfable reports whether the target is subject to adjustment at all:
// players, player pets and player guardians.
func (t Target) nerfable() bool {
	return t.Kind == KindPlayer || t.Kind == KindPet || t.Kind == KindGuardian
}

// hardmodeMapKind reports whether the map kind allows hard-mode
// multipliers: raids and heroic non-raid dungeons.
func (t Target) hardmodeMapKind() bool {
	return t.MapIsRaid || (t.MapIsHeroic && t.MapIsDungeon)
}

// duelArena reports whether the target sits in the reserved duel area with
// an active duel.
func (t Target) duelArena() bool {
	return t.AreaID == rules.DuelArea && t.DuelInProgress
}

// Mechanic identifies the spell mechanics the pipeline cares about.
type Mechanic uint8

const (
	MechanicNone Mechanic = iota
	MechanicBandage
)

// Spell is the subset of spell metadata the pipeline inspects. A nil
// *Spell means the amount is not spell-driven.
type Spell struct {
	ID uint32
	// BypassesImmunity marks spells exempt from all adjustment, such as
	// consumables.
	BypassesImmunity bool
	Mechanic         Mechanic
	// PeriodicDamage is true when the spell carries a periodic damage aura.
	PeriodicDamage bool
}

// Attacker is a snapshot of the damage source, used only for the
// only-bosses gating switches.
type Attacker struct {
	IsCreature    bool
	IsDungeonBoss bool
}

// Pipeline evaluates adjustment rules against live instance state.
type Pipeline struct {
	rules      *rules.Set
	hardmodeOn func(instanceID uint32) bool

	// spellBuffOnlyBosses restricts the periodic and instant spell damage
	// buffs to boss attackers; meleeBuffOnlyBosses does the same for the
	// melee buff.
	spellBuffOnlyBosses bool
	meleeBuffOnlyBosses bool
}

// New builds a pipeline over the given rule set. hardmodeOn reports the
// live hard-mode flag for an instance id and must not be nil.
func New(set *rules.Set, hardmodeOn func(instanceID uint32) bool, spellBuffOnlyBosses, meleeBuffOnlyBosses bool) *Pipeline {
	return &Pipeline{
		rules:               set,
		hardmodeOn:          hardmodeOn,
		spellBuffOnlyBosses: spellBuffOnlyBosses,
		meleeBuffOnlyBosses: meleeBuffOnlyBosses,
	}
}

// SwapRules replaces the rule set the pipeline reads from.
func (p *Pipeline) SwapRules(set *rules.Set) {
	p.rules = set
}

type amountKind uint8

const (
	amountHealing amountKind = iota
	amountAbsorb
	amountSpellDamage
	amountMeleeDamage
)

func factorOf(r rules.Rule, kind amountKind, hard bool) float64 {
	switch kind {
	case amountHealing:
		if hard {
			return r.HardHealing
		}
		return r.Healing
	case amountAbsorb:
		if hard {
			return r.HardAbsorb
		}
		return r.Absorb
	case amountSpellDamage:
		if hard {
			return r.HardSpellDamage
		}
		return r.SpellDamage
	default:
		if hard {
			return r.HardMeleeDamage
		}
		return r.MeleeDamage
	}
}

// AdjustHeal returns the adjusted healing amount for the target.
func (p *Pipeline) AdjustHeal(t Target, spell *Spell, raw int64) int64 {
	if !t.nerfable() {
		return raw
	}
	if spell != nil && (spell.BypassesImmunity || spell.Mechanic == MechanicBandage) {
		return raw
	}
	if spell != nil {
		if factor, ok := p.rules.SpellOverride(spell.ID); ok {
			return scale(raw, factor)
		}
	}
	return p.zoneAdjust(t, amountHealing, raw)
}

// AdjustAbsorb returns the adjusted absorb shield amount for the target.
func (p *Pipeline) AdjustAbsorb(t Target, spell *Spell, raw int64) int64 {
	if !t.nerfable() {
		return raw
	}
	if spell != nil && spell.BypassesImmunity {
		return raw
	}
	if spell != nil {
		if factor, ok := p.rules.SpellOverride(spell.ID); ok {
			return scale(raw, factor)
		}
	}
	return p.zoneAdjust(t, amountAbsorb, raw)
}

// AdjustSpellDamage returns the adjusted instant spell damage for the target.
func (p *Pipeline) AdjustSpellDamage(t Target, spell *Spell, attacker Attacker, raw int64) int64 {
	if p.spellBuffOnlyBosses && attacker.IsCreature && !attacker.IsDungeonBoss {
		return raw
	}
	if !t.nerfable() {
		return raw
	}
	if spell != nil {
		if factor, ok := p.rules.SpellOverride(spell.ID); ok {
			return scale(raw, factor)
		}
	}
	return p.zoneAdjust(t, amountSpellDamage, raw)
}

// AdjustPeriodicDamage returns the adjusted periodic damage tick for the
// target. Non-periodic spells pass through untouched, and unlike the other
// spell paths the per-spell override table is not consulted here.
func (p *Pipeline) AdjustPeriodicDamage(t Target, spell *Spell, attacker Attacker, raw int64) int64 {
	if spell == nil || !spell.PeriodicDamage {
		return raw
	}
	if p.spellBuffOnlyBosses && attacker.IsCreature && !attacker.IsDungeonBoss {
		return raw
	}
	if !t.nerfable() {
		return raw
	}
	return p.zoneAdjust(t, amountSpellDamage, raw)
}

// AdjustMeleeDamage returns the adjusted melee hit amount for the target.
func (p *Pipeline) AdjustMeleeDamage(t Target, attacker Attacker, raw int64) int64 {
	if p.meleeBuffOnlyBosses && attacker.IsCreature && !attacker.IsDungeonBoss {
		return raw
	}
	if !t.nerfable() {
		return raw
	}
	return p.zoneAdjust(t, amountMeleeDamage, raw)
}

// zoneAdjust applies the zone rule resolved for the target, falling back
// to the duel rule when no zone rule matches but a duel is in progress.
// Hard mode, when applicable, replaces the normal multiplier.
func (p *Pipeline) zoneAdjust(t Target, kind amountKind, raw int64) int64 {
	if phase, ok := p.rules.ResolvePhase(t.ZoneID, t.PhaseMask); ok {
		rule, _ := p.rules.Rule(t.ZoneID, phase)
		if rule.Modes.HasHard() && t.hardmodeMapKind() && p.hardmodeOn(t.InstanceID) {
			return scale(raw, factorOf(rule, kind, true))
		}
		if rule.Modes.HasNormal() {
			return scale(raw, factorOf(rule, kind, false))
		}
		return raw
	}

	if t.duelArena() {
		duel := p.rules.DuelRule()
		if duel.Modes.HasNormal() {
			return scale(raw, factorOf(duel, kind, false))
		}
	}
	return raw
}

func scale(raw int64, factor float64) int64 {
	return int64(float64(raw) * factor)
}
