package rules

import (
	"sort"
)

// Set is the loaded, validated rule state the engine reads from. After
// loading it is never mutated; the engine swaps the whole Set on reload.
type Set struct {
	zoneRules       map[uint32]map[uint32]Rule
	zoneKeys        map[uint32][]uint32 // phase keys per zone, ascending
	spellOverrides  map[uint32]float64
	disallowedBuffs map[uint32][]uint32
	creatureHealth  map[uint32]float64
	abilities       map[uint32][]Ability
	hardmodeMaps    map[uint32]HardmodeMap
	rewards         map[Category]map[SlotClass][]Reward
}

// NewSet returns an empty rule set with the duel fallback rule seeded:
// all-ones multipliers, normal mode enabled. A persisted duel rule row
// replaces the seed.
func NewSet() *Set {
	s := &Set{
		zoneRules:       make(map[uint32]map[uint32]Rule),
		zoneKeys:        make(map[uint32][]uint32),
		spellOverrides:  make(map[uint32]float64),
		disallowedBuffs: make(map[uint32][]uint32),
		creatureHealth:  make(map[uint32]float64),
		abilities:       make(map[uint32][]Ability),
		hardmodeMaps:    make(map[uint32]HardmodeMap),
		rewards:         make(map[Category]map[SlotClass][]Reward),
	}
	s.putRule(DuelZone, 0, Rule{
		Healing:     1,
		Absorb:      1,
		MeleeDamage: 1,
		SpellDamage: 1,
		Modes:       ModeNormal,
	})
	return s
}

// AddRule merges one rule row into the set. Rows carry a single block of
// multipliers plus a mode mask; the mask decides whether they populate the
// normal fields, the hard fields, or both. Rows for the same (zone, phase)
// merge, so normal and hard tuning may be split across rows.
func (s *Set) AddRule(zone, phase uint32, healing, absorb, melee, spell float64, modes Mode) error {
	if !modes.HasNormal() && !modes.HasHard() {
		return ErrInvalidMode
	}
	if zone == DuelZone && phase != 0 {
		return ErrInvalidDuelPhase
	}
	if healing < 0 || absorb < 0 || melee < 0 || spell < 0 {
		return ErrNegativeFactor
	}

	rule := s.zoneRules[zone][phase]
	if modes.HasNormal() {
		rule.Healing = healing
		rule.Absorb = absorb
		rule.MeleeDamage = melee
		rule.SpellDamage = spell
	}
	if modes.HasHard() {
		rule.HardHealing = healing
		rule.HardAbsorb = absorb
		rule.HardMeleeDamage = melee
		rule.HardSpellDamage = spell
	}
	rule.Modes |= modes
	s.putRule(zone, phase, rule)
	return nil
}

func (s *Set) putRule(zone, phase uint32, rule Rule) {
	phases, ok := s.zoneRules[zone]
	if !ok {
		phases = make(map[uint32]Rule)
		s.zoneRules[zone] = phases
	}
	if _, exists := phases[phase]; !exists {
		keys := append(s.zoneKeys[zone], phase)
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		s.zoneKeys[zone] = keys
	}
	phases[phase] = rule
}

// Rule returns the rule for a (zone, phase) pair.
func (s *Set) Rule(zone, phase uint32) (Rule, bool) {
	r, ok := s.zoneRules[zone][phase]
	return r, ok
}

// DuelRule returns the current duel fallback rule.
func (s *Set) DuelRule() Rule {
	r, _ := s.Rule(DuelZone, 0)
	return r
}

// HasZone reports whether any rule exists for the zone.
func (s *Set) HasZone(zone uint32) bool {
	_, ok := s.zoneRules[zone]
	return ok
}

// ResolvePhase maps a zone and visibility mask to the applicable rule key.
// A wildcard (phase 0) rule always wins. Otherwise the zone's keys are
// scanned in ascending order and the first key intersecting the mask is
// returned. The boolean result is false when nothing applies.
func (s *Set) ResolvePhase(zone, visibilityMask uint32) (uint32, bool) {
	phases, ok := s.zoneRules[zone]
	if !ok {
		return 0, false
	}
	if _, ok := phases[0]; ok {
		return 0, true
	}
	for _, key := range s.zoneKeys[zone] {
		if key&visibilityMask != 0 {
			return key, true
		}
	}
	return 0, false
}

// AddSpellOverride records a per-spell multiplier which short-circuits all
// zone and duel derived adjustments for that spell.
func (s *Set) AddSpellOverride(spellID uint32, factor float64) {
	s.spellOverrides[spellID] = factor
}

// SpellOverride returns the override multiplier for a spell.
func (s *Set) SpellOverride(spellID uint32) (float64, bool) {
	f, ok := s.spellOverrides[spellID]
	return f, ok
}

// AddDisallowedBuffs records buffs stripped from characters entering a zone.
func (s *Set) AddDisallowedBuffs(zone uint32, spellIDs []uint32) {
	s.disallowedBuffs[zone] = append(s.disallowedBuffs[zone], spellIDs...)
}

// DisallowedBuffs returns the buffs to strip for a zone.
func (s *Set) DisallowedBuffs(zone uint32) []uint32 {
	return s.disallowedBuffs[zone]
}

// AddCreatureHealthOverride records a per-creature hard-mode health
// multiplier used instead of the global one.
func (s *Set) AddCreatureHealthOverride(entry uint32, factor float64) {
	if factor == 0 {
		return
	}
	s.creatureHealth[entry] = factor
}

// CreatureHealthOverride returns the health multiplier for a creature entry.
func (s *Set) CreatureHealthOverride(entry uint32) (float64, bool) {
	f, ok := s.creatureHealth[entry]
	return f, ok
}

// AddAbility appends a scripted ability for a creature entry. Order of
// insertion is preserved: the ability's index is its scheduling identity.
func (s *Set) AddAbility(entry uint32, a Ability) error {
	if a.Chance == 0 || a.SpellID == 0 || !a.Selector.Valid() {
		return ErrInvalidAbility
	}
	s.abilities[entry] = append(s.abilities[entry], a)
	return nil
}

// Abilities returns the ordered ability list for a creature entry.
func (s *Set) Abilities(entry uint32) []Ability {
	return s.abilities[entry]
}

// Ability returns a single ability by creature entry and index.
func (s *Set) Ability(entry uint32, index int) (Ability, bool) {
	list := s.abilities[entry]
	if index < 0 || index >= len(list) {
		return Ability{}, false
	}
	return list[index], true
}

// AddHardmodeEncounter marks an encounter entry on a map as score-awarding.
// The last category written for a map wins, matching one category per map.
func (s *Set) AddHardmodeEncounter(mapID, encounterEntry, overrideGO uint32, category Category) {
	data := s.hardmodeMaps[mapID]
	data.Encounters = append(data.Encounters, encounterEntry)
	if overrideGO != 0 {
		data.OverrideGO = overrideGO
	}
	data.Category = category
	s.hardmodeMaps[mapID] = data
}

// HardmodeMap returns the hard-mode data for a map, if the map is
// hard-mode capable at all.
func (s *Set) HardmodeMap(mapID uint32) (HardmodeMap, bool) {
	d, ok := s.hardmodeMaps[mapID]
	return d, ok
}

// AwardsScore reports whether defeating the given creature entry on the
// given map awards hard-mode score, and for which category.
func (s *Set) AwardsScore(mapID, encounterEntry uint32) (Category, bool) {
	d, ok := s.hardmodeMaps[mapID]
	if !ok {
		return 0, false
	}
	for _, entry := range d.Encounters {
		if entry == encounterEntry {
			return d.Category, true
		}
	}
	return 0, false
}

// AddReward appends a catalog entry under (category, slot class).
func (s *Set) AddReward(category Category, class SlotClass, r Reward) {
	classes, ok := s.rewards[category]
	if !ok {
		classes = make(map[SlotClass][]Reward)
		s.rewards[category] = classes
	}
	classes[class] = append(classes[class], r)
}

// Categories returns the non-zero reward categories present in the catalog,
// in ascending order.
func (s *Set) Categories() []Category {
	var out []Category
	for c := range s.rewards {
		if c != 0 {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SlotClasses returns the slot classes available in a category, ascending.
func (s *Set) SlotClasses(category Category) []SlotClass {
	var out []SlotClass
	for c := range s.rewards[category] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Rewards returns the catalog entries for (category, slot class) in
// insertion order; the slice index is the entry's ordinal.
func (s *Set) Rewards(category Category, class SlotClass) []Reward {
	return s.rewards[category][class]
}

// Reward returns a single catalog entry by its ordinal.
func (s *Set) Reward(category Category, class SlotClass, ordinal int) (Reward, bool) {
	list := s.rewards[category][class]
	if ordinal < 0 || ordinal >= len(list) {
		return Reward{}, false
	}
	return list[ordinal], true
}
