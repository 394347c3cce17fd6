package rules

import (
	"errors"
	"testing"
	"time"
)

func TestResolvePhaseWildcardWins(t *testing.T) {
	s := NewSet()
	if err := s.AddRule(542, 4, 0.5, 0.5, 1.5, 1.5, ModeNormal); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	if err := s.AddRule(542, 0, 0.8, 0.8, 1.2, 1.2, ModeNormal); err != nil {
		t.Fatalf("add rule: %v", err)
	}

	for _, mask := range []uint32{0, 1, 4, 0xFFFF} {
		phase, ok := s.ResolvePhase(542, mask)
		if !ok || phase != 0 {
			t.Fatalf("mask %#x: expected wildcard phase 0, got %d (ok=%v)", mask, phase, ok)
		}
	}
}

func TestResolvePhaseSmallestMatchingKey(t *testing.T) {
	s := NewSet()
	for _, phase := range []uint32{8, 2, 4} {
		if err := s.AddRule(542, phase, 0.5, 0.5, 1, 1, ModeNormal); err != nil {
			t.Fatalf("add rule: %v", err)
		}
	}

	tests := []struct {
		mask     uint32
		expected uint32
		found    bool
	}{
		{mask: 2, expected: 2, found: true},
		{mask: 6, expected: 2, found: true},
		{mask: 12, expected: 4, found: true},
		{mask: 8, expected: 8, found: true},
		{mask: 1, found: false},
		{mask: 0, found: false},
	}

	for _, tt := range tests {
		phase, ok := s.ResolvePhase(542, tt.mask)
		if ok != tt.found {
			t.Fatalf("mask %#x: expected found=%v, got %v", tt.mask, tt.found, ok)
		}
		if ok && phase != tt.expected {
			t.Fatalf("mask %#x: expected phase %d, got %d", tt.mask, tt.expected, phase)
		}
	}
}

func TestResolvePhaseUnknownZone(t *testing.T) {
	s := NewSet()
	if _, ok := s.ResolvePhase(999, 1); ok {
		t.Fatal("expected no resolution for unknown zone")
	}
}

func TestAddRuleMergesModesAcrossRows(t *testing.T) {
	s := NewSet()
	if err := s.AddRule(533, 0, 0.5, 0.6, 1.1, 1.2, ModeNormal); err != nil {
		t.Fatalf("add normal row: %v", err)
	}
	if err := s.AddRule(533, 0, 0.3, 0.4, 1.5, 1.6, ModeHard); err != nil {
		t.Fatalf("add hard row: %v", err)
	}

	rule, ok := s.Rule(533, 0)
	if !ok {
		t.Fatal("expected merged rule")
	}
	if rule.Healing != 0.5 || rule.HardHealing != 0.3 {
		t.Fatalf("expected normal 0.5 / hard 0.3 healing, got %v / %v", rule.Healing, rule.HardHealing)
	}
	if !rule.Modes.HasNormal() || !rule.Modes.HasHard() {
		t.Fatalf("expected both mode bits, got %v", rule.Modes)
	}
}

func TestAddRuleRejectsInvalidRows(t *testing.T) {
	s := NewSet()

	if err := s.AddRule(542, 0, 0.5, 0.5, 1, 1, 0); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if err := s.AddRule(DuelZone, 2, 0.5, 0.5, 1, 1, ModeNormal); !errors.Is(err, ErrInvalidDuelPhase) {
		t.Fatalf("expected ErrInvalidDuelPhase, got %v", err)
	}
	if err := s.AddRule(542, 0, -0.5, 0.5, 1, 1, ModeNormal); !errors.Is(err, ErrNegativeFactor) {
		t.Fatalf("expected ErrNegativeFactor, got %v", err)
	}

	// Rejected rows stay inert.
	if s.HasZone(542) {
		t.Fatal("expected rejected rows not to register the zone")
	}
}

func TestDuelRuleDefaultsToNeutralNormal(t *testing.T) {
	s := NewSet()
	rule := s.DuelRule()
	if rule.Healing != 1 || rule.Absorb != 1 || rule.MeleeDamage != 1 || rule.SpellDamage != 1 {
		t.Fatalf("expected all-ones duel defaults, got %+v", rule)
	}
	if !rule.Modes.HasNormal() {
		t.Fatal("expected duel default to enable normal mode")
	}
}

func TestDuelRuleReplacedByPersistedRow(t *testing.T) {
	s := NewSet()
	if err := s.AddRule(DuelZone, 0, 0.7, 0.7, 1, 1, ModeNormal); err != nil {
		t.Fatalf("add duel rule: %v", err)
	}
	if got := s.DuelRule().Healing; got != 0.7 {
		t.Fatalf("expected persisted duel healing 0.7, got %v", got)
	}
}

func TestAddAbilityValidation(t *testing.T) {
	s := NewSet()

	valid := Ability{Chance: 100, SpellID: 31984, Selector: SelectorVictim, Delay: 15 * time.Second}
	if err := s.AddAbility(15348, valid); err != nil {
		t.Fatalf("add valid ability: %v", err)
	}

	tests := []struct {
		name string
		a    Ability
	}{
		{name: "zero chance", a: Ability{Chance: 0, SpellID: 1, Selector: SelectorSelf}},
		{name: "zero spell", a: Ability{Chance: 50, SpellID: 0, Selector: SelectorSelf}},
		{name: "unknown selector", a: Ability{Chance: 50, SpellID: 1, Selector: 9}},
	}
	for _, tt := range tests {
		if err := s.AddAbility(15348, tt.a); !errors.Is(err, ErrInvalidAbility) {
			t.Fatalf("%s: expected ErrInvalidAbility, got %v", tt.name, err)
		}
	}

	if got := len(s.Abilities(15348)); got != 1 {
		t.Fatalf("expected only the valid ability to be kept, got %d", got)
	}
}

func TestAbilityIndexIsStable(t *testing.T) {
	s := NewSet()
	first := Ability{Chance: 100, SpellID: 100, Selector: SelectorSelf}
	second := Ability{Chance: 100, SpellID: 200, Selector: SelectorVictim}
	if err := s.AddAbility(7, first); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddAbility(7, second); err != nil {
		t.Fatalf("add: %v", err)
	}

	a, ok := s.Ability(7, 1)
	if !ok || a.SpellID != 200 {
		t.Fatalf("expected spell 200 at index 1, got %+v (ok=%v)", a, ok)
	}
	if _, ok := s.Ability(7, 2); ok {
		t.Fatal("expected out-of-range index to miss")
	}
}

func TestAwardsScore(t *testing.T) {
	s := NewSet()
	s.AddHardmodeEncounter(532, 15690, 0, CategoryRaidT4)
	s.AddHardmodeEncounter(532, 17257, 0, CategoryRaidT4)

	if cat, ok := s.AwardsScore(532, 17257); !ok || cat != CategoryRaidT4 {
		t.Fatalf("expected T4 award, got %v (ok=%v)", cat, ok)
	}
	if _, ok := s.AwardsScore(532, 99999); ok {
		t.Fatal("expected unknown encounter not to award")
	}
	if _, ok := s.AwardsScore(533, 15690); ok {
		t.Fatal("expected unknown map not to award")
	}
}

func TestRewardCatalogOrdering(t *testing.T) {
	s := NewSet()
	s.AddReward(CategoryHeroicTBC, SlotClassCloth, Reward{ItemID: 1, Price: 10})
	s.AddReward(CategoryHeroicTBC, SlotClassWeapons, Reward{ItemID: 2, Price: 20})
	s.AddReward(CategoryRaidT4, SlotClassCloth, Reward{ItemID: 3, Price: 30})

	cats := s.Categories()
	if len(cats) != 2 || cats[0] != CategoryHeroicTBC || cats[1] != CategoryRaidT4 {
		t.Fatalf("unexpected categories: %v", cats)
	}

	classes := s.SlotClasses(CategoryHeroicTBC)
	if len(classes) != 2 || classes[0] != SlotClassCloth || classes[1] != SlotClassWeapons {
		t.Fatalf("unexpected slot classes: %v", classes)
	}

	r, ok := s.Reward(CategoryHeroicTBC, SlotClassWeapons, 0)
	if !ok || r.ItemID != 2 {
		t.Fatalf("expected item 2, got %+v (ok=%v)", r, ok)
	}
	if _, ok := s.Reward(CategoryHeroicTBC, SlotClassWeapons, 1); ok {
		t.Fatal("expected out-of-range ordinal to miss")
	}
}
