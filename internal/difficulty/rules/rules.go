// Package rules holds the in-memory difficulty rule tables and the
// phase resolution logic the rest of the engine consults.
package rules

import (
	"time"

	apperrors "github.com/Nyeriah/mod-zone-difficulty/internal/platform/errors"
)

// DuelZone is the reserved zone key for 1v1 contest tuning. It is not a
// real map id; rule lookups fall back to it when a duel is in progress.
const DuelZone uint32 = 0xFFFFFFFF

// DuelArea is the area id where duel tuning applies.
const DuelArea uint32 = 2402

// Mode is a bitmask of the difficulty modes a rule is enabled for.
type Mode uint8

const (
	// ModeNormal enables the rule's normal-mode multipliers.
	ModeNormal Mode = 1
	// ModeHard enables the rule's hard-mode multipliers.
	ModeHard Mode = 2
)

// HasNormal reports whether the normal-mode bit is set.
func (m Mode) HasNormal() bool { return m&ModeNormal != 0 }

// HasHard reports whether the hard-mode bit is set.
func (m Mode) HasHard() bool { return m&ModeHard != 0 }

// Rule carries the multiplicative combat adjustments for one (zone, phase)
// pair. Multipliers below 1 nerf incoming healing/absorb, multipliers above
// 1 buff incoming damage.
type Rule struct {
	Healing     float64
	Absorb      float64
	MeleeDamage float64
	SpellDamage float64

	HardHealing     float64
	HardAbsorb      float64
	HardMeleeDamage float64
	HardSpellDamage float64

	Modes Mode
}

// TargetSelector identifies how a scripted ability picks its target.
type TargetSelector uint8

const (
	// SelectorSelf casts at the acting entity.
	SelectorSelf TargetSelector = 1
	// SelectorVictim casts at the entity's current combat target.
	SelectorVictim TargetSelector = 2
	// SelectorAggroTop picks by rank counted from the top of the threat list.
	SelectorAggroTop TargetSelector = 3
	// SelectorAggroBottom picks by rank counted from the bottom of the threat list.
	SelectorAggroBottom TargetSelector = 4
	// SelectorRandom picks uniformly from the candidate list.
	SelectorRandom TargetSelector = 5
	// SelectorRandomNotTop picks uniformly, excluding the top-aggro entry.
	SelectorRandomNotTop TargetSelector = 6
	// SelectorDistance casts at every player within TargetArg distance.
	SelectorDistance TargetSelector = 18
)

// Valid reports whether the selector is one the scheduler understands.
func (s TargetSelector) Valid() bool {
	return (s >= SelectorSelf && s <= SelectorRandomNotTop) || s == SelectorDistance
}

// Ability is one scripted hard-mode ability entry for a creature template.
// The slice index of an ability doubles as its scheduling identity.
type Ability struct {
	Chance      uint8 // trigger chance in percent, 100 = always
	SpellID     uint32
	Selector    TargetSelector
	TargetArg   uint8
	Delay       time.Duration
	Cooldown    time.Duration
	Repetitions uint8 // 0 = repeat at Cooldown interval, otherwise single shot
}

// Category is a reward currency bucket, one per content tier.
type Category uint8

const (
	CategoryVanilla     Category = 1
	CategoryRaidMC      Category = 2
	CategoryRaidOnyxia  Category = 3
	CategoryRaidBWL     Category = 4
	CategoryRaidZG      Category = 5
	CategoryRaidAQ20    Category = 6
	CategoryRaidAQ40    Category = 7
	CategoryHeroicTBC   Category = 8
	CategoryRaidT4      Category = 9
	CategoryRaidT5      Category = 10
	CategoryRaidT6      Category = 11
	CategoryHeroicWotlk Category = 12
	CategoryRaidT7      Category = 13
	CategoryRaidT8      Category = 14
	CategoryRaidT9      Category = 15
	CategoryRaidT10     Category = 16
)

// MaxCategory is the highest known category value; score summaries iterate
// 1 through MaxCategory.
const MaxCategory = CategoryRaidT10

// String describes the content tier a category's score is awarded for.
func (c Category) String() string {
	switch c {
	case CategoryVanilla:
		return "for Vanilla dungeons"
	case CategoryRaidMC:
		return "for Molten Core"
	case CategoryRaidOnyxia:
		return "for Onyxia"
	case CategoryRaidBWL:
		return "for Blackwing Lair"
	case CategoryRaidZG:
		return "for Zul'Gurub"
	case CategoryRaidAQ20:
		return "for Ruins of Ahn'Qiraj"
	case CategoryRaidAQ40:
		return "for Temple of Ahn'Qiraj"
	case CategoryHeroicTBC:
		return "for Heroic TBC dungeons"
	case CategoryRaidT4:
		return "for T4 Raids"
	case CategoryRaidT5:
		return "for T5 Raids"
	case CategoryRaidT6:
		return "for T6 Raids"
	case CategoryHeroicWotlk:
		return "for Heroic WotLK dungeons"
	case CategoryRaidT7:
		return "for T7 Raids"
	case CategoryRaidT8:
		return "for T8 Raids"
	case CategoryRaidT9:
		return "for T9 Raids"
	case CategoryRaidT10:
		return "for T10 Raids"
	default:
		return "-"
	}
}

// SlotClass groups reward items by equipment slot family.
type SlotClass uint8

const (
	SlotClassMisc    SlotClass = 1
	SlotClassCloth   SlotClass = 2
	SlotClassLeather SlotClass = 3
	SlotClassMail    SlotClass = 4
	SlotClassPlate   SlotClass = 5
	SlotClassWeapons SlotClass = 6
)

// String describes the item family of a slot class.
func (s SlotClass) String() string {
	switch s {
	case SlotClassMisc:
		return "Back, Finger, Neck, and Trinket"
	case SlotClassCloth:
		return "Cloth"
	case SlotClassLeather:
		return "Leather"
	case SlotClassMail:
		return "Mail"
	case SlotClassPlate:
		return "Plate"
	case SlotClassWeapons:
		return "Weapons and Shields"
	default:
		return "-"
	}
}

// Reward is one purchasable catalog entry.
type Reward struct {
	ItemID              uint32
	Price               uint32
	EnchantID           uint32
	EnchantSlot         uint8
	RequiredAchievement uint32 // 0 = no gating
}

// HardmodeMap marks a map as hard-mode capable: which encounter entries
// award score and which reward category the score counts toward.
type HardmodeMap struct {
	Encounters []uint32 // creature template ids whose defeat awards score
	OverrideGO uint32   // optional gameobject looted instead of the corpse
	Category   Category
}

// ErrInvalidMode indicates a rule row with neither mode bit set.
var ErrInvalidMode = apperrors.New(apperrors.CodeRuleInvalidMode, "rule has neither normal nor hard mode enabled")

// ErrInvalidDuelPhase indicates a duel rule row with a non-wildcard phase.
var ErrInvalidDuelPhase = apperrors.New(apperrors.CodeRuleInvalidPhase, "duel rules must use phase 0")

// ErrNegativeFactor indicates a rule row with a negative multiplier.
var ErrNegativeFactor = apperrors.New(apperrors.CodeRuleNegativeFactor, "rule multipliers must be non-negative")

// ErrInvalidAbility indicates an ability row the scheduler cannot use.
var ErrInvalidAbility = apperrors.New(apperrors.CodeAbilityInvalid, "ability needs a chance, a spell and a known selector")
