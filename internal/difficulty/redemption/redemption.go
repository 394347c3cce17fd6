// Package redemption drives the reward vendor conversation. Each
// character gets one session walking a fixed set of steps: pick a
// category, pick an item class, pick an item, confirm. Funds are checked
// when the item is picked and again at confirmation, since score may be
// spent from another session in between.
package redemption

import (
	"context"
	"log"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/host"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/rules"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/score"
	apperrors "github.com/Nyeriah/mod-zone-difficulty/internal/platform/errors"
)

const (
	rewardMailSubject = "Reward"
	rewardMailBody    = "Thank you for your time-traveling efforts. Here is the reward you redeemed."
)

// Step names the stage a redemption session is in.
type Step uint8

const (
	// StepOffer is the opening menu listing reward categories.
	StepOffer Step = iota
	// StepSlotClassSelect follows a category choice.
	StepSlotClassSelect
	// StepItemSelect follows a slot class choice.
	StepItemSelect
	// StepConfirm holds a funds-checked item waiting for a yes.
	StepConfirm
	// StepGranted is terminal, the item was sent.
	StepGranted
	// StepDenied is terminal, the purchase was refused.
	StepDenied
)

func (s Step) String() string {
	switch s {
	case StepOffer:
		return "offer"
	case StepSlotClassSelect:
		return "slot class select"
	case StepItemSelect:
		return "item select"
	case StepConfirm:
		return "confirm"
	case StepGranted:
		return "granted"
	case StepDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Session is one character's position in the vendor conversation.
type Session struct {
	CharacterID uint64
	Step        Step
	Category    rules.Category
	SlotClass   rules.SlotClass
	Ordinal     int
}

// ItemOption is one purchasable entry shown in the item menu.
type ItemOption struct {
	Ordinal int
	ItemID  uint32
	Price   uint32
	Name    string
}

// Flow owns the live sessions and the collaborators a grant touches.
type Flow struct {
	rules        *rules.Set
	ledger       *score.Ledger
	granter      host.ItemGranter
	achievements host.AchievementSource
	names        host.ItemNames
	notify       host.Notifier
	printer      *message.Printer

	sessions map[uint64]*Session
}

// NewFlow wires the redemption flow. names and notify may be nil; the
// flow then falls back to item ids and stays silent.
func NewFlow(set *rules.Set, ledger *score.Ledger, granter host.ItemGranter, achievements host.AchievementSource, names host.ItemNames, notify host.Notifier) *Flow {
	return &Flow{
		rules:        set,
		ledger:       ledger,
		granter:      granter,
		achievements: achievements,
		names:        names,
		notify:       notify,
		printer:      message.NewPrinter(language.AmericanEnglish),
		sessions:     make(map[uint64]*Session),
	}
}

// SwapRules replaces the rule set after a reload. Live sessions keep
// their positions; a stale ordinal simply fails its next lookup.
func (f *Flow) SwapRules(set *rules.Set) {
	f.rules = set
}

// Begin opens a fresh session at the offer step, discarding any previous
// conversation the character had.
func (f *Flow) Begin(characterID uint64) *Session {
	session := &Session{CharacterID: characterID, Step: StepOffer}
	f.sessions[characterID] = session
	return session
}

// Session returns the character's live session, if any.
func (f *Flow) Session(characterID uint64) (*Session, bool) {
	session, ok := f.sessions[characterID]
	return session, ok
}

// Cancel drops the character's session.
func (f *Flow) Cancel(characterID uint64) {
	delete(f.sessions, characterID)
}

// CategoryOptions lists the categories with any catalog content, in
// ascending order.
func (f *Flow) CategoryOptions() []rules.Category {
	return f.rules.Categories()
}

// SlotClassOptions lists the item classes stocked for a category.
func (f *Flow) SlotClassOptions(category rules.Category) []rules.SlotClass {
	return f.rules.SlotClasses(category)
}

// ItemOptions lists the purchasable items for a category and class.
func (f *Flow) ItemOptions(category rules.Category, class rules.SlotClass) []ItemOption {
	catalog := f.rules.Rewards(category, class)
	options := make([]ItemOption, 0, len(catalog))
	for i, reward := range catalog {
		options = append(options, ItemOption{
			Ordinal: i,
			ItemID:  reward.ItemID,
			Price:   reward.Price,
			Name:    f.itemName(reward.ItemID),
		})
	}
	return options
}

// SelectCategory advances an offer-step session to slot class selection.
func (f *Flow) SelectCategory(characterID uint64, category rules.Category) (*Session, error) {
	session, err := f.sessionAt(characterID, StepOffer)
	if err != nil {
		return nil, err
	}
	if len(f.rules.SlotClasses(category)) == 0 {
		return nil, apperrors.New(apperrors.CodeRewardUnknown, "no rewards stocked for category")
	}
	session.Category = category
	session.Step = StepSlotClassSelect
	return session, nil
}

// SelectSlotClass advances the session to item selection.
func (f *Flow) SelectSlotClass(characterID uint64, class rules.SlotClass) (*Session, error) {
	session, err := f.sessionAt(characterID, StepSlotClassSelect)
	if err != nil {
		return nil, err
	}
	if len(f.rules.Rewards(session.Category, class)) == 0 {
		return nil, apperrors.New(apperrors.CodeRewardUnknown, "no rewards stocked for slot class")
	}
	session.SlotClass = class
	session.Step = StepItemSelect
	return session, nil
}

// SelectItem checks the character can afford the item and moves the
// session to the confirm step. An unaffordable item ends the session in
// the denied step with a whispered shortfall.
func (f *Flow) SelectItem(characterID uint64, ordinal int) (*Session, error) {
	session, err := f.sessionAt(characterID, StepItemSelect)
	if err != nil {
		return nil, err
	}
	reward, ok := f.rules.Reward(session.Category, session.SlotClass, ordinal)
	if !ok {
		return nil, apperrors.New(apperrors.CodeRewardUnknown, "no such reward")
	}

	balance := f.ledger.Balance(characterID, session.Category)
	if balance < reward.Price {
		session.Step = StepDenied
		delete(f.sessions, characterID)
		f.whisper(characterID, f.printer.Sprintf(
			"I am sorry, time-traveler. This item costs %d score but you only have %d %s.",
			reward.Price, balance, session.Category.String(),
		))
		return session, nil
	}

	session.Ordinal = ordinal
	session.Step = StepConfirm
	return session, nil
}

// Confirm settles the purchase: funds and achievement gating are checked
// once more, the price is debited and the item is mailed out. The
// session ends in the granted or denied step.
func (f *Flow) Confirm(ctx context.Context, characterID uint64) (*Session, error) {
	session, err := f.sessionAt(characterID, StepConfirm)
	if err != nil {
		return nil, err
	}
	reward, ok := f.rules.Reward(session.Category, session.SlotClass, session.Ordinal)
	if !ok {
		return nil, apperrors.New(apperrors.CodeRewardUnknown, "no such reward")
	}
	defer delete(f.sessions, characterID)

	if reward.RequiredAchievement != 0 &&
		(f.achievements == nil || !f.achievements.HasAchievement(characterID, reward.RequiredAchievement)) {
		session.Step = StepDenied
		f.whisper(characterID, f.printer.Sprintf(
			"You do not have the required achievement with ID %d to receive this item. You need to complete the whole dungeon where it can be obtained.",
			reward.RequiredAchievement,
		))
		return session, nil
	}

	if err := f.ledger.Debit(ctx, characterID, session.Category, reward.Price); err != nil {
		session.Step = StepDenied
		return session, err
	}

	err = f.granter.SendItem(characterID, host.Delivery{
		ItemID:      reward.ItemID,
		EnchantID:   reward.EnchantID,
		EnchantSlot: reward.EnchantSlot,
		Subject:     rewardMailSubject,
		Body:        rewardMailBody,
	})
	if err != nil {
		// The debit already went through at this point.
		log.Printf("send reward item %d to character %d: %v", reward.ItemID, characterID, err)
		session.Step = StepDenied
		return session, apperrors.Wrap(apperrors.CodeUnknown, "send reward item", err)
	}
	session.Step = StepGranted
	return session, nil
}

func (f *Flow) sessionAt(characterID uint64, step Step) (*Session, error) {
	session, ok := f.sessions[characterID]
	if !ok || session.Step != step {
		return nil, apperrors.WithMetadata(apperrors.CodeRedemptionInvalidStep, "session is not at the expected step", map[string]string{
			"expected": step.String(),
		})
	}
	return session, nil
}

func (f *Flow) itemName(itemID uint32) string {
	if f.names != nil {
		if name, ok := f.names.ItemName(itemID); ok {
			return name
		}
	}
	return f.printer.Sprintf("item #%d", itemID)
}

func (f *Flow) whisper(characterID uint64, message string) {
	if f.notify != nil {
		f.notify.Whisper(characterID, message)
	}
}
