// Package score keeps each character's hard-mode reward balance, one
// counter per content category. Balances live in memory and are written
// through to the characters store on every change.
package score

import (
	"context"
	"log"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/host"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/rules"
	"github.com/Nyeriah/mod-zone-difficulty/internal/difficulty/storage"
	apperrors "github.com/Nyeriah/mod-zone-difficulty/internal/platform/errors"
)

// Ledger tracks per-character score balances.
type Ledger struct {
	store   storage.CharactersStore
	notify  host.Notifier
	printer *message.Printer

	balances map[uint64]map[rules.Category]uint32
}

// NewLedger returns an empty ledger writing through to store. notify may
// be nil when no chat delivery is wired, for example in tooling.
func NewLedger(store storage.CharactersStore, notify host.Notifier) *Ledger {
	return &Ledger{
		store:    store,
		notify:   notify,
		printer:  message.NewPrinter(language.AmericanEnglish),
		balances: make(map[uint64]map[rules.Category]uint32),
	}
}

// Load replaces the in-memory balances with the persisted ones.
func (l *Ledger) Load(ctx context.Context) error {
	records, err := l.store.ListScores(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "load score balances", err)
	}
	balances := make(map[uint64]map[rules.Category]uint32)
	for _, rec := range records {
		byCategory, ok := balances[rec.CharacterID]
		if !ok {
			byCategory = make(map[rules.Category]uint32)
			balances[rec.CharacterID] = byCategory
		}
		byCategory[rules.Category(rec.Category)] = rec.Score
	}
	l.balances = balances
	return nil
}

// Balance returns the character's current score in a category.
func (l *Ledger) Balance(characterID uint64, category rules.Category) uint32 {
	return l.balances[characterID][category]
}

// Credit adds one point to the character's balance, whispers the new
// total and writes the row through. The new balance is returned.
func (l *Ledger) Credit(ctx context.Context, characterID uint64, category rules.Category) uint32 {
	byCategory, ok := l.balances[characterID]
	if !ok {
		byCategory = make(map[rules.Category]uint32)
		l.balances[characterID] = byCategory
	}
	byCategory[category]++
	balance := byCategory[category]

	if l.notify != nil {
		l.notify.Whisper(characterID, l.printer.Sprintf(
			"You have received score %s. New score: %d.",
			category.String(), balance,
		))
	}
	l.persist(ctx, characterID, category, balance)
	return balance
}

// Debit removes amount from the character's balance. The balance is left
// untouched when it cannot cover the amount.
func (l *Ledger) Debit(ctx context.Context, characterID uint64, category rules.Category, amount uint32) error {
	balance := l.balances[characterID][category]
	if balance < amount {
		return apperrors.WithMetadata(apperrors.CodeScoreInsufficient, "insufficient score", map[string]string{
			"category": category.String(),
			"balance":  strconv.FormatUint(uint64(balance), 10),
			"required": strconv.FormatUint(uint64(amount), 10),
		})
	}
	l.balances[characterID][category] = balance - amount
	l.persist(ctx, characterID, category, balance-amount)
	return nil
}

// Summary renders the character's non-zero balances for the listed
// categories, in list order, as one whisperable line.
func (l *Ledger) Summary(characterID uint64, categories []rules.Category) string {
	var parts []string
	for _, category := range categories {
		balance := l.balances[characterID][category]
		if balance == 0 {
			continue
		}
		parts = append(parts, l.printer.Sprintf("%s: %d", category.String(), balance))
	}
	if len(parts) == 0 {
		return "You have not collected any score yet."
	}
	return "Your score: " + strings.Join(parts, ", ")
}

func (l *Ledger) persist(ctx context.Context, characterID uint64, category rules.Category, balance uint32) {
	err := l.store.UpsertScore(ctx, storage.ScoreRecord{
		CharacterID: characterID,
		Category:    uint8(category),
		Score:       balance,
	})
	if err != nil {
		log.Printf("persist score for character %d: %v", characterID, err)
	}
}
