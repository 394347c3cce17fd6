// Package host declares the interfaces the surrounding game server
// implements for the difficulty engine. The engine never reaches into the
// simulation directly; everything side-effecting goes through these.
package host

// Unit is the engine's view of one live combat entity. Implementations
// wrap the host's entity model; all methods are expected to be cheap.
type Unit interface {
	// ID is a stable identity for the lifetime of the live entity.
	ID() uint64
	// Entry is the creature template id, 0 for players.
	Entry() uint32
	InstanceID() uint32
	Name() string

	IsAlive() bool
	InCombat() bool
	IsCasting() bool
	// IsTrigger reports whether the entity is an invisible scripting helper.
	IsTrigger() bool

	// Victim returns the entity's current combat target, nil if none.
	Victim() Unit
	// ThreatList returns the entity's threat list in aggro order, highest
	// first. Entries may include non-players; callers filter.
	ThreatList() []Unit
	IsPlayer() bool
	DistanceTo(other Unit) float64

	// CastSpell issues a forced spell cast at the target.
	CastSpell(target Unit, spellID uint32)
}

// SpellRanges resolves cast range limits for range-filtered target
// selection. ok is false when the spell is unknown to the host.
type SpellRanges interface {
	SpellRange(spellID uint32) (min, max float64, ok bool)
}

// Notifier delivers chat output to players.
type Notifier interface {
	Whisper(characterID uint64, message string)
	// BroadcastToInstance sends a message to every player sharing the
	// live instance.
	BroadcastToInstance(instanceID uint32, message string)
}

// Delivery describes one reward item handed to the mail collaborator.
// Enchant fields are zero when the item ships unenchanted.
type Delivery struct {
	ItemID      uint32
	EnchantID   uint32
	EnchantSlot uint8
	Subject     string
	Body        string
}

// ItemGranter sends reward items to characters, typically by mail.
type ItemGranter interface {
	SendItem(characterID uint64, d Delivery) error
}

// AchievementSource answers achievement-gating checks for rewards.
type AchievementSource interface {
	HasAchievement(characterID uint64, achievementID uint32) bool
}

// ItemNames resolves display names for catalog menus.
type ItemNames interface {
	ItemName(itemID uint32) (string, bool)
}

// BuffHolder supports stripping disallowed auras from a character or pet.
type BuffHolder interface {
	RemoveAura(spellID uint32)
}

// Presence is one player present in an instance at the moment an
// encounter completes.
type Presence struct {
	CharacterID  uint64
	IsGameMaster bool
	IsDeveloper  bool
}

// Eligible reports whether the player may receive score.
func (p Presence) Eligible() bool {
	return !p.IsGameMaster && !p.IsDeveloper
}
