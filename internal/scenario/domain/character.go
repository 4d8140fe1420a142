package domain

import (
	"errors"
	"fmt"
)

// RestType describes the rest a character is currently taking.
type RestType string

const (
	// RestNone indicates the character is not resting.
	RestNone RestType = "none"
	// RestShort indicates a short rest (random discard recovery).
	RestShort RestType = "short"
	// RestLong indicates a long rest (chosen discard, heal).
	RestLong RestType = "long"
)

// ExhaustionReason records why a character left play.
type ExhaustionReason string

const (
	// ExhaustionNone is the zero value for characters still in play.
	ExhaustionNone ExhaustionReason = ""
	// ExhaustionDamage indicates health reached zero.
	ExhaustionDamage ExhaustionReason = "damage"
	// ExhaustionInsufficientCards indicates the character could neither
	// play two cards nor rest at the start of a round.
	ExhaustionInsufficientCards ExhaustionReason = "insufficient_cards"
)

var (
	// ErrEmptyCharacterName indicates a missing character name.
	ErrEmptyCharacterName = errors.New("character name is required")
	// ErrInvalidMaxHealth indicates a non-positive maximum health.
	ErrInvalidMaxHealth = errors.New("max health must be greater than zero")
)

// ActiveEffect is a card sitting in a character's active area with a
// persistent or round-scoped effect.
type ActiveEffect struct {
	CardID string `json:"card_id"`
	Effect string `json:"effect"`
	// RoundBound effects expire at end of round; persistent ones stay
	// until the card is lost or discarded.
	RoundBound bool `json:"round_bound"`
}

// ShortRestState tracks an in-progress short rest awaiting the
// player's redraw decision.
type ShortRestState struct {
	LostCardID string `json:"lost_card_id"`
	MayRedraw  bool   `json:"may_redraw"`
}

// Character is the engine's view of a player character. The session
// layer owns the entity; the engine reads and mutates these fields.
//
// Invariants: Health is never negative; once IsExhausted is set it is
// terminal for the scenario; LostPile only grows within a scenario.
type Character struct {
	ID        string
	Name      string
	Health    int
	MaxHealth int

	Hand          []string // ordered card ids
	DiscardPile   []string
	LostPile      []string
	ActiveCards   []string
	ActiveEffects []ActiveEffect

	IsExhausted      bool
	ExhaustionReason ExhaustionReason

	CurrentHex *Hex // nil means off-board

	IsResting      bool
	RestType       RestType
	ShortRestState *ShortRestState
}

// CreateCharacterInput describes the input for creating a character.
type CreateCharacterInput struct {
	Name      string
	MaxHealth int
	Hand      []string
	Hex       *Hex
}

// CreateCharacter creates a character at full health with validation.
func CreateCharacter(input CreateCharacterInput) (*Character, error) {
	if input.Name == "" {
		return nil, ErrEmptyCharacterName
	}
	if input.MaxHealth <= 0 {
		return nil, ErrInvalidMaxHealth
	}

	id, err := NewID()
	if err != nil {
		return nil, fmt.Errorf("generate character id: %w", err)
	}

	hand := make([]string, len(input.Hand))
	copy(hand, input.Hand)

	return &Character{
		ID:         id,
		Name:       input.Name,
		Health:     input.MaxHealth,
		MaxHealth:  input.MaxHealth,
		Hand:       hand,
		CurrentHex: input.Hex,
		RestType:   RestNone,
	}, nil
}

// ApplyDamage reduces health, clamping at zero, and returns the health
// actually lost.
func (c *Character) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := c.Health
	c.Health -= amount
	if c.Health < 0 {
		c.Health = 0
	}
	return before - c.Health
}

// Heal raises health, clamping at MaxHealth, and returns the health
// actually recovered.
func (c *Character) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := c.Health
	c.Health += amount
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
	return c.Health - before
}

// HasCardInHand reports whether the card id is currently in hand.
func (c *Character) HasCardInHand(cardID string) bool {
	for _, id := range c.Hand {
		if id == cardID {
			return true
		}
	}
	return false
}

// DiscardFromHand moves a card from hand to the discard pile.
// It reports whether the card was found.
func (c *Character) DiscardFromHand(cardID string) bool {
	for i, id := range c.Hand {
		if id == cardID {
			c.Hand = append(c.Hand[:i], c.Hand[i+1:]...)
			c.DiscardPile = append(c.DiscardPile, cardID)
			return true
		}
	}
	return false
}
