// Package exhaustion implements the per-character incapacitation state
// machine: alive or exhausted, with exhausted terminal for the
// remainder of the scenario.
//
// The transition is evaluated whenever health changes and at the start
// of each character's round; the card-based trigger only applies at
// round start. Thresholds are carried on Rules so rule variants can
// override them without touching engine logic.
package exhaustion

import (
	"fmt"

	apperrors "github.com/louisbranch/emberfall/internal/errors"
	"github.com/louisbranch/emberfall/internal/scenario/domain"
)

var (
	// ErrAlreadyExhausted indicates Execute was called on a character
	// that already left play. The transition is applied exactly once.
	ErrAlreadyExhausted = apperrors.New(apperrors.CodeAlreadyExhausted, "character is already exhausted")
)

// Rules holds the overridable thresholds for exhaustion checks.
type Rules struct {
	// MinPlayableCards is the hand size needed to play a turn.
	MinPlayableCards int
	// MinRestCards is the discard size needed to rest.
	MinRestCards int
	// WarningHealth is the health at or below which risk is a warning.
	WarningHealth int
}

// DefaultRules returns the standard two-card thresholds.
func DefaultRules() Rules {
	return Rules{
		MinPlayableCards: 2,
		MinRestCards:     2,
		WarningHealth:    2,
	}
}

// Trigger identifies when an exhaustion check runs.
type Trigger int

const (
	// TriggerHealthChange re-evaluates after damage or healing; only
	// the health trigger applies.
	TriggerHealthChange Trigger = iota
	// TriggerRoundStart additionally evaluates the card-based trigger.
	TriggerRoundStart
)

// Check is the read-only result of an exhaustion evaluation.
type Check struct {
	Exhausted bool
	Reason    domain.ExhaustionReason
	Message   string
	// Details carries the counts the decision was derived from.
	Details CheckDetails
}

// CheckDetails records the inputs behind a check result.
type CheckDetails struct {
	Health      int
	HandSize    int
	DiscardSize int
}

// Check evaluates whether a character is, or should become, exhausted.
// It never mutates the character. An already-exhausted character
// short-circuits and reports its stored reason without re-deriving it.
func (r Rules) Check(c *domain.Character, trigger Trigger) Check {
	details := CheckDetails{
		Health:      c.Health,
		HandSize:    len(c.Hand),
		DiscardSize: len(c.DiscardPile),
	}

	if c.IsExhausted {
		return Check{
			Exhausted: true,
			Reason:    c.ExhaustionReason,
			Message:   fmt.Sprintf("%s is exhausted (%s)", c.Name, c.ExhaustionReason),
			Details:   details,
		}
	}

	if c.Health <= 0 {
		return Check{
			Exhausted: true,
			Reason:    domain.ExhaustionDamage,
			Message:   fmt.Sprintf("%s has been reduced to 0 health", c.Name),
			Details:   details,
		}
	}

	if trigger == TriggerRoundStart && !r.canPlay(c) && !r.canRest(c) {
		return Check{
			Exhausted: true,
			Reason:    domain.ExhaustionInsufficientCards,
			Message:   fmt.Sprintf("%s cannot play two cards or rest", c.Name),
			Details:   details,
		}
	}

	return Check{Details: details}
}

// Execute applies the exhaustion transition. All card ids in hand,
// discard pile, and active effects move to the lost pile (which only
// ever grows); the character leaves the board and any resting state is
// cleared. Calling Execute on an exhausted character is a caller error.
func (r Rules) Execute(c *domain.Character, reason domain.ExhaustionReason) error {
	if c.IsExhausted {
		return ErrAlreadyExhausted
	}

	c.LostPile = append(c.LostPile, c.Hand...)
	c.LostPile = append(c.LostPile, c.DiscardPile...)
	for _, effect := range c.ActiveEffects {
		c.LostPile = append(c.LostPile, effect.CardID)
	}

	c.Hand = nil
	c.DiscardPile = nil
	c.ActiveEffects = nil
	c.ActiveCards = nil

	c.IsExhausted = true
	c.ExhaustionReason = reason
	c.CurrentHex = nil

	c.IsResting = false
	c.RestType = domain.RestNone
	c.ShortRestState = nil

	return nil
}

// PartyExhausted reports whether a non-empty party is entirely
// exhausted. This is the scenario failure condition consumed by the
// room and objective layers.
func PartyExhausted(characters []*domain.Character) bool {
	if len(characters) == 0 {
		return false
	}
	for _, c := range characters {
		if !c.IsExhausted {
			return false
		}
	}
	return true
}

// RiskLevel is a derived, non-authoritative UI classification. It is
// recomputed on demand and never persisted.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskWarning  RiskLevel = "warning"
	RiskCritical RiskLevel = "critical"
)

// Risk classifies how close a character is to exhaustion.
func (r Rules) Risk(c *domain.Character) RiskLevel {
	if c.IsExhausted || c.Health <= 0 {
		return RiskCritical
	}
	if !r.canPlay(c) && !r.canRest(c) {
		return RiskCritical
	}
	if c.Health <= r.WarningHealth {
		return RiskWarning
	}
	if len(c.Hand) <= r.MinPlayableCards && len(c.DiscardPile) <= r.MinRestCards {
		return RiskWarning
	}
	return RiskSafe
}

func (r Rules) canPlay(c *domain.Character) bool {
	return len(c.Hand) >= r.MinPlayableCards
}

func (r Rules) canRest(c *domain.Character) bool {
	return len(c.DiscardPile) >= r.MinRestCards
}
