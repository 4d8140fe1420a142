package exhaustion

import (
	"errors"
	"testing"

	"github.com/louisbranch/emberfall/internal/scenario/domain"
)

func healthyCharacter() *domain.Character {
	return &domain.Character{
		ID:        "char-1",
		Name:      "Brute",
		Health:    6,
		MaxHealth: 10,
		Hand:      []string{"h1", "h2", "h3"},
		DiscardPile: []string{"d1", "d2"},
		CurrentHex:  &domain.Hex{Q: 1, R: 2},
	}
}

func TestCheckHealthTrigger(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name       string
		health     int
		hand       []string
		discard    []string
		trigger    Trigger
		exhausted  bool
		reason     domain.ExhaustionReason
	}{
		{"healthy", 5, []string{"a", "b"}, nil, TriggerHealthChange, false, domain.ExhaustionNone},
		{"zero health", 0, []string{"a", "b", "c"}, []string{"d"}, TriggerHealthChange, true, domain.ExhaustionDamage},
		{"zero health at round start", 0, nil, nil, TriggerRoundStart, true, domain.ExhaustionDamage},
		{"low cards mid-round is fine", 3, []string{"a"}, []string{"d"}, TriggerHealthChange, false, domain.ExhaustionNone},
		{"low cards at round start", 3, []string{"a"}, []string{"d"}, TriggerRoundStart, true, domain.ExhaustionInsufficientCards},
		{"hand blocks card trigger", 3, []string{"a", "b"}, nil, TriggerRoundStart, false, domain.ExhaustionNone},
		{"discard blocks card trigger", 3, []string{"a"}, []string{"d1", "d2"}, TriggerRoundStart, false, domain.ExhaustionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			char := &domain.Character{
				Name:        "Tinkerer",
				Health:      tt.health,
				MaxHealth:   8,
				Hand:        tt.hand,
				DiscardPile: tt.discard,
			}
			check := rules.Check(char, tt.trigger)
			if check.Exhausted != tt.exhausted {
				t.Errorf("Exhausted = %v, want %v", check.Exhausted, tt.exhausted)
			}
			if check.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", check.Reason, tt.reason)
			}
		})
	}
}

func TestCheckShortCircuitsWhenExhausted(t *testing.T) {
	rules := DefaultRules()
	char := &domain.Character{
		Name:             "Scoundrel",
		Health:           4, // healthy, but already out
		Hand:             []string{"a", "b", "c"},
		IsExhausted:      true,
		ExhaustionReason: domain.ExhaustionInsufficientCards,
	}

	check := rules.Check(char, TriggerRoundStart)
	if !check.Exhausted {
		t.Fatal("expected exhausted")
	}
	if check.Reason != domain.ExhaustionInsufficientCards {
		t.Errorf("expected the stored reason, got %q", check.Reason)
	}
}

func TestExecute(t *testing.T) {
	rules := DefaultRules()
	char := healthyCharacter()
	char.LostPile = []string{"old"}
	char.ActiveCards = []string{"a1"}
	char.ActiveEffects = []domain.ActiveEffect{{CardID: "e1", Effect: "shield"}}
	char.IsResting = true
	char.RestType = domain.RestShort
	char.ShortRestState = &domain.ShortRestState{LostCardID: "h1"}

	if err := rules.Execute(char, domain.ExhaustionDamage); err != nil {
		t.Fatalf("execute: %v", err)
	}

	wantLost := map[string]bool{"old": true, "h1": true, "h2": true, "h3": true, "d1": true, "d2": true, "e1": true}
	if len(char.LostPile) != len(wantLost) {
		t.Errorf("lost pile = %v, want %d cards", char.LostPile, len(wantLost))
	}
	for _, id := range char.LostPile {
		if !wantLost[id] {
			t.Errorf("unexpected card %q in lost pile", id)
		}
	}

	if len(char.Hand) != 0 || len(char.DiscardPile) != 0 || len(char.ActiveEffects) != 0 || len(char.ActiveCards) != 0 {
		t.Error("expected hand, discard, and active areas to be cleared")
	}
	if !char.IsExhausted || char.ExhaustionReason != domain.ExhaustionDamage {
		t.Errorf("expected exhausted with damage reason, got %v/%q", char.IsExhausted, char.ExhaustionReason)
	}
	if char.CurrentHex != nil {
		t.Error("expected character removed from board")
	}
	if char.IsResting || char.RestType != domain.RestNone || char.ShortRestState != nil {
		t.Error("expected resting state cleared")
	}
}

func TestExecuteExactlyOnce(t *testing.T) {
	rules := DefaultRules()
	char := healthyCharacter()

	if err := rules.Execute(char, domain.ExhaustionDamage); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	lostBefore := len(char.LostPile)

	err := rules.Execute(char, domain.ExhaustionInsufficientCards)
	if !errors.Is(err, ErrAlreadyExhausted) {
		t.Fatalf("expected ErrAlreadyExhausted, got %v", err)
	}
	if char.ExhaustionReason != domain.ExhaustionDamage {
		t.Errorf("expected original reason preserved, got %q", char.ExhaustionReason)
	}
	if len(char.LostPile) != lostBefore {
		t.Error("expected lost pile unchanged on second call")
	}
}

func TestPartyExhausted(t *testing.T) {
	exhausted := &domain.Character{IsExhausted: true}
	alive := &domain.Character{Health: 3}

	tests := []struct {
		name  string
		party []*domain.Character
		want  bool
	}{
		{"empty party", nil, false},
		{"all exhausted", []*domain.Character{exhausted, exhausted}, true},
		{"one standing", []*domain.Character{exhausted, alive}, false},
		{"single alive", []*domain.Character{alive}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PartyExhausted(tt.party); got != tt.want {
				t.Errorf("PartyExhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRisk(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name string
		char *domain.Character
		want RiskLevel
	}{
		{"exhausted", &domain.Character{IsExhausted: true}, RiskCritical},
		{"zero health", &domain.Character{Health: 0, Hand: []string{"a", "b"}}, RiskCritical},
		{"would exhaust on cards", &domain.Character{Health: 5, Hand: []string{"a"}, DiscardPile: []string{"d"}}, RiskCritical},
		{"low health", &domain.Character{Health: 2, Hand: []string{"a", "b", "c"}, DiscardPile: []string{"d", "e", "f"}}, RiskWarning},
		{"thin card reserves", &domain.Character{Health: 8, Hand: []string{"a", "b"}, DiscardPile: []string{"d", "e"}}, RiskWarning},
		{"comfortable", &domain.Character{Health: 8, Hand: []string{"a", "b", "c"}, DiscardPile: []string{"d", "e", "f"}}, RiskSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.Risk(tt.char); got != tt.want {
				t.Errorf("Risk() = %q, want %q", got, tt.want)
			}
		})
	}
}
