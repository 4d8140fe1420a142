package domain

import "testing"

func TestCreateCharacter(t *testing.T) {
	char, err := CreateCharacter(CreateCharacterInput{
		Name:      "Voidwarden",
		MaxHealth: 8,
		Hand:      []string{"c1", "c2", "c3"},
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	if char.ID == "" {
		t.Error("expected a generated id")
	}
	if char.Health != 8 {
		t.Errorf("expected full health, got %d", char.Health)
	}
	if len(char.Hand) != 3 {
		t.Errorf("expected hand of 3, got %d", len(char.Hand))
	}
	if char.RestType != RestNone {
		t.Errorf("expected rest type none, got %q", char.RestType)
	}
}

func TestCreateCharacterValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateCharacterInput
		want  error
	}{
		{"empty name", CreateCharacterInput{MaxHealth: 5}, ErrEmptyCharacterName},
		{"zero max health", CreateCharacterInput{Name: "x"}, ErrInvalidMaxHealth},
		{"negative max health", CreateCharacterInput{Name: "x", MaxHealth: -1}, ErrInvalidMaxHealth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CreateCharacter(tt.input); err != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyDamageClampsAtZero(t *testing.T) {
	char := &Character{Health: 6, MaxHealth: 6}

	lost := char.ApplyDamage(9)
	if char.Health != 0 {
		t.Errorf("expected health clamped to 0, got %d", char.Health)
	}
	if lost != 6 {
		t.Errorf("expected 6 health lost, got %d", lost)
	}

	if lost := char.ApplyDamage(3); lost != 0 {
		t.Errorf("expected no further loss at 0 health, got %d", lost)
	}
	if lost := char.ApplyDamage(-2); lost != 0 {
		t.Errorf("expected non-positive damage to be ignored, got %d", lost)
	}
}

func TestHealClampsAtMax(t *testing.T) {
	char := &Character{Health: 4, MaxHealth: 6}

	if got := char.Heal(5); got != 2 {
		t.Errorf("expected 2 healed, got %d", got)
	}
	if char.Health != 6 {
		t.Errorf("expected health at max, got %d", char.Health)
	}
}

func TestDiscardFromHand(t *testing.T) {
	char := &Character{Hand: []string{"a", "b", "c"}}

	if !char.DiscardFromHand("b") {
		t.Fatal("expected discard to succeed")
	}
	if len(char.Hand) != 2 || char.Hand[0] != "a" || char.Hand[1] != "c" {
		t.Errorf("unexpected hand after discard: %v", char.Hand)
	}
	if len(char.DiscardPile) != 1 || char.DiscardPile[0] != "b" {
		t.Errorf("unexpected discard pile: %v", char.DiscardPile)
	}
	if char.DiscardFromHand("missing") {
		t.Error("expected discard of missing card to fail")
	}
}

func TestNewIDShape(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(id) != 26 {
		t.Errorf("expected 26-character id, got %d (%q)", len(id), id)
	}
}
