package combat

import "testing"

func TestDamage(t *testing.T) {
	tests := []struct {
		name string
		base int
		card Card
		want int
	}{
		{"numeric positive", 3, Card{Modifier: Numeric(2)}, 5},
		{"numeric negative", 3, Card{Modifier: Numeric(-1)}, 2},
		{"numeric zero", 3, Card{Modifier: Numeric(0)}, 3},
		{"clamped below zero", 2, Card{Modifier: Numeric(-5)}, 0},
		{"null is a miss", 4, Card{Modifier: Null()}, 0},
		{"null with zero base", 0, Card{Modifier: Null()}, 0},
		{"double", 3, Card{Modifier: Double()}, 6},
		{"double zero base", 0, Card{Modifier: Double()}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Damage(tt.base, tt.card)
			if got != tt.want {
				t.Errorf("Damage(%d, %v) = %d, want %d", tt.base, tt.card.Modifier, got, tt.want)
			}
		})
	}
}

func TestApplyShield(t *testing.T) {
	tests := []struct {
		name   string
		damage int
		shield int
		isMiss bool
		want   int
	}{
		{"shield reduces damage", 5, 2, false, 3},
		{"shield absorbs all", 2, 5, false, 0},
		{"shield exact", 3, 3, false, 0},
		{"no shield", 4, 0, false, 4},
		{"miss passes through", 0, 9, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyShield(tt.damage, tt.shield, tt.isMiss)
			if got != tt.want {
				t.Errorf("ApplyShield(%d, %d, %v) = %d, want %d", tt.damage, tt.shield, tt.isMiss, got, tt.want)
			}
		})
	}
}

func TestApplyPierce(t *testing.T) {
	tests := []struct {
		name   string
		damage int
		shield int
		pierce int
		want   int
	}{
		{"pierce negates part of shield", 5, 3, 2, 4},
		{"pierce exceeds shield", 5, 2, 4, 5},
		{"pierce equals shield", 5, 3, 3, 5},
		{"no pierce", 5, 3, 0, 2},
		{"shield still absorbs all", 1, 5, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyPierce(tt.damage, tt.shield, tt.pierce)
			if got != tt.want {
				t.Errorf("ApplyPierce(%d, %d, %d) = %d, want %d", tt.damage, tt.shield, tt.pierce, got, tt.want)
			}
		})
	}
}

func TestApplyRetaliate(t *testing.T) {
	tests := []struct {
		name      string
		health    int
		retaliate int
		isRanged  bool
		want      int
	}{
		{"melee takes retaliate", 10, 3, false, 7},
		{"retaliate clamps at zero", 2, 5, false, 0},
		{"ranged exempt", 10, 3, true, 10},
		{"ranged exempt with lethal retaliate", 2, 99, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyRetaliate(tt.health, tt.retaliate, tt.isRanged)
			if got != tt.want {
				t.Errorf("ApplyRetaliate(%d, %d, %v) = %d, want %d", tt.health, tt.retaliate, tt.isRanged, got, tt.want)
			}
		})
	}
}

func TestAdvantage(t *testing.T) {
	tests := []struct {
		name string
		a, b Card
		want Modifier
	}{
		{"higher numeric wins", Card{Modifier: Numeric(1)}, Card{Modifier: Numeric(2)}, Numeric(2)},
		{"double beats numeric", Card{Modifier: Numeric(5)}, Card{Modifier: Double()}, Double()},
		{"numeric beats null", Card{Modifier: Null()}, Card{Modifier: Numeric(-2)}, Numeric(-2)},
		{"tie keeps first", Card{Modifier: Numeric(1), Effects: []string{"fire"}}, Card{Modifier: Numeric(1)}, Numeric(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advantage(tt.a, tt.b)
			if got.Modifier != tt.want {
				t.Errorf("Advantage picked %v, want %v", got.Modifier, tt.want)
			}
		})
	}

	t.Run("tie identity", func(t *testing.T) {
		a := Card{Modifier: Numeric(0), Effects: []string{"push"}}
		b := Card{Modifier: Numeric(0)}
		got := Advantage(a, b)
		if len(got.Effects) != 1 || got.Effects[0] != "push" {
			t.Fatalf("expected tie to keep the first card, got %+v", got)
		}
	})
}

func TestDisadvantage(t *testing.T) {
	tests := []struct {
		name string
		a, b Card
		want Modifier
	}{
		{"lower numeric wins", Card{Modifier: Numeric(1)}, Card{Modifier: Numeric(-1)}, Numeric(-1)},
		{"null beats numeric", Card{Modifier: Numeric(-2)}, Card{Modifier: Null()}, Null()},
		{"numeric beats double", Card{Modifier: Double()}, Card{Modifier: Numeric(5)}, Numeric(5)},
		{"tie keeps first", Card{Modifier: Null()}, Card{Modifier: Null()}, Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Disadvantage(tt.a, tt.b)
			if got.Modifier != tt.want {
				t.Errorf("Disadvantage picked %v, want %v", got.Modifier, tt.want)
			}
		})
	}
}

func TestIsReshuffle(t *testing.T) {
	if IsReshuffle(Card{Modifier: Null()}) {
		t.Error("expected reshuffle to be false by default")
	}
	if !IsReshuffle(Card{Modifier: Double(), Reshuffle: true}) {
		t.Error("expected reshuffle flag to pass through")
	}
}
