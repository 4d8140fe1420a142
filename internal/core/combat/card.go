package combat

// ModifierKind discriminates the attack modifier variants.
type ModifierKind int

const (
	// ModifierNumeric is a flat adjustment to the base attack value.
	ModifierNumeric ModifierKind = iota
	// ModifierNull negates the attack entirely (a miss).
	ModifierNull
	// ModifierDouble doubles the base attack value.
	ModifierDouble
)

// Ranking values used when comparing cards under advantage or
// disadvantage. They are never displayed to players.
const (
	rankDouble = 100
	rankNull   = -100
)

// Modifier is the value drawn from an attack modifier deck.
type Modifier struct {
	Kind  ModifierKind
	Value int // meaningful only when Kind is ModifierNumeric
}

// Numeric returns a flat numeric modifier.
func Numeric(value int) Modifier {
	return Modifier{Kind: ModifierNumeric, Value: value}
}

// Null returns the miss modifier.
func Null() Modifier {
	return Modifier{Kind: ModifierNull}
}

// Double returns the x2 modifier.
func Double() Modifier {
	return Modifier{Kind: ModifierDouble}
}

// IsMiss reports whether the modifier negates the attack.
func (m Modifier) IsMiss() bool {
	return m.Kind == ModifierNull
}

// rank orders modifiers for advantage/disadvantage comparison:
// x2 beats every numeric value, null loses to every numeric value.
func (m Modifier) rank() int {
	switch m.Kind {
	case ModifierDouble:
		return rankDouble
	case ModifierNull:
		return rankNull
	case ModifierNumeric:
		return m.Value
	}
	return rankNull
}

// Card is an immutable attack modifier card drawn by the deck
// collaborator and consumed by combat resolution.
type Card struct {
	Modifier Modifier
	Effects  []string
	// Reshuffle signals that the owning deck must shuffle its discard
	// pile back into the draw pile. Deck management is external; the
	// flag only passes through.
	Reshuffle bool
}

// IsReshuffle reports whether drawing the card obliges its owner to
// reshuffle the modifier deck.
func IsReshuffle(card Card) bool {
	return card.Reshuffle
}
