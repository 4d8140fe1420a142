// Package combat provides pure attack arithmetic for scenario
// resolution: modifier application, shield and pierce interaction,
// retaliate, and advantage/disadvantage card comparison.
//
// Every function is side-effect free and total: inputs are assumed
// well-formed, outputs are clamped to zero or above, and nothing in
// this package returns an error or panics.
package combat

// Damage applies a drawn modifier card to a base attack value.
//
// A null modifier is a miss and always yields zero, regardless of the
// base value. The x2 modifier doubles the base. A numeric modifier is
// added to the base, clamped so the result is never negative.
func Damage(base int, card Card) int {
	switch card.Modifier.Kind {
	case ModifierNull:
		return 0
	case ModifierDouble:
		return base * 2
	case ModifierNumeric:
		return clamp(base + card.Modifier.Value)
	}
	return 0
}

// ApplyShield reduces damage by the defender's shield value.
//
// When the originating modifier was a miss the shield is irrelevant:
// the damage (already zero) passes through unchanged so downstream
// steps do not re-derive the miss.
func ApplyShield(damage, shield int, isMiss bool) int {
	if isMiss {
		return damage
	}
	return clamp(damage - shield)
}

// ApplyPierce reduces damage by the shield value remaining after
// pierce. Pierce can at most negate the shield; it never adds damage.
func ApplyPierce(damage, shield, pierce int) int {
	effectiveShield := clamp(shield - pierce)
	return clamp(damage - effectiveShield)
}

// ApplyRetaliate returns the attacker's health after retaliate damage.
// Retaliate is melee-only: ranged attackers are exempt and keep their
// health unchanged.
func ApplyRetaliate(attackerHealth, retaliate int, isRanged bool) int {
	if isRanged {
		return attackerHealth
	}
	return clamp(attackerHealth - retaliate)
}

// Advantage picks the better of two drawn cards by modifier ranking.
// Ties keep the first card.
func Advantage(a, b Card) Card {
	if b.Modifier.rank() > a.Modifier.rank() {
		return b
	}
	return a
}

// Disadvantage picks the worse of two drawn cards by modifier ranking.
// Ties keep the first card.
func Disadvantage(a, b Card) Card {
	if b.Modifier.rank() < a.Modifier.rank() {
		return b
	}
	return a
}

func clamp(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
