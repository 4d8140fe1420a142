package domain

// Monster is the engine's read view of a scenario monster. Monster AI
// and spawning are owned by the session layer.
type Monster struct {
	ID        string
	Type      string
	Name      string
	Health    int
	MaxHealth int
	IsDead    bool
	IsElite   bool
	// Shield and Retaliate are the monster's persistent defensive stats
	// for the current round.
	Shield     int
	Retaliate  int
	CurrentHex *Hex
}

// NPC is a scenario non-player character, typically the subject of a
// protection objective.
type NPC struct {
	ID         string
	Name       string
	Health     int
	IsDead     bool
	CurrentHex *Hex
}
