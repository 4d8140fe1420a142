package objective

import "github.com/louisbranch/emberfall/internal/scenario/domain"

// CharacterState is the read-only character view inside a Context.
type CharacterState struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Health      int         `json:"health"`
	MaxHealth   int         `json:"max_health"`
	IsExhausted bool        `json:"is_exhausted"`
	Hex         *domain.Hex `json:"hex,omitempty"`
}

// Alive reports whether the character is still in play.
func (c CharacterState) Alive() bool {
	return !c.IsExhausted && c.Health > 0
}

// MonsterState is the read-only monster view inside a Context.
type MonsterState struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Health    int    `json:"health"`
	MaxHealth int    `json:"max_health"`
	IsDead    bool   `json:"is_dead"`
}

// NPCState is the read-only NPC view inside a Context.
type NPCState struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Health int    `json:"health"`
	IsDead bool   `json:"is_dead"`
}

// Stats accumulates scenario-wide counters. TotalDamageTaken is
// per-scenario and never resets between rounds.
type Stats struct {
	TotalDamageTaken int            `json:"total_damage_taken"`
	LootCollected    int            `json:"loot_collected"`
	LootByID         map[string]int `json:"loot_by_id,omitempty"`
	TreasuresOpened  []string       `json:"treasures_opened,omitempty"`
}

// Context is the snapshot an objective evaluation runs against. It is
// assembled once per evaluation from the room state and never mutated
// by the engine; rebuild it fresh for every call.
type Context struct {
	Round      int              `json:"round"`
	Characters []CharacterState `json:"characters"`
	Monsters   []MonsterState   `json:"monsters"`
	NPCs       []NPCState       `json:"npcs"`
	Stats      Stats            `json:"stats"`
}

// BuildContext assembles an evaluation snapshot from room entities.
func BuildContext(round int, characters []*domain.Character, monsters []*domain.Monster, npcs []*domain.NPC, stats Stats) Context {
	ctx := Context{Round: round, Stats: stats}

	for _, c := range characters {
		ctx.Characters = append(ctx.Characters, CharacterState{
			ID:          c.ID,
			Name:        c.Name,
			Health:      c.Health,
			MaxHealth:   c.MaxHealth,
			IsExhausted: c.IsExhausted,
			Hex:         c.CurrentHex,
		})
	}
	for _, m := range monsters {
		ctx.Monsters = append(ctx.Monsters, MonsterState{
			ID:        m.ID,
			Type:      m.Type,
			Name:      m.Name,
			Health:    m.Health,
			MaxHealth: m.MaxHealth,
			IsDead:    m.IsDead,
		})
	}
	for _, n := range npcs {
		ctx.NPCs = append(ctx.NPCs, NPCState{
			ID:     n.ID,
			Name:   n.Name,
			Health: n.Health,
			IsDead: n.IsDead,
		})
	}

	return ctx
}

// scriptEnv converts the snapshot into the plain value tree handed to
// the sandbox. Scripts see snake_case keys matching the wire shape.
func (c Context) scriptEnv() map[string]any {
	characters := make([]any, 0, len(c.Characters))
	for _, ch := range c.Characters {
		entry := map[string]any{
			"id":           ch.ID,
			"name":         ch.Name,
			"health":       ch.Health,
			"max_health":   ch.MaxHealth,
			"is_exhausted": ch.IsExhausted,
			"alive":        ch.Alive(),
		}
		if ch.Hex != nil {
			entry["hex"] = map[string]any{"q": ch.Hex.Q, "r": ch.Hex.R}
		}
		characters = append(characters, entry)
	}

	monsters := make([]any, 0, len(c.Monsters))
	for _, m := range c.Monsters {
		monsters = append(monsters, map[string]any{
			"id":         m.ID,
			"type":       m.Type,
			"name":       m.Name,
			"health":     m.Health,
			"max_health": m.MaxHealth,
			"is_dead":    m.IsDead,
		})
	}

	npcs := make([]any, 0, len(c.NPCs))
	for _, n := range c.NPCs {
		npcs = append(npcs, map[string]any{
			"id":      n.ID,
			"name":    n.Name,
			"health":  n.Health,
			"is_dead": n.IsDead,
		})
	}

	lootByID := make(map[string]any, len(c.Stats.LootByID))
	for id, count := range c.Stats.LootByID {
		lootByID[id] = count
	}
	treasures := make([]any, 0, len(c.Stats.TreasuresOpened))
	for _, id := range c.Stats.TreasuresOpened {
		treasures = append(treasures, id)
	}

	return map[string]any{
		"round":      c.Round,
		"characters": characters,
		"monsters":   monsters,
		"npcs":       npcs,
		"stats": map[string]any{
			"total_damage_taken": c.Stats.TotalDamageTaken,
			"loot_collected":     c.Stats.LootCollected,
			"loot_by_id":         lootByID,
			"treasures_opened":   treasures,
		},
	}
}
