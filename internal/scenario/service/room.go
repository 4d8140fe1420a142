package service

import (
	"math/rand"
	"sync"

	"github.com/louisbranch/emberfall/internal/core/combat"
	"github.com/louisbranch/emberfall/internal/scenario/domain"
	"github.com/louisbranch/emberfall/internal/scenario/objective"
)

// CardStats holds the playable numbers for one ability card.
type CardStats struct {
	Attack int `json:"attack"`
	Move   int `json:"move"`
	// Range of 0 means melee (adjacent hexes only).
	Range  int `json:"range"`
	Pierce int `json:"pierce"`
	Heal   int `json:"heal"`
}

// MeleeRange is the effective reach of a melee attack.
const MeleeRange = 1

// ModifierDeck supplies attack modifier draws. Deck composition,
// shuffling, and bless/curse insertion live in the content layer.
type ModifierDeck interface {
	Draw() combat.Card
}

// Room is the mutable state of one active scenario. Commands for a
// room are applied serially under its lock; the pure combat,
// exhaustion, and objective packages stay lock-free because of it.
type Room struct {
	mu sync.Mutex

	ID         string
	Round      int
	Characters []*domain.Character
	Monsters   []*domain.Monster
	NPCs       []*domain.NPC
	Objectives []objective.Definition
	Stats      objective.Stats

	Cards   map[string]CardStats
	Deck    ModifierDeck
	Blocked map[string]bool

	// ActiveCharacterID is set by the turn scheduler. Empty means turn
	// order is not being enforced.
	ActiveCharacterID string

	Complete bool
	Failed   bool

	// selected maps character id to the card ids picked this round.
	selected map[string][]string
	// milestonesSent tracks the highest milestone already announced per
	// objective id.
	milestonesSent map[string]int

	rng func(n int) int
}

// RoomConfig describes the initial state of a scenario room.
type RoomConfig struct {
	ID         string
	Characters []*domain.Character
	Monsters   []*domain.Monster
	NPCs       []*domain.NPC
	Objectives []objective.Definition
	Cards      map[string]CardStats
	Deck       ModifierDeck
	Blocked    []domain.Hex
}

// NewRoom creates a scenario room at round 1.
func NewRoom(cfg RoomConfig) *Room {
	blocked := make(map[string]bool, len(cfg.Blocked))
	for _, hex := range cfg.Blocked {
		blocked[hex.Key()] = true
	}
	return &Room{
		ID:             cfg.ID,
		Round:          1,
		Characters:     cfg.Characters,
		Monsters:       cfg.Monsters,
		NPCs:           cfg.NPCs,
		Objectives:     cfg.Objectives,
		Stats:          objective.Stats{LootByID: make(map[string]int)},
		Cards:          cfg.Cards,
		Deck:           cfg.Deck,
		Blocked:        blocked,
		selected:       make(map[string][]string),
		milestonesSent: make(map[string]int),
		rng:            rand.Intn,
	}
}

func (r *Room) characterByID(id string) *domain.Character {
	for _, c := range r.Characters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (r *Room) monsterByID(id string) *domain.Monster {
	for _, m := range r.Monsters {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// hexOccupied reports whether any living piece stands on the hex.
func (r *Room) hexOccupied(hex domain.Hex) bool {
	for _, c := range r.Characters {
		if c.CurrentHex != nil && *c.CurrentHex == hex {
			return true
		}
	}
	for _, m := range r.Monsters {
		if !m.IsDead && m.CurrentHex != nil && *m.CurrentHex == hex {
			return true
		}
	}
	for _, n := range r.NPCs {
		if !n.IsDead && n.CurrentHex != nil && *n.CurrentHex == hex {
			return true
		}
	}
	return false
}

// hasSelected reports whether the card is among the character's picks
// for this round.
func (r *Room) hasSelected(characterID, cardID string) bool {
	for _, id := range r.selected[characterID] {
		if id == cardID {
			return true
		}
	}
	return false
}

func (r *Room) snapshot() objective.Context {
	return objective.BuildContext(r.Round, r.Characters, r.Monsters, r.NPCs, r.Stats)
}
