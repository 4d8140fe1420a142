// Package objective evaluates scenario completion and failure. A
// scenario declares objectives as fixed parameterized templates or as
// designer-authored custom scripts run in a restricted sandbox.
//
// Evaluation never raises: malformed definitions, unknown types, and
// rejected or crashing scripts are all encoded into the returned
// Result so a bad scenario definition cannot crash its room.
package objective

import (
	"github.com/louisbranch/emberfall/internal/scenario/domain"
)

// Type identifies an objective template.
type Type string

const (
	TypeKillAllMonsters Type = "kill_all_monsters"
	TypeKillMonsterType Type = "kill_monster_type"
	TypeKillBoss        Type = "kill_boss"
	TypeSurviveRounds   Type = "survive_rounds"
	TypeCollectLoot     Type = "collect_loot"
	TypeCollectTreasure Type = "collect_treasure"
	TypeReachLocation   Type = "reach_location"
	TypeEscape          Type = "escape"
	TypeProtectNPC      Type = "protect_npc"
	TypeTimeLimit       Type = "time_limit"
	TypeNoDamage        Type = "no_damage"
	TypeMinimumHealth   Type = "minimum_health"
	TypeCustom          Type = "custom"
)

// TemplateTypes lists the fixed template types, excluding custom.
var TemplateTypes = []Type{
	TypeKillAllMonsters,
	TypeKillMonsterType,
	TypeKillBoss,
	TypeSurviveRounds,
	TypeCollectLoot,
	TypeCollectTreasure,
	TypeReachLocation,
	TypeEscape,
	TypeProtectNPC,
	TypeTimeLimit,
	TypeNoDamage,
	TypeMinimumHealth,
}

// Params carries template-specific parameters. Each template reads
// only the fields it documents; the rest are ignored.
type Params struct {
	// MonsterTypes restricts kill_monster_type to a type set.
	MonsterTypes []string `json:"monster_types,omitempty"`
	// MonsterID names the boss for kill_boss.
	MonsterID string `json:"monster_id,omitempty"`
	// Rounds is the round target for survive_rounds, protect_npc, and
	// time_limit.
	Rounds int `json:"rounds,omitempty"`
	// Count is the collection target for collect_loot and
	// collect_treasure.
	Count int `json:"count,omitempty"`
	// TokenIDs restricts collection objectives to specific token or
	// treasure ids.
	TokenIDs []string `json:"token_ids,omitempty"`
	// Hexes is the target hex set for reach_location and escape.
	Hexes []domain.Hex `json:"hexes,omitempty"`
	// RequireAll demands every living character occupy a target hex
	// for reach_location. Escape always requires all.
	RequireAll bool `json:"require_all,omitempty"`
	// NPCID names the protected NPC for protect_npc.
	NPCID string `json:"npc_id,omitempty"`
	// HealthPercent is the threshold for minimum_health.
	HealthPercent int `json:"health_percent,omitempty"`
}

// Milestone pairs a progress percentage with a designer-supplied
// display message.
type Milestone struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// Definition declares one scenario objective. Created at scenario
// load, read-only during play.
type Definition struct {
	ID             string      `json:"id"`
	Type           Type        `json:"type"`
	Params         Params      `json:"params"`
	CustomFunction string      `json:"custom_function,omitempty"`
	TrackProgress  bool        `json:"track_progress"`
	Milestones     []Milestone `json:"milestones,omitempty"`
}

// Progress is the display payload for a tracked objective.
type Progress struct {
	Current           int    `json:"current"`
	Target            int    `json:"target"`
	Percent           int    `json:"percent"`
	MilestonesReached []int  `json:"milestones_reached"`
	Details           string `json:"details,omitempty"`
}

// Result is the outcome of one objective evaluation.
type Result struct {
	Complete bool `json:"complete"`
	// Failed overrides Complete for objectives that can actively fail
	// (survive_rounds, protect_npc, time_limit, no_damage).
	Failed   bool      `json:"failed,omitempty"`
	Progress *Progress `json:"progress,omitempty"`
	Err      string    `json:"error,omitempty"`
}

// milestoneThresholds are the notification percentages.
var milestoneThresholds = []int{25, 50, 75, 100}

// newProgress builds a progress payload from a current/target pair,
// clamping percent to 0..100 and deriving reached milestones.
func newProgress(current, target int) *Progress {
	percent := 0
	if target > 0 {
		percent = current * 100 / target
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return progressWithPercent(current, target, percent)
}

func progressWithPercent(current, target, percent int) *Progress {
	reached := make([]int, 0, len(milestoneThresholds))
	for _, m := range milestoneThresholds {
		if percent >= m {
			reached = append(reached, m)
		}
	}
	return &Progress{
		Current:           current,
		Target:            target,
		Percent:           percent,
		MilestonesReached: reached,
	}
}

// MilestoneMessage maps a reached milestone percentage to the
// designer-supplied display string, if the definition declares one.
func MilestoneMessage(def Definition, percent int) (string, bool) {
	for _, m := range def.Milestones {
		if m.Percent == percent {
			return m.Message, true
		}
	}
	return "", false
}
