package objective

import "fmt"

// Template evaluators are pure functions over (Params, Context). Bad
// parameters are reported through Result.Err, never panics.

func evalKillAllMonsters(_ Params, ctx Context) Result {
	total := len(ctx.Monsters)
	dead := 0
	for _, m := range ctx.Monsters {
		if m.IsDead {
			dead++
		}
	}
	return Result{
		Complete: total > 0 && dead == total,
		Progress: newProgress(dead, total),
	}
}

func evalKillMonsterType(params Params, ctx Context) Result {
	if len(params.MonsterTypes) == 0 {
		return Result{Err: "monster_types is required"}
	}
	wanted := make(map[string]bool, len(params.MonsterTypes))
	for _, t := range params.MonsterTypes {
		wanted[t] = true
	}

	total, dead := 0, 0
	for _, m := range ctx.Monsters {
		if !wanted[m.Type] {
			continue
		}
		total++
		if m.IsDead {
			dead++
		}
	}
	return Result{
		Complete: total > 0 && dead == total,
		Progress: newProgress(dead, total),
	}
}

func evalKillBoss(params Params, ctx Context) Result {
	if params.MonsterID == "" {
		return Result{Err: "monster_id is required"}
	}
	for _, m := range ctx.Monsters {
		if m.ID != params.MonsterID {
			continue
		}
		if m.IsDead {
			return Result{Complete: true, Progress: progressWithPercent(1, 1, 100)}
		}
		// Progress tracks boss health depleted before death.
		percent := 0
		if m.MaxHealth > 0 {
			percent = (m.MaxHealth - m.Health) * 100 / m.MaxHealth
		}
		return Result{Progress: progressWithPercent(0, 1, percent)}
	}
	return Result{Err: fmt.Sprintf("boss %q not found in scenario", params.MonsterID)}
}

func evalSurviveRounds(params Params, ctx Context) Result {
	if params.Rounds <= 0 {
		return Result{Err: "rounds must be greater than zero"}
	}

	// Failure overrides completion: losing anyone fails the objective
	// outright, even when first observed at the target round.
	for _, c := range ctx.Characters {
		if c.IsExhausted || c.Health <= 0 {
			return Result{Failed: true, Progress: newProgress(min(ctx.Round, params.Rounds), params.Rounds)}
		}
	}

	if ctx.Round >= params.Rounds {
		return Result{Complete: true, Progress: newProgress(params.Rounds, params.Rounds)}
	}
	return Result{Progress: newProgress(ctx.Round, params.Rounds)}
}

func evalCollectLoot(params Params, ctx Context) Result {
	if params.Count <= 0 {
		return Result{Err: "count must be greater than zero"}
	}
	current := ctx.Stats.LootCollected
	if len(params.TokenIDs) > 0 {
		current = 0
		for _, id := range params.TokenIDs {
			current += ctx.Stats.LootByID[id]
		}
	}
	if current > params.Count {
		current = params.Count
	}
	return Result{
		Complete: current >= params.Count,
		Progress: newProgress(current, params.Count),
	}
}

func evalCollectTreasure(params Params, ctx Context) Result {
	if params.Count <= 0 {
		return Result{Err: "count must be greater than zero"}
	}
	current := 0
	if len(params.TokenIDs) > 0 {
		wanted := make(map[string]bool, len(params.TokenIDs))
		for _, id := range params.TokenIDs {
			wanted[id] = true
		}
		for _, id := range ctx.Stats.TreasuresOpened {
			if wanted[id] {
				current++
			}
		}
	} else {
		current = len(ctx.Stats.TreasuresOpened)
	}
	if current > params.Count {
		current = params.Count
	}
	return Result{
		Complete: current >= params.Count,
		Progress: newProgress(current, params.Count),
	}
}

func evalReachLocation(params Params, ctx Context) Result {
	return evalOccupy(params, ctx, params.RequireAll)
}

// Escape is reach_location with all living characters required.
func evalEscape(params Params, ctx Context) Result {
	return evalOccupy(params, ctx, true)
}

func evalOccupy(params Params, ctx Context, requireAll bool) Result {
	if len(params.Hexes) == 0 {
		return Result{Err: "hexes is required"}
	}
	targets := make(map[string]bool, len(params.Hexes))
	for _, h := range params.Hexes {
		targets[h.Key()] = true
	}

	living, occupying := 0, 0
	for _, c := range ctx.Characters {
		if !c.Alive() {
			continue
		}
		living++
		if c.Hex != nil && targets[c.Hex.Key()] {
			occupying++
		}
	}

	if living == 0 {
		return Result{Progress: newProgress(0, 1)}
	}
	if requireAll {
		return Result{
			Complete: occupying == living,
			Progress: newProgress(occupying, living),
		}
	}
	capped := occupying
	if capped > 1 {
		capped = 1
	}
	return Result{
		Complete: occupying >= 1,
		Progress: newProgress(capped, 1),
	}
}

func evalProtectNPC(params Params, ctx Context) Result {
	if params.NPCID == "" {
		return Result{Err: "npc_id is required"}
	}
	if params.Rounds <= 0 {
		return Result{Err: "rounds must be greater than zero"}
	}

	for _, n := range ctx.NPCs {
		if n.ID != params.NPCID {
			continue
		}
		if n.IsDead {
			return Result{Failed: true, Progress: newProgress(min(ctx.Round, params.Rounds), params.Rounds)}
		}
		return Result{
			Complete: ctx.Round >= params.Rounds,
			Progress: newProgress(min(ctx.Round, params.Rounds), params.Rounds),
		}
	}
	return Result{Err: fmt.Sprintf("npc %q not found in scenario", params.NPCID)}
}

// time_limit is inverted: Complete means the limit was exceeded, which
// is the scenario failure signal.
func evalTimeLimit(params Params, ctx Context) Result {
	if params.Rounds <= 0 {
		return Result{Err: "rounds must be greater than zero"}
	}
	exceeded := ctx.Round > params.Rounds
	return Result{
		Complete: exceeded,
		Failed:   exceeded,
		Progress: newProgress(min(ctx.Round, params.Rounds), params.Rounds),
	}
}

func evalNoDamage(_ Params, ctx Context) Result {
	living, fullHealth := 0, 0
	for _, c := range ctx.Characters {
		if !c.Alive() {
			continue
		}
		living++
		if c.Health >= c.MaxHealth {
			fullHealth++
		}
	}

	progress := newProgress(fullHealth, living)
	// Any recorded damage fails permanently, even if health recovers.
	if ctx.Stats.TotalDamageTaken > 0 {
		return Result{Failed: true, Progress: progress}
	}
	return Result{
		Complete: living > 0 && fullHealth == living,
		Progress: progress,
	}
}

func evalMinimumHealth(params Params, ctx Context) Result {
	if params.HealthPercent <= 0 || params.HealthPercent > 100 {
		return Result{Err: "health_percent must be in range 1..100"}
	}

	living, meeting := 0, 0
	for _, c := range ctx.Characters {
		if !c.Alive() {
			continue
		}
		living++
		if c.MaxHealth > 0 && c.Health*100/c.MaxHealth >= params.HealthPercent {
			meeting++
		}
	}
	return Result{
		Complete: living > 0 && meeting == living,
		Progress: newProgress(meeting, living),
	}
}
