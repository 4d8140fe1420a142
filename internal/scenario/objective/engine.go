package objective

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/louisbranch/emberfall/internal/scenario/objective/sandbox"
)

// Engine evaluates objective definitions against context snapshots.
// It is safe for use by multiple rooms: evaluation holds no state and
// every custom-script run gets a fresh interpreter.
type Engine struct {
	sandbox *sandbox.Sandbox
	logger  *slog.Logger
}

// New creates an engine. A nil sandbox gets the default security
// configuration; a nil logger falls back to slog.Default.
func New(sb *sandbox.Sandbox, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if sb == nil {
		sb = sandbox.New(sandbox.DefaultConfig(), logger)
	}
	return &Engine{sandbox: sb, logger: logger}
}

// Evaluate runs one objective against a snapshot. It never returns an
// error: every failure path is encoded in the Result so a malformed
// definition cannot crash the room.
func (e *Engine) Evaluate(ctx context.Context, def Definition, snap Context) Result {
	switch def.Type {
	case TypeKillAllMonsters:
		return evalKillAllMonsters(def.Params, snap)
	case TypeKillMonsterType:
		return evalKillMonsterType(def.Params, snap)
	case TypeKillBoss:
		return evalKillBoss(def.Params, snap)
	case TypeSurviveRounds:
		return evalSurviveRounds(def.Params, snap)
	case TypeCollectLoot:
		return evalCollectLoot(def.Params, snap)
	case TypeCollectTreasure:
		return evalCollectTreasure(def.Params, snap)
	case TypeReachLocation:
		return evalReachLocation(def.Params, snap)
	case TypeEscape:
		return evalEscape(def.Params, snap)
	case TypeProtectNPC:
		return evalProtectNPC(def.Params, snap)
	case TypeTimeLimit:
		return evalTimeLimit(def.Params, snap)
	case TypeNoDamage:
		return evalNoDamage(def.Params, snap)
	case TypeMinimumHealth:
		return evalMinimumHealth(def.Params, snap)
	case TypeCustom:
		return e.evalCustom(ctx, def, snap)
	default:
		return Result{Err: fmt.Sprintf("unknown objective type %q", def.Type)}
	}
}

// ProgressFor evaluates an objective and extracts just the progress
// payload when progress tracking is enabled for it.
func (e *Engine) ProgressFor(ctx context.Context, def Definition, snap Context) *Progress {
	if !def.TrackProgress {
		return nil
	}
	return e.Evaluate(ctx, def, snap).Progress
}

// ValidateScript statically checks a custom function body without
// executing it. Template definitions trivially pass.
func (e *Engine) ValidateScript(def Definition) sandbox.Validation {
	if def.Type != TypeCustom {
		return sandbox.Validation{OK: true}
	}
	return e.sandbox.Validate(def.CustomFunction)
}

func (e *Engine) evalCustom(ctx context.Context, def Definition, snap Context) Result {
	if def.CustomFunction == "" {
		return Result{Err: "custom objective has no function body"}
	}

	validation := e.sandbox.Validate(def.CustomFunction)
	if !validation.OK {
		return Result{Err: "Security validation failed: " + validation.Reason}
	}
	for _, warning := range validation.Warnings {
		e.logger.Warn("custom objective validation warning",
			"objective_id", def.ID,
			"warning", warning,
		)
	}

	outcome, err := e.sandbox.Run(ctx, def.CustomFunction, snap.scriptEnv())
	if err != nil {
		if errors.Is(err, sandbox.ErrUnsupportedReturn) {
			return Result{Err: "custom objective must return boolean or ObjectiveResult"}
		}
		return Result{Err: fmt.Sprintf("custom objective failed: %v", err)}
	}

	switch outcome.Kind {
	case sandbox.OutcomeBoolean:
		return Result{Complete: outcome.Bool}
	case sandbox.OutcomeTable:
		return resultFromFields(outcome.Fields)
	default:
		return Result{Err: "custom objective must return boolean or ObjectiveResult"}
	}
}

// resultFromFields maps a script's result-shaped table onto a Result.
// Unknown fields are ignored; missing fields take zero values.
func resultFromFields(fields map[string]any) Result {
	var result Result
	if complete, ok := fields["complete"].(bool); ok {
		result.Complete = complete
	}
	if failed, ok := fields["failed"].(bool); ok {
		result.Failed = failed
	}
	if msg, ok := fields["error"].(string); ok {
		result.Err = msg
	}
	if progress, ok := fields["progress"].(map[string]any); ok {
		current := intField(progress, "current")
		target := intField(progress, "target")
		p := newProgress(current, target)
		if details, ok := progress["details"].(string); ok {
			p.Details = details
		}
		result.Progress = p
	}
	return result
}

func intField(fields map[string]any, key string) int {
	if n, ok := fields[key].(float64); ok {
		return int(n)
	}
	return 0
}
