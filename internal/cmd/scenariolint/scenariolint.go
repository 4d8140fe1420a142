// Package scenariolint checks scenario objective definitions before
// they ship: template parameters are validated and custom scripts are
// run through the sandbox's static validation.
package scenariolint

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/louisbranch/emberfall/internal/scenario/objective"
	"github.com/louisbranch/emberfall/internal/scenario/objective/sandbox"
)

// Config holds scenario-lint command configuration.
type Config struct {
	File           string        `env:"EMBERFALL_LINT_FILE"`
	Strict         bool          `env:"EMBERFALL_LINT_STRICT"`
	ScriptDeadline time.Duration `env:"EMBERFALL_SCRIPT_DEADLINE" envDefault:"100ms"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.File, "file", cfg.File, "path to objective definitions JSON")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "treat warnings as errors")
	fs.DurationVar(&cfg.ScriptDeadline, "script-deadline", cfg.ScriptDeadline, "custom script execution deadline")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the scenario-lint command. It returns an error when any
// definition fails validation.
func Run(cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.File == "" {
		return errors.New("definitions file is required")
	}

	raw, err := os.ReadFile(cfg.File)
	if err != nil {
		return fmt.Errorf("read definitions: %w", err)
	}

	var defs []objective.Definition
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("decode definitions: %w", err)
	}
	if len(defs) == 0 {
		return errors.New("no objective definitions found")
	}

	sandboxCfg := sandbox.DefaultConfig()
	sandboxCfg.Deadline = cfg.ScriptDeadline
	engine := objective.New(sandbox.New(sandboxCfg, nil), nil)

	problems := 0
	for _, def := range defs {
		for _, issue := range lintDefinition(engine, def, cfg.Strict) {
			problems++
			fmt.Fprintf(errOut, "%s: %s\n", def.ID, issue)
		}
	}

	fmt.Fprintf(out, "checked %d definitions, %d problems\n", len(defs), problems)
	if problems > 0 {
		return fmt.Errorf("%d problems found", problems)
	}
	return nil
}

// lintDefinition returns the problems with one definition.
func lintDefinition(engine *objective.Engine, def objective.Definition, strict bool) []string {
	var problems []string
	if def.ID == "" {
		problems = append(problems, "missing objective id")
	}

	switch def.Type {
	case objective.TypeCustom:
		if def.CustomFunction == "" {
			problems = append(problems, "custom objective has no script body")
			break
		}
		validation := engine.ValidateScript(def)
		if !validation.OK {
			problems = append(problems, fmt.Sprintf("script rejected: %s", validation.Reason))
		}
		if strict {
			for _, warning := range validation.Warnings {
				problems = append(problems, fmt.Sprintf("script warning: %s", warning))
			}
		}
	case objective.TypeKillMonsterType:
		if len(def.Params.MonsterTypes) == 0 {
			problems = append(problems, "kill_monster_type needs monster_types")
		}
	case objective.TypeKillBoss:
		if def.Params.MonsterID == "" {
			problems = append(problems, "kill_boss needs monster_id")
		}
	case objective.TypeSurviveRounds, objective.TypeTimeLimit:
		if def.Params.Rounds <= 0 {
			problems = append(problems, fmt.Sprintf("%s needs a positive rounds value", def.Type))
		}
	case objective.TypeCollectLoot, objective.TypeCollectTreasure:
		if def.Params.Count <= 0 {
			problems = append(problems, fmt.Sprintf("%s needs a positive count", def.Type))
		}
	case objective.TypeReachLocation, objective.TypeEscape:
		if len(def.Params.Hexes) == 0 {
			problems = append(problems, fmt.Sprintf("%s needs target hexes", def.Type))
		}
	case objective.TypeProtectNPC:
		if def.Params.NPCID == "" {
			problems = append(problems, "protect_npc needs npc_id")
		}
		if def.Params.Rounds <= 0 {
			problems = append(problems, "protect_npc needs a positive rounds value")
		}
	case objective.TypeMinimumHealth:
		if def.Params.HealthPercent < 1 || def.Params.HealthPercent > 100 {
			problems = append(problems, "minimum_health needs health_percent between 1 and 100")
		}
	case objective.TypeKillAllMonsters, objective.TypeNoDamage:
		// No required parameters.
	default:
		problems = append(problems, fmt.Sprintf("unknown objective type %q", def.Type))
	}

	for _, milestone := range def.Milestones {
		switch milestone.Percent {
		case 25, 50, 75, 100:
		default:
			problems = append(problems, fmt.Sprintf("milestone percent %d is not a notification threshold", milestone.Percent))
		}
	}
	return problems
}
