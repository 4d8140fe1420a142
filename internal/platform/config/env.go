package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Engine holds the environment-driven engine settings.
type Engine struct {
	// StoragePath is the SQLite file backing the request journal and
	// counters. Empty selects the in-memory store.
	StoragePath string `env:"EMBERFALL_STORAGE_PATH"`
	// DedupWindow bounds how long answered request ids are retained.
	DedupWindow time.Duration `env:"EMBERFALL_DEDUP_WINDOW" envDefault:"10m"`
	// ScriptDeadline caps custom objective script execution.
	ScriptDeadline time.Duration `env:"EMBERFALL_SCRIPT_DEADLINE" envDefault:"100ms"`
	// MinPlayableCards and MinRestCards override the exhaustion
	// thresholds for rule variants.
	MinPlayableCards int `env:"EMBERFALL_MIN_PLAYABLE_CARDS" envDefault:"2"`
	MinRestCards     int `env:"EMBERFALL_MIN_REST_CARDS" envDefault:"2"`
}

// ParseEngine loads the engine settings from the environment.
func ParseEngine() (Engine, error) {
	var cfg Engine
	if err := ParseEnv(&cfg); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}
