// Package app assembles a scenario engine from environment
// configuration: storage, sandbox, exhaustion rules, the command
// service, and the dedup dispatcher, plus opt-in tracing.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/louisbranch/emberfall/internal/platform/config"
	"github.com/louisbranch/emberfall/internal/platform/otel"
	"github.com/louisbranch/emberfall/internal/protocol"
	"github.com/louisbranch/emberfall/internal/scenario/exhaustion"
	"github.com/louisbranch/emberfall/internal/scenario/objective"
	"github.com/louisbranch/emberfall/internal/scenario/objective/sandbox"
	"github.com/louisbranch/emberfall/internal/scenario/service"
	"github.com/louisbranch/emberfall/internal/storage"
	"github.com/louisbranch/emberfall/internal/storage/memory"
	"github.com/louisbranch/emberfall/internal/storage/sqlite"
	"github.com/louisbranch/emberfall/internal/telemetry"
)

const serviceName = "emberfall-scenario"

// App is a fully wired scenario engine. The session layer registers
// rooms on Service and routes player requests through Dispatcher.
type App struct {
	Service    *service.Service
	Dispatcher *protocol.Dispatcher

	store    *sqlite.Store
	shutdown func(context.Context) error
}

// New builds an engine from environment-driven settings. An empty
// storage path selects the in-memory store.
func New(ctx context.Context, cfg config.Engine, logger *slog.Logger, sink telemetry.Sink) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	shutdown, err := otel.Setup(ctx, serviceName)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	rules := exhaustion.DefaultRules()
	if cfg.MinPlayableCards > 0 {
		rules.MinPlayableCards = cfg.MinPlayableCards
	}
	if cfg.MinRestCards > 0 {
		rules.MinRestCards = cfg.MinRestCards
	}

	sandboxCfg := sandbox.DefaultConfig()
	if cfg.ScriptDeadline > 0 {
		sandboxCfg.Deadline = cfg.ScriptDeadline
	}
	engine := objective.New(sandbox.New(sandboxCfg, logger), logger)

	app := &App{shutdown: shutdown}

	opts := []service.Option{
		service.WithRules(rules),
		service.WithEmitter(telemetry.NewEmitter(sink)),
	}
	var journal storage.RequestJournal
	if cfg.StoragePath != "" {
		store, err := sqlite.Open(cfg.StoragePath)
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("open engine storage: %w", err)
		}
		app.store = store
		journal = store
		opts = append(opts, service.WithCounters(store))
	} else {
		store := memory.NewStore()
		journal = store
		opts = append(opts, service.WithCounters(store))
	}

	app.Service = service.New(engine, logger, opts...)
	app.Dispatcher = protocol.NewDispatcher(journal, app.Service, logger)
	if cfg.DedupWindow > 0 {
		app.Dispatcher.DedupWindow = cfg.DedupWindow
	}
	return app, nil
}

// Close releases engine resources and flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = err
		}
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
