package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"

	"loom/internal/api"
	"loom/internal/checkpoint"
	"loom/internal/config"
	"loom/internal/generator/llmgen"
	"loom/internal/generator/staticgen"
	"loom/internal/library"
	"loom/internal/logging"
	"loom/internal/services/llm"
	"loom/internal/workflow"
)

// Daemon coordinates the engine, its stores, and the HTTP API, and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   checkpoint.Store
	catalog *library.Store
	engine  *workflow.Engine
	server  *api.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with all dependencies initialized from cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := OpenCheckpointStore(cfg)
	if err != nil {
		return nil, err
	}
	catalog, err := library.Open(cfg.Library.Path)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open library: %w", err)
	}

	registry := prometheus.NewRegistry()
	engine, err := BuildEngine(cfg, store, logger, workflow.NewMetrics(registry))
	if err != nil {
		_ = store.Close()
		_ = catalog.Close()
		return nil, err
	}

	server := api.NewServer(api.NewStatusService(store), engine, catalog, api.ServerOptions{
		Bind:     cfg.Paths.APIBind,
		Token:    cfg.Paths.APIToken,
		Logger:   logger,
		Registry: registry,
	})

	lockPath := filepath.Join(cfg.Paths.DataDir, "loomd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		catalog:  catalog,
		engine:   engine,
		server:   server,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// OpenCheckpointStore builds the checkpoint backend selected by cfg.
func OpenCheckpointStore(cfg *config.Config) (checkpoint.Store, error) {
	switch cfg.Checkpoint.Backend {
	case config.BackendMemory:
		return checkpoint.NewMemoryStore(), nil
	case config.BackendSQLite:
		store, err := checkpoint.OpenSQLite(cfg.Checkpoint.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open checkpoint store: %w", err)
		}
		return store, nil
	case config.BackendRedis:
		return checkpoint.NewRedisStore(
			cfg.Checkpoint.RedisAddr,
			cfg.Checkpoint.RedisPassword,
			cfg.Checkpoint.RedisDB,
			checkpoint.WithKeyPrefix(cfg.Checkpoint.RedisPrefix),
		), nil
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", cfg.Checkpoint.Backend)
	}
}

// BuildEngine assembles the workflow engine with the generator suite selected
// by cfg.
func BuildEngine(cfg *config.Config, store checkpoint.Store, logger *slog.Logger, metrics *workflow.Metrics) (*workflow.Engine, error) {
	gens, err := buildGenerators(cfg, logger)
	if err != nil {
		return nil, err
	}
	opts := []workflow.Option{
		workflow.WithLogger(logger),
		workflow.WithRetryCeiling(cfg.Workflow.RetryCeiling),
	}
	if metrics != nil {
		opts = append(opts, workflow.WithMetrics(metrics))
	}
	engine, err := workflow.New(gens, store, opts...)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return engine, nil
}

func buildGenerators(cfg *config.Config, logger *slog.Logger) (workflow.Generators, error) {
	switch cfg.Generator.Mode {
	case config.GeneratorStatic:
		suite := staticgen.New()
		return workflow.Generators{
			Analyzer:     suite,
			Planner:      suite,
			Content:      suite,
			Assessment:   suite,
			Orchestrator: suite,
		}, nil
	case config.GeneratorLLM:
		client := llm.NewClient(cfg.GetLLM())
		suite, err := llmgen.New(client, llmgen.WithLogger(logger))
		if err != nil {
			return workflow.Generators{}, err
		}
		return workflow.Generators{
			Analyzer:     suite,
			Planner:      suite,
			Content:      suite,
			Assessment:   suite,
			Orchestrator: suite,
		}, nil
	default:
		return workflow.Generators{}, fmt.Errorf("unknown generator mode %q", cfg.Generator.Mode)
	}
}

// Start acquires the daemon lock and brings up the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another loom daemon instance is already running")
	}

	serverCtx, cancel := context.WithCancel(ctx)
	if err := d.server.Start(serverCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("checkpoint_backend", d.cfg.Checkpoint.Backend),
		logging.String("generator_mode", d.cfg.Generator.Mode),
	)
	return nil
}

// Stop shuts down the HTTP API and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases store handles.
func (d *Daemon) Close() error {
	d.Stop()
	var firstErr error
	if d.store != nil {
		if err := d.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.catalog != nil {
		if err := d.catalog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Engine exposes the assembled workflow engine.
func (d *Daemon) Engine() *workflow.Engine { return d.engine }

// APIAddr returns the bound API address once Start has succeeded.
func (d *Daemon) APIAddr() string { return d.server.Addr() }
