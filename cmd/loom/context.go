package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"loom/internal/checkpoint"
	"loom/internal/config"
	"loom/internal/daemon"
	"loom/internal/library"
	"loom/internal/logging"
	"loom/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// openCheckpoints opens the configured checkpoint backend for read or run
// access. Callers own the returned store.
func (c *commandContext) openCheckpoints() (checkpoint.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := daemon.OpenCheckpointStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint store: %w", err)
	}
	return store, nil
}

func (c *commandContext) openCatalog() (*library.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := library.Open(cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	return catalog, nil
}

// buildEngine assembles a one-shot engine over the configured store. The
// caller owns the store's lifetime.
func (c *commandContext) buildEngine(store checkpoint.Store, logger *slog.Logger) (*workflow.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return daemon.BuildEngine(cfg, store, logger, nil)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
