package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"songpatch/internal/config"
	"songpatch/internal/history"
	"songpatch/internal/logging"
	"songpatch/internal/pipeline"
	"songpatch/internal/services"
	"songpatch/internal/songconfig"
)

type commandContext struct {
	configFlag  string
	songDirFlag string
	verbose     bool
	silent      bool
	jsonOutput  bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, logging.ConsoleOptions{Verbose: c.verbose, Silent: c.silent})
		if err != nil {
			c.loggerErr = services.Wrap(services.ErrConfiguration, "logging", "init", "", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) songDir() string {
	if dir := strings.TrimSpace(c.songDirFlag); dir != "" {
		return dir
	}
	return "."
}

func (c *commandContext) songStore() (*songconfig.Store, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return songconfig.NewStore(c.songDir(), logger), nil
}

// openHistory returns nil when history is disabled. Open failures are logged
// and treated the same way so a broken database never blocks a run.
func (c *commandContext) openHistory(ctx context.Context) *history.Store {
	cfg, err := c.ensureConfig()
	if err != nil || !cfg.History.Enabled {
		return nil
	}
	logger, _ := c.ensureLogger()
	store, err := history.Open(ctx, cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.String("path", cfg.HistoryPath()),
			logging.String(logging.FieldImpact, "this run will not be recorded"),
			logging.Error(err))
		return nil
	}
	if days := cfg.History.RetentionDays; days > 0 {
		removed, err := store.Prune(ctx, time.Now().AddDate(0, 0, -days))
		if err != nil {
			logging.WarnWithContext(logger, "run history prune failed", "history_prune_failed",
				logging.String("path", cfg.HistoryPath()),
				logging.String(logging.FieldImpact, "old runs remain in history"),
				logging.Error(err))
		} else if removed > 0 && logger != nil {
			logger.Debug("pruned run history", logging.Int64("removed", removed), logging.Int("retention_days", days))
		}
	}
	return store
}

// withPatcher builds a pipeline for the current song directory and closes
// the history store when fn returns.
func (c *commandContext) withPatcher(cmd *cobra.Command, fn func(*pipeline.Patcher) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	store := c.openHistory(cmd.Context())
	var recorder pipeline.Recorder
	if store != nil {
		defer store.Close()
		recorder = store
	}
	return fn(pipeline.NewFromConfig(cfg, c.songDir(), recorder, logger))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
