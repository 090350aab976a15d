package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"lectern/internal/archive"
	"lectern/internal/catalog"
	"lectern/internal/config"
	"lectern/internal/journal"
	"lectern/internal/logging"
	"lectern/internal/pipeline"
	"lectern/internal/records"
	"lectern/internal/relabel"
	"lectern/internal/schedule"
	"lectern/internal/services/diarize"
	"lectern/internal/services/gemini"
	"lectern/internal/services/transcribe"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
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

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openStore() (*records.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return records.NewStore(cfg.Paths.DataDir, logger), nil
}

func (c *commandContext) openCatalog() (*catalog.Catalog, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return catalog.New(cfg.Paths.DataDir, logger), nil
}

func (c *commandContext) openJournal() (*journal.Journal, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return journal.Open(cfg.Paths.DataDir)
}

func (c *commandContext) newRelabeler() (*relabel.Relabeler, error) {
	store, err := c.openStore()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return relabel.New(store, logger), nil
}

// buildPipeline assembles the full processing pipeline from configuration.
// The caller owns closing the returned journal.
func (c *commandContext) buildPipeline() (*pipeline.Pipeline, *journal.Journal, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	cat := catalog.New(cfg.Paths.DataDir, logger)
	store := records.NewStore(cfg.Paths.DataDir, logger)
	matcher := schedule.NewMatcher(cfg.Schedule.MatchWindowMinutes, logger)
	archiver := archive.New(cfg.Paths.ArchiveDir, logger)

	jnl, err := journal.Open(cfg.Paths.DataDir)
	if err != nil {
		return nil, nil, err
	}

	transcriber := transcribe.NewClient(transcribe.Config{
		BaseURL:        cfg.Transcriber.BaseURL,
		Model:          cfg.Transcriber.Model,
		Language:       cfg.Transcriber.Language,
		TimeoutSeconds: cfg.Transcriber.TimeoutSeconds,
		RetryAttempts:  cfg.Transcriber.RetryAttempts,
	})
	diarizer := diarize.NewClient(diarize.Config{
		BaseURL:        cfg.Diarizer.BaseURL,
		HFToken:        cfg.Diarizer.HFToken,
		TimeoutSeconds: cfg.Diarizer.TimeoutSeconds,
		RetryAttempts:  cfg.Diarizer.RetryAttempts,
	})
	generator := gemini.NewClient(gemini.Config{
		APIKey:         cfg.Gemini.APIKey,
		BaseURL:        cfg.Gemini.BaseURL,
		Model:          cfg.Gemini.Model,
		TimeoutSeconds: cfg.Gemini.TimeoutSeconds,
		RetryAttempts:  cfg.Gemini.RetryAttempts,
	})

	p := pipeline.New(cfg, cat, store, matcher, archiver, jnl, transcriber, diarizer, generator, logger)
	return p, jnl, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
