package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateServices(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	named := map[string]string{
		"paths.incoming_dir":  c.Paths.IncomingDir,
		"paths.processed_dir": c.Paths.ProcessedDir,
		"paths.archive_dir":   c.Paths.ArchiveDir,
		"paths.data_dir":      c.Paths.DataDir,
		"paths.log_dir":       c.Paths.LogDir,
	}
	for key, value := range named {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateServices() error {
	if err := ensurePositiveMap(map[string]int{
		"transcriber.timeout_seconds": c.Transcriber.TimeoutSeconds,
		"transcriber.retry_attempts":  c.Transcriber.RetryAttempts,
		"diarizer.timeout_seconds":    c.Diarizer.TimeoutSeconds,
		"diarizer.retry_attempts":     c.Diarizer.RetryAttempts,
		"gemini.timeout_seconds":      c.Gemini.TimeoutSeconds,
		"gemini.retry_attempts":       c.Gemini.RetryAttempts,
	}); err != nil {
		return err
	}
	if strings.TrimSpace(c.Transcriber.BaseURL) == "" {
		return errors.New("transcriber.base_url must be set")
	}
	if strings.TrimSpace(c.Diarizer.BaseURL) == "" {
		return errors.New("diarizer.base_url must be set")
	}
	if strings.TrimSpace(c.Gemini.Model) == "" {
		return errors.New("gemini.model must be set")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.MatchWindowMinutes <= 0 {
		return errors.New("schedule.match_window_minutes must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
