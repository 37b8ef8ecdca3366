package config

import (
	"errors"
	"fmt"
	"log/slog"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateRenderer(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if _, err := c.SweepRange(); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	if err := c.Target().Validate(); err != nil {
		return fmt.Errorf("source.url_template: %w", err)
	}
	if c.Source.LanguageVariant < 0 {
		return errors.New("source.language_variant must be non-negative")
	}
	if c.Source.ReadySelector == "" {
		return errors.New("source.ready_selector must be set")
	}
	if c.Source.ReadyTimeoutSeconds <= 0 {
		return errors.New("source.ready_timeout_seconds must be positive")
	}
	if c.Source.SettleDelaySeconds < 0 {
		return errors.New("source.settle_delay_seconds must be non-negative")
	}
	return nil
}

func (c *Config) validateRenderer() error {
	switch c.Renderer.Kind {
	case RendererBrowser, RendererHTTP:
	default:
		return fmt.Errorf("renderer.kind must be %q or %q, got %q", RendererBrowser, RendererHTTP, c.Renderer.Kind)
	}
	if c.Renderer.HTTPTimeoutSeconds <= 0 {
		return errors.New("renderer.http_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.RawDir == "" {
		return errors.New("paths.raw_dir must be set")
	}
	if c.Paths.NormalizedDir == "" {
		return errors.New("paths.normalized_dir must be set")
	}
	if c.Paths.RawDir == c.Paths.NormalizedDir {
		return errors.New("paths.raw_dir and paths.normalized_dir must differ")
	}
	if c.Paths.OutcomeLog == "" {
		return errors.New("paths.outcome_log must be set")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendDir:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path must be set for the sqlite backend")
		}
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendDir, BackendSQLite, c.Storage.Backend)
	}
	return nil
}

// LogLevel parses logging.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
