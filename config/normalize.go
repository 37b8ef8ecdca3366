package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeSource()
	c.Renderer.Kind = strings.ToLower(strings.TrimSpace(c.Renderer.Kind))
	c.Renderer.ExecPath = strings.TrimSpace(c.Renderer.ExecPath)
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Range.From = strings.TrimSpace(c.Range.From)
	c.Range.To = strings.TrimSpace(c.Range.To)
	return c.normalizePaths()
}

func (c *Config) normalizeSource() {
	c.Source.URLTemplate = strings.TrimSpace(c.Source.URLTemplate)
	c.Source.UserAgent = strings.TrimSpace(c.Source.UserAgent)
	c.Source.ReadySelector = strings.TrimSpace(c.Source.ReadySelector)
	if c.Source.NotFoundSentinel == "" {
		c.Source.NotFoundSentinel = defaultNotFoundSentinel
	}
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.raw_dir", &c.Paths.RawDir},
		{"paths.normalized_dir", &c.Paths.NormalizedDir},
		{"paths.snapshot_dir", &c.Paths.SnapshotDir},
		{"paths.outcome_log", &c.Paths.OutcomeLog},
		{"paths.preview_dir", &c.Paths.PreviewDir},
		{"storage.sqlite_path", &c.Storage.SQLitePath},
	}
	for _, f := range fields {
		expanded, err := expandPath(strings.TrimSpace(*f.value))
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}
