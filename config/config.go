// Package config loads strokepipe settings from TOML.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/gaurav-prasanna/strokepipe/crawl"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "strokepipe.toml"

// Source describes the dictionary page being scraped.
type Source struct {
	URLTemplate         string `toml:"url_template"`
	LanguageVariant     int    `toml:"language_variant"`
	UserAgent           string `toml:"user_agent"`
	NotFoundSentinel    string `toml:"not_found_sentinel"`
	ReadySelector       string `toml:"ready_selector"`
	ReadyTimeoutSeconds int    `toml:"ready_timeout_seconds"`
	SettleDelaySeconds  int    `toml:"settle_delay_seconds"`
}

// Renderer selects and configures the page renderer.
type Renderer struct {
	Kind               string `toml:"kind"` // browser or http
	Headless           bool   `toml:"headless"`
	ExecPath           string `toml:"exec_path"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
}

// Paths contains on-disk locations.
type Paths struct {
	RawDir        string `toml:"raw_dir"`
	NormalizedDir string `toml:"normalized_dir"`
	SnapshotDir   string `toml:"snapshot_dir"`
	OutcomeLog    string `toml:"outcome_log"`
	PreviewDir    string `toml:"preview_dir"`
}

// Storage selects the record store backend.
type Storage struct {
	Backend    string `toml:"backend"` // dir or sqlite
	SQLitePath string `toml:"sqlite_path"`
}

// Range is the default sweep. Bounds accept U+4E00, 0x4E00 or decimal.
type Range struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// Logging contains console log settings.
type Logging struct {
	Level string `toml:"level"`
}

// Config encapsulates all configuration values for strokepipe.
type Config struct {
	Source   Source   `toml:"source"`
	Renderer Renderer `toml:"renderer"`
	Paths    Paths    `toml:"paths"`
	Storage  Storage  `toml:"storage"`
	Range    Range    `toml:"range"`
	Logging  Logging  `toml:"logging"`
}

// Load locates, parses, and validates a configuration file. A missing file
// is not an error: defaults are used and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = DefaultFileName
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// Target returns the page URL builder.
func (c *Config) Target() crawl.Target {
	return crawl.Target{Template: c.Source.URLTemplate, LanguageVariant: c.Source.LanguageVariant}
}

// SweepRange returns the configured default range.
func (c *Config) SweepRange() (crawl.Range, error) {
	return crawl.ParseRange(c.Range.From + ".." + c.Range.To)
}

// ReadyTimeout returns how long a renderer waits for the ready marker.
func (c *Config) ReadyTimeout() time.Duration {
	return time.Duration(c.Source.ReadyTimeoutSeconds) * time.Second
}

// SettleDelay returns the pause after the ready marker appears.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Source.SettleDelaySeconds) * time.Second
}

// HTTPTimeout returns the request timeout of the http renderer.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Renderer.HTTPTimeoutSeconds) * time.Second
}

// LockPath returns the acquisition lock file guarding the raw store.
func (c *Config) LockPath() string {
	if c.Storage.Backend == BackendSQLite {
		return c.Storage.SQLitePath + ".lock"
	}
	return filepath.Clean(c.Paths.RawDir) + ".lock"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
