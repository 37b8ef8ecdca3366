package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/gaurav-prasanna/strokepipe/config"
	"github.com/gaurav-prasanna/strokepipe/core"
	"github.com/gaurav-prasanna/strokepipe/core/store"
)

const (
	rawExt        = ".xml"
	normalizedExt = ".json"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openRawStore opens the configured raw record store. The closer must be
// closed when the command finishes.
func openRawStore(ctx context.Context, c *commandContext) (core.RecordStore, io.Closer, error) {
	switch c.cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err := store.OpenSQLite(ctx, c.cfg.Storage.SQLitePath, store.Immutable)
		if err != nil {
			return nil, nil, fmt.Errorf("opening raw store: %w", err)
		}
		return s, s, nil
	default:
		d, err := store.NewDir(c.cfg.Paths.RawDir, rawExt, store.Immutable, c.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("opening raw store: %w", err)
		}
		return d, nopCloser{}, nil
	}
}

// openNormalizedStore opens the normalized JSON directory for overwriting.
func openNormalizedStore(c *commandContext) (*store.Dir, error) {
	d, err := store.NewDir(c.cfg.Paths.NormalizedDir, normalizedExt, store.Overwrite, c.logger)
	if err != nil {
		return nil, fmt.Errorf("opening normalized store: %w", err)
	}
	return d, nil
}
