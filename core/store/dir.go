// Package store persists per-character records.
// Dir keeps one file per id named after the id's uppercase hex key;
// SQLite keeps them in a single table. Both implement core.RecordStore.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gaurav-prasanna/strokepipe/core"
)

// ErrExists is returned when writing an id an immutable store already holds.
var ErrExists = errors.New("record already exists")

// ErrNotFound is returned when reading an id the store does not hold.
var ErrNotFound = errors.New("record not found")

// Mode controls what Write does with an id that is already stored.
type Mode int

const (
	// Immutable stores never replace a record once written.
	Immutable Mode = iota
	// Overwrite stores replace records on every write.
	Overwrite
)

// Dir is a directory-backed record store. Records are written under the
// canonical key; ListIDs also picks up zero-padded or lowercase hex names
// and an upper-case extension, and Read and Exists resolve them afterwards.
type Dir struct {
	root   string
	ext    string
	mode   Mode
	logger *slog.Logger

	mu      sync.Mutex
	aliases map[core.CharacterID]string
}

// NewDir creates a Dir rooted at root, creating the directory if needed.
// ext is the file extension including the dot, e.g. ".xml".
func NewDir(root, ext string, mode Mode, logger *slog.Logger) (*Dir, error) {
	if root == "" {
		return nil, errors.New("store directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dir{root: root, ext: ext, mode: mode, logger: logger, aliases: make(map[core.CharacterID]string)}, nil
}

// Root returns the store directory.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the file path for id.
func (d *Dir) Path(id core.CharacterID) string {
	return filepath.Join(d.root, id.Hex()+d.ext)
}

// resolve returns the file holding id: the listed alias if ListIDs found
// one, else the canonical path.
func (d *Dir) resolve(id core.CharacterID) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if name, ok := d.aliases[id]; ok {
		return filepath.Join(d.root, name)
	}
	return d.Path(id)
}

func (d *Dir) Exists(_ context.Context, id core.CharacterID) (bool, error) {
	path := d.resolve(id)
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

func (d *Dir) Write(_ context.Context, id core.CharacterID, data []byte) error {
	if d.mode == Immutable {
		return d.writeExclusive(id, data)
	}
	return d.writeReplace(id, data)
}

// writeExclusive creates the file only if it is absent.
func (d *Dir) writeExclusive(id core.CharacterID, data []byte) error {
	path := d.Path(id)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", id, ErrExists)
		}
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	return nil
}

// writeReplace writes to a temporary file and renames it over the target.
func (d *Dir) writeReplace(id core.CharacterID, data []byte) error {
	path := d.Path(id)
	tmp, err := os.CreateTemp(d.root, "."+id.Hex()+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

func (d *Dir) Read(_ context.Context, id core.CharacterID) ([]byte, error) {
	path := d.resolve(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}

// ListIDs returns the ids of files whose basename is a hex key, ascending.
// The extension matches case-insensitively and zero padding is allowed.
// When two files name the same id the canonical one wins. Other files with
// the store extension are skipped with a warning.
func (d *Dir) ListIDs(_ context.Context) ([]core.CharacterID, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", d.root, err)
	}

	found := make(map[core.CharacterID]string)
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || !strings.EqualFold(ext, d.ext) {
			continue
		}
		id, err := core.ParseHexID(strings.TrimSuffix(name, ext))
		if err != nil {
			d.logger.Warn("skipping file without a hex key name", "dir", d.root, "file", name)
			continue
		}
		canonical := id.Hex() + d.ext
		if prev, ok := found[id]; ok {
			if name != canonical {
				d.logger.Warn("skipping duplicate record file", "dir", d.root, "file", name, "kept", prev)
				continue
			}
			d.logger.Warn("skipping duplicate record file", "dir", d.root, "file", prev, "kept", name)
		}
		found[id] = name
	}

	ids := make([]core.CharacterID, 0, len(found))
	d.mu.Lock()
	for id, name := range found {
		ids = append(ids, id)
		if name == id.Hex()+d.ext {
			delete(d.aliases, id)
		} else {
			d.aliases[id] = name
		}
	}
	d.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
