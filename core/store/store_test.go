package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gaurav-prasanna/strokepipe/core"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T, mode Mode) map[string]core.RecordStore {
	t.Helper()
	ctx := context.Background()

	dir, err := NewDir(filepath.Join(t.TempDir(), "data"), ".xml", mode, nil)
	require.NoError(t, err)

	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "records.db"), mode)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]core.RecordStore{"dir": dir, "sqlite": db}
}

func TestImmutableStoresNeverReplace(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t, Immutable) {
		t.Run(name, func(t *testing.T) {
			ok, err := s.Exists(ctx, 0x4E00)
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Write(ctx, 0x4E00, []byte("<Stroke/>")))

			ok, err = s.Exists(ctx, 0x4E00)
			require.NoError(t, err)
			require.True(t, ok)

			err = s.Write(ctx, 0x4E00, []byte("changed"))
			require.ErrorIs(t, err, ErrExists)

			data, err := s.Read(ctx, 0x4E00)
			require.NoError(t, err)
			require.Equal(t, "<Stroke/>", string(data))
		})
	}
}

func TestOverwriteStoresReplace(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t, Overwrite) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write(ctx, 0x4E01, []byte("[]")))
			require.NoError(t, s.Write(ctx, 0x4E01, []byte(`[{"outline":[],"track":[]}]`)))

			data, err := s.Read(ctx, 0x4E01)
			require.NoError(t, err)
			require.Equal(t, `[{"outline":[],"track":[]}]`, string(data))
		})
	}
}

func TestReadMissing(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t, Immutable) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Read(ctx, 0x9FFF)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestListIDsAscending(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t, Immutable) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []core.CharacterID{0x9FA6, 0x4E00, 0x669C} {
				require.NoError(t, s.Write(ctx, id, []byte("x")))
			}
			ids, err := s.ListIDs(ctx)
			require.NoError(t, err)
			require.Equal(t, []core.CharacterID{0x4E00, 0x669C, 0x9FA6}, ids)
		})
	}
}

func TestDirFileLayout(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := NewDir(root, ".json", Overwrite, nil)
	require.NoError(t, err)

	require.NoError(t, d.Write(ctx, 19968, []byte("[]")))
	_, err = os.Stat(filepath.Join(root, "4E00.json"))
	require.NoError(t, err)

	// Files without a hex key name are ignored by ListIDs.
	require.NoError(t, os.WriteFile(filepath.Join(root, "U+4E02.json"), []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "ABCD.json"), 0o755))

	ids, err := d.ListIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []core.CharacterID{0x4E00}, ids)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		require.NotEqual(t, ".tmp", filepath.Ext(e.Name()), "temp file left behind")
	}
}

func TestDirListsPaddedAndLowercaseNames(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := NewDir(root, ".xml", Immutable, nil)
	require.NoError(t, err)

	files := map[string]string{
		"04E00.xml": "padded",
		"4e01.xml":  "lower",
		"4E02.XML":  "upper ext",
		"4E03.xml":  "canonical",
		"04E03.xml": "shadowed",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0o644))
	}

	ids, err := d.ListIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []core.CharacterID{0x4E00, 0x4E01, 0x4E02, 0x4E03}, ids)

	for id, want := range map[core.CharacterID]string{
		0x4E00: "padded",
		0x4E01: "lower",
		0x4E02: "upper ext",
		0x4E03: "canonical",
	} {
		data, err := d.Read(ctx, id)
		require.NoError(t, err)
		require.Equal(t, want, string(data))

		ok, err := d.Exists(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".acquire.lock")

	first, err := AcquireLock(path)
	require.NoError(t, err)

	_, err = AcquireLock(path)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Release())

	again, err := AcquireLock(path)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}
