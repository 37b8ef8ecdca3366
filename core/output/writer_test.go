package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteCharacterUsesCanonicalName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "preview")
	w, err := New(dir)
	require.NoError(t, err)

	path, err := w.WriteCharacter(0x4E00, []byte("first"), ".pdf")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "4E00.pdf"), path)

	// Artifacts are derived data and may be replaced.
	_, err = w.WriteCharacter(0x4E00, []byte("second"), ".pdf")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "sheet.pdf")
	got, err := WriteFile(path, []byte("x"))
	require.NoError(t, err)
	require.Equal(t, path, got)
	require.FileExists(t, path)
}
