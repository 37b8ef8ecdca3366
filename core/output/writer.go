// Package output writes rendered artifacts such as stroke sheets to disk.
// Files are named after the character's canonical hex key (4E00.pdf).
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/strokepipe/core"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// WriteCharacter writes data to <OutputDir>/<HEX><ext>, replacing any
// earlier artifact.
func (w *Writer) WriteCharacter(id core.CharacterID, data []byte, ext string) (string, error) {
	return WriteFile(filepath.Join(w.OutputDir, id.Hex()+ext), data)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}
