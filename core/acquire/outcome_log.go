package acquire

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/strokepipe/core"
)

// OutcomeLog is the durable, append-only record of non-success outcomes.
// Each entry is one timestamped slog text line.
type OutcomeLog struct {
	logger *slog.Logger
	closer io.Closer
}

// NewOutcomeLog writes entries to w, tagging each with runID.
func NewOutcomeLog(w io.Writer, runID string) *OutcomeLog {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(h)
	if runID != "" {
		logger = logger.With("run", runID)
	}
	return &OutcomeLog{logger: logger}
}

// OpenOutcomeLog opens path for appending, creating it if needed.
func OpenOutcomeLog(path, runID string) (*OutcomeLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening outcome log: %w", err)
	}
	l := NewOutcomeLog(f, runID)
	l.closer = f
	return l, nil
}

// Record appends one entry. tag is the message; attrs add context.
func (l *OutcomeLog) Record(id core.CharacterID, tag string, attrs ...any) {
	args := append([]any{"id", id.String(), "dec", id.Decimal()}, attrs...)
	l.logger.Info(tag, args...)
}

// Close closes the underlying file, if OpenOutcomeLog created one.
func (l *OutcomeLog) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
