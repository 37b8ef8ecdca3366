// Package normalize converts raw stroke XML records into the normalized
// JSON stroke document, which is the canonical format for downstream
// renderers.
package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/gaurav-prasanna/strokepipe/core"
)

// FileResult is the outcome of normalizing one record.
type FileResult struct {
	ID      core.CharacterID
	Strokes int
	Err     error
}

// Report collects per-record results of one run.
type Report struct {
	Results []FileResult
}

// Failed returns the results that carry an error.
func (r Report) Failed() []FileResult {
	var out []FileResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Normalizer maps every record of a source store to a normalized record in
// a target store, overwriting whatever the target already holds.
type Normalizer struct {
	parser *Parser
	out    io.Writer
	logger *slog.Logger
}

// New creates a Normalizer that prints progress to out (nil discards it).
func New(out io.Writer, logger *slog.Logger) *Normalizer {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{parser: NewParser(), out: out, logger: logger}
}

// Convert parses one raw record and returns the indented JSON document.
func (n *Normalizer) Convert(raw []byte) ([]byte, []core.Stroke, error) {
	strokes, err := n.parser.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	data, err := json.MarshalIndent(strokes, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling strokes: %w", err)
	}
	return data, strokes, nil
}

// Run normalizes every id listed by src. A failing record is reported and
// skipped; only listing errors and cancellation end the run early.
func (n *Normalizer) Run(ctx context.Context, src, dst core.RecordStore) (Report, error) {
	var report Report

	ids, err := src.ListIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("listing source records: %w", err)
	}
	fmt.Fprintf(n.out, "Found %d records to normalize\n", len(ids))

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := n.one(ctx, src, dst, id)
		report.Results = append(report.Results, res)

		if res.Err != nil {
			fmt.Fprintf(n.out, "[%d/%d] ✗ %s: %v\n", i+1, len(ids), id, res.Err)
			n.logger.Warn("normalize failed", "id", id.String(), "err", res.Err)
			continue
		}
		fmt.Fprintf(n.out, "[%d/%d] ✓ %s (%d strokes)\n", i+1, len(ids), id, res.Strokes)
	}
	return report, nil
}

func (n *Normalizer) one(ctx context.Context, src, dst core.RecordStore, id core.CharacterID) FileResult {
	raw, err := src.Read(ctx, id)
	if err != nil {
		return FileResult{ID: id, Err: fmt.Errorf("read: %w", err)}
	}
	data, strokes, err := n.Convert(raw)
	if err != nil {
		return FileResult{ID: id, Err: fmt.Errorf("parse: %w", err)}
	}
	if err := dst.Write(ctx, id, data); err != nil {
		return FileResult{ID: id, Err: fmt.Errorf("write: %w", err)}
	}
	return FileResult{ID: id, Strokes: len(strokes)}
}
