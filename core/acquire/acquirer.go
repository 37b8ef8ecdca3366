// Package acquire sweeps a range of character ids, renders the dictionary
// page for each, and stores the extracted raw record.
//
// The sweep is strictly sequential: one render in flight, ids in ascending
// order. An id already in the store is skipped without rendering, which is
// what makes an interrupted sweep safe to re-run. Per-id failures are
// recorded and never end the sweep.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gaurav-prasanna/strokepipe/core"
	"github.com/gaurav-prasanna/strokepipe/core/extract"
	"github.com/gaurav-prasanna/strokepipe/core/store"
	"github.com/gaurav-prasanna/strokepipe/crawl"
)

// IOFailureLabel marks results whose record could not be stored.
const IOFailureLabel = "io failure"

// Config wires an Acquirer.
type Config struct {
	Renderer  core.PageRenderer
	Extractor *extract.Extractor
	Store     core.RecordStore
	Outcomes  *OutcomeLog
	Target    crawl.Target

	ReadySelector string
	ReadyTimeout  time.Duration
	SettleDelay   time.Duration
	// SnapshotDir receives page_source_<HEX>.html for pages whose record
	// could not be extracted.
	SnapshotDir string

	// Out receives human-readable progress; nil discards it.
	Out    io.Writer
	Logger *slog.Logger
}

// Result is the outcome of one id. Err is set only for storage failures,
// in which case Outcome is meaningless.
type Result struct {
	ID      core.CharacterID
	Outcome core.Outcome
	Verdict extract.Verdict
	Err     error
}

// Label names the result for progress output and summaries.
func (r Result) Label() string {
	if r.Err != nil {
		return IOFailureLabel
	}
	return r.Outcome.String()
}

// Report collects per-id results of one sweep.
type Report struct {
	Results []Result
}

// Counts tallies results by label.
func (r Report) Counts() map[string]int {
	counts := make(map[string]int)
	for _, res := range r.Results {
		counts[res.Label()]++
	}
	return counts
}

// Acquirer runs acquisition sweeps.
type Acquirer struct {
	cfg Config
}

// New validates cfg and creates an Acquirer.
func New(cfg Config) (*Acquirer, error) {
	if cfg.Renderer == nil || cfg.Store == nil || cfg.Outcomes == nil {
		return nil, errors.New("acquirer requires renderer, store, and outcome log")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = extract.New("")
	}
	if err := cfg.Target.Validate(); err != nil {
		return nil, err
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Acquirer{cfg: cfg}, nil
}

// Run processes every id of r in ascending order. On cancellation it
// returns the results gathered so far together with ctx.Err().
func (a *Acquirer) Run(ctx context.Context, r crawl.Range) (Report, error) {
	var report Report
	if err := r.Validate(); err != nil {
		return report, err
	}

	total := r.Len()
	fmt.Fprintf(a.cfg.Out, "Acquiring %d characters (%s)\n", total, r)

	i := 0
	var runErr error
	err := r.Each(ctx, func(id core.CharacterID) bool {
		i++
		res, err := a.Process(ctx, id)
		if err != nil {
			runErr = err
			return false
		}
		report.Results = append(report.Results, res)
		a.progress(i, total, res)
		return true
	})
	if runErr != nil {
		return report, runErr
	}
	return report, err
}

// Process acquires a single id. The returned error is non-nil only when ctx
// is cancelled; every other failure is folded into the Result.
func (a *Acquirer) Process(ctx context.Context, id core.CharacterID) (Result, error) {
	logger := a.cfg.Logger.With("id", id.String())

	exists, err := a.cfg.Store.Exists(ctx, id)
	if err != nil {
		a.cfg.Outcomes.Record(id, IOFailureLabel, "err", err)
		return Result{ID: id, Err: err}, nil
	}
	if exists {
		return Result{ID: id, Outcome: core.OutcomeAlreadyPresent}, nil
	}

	url := a.cfg.Target.URL(id)
	markup, err := a.cfg.Renderer.Render(ctx, core.RenderRequest{
		URL:           url,
		ReadySelector: a.cfg.ReadySelector,
		ReadyTimeout:  a.cfg.ReadyTimeout,
		SettleDelay:   a.cfg.SettleDelay,
		EarlySentinel: a.cfg.Extractor.Sentinel(),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		// Provider failures are reported exactly like a not-found page.
		logger.Debug("render failed, recording as missing", "url", url, "err", err)
		a.cfg.Outcomes.Record(id, extract.VerdictProviderError.Tag(), "url", url, "verdict", extract.VerdictProviderError.String())
		return Result{ID: id, Outcome: core.OutcomeMissing, Verdict: extract.VerdictProviderError}, nil
	}

	res := a.cfg.Extractor.Classify(markup, id)
	if res.Verdict != extract.VerdictExtracted {
		if res.Verdict.Snapshot() {
			a.snapshot(logger, id, markup)
		}
		a.cfg.Outcomes.Record(id, res.Verdict.Tag(), "url", url, "verdict", res.Verdict.String())
		return Result{ID: id, Outcome: res.Verdict.Outcome(), Verdict: res.Verdict}, nil
	}

	if err := a.cfg.Store.Write(ctx, id, res.Payload); err != nil {
		if errors.Is(err, store.ErrExists) {
			return Result{ID: id, Outcome: core.OutcomeAlreadyPresent, Verdict: res.Verdict}, nil
		}
		a.cfg.Outcomes.Record(id, IOFailureLabel, "err", err)
		return Result{ID: id, Verdict: res.Verdict, Err: err}, nil
	}
	logger.Debug("record saved", "bytes", len(res.Payload))
	return Result{ID: id, Outcome: core.OutcomeSaved, Verdict: res.Verdict}, nil
}

// SnapshotPath returns where the diagnostic page for id is written.
func (a *Acquirer) SnapshotPath(id core.CharacterID) string {
	return filepath.Join(a.cfg.SnapshotDir, "page_source_"+id.Hex()+".html")
}

func (a *Acquirer) snapshot(logger *slog.Logger, id core.CharacterID, markup string) {
	path := a.SnapshotPath(id)
	if a.cfg.SnapshotDir != "" {
		if err := os.MkdirAll(a.cfg.SnapshotDir, 0o755); err != nil {
			logger.Warn("failed to create snapshot directory", "dir", a.cfg.SnapshotDir, "err", err)
			return
		}
	}
	if err := os.WriteFile(path, []byte(markup), 0o644); err != nil {
		logger.Warn("failed to write page snapshot", "path", path, "err", err)
		return
	}
	fmt.Fprintf(a.cfg.Out, "  saved page source to %s\n", path)
}

func (a *Acquirer) progress(i, total int, res Result) {
	mark := "✗"
	switch {
	case res.Err != nil:
		fmt.Fprintf(a.cfg.Out, "[%d/%d] %s %s %s: %v\n", i, total, mark, res.ID, res.Label(), res.Err)
		return
	case res.Outcome == core.OutcomeSaved:
		mark = "✓"
	case res.Outcome == core.OutcomeAlreadyPresent:
		mark = "-"
	}
	fmt.Fprintf(a.cfg.Out, "[%d/%d] %s %s %s\n", i, total, mark, res.ID, res.Label())
}
