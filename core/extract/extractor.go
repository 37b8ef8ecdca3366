// Package extract classifies rendered dictionary pages and pulls the embedded
// stroke record out of them.
//
// The record is a script assignment of the form xml[<id>]="...";
// the payload is the text between the first key and the first terminator
// after it. A payload that itself contains an unescaped terminator is cut
// short; the source never emits one in practice.
package extract

import (
	"strings"

	"github.com/gaurav-prasanna/strokepipe/core"
)

// DefaultSentinel is the marker the source prints for unknown characters.
const DefaultSentinel = "ID Miss!"

const recordTerminator = `";`

// Verdict is the internal classification of one attempt. Several verdicts
// collapse to the same external Outcome.
type Verdict int

const (
	VerdictExtracted Verdict = iota
	VerdictNotFound
	VerdictNoData
	VerdictUnterminated
	VerdictProviderError
)

func (v Verdict) String() string {
	switch v {
	case VerdictExtracted:
		return "extracted"
	case VerdictNotFound:
		return "not-found"
	case VerdictNoData:
		return "no-data"
	case VerdictUnterminated:
		return "unterminated"
	case VerdictProviderError:
		return "provider-error"
	default:
		return "unknown"
	}
}

// Outcome maps the verdict onto the externally visible outcome. Provider
// errors are reported as Missing, the same as a genuine not-found page.
func (v Verdict) Outcome() core.Outcome {
	switch v {
	case VerdictExtracted:
		return core.OutcomeSaved
	case VerdictUnterminated:
		return core.OutcomeExtractionFailure
	default:
		return core.OutcomeMissing
	}
}

// Tag is the human-readable label written to the outcome log.
func (v Verdict) Tag() string {
	switch v {
	case VerdictNotFound, VerdictProviderError:
		return DefaultSentinel
	case VerdictNoData:
		return "no record data"
	case VerdictUnterminated:
		return "unterminated record"
	default:
		return v.String()
	}
}

// Snapshot reports whether the page should be kept for manual inspection.
func (v Verdict) Snapshot() bool {
	return v == VerdictNoData || v == VerdictUnterminated
}

// Result is the classification of one page.
type Result struct {
	Verdict Verdict
	Payload []byte
}

// Extractor classifies rendered markup.
type Extractor struct {
	sentinel string
	unescape *strings.Replacer
}

// New creates an Extractor. An empty sentinel selects DefaultSentinel.
func New(sentinel string) *Extractor {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	return &Extractor{
		sentinel: sentinel,
		unescape: strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\"`, `"`),
	}
}

// Sentinel returns the not-found marker this extractor looks for.
func (e *Extractor) Sentinel() string {
	return e.sentinel
}

// Classify inspects markup for the record of id.
func (e *Extractor) Classify(markup string, id core.CharacterID) Result {
	if strings.Contains(markup, e.sentinel) {
		return Result{Verdict: VerdictNotFound}
	}

	key := RecordKey(id)
	start := strings.Index(markup, key)
	if start == -1 {
		return Result{Verdict: VerdictNoData}
	}
	start += len(key)

	end := strings.Index(markup[start:], recordTerminator)
	if end == -1 {
		return Result{Verdict: VerdictUnterminated}
	}

	payload := e.unescape.Replace(markup[start : start+end])
	return Result{Verdict: VerdictExtracted, Payload: []byte(payload)}
}

// RecordKey returns the assignment prefix for id, e.g. xml[19968]=".
func RecordKey(id core.CharacterID) string {
	return `xml[` + id.Decimal() + `]="`
}
