// Package core defines the pipeline types and interfaces for strokepipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"
	"time"
)

// Outcome is the result of one acquisition attempt.
type Outcome int

const (
	OutcomeSaved Outcome = iota
	OutcomeAlreadyPresent
	OutcomeMissing
	OutcomeExtractionFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeAlreadyPresent:
		return "already-present"
	case OutcomeMissing:
		return "missing"
	case OutcomeExtractionFailure:
		return "extraction-failure"
	default:
		return "unknown"
	}
}

// Outcomes lists every outcome in reporting order.
var Outcomes = []Outcome{
	OutcomeSaved,
	OutcomeAlreadyPresent,
	OutcomeMissing,
	OutcomeExtractionFailure,
}

// RenderRequest describes one page render.
type RenderRequest struct {
	URL string
	// ReadySelector is a CSS selector that must be present before the
	// markup is read.
	ReadySelector string
	ReadyTimeout  time.Duration
	// SettleDelay is waited after the ready marker appears so deferred
	// scripts can finish.
	SettleDelay time.Duration
	// EarlySentinel short-circuits the ready wait when the initial markup
	// already contains it.
	EarlySentinel string
}

// PageRenderer returns the fully rendered markup of a page. Any session it
// opens is released before Render returns.
type PageRenderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
}

// RecordStore maps character ids to persisted records.
type RecordStore interface {
	Exists(ctx context.Context, id CharacterID) (bool, error)
	Write(ctx context.Context, id CharacterID, data []byte) error
	Read(ctx context.Context, id CharacterID) ([]byte, error)
	// ListIDs returns every stored id in ascending order.
	ListIDs(ctx context.Context) ([]CharacterID, error)
}
