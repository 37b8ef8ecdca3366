// Package crawl plans an acquisition sweep: which character ids to visit,
// in what order, and which page to render for each.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/strokepipe/core"
)

// Range is an inclusive span of character ids.
type Range struct {
	From core.CharacterID
	To   core.CharacterID
}

// CJKUnified covers the CJK Unified Ideographs block.
var CJKUnified = Range{From: 0x4E00, To: 0x9FFF}

// ParseRange accepts "4E00-9FFF", "U+4E00..U+4E10", "19968-19970" or a
// single id. Bounds are parsed with core.ParseCharacterID; a pair of bare
// numbers is read as hex when either bound contains a hex letter.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, errors.New("empty range")
	}

	lo, hi, found := strings.Cut(s, "..")
	if !found {
		lo, hi, found = strings.Cut(s, "-")
	}
	if !found {
		id, err := core.ParseCharacterID(s)
		if err != nil {
			return Range{}, err
		}
		return Range{From: id, To: id}, nil
	}

	if isBareNumber(lo) && isBareNumber(hi) && (hasHexLetter(lo) || hasHexLetter(hi)) {
		lo, hi = "0x"+strings.TrimSpace(lo), "0x"+strings.TrimSpace(hi)
	}
	from, err := core.ParseCharacterID(lo)
	if err != nil {
		return Range{}, fmt.Errorf("range start: %w", err)
	}
	to, err := core.ParseCharacterID(hi)
	if err != nil {
		return Range{}, fmt.Errorf("range end: %w", err)
	}
	r := Range{From: from, To: to}
	return r, r.Validate()
}

// Validate rejects reversed ranges.
func (r Range) Validate() error {
	if r.From > r.To {
		return fmt.Errorf("range start %s is after end %s", r.From, r.To)
	}
	return nil
}

// Len returns the number of ids in the range.
func (r Range) Len() int {
	if r.From > r.To {
		return 0
	}
	return int(r.To-r.From) + 1
}

func (r Range) String() string {
	return r.From.String() + ".." + r.To.String()
}

// Each calls fn for every id in ascending order. It stops early when ctx is
// done or fn returns false, and returns ctx.Err() in the former case.
func (r Range) Each(ctx context.Context, fn func(core.CharacterID) bool) error {
	if r.From > r.To {
		return nil
	}
	for id := r.From; ; id++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(id) {
			return nil
		}
		if id == r.To {
			return nil
		}
	}
}

func isBareNumber(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

func hasHexLetter(s string) bool {
	return strings.ContainsAny(s, "abcdefABCDEF")
}
