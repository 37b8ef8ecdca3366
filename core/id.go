package core

import (
	"fmt"
	"strconv"
	"strings"
)

// CharacterID is a Unicode codepoint identifying one character's record.
type CharacterID uint32

// Hex returns the canonical record key: uppercase hex, no prefix, no padding.
func (id CharacterID) Hex() string {
	return strings.ToUpper(strconv.FormatUint(uint64(id), 16))
}

// Decimal returns the id as used by the remote source.
func (id CharacterID) Decimal() string {
	return strconv.FormatUint(uint64(id), 10)
}

func (id CharacterID) String() string {
	return "U+" + id.Hex()
}

// ParseHexID parses a record key such as "4E00". Case and zero padding
// are not significant.
func ParseHexID(s string) (CharacterID, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid character id %q: %w", s, err)
	}
	return CharacterID(v), nil
}

// ParseCharacterID accepts "U+4E00", "0x4E00", "19968" or a bare hex key
// containing at least one hex letter ("4E0A").
func ParseCharacterID(s string) (CharacterID, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, "U+"):
		return ParseHexID(s[2:])
	case strings.HasPrefix(upper, "0X"):
		return ParseHexID(s[2:])
	}
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return CharacterID(v), nil
	}
	return ParseHexID(s)
}
