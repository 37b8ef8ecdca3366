package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidNumber is returned for coordinate text that is not a finite
// decimal number.
var ErrInvalidNumber = errors.New("invalid number")

// Number is a coordinate value. Integral values stay integers through
// parsing and serialization; everything else is a float64.
type Number struct {
	i     int64
	f     float64
	isInt bool
}

// Int returns an integral Number.
func Int(v int64) Number {
	return Number{i: v, f: float64(v), isInt: true}
}

// Float returns a Number for v, demoted to an integer when v has no
// fractional part.
func Float(v float64) Number {
	if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
		return Int(int64(v))
	}
	return Number{f: v}
}

// ParseNumber parses decimal text such as "10", "5.5", "1e3" or " 7 ".
func ParseNumber(s string) (Number, error) {
	text := strings.TrimSpace(s)
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return Float(f), nil
}

// IsInt reports whether n holds an integral value, including integral
// values too large for int64.
func (n Number) IsInt() bool { return n.isInt || n.f == math.Trunc(n.f) }

// Float64 returns n as a float64.
func (n Number) Float64() float64 { return n.f }

func (n Number) String() string {
	return string(n.appendText(nil))
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.IsInt() {
		return json.Marshal(n.f)
	}
	return n.appendText(nil), nil
}

// appendText writes integral values as plain integer literals, never in
// exponent form.
func (n Number) appendText(b []byte) []byte {
	switch {
	case n.isInt:
		return strconv.AppendInt(b, n.i, 10)
	case n.IsInt():
		return strconv.AppendFloat(b, n.f, 'f', -1, 64)
	default:
		return strconv.AppendFloat(b, n.f, 'g', -1, 64)
	}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var raw json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseNumber(raw.String())
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
