package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Int is an optional integer argument. Models send numbers, floats and numeric strings
// interchangeably, so all three decode.
type Int struct {
	value int64
	set   bool
}

// IntOf returns a set Int.
func IntOf(v int64) Int { return Int{value: v, set: true} }

// IsSet reports whether the argument was present and not null.
func (i Int) IsSet() bool { return i.set }

// Or returns the value, or def when unset.
func (i Int) Or(def int64) int64 {
	if !i.set {
		return def
	}
	return i.value
}

func (i *Int) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*i = Int{}
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		*i = Int{}
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*i = IntOf(n)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%s is not a number", b)
	}
	// Converting an out-of-range float wraps, so saturate instead.
	switch {
	case f >= math.MaxInt64:
		*i = IntOf(math.MaxInt64)
	case f <= math.MinInt64:
		*i = IntOf(math.MinInt64)
	default:
		*i = IntOf(int64(f))
	}
	return nil
}

func (i Int) MarshalJSON() ([]byte, error) {
	if !i.set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(i.value, 10)), nil
}

// clampLimit applies the default to absent or non-positive limits and caps at max.
func clampLimit(limit Int, def, max int) int {
	v := limit.Or(0)
	switch {
	case v <= 0:
		return def
	case v > int64(max):
		return max
	default:
		return int(v)
	}
}

// decodeArgs decodes raw tool arguments into out. Empty input and null mean no arguments.
// Unknown fields are ignored.
func decodeArgs(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
