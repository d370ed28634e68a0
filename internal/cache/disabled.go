package cache

import (
	"fmt"
	"strings"
	"time"
)

// Text renders a column value the way it would be compared or written as
// text. nil renders as "".
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.DateTime)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// IsBlank reports whether v is nil or only whitespace.
func IsBlank(v any) bool {
	return strings.TrimSpace(Text(v)) == ""
}

// Normalize is the comparison form used by disabled-value sets.
func Normalize(v any) string {
	return strings.ToLower(strings.TrimSpace(Text(v)))
}

// DisabledSet holds values a unique column must not receive.
type DisabledSet struct {
	values map[string]struct{}
}

func NewDisabledSet() *DisabledSet {
	return &DisabledSet{values: make(map[string]struct{})}
}

// Add records v. nil is never recorded.
func (s *DisabledSet) Add(v any) {
	if v == nil {
		return
	}
	s.values[Normalize(v)] = struct{}{}
}

// Contains is safe on a nil set.
func (s *DisabledSet) Contains(v any) bool {
	if s == nil || v == nil {
		return false
	}
	_, ok := s.values[Normalize(v)]
	return ok
}

func (s *DisabledSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

func (s *DisabledSet) Reset() {
	s.values = make(map[string]struct{})
}
