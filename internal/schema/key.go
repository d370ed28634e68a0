package schema

import (
	"fmt"
	"strings"

	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/spf13/cast"
)

// Key lists the columns identifying a row for write-back.
type Key interface {
	ColumnNames() []string
}

type SingleColumnKey struct {
	name string
}

func (k SingleColumnKey) ColumnNames() []string { return []string{k.name} }

type MultiColumnKey struct {
	names []string
}

func (k MultiColumnKey) ColumnNames() []string { return append([]string(nil), k.names...) }

func keyErr(format string, a ...any) error {
	return fmt.Errorf("%w: %w: %s", domain.ErrConfiguration, domain.ErrInvalidArgument, fmt.Sprintf(format, a...))
}

// NewKey returns a single-column key for one name and a multi-column key
// for more.
func NewKey(names ...string) (Key, error) {
	switch len(names) {
	case 0:
		return nil, keyErr("key column names cannot be empty")
	case 1:
		return newSingleColumnKey(names[0])
	default:
		return newMultiColumnKey(names)
	}
}

func newSingleColumnKey(name string) (Key, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, keyErr("key column name cannot be empty")
	}
	return SingleColumnKey{name: name}, nil
}

// Blank names are dropped.
func newMultiColumnKey(names []string) (Key, error) {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		return nil, keyErr("key column names cannot be empty")
	}
	return MultiColumnKey{names: kept}, nil
}

// KeyFromConfig accepts a column name or a list of column names. A list
// always yields a multi-column key, even with one element.
func KeyFromConfig(v any) (Key, error) {
	switch val := v.(type) {
	case string:
		return newSingleColumnKey(val)
	case []string:
		return newMultiColumnKey(val)
	case []any:
		names := make([]string, 0, len(val))
		for _, item := range val {
			s, err := cast.ToStringE(item)
			if err != nil {
				return nil, keyErr("key column names must be strings, got %T", item)
			}
			names = append(names, s)
		}
		return newMultiColumnKey(names)
	default:
		return nil, keyErr("key must be a string or a list of strings, %T given", v)
	}
}
