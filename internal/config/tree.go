package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/spf13/cast"
)

// Tree is a read-only hierarchical mapping addressed by dotted paths.
// Mapping keys keep the order they were declared in, so tables and
// columns are processed in file order. Nested mappings are returned as
// *Tree values; there is no way to mutate a Tree after construction.
type Tree struct {
	keys   []string
	values map[string]any
}

// NewTree builds a Tree from a plain map. Keys are sorted because Go maps
// carry no order; use LoadFile or ParseYAML to keep file order.
func NewTree(m map[string]any) *Tree {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t := &Tree{keys: make([]string, 0, len(keys)), values: make(map[string]any, len(keys))}
	for _, k := range keys {
		t.put(k, fromPlain(m[k]))
	}
	return t
}

func newEmptyTree() *Tree {
	return &Tree{values: make(map[string]any)}
}

func (t *Tree) put(key string, value any) {
	if _, exists := t.values[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

func fromPlain(v any) any {
	switch val := v.(type) {
	case *Tree:
		return val
	case map[string]any:
		return NewTree(val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, vv := range val {
			m[fmt.Sprint(k)] = vv
		}
		return NewTree(m)
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = fromPlain(val[i])
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i := range val {
			out[i] = val[i]
		}
		return out
	default:
		return val
	}
}

// Keys returns the top-level keys in declaration order.
func (t *Tree) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

func (t *Tree) Len() int { return len(t.keys) }

// Get walks a dotted path. A missing segment is a configuration error.
func (t *Tree) Get(path string) (any, error) {
	cur := any(t)
	for _, part := range strings.Split(path, ".") {
		node, ok := cur.(*Tree)
		if !ok {
			return nil, fmt.Errorf("%w: %q not found in config", domain.ErrConfiguration, path)
		}
		v, ok := node.values[part]
		if !ok {
			return nil, fmt.Errorf("%w: %q not found in config", domain.ErrConfiguration, path)
		}
		cur = v
	}
	return copyValue(cur), nil
}

func (t *Tree) Has(path string) bool {
	_, err := t.Get(path)
	return err == nil
}

// Sub returns the mapping at path as a Tree.
func (t *Tree) Sub(path string) (*Tree, error) {
	v, err := t.Get(path)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Tree)
	if !ok {
		return nil, fmt.Errorf("%w: could not make config object from %T at %q", domain.ErrConfiguration, v, path)
	}
	return sub, nil
}

func (t *Tree) String(path string) (string, error) {
	v, err := t.Get(path)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", domain.ErrConfiguration, path, err)
	}
	return s, nil
}

func (t *Tree) Bool(path string) (bool, error) {
	v, err := t.Get(path)
	if err != nil {
		return false, err
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("%w: %q: %v", domain.ErrConfiguration, path, err)
	}
	return b, nil
}

func (t *Tree) Float(path string) (float64, error) {
	v, err := t.Get(path)
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", domain.ErrConfiguration, path, err)
	}
	return f, nil
}

func (t *Tree) Int(path string) (int, error) {
	v, err := t.Get(path)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", domain.ErrConfiguration, path, err)
	}
	return i, nil
}

func (t *Tree) Int64(path string) (int64, error) {
	v, err := t.Get(path)
	if err != nil {
		return 0, err
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", domain.ErrConfiguration, path, err)
	}
	return i, nil
}

// StringSlice accepts a sequence of scalars or a single scalar.
func (t *Tree) StringSlice(path string) ([]string, error) {
	v, err := t.Get(path)
	if err != nil {
		return nil, err
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{val}, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if _, nested := item.(*Tree); nested {
				return nil, fmt.Errorf("%w: %q must be a list of scalars", domain.ErrConfiguration, path)
			}
			s, err := cast.ToStringE(item)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", domain.ErrConfiguration, path, err)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q must be a list, got %T", domain.ErrConfiguration, path, v)
	}
}

// WithDefaults returns a new Tree holding defaults overlaid by t.
// Nested mappings merge recursively.
func (t *Tree) WithDefaults(defaults map[string]any) *Tree {
	return merge(NewTree(defaults), t)
}

func merge(base, over *Tree) *Tree {
	out := newEmptyTree()
	for _, k := range over.keys {
		ov := over.values[k]
		if bv, ok := base.values[k]; ok {
			bt, bIsTree := bv.(*Tree)
			ot, oIsTree := ov.(*Tree)
			if bIsTree && oIsTree {
				out.put(k, merge(bt, ot))
				continue
			}
		}
		out.put(k, ov)
	}
	for _, k := range base.keys {
		if _, ok := over.values[k]; !ok {
			out.put(k, base.values[k])
		}
	}
	return out
}

// Map returns a deep copy as plain Go values.
func (t *Tree) Map() map[string]any {
	out := make(map[string]any, len(t.keys))
	for _, k := range t.keys {
		out[k] = toPlain(t.values[k])
	}
	return out
}

func toPlain(v any) any {
	switch val := v.(type) {
	case *Tree:
		return val.Map()
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = toPlain(val[i])
		}
		return out
	default:
		return val
	}
}

func copyValue(v any) any {
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		copy(out, list)
		return out
	}
	return v
}

// Set always fails.
func (t *Tree) Set(path string, value any) error {
	return fmt.Errorf("%w: write value %v to config directive %q is not possible", domain.ErrReadOnly, value, path)
}
