package schema

import (
	"fmt"

	"github.com/mmrzaf/dbfaker/internal/column"
	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/validation"
)

// Table is the static description of one table to anonymize: its key and
// its column rules in declaration order.
type Table struct {
	name    string
	key     Key
	columns []column.Rule
	index   map[string]int
}

func NewTable(name string, key Key) (*Table, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: table %s: key is required", domain.ErrConfiguration, name)
	}
	if !validation.IsValidTableName(name) {
		return nil, fmt.Errorf("%w: invalid table identifier: %q", domain.ErrConfiguration, name)
	}
	if err := validation.ValidateTableLayout(name, key.ColumnNames(), nil); err != nil {
		return nil, err
	}
	return &Table{name: name, key: key, index: make(map[string]int)}, nil
}

// AddColumn appends a rule. Names must be unique and must not overlap the
// key.
func (t *Table) AddColumn(rule column.Rule) error {
	names := append(t.ColumnNames(false), rule.Name())
	if err := validation.ValidateTableLayout(t.name, t.key.ColumnNames(), names); err != nil {
		return err
	}
	t.index[rule.Name()] = len(t.columns)
	t.columns = append(t.columns, rule)
	return nil
}

func (t *Table) Name() string { return t.name }
func (t *Table) Key() Key     { return t.key }

func (t *Table) Columns() []column.Rule {
	return append([]column.Rule(nil), t.columns...)
}

func (t *Table) Column(name string) (column.Rule, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// ColumnNames returns the key columns (when includeKey is set) followed by
// the rule columns, in declaration order.
func (t *Table) ColumnNames(includeKey bool) []string {
	out := make([]string, 0, len(t.columns)+len(t.key.ColumnNames()))
	if includeKey {
		out = append(out, t.key.ColumnNames()...)
	}
	for _, c := range t.columns {
		out = append(out, c.Name())
	}
	return out
}

func (t *Table) UniqueColumns() []column.Rule {
	var out []column.Rule
	for _, c := range t.columns {
		if c.Options().Unique {
			out = append(out, c)
		}
	}
	return out
}
