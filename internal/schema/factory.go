package schema

import (
	"fmt"

	"github.com/mmrzaf/dbfaker/internal/column"
	"github.com/mmrzaf/dbfaker/internal/config"
	"github.com/mmrzaf/dbfaker/internal/domain"
)

// NewTableFromConfig builds a table from its config section:
//
//	key: id            # or [tenant_id, id]
//	columns:
//	  email: {type: email, unique: true}
//	  name: name|string
func NewTableFromConfig(name string, cfg *config.Tree, env *column.Env) (*Table, error) {
	rawKey, err := cfg.Get("key")
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	key, err := KeyFromConfig(rawKey)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	table, err := NewTable(name, key)
	if err != nil {
		return nil, err
	}

	columns, err := cfg.Sub("columns")
	if err != nil {
		return nil, fmt.Errorf("%w: wrong configured columns for table %s", domain.ErrConfiguration, name)
	}
	for _, colName := range columns.Keys() {
		raw, _ := columns.Get(colName)
		rule, err := column.New(colName, raw, env)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		if err := table.AddColumn(rule); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// BuildTables builds every table under tables, in declaration order.
func BuildTables(tables *config.Tree, env *column.Env) ([]*Table, error) {
	out := make([]*Table, 0, tables.Len())
	for _, name := range tables.Keys() {
		cfg, err := tables.Sub(name)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		t, err := NewTableFromConfig(name, cfg, env)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
