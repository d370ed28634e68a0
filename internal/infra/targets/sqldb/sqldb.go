// Package sqldb is the database/sql driver shared by every relational
// backend. Backends differ only in their Dialect.
package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mmrzaf/dbfaker/internal/domain"
)

// Dialect captures identifier quoting and bind parameter syntax.
type Dialect struct {
	Name string
	// QuoteIdent quotes a single identifier part.
	QuoteIdent func(string) string
	// Placeholder returns the bind parameter for the 1-based position n.
	Placeholder func(n int) string
	// Schema, when set, qualifies table names that carry no schema prefix.
	Schema string
	// RowSavepoints wraps every UPDATE inside a table transaction in a
	// savepoint. Needed where one failed statement aborts the whole
	// transaction (PostgreSQL), so later rows can still commit.
	RowSavepoints bool
}

const rowSavepoint = "dbfaker_row"

// QuestionMark is the placeholder style of MySQL and SQLite.
func QuestionMark(int) string { return "?" }

// QuoteWith returns a quoting func for the given quote character. Stray
// quotes and spaces around the name are stripped first, and embedded
// quote characters are doubled.
func QuoteWith(q string) func(string) string {
	return func(name string) string {
		name = strings.Trim(name, " "+q)
		return q + strings.ReplaceAll(name, q, q+q) + q
	}
}

// Table quotes a possibly schema-qualified table name.
func (d Dialect) Table(name string) string {
	parts := strings.Split(strings.TrimSpace(name), ".")
	if len(parts) == 1 && d.Schema != "" {
		parts = []string{d.Schema, parts[0]}
	}
	for i, p := range parts {
		parts[i] = d.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// Driver reads and rewrites rows of one database. It is not safe for
// concurrent use: a single table transaction is open at a time.
type Driver struct {
	dialect Dialect
	db      *sql.DB
	tx      *sql.Tx
}

func New(db *sql.DB, dialect Dialect) *Driver {
	return &Driver{dialect: dialect, db: db}
}

// Open connects with database/sql and verifies the connection.
func Open(driverName, dsn string, dialect Dialect) (*Driver, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return New(db, dialect), nil
}

func (d *Driver) Dialect() Dialect { return d.dialect }

func (d *Driver) DB() *sql.DB { return d.db }

// FetchAll returns every row of table, projected to columns.
func (d *Driver) FetchAll(table string, columns []string) ([]map[string]any, error) {
	if d.db == nil {
		return nil, errors.New("database driver is not connected")
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: columns list cannot be empty", domain.ErrInvalidArgument)
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.dialect.QuoteIdent(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), d.dialect.Table(table))

	var (
		rows *sql.Rows
		err  error
	)
	if d.tx != nil {
		rows, err = d.tx.Query(query)
	} else {
		rows, err = d.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", table, err)
		}
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	return out, nil
}

// Replace rewrites the columns in data of the row matching identifier.
// Statement failures wrap domain.ErrUpdate.
func (d *Driver) Replace(table string, data, identifier map[string]any) (bool, error) {
	if d.db == nil {
		return false, errors.New("database driver is not connected")
	}
	if len(data) == 0 {
		return true, nil
	}
	if len(identifier) == 0 {
		return false, fmt.Errorf("%w: %s: empty row identifier", domain.ErrUpdate, table)
	}

	args := make([]any, 0, len(data)+len(identifier))
	sets := make([]string, 0, len(data))
	for _, c := range sortedKeys(data) {
		args = append(args, data[c])
		sets = append(sets, fmt.Sprintf("%s = %s", d.dialect.QuoteIdent(c), d.dialect.Placeholder(len(args))))
	}
	conds := make([]string, 0, len(identifier))
	for _, c := range sortedKeys(identifier) {
		args = append(args, identifier[c])
		conds = append(conds, fmt.Sprintf("%s = %s", d.dialect.QuoteIdent(c), d.dialect.Placeholder(len(args))))
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		d.dialect.Table(table), strings.Join(sets, ", "), strings.Join(conds, " AND "))

	if d.tx == nil {
		if _, err := d.db.Exec(query, args...); err != nil {
			return false, fmt.Errorf("%w: %s: %w", domain.ErrUpdate, table, err)
		}
		return true, nil
	}

	savepoint := d.dialect.RowSavepoints
	if savepoint {
		if _, err := d.tx.Exec("SAVEPOINT " + rowSavepoint); err != nil {
			return false, fmt.Errorf("savepoint %s: %w", table, err)
		}
	}
	if _, err := d.tx.Exec(query, args...); err != nil {
		if savepoint {
			if _, rbErr := d.tx.Exec("ROLLBACK TO SAVEPOINT " + rowSavepoint); rbErr != nil {
				return false, fmt.Errorf("%w: %s: %w (rollback to savepoint: %v)", domain.ErrUpdate, table, err, rbErr)
			}
		}
		return false, fmt.Errorf("%w: %s: %w", domain.ErrUpdate, table, err)
	}
	if savepoint {
		if _, err := d.tx.Exec("RELEASE SAVEPOINT " + rowSavepoint); err != nil {
			return false, fmt.Errorf("release savepoint %s: %w", table, err)
		}
	}
	return true, nil
}

func (d *Driver) OnTableUpdateStart(table string) error {
	if d.tx != nil {
		return fmt.Errorf("begin %s: a table transaction is already open", table)
	}
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin %s: %w", table, err)
	}
	d.tx = tx
	return nil
}

func (d *Driver) OnTableUpdateFinished(table string) error {
	if d.tx == nil {
		return fmt.Errorf("commit %s: no open transaction", table)
	}
	tx := d.tx
	d.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

func (d *Driver) OnTableUpdateFailed(table string) error {
	if d.tx == nil {
		return nil
	}
	tx := d.tx
	d.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback %s: %w", table, err)
	}
	return nil
}

func (d *Driver) Close() error {
	if d.tx != nil {
		_ = d.tx.Rollback()
		d.tx = nil
	}
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
