// Package exec runs the anonymization pipeline table by table.
package exec

import (
	"fmt"
	"time"

	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/logging"
	"github.com/mmrzaf/dbfaker/internal/schema"
)

// Connection is what the executor needs from the database.
type Connection interface {
	FetchAll(table string, columns []string) ([]map[string]any, error)
	Replace(table string, data, identifier map[string]any) (bool, error)
	OnTableUpdateStart(table string) error
	OnTableUpdateFinished(table string) error
	OnTableUpdateFailed(table string) error
}

// Row is one fetched row with its key columns split off into Identifier.
type Row struct {
	Values     map[string]any
	Identifier map[string]any
}

// progressParts is the number of progress reports per phase (every 5%).
const progressParts = 20

type Executor struct {
	logger *logging.Logger
}

func NewExecutor(logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Executor{logger: logger.WithComponent("executor")}
}

// Execute processes tables strictly in order. The first error aborts the
// run; tables already saved stay committed.
func (e *Executor) Execute(tables []*schema.Table, conn Connection) (*domain.RunStats, error) {
	start := time.Now()
	stats := &domain.RunStats{TableStats: make([]domain.TableRunStats, 0, len(tables))}

	for i, table := range tables {
		e.logger.Info("processing table %s (%d of %d)", table.Name(), i+1, len(tables))
		ts, err := e.processTable(table, conn)
		if ts != nil {
			stats.TableStats = append(stats.TableStats, *ts)
			stats.RowsLoaded += ts.RowsLoaded
			stats.RowsWritten += ts.RowsWritten
			stats.RowsSkipped += ts.RowsSkipped
		}
		if err != nil {
			stats.DurationSeconds = time.Since(start).Seconds()
			return stats, fmt.Errorf("table %s: %w", table.Name(), err)
		}
		stats.TablesProcessed++
		e.logger.Infow("table.processed", map[string]any{
			"table":    ts.TableName,
			"rows":     ts.RowsLoaded,
			"written":  ts.RowsWritten,
			"skipped":  ts.RowsSkipped,
			"duration": fmt.Sprintf("%.6fs", ts.DurationSeconds),
		})
	}

	stats.DurationSeconds = time.Since(start).Seconds()
	e.logger.Info("all tables processed in %.6f sec", stats.DurationSeconds)
	return stats, nil
}

func (e *Executor) processTable(table *schema.Table, conn Connection) (*domain.TableRunStats, error) {
	start := time.Now()
	ts := &domain.TableRunStats{TableName: table.Name()}
	defer func() { ts.DurationSeconds = time.Since(start).Seconds() }()

	e.logger.Debug("loading table data")
	rows, err := e.load(table, conn)
	if err != nil {
		return ts, err
	}
	ts.RowsLoaded = int64(len(rows))

	e.logger.Debug("initializing disabled values")
	SeedDisabledValues(table, rows)

	e.logger.Debug("faking table data (%d rows)", len(rows))
	if err := e.transform(table, rows); err != nil {
		return ts, err
	}

	e.logger.Debug("saving faked table data")
	err = e.save(table, rows, conn, ts)
	return ts, err
}

func (e *Executor) load(table *schema.Table, conn Connection) ([]*Row, error) {
	fetched, err := conn.FetchAll(table.Name(), table.ColumnNames(true))
	if err != nil {
		return nil, err
	}
	rows := make([]*Row, 0, len(fetched))
	index := make(map[string]int, len(fetched))
	for _, data := range fetched {
		row, err := SplitRow(table.Key(), data)
		if err != nil {
			return nil, err
		}
		id := identifierString(table.Key(), row.Identifier)
		if at, dup := index[id]; dup {
			e.logger.Warnw("table.duplicate_identifier", map[string]any{"table": table.Name(), "identifier": id})
			rows[at] = row
			continue
		}
		index[id] = len(rows)
		rows = append(rows, row)
	}
	return rows, nil
}

// SplitRow moves the key columns of data into the row identifier. A key
// column that is absent or NULL is a data integrity error.
func SplitRow(key schema.Key, data map[string]any) (*Row, error) {
	row := &Row{
		Values:     make(map[string]any, len(data)),
		Identifier: make(map[string]any, len(key.ColumnNames())),
	}
	for k, v := range data {
		row.Values[k] = v
	}
	for _, c := range key.ColumnNames() {
		v, ok := data[c]
		if !ok || v == nil {
			return nil, fmt.Errorf("%w: missing identifier %s in data row", domain.ErrDataIntegrity, c)
		}
		row.Identifier[c] = v
		delete(row.Values, c)
	}
	return row, nil
}

func identifierString(key schema.Key, identifier map[string]any) string {
	var s string
	for i, c := range key.ColumnNames() {
		if i > 0 {
			s += "__"
		}
		s += fmt.Sprintf("%s:%v", c, identifier[c])
	}
	return s
}

// SeedDisabledValues adds every loaded value of each unique column to the
// column's disabled set.
func SeedDisabledValues(table *schema.Table, rows []*Row) {
	for _, c := range table.UniqueColumns() {
		for _, row := range rows {
			c.Disabled().Add(row.Values[c.Name()])
		}
	}
}

func (e *Executor) transform(table *schema.Table, rows []*Row) error {
	progress := e.progress(table.Name(), "faking", len(rows))
	for i, row := range rows {
		for _, c := range table.Columns() {
			original, ok := row.Values[c.Name()]
			if !ok {
				return fmt.Errorf("%w: data row does not contain column %s", domain.ErrDataIntegrity, c.Name())
			}
			v, err := c.FakeValue(original)
			if err != nil {
				return err
			}
			row.Values[c.Name()] = v
		}
		progress(i + 1)
	}
	return nil
}

func (e *Executor) save(table *schema.Table, rows []*Row, conn Connection, ts *domain.TableRunStats) error {
	if err := conn.OnTableUpdateStart(table.Name()); err != nil {
		return err
	}
	declared := table.ColumnNames(false)
	progress := e.progress(table.Name(), "saving", len(rows))
	for i, row := range rows {
		payload := make(map[string]any, len(declared))
		for _, c := range declared {
			if v, ok := row.Values[c]; ok {
				payload[c] = v
			}
		}
		ok, err := conn.Replace(table.Name(), payload, row.Identifier)
		if err != nil {
			if rbErr := conn.OnTableUpdateFailed(table.Name()); rbErr != nil {
				e.logger.Error("rollback of %s failed: %v", table.Name(), rbErr)
			}
			ts.RowsWritten = 0
			return err
		}
		if ok {
			ts.RowsWritten++
		} else {
			ts.RowsSkipped++
		}
		progress(i + 1)
	}
	return conn.OnTableUpdateFinished(table.Name())
}

// progress returns a reporter logging every 5% of total.
func (e *Executor) progress(table, phase string, total int) func(done int) {
	step := (total + progressParts - 1) / progressParts
	return func(done int) {
		if step == 0 || done%step != 0 {
			return
		}
		e.logger.Debug("%s %s: %d%%", table, phase, done/step*(100/progressParts))
	}
}
