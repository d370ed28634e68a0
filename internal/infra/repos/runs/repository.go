package runs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmrzaf/dbfaker/internal/domain"
)

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

// Repository stores the history of anonymization runs.
type Repository interface {
	Init() error
	Create(run *domain.Run) error
	Update(run *domain.Run) error
	Get(id string) (*domain.Run, error)
	List(limit int, status string) ([]*domain.Run, error)
	Close() error
}

// Open picks the backend from the location: a postgres:// URL selects
// PostgreSQL, anything else is a SQLite file path.
func Open(location string) Repository {
	l := strings.ToLower(strings.TrimSpace(location))
	if strings.HasPrefix(l, "postgres://") || strings.HasPrefix(l, "postgresql://") {
		return NewPostgresRepository(location)
	}
	return NewSQLiteRepository(location)
}

const runColumns = `id, config_path, config_hash, driver, target, seed, status, started_at, completed_at, stats, error`

// store holds the SQL shared by both backends. Queries are written with
// '?' and rewritten by bind for the backend.
type store struct {
	db   *sql.DB
	bind func(string) string
}

func questionMarks(q string) string { return q }

func dollarParams(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *store) create(run *domain.Run) error {
	if s.db == nil {
		return errors.New("runs repository is not initialized")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(s.bind(query),
		run.ID, run.ConfigPath, run.ConfigHash, run.Driver, run.Target,
		run.Seed, string(run.Status), run.StartedAt.UTC().Format(time.RFC3339),
		completedAt(run), statsText(run), run.Error,
	)
	return err
}

func (s *store) update(run *domain.Run) error {
	if s.db == nil {
		return errors.New("runs repository is not initialized")
	}
	query := `UPDATE runs SET status = ?, completed_at = ?, stats = ?, error = ? WHERE id = ?`
	_, err := s.db.Exec(s.bind(query), string(run.Status), completedAt(run), statsText(run), run.Error, run.ID)
	return err
}

func (s *store) get(id string) (*domain.Run, error) {
	if s.db == nil {
		return nil, errors.New("runs repository is not initialized")
	}
	row := s.db.QueryRow(s.bind(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

func (s *store) list(limit int, status string) ([]*domain.Run, error) {
	if s.db == nil {
		return nil, errors.New("runs repository is not initialized")
	}
	query := `SELECT ` + runColumns + ` FROM runs`
	args := make([]any, 0, 2)
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(s.bind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *store) close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*domain.Run, error) {
	var (
		run         domain.Run
		status      string
		startedAt   string
		completedAt sql.NullString
		stats       sql.NullString
		errMsg      sql.NullString
	)
	err := sc.Scan(
		&run.ID, &run.ConfigPath, &run.ConfigHash, &run.Driver, &run.Target,
		&run.Seed, &status, &startedAt, &completedAt, &stats, &errMsg,
	)
	if err != nil {
		return nil, err
	}
	run.Status = domain.RunStatus(status)
	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if completedAt.Valid {
		t, _ := time.Parse(time.RFC3339, completedAt.String)
		run.CompletedAt = &t
	}
	if stats.Valid && stats.String != "" {
		run.Stats = json.RawMessage(stats.String)
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return &run, nil
}

func completedAt(run *domain.Run) any {
	if run.CompletedAt == nil {
		return nil
	}
	return run.CompletedAt.UTC().Format(time.RFC3339)
}

func statsText(run *domain.Run) any {
	if len(run.Stats) == 0 {
		return nil
	}
	return string(run.Stats)
}
