package runs

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/mmrzaf/dbfaker/internal/domain"
)

// PostgresRepository keeps run history in a shared PostgreSQL database so
// several operators see the same runs.
type PostgresRepository struct {
	dsn string
	store
}

func NewPostgresRepository(dsn string) *PostgresRepository {
	return &PostgresRepository{dsn: strings.TrimSpace(dsn), store: store{bind: dollarParams}}
}

func (r *PostgresRepository) Init() error {
	if r.dsn == "" {
		return fmt.Errorf("runs db dsn is required")
	}
	db, err := sql.Open("postgres", r.dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	r.db = db
	return r.applyMigrations()
}

func (r *PostgresRepository) DB() *sql.DB { return r.db }

type migration struct {
	version int
	stmt    string
}

var migrations = []migration{
	{1, `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		config_path TEXT NOT NULL,
		config_hash TEXT NOT NULL,
		driver TEXT NOT NULL,
		target TEXT NOT NULL,
		seed BIGINT NOT NULL,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		stats TEXT,
		error TEXT
	)`},
	{2, `CREATE INDEX IF NOT EXISTS runs_started_at_idx ON runs (started_at DESC)`},
}

func (r *PostgresRepository) applyMigrations() error {
	if _, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}
	var cur int
	if err := r.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&cur); err != nil {
		return err
	}
	for _, m := range migrations {
		if cur >= m.version {
			continue
		}
		if _, err := r.db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		if _, err := r.db.Exec(`INSERT INTO schema_migrations(version) VALUES ($1)`, m.version); err != nil {
			return err
		}
		cur = m.version
	}
	return nil
}

func (r *PostgresRepository) Create(run *domain.Run) error { return r.create(run) }
func (r *PostgresRepository) Update(run *domain.Run) error { return r.update(run) }

func (r *PostgresRepository) Get(id string) (*domain.Run, error) { return r.get(id) }

func (r *PostgresRepository) List(limit int, status string) ([]*domain.Run, error) {
	return r.list(limit, status)
}

func (r *PostgresRepository) Close() error { return r.close() }
