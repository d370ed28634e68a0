package runs

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/dbfaker/internal/domain"
)

func TestPostgresMigrationsAndCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository("postgres://ignored")
	repo.db = db

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS schema_migrations`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS runs_started_at_idx`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO schema_migrations(version) VALUES ($1)`)).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.applyMigrations())

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO runs (` + runColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	run := &domain.Run{ConfigPath: "c.yaml", Status: domain.RunStatusRunning, StartedAt: time.Now()}
	require.NoError(t, repo.Create(run))
	assert.NotEmpty(t, run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
