package sqldb

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/dbfaker/internal/domain"
)

var backtick = Dialect{Name: "test", QuoteIdent: QuoteWith("`"), Placeholder: QuestionMark}

func createMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestFetchAllProjectsColumns(t *testing.T) {
	db, mock := createMockDB(t)
	d := New(db, backtick)

	rows := sqlmock.NewRows([]string{"id", "email"}).
		AddRow(1, []byte("a@example.com")).
		AddRow(2, nil)
	mock.ExpectQuery("SELECT `id`, `email` FROM `users`").WillReturnRows(rows)

	got, err := d.FetchAll("users", []string{"id", "email"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a@example.com", got[0]["email"])
	assert.Nil(t, got[1]["email"])
	assert.Contains(t, got[1], "email")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchAllRejectsEmptyColumns(t *testing.T) {
	db, _ := createMockDB(t)
	_, err := New(db, backtick).FetchAll("users", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestReplaceInsideTransaction(t *testing.T) {
	db, mock := createMockDB(t)
	d := New(db, backtick)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET `email` = ?, `name` = ? WHERE `id` = ?").
		WithArgs("x@example.com", "X", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, d.OnTableUpdateStart("users"))
	ok, err := d.Replace("users", map[string]any{"name": "X", "email": "x@example.com"}, map[string]any{"id": 7})
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, d.OnTableUpdateFinished("users"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceFailureWrapsErrUpdate(t *testing.T) {
	db, mock := createMockDB(t)
	d := New(db, backtick)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET `email` = ? WHERE `id` = ?").
		WillReturnError(errors.New("duplicate entry"))
	mock.ExpectRollback()

	require.NoError(t, d.OnTableUpdateStart("users"))
	ok, err := d.Replace("users", map[string]any{"email": "dup"}, map[string]any{"id": 1})
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrUpdate)
	require.NoError(t, d.OnTableUpdateFailed("users"))
	require.NoError(t, d.OnTableUpdateFailed("users"), "second rollback is a no-op")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMultiColumnIdentifierAndPositionalPlaceholders(t *testing.T) {
	db, mock := createMockDB(t)
	d := New(db, Dialect{
		Name:        "pg",
		QuoteIdent:  QuoteWith(`"`),
		Placeholder: func(n int) string { return "$" + string(rune('0'+n)) },
		Schema:      "app",
	})

	mock.ExpectExec(`UPDATE "app"."orders" SET "note" = $1 WHERE "id" = $2 AND "tenant" = $3`).
		WithArgs("n", 5, "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := d.Replace("orders", map[string]any{"note": "n"}, map[string]any{"tenant": "t1", "id": 5})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRowSavepointsKeepTransactionUsableAfterFailedRow(t *testing.T) {
	db, mock := createMockDB(t)
	d := New(db, Dialect{
		Name:          "pg",
		QuoteIdent:    QuoteWith(`"`),
		Placeholder:   func(n int) string { return "$" + string(rune('0'+n)) },
		RowSavepoints: true,
	})

	mock.ExpectBegin()
	for id := 1; id <= 3; id++ {
		mock.ExpectExec("SAVEPOINT dbfaker_row").WillReturnResult(sqlmock.NewResult(0, 0))
		update := mock.ExpectExec(`UPDATE "users" SET "email" = $1 WHERE "id" = $2`).WithArgs("e", id)
		if id == 2 {
			update.WillReturnError(errors.New("duplicate key value violates unique constraint"))
			mock.ExpectExec("ROLLBACK TO SAVEPOINT dbfaker_row").WillReturnResult(sqlmock.NewResult(0, 0))
			continue
		}
		update.WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("RELEASE SAVEPOINT dbfaker_row").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, d.OnTableUpdateStart("users"))
	for id := 1; id <= 3; id++ {
		ok, err := d.Replace("users", map[string]any{"email": "e"}, map[string]any{"id": id})
		if id == 2 {
			assert.False(t, ok)
			assert.ErrorIs(t, err, domain.ErrUpdate)
			continue
		}
		require.NoError(t, err)
		assert.True(t, ok)
	}
	require.NoError(t, d.OnTableUpdateFinished("users"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRowSavepointsSkippedOutsideTransaction(t *testing.T) {
	db, mock := createMockDB(t)
	d := New(db, Dialect{Name: "pg", QuoteIdent: QuoteWith(`"`), Placeholder: QuestionMark, RowSavepoints: true})

	mock.ExpectExec(`UPDATE "users" SET "email" = ? WHERE "id" = ?`).
		WithArgs("e", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := d.Replace("users", map[string]any{"email": "e"}, map[string]any{"id": 1})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableQuoting(t *testing.T) {
	d := Dialect{QuoteIdent: QuoteWith("`")}
	assert.Equal(t, "`users`", d.Table(" `users` "))
	assert.Equal(t, "`crm`.`users`", d.Table("crm.users"))
	assert.Equal(t, "`we``ird`", d.QuoteIdent("we`ird"))
}

func TestCommitWithoutTransactionFails(t *testing.T) {
	db, _ := createMockDB(t)
	assert.Error(t, New(db, backtick).OnTableUpdateFinished("users"))
}
