package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/dbfaker/internal/domain"
)

func TestRoundTripOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.sqlite")
	d, err := Open(domain.ConnectionSettings{Driver: domain.DriverSQLite, Database: path})
	require.NoError(t, err)
	defer d.Close()

	_, err = d.DB().Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT)`)
	require.NoError(t, err)
	_, err = d.DB().Exec(`INSERT INTO users (id, email) VALUES (1, 'a@x.org'), (2, 'b@x.org')`)
	require.NoError(t, err)

	require.NoError(t, d.OnTableUpdateStart("users"))
	ok, err := d.Replace("users", map[string]any{"email": "fake@y.org"}, map[string]any{"id": int64(2)})
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, d.OnTableUpdateFinished("users"))

	rows, err := d.FetchAll("users", []string{"id", "email"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a@x.org", rows[0]["email"])
	assert.Equal(t, "fake@y.org", rows[1]["email"])
}

func TestRollbackDiscardsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.sqlite")
	d, err := Open(domain.ConnectionSettings{Database: path})
	require.NoError(t, err)
	defer d.Close()

	_, err = d.DB().Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT); INSERT INTO t VALUES (1, 'orig')`)
	require.NoError(t, err)

	require.NoError(t, d.OnTableUpdateStart("t"))
	_, err = d.Replace("t", map[string]any{"v": "changed"}, map[string]any{"id": 1})
	require.NoError(t, err)
	require.NoError(t, d.OnTableUpdateFailed("t"))

	rows, err := d.FetchAll("t", []string{"v"})
	require.NoError(t, err)
	assert.Equal(t, "orig", rows[0]["v"])
}
