package sqlite

import (
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/infra/targets/sqldb"
)

var Dialect = sqldb.Dialect{
	Name:        domain.DriverSQLite,
	QuoteIdent:  sqldb.QuoteWith(`"`),
	Placeholder: sqldb.QuestionMark,
}

// DSN is the database file path unless an explicit DSN is configured.
func DSN(s domain.ConnectionSettings) string {
	if s.DSN != "" {
		return s.DSN
	}
	return s.Database
}

func Open(s domain.ConnectionSettings) (*sqldb.Driver, error) {
	d, err := sqldb.Open("sqlite3", DSN(s), Dialect)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	// A second pooled connection would not see the open transaction's locks.
	d.DB().SetMaxOpenConns(1)
	return d, nil
}
