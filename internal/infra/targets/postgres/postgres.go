package postgres

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/lib/pq"

	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/infra/targets/sqldb"
)

const defaultPort = 5432

// NewDialect quotes with pq.QuoteIdentifier and binds $n parameters.
// Unqualified tables are placed in schema when it is set. Each row update
// runs under a savepoint so a failed row does not abort the table.
func NewDialect(schema string) sqldb.Dialect {
	return sqldb.Dialect{
		Name:          domain.DriverPostgres,
		QuoteIdent:    pq.QuoteIdentifier,
		Placeholder:   func(n int) string { return "$" + strconv.Itoa(n) },
		Schema:        schema,
		RowSavepoints: true,
	}
}

func DSN(s domain.ConnectionSettings) string {
	if s.DSN != "" {
		return s.DSN
	}
	port := s.Port
	if port == 0 {
		port = defaultPort
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(s.Host, strconv.Itoa(port)),
		Path:   "/" + s.Database,
	}
	if s.Username != "" {
		u.User = url.UserPassword(s.Username, s.Password)
	}
	sslmode := s.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	q := url.Values{"sslmode": {sslmode}}
	u.RawQuery = q.Encode()
	return u.String()
}

func Open(s domain.ConnectionSettings) (*sqldb.Driver, error) {
	d, err := sqldb.Open("postgres", DSN(s), NewDialect(s.Schema))
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return d, nil
}
