// Package mysql connects to MySQL and MariaDB through go-sql-driver/mysql.
package mysql

import (
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/infra/targets/sqldb"
)

const defaultPort = 3306

var Dialect = sqldb.Dialect{
	Name:        domain.DriverMySQL,
	QuoteIdent:  sqldb.QuoteWith("`"),
	Placeholder: sqldb.QuestionMark,
}

// DSN builds the driver DSN from the connection settings. An explicit DSN
// wins over the individual fields.
func DSN(s domain.ConnectionSettings) string {
	if s.DSN != "" {
		return s.DSN
	}
	cfg := mysql.NewConfig()
	cfg.User = s.Username
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	port := s.Port
	if port == 0 {
		port = defaultPort
	}
	cfg.Addr = net.JoinHostPort(s.Host, strconv.Itoa(port))
	cfg.DBName = s.Database
	if s.Charset != "" {
		cfg.Params = map[string]string{"charset": s.Charset}
	}
	switch s.SSLMode {
	case "disable":
		cfg.TLSConfig = "false"
	case "prefer":
		cfg.TLSConfig = "preferred"
	case "require":
		cfg.TLSConfig = "skip-verify"
	}
	return cfg.FormatDSN()
}

// Open connects and, when requested, turns off binary logging for the
// session so the rewrite is not replicated.
func Open(s domain.ConnectionSettings) (*sqldb.Driver, error) {
	d, err := sqldb.Open("mysql", DSN(s), Dialect)
	if err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}
	// Session variables belong to one physical connection.
	d.DB().SetMaxOpenConns(1)
	if s.DisableBinlog {
		if _, err := d.DB().Exec("SET SESSION sql_log_bin = 0"); err != nil {
			d.Close()
			return nil, fmt.Errorf("mysql: disable binlog: %w", err)
		}
	}
	return d, nil
}
