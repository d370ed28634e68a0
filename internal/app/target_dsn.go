package app

import (
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/mmrzaf/dbfaker/internal/domain"
)

// resolveSettings points the connection at dbOverride, when given, so one
// config can anonymize several copies of the same database.
func resolveSettings(base domain.ConnectionSettings, dbOverride string) domain.ConnectionSettings {
	s := base
	if dbOverride == "" {
		return s
	}
	s.Database = dbOverride
	if s.DSN == "" {
		return s
	}
	switch s.Driver {
	case domain.DriverPostgres:
		s.DSN = withPostgresDatabase(s.DSN, dbOverride)
	case domain.DriverMySQL:
		s.DSN = withMySQLDatabase(s.DSN, dbOverride)
	case domain.DriverSQLite:
		s.DSN = dbOverride
	}
	return s
}

func withPostgresDatabase(dsn, database string) string {
	dsn = strings.TrimSpace(dsn)
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		u.Path = "/" + database
		return u.String()
	}
	parts := strings.Fields(dsn)
	found := false
	for i := range parts {
		if strings.HasPrefix(strings.ToLower(parts[i]), "dbname=") {
			parts[i] = "dbname=" + database
			found = true
			break
		}
	}
	if !found {
		parts = append(parts, "dbname="+database)
	}
	return strings.Join(parts, " ")
}

func withMySQLDatabase(dsn, database string) string {
	cfg, err := mysql.ParseDSN(strings.TrimSpace(dsn))
	if err != nil {
		return dsn
	}
	cfg.DBName = database
	return cfg.FormatDSN()
}
