package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mmrzaf/dbfaker/internal/domain"
)

// identifier validation: allow plain SQL identifiers only (prevents injection via table/column names).
// Reserved words are accepted because drivers always quote identifiers.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

func IsValidIdentifier(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 64 {
		return false
	}
	return identRe.MatchString(s)
}

// IsValidTableName accepts "table" or "schema.table".
func IsValidTableName(s string) bool {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if !IsValidIdentifier(p) {
			return false
		}
	}
	return true
}

// ValidateTableLayout checks names and that the key and rule columns are
// disjoint and distinct.
func ValidateTableLayout(table string, keyColumns, columns []string) error {
	if !IsValidTableName(table) {
		return fmt.Errorf("%w: invalid table identifier: %q", domain.ErrConfiguration, table)
	}
	if len(keyColumns) == 0 {
		return fmt.Errorf("%w: table %s: key is required", domain.ErrConfiguration, table)
	}
	seen := make(map[string]string, len(keyColumns)+len(columns))
	for _, k := range keyColumns {
		if !IsValidIdentifier(k) {
			return fmt.Errorf("%w: table %s: invalid key column identifier: %q", domain.ErrConfiguration, table, k)
		}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: table %s: duplicate key column: %s", domain.ErrConfiguration, table, k)
		}
		seen[k] = "key"
	}
	for _, c := range columns {
		if !IsValidIdentifier(c) {
			return fmt.Errorf("%w: table %s: invalid column identifier: %q", domain.ErrConfiguration, table, c)
		}
		if role, dup := seen[c]; dup {
			if role == "key" {
				return fmt.Errorf("%w: table %s: column %s overlaps the key", domain.ErrConfiguration, table, c)
			}
			return fmt.Errorf("%w: table %s: duplicate column name: %s", domain.ErrConfiguration, table, c)
		}
		seen[c] = "column"
	}
	return nil
}

func IsValidDriver(driver string) bool {
	switch NormalizeDriver(driver) {
	case domain.DriverMySQL, domain.DriverPostgres, domain.DriverSQLite:
		return true
	default:
		return false
	}
}

// NormalizeDriver maps accepted aliases to the canonical driver names.
func NormalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "mysql", "pdo_mysql", "mysqli":
		return domain.DriverMySQL
	case "postgres", "postgresql", "pgsql", "pdo_pgsql":
		return domain.DriverPostgres
	case "sqlite", "sqlite3", "pdo_sqlite":
		return domain.DriverSQLite
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

func ValidateConnection(s domain.ConnectionSettings) error {
	if s.Driver == "" {
		return fmt.Errorf("%w: connection driver is required", domain.ErrConfiguration)
	}
	if !IsValidDriver(s.Driver) {
		return fmt.Errorf("%w: %s", domain.ErrDriver, s.Driver)
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("%w: connection port out of range: %d", domain.ErrConfiguration, s.Port)
	}

	switch NormalizeDriver(s.Driver) {
	case domain.DriverSQLite:
		if s.DSN == "" && s.Database == "" {
			return fmt.Errorf("%w: sqlite connections need a database path or dsn", domain.ErrConfiguration)
		}
		if s.Schema != "" {
			return fmt.Errorf("%w: sqlite connections must not set schema", domain.ErrConfiguration)
		}
	case domain.DriverPostgres:
		if s.Schema != "" && !IsValidIdentifier(s.Schema) {
			return fmt.Errorf("%w: invalid schema identifier: %s", domain.ErrConfiguration, s.Schema)
		}
		fallthrough
	default:
		if s.DSN == "" && s.Database == "" {
			return fmt.Errorf("%w: connection database is required", domain.ErrConfiguration)
		}
	}
	if s.DisableBinlog && NormalizeDriver(s.Driver) != domain.DriverMySQL {
		return fmt.Errorf("%w: disableBinlog is only supported for mysql", domain.ErrConfiguration)
	}
	return nil
}

func ValidateRunRequest(req *domain.RunRequest) error {
	if req == nil {
		return fmt.Errorf("%w: run request is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(req.ConfigPath) == "" {
		return fmt.Errorf("%w: config path is required", domain.ErrInvalidArgument)
	}
	return nil
}
