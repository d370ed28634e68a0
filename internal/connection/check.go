package connection

import (
	"database/sql"
	"time"

	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/logging"
)

var versionQueries = map[string]string{
	domain.DriverMySQL:    "SELECT VERSION()",
	domain.DriverPostgres: "SHOW server_version",
	domain.DriverSQLite:   "SELECT sqlite_version()",
}

// Check connects, reads the server version and disconnects.
func Check(s domain.ConnectionSettings, logger *logging.Logger) (*domain.ConnectionCheck, error) {
	check := &domain.ConnectionCheck{
		Driver:    s.Driver,
		Target:    Describe(s),
		CheckedAt: time.Now().UTC(),
	}
	start := time.Now()
	conn, err := New(s, logger)
	check.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		check.Error = err.Error()
		return check, err
	}
	defer conn.Close()

	check.Driver = conn.Settings().Driver
	check.Target = Describe(conn.Settings())
	check.OK = true
	if withDB, ok := conn.driver.(interface{ DB() *sql.DB }); ok {
		var ver string
		if err := withDB.DB().QueryRow(versionQueries[check.Driver]).Scan(&ver); err == nil {
			check.ServerVersion = ver
		}
	}
	return check, nil
}
