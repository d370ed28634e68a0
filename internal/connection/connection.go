// Package connection opens the database being anonymized and applies the
// update-failure policy on top of the backend driver.
package connection

import (
	"errors"
	"fmt"

	"github.com/mmrzaf/dbfaker/internal/config"
	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/infra/targets/mysql"
	"github.com/mmrzaf/dbfaker/internal/infra/targets/postgres"
	"github.com/mmrzaf/dbfaker/internal/infra/targets/sqlite"
	"github.com/mmrzaf/dbfaker/internal/logging"
	"github.com/mmrzaf/dbfaker/internal/validation"
)

// Driver is a backend able to read a table and rewrite rows by key inside
// one transaction per table.
type Driver interface {
	FetchAll(table string, columns []string) ([]map[string]any, error)
	Replace(table string, data, identifier map[string]any) (bool, error)
	OnTableUpdateStart(table string) error
	OnTableUpdateFinished(table string) error
	OnTableUpdateFailed(table string) error
	Close() error
}

// Opener connects a backend.
type Opener func(domain.ConnectionSettings) (Driver, error)

var openers = map[string]Opener{
	domain.DriverMySQL:    func(s domain.ConnectionSettings) (Driver, error) { return mysql.Open(s) },
	domain.DriverPostgres: func(s domain.ConnectionSettings) (Driver, error) { return postgres.Open(s) },
	domain.DriverSQLite:   func(s domain.ConnectionSettings) (Driver, error) { return sqlite.Open(s) },
}

type Connection struct {
	settings domain.ConnectionSettings
	driver   Driver
	logger   *logging.Logger
}

// New validates the settings and connects the matching backend. Unknown
// drivers fail with domain.ErrDriver.
func New(s domain.ConnectionSettings, logger *logging.Logger) (*Connection, error) {
	s.Driver = validation.NormalizeDriver(s.Driver)
	if err := validation.ValidateConnection(s); err != nil {
		return nil, err
	}
	open, ok := openers[s.Driver]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDriver, s.Driver)
	}
	d, err := open(s)
	if err != nil {
		return nil, err
	}
	return NewWithDriver(s, d, logger), nil
}

// NewWithDriver wraps an already connected driver.
func NewWithDriver(s domain.ConnectionSettings, d Driver, logger *logging.Logger) *Connection {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Connection{settings: s, driver: d, logger: logger.WithComponent("connection")}
}

func (c *Connection) Settings() domain.ConnectionSettings { return c.settings }

func (c *Connection) FetchAll(table string, columns []string) ([]map[string]any, error) {
	return c.driver.FetchAll(table, columns)
}

// Replace writes one row. With IgnoreUpdateFailures set, an update failure
// is logged and reported as (false, nil) so the table keeps going.
func (c *Connection) Replace(table string, data, identifier map[string]any) (bool, error) {
	ok, err := c.driver.Replace(table, data, identifier)
	if err == nil {
		return ok, nil
	}
	if c.settings.IgnoreUpdateFailures && errors.Is(err, domain.ErrUpdate) {
		c.logger.Warnw("connection.update_ignored", map[string]any{
			"table":      table,
			"identifier": identifier,
			"error":      err.Error(),
		})
		return false, nil
	}
	return false, err
}

func (c *Connection) OnTableUpdateStart(table string) error {
	return c.driver.OnTableUpdateStart(table)
}

func (c *Connection) OnTableUpdateFinished(table string) error {
	return c.driver.OnTableUpdateFinished(table)
}

func (c *Connection) OnTableUpdateFailed(table string) error {
	return c.driver.OnTableUpdateFailed(table)
}

func (c *Connection) Close() error { return c.driver.Close() }

func defaultSettings() map[string]any {
	return map[string]any{
		"driver":               domain.DriverMySQL,
		"host":                 "localhost",
		"port":                 nil,
		"username":             "",
		"password":             "",
		"database":             "",
		"charset":              "utf8",
		"dsn":                  "",
		"schema":               "",
		"sslmode":              "",
		"ignoreUpdateFailures": false,
		"disableBinlog":        false,
	}
}

// SettingsFromConfig reads the "connection" section, overlaid on the
// defaults (mysql on localhost, utf8, update failures abort).
// "ignoreUpdateExceptions" is accepted as an alias of ignoreUpdateFailures.
func SettingsFromConfig(cfg *config.Tree) (domain.ConnectionSettings, error) {
	var s domain.ConnectionSettings
	if cfg == nil {
		cfg = config.NewTree(nil)
	}
	t := cfg.WithDefaults(defaultSettings())

	strs := []struct {
		key string
		dst *string
	}{
		{"driver", &s.Driver},
		{"host", &s.Host},
		{"username", &s.Username},
		{"password", &s.Password},
		{"database", &s.Database},
		{"charset", &s.Charset},
		{"dsn", &s.DSN},
		{"schema", &s.Schema},
		{"sslmode", &s.SSLMode},
	}
	for _, f := range strs {
		v, err := t.String(f.key)
		if err != nil {
			return s, fmt.Errorf("connection: %w", err)
		}
		*f.dst = v
	}

	var err error
	if s.Port, err = t.Int("port"); err != nil {
		return s, fmt.Errorf("connection: %w", err)
	}
	ignoreKey := "ignoreUpdateFailures"
	if !cfg.Has(ignoreKey) && cfg.Has("ignoreUpdateExceptions") {
		ignoreKey = "ignoreUpdateExceptions"
	}
	if s.IgnoreUpdateFailures, err = t.Bool(ignoreKey); err != nil {
		return s, fmt.Errorf("connection: %w", err)
	}
	if s.DisableBinlog, err = t.Bool("disableBinlog"); err != nil {
		return s, fmt.Errorf("connection: %w", err)
	}
	s.Driver = validation.NormalizeDriver(s.Driver)
	return s, nil
}
