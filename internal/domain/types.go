package domain

import (
	"encoding/json"
	"time"
)

// ConnectionSettings describes how to reach the database being anonymized.
type ConnectionSettings struct {
	Driver               string `json:"driver" yaml:"driver"`
	Host                 string `json:"host" yaml:"host"`
	Port                 int    `json:"port,omitempty" yaml:"port,omitempty"`
	Username             string `json:"username" yaml:"username"`
	Password             string `json:"-" yaml:"-"`
	Database             string `json:"database" yaml:"database"`
	Charset              string `json:"charset,omitempty" yaml:"charset,omitempty"`
	DSN                  string `json:"-" yaml:"-"`
	Schema               string `json:"schema,omitempty" yaml:"schema,omitempty"`
	SSLMode              string `json:"sslmode,omitempty" yaml:"sslmode,omitempty"`
	IgnoreUpdateFailures bool   `json:"ignore_update_failures" yaml:"ignore_update_failures"`
	DisableBinlog        bool   `json:"disable_binlog,omitempty" yaml:"disable_binlog,omitempty"`
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Run struct {
	ID          string          `json:"id" yaml:"id"`
	ConfigPath  string          `json:"config_path" yaml:"config_path"`
	ConfigHash  string          `json:"config_hash" yaml:"config_hash"`
	Driver      string          `json:"driver" yaml:"driver"`
	Target      string          `json:"target" yaml:"target"`
	Seed        int64           `json:"seed" yaml:"seed"`
	Status      RunStatus       `json:"status" yaml:"status"`
	StartedAt   time.Time       `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Stats       json.RawMessage `json:"stats,omitempty" yaml:"-"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

type RunStats struct {
	TablesProcessed int             `json:"tables_processed" yaml:"tables_processed"`
	RowsLoaded      int64           `json:"rows_loaded" yaml:"rows_loaded"`
	RowsWritten     int64           `json:"rows_written" yaml:"rows_written"`
	RowsSkipped     int64           `json:"rows_skipped" yaml:"rows_skipped"`
	DurationSeconds float64         `json:"duration_seconds" yaml:"duration_seconds"`
	CacheHits       int64           `json:"cache_hits" yaml:"cache_hits"`
	CacheMisses     int64           `json:"cache_misses" yaml:"cache_misses"`
	RetryExhausted  int64           `json:"retry_exhausted" yaml:"retry_exhausted"`
	TableStats      []TableRunStats `json:"table_stats" yaml:"table_stats"`
}

type TableRunStats struct {
	TableName       string  `json:"table_name" yaml:"table_name"`
	RowsLoaded      int64   `json:"rows_loaded" yaml:"rows_loaded"`
	RowsWritten     int64   `json:"rows_written" yaml:"rows_written"`
	RowsSkipped     int64   `json:"rows_skipped" yaml:"rows_skipped"`
	DurationSeconds float64 `json:"duration_seconds" yaml:"duration_seconds"`
}

// RunRequest carries the per-invocation overrides on top of the config file.
type RunRequest struct {
	ConfigPath           string `json:"config_path"`
	Database             string `json:"database,omitempty"`
	Seed                 *int64 `json:"seed,omitempty"`
	IgnoreUpdateFailures *bool  `json:"ignore_update_failures,omitempty"`
}

// ConnectionCheck is the outcome of a connectivity probe.
type ConnectionCheck struct {
	Driver        string    `json:"driver" yaml:"driver"`
	Target        string    `json:"target" yaml:"target"`
	OK            bool      `json:"ok" yaml:"ok"`
	LatencyMS     int64     `json:"latency_ms" yaml:"latency_ms"`
	ServerVersion string    `json:"server_version,omitempty" yaml:"server_version,omitempty"`
	Error         string    `json:"error,omitempty" yaml:"error,omitempty"`
	CheckedAt     time.Time `json:"checked_at" yaml:"checked_at"`
}
