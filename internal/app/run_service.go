package app

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mmrzaf/dbfaker/internal/column"
	"github.com/mmrzaf/dbfaker/internal/config"
	"github.com/mmrzaf/dbfaker/internal/connection"
	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/exec"
	"github.com/mmrzaf/dbfaker/internal/hashing"
	"github.com/mmrzaf/dbfaker/internal/infra/repos/runs"
	"github.com/mmrzaf/dbfaker/internal/logging"
	"github.com/mmrzaf/dbfaker/internal/provider"
	"github.com/mmrzaf/dbfaker/internal/registry"
	"github.com/mmrzaf/dbfaker/internal/schema"
	"github.com/mmrzaf/dbfaker/internal/validation"
)

type RunService struct {
	runRepo    runs.Repository
	registry   *registry.ColumnRegistry
	extensions []provider.Extension
	logger     *logging.Logger
}

// NewRunService wires run history, the custom column registry and any
// provider extensions. A nil registry means the built-in column types.
func NewRunService(runRepo runs.Repository, reg *registry.ColumnRegistry, logger *logging.Logger, exts ...provider.Extension) *RunService {
	if reg == nil {
		reg = registry.DefaultColumnRegistry()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &RunService{runRepo: runRepo, registry: reg, extensions: exts, logger: logger}
}

// Plan is the resolved, validated view of a config file.
type Plan struct {
	ConfigPath           string      `json:"config_path" yaml:"config_path"`
	ConfigHash           string      `json:"config_hash" yaml:"config_hash"`
	Driver               string      `json:"driver" yaml:"driver"`
	Target               string      `json:"target" yaml:"target"`
	Seed                 int64       `json:"seed" yaml:"seed"`
	IgnoreUpdateFailures bool        `json:"ignore_update_failures" yaml:"ignore_update_failures"`
	Tables               []TablePlan `json:"tables" yaml:"tables"`
}

type TablePlan struct {
	Name    string       `json:"name" yaml:"name"`
	Key     []string     `json:"key" yaml:"key"`
	Columns []ColumnPlan `json:"columns" yaml:"columns"`
}

type ColumnPlan struct {
	Name    string         `json:"name" yaml:"name"`
	Type    string         `json:"type" yaml:"type"`
	Options column.Options `json:"options" yaml:"options"`
}

// prepared carries everything a run needs, built before any database
// access so config errors surface first.
type prepared struct {
	plan     *Plan
	settings domain.ConnectionSettings
	tables   []*schema.Table
	env      *column.Env
}

func (s *RunService) prepare(req *domain.RunRequest) (*prepared, error) {
	if err := validation.ValidateRunRequest(req); err != nil {
		return nil, fmt.Errorf("invalid run request: %w", err)
	}
	tree, err := config.LoadFile(req.ConfigPath)
	if err != nil {
		return nil, err
	}

	connTree, err := tree.Sub("connection")
	if err != nil {
		return nil, err
	}
	settings, err := connection.SettingsFromConfig(connTree)
	if err != nil {
		return nil, err
	}
	if req.IgnoreUpdateFailures != nil {
		settings.IgnoreUpdateFailures = *req.IgnoreUpdateFailures
	}
	settings = resolveSettings(settings, req.Database)
	if err := validation.ValidateConnection(settings); err != nil {
		return nil, err
	}

	fakerTree, err := tree.Sub("faker")
	if err != nil {
		return nil, err
	}
	seed, err := resolveSeed(req, fakerTree)
	if err != nil {
		return nil, err
	}
	if locale, _ := fakerTree.String("locale"); locale != "" && !strings.HasPrefix(strings.ToLower(locale), "en") {
		s.logger.Warn("locale %s is not supported, generating English values", locale)
	}

	tablesTree, err := fakerTree.Sub("tables")
	if err != nil {
		return nil, err
	}
	f := provider.New(provider.NewCapabilities(s.extensions...), seed)
	env := column.NewEnv(f, s.registry, s.logger)
	tables, err := schema.BuildTables(tablesTree, env)
	if err != nil {
		return nil, err
	}

	target := connection.Describe(settings)
	hash, err := hashing.HashRunConfig(fakerTree.Map(), settings.Driver, target, seed)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		ConfigPath:           req.ConfigPath,
		ConfigHash:           hash,
		Driver:               settings.Driver,
		Target:               target,
		Seed:                 seed,
		IgnoreUpdateFailures: settings.IgnoreUpdateFailures,
		Tables:               make([]TablePlan, 0, len(tables)),
	}
	for _, t := range tables {
		tp := TablePlan{Name: t.Name(), Key: t.Key().ColumnNames()}
		for _, c := range t.Columns() {
			tp.Columns = append(tp.Columns, ColumnPlan{Name: c.Name(), Type: c.Type(), Options: c.Options()})
		}
		plan.Tables = append(plan.Tables, tp)
	}
	return &prepared{plan: plan, settings: settings, tables: tables, env: env}, nil
}

// resolveSeed prefers the request, then faker.seed, then a random seed.
func resolveSeed(req *domain.RunRequest, fakerTree *config.Tree) (int64, error) {
	if req.Seed != nil {
		return *req.Seed, nil
	}
	if v, err := fakerTree.Get("seed"); err == nil && v != nil {
		return fakerTree.Int64("seed")
	}
	return generateSeed(), nil
}

// Plan loads and validates the config without touching the database.
func (s *RunService) Plan(req *domain.RunRequest) (*Plan, error) {
	p, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	return p.plan, nil
}

// CheckConnection validates the config and probes the configured database.
func (s *RunService) CheckConnection(req *domain.RunRequest) (*domain.ConnectionCheck, error) {
	p, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	return connection.Check(p.settings, s.logger)
}

// Run anonymizes every configured table and records the run. The returned
// run is non-nil once the run record exists, also on failure.
func (s *RunService) Run(req *domain.RunRequest) (*domain.Run, error) {
	p, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	run := &domain.Run{
		ConfigPath: p.plan.ConfigPath,
		ConfigHash: p.plan.ConfigHash,
		Driver:     p.plan.Driver,
		Target:     p.plan.Target,
		Seed:       p.plan.Seed,
		Status:     domain.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	if s.runRepo != nil {
		if err := s.runRepo.Create(run); err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
	}
	s.logger.Info("Starting run %s: target=%s, seed=%d, tables=%d", run.ID, run.Target, run.Seed, len(p.tables))

	conn, err := connection.New(p.settings, s.logger)
	if err != nil {
		s.updateRunFailed(run, nil, err)
		return run, err
	}
	defer conn.Close()

	stats, err := exec.NewExecutor(s.logger).Execute(p.tables, conn)
	if stats != nil {
		cs := p.env.Cache.Stats()
		stats.CacheHits = cs.Hits
		stats.CacheMisses = cs.Misses
		stats.RetryExhausted = cs.Exhausted
	}
	if err != nil {
		s.logger.Error("Run %s failed: %v", run.ID, err)
		s.updateRunFailed(run, stats, err)
		return run, err
	}

	now := time.Now().UTC()
	run.Stats, _ = json.Marshal(stats)
	run.Status = domain.RunStatusSuccess
	run.CompletedAt = &now
	if s.runRepo != nil {
		if err := s.runRepo.Update(run); err != nil {
			s.logger.Error("Failed to update run %s: %v", run.ID, err)
		}
	}

	s.logger.Info("Run %s completed: %d tables, %d rows written, %d skipped, %.2fs",
		run.ID, stats.TablesProcessed, stats.RowsWritten, stats.RowsSkipped, stats.DurationSeconds)
	return run, nil
}

func (s *RunService) updateRunFailed(run *domain.Run, stats *domain.RunStats, cause error) {
	now := time.Now().UTC()
	run.Status = domain.RunStatusFailed
	run.Error = cause.Error()
	run.CompletedAt = &now
	if stats != nil {
		run.Stats, _ = json.Marshal(stats)
	}
	if s.runRepo == nil {
		return
	}
	if err := s.runRepo.Update(run); err != nil {
		s.logger.Error("Failed to update run %s: %v", run.ID, err)
	}
}

func (s *RunService) GetRun(id string) (*domain.Run, error) {
	if s.runRepo == nil {
		return nil, fmt.Errorf("%w: run history is disabled", domain.ErrInvalidArgument)
	}
	return s.runRepo.Get(id)
}

func (s *RunService) ListRuns(limit int, status string) ([]*domain.Run, error) {
	if s.runRepo == nil {
		return nil, fmt.Errorf("%w: run history is disabled", domain.ErrInvalidArgument)
	}
	return s.runRepo.List(limit, status)
}

// Providers lists the accessor names column types may use.
func (s *RunService) Providers() (properties, methods, customTypes []string) {
	caps := provider.NewCapabilities(s.extensions...)
	return caps.Properties(), caps.Methods(), s.registry.List()
}

func generateSeed() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}
