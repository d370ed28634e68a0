package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ReadsDotEnv(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	d := t.TempDir()
	if err := os.WriteFile(filepath.Join(d, ".env"), []byte("DBFAKER_CONFIG=/etc/dbfaker/prod.yaml\nDBFAKER_LOG_LEVEL=debug\nDBFAKER_SEED=42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(d); err != nil {
		t.Fatal(err)
	}

	keys := []string{"DBFAKER_CONFIG", "DBFAKER_LOG_LEVEL", "DBFAKER_SEED", "DBFAKER_IGNORE_UPDATE_FAILURES"}
	saved := make(map[string]*string, len(keys))
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			saved[k] = &v
		} else {
			saved[k] = nil
		}
		_ = os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range saved {
			if v != nil {
				_ = os.Setenv(k, *v)
			} else {
				_ = os.Unsetenv(k)
			}
		}
	})

	cfg := Load()
	if cfg.ConfigPath != "/etc/dbfaker/prod.yaml" {
		t.Fatalf("expected DBFAKER_CONFIG from .env, got %q", cfg.ConfigPath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected DBFAKER_LOG_LEVEL from .env, got %q", cfg.LogLevel)
	}
	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Fatalf("expected seed 42, got %v", cfg.Seed)
	}
	if cfg.IgnoreUpdateFailures != nil {
		t.Fatalf("expected ignore policy to stay unset, got %v", *cfg.IgnoreUpdateFailures)
	}
	if cfg.RunsDBPath != "./dbfaker-runs.sqlite" {
		t.Fatalf("expected default runs db, got %q", cfg.RunsDBPath)
	}
}
