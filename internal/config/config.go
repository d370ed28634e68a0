package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DBFAKER"

// Config holds process-level settings. The anonymization rules themselves
// live in the YAML file at ConfigPath.
type Config struct {
	ConfigPath           string
	LogLevel             string
	RunsDBPath           string
	Seed                 *int64
	IgnoreUpdateFailures *bool
}

// Load reads DBFAKER_* variables, after merging a .env file from the
// working directory if one exists. Variables already set in the
// environment win over .env.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetDefault("config", "./config/config.yaml")
	v.SetDefault("log_level", "info")
	v.SetDefault("runs_db", "./dbfaker-runs.sqlite")
	for _, key := range []string{"config", "log_level", "runs_db", "seed", "ignore_update_failures"} {
		_ = v.BindEnv(key)
	}

	cfg := &Config{
		ConfigPath: v.GetString("config"),
		LogLevel:   v.GetString("log_level"),
		RunsDBPath: v.GetString("runs_db"),
	}
	if v.IsSet("seed") {
		seed := v.GetInt64("seed")
		cfg.Seed = &seed
	}
	if v.IsSet("ignore_update_failures") {
		ignore := v.GetBool("ignore_update_failures")
		cfg.IgnoreUpdateFailures = &ignore
	}
	return cfg
}
