package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/dbfaker/internal/app"
	"github.com/mmrzaf/dbfaker/internal/config"
	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/infra/repos/runs"
	"github.com/mmrzaf/dbfaker/internal/logging"
)

var (
	configPath string
	runsDBPath string
	logLevel   string
	database   string
	seed       int64
	noHistory  bool
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:          "dbfaker",
		Short:        "Replace personal data in a database with fake values",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnonymize(cmd, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", cfg.ConfigPath, "Config file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&runsDBPath, "runs-db", cfg.RunsDBPath, "Run history database (sqlite path or postgres:// URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")
	rootCmd.PersistentFlags().StringVar(&database, "database", "", "Override the configured database name")
	rootCmd.PersistentFlags().Int64VarP(&seed, "seed", "s", 0, "Seed for the value provider")
	rootCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the run")

	rootCmd.AddCommand(validateCmd(cfg))
	rootCmd.AddCommand(providersCmd())
	rootCmd.AddCommand(runsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// request merges flags over the DBFAKER_* environment.
func request(cmd *cobra.Command, cfg *config.Config) *domain.RunRequest {
	req := &domain.RunRequest{
		ConfigPath:           configPath,
		Database:             database,
		IgnoreUpdateFailures: cfg.IgnoreUpdateFailures,
		Seed:                 cfg.Seed,
	}
	if cmd.Flags().Changed("seed") {
		s := seed
		req.Seed = &s
	}
	return req
}

func openRuns() (runs.Repository, error) {
	repo := runs.Open(runsDBPath)
	if err := repo.Init(); err != nil {
		return nil, fmt.Errorf("run history: %w", err)
	}
	return repo, nil
}

func runAnonymize(cmd *cobra.Command, cfg *config.Config) error {
	logger := logging.NewLogger(logLevel)

	var repo runs.Repository
	if !noHistory {
		r, err := openRuns()
		if err != nil {
			return err
		}
		defer r.Close()
		repo = r
	}

	svc := app.NewRunService(repo, nil, logger)
	run, err := svc.Run(request(cmd, cfg))
	if err != nil {
		if run != nil {
			fmt.Printf("Run %s failed: %v\n", run.ID, err)
		}
		return err
	}

	var stats domain.RunStats
	_ = json.Unmarshal(run.Stats, &stats)
	fmt.Printf("Run %s completed successfully\n", run.ID)
	fmt.Printf("Tables: %d, rows written: %d, skipped: %d\n", stats.TablesProcessed, stats.RowsWritten, stats.RowsSkipped)
	fmt.Printf("Seed: %d\n", run.Seed)
	fmt.Printf("Duration: %.2fs\n", stats.DurationSeconds)
	return nil
}

func validateCmd(cfg *config.Config) *cobra.Command {
	var connect bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the config without changing data",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger(logLevel)
			svc := app.NewRunService(nil, nil, logger)
			req := request(cmd, cfg)

			plan, err := svc.Plan(req)
			if err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}
			data, _ := yaml.Marshal(plan)
			fmt.Print(string(data))

			if connect {
				check, err := svc.CheckConnection(req)
				if err != nil {
					fmt.Printf("Connection failed: %v\n", err)
					return err
				}
				fmt.Printf("Connected to %s %s in %dms\n", check.Driver, check.ServerVersion, check.LatencyMS)
			}
			fmt.Printf("Config '%s' is valid\n", plan.ConfigPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&connect, "connect", false, "Also connect to the configured database")
	return cmd
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the properties, methods and custom types columns may use",
		RunE: func(cmd *cobra.Command, args []string) error {
			props, methods, custom := app.NewRunService(nil, nil, nil).Providers()
			fmt.Printf("Properties:\n  %s\n", strings.Join(props, "\n  "))
			fmt.Printf("Methods:\n  %s\n", strings.Join(methods, "\n  "))
			fmt.Printf("Custom types:\n  %s\n", strings.Join(custom, "\n  "))
			return nil
		},
	}
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect run history",
	}

	var limit int
	var status string
	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRuns()
			if err != nil {
				return err
			}
			defer repo.Close()

			list, err := repo.List(limit, status)
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCONFIG\tDRIVER\tTARGET\tSTATUS\tSTARTED")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID[:8], r.ConfigPath, r.Driver, r.Target, r.Status, r.StartedAt.Format("2006-01-02 15:04"))
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Limit results")
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <run_id>",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRuns()
			if err != nil {
				return err
			}
			defer repo.Close()

			run, err := repo.Get(args[0])
			if err != nil {
				return err
			}

			data, _ := yaml.Marshal(run)
			fmt.Print(string(data))
			if len(run.Stats) > 0 {
				var stats domain.RunStats
				if err := json.Unmarshal(run.Stats, &stats); err == nil {
					data, _ = yaml.Marshal(map[string]any{"stats": stats})
					fmt.Print(string(data))
				}
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}
