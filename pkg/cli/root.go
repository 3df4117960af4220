// Package cli implements the nbalake command-line interface.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"nbalake/internal/config"
	"nbalake/internal/db"
	"nbalake/internal/ingest"
	"nbalake/internal/metastore"
	"nbalake/internal/pipeline"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app carries resolved configuration into subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		dbPath     string
		metaDBPath string
		season     string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:           "nbalake",
		Short:         "NBA medallion pipeline on DuckDB",
		Long:          "Ingests NBA player data into a DuckDB lakehouse and materializes cleaned, enriched, and ranked tables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}

			// Precedence: flag > env > default.
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if cmd.Flags().Changed("meta-db") {
				cfg.MetaDBPath = metaDBPath
			}
			if cmd.Flags().Changed("season") {
				cfg.Season = season
				label, err := config.SeasonLabel(season)
				if err != nil {
					return err
				}
				cfg.SeasonLabel = label
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}

			a.cfg = cfg
			a.logger = cfg.NewLogger()
			slog.SetDefault(a.logger)
			for _, w := range cfg.Warnings {
				a.logger.Warn(w)
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbPath, "db", config.DefaultDBPath, "path to the DuckDB warehouse file")
	pf.StringVar(&metaDBPath, "meta-db", config.DefaultMetaDBPath, "path to the SQLite run-history metastore")
	pf.StringVar(&season, "season", config.DefaultSeason, "season in YYYY-YY format")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newIngestCmd(a),
		newBuildCmd(a),
		newRunCmd(a),
		newTopCmd(a),
		newRunsCmd(a),
		newReportCmd(a),
		newScheduleCmd(a),
	)
	return rootCmd
}

// openWarehouse opens the DuckDB warehouse. Callers own the close.
func (a *app) openWarehouse(ctx context.Context) (*sql.DB, error) {
	return db.OpenDuckDB(ctx, a.cfg.DBPath)
}

// openMetastore opens the SQLite metastore and applies migrations.
// Callers own the close of the returned handle.
func (a *app) openMetastore() (*metastore.RunStore, *sql.DB, error) {
	metaDB, err := db.OpenSQLite(a.cfg.MetaDBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(metaDB); err != nil {
		_ = metaDB.Close()
		return nil, nil, err
	}
	return metastore.NewRunStore(metaDB), metaDB, nil
}

// ingestService wires the API client and raw loader for one warehouse.
func (a *app) ingestService(duck *sql.DB) *ingest.Service {
	client := ingest.NewClient(
		&http.Client{Timeout: a.cfg.HTTPTimeout},
		a.cfg.APIBaseURL,
		a.cfg.RateLimit,
		a.logger,
	)
	return ingest.NewService(client, ingest.NewLoader(duck), a.logger)
}

// buildOnce runs the full model build and reports the outcome.
func (a *app) buildOnce(ctx context.Context, duck *sql.DB, runs *metastore.RunStore, trigger string) error {
	project, err := pipeline.LoadProject()
	if err != nil {
		return err
	}

	exec := pipeline.NewExecutor(duck, runs, a.logger)
	runID, err := exec.Run(ctx, project, pipeline.RunOptions{
		Trigger:     trigger,
		SeasonLabel: a.cfg.SeasonLabel,
	})
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	a.logger.Info("build finished", "run_id", runID)
	return nil
}
