package main

// Apply the documents schema:
//   go run ./cmd/migrate
// Print the applied version:
//   go run ./cmd/migrate version

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"doc-analyzer/internal/shared/config"
	"doc-analyzer/internal/shared/storage/db"
	"doc-analyzer/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.LogLevel)
	defer telemetry.Sync()

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply embedded database migrations",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), cfg, func(sqlDB *sql.DB) error {
				return db.RunMigrations(cmd.Context(), sqlDB)
			})
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), cfg, func(sqlDB *sql.DB) error {
				v, err := db.SchemaVersion(sqlDB)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			})
		},
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"err": err})
		telemetry.Sync()
		os.Exit(1)
	}
}

func withDB(ctx context.Context, cfg config.Config, fn func(*sql.DB) error) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return fn(sqlDB)
}
