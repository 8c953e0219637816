package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"

	"doc-analyzer/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// RunMigrations applies the embedded documents schema. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	start := time.Now()
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	telemetry.Info("db.migrated", map[string]any{"duration_ms": time.Since(start).Milliseconds()})
	return nil
}

// SchemaVersion reports the latest applied migration version.
func SchemaVersion(database *sql.DB) (int64, error) {
	if database == nil {
		return 0, errors.New("migrate: no database")
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}
	v, err := goose.GetDBVersion(database)
	if err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}
	return v, nil
}

// gooseLogger forwards goose output to telemetry.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	telemetry.Info("db.migrate", map[string]any{"detail": strings.TrimSpace(fmt.Sprintf(format, v...))})
}

func (l gooseLogger) Print(v ...any)   { l.Printf("%s", fmt.Sprint(v...)) }
func (l gooseLogger) Println(v ...any) { l.Printf("%s", fmt.Sprintln(v...)) }

func (gooseLogger) Fatalf(format string, v ...any) {
	telemetry.Error("db.migrate_fatal", map[string]any{"detail": fmt.Sprintf(format, v...)})
	telemetry.Sync()
	os.Exit(1)
}

func (l gooseLogger) Fatal(v ...any) { l.Fatalf("%s", fmt.Sprint(v...)) }
