package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	apperrors "hostconsole.io/provisioning/internal/pkg/errors"
	"hostconsole.io/provisioning/internal/pkg/logger"
)

const (
	// VersionTable records applied migration versions.
	VersionTable = "schema_migrations"

	// Go migrations are registered in init; goose still needs a directory
	// to scan for SQL files.
	migrationsPath = "."
)

var configureOnce sync.Once
var configureErr error

// configure sets goose's process-wide dialect, table and logger once.
func configure() error {
	configureOnce.Do(func() {
		goose.SetLogger(gooseLogger{s: logger.Named("migrations").Sugar()})
		goose.SetTableName(VersionTable)
		configureErr = goose.SetDialect("postgres")
	})
	return configureErr
}

// Runner applies the registered migrations to a database.
type Runner struct {
	db *sql.DB
}

// NewRunner configures goose and returns a runner for db.
func NewRunner(db *sql.DB) (*Runner, error) {
	if err := configure(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMigrationFailed, "configure migrations")
	}
	return &Runner{db: db}, nil
}

// Up applies every pending migration.
func (r *Runner) Up(ctx context.Context) error {
	if err := goose.UpContext(ctx, r.db, migrationsPath); err != nil {
		return apperrors.Wrap(err, apperrors.CodeMigrationFailed, "apply migrations")
	}
	return r.logVersion(ctx)
}

// Down reverts the most recently applied migration.
func (r *Runner) Down(ctx context.Context) error {
	if err := goose.DownContext(ctx, r.db, migrationsPath); err != nil {
		return apperrors.Wrap(err, apperrors.CodeMigrationFailed, "revert migration")
	}
	return r.logVersion(ctx)
}

// Version returns the latest applied version, 0 when none.
func (r *Runner) Version(ctx context.Context) (int64, error) {
	v, err := goose.GetDBVersionContext(ctx, r.db)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeMigrationFailed, "read schema version")
	}
	return v, nil
}

func (r *Runner) logVersion(ctx context.Context) error {
	v, err := r.Version(ctx)
	if err != nil {
		return err
	}
	logger.Info("Schema at version", zap.Int64("version", v))
	return nil
}

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.s.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.s.Fatal(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
