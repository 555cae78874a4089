// Package migrations holds the console's schema migrations. Migrations are
// Go functions registered with goose and applied by Runner.
//
// Import Path: hostconsole.io/provisioning/internal/migrations
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// Execer runs a statement. *sql.Tx and *sql.DB satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BooleanBackfill makes a nullable boolean column NOT NULL with a default,
// first rewriting existing NULLs to that default.
type BooleanBackfill struct {
	Table   string
	Column  string
	Default bool
}

// Up backfills NULL rows, then sets the default and NOT NULL.
func (b BooleanBackfill) Up(ctx context.Context, db Execer) error {
	table, column := b.identifiers()

	stmt, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update(table).
		Set(column, b.Default).
		Where(sq.Eq{column: nil}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("backfill %s.%s: %w", b.Table, b.Column, err)
	}

	// DDL does not accept bind parameters.
	for _, stmt := range []string{
		fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", table, column, boolLiteral(b.Default)),
		fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, column),
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("alter %s.%s: %w", b.Table, b.Column, err)
		}
	}
	return nil
}

// Down makes the column nullable again. Backfilled values are kept.
func (b BooleanBackfill) Down(ctx context.Context, db Execer) error {
	table, column := b.identifiers()
	if _, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", table, column)); err != nil {
		return fmt.Errorf("alter %s.%s: %w", b.Table, b.Column, err)
	}
	return nil
}

// UpTx and DownTx adapt the backfill to goose's transactional signature.
func (b BooleanBackfill) UpTx(ctx context.Context, tx *sql.Tx) error   { return b.Up(ctx, tx) }
func (b BooleanBackfill) DownTx(ctx context.Context, tx *sql.Tx) error { return b.Down(ctx, tx) }

func (b BooleanBackfill) identifiers() (table, column string) {
	return pgx.Identifier{b.Table}.Sanitize(), pgx.Identifier{b.Column}.Sanitize()
}

func boolLiteral(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}
