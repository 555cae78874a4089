package migrations

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"

	"hostconsole.io/provisioning/internal/testutil"
)

type execCall struct {
	query string
	args  []any
}

type recordingExecer struct {
	calls  []execCall
	failAt int // 1-based; 0 never fails
}

func (r *recordingExecer) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	r.calls = append(r.calls, execCall{query: query, args: args})
	if r.failAt == len(r.calls) {
		return nil, errors.New("boom")
	}
	return driverResult{}, nil
}

type driverResult struct{}

func (driverResult) LastInsertId() (int64, error) { return 0, nil }
func (driverResult) RowsAffected() (int64, error) { return 0, nil }

func TestBooleanBackfill_Up(t *testing.T) {
	t.Parallel()

	db := &recordingExecer{}
	require.NoError(t, FixTemplateSnippetFlag.Up(context.Background(), db))

	require.Len(t, db.calls, 3)
	require.Equal(t, `UPDATE "templates" SET "snippet" = $1 WHERE "snippet" IS NULL`, db.calls[0].query)
	require.Equal(t, []any{false}, db.calls[0].args)
	require.Equal(t, `ALTER TABLE "templates" ALTER COLUMN "snippet" SET DEFAULT FALSE`, db.calls[1].query)
	require.Equal(t, `ALTER TABLE "templates" ALTER COLUMN "snippet" SET NOT NULL`, db.calls[2].query)
}

func TestBooleanBackfill_UpTrueDefault(t *testing.T) {
	t.Parallel()

	db := &recordingExecer{}
	require.NoError(t, BooleanBackfill{Table: "hosts", Column: "managed", Default: true}.Up(context.Background(), db))
	require.Equal(t, []any{true}, db.calls[0].args)
	require.Contains(t, db.calls[1].query, "SET DEFAULT TRUE")
}

func TestBooleanBackfill_UpStopsOnError(t *testing.T) {
	t.Parallel()

	db := &recordingExecer{failAt: 1}
	err := FixTemplateSnippetFlag.Up(context.Background(), db)
	require.ErrorContains(t, err, "backfill templates.snippet")
	require.Len(t, db.calls, 1)
}

func TestBooleanBackfill_Down(t *testing.T) {
	t.Parallel()

	db := &recordingExecer{}
	require.NoError(t, FixTemplateSnippetFlag.Down(context.Background(), db))
	require.Len(t, db.calls, 1)
	require.Equal(t, `ALTER TABLE "templates" ALTER COLUMN "snippet" DROP NOT NULL`, db.calls[0].query)
}

func TestBooleanBackfill_QuotesIdentifiers(t *testing.T) {
	t.Parallel()

	db := &recordingExecer{}
	require.NoError(t, BooleanBackfill{Table: `odd"name`, Column: "flag"}.Down(context.Background(), db))
	require.Equal(t, `ALTER TABLE "odd""name" ALTER COLUMN "flag" DROP NOT NULL`, db.calls[0].query)
}

func TestRunner_FixTemplateSnippetFlag(t *testing.T) {
	pool := testutil.OpenPGXPool(t, "migrations")
	db := stdlib.OpenDBFromPool(pool)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE templates (id serial PRIMARY KEY, name text NOT NULL, snippet boolean)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO templates (name, snippet) VALUES ('a', NULL), ('b', TRUE), ('c', FALSE)`)
	require.NoError(t, err)

	r, err := NewRunner(db)
	require.NoError(t, err)
	require.NoError(t, r.Up(ctx))

	v, err := r.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(20150605073820), v)

	var nulls, snippets int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT count(*) FILTER (WHERE snippet IS NULL), count(*) FILTER (WHERE snippet) FROM templates`).Scan(&nulls, &snippets))
	require.Zero(t, nulls)
	require.Equal(t, 1, snippets)

	var def bool
	require.NoError(t, db.QueryRowContext(ctx, `INSERT INTO templates (name) VALUES ('d') RETURNING snippet`).Scan(&def))
	require.False(t, def)

	_, err = db.ExecContext(ctx, `INSERT INTO templates (name, snippet) VALUES ('e', NULL)`)
	require.Error(t, err)

	// Re-running is a no-op.
	require.NoError(t, r.Up(ctx))

	require.NoError(t, r.Down(ctx))
	v, err = r.Version(ctx)
	require.NoError(t, err)
	require.Zero(t, v)

	_, err = db.ExecContext(ctx, `INSERT INTO templates (name, snippet) VALUES ('e', NULL)`)
	require.NoError(t, err)
}
