package iodb

import (
	"context"
	"testing"

	"github.com/plantkeeper/pkdb/pkg/config"
	"github.com/plantkeeper/pkdb/pkg/errcode"
	"github.com/plantkeeper/pkdb/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOperator(t *testing.T) *sqliteOperator {
	t.Helper()
	op := NewSQLiteOperator().(*sqliteOperator)
	cfg := &config.DatabaseConfig{Path: ":memory:", BusyTimeoutMs: 500}
	err := op.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { op.Close() })
	return op
}

func TestConnect(t *testing.T) {
	op := testOperator(t)
	assert.NotNil(t, op.DB())
	assert.NotNil(t, op.Gorm())

	// Foreign keys must be on for the stores.
	var fk int
	err := op.DB().QueryRowContext(
		context.Background(), "PRAGMA foreign_keys",
	).Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk)
}

func TestConnect_BusyTimeout(t *testing.T) {
	ctx := context.Background()
	op := NewSQLiteOperator().(*sqliteOperator)
	cfg := config.New()
	cfg.Database.Path = ":memory:"

	err := op.Connect(ctx, &cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { op.Close() })

	var timeout int
	err = op.DB().QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout)
	require.NoError(t, err)
	assert.Equal(t, cfg.Database.BusyTimeoutMs, timeout)
}

func TestTables(t *testing.T) {
	ctx := context.Background()
	op := testOperator(t)

	tables, err := op.Tables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)

	_, err = op.DB().ExecContext(ctx, schema.Family{}.TableDDL())
	require.NoError(t, err)
	_, err = op.DB().ExecContext(ctx, schema.Genus{}.TableDDL())
	require.NoError(t, err)

	tables, err = op.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"plant_family", "plant_genus"}, tables)
}

func TestTableExists(t *testing.T) {
	ctx := context.Background()
	op := testOperator(t)

	exists, err := op.TableExists(ctx, "plant_family")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = op.DB().ExecContext(ctx, schema.Family{}.TableDDL())
	require.NoError(t, err)

	exists, err = op.TableExists(ctx, "plant_family")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestColumns(t *testing.T) {
	ctx := context.Background()
	op := testOperator(t)

	_, err := op.DB().ExecContext(ctx, schema.Family{}.TableDDL())
	require.NoError(t, err)

	cols, err := op.Columns(ctx, "plant_family")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"id", "name", "created_at", "updated_at"}, cols)

	// A missing table simply has no columns.
	cols, err = op.Columns(ctx, "no_such_table")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestForeignKeyCheck(t *testing.T) {
	ctx := context.Background()
	op := testOperator(t)

	_, err := op.DB().ExecContext(ctx, schema.Family{}.TableDDL())
	require.NoError(t, err)
	_, err = op.DB().ExecContext(ctx, schema.Genus{}.TableDDL())
	require.NoError(t, err)

	violations, err := op.ForeignKeyCheck(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)

	// Enforcement is on, so a dangling insert must be suspended first.
	_, err = op.DB().ExecContext(ctx, "PRAGMA foreign_keys = OFF")
	require.NoError(t, err)
	_, err = op.DB().ExecContext(ctx,
		"INSERT INTO plant_genus (name, family_id) VALUES ('Monstera', 99)")
	require.NoError(t, err)
	_, err = op.DB().ExecContext(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	violations, err = op.ForeignKeyCheck(ctx)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "plant_genus", violations[0].Table)
	assert.Equal(t, "plant_family", violations[0].Parent)
	assert.NotEqual(t, int64(-1), violations[0].RowID)
}

func TestNotConnected(t *testing.T) {
	ctx := context.Background()
	op := NewSQLiteOperator()

	_, err := op.Tables(ctx)
	assert.Equal(t, errcode.DBNotConnectedError, errcode.Code(err))

	_, err = op.TableExists(ctx, "plants")
	assert.Equal(t, errcode.DBNotConnectedError, errcode.Code(err))

	_, err = op.Columns(ctx, "plants")
	assert.Equal(t, errcode.DBNotConnectedError, errcode.Code(err))

	_, err = op.ForeignKeyCheck(ctx)
	assert.Equal(t, errcode.DBNotConnectedError, errcode.Code(err))

	assert.NoError(t, op.Close())
}
