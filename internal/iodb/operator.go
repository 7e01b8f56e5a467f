// Package iodb implements database operations over an embedded
// SQLite file. This is an impure I/O package that implements
// contracts defined in pkg/.
package iodb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/plantkeeper/pkdb/pkg/config"
	"github.com/plantkeeper/pkdb/pkg/db"
	"github.com/plantkeeper/pkdb/pkg/schema"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqliteOperator implements db.Operator. The GORM session and the raw
// *sql.DB share a single connection, so per-connection PRAGMA state
// set by the evolution engine applies to store queries as well.
type sqliteOperator struct {
	gormDB *gorm.DB
	sqlDB  *sql.DB
}

// NewSQLiteOperator creates a new database operator
// (without connecting).
func NewSQLiteOperator() db.Operator {
	return &sqliteOperator{}
}

// Connect opens the SQLite database file, creating it when missing.
// Foreign key enforcement is switched on; the evolution engine
// suspends it explicitly for structural edits.
func (o *sqliteOperator) Connect(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	gormDB, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return NewConnectionError(cfg.Path, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return NewConnectionError(cfg.Path, err)
	}

	// One connection: SQLite serializes writes anyway, and a single
	// conn makes PRAGMA state and ":memory:" databases deterministic.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(
		ctx, "PRAGMA foreign_keys = ON",
	); err != nil {
		sqlDB.Close()
		return NewConnectionError(cfg.Path, err)
	}
	if cfg.BusyTimeoutMs > 0 {
		// PRAGMA does not take bound parameters.
		pragma := fmt.Sprintf(
			"PRAGMA busy_timeout = %d", cfg.BusyTimeoutMs,
		)
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			sqlDB.Close()
			return NewConnectionError(cfg.Path, err)
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return NewConnectionError(cfg.Path, err)
	}

	o.gormDB = gormDB
	o.sqlDB = sqlDB
	return nil
}

// Close releases the database connection.
func (o *sqliteOperator) Close() error {
	if o.sqlDB != nil {
		return o.sqlDB.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for raw SQL and PRAGMA work.
func (o *sqliteOperator) DB() *sql.DB {
	return o.sqlDB
}

// Gorm returns the GORM session used by the CRUD stores.
func (o *sqliteOperator) Gorm() *gorm.DB {
	return o.gormDB
}

// Tables lists all user tables, excluding SQLite internals.
func (o *sqliteOperator) Tables(ctx context.Context) ([]string, error) {
	if o.sqlDB == nil {
		return nil, NotConnectedError()
	}

	query := `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := o.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, QueryTablesError(err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, QueryTablesError(err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, QueryTablesError(err)
	}

	return tables, nil
}

// TableExists checks if a table exists in the database.
func (o *sqliteOperator) TableExists(
	ctx context.Context,
	tableName string,
) (bool, error) {
	if o.sqlDB == nil {
		return false, NotConnectedError()
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM sqlite_master
			WHERE type = 'table' AND name = ?
		)
	`

	var exists bool
	err := o.sqlDB.QueryRowContext(ctx, query, tableName).Scan(&exists)
	if err != nil {
		return false, TableExistsCheckError(tableName, err)
	}

	return exists, nil
}

// Columns returns the column names of a table in declaration order.
func (o *sqliteOperator) Columns(
	ctx context.Context,
	tableName string,
) ([]string, error) {
	if o.sqlDB == nil {
		return nil, NotConnectedError()
	}

	query := `SELECT name FROM pragma_table_info(?) ORDER BY cid`

	rows, err := o.sqlDB.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, ColumnCheckError(tableName, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ColumnCheckError(tableName, err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, ColumnCheckError(tableName, err)
	}

	return cols, nil
}

// ForeignKeyCheck scans the whole database for dangling references.
func (o *sqliteOperator) ForeignKeyCheck(
	ctx context.Context,
) ([]schema.Violation, error) {
	if o.sqlDB == nil {
		return nil, NotConnectedError()
	}
	return ForeignKeyCheck(ctx, o.sqlDB)
}

// queryer covers *sql.DB, *sql.Conn and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ForeignKeyCheck runs PRAGMA foreign_key_check on any connection-like
// handle. The evolution engine calls it inside its transaction, before
// commit.
func ForeignKeyCheck(
	ctx context.Context,
	q queryer,
) ([]schema.Violation, error) {
	rows, err := q.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return nil, ForeignKeyCheckError(err)
	}
	defer rows.Close()

	var res []schema.Violation
	for rows.Next() {
		var (
			table, parent string
			rowID         sql.NullInt64
			fkIndex       int64
		)
		if err := rows.Scan(&table, &rowID, &parent, &fkIndex); err != nil {
			return nil, ForeignKeyCheckError(err)
		}
		v := schema.Violation{
			Table:   table,
			RowID:   -1,
			Parent:  parent,
			FKIndex: fkIndex,
		}
		if rowID.Valid {
			v.RowID = rowID.Int64
		}
		res = append(res, v)
	}
	if err := rows.Err(); err != nil {
		return nil, ForeignKeyCheckError(err)
	}

	return res, nil
}
