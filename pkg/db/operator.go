package db

import (
	"context"
	"database/sql"

	"github.com/plantkeeper/pkdb/pkg/config"
	"github.com/plantkeeper/pkdb/pkg/schema"
	"gorm.io/gorm"
)

// Operator defines the interface for basic database management
// operations. It provides connection lifecycle management and exposes
// both the raw *sql.DB (for schema introspection and PRAGMA work that
// GORM cannot express) and the *gorm.DB session used by the CRUD
// stores. Both handles share one underlying connection, so PRAGMA
// statements issued through DB() are visible to the stores.
//
// Design rationale:
//   - Keeps interface minimal to avoid bloat with mixed semantics
//   - The evolution engine owns the schema; GORM never auto-migrates
//   - Constructed explicitly and passed in, never a package-level
//     singleton, so tests can run against isolated databases
type Operator interface {
	// Connect opens the SQLite database file (or an in-memory database
	// for tests) with foreign key enforcement on.
	Connect(ctx context.Context, cfg *config.DatabaseConfig) error

	// Close closes the database connection.
	Close() error

	// DB returns the underlying *sql.DB for raw SQL and PRAGMA work.
	DB() *sql.DB

	// Gorm returns the GORM session used by the CRUD stores.
	Gorm() *gorm.DB

	// Tables lists all user tables in the database.
	Tables(ctx context.Context) ([]string, error)

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// Columns returns the column names of a table in declaration order,
	// from PRAGMA table_info. Empty slice for a missing table.
	Columns(ctx context.Context, tableName string) ([]string, error)

	// ForeignKeyCheck runs PRAGMA foreign_key_check across the whole
	// database and reports every dangling reference.
	ForeignKeyCheck(ctx context.Context) ([]schema.Violation, error)
}
