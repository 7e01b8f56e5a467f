package ioschema

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/gnames/gnfmt"
	"github.com/plantkeeper/pkdb/internal/iodb"
	"github.com/plantkeeper/pkdb/pkg/db"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"github.com/plantkeeper/pkdb/pkg/schema"
)

// migrationName identifies the canonical taxonomy migration in the
// migrations history table. Recorded once per database.
const migrationName = "001_canonical_taxonomy"

type manager struct {
	op db.Operator
}

// NewManager creates a SchemaManager bound to a connected database
// operator.
func NewManager(op db.Operator) pkdb.SchemaManager {
	return &manager{op: op}
}

// Evolve brings the schema to the canonical layout. All structural
// work happens on one dedicated connection inside one transaction,
// with foreign key enforcement suspended for its duration. SQLite
// treats the foreign_keys pragma as a no-op inside a transaction, so
// it is toggled on the bare connection before and after.
func (m *manager) Evolve(ctx context.Context) error {
	start := time.Now()

	sqlDB := m.op.DB()
	if sqlDB == nil {
		return iodb.NotConnectedError()
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return TransactionError(err)
	}
	defer conn.Close()

	inv, err := loadInventory(ctx, conn)
	if err != nil {
		return err
	}

	shape := inv.Shape()
	slog.Info("Detected schema shape", "shape", shape.String())

	if !inv.needsMutation() {
		slog.Info("Schema is already canonical, nothing to change")
		// A database that was corrupted outside this tool still has
		// to fail loudly, so the integrity scan always runs.
		return m.checkIntegrity(ctx, conn)
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return TransactionError(err)
	}
	defer func() {
		_, _ = conn.ExecContext(
			context.WithoutCancel(ctx), "PRAGMA foreign_keys = ON",
		)
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return TransactionError(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := dropLegacyDuplicates(ctx, tx, inv); err != nil {
		return err
	}
	if err := fixFamilyHierarchy(ctx, tx, inv); err != nil {
		return err
	}
	if err := createMissingTables(ctx, tx, inv); err != nil {
		return err
	}
	if err := rebuildPlants(ctx, tx, inv); err != nil {
		return err
	}
	if err := addMissingColumns(ctx, tx); err != nil {
		return err
	}
	if err := recordMigration(ctx, tx); err != nil {
		return err
	}

	violations, err := iodb.ForeignKeyCheck(ctx, tx)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return NewIntegrityViolationError(violations)
	}

	if err := tx.Commit(); err != nil {
		return TransactionError(err)
	}
	committed = true

	slog.Info("Schema evolution complete",
		"shape", shape.String(),
		"time", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return nil
}

// Verify runs the foreign key scan without changing anything.
func (m *manager) Verify(ctx context.Context) error {
	violations, err := m.op.ForeignKeyCheck(ctx)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return NewIntegrityViolationError(violations)
	}
	return nil
}

func (m *manager) checkIntegrity(ctx context.Context, conn *sql.Conn) error {
	violations, err := iodb.ForeignKeyCheck(ctx, conn)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return NewIntegrityViolationError(violations)
	}
	return nil
}

// createMissingTables creates every canonical table absent from the
// inventory, with its indexes, in dependency order.
func createMissingTables(
	ctx context.Context,
	tx execQueryer,
	inv *inventory,
) error {
	for _, model := range schema.AllTables() {
		name := model.TableName()
		if inv.has(name) {
			continue
		}
		if _, err := tx.ExecContext(ctx, model.TableDDL()); err != nil {
			return CreateTableError(name, err)
		}
		for _, idx := range model.IndexDDL() {
			if _, err := tx.ExecContext(ctx, idx); err != nil {
				return CreateTableError(name, err)
			}
		}
		slog.Info("Created table", "table", name)
	}
	return nil
}

// addMissingColumns adds canonical columns that existing tables lack.
// Column presence is re-read from SQLite here because earlier steps
// may have created or rebuilt tables.
func addMissingColumns(ctx context.Context, tx execQueryer) error {
	for _, model := range schema.AllTables() {
		name := model.TableName()
		existing, err := tableColumns(ctx, tx, name)
		if err != nil {
			return err
		}
		present := make(map[string]bool, len(existing))
		for _, ci := range existing {
			present[ci.name] = true
		}

		for _, col := range schema.Columns(model) {
			if present[col.Name] {
				continue
			}
			ddl, ok := addableDDL(col.DDL)
			if !ok {
				continue
			}
			_, err := tx.ExecContext(ctx,
				"ALTER TABLE "+name+" ADD COLUMN "+col.Name+" "+ddl,
			)
			if err != nil {
				return AddColumnError(name, col.Name, err)
			}
			slog.Info("Added column", "table", name, "column", col.Name)
		}
	}
	return nil
}

// addableDDL rewrites a column definition into a form ALTER TABLE
// accepts. SQLite rejects added columns that are primary keys, carry
// UNIQUE, or default to a non-constant expression.
func addableDDL(ddl string) (string, bool) {
	upper := strings.ToUpper(ddl)
	if strings.Contains(upper, "PRIMARY KEY") {
		return "", false
	}
	ddl = strings.ReplaceAll(ddl, " UNIQUE", "")
	if i := strings.Index(strings.ToUpper(ddl), " DEFAULT CURRENT_TIMESTAMP"); i >= 0 {
		ddl = ddl[:i] + ddl[i+len(" DEFAULT CURRENT_TIMESTAMP"):]
	}
	// A NOT NULL column without a default cannot be added to a table
	// that already has rows.
	upper = strings.ToUpper(ddl)
	if strings.Contains(upper, "NOT NULL") && !strings.Contains(upper, "DEFAULT") {
		ddl = strings.ReplaceAll(ddl, " NOT NULL", "")
	}
	return strings.TrimSpace(ddl), true
}

// recordMigration marks the canonical migration as applied. The
// insert is idempotent; a rerun leaves the original timestamp.
func recordMigration(ctx context.Context, tx execQueryer) error {
	_, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO migrations (name) VALUES (?)", migrationName,
	)
	if err != nil {
		return CreateTableError("migrations", err)
	}
	return nil
}
