package ioschema

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/plantkeeper/pkdb/pkg/schema"
)

// snapshot is an in-memory copy of a table taken right before the
// table is dropped. Nothing is written back automatically; the rows
// stay reachable for the duration of the transaction so a restore
// step can pick from them.
type snapshot struct {
	table   string
	columns []string
	rows    [][]any
}

func (s *snapshot) columnIndex(name string) int {
	for i, c := range s.columns {
		if c == name {
			return i
		}
	}
	return -1
}

type execQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// snapshotTable reads every row of a table into memory.
func snapshotTable(
	ctx context.Context,
	tx execQueryer,
	table string,
) (*snapshot, error) {
	rows, err := tx.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, SnapshotError(table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, SnapshotError(table, err)
	}

	snap := &snapshot{table: table, columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, SnapshotError(table, err)
		}
		snap.rows = append(snap.rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, SnapshotError(table, err)
	}

	return snap, nil
}

// dropLegacyDuplicates removes tables from earlier schema
// generations. Every table is snapshotted first; the copies are kept
// in memory until the transaction commits. Rows in plant_genius
// cannot be carried over because the genus era recorded no family
// linkage, which the canonical plant_genus table requires.
func dropLegacyDuplicates(
	ctx context.Context,
	tx execQueryer,
	inv *inventory,
) error {
	for _, table := range inv.duplicates() {
		snap, err := snapshotTable(ctx, tx, table)
		if err != nil {
			return err
		}

		if len(snap.rows) > 0 {
			slog.Warn("Dropping legacy table with data",
				"table", table,
				"rows", humanize.Comma(int64(len(snap.rows))),
			)
		} else {
			slog.Info("Dropping empty legacy table", "table", table)
		}

		if _, err := tx.ExecContext(ctx, "DROP TABLE "+table); err != nil {
			return DropTableError(table, err)
		}
	}
	return nil
}

// fixFamilyHierarchy rebuilds plant_family when it carries the
// inverted layout where families pointed down to species and genus.
// Ids and names survive the rebuild so that plants.family_id
// references stay valid.
func fixFamilyHierarchy(
	ctx context.Context,
	tx execQueryer,
	inv *inventory,
) error {
	if !inv.familyHierarchyInverted() {
		return nil
	}

	snap, err := snapshotTable(ctx, tx, "plant_family")
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE plant_family"); err != nil {
		return DropTableError("plant_family", err)
	}

	fam := schema.Family{}
	if _, err := tx.ExecContext(ctx, fam.TableDDL()); err != nil {
		return CreateTableError("plant_family", err)
	}

	idIdx := snap.columnIndex("id")
	nameIdx := snap.columnIndex("name")
	if nameIdx < 0 {
		slog.Warn("Legacy plant_family has no name column, nothing to restore")
		return nil
	}

	var restored, skipped int64
	for _, row := range snap.rows {
		name := textValue(row[nameIdx])
		if strings.TrimSpace(name) == "" {
			skipped++
			continue
		}
		var res sql.Result
		if idIdx >= 0 {
			res, err = tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO plant_family (id, name) VALUES (?, ?)",
				row[idIdx], name,
			)
		} else {
			res, err = tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO plant_family (name) VALUES (?)",
				name,
			)
		}
		if err != nil {
			return RebuildError("plant_family", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			restored++
		} else {
			skipped++
		}
	}

	slog.Info("Rebuilt plant_family with correct hierarchy",
		"restored", humanize.Comma(restored),
		"skipped", humanize.Comma(skipped),
	)
	return nil
}

// textValue converts a raw SQLite value to a string. Drivers return
// TEXT either as string or as a byte slice.
func textValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
