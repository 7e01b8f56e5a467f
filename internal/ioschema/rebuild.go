package ioschema

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/plantkeeper/pkdb/pkg/schema"
)

// rebuildPlants replaces a plants table that still carries free-text
// species, family or genus columns with the canonical foreign key
// layout. SQLite cannot drop columns on old library versions, so the
// replacement is built under a temporary name, filled with the
// columns both layouts share, and renamed over the original.
//
// Free-text taxonomy values are not resolved into foreign keys. Name
// matching against curated taxonomy rows is guesswork and a wrong
// match is worse than an empty field, so the values are counted,
// reported and left behind with the dropped table.
func rebuildPlants(
	ctx context.Context,
	tx execQueryer,
	inv *inventory,
) error {
	textCols := inv.plantTextColumns()
	if len(textCols) == 0 {
		return nil
	}

	for _, col := range textCols {
		var n int64
		row := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM plants WHERE "+col+
				" IS NOT NULL AND TRIM("+col+") <> ''",
		)
		if err := row.Scan(&n); err != nil {
			return RebuildError("plants", err)
		}
		if n > 0 {
			slog.Warn("Dropping free-text taxonomy column with data",
				"column", col,
				"rows", humanize.Comma(n),
			)
		}
	}

	snap, err := snapshotTable(ctx, tx, "plants")
	if err != nil {
		return err
	}

	plant := schema.Plant{}
	if _, err := tx.ExecContext(
		ctx, schema.TableDDLNamed(plant, "plants_new"),
	); err != nil {
		return RebuildError("plants", err)
	}

	// Copy only the columns present in both layouts. Foreign key
	// columns absent from the old table stay NULL.
	var shared []string
	for _, col := range schema.Columns(plant) {
		if snap.columnIndex(col.Name) >= 0 {
			shared = append(shared, col.Name)
		}
	}

	if len(shared) > 0 {
		colList := strings.Join(shared, ", ")
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO plants_new ("+colList+") SELECT "+colList+" FROM plants",
		); err != nil {
			return RebuildError("plants", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE plants"); err != nil {
		return DropTableError("plants", err)
	}
	if _, err := tx.ExecContext(ctx,
		"ALTER TABLE plants_new RENAME TO plants",
	); err != nil {
		return RebuildError("plants", err)
	}

	for _, idx := range plant.IndexDDL() {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return RebuildError("plants", err)
		}
	}

	slog.Info("Rebuilt plants with foreign key taxonomy columns",
		"rows", humanize.Comma(int64(len(snap.rows))),
		"dropped_columns", strings.Join(textCols, ", "),
	)
	return nil
}
