package ioschema

import (
	"context"
	"database/sql"

	"github.com/plantkeeper/pkdb/pkg/schema"
)

// legacyDuplicateTables are tables from earlier schema generations
// that coexisted with (or predated) the canonical ones. Their
// canonical replacements are plant_species, plant_genus, plant_family,
// market_price, plant_propagation and plant_inventory.
var legacyDuplicateTables = []string{
	"species",
	"genius",
	"family",
	"plant_genius",
	"market_prices",
	"propagation",
	"inventory",
}

// legacyPlantTextColumns are free-text taxonomy columns the plants
// table carried before the move to foreign keys.
var legacyPlantTextColumns = []string{"species", "family", "genus"}

type columnInfo struct {
	name    string
	colType string
}

// inventory is the metadata-only snapshot of the present schema:
// table names and their columns, no data scanned.
type inventory struct {
	tables map[string][]columnInfo
}

// loadInventory lists all user tables and their columns through the
// given connection.
func loadInventory(ctx context.Context, conn *sql.Conn) (*inventory, error) {
	inv := &inventory{tables: make(map[string][]columnInfo)}

	rows, err := conn.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, InventoryError(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, InventoryError(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, InventoryError(err)
	}

	for _, name := range names {
		cols, err := tableColumns(ctx, conn, name)
		if err != nil {
			return nil, err
		}
		inv.tables[name] = cols
	}

	return inv, nil
}

type queryerCtx interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func tableColumns(
	ctx context.Context,
	q queryerCtx,
	table string,
) ([]columnInfo, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, InventoryError(err)
	}
	defer rows.Close()

	var cols []columnInfo
	for rows.Next() {
		var ci columnInfo
		if err := rows.Scan(&ci.name, &ci.colType); err != nil {
			return nil, InventoryError(err)
		}
		cols = append(cols, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, InventoryError(err)
	}

	return cols, nil
}

func (inv *inventory) has(table string) bool {
	_, ok := inv.tables[table]
	return ok
}

func (inv *inventory) hasColumn(table, column string) bool {
	for _, ci := range inv.tables[table] {
		if ci.name == column {
			return true
		}
	}
	return false
}

// duplicates returns which legacy duplicate tables are present, in
// the fixed drop order.
func (inv *inventory) duplicates() []string {
	var res []string
	for _, t := range legacyDuplicateTables {
		if inv.has(t) {
			res = append(res, t)
		}
	}
	return res
}

// plantTextColumns returns which free-text taxonomy columns the
// plants table still carries.
func (inv *inventory) plantTextColumns() []string {
	var res []string
	for _, c := range legacyPlantTextColumns {
		if inv.hasColumn("plants", c) {
			res = append(res, c)
		}
	}
	return res
}

// familyHierarchyInverted reports whether plant_family carries a
// species_id or genius_id column, the pre-fix layout where the
// hierarchy pointed from family down to species.
func (inv *inventory) familyHierarchyInverted() bool {
	return inv.hasColumn("plant_family", "species_id") ||
		inv.hasColumn("plant_family", "genius_id")
}

// Shape classifies the inventory into an explicit migration path.
func (inv *inventory) Shape() schema.Shape {
	if len(inv.tables) == 0 {
		return schema.ShapeEmpty
	}

	var markers []schema.Shape
	if inv.has("plant_genius") {
		markers = append(markers, schema.ShapeLegacyGenius)
	}
	if len(inv.plantTextColumns()) > 0 {
		markers = append(markers, schema.ShapeLegacyTextTaxonomy)
	}
	if inv.familyHierarchyInverted() {
		markers = append(markers, schema.ShapeLegacyFamilyHierarchy)
	}

	// Bare duplicate tables (species, genius, family, ...) alongside
	// anything else always mean a mixed generation database.
	var bareDups bool
	for _, t := range inv.duplicates() {
		if t != "plant_genius" {
			bareDups = true
		}
	}

	switch {
	case bareDups:
		return schema.ShapeMixed
	case len(markers) > 1:
		return schema.ShapeMixed
	case len(markers) == 1:
		return markers[0]
	default:
		return schema.ShapeCanonical
	}
}

// needsMutation reports whether anything structural is missing or
// legacy: a detected legacy shape, a missing canonical table, or a
// canonical column absent from an existing table.
func (inv *inventory) needsMutation() bool {
	if inv.Shape() != schema.ShapeCanonical {
		return true
	}
	for _, model := range schema.AllTables() {
		if !inv.has(model.TableName()) {
			return true
		}
		for _, col := range schema.Columns(model) {
			if !inv.hasColumn(model.TableName(), col.Name) {
				return true
			}
		}
	}
	return false
}
