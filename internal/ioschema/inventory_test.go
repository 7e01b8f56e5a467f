package ioschema

import (
	"context"
	"testing"

	"github.com/plantkeeper/pkdb/pkg/db"
	"github.com/plantkeeper/pkdb/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestInventory(t *testing.T, op db.Operator) *inventory {
	t.Helper()
	ctx := context.Background()
	conn, err := op.DB().Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	inv, err := loadInventory(ctx, conn)
	require.NoError(t, err)
	return inv
}

func TestShape_Empty(t *testing.T) {
	op := testOperator(t)
	inv := loadTestInventory(t, op)
	assert.Equal(t, schema.ShapeEmpty, inv.Shape())
	assert.True(t, inv.needsMutation())
}

func TestShape_Canonical(t *testing.T) {
	ctx := context.Background()
	op := testOperator(t)
	require.NoError(t, NewManager(op).Evolve(ctx))

	inv := loadTestInventory(t, op)
	assert.Equal(t, schema.ShapeCanonical, inv.Shape())
	assert.False(t, inv.needsMutation())
}

func TestShape_LegacyGenius(t *testing.T) {
	op := testOperator(t)
	mustExec(t, op, "CREATE TABLE plant_genius (id INTEGER PRIMARY KEY, name TEXT)")

	inv := loadTestInventory(t, op)
	assert.Equal(t, schema.ShapeLegacyGenius, inv.Shape())
}

func TestShape_LegacyTextTaxonomy(t *testing.T) {
	op := testOperator(t)
	mustExec(t, op, `CREATE TABLE plants (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		species TEXT,
		family TEXT,
		genus TEXT
	)`)

	inv := loadTestInventory(t, op)
	assert.Equal(t, schema.ShapeLegacyTextTaxonomy, inv.Shape())
	assert.ElementsMatch(t,
		[]string{"species", "family", "genus"}, inv.plantTextColumns())
}

func TestShape_LegacyFamilyHierarchy(t *testing.T) {
	op := testOperator(t)
	mustExec(t, op, `CREATE TABLE plant_family (
		id INTEGER PRIMARY KEY,
		name TEXT,
		species_id INTEGER,
		genius_id INTEGER
	)`)

	inv := loadTestInventory(t, op)
	assert.Equal(t, schema.ShapeLegacyFamilyHierarchy, inv.Shape())
	assert.True(t, inv.familyHierarchyInverted())
}

func TestShape_Mixed(t *testing.T) {
	op := testOperator(t)
	mustExec(t, op, "CREATE TABLE plant_genius (id INTEGER PRIMARY KEY, name TEXT)")
	mustExec(t, op, `CREATE TABLE plants (
		id INTEGER PRIMARY KEY, user_id INTEGER, name TEXT, genus TEXT
	)`)

	inv := loadTestInventory(t, op)
	assert.Equal(t, schema.ShapeMixed, inv.Shape())
}

func TestShape_BareDuplicatesAreMixed(t *testing.T) {
	op := testOperator(t)
	mustExec(t, op, "CREATE TABLE family (id INTEGER PRIMARY KEY, name TEXT)")
	mustExec(t, op, "CREATE TABLE market_prices (id INTEGER PRIMARY KEY)")

	inv := loadTestInventory(t, op)
	assert.Equal(t, schema.ShapeMixed, inv.Shape())
	assert.Equal(t, []string{"family", "market_prices"}, inv.duplicates())
}

// TestShape_CareTipsSpeciesColumnIsNotLegacy guards against the
// care_tips table being mistaken for a legacy marker; its species
// column is text in the canonical layout too.
func TestShape_CareTipsSpeciesColumnIsNotLegacy(t *testing.T) {
	ctx := context.Background()
	op := testOperator(t)
	require.NoError(t, NewManager(op).Evolve(ctx))

	inv := loadTestInventory(t, op)
	assert.True(t, inv.hasColumn("care_tips", "species"))
	assert.Equal(t, schema.ShapeCanonical, inv.Shape())
}
