package ioplant

import (
	"context"
	"testing"

	"github.com/plantkeeper/pkdb/internal/iodb"
	"github.com/plantkeeper/pkdb/internal/ioschema"
	"github.com/plantkeeper/pkdb/internal/iotaxonomy"
	"github.com/plantkeeper/pkdb/internal/iovalidate"
	"github.com/plantkeeper/pkdb/pkg/config"
	"github.com/plantkeeper/pkdb/pkg/db"
	"github.com/plantkeeper/pkdb/pkg/errcode"
	"github.com/plantkeeper/pkdb/pkg/parserpool"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"github.com/plantkeeper/pkdb/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	op       db.Operator
	plants   pkdb.PlantStore
	taxonomy pkdb.TaxonomyStore
	userID   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	op := iodb.NewSQLiteOperator()
	cfg := &config.DatabaseConfig{Path: ":memory:", BusyTimeoutMs: 500}
	require.NoError(t, op.Connect(ctx, cfg))
	t.Cleanup(func() { _ = op.Close() })
	require.NoError(t, ioschema.NewManager(op).Evolve(ctx))

	pool := parserpool.NewPool(2)
	t.Cleanup(pool.Close)

	user := schema.User{Username: "kay", Password: "x"}
	require.NoError(t, op.Gorm().Create(&user).Error)

	val := iovalidate.NewValidator(op)
	return &fixture{
		op:       op,
		plants:   NewStore(op, val),
		taxonomy: iotaxonomy.NewStore(op, pool),
		userID:   user.ID,
	}
}

func ptr[T any](v T) *T { return &v }

// seedLineage creates Araceae > Monstera > Monstera deliciosa.
func seedLineage(
	t *testing.T,
	f *fixture,
) (*schema.Family, *schema.Genus, *schema.Species) {
	t.Helper()
	ctx := context.Background()

	fam, err := f.taxonomy.CreateFamily(ctx, "Araceae")
	require.NoError(t, err)
	gen, err := f.taxonomy.CreateGenus(ctx, "Monstera", fam.ID)
	require.NoError(t, err)
	sp, err := f.taxonomy.CreateSpecies(
		ctx, "Monstera deliciosa", gen.ID, ptr("Swiss cheese plant"),
	)
	require.NoError(t, err)
	return fam, gen, sp
}

func TestCreate_FullLineage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fam, gen, sp := seedLineage(t, f)

	plant, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID:    f.userID,
		Name:      "Window monstera",
		FamilyID:  &fam.ID,
		GenusID:   &gen.ID,
		SpeciesID: &sp.ID,
		Notes:     ptr("by the window"),
	})
	require.NoError(t, err)
	assert.Positive(t, plant.ID)
	require.NotNil(t, plant.SpeciesID)
	assert.Equal(t, sp.ID, *plant.SpeciesID)
	assert.Nil(t, plant.PersonalCount, "no sidecar without IsPersonal")
}

// TestCreate_PartialLineage verifies that taxonomy references are
// independently optional: a plant can carry only a family, only a
// genus, or nothing at all.
func TestCreate_PartialLineage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fam, gen, _ := seedLineage(t, f)

	familyOnly, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID:   f.userID,
		Name:     "Some aroid",
		FamilyID: &fam.ID,
	})
	require.NoError(t, err)
	assert.NotNil(t, familyOnly.FamilyID)
	assert.Nil(t, familyOnly.GenusID)
	assert.Nil(t, familyOnly.SpeciesID)

	genusOnly, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID:  f.userID,
		Name:    "Unknown monstera",
		GenusID: &gen.ID,
	})
	require.NoError(t, err)
	assert.Nil(t, genusOnly.FamilyID)

	bare, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID: f.userID,
		Name:   "Mystery cutting",
	})
	require.NoError(t, err)
	assert.Nil(t, bare.FamilyID)
	assert.Nil(t, bare.GenusID)
	assert.Nil(t, bare.SpeciesID)
}

func TestCreate_ZeroIdsAreAbsent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	plant, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID:    f.userID,
		Name:      "Form client plant",
		FamilyID:  ptr(int64(0)),
		GenusID:   ptr(int64(-1)),
		SpeciesID: ptr(int64(0)),
	})
	require.NoError(t, err)
	assert.Nil(t, plant.FamilyID)
	assert.Nil(t, plant.GenusID)
	assert.Nil(t, plant.SpeciesID)
}

func TestCreate_DanglingReferenceRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID:    f.userID,
		Name:      "Ghost plant",
		SpeciesID: ptr(int64(424242)),
	})
	require.Error(t, err)
	assert.Equal(t, errcode.MissingReferenceError, errcode.Code(err))
}

func TestCreate_BadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID: f.userID,
		Name:   "   ",
	})
	require.Error(t, err)
	assert.Equal(t, errcode.InvalidInputError, errcode.Code(err))

	_, err = f.plants.Create(ctx, pkdb.PlantInput{
		UserID: 999,
		Name:   "Orphan plant",
	})
	require.Error(t, err)
	assert.Equal(t, errcode.MissingReferenceError, errcode.Code(err))
}

func TestCreate_TrimsName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	plant, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID: f.userID,
		Name:   "  Moss pole monstera  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Moss pole monstera", plant.Name)

	// Padded names must not skew the name ordering of List.
	_, err = f.plants.Create(ctx, pkdb.PlantInput{
		UserID: f.userID,
		Name:   "Aloe vera",
	})
	require.NoError(t, err)

	plants, err := f.plants.List(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, plants, 2)
	assert.Equal(t, "Aloe vera", plants[0].Name)
	assert.Equal(t, "Moss pole monstera", plants[1].Name)

	updated, err := f.plants.Update(ctx, plant.ID, pkdb.PlantInput{
		UserID: f.userID,
		Name:   " Monstera on moss pole ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Monstera on moss pole", updated.Name)
}

func TestCreate_PersonalSidecar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	plant, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID:        f.userID,
		Name:          "Shelf pothos",
		IsPersonal:    true,
		PersonalCount: ptr(int64(3)),
		ContainerType: ptr("terracotta"),
	})
	require.NoError(t, err)
	require.NotNil(t, plant.PersonalCount)
	assert.Equal(t, int64(3), *plant.PersonalCount)

	var pp schema.PersonalPlant
	require.NoError(t,
		f.op.Gorm().Where("plant_id = ?", plant.ID).Take(&pp).Error)
	require.NotNil(t, pp.ContainerType)
	assert.Equal(t, "terracotta", *pp.ContainerType)
}

func TestUpdate_SidecarFollowsFlag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	plant, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID:        f.userID,
		Name:          "Shelf pothos",
		IsPersonal:    true,
		PersonalCount: ptr(int64(2)),
	})
	require.NoError(t, err)

	// Flag off removes the sidecar.
	upd, err := f.plants.Update(ctx, plant.ID, pkdb.PlantInput{
		UserID: f.userID,
		Name:   "Shelf pothos",
	})
	require.NoError(t, err)
	assert.Nil(t, upd.PersonalCount)

	var n int64
	require.NoError(t, f.op.Gorm().
		Model(&schema.PersonalPlant{}).
		Where("plant_id = ?", plant.ID).
		Count(&n).Error)
	assert.Zero(t, n)

	// Flag back on recreates it with the new count.
	upd, err = f.plants.Update(ctx, plant.ID, pkdb.PlantInput{
		UserID:        f.userID,
		Name:          "Shelf pothos",
		IsPersonal:    true,
		PersonalCount: ptr(int64(5)),
	})
	require.NoError(t, err)
	require.NotNil(t, upd.PersonalCount)
	assert.Equal(t, int64(5), *upd.PersonalCount)
}

func TestUpdate_RevalidatesTaxonomy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fam, _, _ := seedLineage(t, f)

	plant, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID:   f.userID,
		Name:     "Some aroid",
		FamilyID: &fam.ID,
	})
	require.NoError(t, err)

	_, err = f.plants.Update(ctx, plant.ID, pkdb.PlantInput{
		UserID:   f.userID,
		Name:     "Some aroid",
		FamilyID: ptr(int64(424242)),
	})
	require.Error(t, err)
	assert.Equal(t, errcode.MissingReferenceError, errcode.Code(err))

	_, err = f.plants.Update(ctx, 424242, pkdb.PlantInput{
		UserID: f.userID,
		Name:   "Nobody",
	})
	require.Error(t, err)
	assert.Equal(t, errcode.NotFoundError, errcode.Code(err))
}

func TestList_OrderedWithCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID: f.userID, Name: "Zebra plant",
	})
	require.NoError(t, err)
	_, err = f.plants.Create(ctx, pkdb.PlantInput{
		UserID:        f.userID,
		Name:          "Aloe",
		IsPersonal:    true,
		PersonalCount: ptr(int64(4)),
	})
	require.NoError(t, err)

	plants, err := f.plants.List(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, plants, 2)
	assert.Equal(t, "Aloe", plants[0].Name)
	require.NotNil(t, plants[0].PersonalCount)
	assert.Equal(t, int64(4), *plants[0].PersonalCount)
	assert.Nil(t, plants[1].PersonalCount)

	other, err := f.plants.List(ctx, f.userID+1)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestDelete_RemovesDependents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	plant, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID:        f.userID,
		Name:          "Doomed fern",
		IsPersonal:    true,
		PersonalCount: ptr(int64(1)),
	})
	require.NoError(t, err)

	g := f.op.Gorm()
	require.NoError(t, g.Create(&schema.CareLog{
		PlantID: plant.ID, ActionType: "water",
	}).Error)
	require.NoError(t, g.Create(&schema.CareSchedule{
		PlantID: plant.ID, WateringInterval: ptr(int64(7)),
	}).Error)
	require.NoError(t, g.Create(&schema.MarketPrice{
		PlantID: plant.ID, DateChecked: "2026-08-01", Price: 12.50,
	}).Error)

	require.NoError(t, f.plants.Delete(ctx, plant.ID))

	for _, child := range []any{
		&schema.CareLog{}, &schema.CareSchedule{},
		&schema.MarketPrice{}, &schema.PersonalPlant{},
	} {
		var n int64
		require.NoError(t, g.Model(child).
			Where("plant_id = ?", plant.ID).Count(&n).Error)
		assert.Zero(t, n)
	}

	_, err = f.plants.Get(ctx, plant.ID)
	require.Error(t, err)
	assert.Equal(t, errcode.NotFoundError, errcode.Code(err))

	err = f.plants.Delete(ctx, plant.ID)
	require.Error(t, err)
	assert.Equal(t, errcode.NotFoundError, errcode.Code(err))
}
