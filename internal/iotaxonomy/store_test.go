package iotaxonomy

import (
	"context"
	"testing"

	"github.com/plantkeeper/pkdb/internal/iodb"
	"github.com/plantkeeper/pkdb/internal/ioschema"
	"github.com/plantkeeper/pkdb/pkg/config"
	"github.com/plantkeeper/pkdb/pkg/errcode"
	"github.com/plantkeeper/pkdb/pkg/parserpool"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) pkdb.TaxonomyStore {
	t.Helper()
	ctx := context.Background()

	op := iodb.NewSQLiteOperator()
	cfg := &config.DatabaseConfig{Path: ":memory:", BusyTimeoutMs: 500}
	require.NoError(t, op.Connect(ctx, cfg))
	t.Cleanup(func() { _ = op.Close() })
	require.NoError(t, ioschema.NewManager(op).Evolve(ctx))

	pool := parserpool.NewPool(2)
	t.Cleanup(pool.Close)

	return NewStore(op, pool)
}

func ptr[T any](v T) *T { return &v }

func TestCreateFamily(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	fam, err := st.CreateFamily(ctx, "  Araceae  ")
	require.NoError(t, err)
	assert.Equal(t, "Araceae", fam.Name, "name should be trimmed")
	assert.Positive(t, fam.ID)

	_, err = st.CreateFamily(ctx, "Araceae")
	require.Error(t, err)
	assert.Equal(t, errcode.DuplicateNameError, errcode.Code(err))

	_, err = st.CreateFamily(ctx, "   ")
	require.Error(t, err)
	assert.Equal(t, errcode.InvalidInputError, errcode.Code(err))
}

func TestCreateGenus(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	fam, err := st.CreateFamily(ctx, "Araceae")
	require.NoError(t, err)

	gen, err := st.CreateGenus(ctx, "Monstera", fam.ID)
	require.NoError(t, err)
	assert.Equal(t, fam.ID, gen.FamilyID)

	_, err = st.CreateGenus(ctx, "Monstera", fam.ID)
	require.Error(t, err)
	assert.Equal(t, errcode.DuplicateNameError, errcode.Code(err))

	_, err = st.CreateGenus(ctx, "Epipremnum", 999)
	require.Error(t, err)
	assert.Equal(t, errcode.MissingParentError, errcode.Code(err))
}

func TestCreateSpecies(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	fam, err := st.CreateFamily(ctx, "Araceae")
	require.NoError(t, err)
	gen, err := st.CreateGenus(ctx, "Monstera", fam.ID)
	require.NoError(t, err)

	sp, err := st.CreateSpecies(
		ctx, "Monstera deliciosa", gen.ID, ptr("Swiss cheese plant"),
	)
	require.NoError(t, err)
	assert.Equal(t, gen.ID, sp.GenusID)
	require.NotNil(t, sp.Canonical)
	assert.Equal(t, "Monstera deliciosa", *sp.Canonical)
	assert.Equal(t, 2, sp.Cardinality)
	assert.NotEmpty(t, sp.UUID)

	_, err = st.CreateSpecies(ctx, "Monstera adansonii", 999, nil)
	require.Error(t, err)
	assert.Equal(t, errcode.MissingParentError, errcode.Code(err))
}

func TestCreateSpecies_UnparseableName(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	fam, err := st.CreateFamily(ctx, "Araceae")
	require.NoError(t, err)
	gen, err := st.CreateGenus(ctx, "Monstera", fam.ID)
	require.NoError(t, err)

	// Imported anyway, just without parsed enrichment.
	sp, err := st.CreateSpecies(ctx, "not!a@scientific#name", gen.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, sp.Canonical)
	assert.Equal(t, 0, sp.Cardinality)
}

func TestLists(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	ara, err := st.CreateFamily(ctx, "Araceae")
	require.NoError(t, err)
	orc, err := st.CreateFamily(ctx, "Orchidaceae")
	require.NoError(t, err)

	_, err = st.CreateGenus(ctx, "Monstera", ara.ID)
	require.NoError(t, err)
	_, err = st.CreateGenus(ctx, "Epipremnum", ara.ID)
	require.NoError(t, err)
	_, err = st.CreateGenus(ctx, "Phalaenopsis", orc.ID)
	require.NoError(t, err)

	fams, err := st.ListFamilies(ctx)
	require.NoError(t, err)
	require.Len(t, fams, 2)
	assert.Equal(t, "Araceae", fams[0].Name)
	assert.Equal(t, "Orchidaceae", fams[1].Name)

	all, err := st.ListGenera(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Epipremnum", all[0].Name, "ordered by name")

	araGenera, err := st.ListGenera(ctx, &ara.ID)
	require.NoError(t, err)
	require.Len(t, araGenera, 2)
}

func TestByName(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	fam, err := st.CreateFamily(ctx, "Araceae")
	require.NoError(t, err)

	found, err := st.FamilyByName(ctx, "Araceae")
	require.NoError(t, err)
	assert.Equal(t, fam.ID, found.ID)

	_, err = st.FamilyByName(ctx, "Bromeliaceae")
	require.Error(t, err)
	assert.Equal(t, errcode.NotFoundError, errcode.Code(err))
}

func TestUpdateSpecies_RenameReparses(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	fam, err := st.CreateFamily(ctx, "Araceae")
	require.NoError(t, err)
	gen, err := st.CreateGenus(ctx, "Monstera", fam.ID)
	require.NoError(t, err)
	sp, err := st.CreateSpecies(ctx, "Monstera deliciosa", gen.ID, nil)
	require.NoError(t, err)
	oldUUID := sp.UUID

	upd, err := st.UpdateSpecies(ctx, sp.ID, pkdb.SpeciesUpdate{
		Name:       ptr("Monstera adansonii"),
		CommonName: ptr("Adanson's monstera"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Monstera adansonii", upd.Name)
	require.NotNil(t, upd.Canonical)
	assert.Equal(t, "Monstera adansonii", *upd.Canonical)
	assert.NotEqual(t, oldUUID, upd.UUID)
	require.NotNil(t, upd.CommonName)
	assert.Equal(t, "Adanson's monstera", *upd.CommonName)
}

func TestUpdateGenus_MovedToMissingFamilyFails(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	fam, err := st.CreateFamily(ctx, "Araceae")
	require.NoError(t, err)
	gen, err := st.CreateGenus(ctx, "Monstera", fam.ID)
	require.NoError(t, err)

	_, err = st.UpdateGenus(ctx, gen.ID, pkdb.GenusUpdate{
		FamilyID: ptr(int64(999)),
	})
	require.Error(t, err)
	assert.Equal(t, errcode.MissingParentError, errcode.Code(err))
}

func TestDeleteRestricted(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	fam, err := st.CreateFamily(ctx, "Araceae")
	require.NoError(t, err)
	gen, err := st.CreateGenus(ctx, "Monstera", fam.ID)
	require.NoError(t, err)

	// The family still has a genus under it.
	err = st.DeleteFamily(ctx, fam.ID)
	require.Error(t, err)
	assert.Equal(t, errcode.ReferencedRowError, errcode.Code(err))

	require.NoError(t, st.DeleteGenus(ctx, gen.ID))
	require.NoError(t, st.DeleteFamily(ctx, fam.ID))

	err = st.DeleteFamily(ctx, fam.ID)
	require.Error(t, err)
	assert.Equal(t, errcode.NotFoundError, errcode.Code(err))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	fam, err := st.CreateFamily(ctx, "Araceae")
	require.NoError(t, err)
	gen, err := st.CreateGenus(ctx, "Monstera", fam.ID)
	require.NoError(t, err)
	_, err = st.CreateSpecies(
		ctx, "Monstera deliciosa", gen.ID, ptr("Swiss cheese plant"),
	)
	require.NoError(t, err)

	hits, err := st.Search(ctx, "monstera")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "genus", hits[0].Kind)
	assert.Equal(t, "species", hits[1].Kind)

	// Common names are searched too.
	hits, err = st.Search(ctx, "cheese")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "species", hits[0].Kind)

	hits, err = st.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
