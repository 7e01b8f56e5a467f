package iotaxonomy

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gnames/gnuuid"
	"github.com/plantkeeper/pkdb/pkg/db"
	"github.com/plantkeeper/pkdb/pkg/parserpool"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"github.com/plantkeeper/pkdb/pkg/schema"
	"gorm.io/gorm"
)

type store struct {
	op   db.Operator
	pool parserpool.Pool
}

// NewStore creates a TaxonomyStore on top of a connected operator.
// The parser pool enriches species rows with canonical forms and is
// shared with the seeder.
func NewStore(op db.Operator, pool parserpool.Pool) pkdb.TaxonomyStore {
	return &store{op: op, pool: pool}
}

func (s *store) gorm(ctx context.Context) *gorm.DB {
	return s.op.Gorm().WithContext(ctx)
}

func (s *store) CreateFamily(
	ctx context.Context,
	name string,
) (*schema.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, EmptyNameError("family")
	}
	if err := s.checkDuplicate(ctx, &schema.Family{}, "family", name, 0); err != nil {
		return nil, err
	}

	fam := schema.Family{Name: name}
	if err := s.gorm(ctx).Create(&fam).Error; err != nil {
		return nil, QueryError(err)
	}
	return &fam, nil
}

func (s *store) CreateGenus(
	ctx context.Context,
	name string,
	familyID int64,
) (*schema.Genus, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, EmptyNameError("genus")
	}
	if err := s.parentExists(ctx, &schema.Family{}, "family", familyID); err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, &schema.Genus{}, "genus", name, 0); err != nil {
		return nil, err
	}

	if parsed := s.pool.Parse(name); !parsed.Parsed {
		slog.Warn("Genus name did not parse as a scientific name",
			"name", name,
		)
	}

	gen := schema.Genus{Name: name, FamilyID: familyID}
	if err := s.gorm(ctx).Create(&gen).Error; err != nil {
		return nil, QueryError(err)
	}
	return &gen, nil
}

func (s *store) CreateSpecies(
	ctx context.Context,
	name string,
	genusID int64,
	commonName *string,
) (*schema.Species, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, EmptyNameError("species")
	}
	if err := s.parentExists(ctx, &schema.Genus{}, "genus", genusID); err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, &schema.Species{}, "species", name, 0); err != nil {
		return nil, err
	}

	sp := schema.Species{
		Name:       name,
		GenusID:    genusID,
		CommonName: commonName,
		UUID:       gnuuid.New(name).String(),
	}
	s.enrichSpecies(&sp)

	if err := s.gorm(ctx).Create(&sp).Error; err != nil {
		return nil, QueryError(err)
	}
	return &sp, nil
}

// enrichSpecies fills canonical form and cardinality from gnparser.
// Unparseable names are kept as given, with cardinality 0.
func (s *store) enrichSpecies(sp *schema.Species) {
	parsed := s.pool.Parse(sp.Name)
	if !parsed.Parsed {
		slog.Warn("Species name did not parse as a scientific name",
			"name", sp.Name,
		)
		sp.Canonical = nil
		sp.Cardinality = 0
		return
	}
	canonical := parsed.Canonical.Simple
	sp.Canonical = &canonical
	sp.Cardinality = int(parsed.Cardinality)
}

func (s *store) ListFamilies(ctx context.Context) ([]schema.Family, error) {
	var res []schema.Family
	err := s.gorm(ctx).Order("name").Find(&res).Error
	if err != nil {
		return nil, QueryError(err)
	}
	return res, nil
}

func (s *store) ListGenera(
	ctx context.Context,
	familyID *int64,
) ([]schema.Genus, error) {
	q := s.gorm(ctx).Order("name")
	if familyID != nil {
		q = q.Where("family_id = ?", *familyID)
	}
	var res []schema.Genus
	if err := q.Find(&res).Error; err != nil {
		return nil, QueryError(err)
	}
	return res, nil
}

func (s *store) ListSpecies(
	ctx context.Context,
	genusID *int64,
) ([]schema.Species, error) {
	q := s.gorm(ctx).Order("name")
	if genusID != nil {
		q = q.Where("genus_id = ?", *genusID)
	}
	var res []schema.Species
	if err := q.Find(&res).Error; err != nil {
		return nil, QueryError(err)
	}
	return res, nil
}

func (s *store) FamilyByName(
	ctx context.Context,
	name string,
) (*schema.Family, error) {
	var fam schema.Family
	err := s.gorm(ctx).Where("name = ?", strings.TrimSpace(name)).Take(&fam).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NameNotFoundError("family", name)
	}
	if err != nil {
		return nil, QueryError(err)
	}
	return &fam, nil
}

func (s *store) GenusByName(
	ctx context.Context,
	name string,
) (*schema.Genus, error) {
	var gen schema.Genus
	err := s.gorm(ctx).Where("name = ?", strings.TrimSpace(name)).Take(&gen).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NameNotFoundError("genus", name)
	}
	if err != nil {
		return nil, QueryError(err)
	}
	return &gen, nil
}

func (s *store) SpeciesByName(
	ctx context.Context,
	name string,
) (*schema.Species, error) {
	var sp schema.Species
	err := s.gorm(ctx).Where("name = ?", strings.TrimSpace(name)).Take(&sp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NameNotFoundError("species", name)
	}
	if err != nil {
		return nil, QueryError(err)
	}
	return &sp, nil
}

func (s *store) GetSpecies(
	ctx context.Context,
	id int64,
) (*schema.Species, error) {
	var sp schema.Species
	err := s.gorm(ctx).Take(&sp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("species", id)
	}
	if err != nil {
		return nil, QueryError(err)
	}
	return &sp, nil
}

func (s *store) UpdateFamily(
	ctx context.Context,
	id int64,
	upd pkdb.FamilyUpdate,
) (*schema.Family, error) {
	var fam schema.Family
	err := s.gorm(ctx).Take(&fam, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("family", id)
	}
	if err != nil {
		return nil, QueryError(err)
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, EmptyNameError("family")
		}
		if name != fam.Name {
			if err := s.checkDuplicate(
				ctx, &schema.Family{}, "family", name, id,
			); err != nil {
				return nil, err
			}
			fam.Name = name
		}
	}

	if err := s.gorm(ctx).Save(&fam).Error; err != nil {
		return nil, QueryError(err)
	}
	return &fam, nil
}

func (s *store) UpdateGenus(
	ctx context.Context,
	id int64,
	upd pkdb.GenusUpdate,
) (*schema.Genus, error) {
	var gen schema.Genus
	err := s.gorm(ctx).Take(&gen, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("genus", id)
	}
	if err != nil {
		return nil, QueryError(err)
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, EmptyNameError("genus")
		}
		if name != gen.Name {
			if err := s.checkDuplicate(
				ctx, &schema.Genus{}, "genus", name, id,
			); err != nil {
				return nil, err
			}
			gen.Name = name
		}
	}
	if upd.FamilyID != nil && *upd.FamilyID != gen.FamilyID {
		if err := s.parentExists(
			ctx, &schema.Family{}, "family", *upd.FamilyID,
		); err != nil {
			return nil, err
		}
		gen.FamilyID = *upd.FamilyID
	}

	if err := s.gorm(ctx).Save(&gen).Error; err != nil {
		return nil, QueryError(err)
	}
	return &gen, nil
}

func (s *store) UpdateSpecies(
	ctx context.Context,
	id int64,
	upd pkdb.SpeciesUpdate,
) (*schema.Species, error) {
	var sp schema.Species
	err := s.gorm(ctx).Take(&sp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("species", id)
	}
	if err != nil {
		return nil, QueryError(err)
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, EmptyNameError("species")
		}
		if name != sp.Name {
			if err := s.checkDuplicate(
				ctx, &schema.Species{}, "species", name, id,
			); err != nil {
				return nil, err
			}
			sp.Name = name
			sp.UUID = gnuuid.New(name).String()
			s.enrichSpecies(&sp)
		}
	}
	if upd.GenusID != nil && *upd.GenusID != sp.GenusID {
		if err := s.parentExists(
			ctx, &schema.Genus{}, "genus", *upd.GenusID,
		); err != nil {
			return nil, err
		}
		sp.GenusID = *upd.GenusID
	}
	if upd.CommonName != nil {
		sp.CommonName = upd.CommonName
	}

	if err := s.gorm(ctx).Save(&sp).Error; err != nil {
		return nil, QueryError(err)
	}
	return &sp, nil
}

func (s *store) DeleteFamily(ctx context.Context, id int64) error {
	var fam schema.Family
	err := s.gorm(ctx).Take(&fam, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError("family", id)
	}
	if err != nil {
		return QueryError(err)
	}

	refs, err := s.countRefs(ctx, map[string]string{
		"plant_genus": "family_id",
		"plants":      "family_id",
	}, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ReferencedRowError("family", id, refs)
	}

	if err := s.gorm(ctx).Delete(&fam).Error; err != nil {
		return QueryError(err)
	}
	return nil
}

func (s *store) DeleteGenus(ctx context.Context, id int64) error {
	var gen schema.Genus
	err := s.gorm(ctx).Take(&gen, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError("genus", id)
	}
	if err != nil {
		return QueryError(err)
	}

	refs, err := s.countRefs(ctx, map[string]string{
		"plant_species": "genus_id",
		"plants":        "genus_id",
	}, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ReferencedRowError("genus", id, refs)
	}

	if err := s.gorm(ctx).Delete(&gen).Error; err != nil {
		return QueryError(err)
	}
	return nil
}

func (s *store) DeleteSpecies(ctx context.Context, id int64) error {
	var sp schema.Species
	err := s.gorm(ctx).Take(&sp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError("species", id)
	}
	if err != nil {
		return QueryError(err)
	}

	refs, err := s.countRefs(ctx, map[string]string{
		"plants": "species_id",
	}, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ReferencedRowError("species", id, refs)
	}

	if err := s.gorm(ctx).Delete(&sp).Error; err != nil {
		return QueryError(err)
	}
	return nil
}

func (s *store) Search(
	ctx context.Context,
	query string,
) ([]pkdb.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	pattern := "%" + query + "%"

	var hits []pkdb.SearchHit

	var fams []schema.Family
	err := s.gorm(ctx).
		Where("name LIKE ?", pattern).
		Order("name").
		Find(&fams).Error
	if err != nil {
		return nil, QueryError(err)
	}
	for _, f := range fams {
		hits = append(hits, pkdb.SearchHit{Kind: "family", ID: f.ID, Name: f.Name})
	}

	var gens []schema.Genus
	err = s.gorm(ctx).
		Where("name LIKE ?", pattern).
		Order("name").
		Find(&gens).Error
	if err != nil {
		return nil, QueryError(err)
	}
	for _, g := range gens {
		hits = append(hits, pkdb.SearchHit{Kind: "genus", ID: g.ID, Name: g.Name})
	}

	var sps []schema.Species
	err = s.gorm(ctx).
		Where("name LIKE ? OR common_name LIKE ?", pattern, pattern).
		Order("name").
		Find(&sps).Error
	if err != nil {
		return nil, QueryError(err)
	}
	for _, sp := range sps {
		hits = append(hits, pkdb.SearchHit{
			Kind:       "species",
			ID:         sp.ID,
			Name:       sp.Name,
			CommonName: sp.CommonName,
		})
	}

	return hits, nil
}

// checkDuplicate fails when another row of the model carries the
// name. excludeID skips the row being updated.
func (s *store) checkDuplicate(
	ctx context.Context,
	model any,
	kind, name string,
	excludeID int64,
) error {
	q := s.gorm(ctx).Model(model).Where("name = ?", name)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return QueryError(err)
	}
	if n > 0 {
		return DuplicateNameError(kind, name)
	}
	return nil
}

func (s *store) parentExists(
	ctx context.Context,
	model any,
	kind string,
	id int64,
) error {
	if id <= 0 {
		return MissingParentError(kind, id)
	}
	var n int64
	err := s.gorm(ctx).Model(model).Where("id = ?", id).Count(&n).Error
	if err != nil {
		return QueryError(err)
	}
	if n == 0 {
		return MissingParentError(kind, id)
	}
	return nil
}

// countRefs sums rows across child tables that reference one taxonomy
// row.
func (s *store) countRefs(
	ctx context.Context,
	tables map[string]string,
	id int64,
) (int64, error) {
	var total int64
	for table, column := range tables {
		var n int64
		err := s.gorm(ctx).
			Table(table).
			Where(column+" = ?", id).
			Count(&n).Error
		if err != nil {
			return 0, QueryError(err)
		}
		total += n
	}
	return total, nil
}
