package pkdb

import (
	"context"

	"github.com/plantkeeper/pkdb/pkg/schema"
)

// TaxonomyStore owns the three taxonomy tables and enforces
// name-uniqueness and required-parent rules on writes. Deletion is
// restricted: a row still referenced by child taxonomy rows or by
// plants cannot be removed.
type TaxonomyStore interface {
	// CreateFamily inserts a new family. Fails with DuplicateNameError
	// if a family with that exact name already exists.
	CreateFamily(ctx context.Context, name string) (*schema.Family, error)

	// CreateGenus inserts a new genus under an existing family. Fails
	// with MissingParentError if familyID does not resolve.
	CreateGenus(ctx context.Context, name string, familyID int64) (*schema.Genus, error)

	// CreateSpecies inserts a new species under an existing genus.
	// Fails with MissingParentError if genusID does not resolve.
	CreateSpecies(ctx context.Context, name string, genusID int64, commonName *string) (*schema.Species, error)

	// ListFamilies returns all families ordered by name.
	ListFamilies(ctx context.Context) ([]schema.Family, error)

	// ListGenera returns genera ordered by name. A nil familyID returns
	// all rows (flat taxonomy browsers).
	ListGenera(ctx context.Context, familyID *int64) ([]schema.Genus, error)

	// ListSpecies returns species ordered by name. A nil genusID
	// returns all rows.
	ListSpecies(ctx context.Context, genusID *int64) ([]schema.Species, error)

	// FamilyByName looks a family up by exact name.
	FamilyByName(ctx context.Context, name string) (*schema.Family, error)

	// GenusByName looks a genus up by exact name.
	GenusByName(ctx context.Context, name string) (*schema.Genus, error)

	// SpeciesByName looks a species up by exact name.
	SpeciesByName(ctx context.Context, name string) (*schema.Species, error)

	// GetSpecies looks a species up by id.
	GetSpecies(ctx context.Context, id int64) (*schema.Species, error)

	// UpdateFamily applies the non-nil fields. NotFoundError when the
	// id does not resolve.
	UpdateFamily(ctx context.Context, id int64, upd FamilyUpdate) (*schema.Family, error)

	// UpdateGenus applies the non-nil fields, re-validating a changed
	// family reference.
	UpdateGenus(ctx context.Context, id int64, upd GenusUpdate) (*schema.Genus, error)

	// UpdateSpecies applies the non-nil fields, re-validating a changed
	// genus reference.
	UpdateSpecies(ctx context.Context, id int64, upd SpeciesUpdate) (*schema.Species, error)

	// DeleteFamily removes a family. ReferencedRowError while genera or
	// plants still reference it; NotFoundError when absent.
	DeleteFamily(ctx context.Context, id int64) error

	// DeleteGenus removes a genus. ReferencedRowError while species or
	// plants still reference it.
	DeleteGenus(ctx context.Context, id int64) error

	// DeleteSpecies removes a species. ReferencedRowError while plants
	// still reference it.
	DeleteSpecies(ctx context.Context, id int64) error

	// Search finds taxonomy rows of any level whose name or common
	// name contains the query, ordered by name within each level.
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

// FamilyUpdate lists the updatable fields of a family; nil means
// "leave unchanged".
type FamilyUpdate struct {
	Name *string
}

// GenusUpdate lists the updatable fields of a genus.
type GenusUpdate struct {
	Name     *string
	FamilyID *int64
}

// SpeciesUpdate lists the updatable fields of a species.
type SpeciesUpdate struct {
	Name       *string
	GenusID    *int64
	CommonName *string
}

// SearchHit is one taxonomy search result.
type SearchHit struct {
	// Kind is "family", "genus" or "species".
	Kind string `json:"kind"`

	ID   int64  `json:"id"`
	Name string `json:"name"`

	// CommonName is set for species hits only.
	CommonName *string `json:"commonName,omitempty"`
}
