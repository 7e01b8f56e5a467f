package pkdb

import (
	"context"
)

// Validator gate-checks writes before they reach the database. It is
// consumed by the plant store and by route handlers outside this
// subsystem.
type Validator interface {
	// NonEmptyName fails with InvalidInputError when the value is
	// empty after trimming.
	NonEmptyName(name string) error

	// TaxonomyRefs checks that every present, positive id resolves to
	// an existing row of the correct table. The failure names the kind
	// and id that did not resolve (MissingReferenceError). Zero and
	// negative ids are treated as absent: loosely-typed form clients
	// sometimes send 0 for "no selection".
	TaxonomyRefs(ctx context.Context, refs TaxonomyRefs) error
}

// TaxonomyRefs is the set of taxonomy ids attached to a plant write.
type TaxonomyRefs struct {
	FamilyID  *int64
	GenusID   *int64
	SpeciesID *int64
}
