package schema

// Shape is the detected layout of an existing database, derived from
// table and column inventory only (no data scan). Each legacy shape
// has its own migration path in the evolution engine; modelling the
// detection as an enum keeps those paths explicit and testable.
type Shape int

const (
	// ShapeEmpty: no tables at all; a fresh database.
	ShapeEmpty Shape = iota

	// ShapeCanonical: current layout, nothing to migrate.
	ShapeCanonical

	// ShapeLegacyGenius: the misnamed plant_genius table is present
	// (the genus level was once spelled "genius").
	ShapeLegacyGenius

	// ShapeLegacyTextTaxonomy: the plants table still carries free-text
	// taxonomy columns instead of foreign keys.
	ShapeLegacyTextTaxonomy

	// ShapeLegacyFamilyHierarchy: plant_family carries a species_id or
	// genius_id column, i.e. the hierarchy once pointed the wrong way.
	ShapeLegacyFamilyHierarchy

	// ShapeMixed: more than one legacy marker, or duplicate legacy
	// tables (species, genius, family, ...) coexist with canonical ones.
	ShapeMixed
)

func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeCanonical:
		return "canonical"
	case ShapeLegacyGenius:
		return "legacy-genius-naming"
	case ShapeLegacyTextTaxonomy:
		return "legacy-text-taxonomy"
	case ShapeLegacyFamilyHierarchy:
		return "legacy-family-hierarchy"
	case ShapeMixed:
		return "mixed-legacy"
	default:
		return "unknown"
	}
}

// Violation is one row of PRAGMA foreign_key_check output: a row whose
// reference column points to a non-existent row in the parent table.
type Violation struct {
	// Table holding the dangling reference.
	Table string

	// RowID of the offending row; -1 when the table has no rowid.
	RowID int64

	// Parent is the referenced table.
	Parent string

	// FKIndex is the index of the violated foreign key constraint.
	FKIndex int64
}
