package pkdb

import (
	"context"
)

// Seeder imports taxonomy rows from a CSV file with
// family,genus,species,common_name columns. Existing names are reused,
// so seeding the same file twice changes nothing.
type Seeder interface {
	Seed(ctx context.Context, csvPath string) (*SeedSummary, error)
}

// SeedSummary reports what one seeding pass did.
type SeedSummary struct {
	// Rows is the number of data rows read from the file.
	Rows int

	// Families, Genera and Species count newly created rows, not
	// rows that already existed.
	Families int
	Genera   int
	Species  int

	// Unparsed counts species names gnparser could not parse; they are
	// imported anyway with cardinality 0.
	Unparsed int
}
