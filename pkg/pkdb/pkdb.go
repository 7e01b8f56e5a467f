// Package pkdb defines the public contracts of the PlantKeeper
// database subsystem. Implementations live in internal/io* packages;
// everything here is pure interface and value types.
package pkdb

import (
	"context"
)

// SchemaManager brings an existing, possibly stale database schema up
// to the current normalized taxonomy model without data loss. It runs
// to completion before any other component touches the database.
// Evolution is idempotent - running it twice in a row is a no-op the
// second time.
type SchemaManager interface {
	// Evolve detects the present schema shape, migrates legacy layouts
	// forward inside a transaction, and verifies foreign key integrity
	// before commit. Any integrity violation is fatal: the transaction
	// is rolled back and the returned error carries
	// errcode.SchemaIntegrityViolationError.
	Evolve(ctx context.Context) error

	// Verify runs the full foreign key consistency scan without
	// mutating anything. Returns the same fatal error as Evolve when
	// violations are present.
	Verify(ctx context.Context) error
}
