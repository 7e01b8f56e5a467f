package errcode

import (
	"errors"

	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableCheckError
	DBColumnCheckError
	DBQueryTablesError
	DBForeignKeyCheckError

	// Schema evolution errors
	SchemaInventoryError
	SchemaSnapshotError
	SchemaDropTableError
	SchemaCreateTableError
	SchemaRebuildError
	SchemaAddColumnError
	SchemaTransactionError
	SchemaIntegrityViolationError

	// Validation and store errors
	InvalidInputError
	DuplicateNameError
	MissingParentError
	MissingReferenceError
	NotFoundError
	ReferencedRowError
	StoreQueryError

	// Seed errors
	SeedFileError
	SeedParseError
	SeedInsertError
)

// Code extracts the error code from an error produced by pkdb
// packages. Returns UnknownError for foreign errors or nil.
func Code(err error) gn.ErrorCode {
	var gnErr *gn.Error
	if errors.As(err, &gnErr) {
		return gnErr.Code
	}
	return UnknownError
}
