package ioschema

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnlib"
	"github.com/plantkeeper/pkdb/pkg/errcode"
	"github.com/plantkeeper/pkdb/pkg/schema"
)

func InventoryError(err error) error {
	return &gn.Error{
		Code: errcode.SchemaInventoryError,
		Msg:  "cannot read schema inventory",
		Err:  err,
	}
}

func SnapshotError(table string, err error) error {
	return &gn.Error{
		Code: errcode.SchemaSnapshotError,
		Msg:  "cannot snapshot table before drop",
		Err:  fmt.Errorf("table %s: %w", table, err),
	}
}

func DropTableError(table string, err error) error {
	return &gn.Error{
		Code: errcode.SchemaDropTableError,
		Msg:  "cannot drop legacy table",
		Err:  fmt.Errorf("table %s: %w", table, err),
	}
}

func CreateTableError(table string, err error) error {
	return &gn.Error{
		Code: errcode.SchemaCreateTableError,
		Msg:  "cannot create table",
		Err:  fmt.Errorf("table %s: %w", table, err),
	}
}

func RebuildError(table string, err error) error {
	return &gn.Error{
		Code: errcode.SchemaRebuildError,
		Msg:  "cannot rebuild table",
		Err:  fmt.Errorf("table %s: %w", table, err),
	}
}

func AddColumnError(table, column string, err error) error {
	return &gn.Error{
		Code: errcode.SchemaAddColumnError,
		Msg:  "cannot add column",
		Err:  fmt.Errorf("table %s, column %s: %w", table, column, err),
	}
}

func TransactionError(err error) error {
	return &gn.Error{
		Code: errcode.SchemaTransactionError,
		Msg:  "schema evolution transaction failed",
		Err:  err,
	}
}

// IntegrityViolationError aborts an evolution or a verification when
// the database contains rows whose foreign keys point nowhere. It is
// user-facing: the operator has to repair the data by hand before the
// tool will touch the schema again.
type IntegrityViolationError struct {
	error
	gnlib.MessageBase
	Violations []schema.Violation
}

// NewIntegrityViolationError creates an error listing the foreign key
// violations that stopped a schema change.
func NewIntegrityViolationError(vs []schema.Violation) error {
	details := make([]string, len(vs))
	for i, v := range vs {
		row := "unknown row"
		if v.RowID >= 0 {
			row = fmt.Sprintf("rowid %d", v.RowID)
		}
		details[i] = fmt.Sprintf(
			"table %s, %s, references missing %s", v.Table, row, v.Parent,
		)
	}
	userBase := gnlib.NewMessage(
		`<title>Database Integrity Check Failed</title>

<warning>Found %d foreign key violations. No schema changes were applied.</warning>

The database contains rows that reference records which do not exist.
Repair these rows manually, then run the migration again.

<em>First violation:</em>
  %s

<em>To list all violations:</em>
  <em>pkdb check</em>
`,
		[]any{len(vs), details[0]},
	)

	gnErr := &gn.Error{
		Code: errcode.SchemaIntegrityViolationError,
		Msg:  "foreign key violations found",
		Err:  fmt.Errorf("%d violations: %s", len(vs), strings.Join(details, "; ")),
	}

	return &IntegrityViolationError{
		error:       gnErr,
		MessageBase: userBase,
		Violations:  vs,
	}
}

func (e *IntegrityViolationError) Unwrap() error {
	return e.error
}
