package iodb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnlib"
	"github.com/plantkeeper/pkdb/pkg/errcode"
)

// ConnectionError is returned when opening the database file fails.
type ConnectionError struct {
	error
	gnlib.MessageBase
}

// NewConnectionError creates a connection error with a user-friendly
// message.
func NewConnectionError(path string, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Database Connection Failed</title>

<warning>Could not open the PlantKeeper SQLite database.</warning>

<em>Possible causes:</em>
  • The data directory does not exist or is not writable
  • Another process holds an exclusive lock on the file
  • The file is not a SQLite database

<em>How to fix:</em>
  1. Check the path exists and is writable:
     <em>%s</em>

  2. Review the database settings in your config file:
     <em>~/.config/pkdb/pkdb.yaml</em>
`,
		[]any{path},
	)

	return ConnectionError{
		error:       fmt.Errorf("failed to open %s: %w", path, cause),
		MessageBase: userBase,
	}
}

// NotConnectedError is returned when an operation is attempted before
// Connect.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Database operation attempted without connection",
		Err:  fmt.Errorf("not connected to database"),
	}
}

// QueryTablesError is returned when listing tables fails.
func QueryTablesError(err error) error {
	return &gn.Error{
		Code: errcode.DBQueryTablesError,
		Msg:  "Cannot list database tables",
		Err:  fmt.Errorf("query sqlite_master: %w", err),
	}
}

// TableExistsCheckError is returned when a table existence check fails.
func TableExistsCheckError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  fmt.Sprintf("Cannot check if table '%s' exists", table),
		Err:  fmt.Errorf("table check %s: %w", table, err),
	}
}

// ColumnCheckError is returned when column introspection fails.
func ColumnCheckError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBColumnCheckError,
		Msg:  fmt.Sprintf("Cannot read columns of table '%s'", table),
		Err:  fmt.Errorf("table_info %s: %w", table, err),
	}
}

// ForeignKeyCheckError is returned when the integrity scan itself
// fails (not when it finds violations).
func ForeignKeyCheckError(err error) error {
	return &gn.Error{
		Code: errcode.DBForeignKeyCheckError,
		Msg:  "Cannot run foreign key consistency scan",
		Err:  fmt.Errorf("foreign_key_check: %w", err),
	}
}
