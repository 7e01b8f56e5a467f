package ioseed

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/plantkeeper/pkdb/pkg/errcode"
)

func FileError(path string, err error) error {
	return &gn.Error{
		Code: errcode.SeedFileError,
		Msg:  "Cannot open seed file",
		Err:  fmt.Errorf("file %s: %w", path, err),
	}
}

func ParseError(path string, err error) error {
	return &gn.Error{
		Code: errcode.SeedParseError,
		Msg:  "Cannot parse seed file",
		Err:  fmt.Errorf("file %s: %w", path, err),
	}
}

func MissingColumnError(path, column string) error {
	return &gn.Error{
		Code: errcode.SeedParseError,
		Msg:  fmt.Sprintf("Seed file needs a %q column", column),
		Err:  fmt.Errorf("file %s: missing column %s", path, column),
	}
}

func InsertError(name string, err error) error {
	return &gn.Error{
		Code: errcode.SeedInsertError,
		Msg:  fmt.Sprintf("Cannot import %q", name),
		Err:  err,
	}
}
