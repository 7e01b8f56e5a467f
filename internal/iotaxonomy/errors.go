package iotaxonomy

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/plantkeeper/pkdb/pkg/errcode"
)

func EmptyNameError(kind string) error {
	return &gn.Error{
		Code: errcode.InvalidInputError,
		Msg:  fmt.Sprintf("A %s needs a name", kind),
		Err:  fmt.Errorf("empty %s name after trimming", kind),
	}
}

func DuplicateNameError(kind, name string) error {
	return &gn.Error{
		Code: errcode.DuplicateNameError,
		Msg:  fmt.Sprintf("A %s named %q already exists", kind, name),
		Err:  fmt.Errorf("duplicate %s name %q", kind, name),
	}
}

func MissingParentError(kind string, id int64) error {
	return &gn.Error{
		Code: errcode.MissingParentError,
		Msg:  fmt.Sprintf("Parent %s does not exist", kind),
		Err:  fmt.Errorf("parent %s id %d does not resolve", kind, id),
	}
}

func NotFoundError(kind string, id int64) error {
	return &gn.Error{
		Code: errcode.NotFoundError,
		Msg:  fmt.Sprintf("No such %s", kind),
		Err:  fmt.Errorf("%s id %d not found", kind, id),
	}
}

func NameNotFoundError(kind, name string) error {
	return &gn.Error{
		Code: errcode.NotFoundError,
		Msg:  fmt.Sprintf("No such %s", kind),
		Err:  fmt.Errorf("%s named %q not found", kind, name),
	}
}

func ReferencedRowError(kind string, id int64, refs int64) error {
	return &gn.Error{
		Code: errcode.ReferencedRowError,
		Msg: fmt.Sprintf(
			"Cannot delete this %s, %d records still reference it", kind, refs,
		),
		Err: fmt.Errorf("%s id %d has %d references", kind, id, refs),
	}
}

func QueryError(err error) error {
	return &gn.Error{
		Code: errcode.StoreQueryError,
		Msg:  "Taxonomy query failed",
		Err:  err,
	}
}
