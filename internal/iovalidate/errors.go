package iovalidate

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/plantkeeper/pkdb/pkg/errcode"
)

func EmptyNameError() error {
	return &gn.Error{
		Code: errcode.InvalidInputError,
		Msg:  "Name is required",
		Err:  fmt.Errorf("empty name after trimming"),
	}
}

func MissingReferenceError(kind string, id int64) error {
	return &gn.Error{
		Code: errcode.MissingReferenceError,
		Msg:  fmt.Sprintf("Invalid %s reference", kind),
		Err:  fmt.Errorf("%s id %d does not exist", kind, id),
	}
}

func QueryError(err error) error {
	return &gn.Error{
		Code: errcode.StoreQueryError,
		Msg:  "Reference check failed",
		Err:  err,
	}
}
