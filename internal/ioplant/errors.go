package ioplant

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/plantkeeper/pkdb/pkg/errcode"
)

func NotFoundError(id int64) error {
	return &gn.Error{
		Code: errcode.NotFoundError,
		Msg:  "No such plant",
		Err:  fmt.Errorf("plant id %d not found", id),
	}
}

func MissingUserError(id int64) error {
	return &gn.Error{
		Code: errcode.MissingReferenceError,
		Msg:  "Invalid user reference",
		Err:  fmt.Errorf("user id %d does not exist", id),
	}
}

func PhotoNotFoundError(guid string) error {
	return &gn.Error{
		Code: errcode.NotFoundError,
		Msg:  "No such photo",
		Err:  fmt.Errorf("photo guid %s not found", guid),
	}
}

func QueryError(err error) error {
	return &gn.Error{
		Code: errcode.StoreQueryError,
		Msg:  "Plant query failed",
		Err:  err,
	}
}
