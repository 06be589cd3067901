package cmd

import (
	"errors"

	"plusdb/dberrors"
)

func isAlreadyExists(err error) bool {
	return errors.Is(err, dberrors.ErrAlreadyExists)
}
