package repository

import (
	errprocess "farmlink_service/pkg/err"

	"github.com/pkg/errors"
)

// unavailable marks a driver failure as transient
func unavailable(err error, op string) error {
	return errprocess.Wrap(errprocess.CodeUnavailable, "chat store unavailable", errors.Wrap(err, op))
}
