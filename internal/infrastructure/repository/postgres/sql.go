package postgres

import (
	"database/sql"
	stderrors "errors"

	"github.com/lib/pq"
)

const (
	pqSerializationFailure pq.ErrorCode = "40001"
	pqDeadlockDetected     pq.ErrorCode = "40P01"
)

func isNotFound(err error) bool {
	return stderrors.Is(err, sql.ErrNoRows)
}

// IsTransient reports whether err is a contention failure that succeeds when
// the whole transaction is retried.
func IsTransient(err error) bool {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected
}
