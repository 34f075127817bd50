package httperr

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateExclusionViolation   = "23P01"
)

// IsRetryableStorage reports whether err is a PostgreSQL failure that a
// fresh attempt of the same transaction can succeed on.
func IsRetryableStorage(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return true
	}
	return false
}

// IsExclusionConflict reports an exclusion constraint violation, raised when
// a database-level no-overlap constraint is installed on appointments.
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateExclusionViolation
}

// ClassifyStorage wraps retryable storage failures and context deadline
// expiry as TransientError and returns every other error unchanged.
func ClassifyStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return err
	}
	if IsRetryableStorage(err) || errors.Is(err, context.DeadlineExceeded) {
		return Transient(op, err)
	}
	return err
}
