package postgres

import (
	"database/sql"
	"errors"

	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// IsUniqueViolation reports whether err is a postgres unique constraint violation
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// WrapError converts driver errors into the application error taxonomy.
// entity names the table row in hints, e.g. "invoice".
func WrapError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ierr.WithError(err).
				WithHintf("%s already exists", entity).
				WithReportableDetails(map[string]any{"constraint": pqErr.Constraint}).
				Mark(ierr.ErrAlreadyExists)
		case pqSerializationFailure, pqDeadlockDetected:
			return ierr.WithError(err).
				WithHint("the operation conflicted with a concurrent change, please retry").
				Mark(ierr.ErrDatabase)
		}
	}

	return ierr.WithError(err).
		WithMessagef("%s query", entity).
		WithHintf("failed to access %s", entity).
		Mark(ierr.ErrDatabase)
}
