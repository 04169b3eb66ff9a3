package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error class 23: integrity constraint violation.
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation. A
// non-empty constraint restricts the match to that named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolationCode {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
