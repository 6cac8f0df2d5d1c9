// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// trapUniqueErr maps a psql unique violation to the given sentinel so a
// racing insert surfaces the same error as the service's pre-check.
func trapUniqueErr(err error, sentinel error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
		return sentinel
	}
	return err
}
