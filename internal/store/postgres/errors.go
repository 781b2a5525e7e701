// Package postgres implements the user and course stores on Postgres
// through database/sql and the pgx driver.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"
	usersEmailKey   = "users_email_key"
)

// isEmailConflict reports whether err is a unique violation on the users
// email index.
func isEmailConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == usersEmailKey
}
