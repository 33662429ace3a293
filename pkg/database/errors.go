package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Storage-level sentinel errors. The services layer translates these into
// its own error vocabulary before they reach the API.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("record already exists")

	// ErrAccessCodeConflict indicates the generated meeting access code is
	// already taken and the caller should retry with a fresh code.
	ErrAccessCodeConflict = errors.New("access code already in use")
)

const uniqueViolationCode = "23505"

// uniqueConstraint returns the violated constraint name when err is a
// PostgreSQL unique violation, or "" otherwise.
func uniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return pgErr.ConstraintName
	}
	return ""
}
