package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no row matches, including ownership-filtered lookups.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownPrincipal is returned when a write references a user or admin that does not exist.
	ErrUnknownPrincipal = errors.New("principal does not exist")
	// ErrDuplicateEmail is returned when a class-scoped email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	return hasPgCode(err, pgUniqueViolation)
}

// isForeignKeyViolation reports a reference to a principal that no longer exists.
func isForeignKeyViolation(err error) bool {
	return hasPgCode(err, pgForeignKeyViolation)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
