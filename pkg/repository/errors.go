package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// Errors names the domain errors a repository reports for common database
// failures. A nil field leaves the matching failure unchanged.
type Errors struct {
	NotFound  error
	Duplicate error
	Invalid   error
}

// Map translates err to a domain error. sql.ErrNoRows maps to NotFound,
// PostgreSQL unique violations (23505) to Duplicate, and check violations
// (23514) to Invalid wrapped with the constraint name.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && e.NotFound != nil {
		return e.NotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case pgErr.Code == pgUniqueViolation && e.Duplicate != nil:
		return e.Duplicate
	case pgErr.Code == pgCheckViolation && e.Invalid != nil:
		return fmt.Errorf("%w: %s", e.Invalid, pgErr.ConstraintName)
	}
	return err
}
