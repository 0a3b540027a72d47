package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation raised by
// Postgres (pgx or lib/pq) or sqlite. When constraintName is set, the constraint
// must match as well.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgUniqueViolation && matchesConstraint(pgxErr.ConstraintName, constraintName)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation && matchesConstraint(pqErr.Constraint, constraintName)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}

func matchesConstraint(actual, expected string) bool {
	return expected == "" || actual == expected
}

// TranslateIntegrity turns raw storage constraint violations into the generic
// integrity error. Typed errors and unrelated failures pass through untouched.
func TranslateIntegrity(err error) error {
	if err == nil || pkgerrors.As(err) != nil {
		return err
	}
	if IsUniqueViolation(err, "") || isForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeIntegrity, err, pkgerrors.IntegrityMessage)
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == "23503"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
