package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func violation(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsDuplicateConstraintError reports a unique violation of the named constraint
func IsDuplicateConstraintError(err error, constraintName string) bool {
	return violation(err, codeUniqueViolation, constraintName)
}

// IsForeignKeyViolation reports a foreign key violation; an empty name matches any constraint
func IsForeignKeyViolation(err error, constraintName string) bool {
	return violation(err, codeForeignKeyViolation, constraintName)
}
