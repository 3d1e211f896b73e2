package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// UniqueViolationCode is the PostgreSQL SQLSTATE for unique_violation.
	UniqueViolationCode = "23505"

	// ForeignKeyViolationCode is the PostgreSQL SQLSTATE for foreign_key_violation.
	ForeignKeyViolationCode = "23503"
)

// ErrNotFound is returned by store lookups that matched no row.
var ErrNotFound = errors.New("db: record not found")

// IsUniqueViolation checks if the error is a PostgreSQL unique constraint violation (code 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == UniqueViolationCode
	}
	return false
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key violation (code 23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == ForeignKeyViolationCode
	}
	return false
}

// UniqueViolation builds the error a store returns when constraint is violated.
// In-memory stores use it so callers see the same error shape as Postgres.
func UniqueViolation(constraint string) error {
	return &pgconn.PgError{
		Code:           UniqueViolationCode,
		Message:        "duplicate key value violates unique constraint",
		ConstraintName: constraint,
	}
}

// NotFound maps pgx.ErrNoRows onto ErrNotFound and leaves other errors untouched.
func NotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
