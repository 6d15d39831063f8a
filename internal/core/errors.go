package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound marks lookups for jobs, POs, invoices or companies that do
	// not exist. Terminal for the caller.
	ErrNotFound = errors.New("not found")

	// ErrSequenceExhausted marks a vendor PO sequence that ran past 999.
	// Requires a new vendor code; never retried.
	ErrSequenceExhausted = errors.New("sequence exhausted")

	// ErrConflict marks a transient uniqueness race that survived the bounded
	// retry loop.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries field-level details for bad input. It maps to a
// 400 in the web adapter and is never retried.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func newValidationError(field, problem string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: problem}}
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505), the signal that a generated number raced.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// maxNumberRetries bounds the allocate-and-insert retry loop for generated
// numbers. Past this the conflict is surfaced as transient.
const maxNumberRetries = 3
