package core

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling the
// generators to run inside a caller's transaction.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	jobNumberPrefix     = "J"
	quoteNumberPrefix   = "Q"
	invoiceNumberPrefix = "INV"

	// yearSuffixCeiling caps the 6-digit year-scoped sequences.
	yearSuffixCeiling = 999999
	// vendorSuffixCeiling caps the 3-digit vendor PO sequence. A vendor code
	// that reaches it needs manual intervention (a new code); never wraps.
	vendorSuffixCeiling = 999
)

var vendorCodePattern = regexp.MustCompile(`^[0-9]{3}$`)

// NextJobNumber allocates the next J-YYYY-NNNNNN number for the given year by
// scanning the current maximum in scope. The unique index on jobs.job_number
// is the arbiter under concurrency; callers retry on a unique violation.
func NextJobNumber(ctx context.Context, q pgxQuerier, year int) (string, error) {
	return nextYearScopedNumber(ctx, q, "jobs", "job_number", jobNumberPrefix, year)
}

// NextQuoteNumber allocates the next Q-YYYY-NNNNNN number for the year.
func NextQuoteNumber(ctx context.Context, q pgxQuerier, year int) (string, error) {
	return nextYearScopedNumber(ctx, q, "quotes", "quote_number", quoteNumberPrefix, year)
}

// NextInvoiceNumber allocates the next INV-YYYY-NNNNNN number for the year.
func NextInvoiceNumber(ctx context.Context, q pgxQuerier, year int) (string, error) {
	return nextYearScopedNumber(ctx, q, "invoices", "invoice_number", invoiceNumberPrefix, year)
}

func nextYearScopedNumber(ctx context.Context, q pgxQuerier, table, column, prefix string, year int) (string, error) {
	scope := fmt.Sprintf("%s-%d-", prefix, year)

	var last string
	query := fmt.Sprintf("SELECT COALESCE(MAX(%s), '') FROM %s WHERE %s LIKE $1", column, table, column)
	if err := q.QueryRow(ctx, query, scope+"%").Scan(&last); err != nil {
		return "", fmt.Errorf("scan max %s: %w", column, err)
	}

	next, err := nextSuffix(last, scope, yearSuffixCeiling)
	if err != nil {
		return "", fmt.Errorf("%s scope %s: %w", column, scope, err)
	}
	return fmt.Sprintf("%s%06d", scope, next), nil
}

// NextVendorPONumber allocates the next XXX-YYY purchase order number for a
// 3-digit vendor code. The YYY sequence is vendor-scoped, never resets across
// years, and fails with ErrSequenceExhausted once it would exceed 999.
func NextVendorPONumber(ctx context.Context, q pgxQuerier, vendorCode string) (string, error) {
	if !vendorCodePattern.MatchString(vendorCode) {
		return "", newValidationError("vendor_code", fmt.Sprintf("must be exactly 3 digits, got %q", vendorCode))
	}

	scope := vendorCode + "-"
	var last string
	if err := q.QueryRow(ctx,
		"SELECT COALESCE(MAX(po_number), '') FROM purchase_orders WHERE po_number LIKE $1",
		scope+"%",
	).Scan(&last); err != nil {
		return "", fmt.Errorf("scan max po_number: %w", err)
	}

	next, err := nextSuffix(last, scope, vendorSuffixCeiling)
	if err != nil {
		return "", fmt.Errorf("vendor %s: %w", vendorCode, err)
	}
	return fmt.Sprintf("%s%03d", scope, next), nil
}

// nextSuffix parses the numeric tail of the last allocated number in a scope
// and increments it, enforcing the scope's ceiling. An empty last value
// starts the sequence at 1.
func nextSuffix(last, scope string, ceiling int) (int, error) {
	if last == "" {
		return 1, nil
	}
	tail := strings.TrimPrefix(last, scope)
	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0, fmt.Errorf("malformed sequence value %q: %w", last, err)
	}
	if n+1 > ceiling {
		return 0, fmt.Errorf("%w: next value %d exceeds ceiling %d", ErrSequenceExhausted, n+1, ceiling)
	}
	return n + 1, nil
}
