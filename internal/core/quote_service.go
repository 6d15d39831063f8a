package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type CreateQuoteInput struct {
	CompanyCode string
	Description string
	Quantity    int
}

// QuoteService tracks quote requests from customers. A quote moves
// REQUESTED → QUOTED once priced, then ACCEPTED or DECLINED; acceptance is
// what feeds job creation upstream.
type QuoteService interface {
	Create(ctx context.Context, input CreateQuoteInput) (*Quote, error)
	GetByID(ctx context.Context, id int) (*Quote, error)
	List(ctx context.Context) ([]Quote, error)
	// Price attaches a total and moves the quote to QUOTED.
	Price(ctx context.Context, id int, total decimal.Decimal) (*Quote, error)
	Accept(ctx context.Context, id int) (*Quote, error)
	Decline(ctx context.Context, id int) (*Quote, error)
}

type quoteService struct {
	pool      *pgxpool.Pool
	companies CompanyService
}

func NewQuoteService(pool *pgxpool.Pool, companies CompanyService) QuoteService {
	return &quoteService{pool: pool, companies: companies}
}

func (s *quoteService) Create(ctx context.Context, input CreateQuoteInput) (*Quote, error) {
	if input.Quantity < 0 {
		return nil, newValidationError("quantity", "cannot be negative")
	}
	company, err := s.companies.GetByCode(ctx, input.CompanyCode)
	if err != nil {
		return nil, err
	}
	if company.Role != RoleCustomer {
		return nil, newValidationError("company", fmt.Sprintf("%s is not a customer account", company.Code))
	}

	year := time.Now().Year()
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin transaction: %w", err)
		}

		quoteNumber, err := NextQuoteNumber(ctx, tx, year)
		if err != nil {
			tx.Rollback(ctx)
			return nil, err
		}

		var quoteID int
		err = tx.QueryRow(ctx, `
			INSERT INTO quotes (quote_number, company_id, description, quantity, status)
			VALUES ($1, $2, $3, $4, 'REQUESTED')
			RETURNING id`,
			quoteNumber, company.ID, input.Description, input.Quantity,
		).Scan(&quoteID)
		if err != nil {
			tx.Rollback(ctx)
			if isUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("insert quote: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit quote creation: %w", err)
		}
		return s.GetByID(ctx, quoteID)
	}

	return nil, fmt.Errorf("%w: quote number allocation raced %d times", ErrConflict, maxNumberRetries)
}

const quoteSelect = `
	SELECT q.id, q.quote_number, q.company_id, c.code, q.description, q.quantity,
	       q.status, q.total, q.created_at, q.quoted_at, q.decided_at
	FROM quotes q
	JOIN companies c ON c.id = q.company_id`

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID, &q.QuoteNumber, &q.CompanyID, &q.CompanyCode, &q.Description, &q.Quantity,
		&q.Status, &q.Total, &q.CreatedAt, &q.QuotedAt, &q.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *quoteService) GetByID(ctx context.Context, id int) (*Quote, error) {
	quote, err := scanQuote(s.pool.QueryRow(ctx, quoteSelect+" WHERE q.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quote %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch quote %d: %w", id, err)
	}
	return quote, nil
}

func (s *quoteService) List(ctx context.Context) ([]Quote, error) {
	rows, err := s.pool.Query(ctx, quoteSelect+" ORDER BY q.id DESC")
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		var q Quote
		if err := rows.Scan(
			&q.ID, &q.QuoteNumber, &q.CompanyID, &q.CompanyCode, &q.Description, &q.Quantity,
			&q.Status, &q.Total, &q.CreatedAt, &q.QuotedAt, &q.DecidedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (s *quoteService) Price(ctx context.Context, id int, total decimal.Decimal) (*Quote, error) {
	if total.IsNegative() {
		return nil, newValidationError("total", "cannot be negative")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.lockStatus(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if current != QuoteRequested {
		return nil, newValidationError("status",
			fmt.Sprintf("quote cannot be priced: status is %s (must be %s)", current, QuoteRequested))
	}

	if _, err := tx.Exec(ctx,
		"UPDATE quotes SET status = $1, total = $2, quoted_at = NOW() WHERE id = $3",
		QuoteQuoted, total, id,
	); err != nil {
		return nil, fmt.Errorf("price quote %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit quote pricing: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *quoteService) Accept(ctx context.Context, id int) (*Quote, error) {
	return s.decide(ctx, id, QuoteAccepted)
}

func (s *quoteService) Decline(ctx context.Context, id int) (*Quote, error) {
	return s.decide(ctx, id, QuoteDeclined)
}

func (s *quoteService) decide(ctx context.Context, id int, outcome QuoteStatus) (*Quote, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.lockStatus(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if current != QuoteQuoted {
		return nil, newValidationError("status",
			fmt.Sprintf("quote cannot be decided: status is %s (must be %s)", current, QuoteQuoted))
	}

	if _, err := tx.Exec(ctx,
		"UPDATE quotes SET status = $1, decided_at = NOW() WHERE id = $2",
		outcome, id,
	); err != nil {
		return nil, fmt.Errorf("decide quote %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit quote decision: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *quoteService) lockStatus(ctx context.Context, tx pgx.Tx, id int) (QuoteStatus, error) {
	var current QuoteStatus
	err := tx.QueryRow(ctx, "SELECT status FROM quotes WHERE id = $1 FOR UPDATE", id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("quote %d: %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("fetch quote %d: %w", id, err)
	}
	return current, nil
}
