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

// CreateInvoiceInput holds the fields required to issue an invoice.
type CreateInvoiceInput struct {
	JobID           int
	FromCompanyCode string
	ToCompanyCode   string
	Amount          decimal.Decimal
	DueAt           *time.Time
}

// InvoiceService issues and advances invoices between companies. Creating a
// broker → customer invoice edge-triggers generation of the dependent vendor
// invoice chain for the same job (queued, at-least-once).
type InvoiceService interface {
	Create(ctx context.Context, input CreateInvoiceInput) (*Invoice, error)
	GetByID(ctx context.Context, id int) (*Invoice, error)
	ListByJob(ctx context.Context, jobID int) ([]Invoice, error)
	MarkSent(ctx context.Context, id int) (*Invoice, error)
	MarkPaid(ctx context.Context, id int) (*Invoice, error)
	// GenerateVendorChain creates the Bradford → Impact and JD Graphic →
	// Bradford invoices from the job's purchase orders, skipping hops whose
	// PO is missing or whose invoice already exists. Safe to re-run.
	GenerateVendorChain(ctx context.Context, jobID int) error
}

type invoiceService struct {
	pool       *pgxpool.Pool
	companies  CompanyService
	pos        PurchaseOrderService
	dispatcher *Dispatcher
}

func NewInvoiceService(pool *pgxpool.Pool, companies CompanyService, pos PurchaseOrderService, dispatcher *Dispatcher) InvoiceService {
	return &invoiceService{pool: pool, companies: companies, pos: pos, dispatcher: dispatcher}
}

func (s *invoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*Invoice, error) {
	if input.Amount.IsNegative() {
		return nil, newValidationError("amount", "cannot be negative")
	}
	from, err := s.companies.GetByCode(ctx, input.FromCompanyCode)
	if err != nil {
		return nil, err
	}
	to, err := s.companies.GetByCode(ctx, input.ToCompanyCode)
	if err != nil {
		return nil, err
	}
	if from.ID == to.ID {
		return nil, newValidationError("to_company", "cannot invoice the issuing company")
	}

	year := time.Now().Year()
	var invoiceID int
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin transaction: %w", err)
		}

		invoiceNumber, err := NextInvoiceNumber(ctx, tx, year)
		if err != nil {
			tx.Rollback(ctx)
			return nil, err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO invoices (invoice_number, job_id, from_company_id, to_company_id, amount, status, due_at)
			VALUES ($1, $2, $3, $4, $5, 'DRAFT', $6)
			RETURNING id`,
			invoiceNumber, input.JobID, from.ID, to.ID, input.Amount, input.DueAt,
		).Scan(&invoiceID)
		if err != nil {
			tx.Rollback(ctx)
			if isUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("insert invoice: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit invoice creation: %w", err)
		}

		// Broker → customer invoices trigger the downstream vendor chain.
		if from.Code == CompanyImpact && to.Role == RoleCustomer {
			jobID := input.JobID
			s.dispatcher.Submit(fmt.Sprintf("vendor-invoice-chain-job-%d", jobID), func(ctx context.Context) error {
				return s.GenerateVendorChain(ctx, jobID)
			})
		}
		return s.GetByID(ctx, invoiceID)
	}

	return nil, fmt.Errorf("%w: invoice number allocation raced %d times", ErrConflict, maxNumberRetries)
}

const invoiceSelect = `
	SELECT i.id, i.invoice_number, i.job_id,
	       i.from_company_id, fc.code, i.to_company_id, tc.code,
	       i.amount, i.status, i.issued_at, i.due_at, i.paid_at, i.created_at
	FROM invoices i
	JOIN companies fc ON fc.id = i.from_company_id
	JOIN companies tc ON tc.id = i.to_company_id`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.JobID,
		&inv.FromCompanyID, &inv.FromCompanyCode, &inv.ToCompanyID, &inv.ToCompanyCode,
		&inv.Amount, &inv.Status, &inv.IssuedAt, &inv.DueAt, &inv.PaidAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id int) (*Invoice, error) {
	inv, err := scanInvoice(s.pool.QueryRow(ctx, invoiceSelect+" WHERE i.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch invoice %d: %w", id, err)
	}
	return inv, nil
}

func (s *invoiceService) ListByJob(ctx context.Context, jobID int) ([]Invoice, error) {
	rows, err := s.pool.Query(ctx, invoiceSelect+" WHERE i.job_id = $1 ORDER BY i.id", jobID)
	if err != nil {
		return nil, fmt.Errorf("list invoices for job %d: %w", jobID, err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &inv.JobID,
			&inv.FromCompanyID, &inv.FromCompanyCode, &inv.ToCompanyID, &inv.ToCompanyCode,
			&inv.Amount, &inv.Status, &inv.IssuedAt, &inv.DueAt, &inv.PaidAt, &inv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (s *invoiceService) MarkSent(ctx context.Context, id int) (*Invoice, error) {
	return s.transition(ctx, id, InvoiceDraft, InvoiceSent, "issued_at")
}

func (s *invoiceService) MarkPaid(ctx context.Context, id int) (*Invoice, error) {
	return s.transition(ctx, id, InvoiceSent, InvoicePaid, "paid_at")
}

func (s *invoiceService) transition(ctx context.Context, id int, from, to InvoiceStatus, stampColumn string) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current InvoiceStatus
	err = tx.QueryRow(ctx, "SELECT status FROM invoices WHERE id = $1 FOR UPDATE", id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch invoice %d: %w", id, err)
	}
	if current != from {
		return nil, newValidationError("status",
			fmt.Sprintf("invoice cannot move from %s to %s (must be %s)", current, to, from))
	}

	query := fmt.Sprintf("UPDATE invoices SET status = $1, %s = NOW() WHERE id = $2", stampColumn)
	if _, err := tx.Exec(ctx, query, to, id); err != nil {
		return nil, fmt.Errorf("update invoice %d status: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit invoice transition: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *invoiceService) GenerateVendorChain(ctx context.Context, jobID int) error {
	hops := []struct {
		poOrigin, poTarget string
	}{
		{CompanyImpact, CompanyBradford},
		{CompanyBradford, CompanyJDGraphic},
	}

	for _, hop := range hops {
		po, err := s.pos.FindByHop(ctx, jobID, hop.poOrigin, hop.poTarget)
		if errors.Is(err, ErrNotFound) {
			// The hop has not been reconciled yet; a later trigger or manual
			// re-run picks it up.
			continue
		}
		if err != nil {
			return err
		}

		// The PO's target bills its origin for the vendor amount.
		existing, err := s.findByParties(ctx, jobID, po.TargetCompanyID, po.OriginCompanyID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		if _, err := s.Create(ctx, CreateInvoiceInput{
			JobID:           jobID,
			FromCompanyCode: po.TargetCompanyCode,
			ToCompanyCode:   po.OriginCompanyCode,
			Amount:          po.VendorAmount,
		}); err != nil {
			if errors.Is(err, ErrConflict) || isUniqueViolation(err) {
				continue
			}
			return fmt.Errorf("vendor invoice %s → %s for job %d: %w",
				po.TargetCompanyCode, po.OriginCompanyCode, jobID, err)
		}
	}
	return nil
}

func (s *invoiceService) findByParties(ctx context.Context, jobID, fromID, toID int) (*Invoice, error) {
	inv, err := scanInvoice(s.pool.QueryRow(ctx,
		invoiceSelect+" WHERE i.job_id = $1 AND i.from_company_id = $2 AND i.to_company_id = $3",
		jobID, fromID, toID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find invoice by parties: %w", err)
	}
	return inv, nil
}
