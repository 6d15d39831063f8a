package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PurchaseOrderService is the ledger of money hops between companies.
// Creation is the sole mutation path that establishes the origin/target/amount
// triple; status updates never alter amounts.
type PurchaseOrderService interface {
	Create(ctx context.Context, input CreatePOInput) (*PurchaseOrder, error)
	GetByID(ctx context.Context, id int) (*PurchaseOrder, error)
	ListByJob(ctx context.Context, jobID int) ([]PurchaseOrder, error)
	// FindByExternalRef returns the PO carrying a vendor correlation id, or
	// ErrNotFound. Used by webhook reconciliation for idempotence.
	FindByExternalRef(ctx context.Context, jobID int, externalRef string) (*PurchaseOrder, error)
	// FindByHop returns the PO for a (job, origin, target) pair, or ErrNotFound.
	FindByHop(ctx context.Context, jobID int, originCode, targetCode string) (*PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id int, status POStatus) (*PurchaseOrder, error)
	AttachPDF(ctx context.Context, id int, pdfKey string) (*PurchaseOrder, error)
}

type purchaseOrderService struct {
	pool      *pgxpool.Pool
	companies CompanyService
}

func NewPurchaseOrderService(pool *pgxpool.Pool, companies CompanyService) PurchaseOrderService {
	return &purchaseOrderService{pool: pool, companies: companies}
}

// Create validates the amounts, allocates a vendor-scoped PO number and
// persists the hop in one transaction. Margin is stored as the exact
// complement (original − vendor) so the hop always balances. The number
// race is resolved by retrying on the po_number unique index; a violation
// of the (job, origin, target) hop constraint is a duplicate hop and
// surfaces as ErrConflict instead.
func (s *purchaseOrderService) Create(ctx context.Context, input CreatePOInput) (*PurchaseOrder, error) {
	if input.OriginalAmount.IsNegative() {
		return nil, newValidationError("original_amount", "cannot be negative")
	}
	if input.VendorAmount.IsNegative() {
		return nil, newValidationError("vendor_amount", "cannot be negative")
	}
	if input.VendorAmount.GreaterThan(input.OriginalAmount) {
		return nil, newValidationError("vendor_amount",
			fmt.Sprintf("%s exceeds original amount %s", input.VendorAmount, input.OriginalAmount))
	}

	origin, err := s.companies.GetByCode(ctx, input.OriginCompanyCode)
	if err != nil {
		return nil, err
	}
	target, err := s.companies.GetByCode(ctx, input.TargetCompanyCode)
	if err != nil {
		return nil, err
	}
	if target.VendorCode == nil {
		return nil, newValidationError("target_company",
			fmt.Sprintf("company %s has no vendor code for PO numbering", target.Code))
	}

	marginAmount := input.OriginalAmount.Sub(input.VendorAmount)

	var poID int
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin transaction: %w", err)
		}

		poNumber, err := NextVendorPONumber(ctx, tx, *target.VendorCode)
		if err != nil {
			tx.Rollback(ctx)
			return nil, err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO purchase_orders (po_number, job_id, origin_company_id, target_company_id,
			                             original_amount, vendor_amount, margin_amount,
			                             external_ref, pdf_key, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'CREATED')
			RETURNING id`,
			poNumber, input.JobID, origin.ID, target.ID,
			input.OriginalAmount, input.VendorAmount, marginAmount,
			input.ExternalRef, input.PDFKey,
		).Scan(&poID)
		if err != nil {
			tx.Rollback(ctx)
			if isUniqueViolation(err) {
				var pgErr *pgconn.PgError
				errors.As(err, &pgErr)
				if strings.Contains(pgErr.ConstraintName, "po_number") {
					// Another caller took our number; re-scan and retry.
					continue
				}
				return nil, fmt.Errorf("%w: hop already exists for job %d (%s → %s)",
					ErrConflict, input.JobID, origin.Code, target.Code)
			}
			return nil, fmt.Errorf("insert purchase order: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit purchase order: %w", err)
		}
		return s.GetByID(ctx, poID)
	}

	return nil, fmt.Errorf("%w: po number allocation raced %d times", ErrConflict, maxNumberRetries)
}

const poSelect = `
	SELECT po.id, po.po_number, po.job_id,
	       po.origin_company_id, oc.code, po.target_company_id, tc.code,
	       po.original_amount, po.vendor_amount, po.margin_amount,
	       po.external_ref, po.pdf_key, po.status,
	       po.created_at, po.sent_at, po.acknowledged_at, po.fulfilled_at
	FROM purchase_orders po
	JOIN companies oc ON oc.id = po.origin_company_id
	JOIN companies tc ON tc.id = po.target_company_id`

func scanPO(row pgx.Row) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := row.Scan(
		&po.ID, &po.PONumber, &po.JobID,
		&po.OriginCompanyID, &po.OriginCompanyCode, &po.TargetCompanyID, &po.TargetCompanyCode,
		&po.OriginalAmount, &po.VendorAmount, &po.MarginAmount,
		&po.ExternalRef, &po.PDFKey, &po.Status,
		&po.CreatedAt, &po.SentAt, &po.AcknowledgedAt, &po.FulfilledAt,
	)
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (s *purchaseOrderService) GetByID(ctx context.Context, id int) (*PurchaseOrder, error) {
	po, err := scanPO(s.pool.QueryRow(ctx, poSelect+" WHERE po.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch purchase order %d: %w", id, err)
	}
	return po, nil
}

func (s *purchaseOrderService) ListByJob(ctx context.Context, jobID int) ([]PurchaseOrder, error) {
	rows, err := s.pool.Query(ctx, poSelect+" WHERE po.job_id = $1 ORDER BY po.id", jobID)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders for job %d: %w", jobID, err)
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(
			&po.ID, &po.PONumber, &po.JobID,
			&po.OriginCompanyID, &po.OriginCompanyCode, &po.TargetCompanyID, &po.TargetCompanyCode,
			&po.OriginalAmount, &po.VendorAmount, &po.MarginAmount,
			&po.ExternalRef, &po.PDFKey, &po.Status,
			&po.CreatedAt, &po.SentAt, &po.AcknowledgedAt, &po.FulfilledAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, po)
	}
	return orders, nil
}

func (s *purchaseOrderService) FindByExternalRef(ctx context.Context, jobID int, externalRef string) (*PurchaseOrder, error) {
	po, err := scanPO(s.pool.QueryRow(ctx,
		poSelect+" WHERE po.job_id = $1 AND po.external_ref = $2", jobID, externalRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order with external ref %q: %w", externalRef, ErrNotFound)
		}
		return nil, fmt.Errorf("find purchase order by external ref: %w", err)
	}
	return po, nil
}

func (s *purchaseOrderService) FindByHop(ctx context.Context, jobID int, originCode, targetCode string) (*PurchaseOrder, error) {
	po, err := scanPO(s.pool.QueryRow(ctx,
		poSelect+" WHERE po.job_id = $1 AND oc.code = $2 AND tc.code = $3",
		jobID, originCode, targetCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %s → %s for job %d: %w", originCode, targetCode, jobID, ErrNotFound)
		}
		return nil, fmt.Errorf("find purchase order hop: %w", err)
	}
	return po, nil
}

// UpdateStatus advances the PO lifecycle. No regression transitions exist;
// setting the current status again is an idempotent no-op.
func (s *purchaseOrderService) UpdateStatus(ctx context.Context, id int, status POStatus) (*PurchaseOrder, error) {
	rank, ok := poStatusRank[status]
	if !ok {
		return nil, newValidationError("status", fmt.Sprintf("unknown status %q", status))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current POStatus
	err = tx.QueryRow(ctx, "SELECT status FROM purchase_orders WHERE id = $1 FOR UPDATE", id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch purchase order %d: %w", id, err)
	}

	if current == status {
		tx.Rollback(ctx)
		return s.GetByID(ctx, id)
	}
	if poStatusRank[current] > rank {
		return nil, newValidationError("status",
			fmt.Sprintf("cannot move from %s back to %s", current, status))
	}

	var stampColumn string
	switch status {
	case POSent:
		stampColumn = "sent_at"
	case POAcknowledged:
		stampColumn = "acknowledged_at"
	case POFulfilled:
		stampColumn = "fulfilled_at"
	}
	query := "UPDATE purchase_orders SET status = $1 WHERE id = $2"
	if stampColumn != "" {
		query = fmt.Sprintf("UPDATE purchase_orders SET status = $1, %s = NOW() WHERE id = $2", stampColumn)
	}
	if _, err := tx.Exec(ctx, query, status, id); err != nil {
		return nil, fmt.Errorf("update purchase order %d status: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *purchaseOrderService) AttachPDF(ctx context.Context, id int, pdfKey string) (*PurchaseOrder, error) {
	tag, err := s.pool.Exec(ctx,
		"UPDATE purchase_orders SET pdf_key = $1 WHERE id = $2", pdfKey, id)
	if err != nil {
		return nil, fmt.Errorf("attach pdf to purchase order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("purchase order %d: %w", id, ErrNotFound)
	}
	return s.GetByID(ctx, id)
}
