package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InventoryService tracks paper stock per company and roll type. Every
// movement locks the stock row, applies the change, and writes a paired
// ledger row carrying the resulting balance. A movement that would drive the
// balance negative fails without touching stock or ledger.
type InventoryService interface {
	// Add receives paper into stock, creating the stock row on first use.
	Add(ctx context.Context, companyCode, rollType string, quantity decimal.Decimal, note string) (*PaperStock, error)
	Remove(ctx context.Context, companyCode, rollType string, quantity decimal.Decimal, note string) (*PaperStock, error)
	// Adjust sets the absolute on-hand quantity, recording the delta.
	Adjust(ctx context.Context, companyCode, rollType string, quantity decimal.Decimal, note string) (*PaperStock, error)
	// DeductForJob consumes paper against a job, for usage reporting.
	DeductForJob(ctx context.Context, companyCode, rollType string, quantity decimal.Decimal, jobID int) (*PaperStock, error)
	GetStock(ctx context.Context, companyCode, rollType string) (*PaperStock, error)
	ListStock(ctx context.Context, companyCode string) ([]PaperStock, error)
	ListTransactions(ctx context.Context, stockID int) ([]PaperTransaction, error)
}

type inventoryService struct {
	pool      *pgxpool.Pool
	companies CompanyService
}

func NewInventoryService(pool *pgxpool.Pool, companies CompanyService) InventoryService {
	return &inventoryService{pool: pool, companies: companies}
}

func (s *inventoryService) Add(ctx context.Context, companyCode, rollType string, quantity decimal.Decimal, note string) (*PaperStock, error) {
	if !quantity.IsPositive() {
		return nil, newValidationError("quantity", "must be positive")
	}
	return s.move(ctx, companyCode, rollType, PaperAdd, quantity, nil, note, true)
}

func (s *inventoryService) Remove(ctx context.Context, companyCode, rollType string, quantity decimal.Decimal, note string) (*PaperStock, error) {
	if !quantity.IsPositive() {
		return nil, newValidationError("quantity", "must be positive")
	}
	return s.move(ctx, companyCode, rollType, PaperRemove, quantity.Neg(), nil, note, false)
}

func (s *inventoryService) DeductForJob(ctx context.Context, companyCode, rollType string, quantity decimal.Decimal, jobID int) (*PaperStock, error) {
	if !quantity.IsPositive() {
		return nil, newValidationError("quantity", "must be positive")
	}
	return s.move(ctx, companyCode, rollType, PaperDeductJob, quantity.Neg(), &jobID, fmt.Sprintf("job %d", jobID), false)
}

func (s *inventoryService) Adjust(ctx context.Context, companyCode, rollType string, quantity decimal.Decimal, note string) (*PaperStock, error) {
	if quantity.IsNegative() {
		return nil, newValidationError("quantity", "cannot be negative")
	}

	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stock, err := s.lockStock(ctx, tx, company.ID, rollType, true)
	if err != nil {
		return nil, err
	}

	delta := quantity.Sub(stock.Quantity)
	if err := s.applyMove(ctx, tx, stock, PaperAdjust, delta, nil, note, quantity); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit stock adjustment: %w", err)
	}
	return s.GetStock(ctx, companyCode, rollType)
}

// move is the shared path for relative movements. delta is signed; createIfMissing
// lets ADD bootstrap a new stock row.
func (s *inventoryService) move(ctx context.Context, companyCode, rollType string, kind PaperTransactionKind, delta decimal.Decimal, jobID *int, note string, createIfMissing bool) (*PaperStock, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stock, err := s.lockStock(ctx, tx, company.ID, rollType, createIfMissing)
	if err != nil {
		return nil, err
	}

	balance := stock.Quantity.Add(delta)
	if balance.IsNegative() {
		return nil, newValidationError("quantity",
			fmt.Sprintf("insufficient stock: have %s, movement %s", stock.Quantity, delta))
	}

	if err := s.applyMove(ctx, tx, stock, kind, delta, jobID, note, balance); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit stock movement: %w", err)
	}
	return s.GetStock(ctx, companyCode, rollType)
}

func (s *inventoryService) applyMove(ctx context.Context, tx pgx.Tx, stock *PaperStock, kind PaperTransactionKind, delta decimal.Decimal, jobID *int, note string, balance decimal.Decimal) error {
	if _, err := tx.Exec(ctx,
		"UPDATE paper_stock SET quantity = $1, updated_at = NOW() WHERE id = $2",
		balance, stock.ID,
	); err != nil {
		return fmt.Errorf("update stock %d: %w", stock.ID, err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO paper_transactions (stock_id, job_id, kind, quantity, balance_after, note)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		stock.ID, jobID, kind, delta, balance, note,
	); err != nil {
		return fmt.Errorf("insert stock transaction: %w", err)
	}
	return nil
}

func (s *inventoryService) lockStock(ctx context.Context, tx pgx.Tx, companyID int, rollType string, createIfMissing bool) (*PaperStock, error) {
	var stock PaperStock
	err := tx.QueryRow(ctx, `
		SELECT id, company_id, roll_type, quantity, updated_at
		FROM paper_stock WHERE company_id = $1 AND roll_type = $2 FOR UPDATE`,
		companyID, rollType,
	).Scan(&stock.ID, &stock.CompanyID, &stock.RollType, &stock.Quantity, &stock.UpdatedAt)
	if err == nil {
		return &stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("fetch stock: %w", err)
	}
	if !createIfMissing {
		return nil, fmt.Errorf("stock %q for company %d: %w", rollType, companyID, ErrNotFound)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO paper_stock (company_id, roll_type, quantity)
		VALUES ($1, $2, 0)
		RETURNING id, company_id, roll_type, quantity, updated_at`,
		companyID, rollType,
	).Scan(&stock.ID, &stock.CompanyID, &stock.RollType, &stock.Quantity, &stock.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create stock row: %w", err)
	}
	return &stock, nil
}

const stockSelect = `
	SELECT ps.id, ps.company_id, c.code, ps.roll_type, ps.quantity, ps.updated_at
	FROM paper_stock ps
	JOIN companies c ON c.id = ps.company_id`

func (s *inventoryService) GetStock(ctx context.Context, companyCode, rollType string) (*PaperStock, error) {
	var stock PaperStock
	err := s.pool.QueryRow(ctx, stockSelect+" WHERE c.code = $1 AND ps.roll_type = $2",
		companyCode, rollType,
	).Scan(&stock.ID, &stock.CompanyID, &stock.CompanyCode, &stock.RollType, &stock.Quantity, &stock.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("stock %q for %s: %w", rollType, companyCode, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch stock: %w", err)
	}
	return &stock, nil
}

func (s *inventoryService) ListStock(ctx context.Context, companyCode string) ([]PaperStock, error) {
	rows, err := s.pool.Query(ctx, stockSelect+" WHERE c.code = $1 ORDER BY ps.roll_type", companyCode)
	if err != nil {
		return nil, fmt.Errorf("list stock for %s: %w", companyCode, err)
	}
	defer rows.Close()

	var stocks []PaperStock
	for rows.Next() {
		var st PaperStock
		if err := rows.Scan(&st.ID, &st.CompanyID, &st.CompanyCode, &st.RollType, &st.Quantity, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		stocks = append(stocks, st)
	}
	return stocks, nil
}

func (s *inventoryService) ListTransactions(ctx context.Context, stockID int) ([]PaperTransaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, stock_id, job_id, kind, quantity, balance_after, note, created_at
		FROM paper_transactions WHERE stock_id = $1 ORDER BY id`, stockID)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	defer rows.Close()

	var txs []PaperTransaction
	for rows.Next() {
		var t PaperTransaction
		if err := rows.Scan(&t.ID, &t.StockID, &t.JobID, &t.Kind, &t.Quantity, &t.BalanceAfter, &t.Note, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, nil
}
