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

// CreateJobInput holds the fields required at job intake.
type CreateJobInput struct {
	CompanyCode      string
	QuoteID          *int
	Description      string
	Quantity         int
	CustomerTotal    decimal.Decimal
	CustomerPONumber *string
}

// JobService manages the print job lifecycle. Jobs are never deleted, only
// status-transitioned; their purchase orders and invoices are owned by
// reference and outlive any transition.
type JobService interface {
	Create(ctx context.Context, input CreateJobInput) (*Job, error)
	GetByID(ctx context.Context, id int) (*Job, error)
	GetByNumber(ctx context.Context, jobNumber string) (*Job, error)
	List(ctx context.Context, status *JobStatus) ([]Job, error)
	// Transition advances the job state machine, rejecting anything
	// CanTransition does not allow.
	Transition(ctx context.Context, id int, next JobStatus) (*Job, error)
	AttachCustomerPO(ctx context.Context, id int, poNumber, fileKey string) (*Job, error)
}

type jobService struct {
	pool      *pgxpool.Pool
	companies CompanyService
}

func NewJobService(pool *pgxpool.Pool, companies CompanyService) JobService {
	return &jobService{pool: pool, companies: companies}
}

// Create allocates a year-scoped job number and persists the job in one
// transaction, retrying on a job_number uniqueness race. PO creation is a
// separate unit of work owned by the orchestrator — a failed hop never rolls
// back the job.
func (s *jobService) Create(ctx context.Context, input CreateJobInput) (*Job, error) {
	if input.CustomerTotal.IsNegative() {
		return nil, newValidationError("customer_total", "cannot be negative")
	}
	company, err := s.companies.GetByCode(ctx, input.CompanyCode)
	if err != nil {
		return nil, err
	}
	if company.Role != RoleCustomer {
		return nil, newValidationError("company_code",
			fmt.Sprintf("company %s is a %s, not a customer", company.Code, company.Role))
	}

	year := time.Now().Year()
	var jobID int
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin transaction: %w", err)
		}

		jobNumber, err := NextJobNumber(ctx, tx, year)
		if err != nil {
			tx.Rollback(ctx)
			return nil, err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO jobs (job_number, company_id, quote_id, description, quantity,
			                  customer_total, status, customer_po_number)
			VALUES ($1, $2, $3, $4, $5, $6, 'INTAKE', $7)
			RETURNING id`,
			jobNumber, company.ID, input.QuoteID, input.Description, input.Quantity,
			input.CustomerTotal, input.CustomerPONumber,
		).Scan(&jobID)
		if err != nil {
			tx.Rollback(ctx)
			if isUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("insert job: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit job creation: %w", err)
		}
		return s.GetByID(ctx, jobID)
	}

	return nil, fmt.Errorf("%w: job number allocation raced %d times", ErrConflict, maxNumberRetries)
}

const jobSelect = `
	SELECT j.id, j.job_number, j.company_id, c.code, j.quote_id,
	       j.description, j.quantity, j.customer_total, j.status,
	       j.customer_po_number, j.customer_po_key, j.created_at, j.updated_at
	FROM jobs j
	JOIN companies c ON c.id = j.company_id`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.JobNumber, &j.CompanyID, &j.CompanyCode, &j.QuoteID,
		&j.Description, &j.Quantity, &j.CustomerTotal, &j.Status,
		&j.CustomerPONumber, &j.CustomerPOKey, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *jobService) GetByID(ctx context.Context, id int) (*Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx, jobSelect+" WHERE j.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch job %d: %w", id, err)
	}
	return j, nil
}

func (s *jobService) GetByNumber(ctx context.Context, jobNumber string) (*Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx, jobSelect+" WHERE j.job_number = $1", jobNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", jobNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch job %s: %w", jobNumber, err)
	}
	return j, nil
}

func (s *jobService) List(ctx context.Context, status *JobStatus) ([]Job, error) {
	query := jobSelect
	args := []any{}
	if status != nil {
		query += " WHERE j.status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY j.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(
			&j.ID, &j.JobNumber, &j.CompanyID, &j.CompanyCode, &j.QuoteID,
			&j.Description, &j.Quantity, &j.CustomerTotal, &j.Status,
			&j.CustomerPONumber, &j.CustomerPOKey, &j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (s *jobService) Transition(ctx context.Context, id int, next JobStatus) (*Job, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current JobStatus
	err = tx.QueryRow(ctx, "SELECT status FROM jobs WHERE id = $1 FOR UPDATE", id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch job %d: %w", id, err)
	}

	if !CanTransition(current, next) {
		return nil, newValidationError("status",
			fmt.Sprintf("job cannot move from %s to %s", current, next))
	}

	if _, err := tx.Exec(ctx,
		"UPDATE jobs SET status = $1, updated_at = NOW() WHERE id = $2", next, id); err != nil {
		return nil, fmt.Errorf("update job %d status: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit job transition: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *jobService) AttachCustomerPO(ctx context.Context, id int, poNumber, fileKey string) (*Job, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs SET customer_po_number = $1, customer_po_key = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $3`,
		poNumber, fileKey, id)
	if err != nil {
		return nil, fmt.Errorf("attach customer PO to job %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return s.GetByID(ctx, id)
}
