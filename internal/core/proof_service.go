package core

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProofService manages press proofs. Proofs are versioned per job; submitting
// one moves the job to PENDING_PROOF, approval releases it to production, and
// rejection leaves the job waiting for the next version.
type ProofService interface {
	Submit(ctx context.Context, jobID int, fileKey string) (*Proof, error)
	GetByID(ctx context.Context, id int) (*Proof, error)
	ListByJob(ctx context.Context, jobID int) ([]Proof, error)
	Approve(ctx context.Context, id int, comment string) (*Proof, error)
	Reject(ctx context.Context, id int, comment string) (*Proof, error)
}

type proofService struct {
	pool *pgxpool.Pool
	jobs JobService
}

func NewProofService(pool *pgxpool.Pool, jobs JobService) ProofService {
	return &proofService{pool: pool, jobs: jobs}
}

// Submit records the next proof version for the job. The UNIQUE(job_id,
// version) constraint arbitrates concurrent submissions; the loser retries
// with a fresh version number.
func (s *proofService) Submit(ctx context.Context, jobID int, fileKey string) (*Proof, error) {
	if fileKey == "" {
		return nil, newValidationError("file_key", "is required")
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != JobApproved && job.Status != JobPendingProof {
		return nil, newValidationError("status",
			fmt.Sprintf("job cannot receive a proof: status is %s (must be %s or %s)",
				job.Status, JobApproved, JobPendingProof))
	}

	var proofID int
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin transaction: %w", err)
		}

		var version int
		if err := tx.QueryRow(ctx,
			"SELECT COALESCE(MAX(version), 0) + 1 FROM proofs WHERE job_id = $1", jobID,
		).Scan(&version); err != nil {
			tx.Rollback(ctx)
			return nil, fmt.Errorf("scan max proof version: %w", err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO proofs (job_id, version, file_key, status)
			VALUES ($1, $2, $3, 'PENDING')
			RETURNING id`,
			jobID, version, fileKey,
		).Scan(&proofID)
		if err != nil {
			tx.Rollback(ctx)
			if isUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("insert proof: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit proof submission: %w", err)
		}

		if job.Status == JobApproved {
			if _, err := s.jobs.Transition(ctx, jobID, JobPendingProof); err != nil {
				log.Printf("proof %d recorded but job %d transition failed: %v", proofID, jobID, err)
			}
		}
		return s.GetByID(ctx, proofID)
	}

	return nil, fmt.Errorf("%w: proof version allocation raced %d times", ErrConflict, maxNumberRetries)
}

const proofSelect = `
	SELECT id, job_id, version, file_key, status, comment, created_at, decided_at
	FROM proofs`

func scanProof(row pgx.Row) (*Proof, error) {
	var p Proof
	err := row.Scan(&p.ID, &p.JobID, &p.Version, &p.FileKey, &p.Status, &p.Comment, &p.CreatedAt, &p.DecidedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *proofService) GetByID(ctx context.Context, id int) (*Proof, error) {
	p, err := scanProof(s.pool.QueryRow(ctx, proofSelect+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("proof %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch proof %d: %w", id, err)
	}
	return p, nil
}

func (s *proofService) ListByJob(ctx context.Context, jobID int) ([]Proof, error) {
	rows, err := s.pool.Query(ctx, proofSelect+" WHERE job_id = $1 ORDER BY version", jobID)
	if err != nil {
		return nil, fmt.Errorf("list proofs for job %d: %w", jobID, err)
	}
	defer rows.Close()

	var proofs []Proof
	for rows.Next() {
		var p Proof
		if err := rows.Scan(&p.ID, &p.JobID, &p.Version, &p.FileKey, &p.Status, &p.Comment, &p.CreatedAt, &p.DecidedAt); err != nil {
			return nil, fmt.Errorf("scan proof: %w", err)
		}
		proofs = append(proofs, p)
	}
	return proofs, nil
}

// Approve marks the proof APPROVED and releases the job into production.
func (s *proofService) Approve(ctx context.Context, id int, comment string) (*Proof, error) {
	proof, err := s.decide(ctx, id, ProofApproved, comment)
	if err != nil {
		return nil, err
	}
	if _, err := s.jobs.Transition(ctx, proof.JobID, JobInProduction); err != nil {
		log.Printf("proof %d approved but job %d transition failed: %v", id, proof.JobID, err)
	}
	return proof, nil
}

// Reject marks the proof REJECTED. The job stays in PENDING_PROOF awaiting
// the next version.
func (s *proofService) Reject(ctx context.Context, id int, comment string) (*Proof, error) {
	return s.decide(ctx, id, ProofRejected, comment)
}

func (s *proofService) decide(ctx context.Context, id int, outcome ProofStatus, comment string) (*Proof, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current ProofStatus
	err = tx.QueryRow(ctx, "SELECT status FROM proofs WHERE id = $1 FOR UPDATE", id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("proof %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch proof %d: %w", id, err)
	}
	if current != ProofPending {
		return nil, newValidationError("status",
			fmt.Sprintf("proof cannot be decided: status is %s (must be %s)", current, ProofPending))
	}

	if _, err := tx.Exec(ctx,
		"UPDATE proofs SET status = $1, comment = $2, decided_at = NOW() WHERE id = $3",
		outcome, comment, id,
	); err != nil {
		return nil, fmt.Errorf("decide proof %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit proof decision: %w", err)
	}
	return s.GetByID(ctx, id)
}
