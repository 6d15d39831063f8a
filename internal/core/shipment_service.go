package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RecordShipmentInput struct {
	JobID          int
	Carrier        string
	TrackingNumber string
	ShippedAt      *time.Time
}

// ShipmentService records outbound shipments. Recording one moves the job
// from IN_PRODUCTION to SHIPPED.
type ShipmentService interface {
	Record(ctx context.Context, input RecordShipmentInput) (*Shipment, error)
	ListByJob(ctx context.Context, jobID int) ([]Shipment, error)
}

type shipmentService struct {
	pool *pgxpool.Pool
	jobs JobService
}

func NewShipmentService(pool *pgxpool.Pool, jobs JobService) ShipmentService {
	return &shipmentService{pool: pool, jobs: jobs}
}

func (s *shipmentService) Record(ctx context.Context, input RecordShipmentInput) (*Shipment, error) {
	if input.Carrier == "" {
		return nil, newValidationError("carrier", "is required")
	}
	job, err := s.jobs.GetByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != JobInProduction {
		return nil, newValidationError("status",
			fmt.Sprintf("job cannot ship: status is %s (must be %s)", job.Status, JobInProduction))
	}

	shippedAt := time.Now()
	if input.ShippedAt != nil {
		shippedAt = *input.ShippedAt
	}

	var shipment Shipment
	err = s.pool.QueryRow(ctx, `
		INSERT INTO shipments (job_id, carrier, tracking_number, shipped_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, job_id, carrier, tracking_number, shipped_at, created_at`,
		input.JobID, input.Carrier, input.TrackingNumber, shippedAt,
	).Scan(&shipment.ID, &shipment.JobID, &shipment.Carrier, &shipment.TrackingNumber,
		&shipment.ShippedAt, &shipment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert shipment: %w", err)
	}

	if _, err := s.jobs.Transition(ctx, input.JobID, JobShipped); err != nil {
		log.Printf("shipment %d recorded but job %d transition failed: %v", shipment.ID, input.JobID, err)
	}
	return &shipment, nil
}

func (s *shipmentService) ListByJob(ctx context.Context, jobID int) ([]Shipment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, job_id, carrier, tracking_number, shipped_at, created_at
		FROM shipments WHERE job_id = $1 ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list shipments for job %d: %w", jobID, err)
	}
	defer rows.Close()

	var shipments []Shipment
	for rows.Next() {
		var sh Shipment
		if err := rows.Scan(&sh.ID, &sh.JobID, &sh.Carrier, &sh.TrackingNumber, &sh.ShippedAt, &sh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		shipments = append(shipments, sh)
	}
	return shipments, nil
}
