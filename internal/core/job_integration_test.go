package core_test

import (
	"context"
	"errors"
	"testing"

	"printflow/internal/core"
)

func TestJobCreateRejectsNonCustomer(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)

	_, err := svc.jobs.Create(context.Background(), core.CreateJobInput{
		CompanyCode:   core.CompanyBradford,
		CustomerTotal: mustDecimal(t, "100.00"),
	})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestJobLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "100.00")
	if job.Status != core.JobIntake {
		t.Fatalf("new job status = %s, want INTAKE", job.Status)
	}

	// Direct jobs go straight to APPROVED without quoting.
	job, err := svc.jobs.Transition(ctx, job.ID, core.JobApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Skipping production is rejected.
	if _, err := svc.jobs.Transition(ctx, job.ID, core.JobShipped); err == nil {
		t.Fatal("expected error skipping to SHIPPED")
	}

	for _, next := range []core.JobStatus{
		core.JobPendingProof, core.JobInProduction, core.JobShipped,
		core.JobInvoiced, core.JobPaid,
	} {
		job, err = svc.jobs.Transition(ctx, job.ID, next)
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	// PAID is terminal.
	if _, err := svc.jobs.Transition(ctx, job.ID, core.JobCancelled); err == nil {
		t.Fatal("expected error cancelling a paid job")
	}
}

func TestJobCancellation(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "BALLANTINE", "40.00")
	job, err := svc.jobs.Transition(ctx, job.ID, core.JobCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.jobs.Transition(ctx, job.ID, core.JobApproved); err == nil {
		t.Fatal("expected error reviving a cancelled job")
	}
}

func TestQuoteToJobFlow(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	quote, err := svc.quotes.Create(ctx, core.CreateQuoteInput{
		CompanyCode: "JJSA",
		Description: "perfect-bound catalog",
		Quantity:    1200,
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if quote.Status != core.QuoteRequested {
		t.Fatalf("status = %s, want REQUESTED", quote.Status)
	}

	// Cannot accept before pricing.
	if _, err := svc.quotes.Accept(ctx, quote.ID); err == nil {
		t.Fatal("expected error accepting an unpriced quote")
	}

	quote, err = svc.quotes.Price(ctx, quote.ID, mustDecimal(t, "450.00"))
	if err != nil {
		t.Fatalf("price quote: %v", err)
	}
	if quote.Total == nil || !quote.Total.Equal(mustDecimal(t, "450.00")) {
		t.Fatalf("total = %v, want 450.00", quote.Total)
	}

	quote, err = svc.quotes.Accept(ctx, quote.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	// A decided quote cannot flip.
	if _, err := svc.quotes.Decline(ctx, quote.ID); err == nil {
		t.Fatal("expected error declining an accepted quote")
	}

	job, err := svc.jobs.Create(ctx, core.CreateJobInput{
		CompanyCode:   quote.CompanyCode,
		QuoteID:       &quote.ID,
		Description:   quote.Description,
		Quantity:      quote.Quantity,
		CustomerTotal: *quote.Total,
	})
	if err != nil {
		t.Fatalf("job from quote: %v", err)
	}
	if job.QuoteID == nil || *job.QuoteID != quote.ID {
		t.Errorf("job quote_id = %v, want %d", job.QuoteID, quote.ID)
	}
}

func TestProofApprovalReleasesProduction(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "80.00")
	if _, err := svc.jobs.Transition(ctx, job.ID, core.JobApproved); err != nil {
		t.Fatalf("approve job: %v", err)
	}

	v1, err := svc.proofs.Submit(ctx, job.ID, "proof-v1.pdf")
	if err != nil {
		t.Fatalf("submit proof: %v", err)
	}
	if v1.Version != 1 {
		t.Errorf("first proof version = %d, want 1", v1.Version)
	}

	job, _ = svc.jobs.GetByID(ctx, job.ID)
	if job.Status != core.JobPendingProof {
		t.Fatalf("job status = %s, want PENDING_PROOF", job.Status)
	}

	if _, err := svc.proofs.Reject(ctx, v1.ID, "logo off-center"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	v2, err := svc.proofs.Submit(ctx, job.ID, "proof-v2.pdf")
	if err != nil {
		t.Fatalf("submit second proof: %v", err)
	}
	if v2.Version != 2 {
		t.Errorf("second proof version = %d, want 2", v2.Version)
	}

	if _, err := svc.proofs.Approve(ctx, v2.ID, "good to print"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	job, _ = svc.jobs.GetByID(ctx, job.ID)
	if job.Status != core.JobInProduction {
		t.Errorf("job status = %s, want IN_PRODUCTION", job.Status)
	}

	// A decided proof cannot be re-decided.
	if _, err := svc.proofs.Approve(ctx, v1.ID, ""); err == nil {
		t.Fatal("expected error approving a rejected proof")
	}
}

func TestShipmentMovesJobToShipped(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "80.00")
	for _, next := range []core.JobStatus{core.JobApproved, core.JobPendingProof, core.JobInProduction} {
		if _, err := svc.jobs.Transition(ctx, job.ID, next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	sh, err := svc.shipments.Record(ctx, core.RecordShipmentInput{
		JobID:          job.ID,
		Carrier:        "UPS",
		TrackingNumber: "1Z999AA10123456784",
	})
	if err != nil {
		t.Fatalf("record shipment: %v", err)
	}
	if sh.Carrier != "UPS" {
		t.Errorf("carrier = %s", sh.Carrier)
	}

	job, _ = svc.jobs.GetByID(ctx, job.ID)
	if job.Status != core.JobShipped {
		t.Errorf("job status = %s, want SHIPPED", job.Status)
	}

	// Shipping again from SHIPPED is rejected.
	if _, err := svc.shipments.Record(ctx, core.RecordShipmentInput{JobID: job.ID, Carrier: "UPS"}); err == nil {
		t.Fatal("expected error shipping an already shipped job")
	}
}
