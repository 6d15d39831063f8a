package core_test

import (
	"context"
	"errors"
	"testing"

	"printflow/internal/core"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func createJob(t *testing.T, svc *services, companyCode, total string) *core.Job {
	t.Helper()
	job, err := svc.jobs.Create(context.Background(), core.CreateJobInput{
		CompanyCode:   companyCode,
		Description:   "tri-fold brochure run",
		Quantity:      5000,
		CustomerTotal: mustDecimal(t, total),
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

// The full money chain: a $100 customer job produces an Impact → Bradford PO
// for $80, and Bradford's webhook produces a Bradford → JD Graphic PO for
// $60. Every company's books close: 20 + 20 + 60 = 100.
func TestPurchaseOrderChainEndToEnd(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "100.00")

	hop1, err := svc.autoPO.CreateInitialPO(ctx, job)
	if err != nil {
		t.Fatalf("initial PO: %v", err)
	}
	if hop1.PONumber != "100-001" {
		t.Errorf("hop 1 PO number = %s, want 100-001", hop1.PONumber)
	}
	if !hop1.VendorAmount.Equal(mustDecimal(t, "80.00")) {
		t.Errorf("hop 1 vendor amount = %s, want 80.00", hop1.VendorAmount)
	}
	if !hop1.MarginAmount.Equal(mustDecimal(t, "20.00")) {
		t.Errorf("hop 1 margin = %s, want 20.00", hop1.MarginAmount)
	}

	cb := core.VendorCallback{
		ComponentID: "COMP-ABC-001",
		JobNumber:   job.JobNumber,
		Status:      "scheduled",
		Pricing: core.CallbackPricing{
			Subtotal: mustDecimal(t, "60.00"),
			Tax:      mustDecimal(t, "3.60"),
			Total:    mustDecimal(t, "63.60"),
		},
	}
	hop2, created, err := svc.reconciler.Reconcile(ctx, cb)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !created {
		t.Fatal("first callback should create a PO")
	}
	if hop2.PONumber != "200-001" {
		t.Errorf("hop 2 PO number = %s, want 200-001", hop2.PONumber)
	}
	if hop2.OriginCompanyCode != core.CompanyBradford || hop2.TargetCompanyCode != core.CompanyJDGraphic {
		t.Errorf("hop 2 runs %s → %s, want BRADFORD → JDGRAPHIC",
			hop2.OriginCompanyCode, hop2.TargetCompanyCode)
	}
	// Bradford passes through what it was owed, pays JD the priced subtotal.
	if !hop2.OriginalAmount.Equal(mustDecimal(t, "80.00")) {
		t.Errorf("hop 2 original = %s, want 80.00", hop2.OriginalAmount)
	}
	if !hop2.VendorAmount.Equal(mustDecimal(t, "60.00")) {
		t.Errorf("hop 2 vendor amount = %s, want 60.00", hop2.VendorAmount)
	}
	if !hop2.MarginAmount.Equal(mustDecimal(t, "20.00")) {
		t.Errorf("hop 2 margin = %s, want 20.00", hop2.MarginAmount)
	}

	// Reconciliation acknowledges hop 1.
	hop1, err = svc.pos.GetByID(ctx, hop1.ID)
	if err != nil {
		t.Fatalf("reload hop 1: %v", err)
	}
	if hop1.Status != core.POAcknowledged {
		t.Errorf("hop 1 status = %s, want %s", hop1.Status, core.POAcknowledged)
	}

	// Books balance: margins plus the final payout equal the customer total.
	sum := hop1.MarginAmount.Add(hop2.MarginAmount).Add(hop2.VendorAmount)
	if !sum.Equal(job.CustomerTotal) {
		t.Errorf("chain does not balance: 20 + 20 + 60 = %s, want %s", sum, job.CustomerTotal)
	}

	// The production notice goes out to JD Graphic asynchronously.
	svc.dispatcher.Wait()
	if len(svc.mailer.sent) != 1 || svc.mailer.sent[0] != "production@jdgraphic.example" {
		t.Errorf("production notice recipients = %v, want [production@jdgraphic.example]", svc.mailer.sent)
	}
}

func TestReconcileDuplicateCallbackIsNoOp(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "100.00")
	if _, err := svc.autoPO.CreateInitialPO(ctx, job); err != nil {
		t.Fatalf("initial PO: %v", err)
	}

	cb := core.VendorCallback{
		ComponentID: "COMP-DUP-001",
		JobNumber:   job.JobNumber,
		Pricing:     core.CallbackPricing{Subtotal: mustDecimal(t, "60.00")},
	}

	first, created, err := svc.reconciler.Reconcile(ctx, cb)
	if err != nil || !created {
		t.Fatalf("first reconcile: created=%v err=%v", created, err)
	}

	second, created, err := svc.reconciler.Reconcile(ctx, cb)
	if err != nil {
		t.Fatalf("duplicate reconcile: %v", err)
	}
	if created {
		t.Error("duplicate callback must not create a second PO")
	}
	if second.ID != first.ID {
		t.Errorf("duplicate returned PO %d, want existing %d", second.ID, first.ID)
	}

	orders, err := svc.pos.ListByJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("list POs: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("job has %d POs, want 2", len(orders))
	}
	svc.dispatcher.Wait()
}

func TestReconcileFallsBackToEstimateNumber(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "BALLANTINE", "250.00")
	if _, err := svc.autoPO.CreateInitialPO(ctx, job); err != nil {
		t.Fatalf("initial PO: %v", err)
	}

	cb := core.VendorCallback{
		EstimateNumber: "EST-9917",
		JobNumber:      job.JobNumber,
		Pricing:        core.CallbackPricing{Total: mustDecimal(t, "150.00")},
	}
	po, created, err := svc.reconciler.Reconcile(ctx, cb)
	if err != nil || !created {
		t.Fatalf("reconcile: created=%v err=%v", created, err)
	}
	if po.ExternalRef == nil || *po.ExternalRef != "EST-9917" {
		t.Errorf("external ref = %v, want EST-9917", po.ExternalRef)
	}
	// Total is the payout when no subtotal breakdown is given.
	if !po.VendorAmount.Equal(mustDecimal(t, "150.00")) {
		t.Errorf("vendor amount = %s, want 150.00", po.VendorAmount)
	}
	svc.dispatcher.Wait()
}

func TestReconcileUnknownJob(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)

	cb := core.VendorCallback{
		ComponentID: "COMP-NOPE",
		JobNumber:   "J-2026-999999",
		Pricing:     core.CallbackPricing{Subtotal: mustDecimal(t, "10.00")},
	}
	_, _, err := svc.reconciler.Reconcile(context.Background(), cb)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// A callback arriving before the broker hop exists still reconciles, deriving
// Bradford's side of the books from the customer total.
func TestReconcileBeforeInitialPO(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "100.00")

	cb := core.VendorCallback{
		ComponentID: "COMP-EARLY-001",
		JobNumber:   job.JobNumber,
		Pricing:     core.CallbackPricing{Subtotal: mustDecimal(t, "60.00")},
	}
	po, created, err := svc.reconciler.Reconcile(ctx, cb)
	if err != nil || !created {
		t.Fatalf("reconcile: created=%v err=%v", created, err)
	}
	if !po.OriginalAmount.Equal(mustDecimal(t, "80.00")) {
		t.Errorf("derived original = %s, want 80.00", po.OriginalAmount)
	}
	svc.dispatcher.Wait()
}
