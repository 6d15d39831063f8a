package core_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"printflow/internal/core"
)

func TestVendorPONumbersIncrementPerVendor(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	for i, want := range []string{"100-001", "100-002", "100-003"} {
		job := createJob(t, svc, "JJSA", "50.00")
		po, err := svc.autoPO.CreateInitialPO(ctx, job)
		if err != nil {
			t.Fatalf("PO %d: %v", i+1, err)
		}
		if po.PONumber != want {
			t.Errorf("PO %d number = %s, want %s", i+1, po.PONumber, want)
		}
	}

	// The JD Graphic scope is independent of Bradford's.
	job := createJob(t, svc, "JJSA", "50.00")
	po, err := svc.pos.Create(ctx, core.CreatePOInput{
		JobID:             job.ID,
		OriginCompanyCode: core.CompanyBradford,
		TargetCompanyCode: core.CompanyJDGraphic,
		OriginalAmount:    mustDecimal(t, "40.00"),
		VendorAmount:      mustDecimal(t, "30.00"),
	})
	if err != nil {
		t.Fatalf("JD PO: %v", err)
	}
	if po.PONumber != "200-001" {
		t.Errorf("JD PO number = %s, want 200-001", po.PONumber)
	}
}

func TestVendorPONumberExhaustion(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "50.00")

	// Pin the Bradford scope at its ceiling.
	var bradfordID, impactID int
	if err := pool.QueryRow(ctx, "SELECT id FROM companies WHERE code = 'BRADFORD'").Scan(&bradfordID); err != nil {
		t.Fatalf("bradford id: %v", err)
	}
	if err := pool.QueryRow(ctx, "SELECT id FROM companies WHERE code = 'IMPACT'").Scan(&impactID); err != nil {
		t.Fatalf("impact id: %v", err)
	}
	blocker := createJob(t, svc, "JJSA", "10.00")
	_, err := pool.Exec(ctx, `
		INSERT INTO purchase_orders (po_number, job_id, origin_company_id, target_company_id,
			original_amount, vendor_amount, margin_amount, status)
		VALUES ('100-999', $1, $2, $3, 10.00, 8.00, 2.00, 'CREATED')`,
		blocker.ID, impactID, bradfordID)
	if err != nil {
		t.Fatalf("seed ceiling PO: %v", err)
	}

	_, err = svc.pos.Create(ctx, core.CreatePOInput{
		JobID:             job.ID,
		OriginCompanyCode: core.CompanyImpact,
		TargetCompanyCode: core.CompanyBradford,
		OriginalAmount:    mustDecimal(t, "50.00"),
		VendorAmount:      mustDecimal(t, "40.00"),
	})
	if !errors.Is(err, core.ErrSequenceExhausted) {
		t.Fatalf("expected ErrSequenceExhausted, got %v", err)
	}
}

func TestJobAndInvoiceNumbersAreYearScoped(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	year := time.Now().Year()

	first := createJob(t, svc, "JJSA", "10.00")
	second := createJob(t, svc, "BALLANTINE", "20.00")

	wantFirst := fmt.Sprintf("J-%d-000001", year)
	wantSecond := fmt.Sprintf("J-%d-000002", year)
	if first.JobNumber != wantFirst {
		t.Errorf("first job number = %s, want %s", first.JobNumber, wantFirst)
	}
	if second.JobNumber != wantSecond {
		t.Errorf("second job number = %s, want %s", second.JobNumber, wantSecond)
	}

	// A prior year's numbers do not leak into this year's scope.
	_, err := pool.Exec(ctx, `
		INSERT INTO jobs (job_number, company_id, customer_total, status)
		SELECT $1, id, 5.00, 'INTAKE' FROM companies WHERE code = 'JJSA'`,
		fmt.Sprintf("J-%d-000500", year-1))
	if err != nil {
		t.Fatalf("seed prior-year job: %v", err)
	}
	third := createJob(t, svc, "JJSA", "30.00")
	wantThird := fmt.Sprintf("J-%d-000003", year)
	if third.JobNumber != wantThird {
		t.Errorf("third job number = %s, want %s", third.JobNumber, wantThird)
	}

	inv, err := svc.invoices.Create(ctx, core.CreateInvoiceInput{
		JobID:           first.ID,
		FromCompanyCode: core.CompanyBradford,
		ToCompanyCode:   core.CompanyImpact,
		Amount:          mustDecimal(t, "8.00"),
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	wantInv := fmt.Sprintf("INV-%d-000001", year)
	if inv.InvoiceNumber != wantInv {
		t.Errorf("invoice number = %s, want %s", inv.InvoiceNumber, wantInv)
	}
}
