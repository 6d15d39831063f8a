package core_test

import (
	"context"
	"errors"
	"testing"

	"printflow/internal/core"
)

func TestCreatePORejectsBadAmounts(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "100.00")

	var ve *core.ValidationError

	// Vendor amount above the original would mean a negative margin.
	_, err := svc.pos.Create(ctx, core.CreatePOInput{
		JobID:             job.ID,
		OriginCompanyCode: core.CompanyImpact,
		TargetCompanyCode: core.CompanyBradford,
		OriginalAmount:    mustDecimal(t, "100.00"),
		VendorAmount:      mustDecimal(t, "120.00"),
	})
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.pos.Create(ctx, core.CreatePOInput{
		JobID:             job.ID,
		OriginCompanyCode: core.CompanyImpact,
		TargetCompanyCode: core.CompanyBradford,
		OriginalAmount:    mustDecimal(t, "-1.00"),
		VendorAmount:      mustDecimal(t, "-1.00"),
	})
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for negative amounts, got %v", err)
	}
}

func TestCreatePORejectsNonVendorTarget(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "100.00")

	// JJSA has no vendor code, so it cannot anchor a PO numbering scope.
	_, err := svc.pos.Create(ctx, core.CreatePOInput{
		JobID:             job.ID,
		OriginCompanyCode: core.CompanyImpact,
		TargetCompanyCode: "JJSA",
		OriginalAmount:    mustDecimal(t, "100.00"),
		VendorAmount:      mustDecimal(t, "80.00"),
	})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreatePODuplicateHopConflicts(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "100.00")
	input := core.CreatePOInput{
		JobID:             job.ID,
		OriginCompanyCode: core.CompanyImpact,
		TargetCompanyCode: core.CompanyBradford,
		OriginalAmount:    mustDecimal(t, "100.00"),
		VendorAmount:      mustDecimal(t, "80.00"),
	}
	if _, err := svc.pos.Create(ctx, input); err != nil {
		t.Fatalf("first PO: %v", err)
	}
	_, err := svc.pos.Create(ctx, input)
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate hop, got %v", err)
	}
}

func TestPOMarginIsExactComplement(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "99.99")
	po, err := svc.autoPO.CreateInitialPO(ctx, job)
	if err != nil {
		t.Fatalf("initial PO: %v", err)
	}
	if !po.VendorAmount.Equal(mustDecimal(t, "79.99")) {
		t.Errorf("vendor amount = %s, want 79.99", po.VendorAmount)
	}
	if !po.MarginAmount.Equal(mustDecimal(t, "20.00")) {
		t.Errorf("margin = %s, want 20.00", po.MarginAmount)
	}
	if !po.VendorAmount.Add(po.MarginAmount).Equal(po.OriginalAmount) {
		t.Errorf("%s + %s != %s", po.VendorAmount, po.MarginAmount, po.OriginalAmount)
	}
}

func TestPOStatusNeverRegresses(t *testing.T) {
	pool := setupTestDB(t)
	svc := newServices(pool)
	ctx := context.Background()

	job := createJob(t, svc, "JJSA", "100.00")
	po, err := svc.autoPO.CreateInitialPO(ctx, job)
	if err != nil {
		t.Fatalf("initial PO: %v", err)
	}

	po, err = svc.pos.UpdateStatus(ctx, po.ID, core.POSent)
	if err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if po.SentAt == nil {
		t.Error("sent_at not stamped")
	}

	// Same status again is an idempotent no-op.
	if _, err := svc.pos.UpdateStatus(ctx, po.ID, core.POSent); err != nil {
		t.Fatalf("repeat mark sent: %v", err)
	}

	po, err = svc.pos.UpdateStatus(ctx, po.ID, core.POFulfilled)
	if err != nil {
		t.Fatalf("mark fulfilled: %v", err)
	}
	if po.FulfilledAt == nil {
		t.Error("fulfilled_at not stamped")
	}

	var ve *core.ValidationError
	if _, err := svc.pos.UpdateStatus(ctx, po.ID, core.POSent); !errors.As(err, &ve) {
		t.Fatalf("expected validation error on regression, got %v", err)
	}
}
