package core

import (
	"context"
	"fmt"
)

// AutoPOOrchestrator derives the first hop of the purchase order chain when a
// job is created with an agreed customer total: Impact Direct pays Bradford
// 80% of what the customer pays Impact. The Bradford → JD Graphic hop is
// deliberately not created here; it arrives later via the vendor webhook or
// the vendor's own PO document upload.
type AutoPOOrchestrator struct {
	pos PurchaseOrderService
}

func NewAutoPOOrchestrator(pos PurchaseOrderService) *AutoPOOrchestrator {
	return &AutoPOOrchestrator{pos: pos}
}

// CreateInitialPO creates the broker → tier-1 vendor hop for a new job.
// Job creation and PO creation are independent units of work: the caller
// logs and surfaces a failure here but never rolls the job back.
func (o *AutoPOOrchestrator) CreateInitialPO(ctx context.Context, job *Job) (*PurchaseOrder, error) {
	split, err := SplitTotal(job.CustomerTotal)
	if err != nil {
		return nil, fmt.Errorf("split customer total for job %s: %w", job.JobNumber, err)
	}

	po, err := o.pos.Create(ctx, CreatePOInput{
		JobID:             job.ID,
		OriginCompanyCode: CompanyImpact,
		TargetCompanyCode: CompanyBradford,
		OriginalAmount:    job.CustomerTotal,
		VendorAmount:      split.VendorAmount,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial PO for job %s: %w", job.JobNumber, err)
	}
	return po, nil
}
