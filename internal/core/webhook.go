package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// VendorCallback is the payload Bradford's system posts back when it has
// priced and scheduled a job component. Correlation is two-keyed: componentId
// when present, estimateNumber otherwise — neither is guaranteed.
type VendorCallback struct {
	ComponentID    string          `json:"componentId"`
	EstimateNumber string          `json:"estimateNumber"`
	JobNumber      string          `json:"jobNumber"`
	Status         string          `json:"status"`
	Pricing        CallbackPricing `json:"pricing"`
	Delivery       *struct {
		Method string `json:"method"`
		Date   string `json:"date"`
	} `json:"delivery,omitempty"`
	PDFURL string `json:"pdfUrl,omitempty"`
}

type CallbackPricing struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Normalize trims whitespace from the correlation fields before validation.
func (c *VendorCallback) Normalize() {
	c.ComponentID = strings.TrimSpace(c.ComponentID)
	c.EstimateNumber = strings.TrimSpace(c.EstimateNumber)
	c.JobNumber = strings.TrimSpace(c.JobNumber)
	c.Status = strings.TrimSpace(c.Status)
}

// Validate enforces the payload shape before any business logic runs.
func (c *VendorCallback) Validate() error {
	fields := map[string]string{}
	if c.JobNumber == "" {
		fields["jobNumber"] = "required"
	}
	if c.ComponentID == "" && c.EstimateNumber == "" {
		fields["componentId"] = "componentId or estimateNumber is required"
	}
	if c.Pricing.Subtotal.IsNegative() || c.Pricing.Total.IsNegative() {
		fields["pricing"] = "amounts cannot be negative"
	}
	if c.Pricing.Subtotal.IsZero() && c.Pricing.Total.IsZero() {
		fields["pricing"] = "subtotal or total is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CorrelationKey is the dedup key for reconciliation: componentId when
// present, estimateNumber as the fallback.
func (c *VendorCallback) CorrelationKey() string {
	if c.ComponentID != "" {
		return c.ComponentID
	}
	return c.EstimateNumber
}

// VendorAmount is what JD Graphic will be paid: the priced subtotal, or the
// total when the vendor's system omits the breakdown.
func (c *VendorCallback) VendorAmount() decimal.Decimal {
	if !c.Pricing.Subtotal.IsZero() {
		return c.Pricing.Subtotal
	}
	return c.Pricing.Total
}

// WebhookReconciler consumes inbound vendor callbacks and settles them
// against the job's purchase order chain. Repeated delivery of the same
// callback is a no-op success.
type WebhookReconciler struct {
	jobs       JobService
	pos        PurchaseOrderService
	companies  CompanyService
	notes      NotificationService
	mailer     Mailer
	dispatcher *Dispatcher
}

func NewWebhookReconciler(jobs JobService, pos PurchaseOrderService, companies CompanyService,
	notes NotificationService, mailer Mailer, dispatcher *Dispatcher) *WebhookReconciler {
	return &WebhookReconciler{
		jobs:       jobs,
		pos:        pos,
		companies:  companies,
		notes:      notes,
		mailer:     mailer,
		dispatcher: dispatcher,
	}
}

// Reconcile resolves the callback to a job, applies the idempotence check,
// and creates the Bradford → JD Graphic hop when it does not yet exist.
// The second return value reports whether a new PO was created.
func (r *WebhookReconciler) Reconcile(ctx context.Context, cb VendorCallback) (*PurchaseOrder, bool, error) {
	cb.Normalize()
	if err := cb.Validate(); err != nil {
		return nil, false, err
	}

	job, err := r.jobs.GetByNumber(ctx, cb.JobNumber)
	if err != nil {
		return nil, false, err
	}

	key := cb.CorrelationKey()
	if existing, err := r.pos.FindByExternalRef(ctx, job.ID, key); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	// Hop-2 original amount is what Bradford was paid on hop-1. Webhooks may
	// arrive before hop-1 exists; derive the same figure from the customer
	// total rather than failing the vendor's delivery.
	originalAmount, err := r.hopOneVendorAmount(ctx, job)
	if err != nil {
		return nil, false, err
	}

	po, err := r.pos.Create(ctx, CreatePOInput{
		JobID:             job.ID,
		OriginCompanyCode: CompanyBradford,
		TargetCompanyCode: CompanyJDGraphic,
		OriginalAmount:    originalAmount,
		VendorAmount:      cb.VendorAmount(),
		ExternalRef:       &key,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			// Raced with a duplicate delivery that won; return its PO.
			if existing, findErr := r.pos.FindByExternalRef(ctx, job.ID, key); findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	// Webhook receipt acknowledges hop-1. Best effort: hop-1 may not exist yet.
	if hopOne, err := r.pos.FindByHop(ctx, job.ID, CompanyImpact, CompanyBradford); err == nil {
		if _, err := r.pos.UpdateStatus(ctx, hopOne.ID, POAcknowledged); err != nil {
			log.Printf("acknowledge hop-1 PO %s: %v", hopOne.PONumber, err)
		}
	}

	r.queueProductionNotice(job, po, cb.PDFURL)
	return po, true, nil
}

func (r *WebhookReconciler) hopOneVendorAmount(ctx context.Context, job *Job) (decimal.Decimal, error) {
	hopOne, err := r.pos.FindByHop(ctx, job.ID, CompanyImpact, CompanyBradford)
	if err == nil {
		return hopOne.VendorAmount, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return decimal.Zero, err
	}

	log.Printf("job %s has no %s → %s PO yet; deriving hop-2 amount from customer total",
		job.JobNumber, CompanyImpact, CompanyBradford)
	split, err := SplitTotal(job.CustomerTotal)
	if err != nil {
		return decimal.Zero, fmt.Errorf("job %s: %w", job.JobNumber, err)
	}
	return split.VendorAmount, nil
}

// queueProductionNotice emails JD Graphic's production contact about the new
// PO. Queued off the request path; a send failure never unwinds the PO.
func (r *WebhookReconciler) queueProductionNotice(job *Job, po *PurchaseOrder, pdfURL string) {
	r.dispatcher.Submit(fmt.Sprintf("production-notice-po-%s", po.PONumber), func(ctx context.Context) error {
		target, err := r.companies.GetByCode(ctx, po.TargetCompanyCode)
		if err != nil {
			return err
		}
		if target.ProductionEmail == nil {
			return fmt.Errorf("company %s has no production email", target.Code)
		}

		subject := fmt.Sprintf("New purchase order %s for job %s", po.PONumber, job.JobNumber)
		body := fmt.Sprintf("<p>Purchase order <strong>%s</strong> has been issued for job %s.</p>"+
			"<p>Amount: %s</p>", po.PONumber, job.JobNumber, po.VendorAmount.StringFixed(2))
		if pdfURL != "" {
			body += fmt.Sprintf(`<p>Vendor PO document: <a href="%s">%s</a></p>`, pdfURL, pdfURL)
		}

		return r.notes.Notify(ctx, r.mailer, *target.ProductionEmail, subject, body, "production_po")
	})
}
