package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"printflow/internal/ai"
	"printflow/internal/blob"
	"printflow/internal/core"

	"github.com/shopspring/decimal"
)

type appService struct {
	companies  core.CompanyService
	quotes     core.QuoteService
	jobs       core.JobService
	pos        core.PurchaseOrderService
	proofs     core.ProofService
	shipments  core.ShipmentService
	invoices   core.InvoiceService
	inventory  core.InventoryService
	notes      core.NotificationService
	autoPO     *core.AutoPOOrchestrator
	reconciler *core.WebhookReconciler
	blobs      *blob.Store
	extractor  ai.ExtractorService
}

// NewAppService constructs an appService that satisfies ApplicationService.
// extractor may be nil when no API key is configured.
func NewAppService(
	companies core.CompanyService,
	quotes core.QuoteService,
	jobs core.JobService,
	pos core.PurchaseOrderService,
	proofs core.ProofService,
	shipments core.ShipmentService,
	invoices core.InvoiceService,
	inventory core.InventoryService,
	notes core.NotificationService,
	autoPO *core.AutoPOOrchestrator,
	reconciler *core.WebhookReconciler,
	blobs *blob.Store,
	extractor ai.ExtractorService,
) ApplicationService {
	return &appService{
		companies:  companies,
		quotes:     quotes,
		jobs:       jobs,
		pos:        pos,
		proofs:     proofs,
		shipments:  shipments,
		invoices:   invoices,
		inventory:  inventory,
		notes:      notes,
		autoPO:     autoPO,
		reconciler: reconciler,
		blobs:      blobs,
		extractor:  extractor,
	}
}

// resolveJob accepts a numeric ID or a job number string.
func (s *appService) resolveJob(ctx context.Context, ref string) (*core.Job, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return s.jobs.GetByID(ctx, id)
	}
	return s.jobs.GetByNumber(ctx, ref)
}

func (s *appService) jobResult(ctx context.Context, job *core.Job, poErr string) (*JobResult, error) {
	orders, err := s.pos.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	return &JobResult{Job: job, PurchaseOrders: orders, Invoices: invoices, PurchaseOrderError: poErr}, nil
}

func (s *appService) CreateJob(ctx context.Context, req CreateJobRequest) (*JobResult, error) {
	total, err := decimal.NewFromString(req.CustomerTotal)
	if err != nil {
		return nil, fmt.Errorf("customer_total %q is not a valid amount: %w", req.CustomerTotal, err)
	}

	input := core.CreateJobInput{
		CompanyCode:   req.CompanyCode,
		QuoteID:       req.QuoteID,
		Description:   req.Description,
		Quantity:      req.Quantity,
		CustomerTotal: total,
	}
	if req.CustomerPONumber != "" {
		input.CustomerPONumber = &req.CustomerPONumber
	}

	job, err := s.jobs.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	// The broker → vendor hop runs as its own unit of work. A failure is
	// surfaced on the result; the job is never rolled back.
	var poErr string
	if _, err := s.autoPO.CreateInitialPO(ctx, job); err != nil {
		log.Printf("job %s created but initial PO failed: %v", job.JobNumber, err)
		poErr = err.Error()
	}
	return s.jobResult(ctx, job, poErr)
}

func (s *appService) GetJob(ctx context.Context, ref string) (*JobResult, error) {
	job, err := s.resolveJob(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.jobResult(ctx, job, "")
}

func (s *appService) ListJobs(ctx context.Context, status *core.JobStatus) (*JobListResult, error) {
	jobs, err := s.jobs.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return &JobListResult{Jobs: jobs}, nil
}

func (s *appService) TransitionJob(ctx context.Context, ref string, next core.JobStatus) (*JobResult, error) {
	job, err := s.resolveJob(ctx, ref)
	if err != nil {
		return nil, err
	}
	job, err = s.jobs.Transition(ctx, job.ID, next)
	if err != nil {
		return nil, err
	}
	return s.jobResult(ctx, job, "")
}

func (s *appService) UploadCustomerPO(ctx context.Context, ref, poNumber, filename string, file io.Reader) (*JobResult, error) {
	job, err := s.resolveJob(ctx, ref)
	if err != nil {
		return nil, err
	}
	obj, err := s.blobs.Put(file, filepath.Ext(filename))
	if err != nil {
		return nil, err
	}
	job, err = s.jobs.AttachCustomerPO(ctx, job.ID, poNumber, obj.Key)
	if err != nil {
		return nil, err
	}
	return s.jobResult(ctx, job, "")
}

func (s *appService) CreateQuote(ctx context.Context, req CreateQuoteRequest) (*QuoteResult, error) {
	quote, err := s.quotes.Create(ctx, core.CreateQuoteInput{
		CompanyCode: req.CompanyCode,
		Description: req.Description,
		Quantity:    req.Quantity,
	})
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

func (s *appService) GetQuote(ctx context.Context, id int) (*QuoteResult, error) {
	quote, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

func (s *appService) ListQuotes(ctx context.Context) (*QuoteListResult, error) {
	quotes, err := s.quotes.List(ctx)
	if err != nil {
		return nil, err
	}
	return &QuoteListResult{Quotes: quotes}, nil
}

func (s *appService) PriceQuote(ctx context.Context, id int, total string) (*QuoteResult, error) {
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("total %q is not a valid amount: %w", total, err)
	}
	quote, err := s.quotes.Price(ctx, id, amount)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

// AcceptQuote marks the quote accepted and opens the job from its agreed
// total, carrying the quote reference.
func (s *appService) AcceptQuote(ctx context.Context, id int) (*JobResult, error) {
	quote, err := s.quotes.Accept(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Total == nil {
		return nil, fmt.Errorf("quote %s accepted without a total", quote.QuoteNumber)
	}

	job, err := s.jobs.Create(ctx, core.CreateJobInput{
		CompanyCode:   quote.CompanyCode,
		QuoteID:       &quote.ID,
		Description:   quote.Description,
		Quantity:      quote.Quantity,
		CustomerTotal: *quote.Total,
	})
	if err != nil {
		return nil, fmt.Errorf("quote %s accepted but job creation failed: %w", quote.QuoteNumber, err)
	}

	var poErr string
	if _, err := s.autoPO.CreateInitialPO(ctx, job); err != nil {
		log.Printf("job %s created but initial PO failed: %v", job.JobNumber, err)
		poErr = err.Error()
	}
	return s.jobResult(ctx, job, poErr)
}

func (s *appService) DeclineQuote(ctx context.Context, id int) (*QuoteResult, error) {
	quote, err := s.quotes.Decline(ctx, id)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

func (s *appService) ListJobPurchaseOrders(ctx context.Context, ref string) (*PurchaseOrderListResult, error) {
	job, err := s.resolveJob(ctx, ref)
	if err != nil {
		return nil, err
	}
	orders, err := s.pos.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderListResult{PurchaseOrders: orders}, nil
}

func (s *appService) UpdatePurchaseOrderStatus(ctx context.Context, id int, status core.POStatus) (*PurchaseOrderResult, error) {
	po, err := s.pos.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{PurchaseOrder: po}, nil
}

func (s *appService) UploadVendorPODocument(ctx context.Context, id int, filename string, file io.Reader, documentText string) (*VendorPOUploadResult, error) {
	obj, err := s.blobs.Put(file, filepath.Ext(filename))
	if err != nil {
		return nil, err
	}
	po, err := s.pos.AttachPDF(ctx, id, obj.Key)
	if err != nil {
		return nil, err
	}

	result := &VendorPOUploadResult{PurchaseOrder: po, Object: obj}
	if s.extractor != nil && strings.TrimSpace(documentText) != "" {
		fields, err := s.extractor.ExtractPOFields(ctx, documentText)
		if err != nil {
			log.Printf("PO %s document stored but field extraction failed: %v", po.PONumber, err)
			result.ExtractError = err.Error()
		} else {
			result.Extracted = fields
		}
	}
	return result, nil
}

func (s *appService) ReconcileVendorCallback(ctx context.Context, cb core.VendorCallback) (*CallbackResult, error) {
	po, created, err := s.reconciler.Reconcile(ctx, cb)
	if err != nil {
		return nil, err
	}
	return &CallbackResult{PurchaseOrder: po, Created: created}, nil
}

func (s *appService) ImportVendorPO(ctx context.Context, ref, filename string, file io.Reader, documentText string) (*VendorPOImportResult, error) {
	if s.extractor == nil {
		return nil, &core.ValidationError{Fields: map[string]string{
			"document": "field extraction is not configured",
		}}
	}
	job, err := s.resolveJob(ctx, ref)
	if err != nil {
		return nil, err
	}
	obj, err := s.blobs.Put(file, filepath.Ext(filename))
	if err != nil {
		return nil, err
	}
	fields, err := s.extractor.ExtractPOFields(ctx, documentText)
	if err != nil {
		return nil, fmt.Errorf("extract purchase order fields: %w", err)
	}

	cb := core.VendorCallback{
		EstimateNumber: fields.PONumber,
		JobNumber:      job.JobNumber,
	}
	if cb.Pricing.Subtotal, err = parseAmount(fields.Subtotal); err != nil {
		return nil, &core.ValidationError{Fields: map[string]string{"subtotal": err.Error()}}
	}
	if cb.Pricing.Tax, err = parseAmount(fields.Tax); err != nil {
		return nil, &core.ValidationError{Fields: map[string]string{"tax": err.Error()}}
	}
	if cb.Pricing.Total, err = parseAmount(fields.Total); err != nil {
		return nil, &core.ValidationError{Fields: map[string]string{"total": err.Error()}}
	}

	po, created, err := s.reconciler.Reconcile(ctx, cb)
	if err != nil {
		return nil, err
	}
	if po, err = s.pos.AttachPDF(ctx, po.ID, obj.Key); err != nil {
		return nil, err
	}
	return &VendorPOImportResult{
		PurchaseOrder: po,
		Created:       created,
		Object:        obj,
		Extracted:     fields,
	}, nil
}

// parseAmount reads an extracted money field, treating a blank as zero so a
// document without a tax line still imports.
func parseAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func (s *appService) SubmitProof(ctx context.Context, ref, filename string, file io.Reader) (*ProofResult, error) {
	job, err := s.resolveJob(ctx, ref)
	if err != nil {
		return nil, err
	}
	obj, err := s.blobs.Put(file, filepath.Ext(filename))
	if err != nil {
		return nil, err
	}
	proof, err := s.proofs.Submit(ctx, job.ID, obj.Key)
	if err != nil {
		return nil, err
	}
	return &ProofResult{Proof: proof}, nil
}

func (s *appService) ApproveProof(ctx context.Context, id int, comment string) (*ProofResult, error) {
	proof, err := s.proofs.Approve(ctx, id, comment)
	if err != nil {
		return nil, err
	}
	return &ProofResult{Proof: proof}, nil
}

func (s *appService) RejectProof(ctx context.Context, id int, comment string) (*ProofResult, error) {
	proof, err := s.proofs.Reject(ctx, id, comment)
	if err != nil {
		return nil, err
	}
	return &ProofResult{Proof: proof}, nil
}

func (s *appService) ListJobProofs(ctx context.Context, ref string) (*ProofListResult, error) {
	job, err := s.resolveJob(ctx, ref)
	if err != nil {
		return nil, err
	}
	proofs, err := s.proofs.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	return &ProofListResult{Proofs: proofs}, nil
}

func (s *appService) RecordShipment(ctx context.Context, req RecordShipmentRequest) (*ShipmentResult, error) {
	job, err := s.resolveJob(ctx, req.JobRef)
	if err != nil {
		return nil, err
	}
	shipment, err := s.shipments.Record(ctx, core.RecordShipmentInput{
		JobID:          job.ID,
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		return nil, err
	}
	return &ShipmentResult{Shipment: shipment}, nil
}

// InvoiceJob issues the broker → customer invoice for the job's full
// customer total and moves the job to INVOICED. The vendor invoice chain is
// triggered by the invoice service.
func (s *appService) InvoiceJob(ctx context.Context, ref string) (*InvoiceResult, error) {
	job, err := s.resolveJob(ctx, ref)
	if err != nil {
		return nil, err
	}
	if job.Status != core.JobShipped {
		return nil, fmt.Errorf("job %s cannot be invoiced: status is %s (must be %s)",
			job.JobNumber, job.Status, core.JobShipped)
	}

	invoice, err := s.invoices.Create(ctx, core.CreateInvoiceInput{
		JobID:           job.ID,
		FromCompanyCode: core.CompanyImpact,
		ToCompanyCode:   job.CompanyCode,
		Amount:          job.CustomerTotal,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.jobs.Transition(ctx, job.ID, core.JobInvoiced); err != nil {
		log.Printf("invoice %s created but job %s transition failed: %v", invoice.InvoiceNumber, job.JobNumber, err)
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

func (s *appService) MarkInvoiceSent(ctx context.Context, id int) (*InvoiceResult, error) {
	invoice, err := s.invoices.MarkSent(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

func (s *appService) MarkInvoicePaid(ctx context.Context, id int) (*InvoiceResult, error) {
	invoice, err := s.invoices.MarkPaid(ctx, id)
	if err != nil {
		return nil, err
	}

	// Customer payment of the broker invoice closes out the job.
	if invoice.FromCompanyCode == core.CompanyImpact {
		to, err := s.companies.GetByID(ctx, invoice.ToCompanyID)
		if err == nil && to.Role == core.RoleCustomer {
			if _, err := s.jobs.Transition(ctx, invoice.JobID, core.JobPaid); err != nil {
				log.Printf("invoice %s paid but job %d transition failed: %v", invoice.InvoiceNumber, invoice.JobID, err)
			}
		}
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

func (s *appService) ListJobInvoices(ctx context.Context, ref string) (*InvoiceListResult, error) {
	job, err := s.resolveJob(ctx, ref)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) AddPaper(ctx context.Context, req PaperMovementRequest) (*StockResult, error) {
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("quantity %q is not a valid amount: %w", req.Quantity, err)
	}
	stock, err := s.inventory.Add(ctx, req.CompanyCode, req.RollType, qty, req.Note)
	if err != nil {
		return nil, err
	}
	return &StockResult{Stock: stock}, nil
}

func (s *appService) RemovePaper(ctx context.Context, req PaperMovementRequest) (*StockResult, error) {
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("quantity %q is not a valid amount: %w", req.Quantity, err)
	}
	stock, err := s.inventory.Remove(ctx, req.CompanyCode, req.RollType, qty, req.Note)
	if err != nil {
		return nil, err
	}
	return &StockResult{Stock: stock}, nil
}

func (s *appService) AdjustPaper(ctx context.Context, req PaperMovementRequest) (*StockResult, error) {
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("quantity %q is not a valid amount: %w", req.Quantity, err)
	}
	stock, err := s.inventory.Adjust(ctx, req.CompanyCode, req.RollType, qty, req.Note)
	if err != nil {
		return nil, err
	}
	return &StockResult{Stock: stock}, nil
}

func (s *appService) DeductPaperForJob(ctx context.Context, req PaperMovementRequest) (*StockResult, error) {
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("quantity %q is not a valid amount: %w", req.Quantity, err)
	}
	stock, err := s.inventory.DeductForJob(ctx, req.CompanyCode, req.RollType, qty, req.JobID)
	if err != nil {
		return nil, err
	}
	return &StockResult{Stock: stock}, nil
}

func (s *appService) ListPaperStock(ctx context.Context, companyCode string) (*StockListResult, error) {
	stocks, err := s.inventory.ListStock(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	return &StockListResult{Stocks: stocks}, nil
}

func (s *appService) ListPaperTransactions(ctx context.Context, stockID int) (*PaperLedgerResult, error) {
	txs, err := s.inventory.ListTransactions(ctx, stockID)
	if err != nil {
		return nil, err
	}
	return &PaperLedgerResult{Transactions: txs}, nil
}

func (s *appService) ListCompanies(ctx context.Context) (*CompanyListResult, error) {
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, err
	}
	return &CompanyListResult{Companies: companies}, nil
}

func (s *appService) ListNotifications(ctx context.Context, limit int) (*NotificationListResult, error) {
	notifications, err := s.notes.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &NotificationListResult{Notifications: notifications}, nil
}
