package app

import (
	"context"
	"io"

	"printflow/internal/core"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples presentation from business logic; implementations contain no
// display logic of any kind.
type ApplicationService interface {
	// Jobs. CreateJob also kicks off the broker → vendor purchase order;
	// a failed hop is reported on the result, never rolls the job back.
	CreateJob(ctx context.Context, req CreateJobRequest) (*JobResult, error)
	// GetJob accepts a numeric ID or a job number string.
	GetJob(ctx context.Context, ref string) (*JobResult, error)
	ListJobs(ctx context.Context, status *core.JobStatus) (*JobListResult, error)
	TransitionJob(ctx context.Context, ref string, next core.JobStatus) (*JobResult, error)
	UploadCustomerPO(ctx context.Context, ref, poNumber, filename string, file io.Reader) (*JobResult, error)

	// Quotes. Accepting a quote creates the job from its agreed total.
	CreateQuote(ctx context.Context, req CreateQuoteRequest) (*QuoteResult, error)
	GetQuote(ctx context.Context, id int) (*QuoteResult, error)
	ListQuotes(ctx context.Context) (*QuoteListResult, error)
	PriceQuote(ctx context.Context, id int, total string) (*QuoteResult, error)
	AcceptQuote(ctx context.Context, id int) (*JobResult, error)
	DeclineQuote(ctx context.Context, id int) (*QuoteResult, error)

	// Purchase orders.
	ListJobPurchaseOrders(ctx context.Context, ref string) (*PurchaseOrderListResult, error)
	UpdatePurchaseOrderStatus(ctx context.Context, id int, status core.POStatus) (*PurchaseOrderResult, error)
	// UploadVendorPODocument stores the PDF against the PO. When document
	// text is supplied the extractor reads the printed fields back for
	// review; extraction failure never fails the upload.
	UploadVendorPODocument(ctx context.Context, id int, filename string, file io.Reader, documentText string) (*VendorPOUploadResult, error)

	// ReconcileVendorCallback handles the vendor's estimate webhook,
	// creating the sub-vendor hop when it is new.
	ReconcileVendorCallback(ctx context.Context, cb core.VendorCallback) (*CallbackResult, error)

	// ImportVendorPO stores a vendor PO document against a job, extracts
	// its printed fields, and runs them through the same reconciliation as
	// the webhook. Used when the vendor mails a PDF instead of calling
	// back.
	ImportVendorPO(ctx context.Context, ref, filename string, file io.Reader, documentText string) (*VendorPOImportResult, error)

	// Proofs.
	SubmitProof(ctx context.Context, ref, filename string, file io.Reader) (*ProofResult, error)
	ApproveProof(ctx context.Context, id int, comment string) (*ProofResult, error)
	RejectProof(ctx context.Context, id int, comment string) (*ProofResult, error)
	ListJobProofs(ctx context.Context, ref string) (*ProofListResult, error)

	// Shipments.
	RecordShipment(ctx context.Context, req RecordShipmentRequest) (*ShipmentResult, error)

	// Invoices. Creating the broker → customer invoice moves the job to
	// INVOICED and triggers the vendor invoice chain.
	InvoiceJob(ctx context.Context, ref string) (*InvoiceResult, error)
	MarkInvoiceSent(ctx context.Context, id int) (*InvoiceResult, error)
	// MarkInvoicePaid also moves the job to PAID when the paid invoice is
	// the broker → customer one.
	MarkInvoicePaid(ctx context.Context, id int) (*InvoiceResult, error)
	ListJobInvoices(ctx context.Context, ref string) (*InvoiceListResult, error)

	// Paper inventory.
	AddPaper(ctx context.Context, req PaperMovementRequest) (*StockResult, error)
	RemovePaper(ctx context.Context, req PaperMovementRequest) (*StockResult, error)
	AdjustPaper(ctx context.Context, req PaperMovementRequest) (*StockResult, error)
	DeductPaperForJob(ctx context.Context, req PaperMovementRequest) (*StockResult, error)
	ListPaperStock(ctx context.Context, companyCode string) (*StockListResult, error)
	ListPaperTransactions(ctx context.Context, stockID int) (*PaperLedgerResult, error)

	ListCompanies(ctx context.Context) (*CompanyListResult, error)
	ListNotifications(ctx context.Context, limit int) (*NotificationListResult, error)
}
