package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type CompanyRole string

const (
	RoleBroker   CompanyRole = "broker"
	RoleVendor   CompanyRole = "vendor"
	RoleCustomer CompanyRole = "customer"
)

// Fixed company codes seeded by the migrations. The two-hop chain runs
// IMPACT → BRADFORD → JDGRAPHIC; JJSA and BALLANTINE are customer accounts.
const (
	CompanyImpact     = "IMPACT"
	CompanyBradford   = "BRADFORD"
	CompanyJDGraphic  = "JDGRAPHIC"
	CompanyJJSA       = "JJSA"
	CompanyBallantine = "BALLANTINE"
)

type Company struct {
	ID              int         `json:"id"`
	Code            string      `json:"code"`
	Name            string      `json:"name"`
	Role            CompanyRole `json:"role"`
	VendorCode      *string     `json:"vendor_code,omitempty"`
	ProductionEmail *string     `json:"production_email,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

type JobStatus string

const (
	JobIntake       JobStatus = "INTAKE"
	JobQuoted       JobStatus = "QUOTED"
	JobApproved     JobStatus = "APPROVED"
	JobPendingProof JobStatus = "PENDING_PROOF"
	JobInProduction JobStatus = "IN_PRODUCTION"
	JobShipped      JobStatus = "SHIPPED"
	JobInvoiced     JobStatus = "INVOICED"
	JobPaid         JobStatus = "PAID"
	JobCancelled    JobStatus = "CANCELLED"
)

// jobTransitions lists the allowed forward transitions. CANCELLED is reachable
// from every non-terminal state and is handled separately in CanTransition.
var jobTransitions = map[JobStatus]JobStatus{
	JobIntake:       JobQuoted,
	JobQuoted:       JobApproved,
	JobApproved:     JobPendingProof,
	JobPendingProof: JobInProduction,
	JobInProduction: JobShipped,
	JobShipped:      JobInvoiced,
	JobInvoiced:     JobPaid,
}

// CanTransition reports whether a job may move from one status to the next.
// Direct jobs enter with an agreed total and skip the quoting step.
func CanTransition(from, to JobStatus) bool {
	if from == JobPaid || from == JobCancelled {
		return false
	}
	if to == JobCancelled {
		return true
	}
	if jobTransitions[from] == to {
		return true
	}
	// INTAKE → APPROVED for direct jobs that never went through a quote.
	return from == JobIntake && to == JobApproved
}

type Job struct {
	ID               int             `json:"id"`
	JobNumber        string          `json:"job_number"`
	CompanyID        int             `json:"company_id"`
	CompanyCode      string          `json:"company_code"`
	QuoteID          *int            `json:"quote_id,omitempty"`
	Description      string          `json:"description"`
	Quantity         int             `json:"quantity"`
	CustomerTotal    decimal.Decimal `json:"customer_total"`
	Status           JobStatus       `json:"status"`
	CustomerPONumber *string         `json:"customer_po_number,omitempty"`
	CustomerPOKey    *string         `json:"customer_po_key,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type QuoteStatus string

const (
	QuoteRequested QuoteStatus = "REQUESTED"
	QuoteQuoted    QuoteStatus = "QUOTED"
	QuoteAccepted  QuoteStatus = "ACCEPTED"
	QuoteDeclined  QuoteStatus = "DECLINED"
)

type Quote struct {
	ID          int              `json:"id"`
	QuoteNumber string           `json:"quote_number"`
	CompanyID   int              `json:"company_id"`
	CompanyCode string           `json:"company_code"`
	Description string           `json:"description"`
	Quantity    int              `json:"quantity"`
	Status      QuoteStatus      `json:"status"`
	Total       *decimal.Decimal `json:"total,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	QuotedAt    *time.Time       `json:"quoted_at,omitempty"`
	DecidedAt   *time.Time       `json:"decided_at,omitempty"`
}

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "DRAFT"
	InvoiceSent  InvoiceStatus = "SENT"
	InvoicePaid  InvoiceStatus = "PAID"
)

type Invoice struct {
	ID              int             `json:"id"`
	InvoiceNumber   string          `json:"invoice_number"`
	JobID           int             `json:"job_id"`
	FromCompanyID   int             `json:"from_company_id"`
	FromCompanyCode string          `json:"from_company_code"`
	ToCompanyID     int             `json:"to_company_id"`
	ToCompanyCode   string          `json:"to_company_code"`
	Amount          decimal.Decimal `json:"amount"`
	Status          InvoiceStatus   `json:"status"`
	IssuedAt        *time.Time      `json:"issued_at,omitempty"`
	DueAt           *time.Time      `json:"due_at,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type ProofStatus string

const (
	ProofPending  ProofStatus = "PENDING"
	ProofApproved ProofStatus = "APPROVED"
	ProofRejected ProofStatus = "REJECTED"
)

type Proof struct {
	ID        int         `json:"id"`
	JobID     int         `json:"job_id"`
	Version   int         `json:"version"`
	FileKey   string      `json:"file_key"`
	Status    ProofStatus `json:"status"`
	Comment   string      `json:"comment"`
	CreatedAt time.Time   `json:"created_at"`
	DecidedAt *time.Time  `json:"decided_at,omitempty"`
}

type Shipment struct {
	ID             int       `json:"id"`
	JobID          int       `json:"job_id"`
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"tracking_number"`
	ShippedAt      time.Time `json:"shipped_at"`
	CreatedAt      time.Time `json:"created_at"`
}

type Notification struct {
	ID        int        `json:"id"`
	Recipient string     `json:"recipient"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Kind      string     `json:"kind"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
