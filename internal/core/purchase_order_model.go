package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type POStatus string

const (
	POCreated      POStatus = "CREATED"
	POSent         POStatus = "SENT"
	POAcknowledged POStatus = "ACKNOWLEDGED"
	POFulfilled    POStatus = "FULFILLED"
)

// poStatusRank orders the PO lifecycle; transitions never regress.
var poStatusRank = map[POStatus]int{
	POCreated:      0,
	POSent:         1,
	POAcknowledged: 2,
	POFulfilled:    3,
}

// PurchaseOrder is one money hop between two companies for a job. The
// amounts are fixed at creation: vendor_amount is what the target is paid,
// margin_amount = original_amount − vendor_amount stays with the origin.
type PurchaseOrder struct {
	ID                int             `json:"id"`
	PONumber          string          `json:"po_number"`
	JobID             int             `json:"job_id"`
	OriginCompanyID   int             `json:"origin_company_id"`
	OriginCompanyCode string          `json:"origin_company_code"`
	TargetCompanyID   int             `json:"target_company_id"`
	TargetCompanyCode string          `json:"target_company_code"`
	OriginalAmount    decimal.Decimal `json:"original_amount"`
	VendorAmount      decimal.Decimal `json:"vendor_amount"`
	MarginAmount      decimal.Decimal `json:"margin_amount"`
	ExternalRef       *string         `json:"external_ref,omitempty"`
	PDFKey            *string         `json:"pdf_key,omitempty"`
	Status            POStatus        `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	SentAt            *time.Time      `json:"sent_at,omitempty"`
	AcknowledgedAt    *time.Time      `json:"acknowledged_at,omitempty"`
	FulfilledAt       *time.Time      `json:"fulfilled_at,omitempty"`
}

// CreatePOInput holds the fields required to record a new purchase order hop.
type CreatePOInput struct {
	JobID             int
	OriginCompanyCode string
	TargetCompanyCode string
	OriginalAmount    decimal.Decimal
	VendorAmount      decimal.Decimal
	ExternalRef       *string
	PDFKey            *string
}
