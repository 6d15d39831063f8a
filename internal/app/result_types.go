package app

import (
	"printflow/internal/ai"
	"printflow/internal/blob"
	"printflow/internal/core"
)

// JobResult is returned by job lifecycle operations. PurchaseOrderError
// carries a failed auto-PO hop without failing the job itself.
type JobResult struct {
	Job                *core.Job             `json:"job"`
	PurchaseOrders     []core.PurchaseOrder  `json:"purchase_orders,omitempty"`
	Invoices           []core.Invoice        `json:"invoices,omitempty"`
	PurchaseOrderError string                `json:"purchase_order_error,omitempty"`
}

type JobListResult struct {
	Jobs []core.Job `json:"jobs"`
}

type QuoteResult struct {
	Quote *core.Quote `json:"quote"`
}

type QuoteListResult struct {
	Quotes []core.Quote `json:"quotes"`
}

type PurchaseOrderResult struct {
	PurchaseOrder *core.PurchaseOrder `json:"purchase_order"`
}

type PurchaseOrderListResult struct {
	PurchaseOrders []core.PurchaseOrder `json:"purchase_orders"`
}

// VendorPOUploadResult is returned by UploadVendorPODocument. Extracted is
// nil when no document text was supplied or extraction failed.
type VendorPOUploadResult struct {
	PurchaseOrder *core.PurchaseOrder `json:"purchase_order"`
	Object        *blob.ObjectInfo    `json:"object"`
	Extracted     *ai.POFields        `json:"extracted,omitempty"`
	ExtractError  string              `json:"extract_error,omitempty"`
}

// VendorPOImportResult is returned by ImportVendorPO.
type VendorPOImportResult struct {
	PurchaseOrder *core.PurchaseOrder `json:"purchase_order"`
	Created       bool                `json:"created"`
	Object        *blob.ObjectInfo    `json:"object"`
	Extracted     *ai.POFields        `json:"extracted"`
}

// CallbackResult is returned by ReconcileVendorCallback. Created reports
// whether the callback produced a new purchase order or matched an existing
// one.
type CallbackResult struct {
	PurchaseOrder *core.PurchaseOrder `json:"purchase_order"`
	Created       bool                `json:"created"`
}

type ProofResult struct {
	Proof *core.Proof `json:"proof"`
}

type ProofListResult struct {
	Proofs []core.Proof `json:"proofs"`
}

type ShipmentResult struct {
	Shipment *core.Shipment `json:"shipment"`
}

type InvoiceResult struct {
	Invoice *core.Invoice `json:"invoice"`
}

type InvoiceListResult struct {
	Invoices []core.Invoice `json:"invoices"`
}

type StockResult struct {
	Stock *core.PaperStock `json:"stock"`
}

type StockListResult struct {
	Stocks []core.PaperStock `json:"stocks"`
}

type PaperLedgerResult struct {
	Transactions []core.PaperTransaction `json:"transactions"`
}

type CompanyListResult struct {
	Companies []core.Company `json:"companies"`
}

type NotificationListResult struct {
	Notifications []core.Notification `json:"notifications"`
}
