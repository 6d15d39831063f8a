package web

import (
	"net/http"

	"printflow/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	// Vendor webhook: Bradford posts estimate callbacks here.
	r.Post("/api/webhooks/bradford", h.vendorCallback)

	// File uploads manage body limits inside the handlers (multipart).
	r.Post("/api/jobs/{ref}/customer-po", h.uploadCustomerPO)
	r.Post("/api/jobs/{ref}/proofs", h.submitProof)
	r.Post("/api/purchase-orders/{id}/document", h.uploadVendorPODocument)
	r.Post("/api/jobs/{ref}/vendor-po", h.importVendorPO)

	// Everything else: 1 MB body limit.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/companies", h.listCompanies)
		r.Get("/api/notifications", h.listNotifications)

		r.Get("/api/quotes", h.listQuotes)
		r.Post("/api/quotes", h.createQuote)
		r.Get("/api/quotes/{id}", h.getQuote)
		r.Post("/api/quotes/{id}/price", h.priceQuote)
		r.Post("/api/quotes/{id}/accept", h.acceptQuote)
		r.Post("/api/quotes/{id}/decline", h.declineQuote)

		r.Get("/api/jobs", h.listJobs)
		r.Post("/api/jobs", h.createJob)
		r.Get("/api/jobs/{ref}", h.getJob)
		r.Post("/api/jobs/{ref}/transition", h.transitionJob)
		r.Get("/api/jobs/{ref}/purchase-orders", h.listJobPurchaseOrders)
		r.Get("/api/jobs/{ref}/proofs", h.listJobProofs)
		r.Get("/api/jobs/{ref}/invoices", h.listJobInvoices)
		r.Post("/api/jobs/{ref}/shipments", h.recordShipment)
		r.Post("/api/jobs/{ref}/invoice", h.invoiceJob)

		r.Post("/api/purchase-orders/{id}/status", h.updatePurchaseOrderStatus)

		r.Post("/api/proofs/{id}/approve", h.approveProof)
		r.Post("/api/proofs/{id}/reject", h.rejectProof)

		r.Post("/api/invoices/{id}/send", h.markInvoiceSent)
		r.Post("/api/invoices/{id}/pay", h.markInvoicePaid)

		r.Get("/api/inventory/{company}", h.listPaperStock)
		r.Post("/api/inventory/{company}/add", h.addPaper)
		r.Post("/api/inventory/{company}/remove", h.removePaper)
		r.Post("/api/inventory/{company}/adjust", h.adjustPaper)
		r.Post("/api/inventory/{company}/deduct", h.deductPaperForJob)
		r.Get("/api/inventory/stock/{id}/transactions", h.listPaperTransactions)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCompanies(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListNotifications(r.Context(), 100)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
