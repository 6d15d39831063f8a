package web

import (
	"encoding/json"
	"net/http"

	"printflow/internal/core"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listJobPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListJobPurchaseOrders(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) updatePurchaseOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid purchase order id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, r, "status is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.UpdatePurchaseOrderStatus(r.Context(), id, core.POStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// uploadVendorPODocument accepts a multipart form with a "file" part and an
// optional "text" field holding the document's extracted text for field
// extraction.
func (h *Handler) uploadVendorPODocument(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid purchase order id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20) // 50 MB
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, r, "invalid multipart form", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "file is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.svc.UploadVendorPODocument(r.Context(), id, header.Filename, file, r.FormValue("text"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// importVendorPO accepts a multipart form with a "file" part and a required
// "text" field; the extracted fields drive reconciliation, so without text
// there is nothing to import.
func (h *Handler) importVendorPO(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20) // 50 MB
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, r, "invalid multipart form", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "file is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()
	text := r.FormValue("text")
	if text == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ImportVendorPO(r.Context(), chi.URLParam(r, "ref"), header.Filename, file, text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if result.Created {
		writeJSONStatus(w, http.StatusCreated, result)
		return
	}
	writeJSON(w, result)
}
