package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"printflow/internal/app"
	"printflow/internal/core"

	"github.com/go-chi/chi/v5"
)

// idParam parses a numeric {id}-style URL parameter.
func idParam(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	return id, err == nil && id > 0
}

type createJobRequest struct {
	CompanyCode      string `json:"company_code"`
	Description      string `json:"description"`
	Quantity         int    `json:"quantity"`
	CustomerTotal    string `json:"customer_total"`
	CustomerPONumber string `json:"customer_po_number"`
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.CreateJob(r.Context(), app.CreateJobRequest{
		CompanyCode:      req.CompanyCode,
		Description:      req.Description,
		Quantity:         req.Quantity,
		CustomerTotal:    req.CustomerTotal,
		CustomerPONumber: req.CustomerPONumber,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetJob(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	var status *core.JobStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := core.JobStatus(s)
		status = &st
	}
	result, err := h.svc.ListJobs(r.Context(), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) transitionJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, r, "status is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.TransitionJob(r.Context(), chi.URLParam(r, "ref"), core.JobStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// uploadCustomerPO accepts a multipart form with a "file" part and a
// "po_number" field.
func (h *Handler) uploadCustomerPO(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20) // 50 MB
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, r, "invalid multipart form", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	poNumber := r.FormValue("po_number")
	if poNumber == "" {
		writeError(w, r, "po_number is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "file is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.svc.UploadCustomerPO(r.Context(), chi.URLParam(r, "ref"), poNumber, header.Filename, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) recordShipment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Carrier        string `json:"carrier"`
		TrackingNumber string `json:"tracking_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.RecordShipment(r.Context(), app.RecordShipmentRequest{
		JobRef:         chi.URLParam(r, "ref"),
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}
