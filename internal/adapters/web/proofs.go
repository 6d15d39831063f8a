package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// submitProof accepts a multipart form with a "file" part.
func (h *Handler) submitProof(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.svc.SubmitProof(r.Context(), chi.URLParam(r, "ref"), header.Filename, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (h *Handler) listJobProofs(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListJobProofs(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) approveProof(w http.ResponseWriter, r *http.Request) {
	h.decideProof(w, r, true)
}

func (h *Handler) rejectProof(w http.ResponseWriter, r *http.Request) {
	h.decideProof(w, r, false)
}

func (h *Handler) decideProof(w http.ResponseWriter, r *http.Request, approve bool) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid proof id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Comment string `json:"comment"`
	}
	// Body is optional; a missing comment is fine.
	_ = json.NewDecoder(r.Body).Decode(&req)

	var err error
	var result any
	if approve {
		result, err = h.svc.ApproveProof(r.Context(), id, req.Comment)
	} else {
		result, err = h.svc.RejectProof(r.Context(), id, req.Comment)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
