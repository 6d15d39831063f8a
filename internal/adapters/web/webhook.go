package web

import (
	"encoding/json"
	"net/http"

	"printflow/internal/core"
)

// vendorCallback handles Bradford's estimate webhook. Replays of a callback
// already applied return 200 with the existing purchase order; a fresh
// callback returns 201.
func (h *Handler) vendorCallback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB

	var cb core.VendorCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ReconcileVendorCallback(r.Context(), cb)
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
