package web

import (
	"encoding/json"
	"net/http"

	"printflow/internal/app"
)

type createQuoteRequest struct {
	CompanyCode string `json:"company_code"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

func (h *Handler) createQuote(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.CreateQuote(r.Context(), app.CreateQuoteRequest{
		CompanyCode: req.CompanyCode,
		Description: req.Description,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (h *Handler) getQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid quote id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetQuote(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listQuotes(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListQuotes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) priceQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid quote id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Total string `json:"total"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Total == "" {
		writeError(w, r, "total is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.PriceQuote(r.Context(), id, req.Total)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) acceptQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid quote id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.AcceptQuote(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (h *Handler) declineQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid quote id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.DeclineQuote(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
