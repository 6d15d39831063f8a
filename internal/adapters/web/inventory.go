package web

import (
	"context"
	"encoding/json"
	"net/http"

	"printflow/internal/app"

	"github.com/go-chi/chi/v5"
)

type paperMovementRequest struct {
	RollType string `json:"roll_type"`
	Quantity string `json:"quantity"`
	Note     string `json:"note"`
	JobID    int    `json:"job_id"`
}

func (h *Handler) paperRequest(r *http.Request) (app.PaperMovementRequest, error) {
	var req paperMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app.PaperMovementRequest{}, err
	}
	return app.PaperMovementRequest{
		CompanyCode: chi.URLParam(r, "company"),
		RollType:    req.RollType,
		Quantity:    req.Quantity,
		Note:        req.Note,
		JobID:       req.JobID,
	}, nil
}

func (h *Handler) addPaper(w http.ResponseWriter, r *http.Request) {
	h.paperMove(w, r, h.svc.AddPaper)
}

func (h *Handler) removePaper(w http.ResponseWriter, r *http.Request) {
	h.paperMove(w, r, h.svc.RemovePaper)
}

func (h *Handler) adjustPaper(w http.ResponseWriter, r *http.Request) {
	h.paperMove(w, r, h.svc.AdjustPaper)
}

func (h *Handler) deductPaperForJob(w http.ResponseWriter, r *http.Request) {
	h.paperMove(w, r, h.svc.DeductPaperForJob)
}

func (h *Handler) paperMove(w http.ResponseWriter, r *http.Request,
	move func(ctx context.Context, req app.PaperMovementRequest) (*app.StockResult, error)) {
	req, err := h.paperRequest(r)
	if err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := move(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listPaperStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPaperStock(r.Context(), chi.URLParam(r, "company"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listPaperTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid stock id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.ListPaperTransactions(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
