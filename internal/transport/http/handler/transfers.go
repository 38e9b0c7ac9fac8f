package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-pots-api/internal/application/transfer"
	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/validate"
	"github.com/go-pots-api/internal/transport/http/middleware"
)

// TransferHandler handles wallet-to-wallet transfers and the transaction feed.
type TransferHandler struct {
	svc transfer.Service
}

func NewTransferHandler(svc transfer.Service) *TransferHandler { return &TransferHandler{svc: svc} }

func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := h.svc.Transfer(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TransferHandler) Recent(w http.ResponseWriter, r *http.Request) {
	txns, err := h.svc.Recent(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": txns})
}
