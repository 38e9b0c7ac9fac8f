package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-pots-api/internal/application/pot"
	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/validate"
	"github.com/go-pots-api/internal/transport/http/middleware"
)

// PotEnvelope wraps pot mutation responses; GoalReached flags the deposit
// that crossed the savings goal.
type PotEnvelope struct {
	Pot         *domain.Pot `json:"pot"`
	GoalReached bool        `json:"goal_reached,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// PotHandler handles savings pot endpoints.
type PotHandler struct {
	svc pot.Service
}

func NewPotHandler(svc pot.Service) *PotHandler { return &PotHandler{svc: svc} }

func (h *PotHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreatePotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PotEnvelope{Pot: p})
}

func (h *PotHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	pots, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"pots": pots})
}

func (h *PotHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, goalReached, err := h.svc.Deposit(r.Context(), chi.URLParam(r, "id"), claims.UserID, req.Amount)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PotEnvelope{Pot: p, GoalReached: goalReached})
}

func (h *PotHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.svc.Withdraw(r.Context(), chi.URLParam(r, "id"), claims.UserID, req.Amount)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PotEnvelope{Pot: p})
}

func (h *PotHandler) SetGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.SetGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.svc.SetGoal(r.Context(), chi.URLParam(r, "id"), claims.UserID, req.GoalAmount)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PotEnvelope{Pot: p})
}

func (h *PotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pot deleted"})
}
