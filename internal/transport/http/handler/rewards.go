package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-pots-api/internal/application/rewards"
	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/transport/http/middleware"
)

// RewardsHandler handles the points, streak and scratch card endpoints.
type RewardsHandler struct {
	svc rewards.Service
}

func NewRewardsHandler(svc rewards.Service) *RewardsHandler { return &RewardsHandler{svc: svc} }

func (h *RewardsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ledger, err := h.svc.Get(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

func (h *RewardsHandler) LoginStreak(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ledger, err := h.svc.EvaluateLoginStreak(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

func (h *RewardsHandler) RevealScratchCard(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	card, ledger, err := h.svc.RevealScratchCard(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"card":    card,
		"rewards": ledger,
	})
}

func (h *RewardsHandler) SaveGameScore(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Game  string `json:"game"`
		Score int64  `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Game == "" || req.Score < 0 {
		writeError(w, http.StatusBadRequest, "game name and a non-negative score are required")
		return
	}
	points, ledger, err := h.svc.SaveGameScore(r.Context(), claims.UserID, req.Game, req.Score)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"points_awarded": points,
		"rewards":        ledger,
	})
}

func (h *RewardsHandler) ClaimOffer(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ledger, err := h.svc.ClaimOffer(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

// NotificationHandler handles the in-app notification feed.
type NotificationHandler struct {
	svc rewards.Service
}

func NewNotificationHandler(svc rewards.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	notifs, err := h.svc.Notifications(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	if notifs == nil {
		notifs = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifs})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	notifs, err := h.svc.MarkNotificationsRead(r.Context(), claims.UserID, req.IDs)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifs})
}
