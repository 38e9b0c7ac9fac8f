package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-pots-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login/register responses.
type AuthEnvelope struct {
	Bearer string    `json:"Bearer,omitempty"`
	User   *SafeUser `json:"user,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// SafeUser is the outward user shape; credentials never leave the service.
type SafeUser struct {
	UserID         string                 `json:"id"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	PAN            string                 `json:"pan"`
	Phone          string                 `json:"phone,omitempty"`
	DateOfBirth    string                 `json:"date_of_birth,omitempty"`
	Role           string                 `json:"role"`
	BankBalance    int64                  `json:"bank_balance"`
	LinkedAccounts []domain.LinkedAccount `json:"linked_accounts,omitempty"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		UserID:         u.UserID,
		Name:           u.Name,
		Email:          u.Email,
		PAN:            u.PAN,
		Phone:          u.Phone,
		DateOfBirth:    u.DateOfBirth,
		Role:           u.Role,
		BankBalance:    u.BankBalance,
		LinkedAccounts: u.LinkedAccounts,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps service errors onto HTTP status codes via the domain sentinels.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
