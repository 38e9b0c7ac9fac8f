package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-pots-api/internal/domain"
	jwtinfra "github.com/go-pots-api/internal/infrastructure/jwt"
	"github.com/go-pots-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockPotSvc struct{ mock.Mock }

func (m *mockPotSvc) Create(ctx context.Context, userID string, req domain.CreatePotRequest) (*domain.Pot, error) {
	args := m.Called(ctx, userID, req)
	if p, _ := args.Get(0).(*domain.Pot); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPotSvc) List(ctx context.Context, userID string) ([]domain.Pot, error) {
	args := m.Called(ctx, userID)
	if p, _ := args.Get(0).([]domain.Pot); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPotSvc) Deposit(ctx context.Context, potID, userID string, amount int64) (*domain.Pot, bool, error) {
	args := m.Called(ctx, potID, userID, amount)
	if p, _ := args.Get(0).(*domain.Pot); p != nil {
		return p, args.Bool(1), args.Error(2)
	}
	return nil, false, args.Error(2)
}
func (m *mockPotSvc) Withdraw(ctx context.Context, potID, userID string, amount int64) (*domain.Pot, error) {
	args := m.Called(ctx, potID, userID, amount)
	if p, _ := args.Get(0).(*domain.Pot); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPotSvc) SetGoal(ctx context.Context, potID, userID string, goalAmount int64) (*domain.Pot, error) {
	args := m.Called(ctx, potID, userID, goalAmount)
	if p, _ := args.Get(0).(*domain.Pot); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPotSvc) Delete(ctx context.Context, potID, userID string) error {
	return m.Called(ctx, potID, userID).Error(0)
}

// --- helpers ---

// potRouter mounts the pot routes with the caller's claims already injected,
// sidestepping token verification.
func potRouter(h *PotHandler, userID string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.ClaimsKey, &jwtinfra.Claims{UserID: userID, Role: domain.RoleUser})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/pots", h.Create)
	r.Post("/pots/{id}/deposit", h.Deposit)
	r.Post("/pots/{id}/withdraw", h.Withdraw)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// --- tests ---

func TestPotDeposit_OK(t *testing.T) {
	svc := &mockPotSvc{}
	svc.On("Deposit", mock.Anything, "p1", "u1", int64(300)).
		Return(&domain.Pot{PotID: "p1", Balance: 1200}, true, nil)

	rr := postJSON(t, potRouter(NewPotHandler(svc), "u1"), "/pots/p1/deposit", domain.AmountRequest{Amount: 300})

	assert.Equal(t, http.StatusOK, rr.Code)
	var env PotEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.GoalReached)
	assert.Equal(t, int64(1200), env.Pot.Balance)
	svc.AssertExpectations(t)
}

func TestPotDeposit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"missing pot", domain.ErrNotFound, http.StatusNotFound},
		{"someone else's pot", domain.ErrForbidden, http.StatusForbidden},
		{"empty wallet", domain.ErrInsufficientBalance, http.StatusBadRequest},
		{"lost race", domain.ErrConflict, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPotSvc{}
			svc.On("Deposit", mock.Anything, "p1", "u1", int64(300)).Return(nil, false, tt.err)

			rr := postJSON(t, potRouter(NewPotHandler(svc), "u1"), "/pots/p1/deposit", domain.AmountRequest{Amount: 300})

			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

func TestPotDeposit_RejectsZeroAmountBeforeService(t *testing.T) {
	svc := &mockPotSvc{}

	rr := postJSON(t, potRouter(NewPotHandler(svc), "u1"), "/pots/p1/deposit", domain.AmountRequest{Amount: 0})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPotCreate(t *testing.T) {
	svc := &mockPotSvc{}
	svc.On("Create", mock.Anything, "u1", mock.Anything).
		Return(&domain.Pot{PotID: "p1", Name: "Holiday"}, nil)

	rr := postJSON(t, potRouter(NewPotHandler(svc), "u1"), "/pots", domain.CreatePotRequest{Name: "Holiday", Category: "travel"})

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestPotWithdraw_NoClaims(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/pots/{id}/withdraw", NewPotHandler(&mockPotSvc{}).Withdraw)

	rr := postJSON(t, r, "/pots/p1/withdraw", domain.AmountRequest{Amount: 100})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
