package pot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-pots-api/internal/application/rewards"
	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// --- mocks ---

type mockPotStore struct{ mock.Mock }

func (m *mockPotStore) Create(ctx context.Context, p *domain.Pot) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockPotStore) Get(ctx context.Context, potID string) (*domain.Pot, error) {
	args := m.Called(ctx, potID)
	if p, _ := args.Get(0).(*domain.Pot); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPotStore) ListByUser(ctx context.Context, userID string) ([]domain.Pot, error) {
	args := m.Called(ctx, userID)
	if p, _ := args.Get(0).([]domain.Pot); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPotStore) Save(ctx context.Context, p *domain.Pot) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockPotStore) Delete(ctx context.Context, p *domain.Pot) error {
	return m.Called(ctx, p).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAtomicStore struct{ mock.Mock }

func (m *mockAtomicStore) SavePotWithUser(ctx context.Context, p *domain.Pot, u *domain.User) error {
	return m.Called(ctx, p, u).Error(0)
}

type mockRewarder struct{ mock.Mock }

func (m *mockRewarder) ApplyPotInteraction(ctx context.Context, userID, action string, amount int64, potName string) error {
	return m.Called(ctx, userID, action, amount, potName).Error(0)
}

// --- helpers ---

func newTestService(ps *mockPotStore, us *mockUserStore, as *mockAtomicStore, rw *mockRewarder) Service {
	return NewService(ps, us, as, rw, clock.Fixed{T: anchor})
}

func ownedPot() *domain.Pot {
	return &domain.Pot{PotID: "p1", UserID: "u1", Name: "Holiday", Balance: 900, GoalAmount: 1000, Version: 1}
}

func wallet(balance int64) *domain.User {
	return &domain.User{UserID: "u1", Name: "Alice", BankBalance: balance, Version: 1}
}

// --- Create ---

func TestCreate(t *testing.T) {
	ps := &mockPotStore{}
	ps.On("Create", mock.Anything, mock.Anything).Return(nil)
	rw := &mockRewarder{}
	rw.On("ApplyPotInteraction", mock.Anything, "u1", rewards.ActionCreate, int64(0), "Holiday").Return(nil)

	svc := newTestService(ps, &mockUserStore{}, &mockAtomicStore{}, rw)
	p, err := svc.Create(context.Background(), "u1", domain.CreatePotRequest{Name: "Holiday", Category: "travel", GoalAmount: 1000})

	require.NoError(t, err)
	assert.NotEmpty(t, p.PotID)
	assert.Equal(t, "u1", p.UserID)
	assert.Zero(t, p.Balance)
	rw.AssertExpectations(t)
}

// --- Deposit ---

func TestDeposit_MovesWalletIntoPot(t *testing.T) {
	p := ownedPot()
	p.GoalAmount = 0
	u := wallet(1000)
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(p, nil)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(u, nil)
	as := &mockAtomicStore{}
	as.On("SavePotWithUser", mock.Anything, p, u).Return(nil)
	rw := &mockRewarder{}
	rw.On("ApplyPotInteraction", mock.Anything, "u1", rewards.ActionDeposit, int64(300), "Holiday").Return(nil)

	got, goalReached, err := newTestService(ps, us, as, rw).Deposit(context.Background(), "p1", "u1", 300)

	require.NoError(t, err)
	assert.False(t, goalReached)
	assert.Equal(t, int64(1200), got.Balance)
	assert.Equal(t, int64(700), u.BankBalance)
	rw.AssertExpectations(t)
}

func TestDeposit_GoalCrossingIsEdgeTriggered(t *testing.T) {
	// 900 + 150 crosses the 1000 goal exactly once.
	p := ownedPot()
	u := wallet(1000)
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(p, nil)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(u, nil)
	as := &mockAtomicStore{}
	as.On("SavePotWithUser", mock.Anything, p, u).Return(nil)
	rw := &mockRewarder{}
	rw.On("ApplyPotInteraction", mock.Anything, "u1", rewards.ActionGoalReached, int64(150), "Holiday").Return(nil)

	_, goalReached, err := newTestService(ps, us, as, rw).Deposit(context.Background(), "p1", "u1", 150)

	require.NoError(t, err)
	assert.True(t, goalReached)
	rw.AssertExpectations(t)
}

func TestDeposit_PastGoalIsNotRetriggered(t *testing.T) {
	p := ownedPot()
	p.Balance = 1500
	u := wallet(1000)
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(p, nil)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(u, nil)
	as := &mockAtomicStore{}
	as.On("SavePotWithUser", mock.Anything, p, u).Return(nil)
	rw := &mockRewarder{}
	rw.On("ApplyPotInteraction", mock.Anything, "u1", rewards.ActionDeposit, int64(100), "Holiday").Return(nil)

	_, goalReached, err := newTestService(ps, us, as, rw).Deposit(context.Background(), "p1", "u1", 100)

	require.NoError(t, err)
	assert.False(t, goalReached)
	rw.AssertExpectations(t)
}

func TestDeposit_InsufficientWallet(t *testing.T) {
	p := ownedPot()
	u := wallet(50)
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(p, nil)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(u, nil)
	as := &mockAtomicStore{}

	_, _, err := newTestService(ps, us, as, &mockRewarder{}).Deposit(context.Background(), "p1", "u1", 300)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientBalance))
	assert.Equal(t, int64(50), u.BankBalance)
	as.AssertNotCalled(t, "SavePotWithUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeposit_ForbiddenForNonOwner(t *testing.T) {
	p := ownedPot()
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(p, nil)

	_, _, err := newTestService(ps, &mockUserStore{}, &mockAtomicStore{}, &mockRewarder{}).Deposit(context.Background(), "p1", "intruder", 300)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestDeposit_RejectsNonPositiveAmount(t *testing.T) {
	svc := newTestService(&mockPotStore{}, &mockUserStore{}, &mockAtomicStore{}, &mockRewarder{})

	_, _, err := svc.Deposit(context.Background(), "p1", "u1", 0)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, _, err = svc.Deposit(context.Background(), "p1", "u1", -5)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestDeposit_RewardFailureIsSwallowed(t *testing.T) {
	p := ownedPot()
	p.GoalAmount = 0
	u := wallet(1000)
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(p, nil)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(u, nil)
	as := &mockAtomicStore{}
	as.On("SavePotWithUser", mock.Anything, p, u).Return(nil)
	rw := &mockRewarder{}
	rw.On("ApplyPotInteraction", mock.Anything, "u1", rewards.ActionDeposit, int64(300), "Holiday").Return(errors.New("rewards down"))

	_, _, err := newTestService(ps, us, as, rw).Deposit(context.Background(), "p1", "u1", 300)

	require.NoError(t, err)
	rw.AssertExpectations(t)
}

func TestDeposit_RetriesOnConflict(t *testing.T) {
	u := wallet(1000)
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(ownedPot(), nil)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(u, nil)
	as := &mockAtomicStore{}
	as.On("SavePotWithUser", mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrConflict).Once()
	as.On("SavePotWithUser", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	rw := &mockRewarder{}
	rw.On("ApplyPotInteraction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, _, err := newTestService(ps, us, as, rw).Deposit(context.Background(), "p1", "u1", 50)

	require.NoError(t, err)
	as.AssertExpectations(t)
}

// --- Withdraw ---

func TestWithdraw_MovesPotIntoWallet(t *testing.T) {
	p := ownedPot()
	u := wallet(100)
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(p, nil)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(u, nil)
	as := &mockAtomicStore{}
	as.On("SavePotWithUser", mock.Anything, p, u).Return(nil)
	rw := &mockRewarder{}
	rw.On("ApplyPotInteraction", mock.Anything, "u1", rewards.ActionWithdraw, int64(400), "Holiday").Return(nil)

	got, err := newTestService(ps, us, as, rw).Withdraw(context.Background(), "p1", "u1", 400)

	require.NoError(t, err)
	assert.Equal(t, int64(500), got.Balance)
	assert.Equal(t, int64(500), u.BankBalance)
}

func TestWithdraw_InsufficientPotBalance(t *testing.T) {
	p := ownedPot()
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(p, nil)
	as := &mockAtomicStore{}

	_, err := newTestService(ps, &mockUserStore{}, as, &mockRewarder{}).Withdraw(context.Background(), "p1", "u1", 1500)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientBalance))
	assert.Equal(t, int64(900), p.Balance)
	as.AssertNotCalled(t, "SavePotWithUser", mock.Anything, mock.Anything, mock.Anything)
}

// --- SetGoal and Delete ---

func TestSetGoal(t *testing.T) {
	p := ownedPot()
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(p, nil)
	ps.On("Save", mock.Anything, p).Return(nil)

	got, err := newTestService(ps, &mockUserStore{}, &mockAtomicStore{}, &mockRewarder{}).SetGoal(context.Background(), "p1", "u1", 5000)

	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.GoalAmount)
}

func TestSetGoal_OtherUsersPotReadsAsMissing(t *testing.T) {
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(ownedPot(), nil)

	_, err := newTestService(ps, &mockUserStore{}, &mockAtomicStore{}, &mockRewarder{}).SetGoal(context.Background(), "p1", "intruder", 5000)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDelete(t *testing.T) {
	p := ownedPot()
	ps := &mockPotStore{}
	ps.On("Get", mock.Anything, "p1").Return(p, nil)
	ps.On("Delete", mock.Anything, p).Return(nil)

	err := newTestService(ps, &mockUserStore{}, &mockAtomicStore{}, &mockRewarder{}).Delete(context.Background(), "p1", "u1")

	require.NoError(t, err)
	ps.AssertExpectations(t)
}
