package transfer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTransactionStore struct{ mock.Mock }

func (m *mockTransactionStore) ListRecent(ctx context.Context, limit int32) ([]domain.Transaction, error) {
	args := m.Called(ctx, limit)
	if t, _ := args.Get(0).([]domain.Transaction); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAtomicStore struct{ mock.Mock }

func (m *mockAtomicStore) WriteTransfer(ctx context.Context, sender, receiver *domain.User, t *domain.Transaction) error {
	return m.Called(ctx, sender, receiver, t).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

// --- helpers ---

func alice(balance int64) *domain.User {
	return &domain.User{UserID: "u1", Name: "Alice", BankBalance: balance, Version: 1}
}

func bob(balance int64) *domain.User {
	return &domain.User{UserID: "u2", Name: "Bob", Phone: "+15550001111", BankBalance: balance, Version: 1}
}

// --- Transfer ---

func TestTransfer_MovesMoneyAndRecords(t *testing.T) {
	sender, receiver := alice(1000), bob(200)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(sender, nil)
	us.On("Get", mock.Anything, "u2").Return(receiver, nil)
	as := &mockAtomicStore{}
	as.On("WriteTransfer", mock.Anything, sender, receiver, mock.Anything).Return(nil)
	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, "+15550001111", mock.Anything).Return(nil)

	svc := NewService(us, &mockTransactionStore{}, as, sms, clock.Fixed{T: anchor})
	txn, err := svc.Transfer(context.Background(), "u1", domain.TransferRequest{ReceiverID: "u2", Amount: 500, Note: "rent"})

	require.NoError(t, err)
	assert.Equal(t, int64(500), sender.BankBalance)
	assert.Equal(t, int64(700), receiver.BankBalance)

	assert.NotEmpty(t, txn.TransactionID)
	assert.Equal(t, "u1", txn.SenderID)
	assert.Equal(t, "u2", txn.ReceiverID)
	assert.Equal(t, "Alice", txn.SenderName)
	assert.Equal(t, "Bob", txn.ReceiverName)
	assert.Equal(t, int64(500), txn.Amount)
	assert.Equal(t, "rent", txn.Note)
	assert.Equal(t, domain.TxCompleted, txn.Status)
	assert.Equal(t, anchor, txn.Date)

	require.Len(t, sender.Notifications, 1)
	assert.Equal(t, "Money Sent", sender.Notifications[0].Title)
	require.Len(t, receiver.Notifications, 1)
	assert.Equal(t, "Money Received", receiver.Notifications[0].Title)
	sms.AssertExpectations(t)
}

func TestTransfer_InsufficientBalanceLeavesBothUntouched(t *testing.T) {
	sender, receiver := alice(100), bob(200)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(sender, nil)
	us.On("Get", mock.Anything, "u2").Return(receiver, nil)
	as := &mockAtomicStore{}

	svc := NewService(us, &mockTransactionStore{}, as, nil, clock.Fixed{T: anchor})
	_, err := svc.Transfer(context.Background(), "u1", domain.TransferRequest{ReceiverID: "u2", Amount: 500})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientBalance))
	assert.Equal(t, int64(100), sender.BankBalance)
	assert.Equal(t, int64(200), receiver.BankBalance)
	as.AssertNotCalled(t, "WriteTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransfer_UnknownReceiver(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(alice(1000), nil)
	us.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := NewService(us, &mockTransactionStore{}, &mockAtomicStore{}, nil, clock.Fixed{T: anchor})
	_, err := svc.Transfer(context.Background(), "u1", domain.TransferRequest{ReceiverID: "ghost", Amount: 100})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTransfer_RejectsSelfAndNonPositive(t *testing.T) {
	svc := NewService(&mockUserStore{}, &mockTransactionStore{}, &mockAtomicStore{}, nil, clock.Fixed{T: anchor})

	_, err := svc.Transfer(context.Background(), "u1", domain.TransferRequest{ReceiverID: "u1", Amount: 100})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = svc.Transfer(context.Background(), "u1", domain.TransferRequest{ReceiverID: "u2", Amount: 0})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestTransfer_CommitFailureSurfaces(t *testing.T) {
	sender, receiver := alice(1000), bob(200)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(sender, nil)
	us.On("Get", mock.Anything, "u2").Return(receiver, nil)
	as := &mockAtomicStore{}
	as.On("WriteTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("table offline"))
	sms := &mockSMSSender{}

	svc := NewService(us, &mockTransactionStore{}, as, sms, clock.Fixed{T: anchor})
	_, err := svc.Transfer(context.Background(), "u1", domain.TransferRequest{ReceiverID: "u2", Amount: 500})

	require.Error(t, err)
	// the SMS alert only fires after a committed transfer
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransfer_RetriesOnConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(alice(1000), nil)
	us.On("Get", mock.Anything, "u2").Return(bob(200), nil)
	as := &mockAtomicStore{}
	as.On("WriteTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrConflict).Once()
	as.On("WriteTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewService(us, &mockTransactionStore{}, as, sms, clock.Fixed{T: anchor})
	_, err := svc.Transfer(context.Background(), "u1", domain.TransferRequest{ReceiverID: "u2", Amount: 100})

	require.NoError(t, err)
	as.AssertExpectations(t)
}

func TestTransfer_SMSFailureDoesNotFailTransfer(t *testing.T) {
	sender, receiver := alice(1000), bob(200)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(sender, nil)
	us.On("Get", mock.Anything, "u2").Return(receiver, nil)
	as := &mockAtomicStore{}
	as.On("WriteTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("sns down"))

	svc := NewService(us, &mockTransactionStore{}, as, sms, clock.Fixed{T: anchor})
	_, err := svc.Transfer(context.Background(), "u1", domain.TransferRequest{ReceiverID: "u2", Amount: 500})

	require.NoError(t, err)
}

// --- Recent ---

func TestRecent(t *testing.T) {
	ts := &mockTransactionStore{}
	ts.On("ListRecent", mock.Anything, int32(recentLimit)).Return([]domain.Transaction{{TransactionID: "t1"}}, nil)

	svc := NewService(&mockUserStore{}, ts, &mockAtomicStore{}, nil, clock.Fixed{T: anchor})
	txns, err := svc.Recent(context.Background())

	require.NoError(t, err)
	require.Len(t, txns, 1)
	ts.AssertExpectations(t)
}
