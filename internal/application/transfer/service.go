package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/clock"
	"github.com/go-pots-api/internal/pkg/id"
)

const saveAttempts = 3

// recentLimit caps the public transaction feed.
const recentLimit = 50

type Service interface {
	// Transfer moves amount between two wallets and writes the immutable
	// transaction record, all-or-nothing. No reward points are granted here;
	// reward coupling is pots, logins and games only.
	Transfer(ctx context.Context, senderID string, req domain.TransferRequest) (*domain.Transaction, error)
	Recent(ctx context.Context) ([]domain.Transaction, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type transactionStore interface {
	ListRecent(ctx context.Context, limit int32) ([]domain.Transaction, error)
}

// atomicStore commits both wallets and the transaction record as one unit.
type atomicStore interface {
	WriteTransfer(ctx context.Context, sender, receiver *domain.User, t *domain.Transaction) error
}

// smsSender delivers the credit alert to the receiver; best-effort.
type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	users  userStore
	txns   transactionStore
	atomic atomicStore
	sms    smsSender
	clk    clock.Clock
}

func NewService(users userStore, txns transactionStore, atomic atomicStore, sms smsSender, clk clock.Clock) Service {
	return &service{users: users, txns: txns, atomic: atomic, sms: sms, clk: clk}
}

func (s *service) Transfer(ctx context.Context, senderID string, req domain.TransferRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", domain.ErrBadRequest)
	}
	if req.ReceiverID == senderID {
		return nil, fmt.Errorf("cannot transfer to yourself: %w", domain.ErrBadRequest)
	}

	var txn *domain.Transaction
	err := s.retryConflict(func() error {
		sender, err := s.users.Get(ctx, senderID)
		if err != nil {
			return err
		}
		receiver, err := s.users.Get(ctx, req.ReceiverID)
		if err != nil {
			return err
		}
		if sender.BankBalance < req.Amount {
			return fmt.Errorf("wallet balance %d below %d: %w", sender.BankBalance, req.Amount, domain.ErrInsufficientBalance)
		}

		now := s.clk.Now()
		sender.BankBalance -= req.Amount
		receiver.BankBalance += req.Amount

		t := &domain.Transaction{
			TransactionID: id.New(),
			SenderID:      sender.UserID,
			ReceiverID:    receiver.UserID,
			SenderName:    sender.Name,
			ReceiverName:  receiver.Name,
			Amount:        req.Amount,
			Note:          req.Note,
			Status:        domain.TxCompleted,
			Date:          now,
		}

		sender.Notifications = append(sender.Notifications, domain.Notification{
			NotificationID: id.New(),
			Type:           domain.NotifTransaction,
			Title:          "Money Sent",
			Message:        fmt.Sprintf("You sent %d to %s.", req.Amount, receiver.Name),
			Icon:           "send",
			CreatedAt:      now,
		})
		receiver.Notifications = append(receiver.Notifications, domain.Notification{
			NotificationID: id.New(),
			Type:           domain.NotifTransaction,
			Title:          "Money Received",
			Message:        fmt.Sprintf("You received %d from %s.", req.Amount, sender.Name),
			Icon:           "receive",
			CreatedAt:      now,
		})
		sender.UpdatedAt = now
		receiver.UpdatedAt = now

		if err := s.atomic.WriteTransfer(ctx, sender, receiver, t); err != nil {
			return err
		}
		txn = t
		s.alertReceiver(ctx, receiver, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) Recent(ctx context.Context) ([]domain.Transaction, error) {
	return s.txns.ListRecent(ctx, recentLimit)
}

// alertReceiver sends the SMS credit alert. Failures are logged, never
// returned: the transfer has already committed.
func (s *service) alertReceiver(ctx context.Context, receiver *domain.User, t *domain.Transaction) {
	if s.sms == nil || receiver.Phone == "" {
		return
	}
	msg := fmt.Sprintf("Your wallet was credited %d by %s.", t.Amount, t.SenderName)
	if err := s.sms.SendSMS(ctx, receiver.Phone, msg); err != nil {
		slog.Error("transfer sms failed", "transaction_id", t.TransactionID, "err", err)
	}
}

func (s *service) retryConflict(fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		lastErr = err
	}
	return lastErr
}
