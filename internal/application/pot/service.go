package pot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-pots-api/internal/application/rewards"
	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/clock"
	"github.com/go-pots-api/internal/pkg/id"
)

// saveAttempts bounds the retry loop when a version-checked save loses a race.
const saveAttempts = 3

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreatePotRequest) (*domain.Pot, error)
	List(ctx context.Context, userID string) ([]domain.Pot, error)
	// Deposit moves amount from the owner's wallet into the pot and reports
	// whether this deposit crossed the savings goal.
	Deposit(ctx context.Context, potID, userID string, amount int64) (*domain.Pot, bool, error)
	// Withdraw moves amount from the pot back into the owner's wallet.
	Withdraw(ctx context.Context, potID, userID string, amount int64) (*domain.Pot, error)
	SetGoal(ctx context.Context, potID, userID string, goalAmount int64) (*domain.Pot, error)
	Delete(ctx context.Context, potID, userID string) error
}

type potStore interface {
	Create(ctx context.Context, p *domain.Pot) error
	Get(ctx context.Context, potID string) (*domain.Pot, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Pot, error)
	Save(ctx context.Context, p *domain.Pot) error
	Delete(ctx context.Context, p *domain.Pot) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// atomicStore pairs the pot and user documents in one all-or-nothing write.
type atomicStore interface {
	SavePotWithUser(ctx context.Context, p *domain.Pot, u *domain.User) error
}

// rewarder is the best-effort coupling into the rewards engine: a failure
// here is logged and never surfaced to the caller.
type rewarder interface {
	ApplyPotInteraction(ctx context.Context, userID, action string, amount int64, potName string) error
}

type service struct {
	pots   potStore
	users  userStore
	atomic atomicStore
	reward rewarder
	clk    clock.Clock
}

func NewService(pots potStore, users userStore, atomic atomicStore, reward rewarder, clk clock.Clock) Service {
	return &service{pots: pots, users: users, atomic: atomic, reward: reward, clk: clk}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreatePotRequest) (*domain.Pot, error) {
	if req.GoalAmount < 0 {
		return nil, fmt.Errorf("goal amount must not be negative: %w", domain.ErrBadRequest)
	}
	now := s.clk.Now()
	p := &domain.Pot{
		PotID:      id.New(),
		UserID:     userID,
		Name:       req.Name,
		Category:   req.Category,
		Balance:    0,
		GoalAmount: req.GoalAmount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.pots.Create(ctx, p); err != nil {
		return nil, err
	}
	s.applyReward(ctx, userID, rewards.ActionCreate, 0, p.Name)
	return p, nil
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Pot, error) {
	return s.pots.ListByUser(ctx, userID)
}

func (s *service) Deposit(ctx context.Context, potID, userID string, amount int64) (*domain.Pot, bool, error) {
	if amount <= 0 {
		return nil, false, fmt.Errorf("amount must be positive: %w", domain.ErrBadRequest)
	}

	var (
		pot         *domain.Pot
		goalReached bool
	)
	err := s.retryConflict(func() error {
		p, err := s.pots.Get(ctx, potID)
		if err != nil {
			return err
		}
		if !p.OwnedBy(userID) {
			return fmt.Errorf("pot %s is not yours: %w", potID, domain.ErrForbidden)
		}
		u, err := s.users.Get(ctx, userID)
		if err != nil {
			return err
		}
		if u.BankBalance < amount {
			return fmt.Errorf("wallet balance %d below %d: %w", u.BankBalance, amount, domain.ErrInsufficientBalance)
		}

		u.BankBalance -= amount
		p.Balance += amount
		// Edge-triggered: only the deposit that crosses the threshold counts.
		goalReached = p.GoalAmount > 0 && p.Balance >= p.GoalAmount && p.Balance-amount < p.GoalAmount
		now := s.clk.Now()
		p.UpdatedAt = now
		u.UpdatedAt = now

		if err := s.atomic.SavePotWithUser(ctx, p, u); err != nil {
			return err
		}
		pot = p
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	action := rewards.ActionDeposit
	if goalReached {
		action = rewards.ActionGoalReached
	}
	s.applyReward(ctx, userID, action, amount, pot.Name)
	return pot, goalReached, nil
}

func (s *service) Withdraw(ctx context.Context, potID, userID string, amount int64) (*domain.Pot, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", domain.ErrBadRequest)
	}

	var pot *domain.Pot
	err := s.retryConflict(func() error {
		p, err := s.pots.Get(ctx, potID)
		if err != nil {
			return err
		}
		if !p.OwnedBy(userID) {
			return fmt.Errorf("pot %s is not yours: %w", potID, domain.ErrForbidden)
		}
		if p.Balance < amount {
			return fmt.Errorf("pot balance %d below %d: %w", p.Balance, amount, domain.ErrInsufficientBalance)
		}
		u, err := s.users.Get(ctx, userID)
		if err != nil {
			return err
		}

		p.Balance -= amount
		u.BankBalance += amount
		now := s.clk.Now()
		p.UpdatedAt = now
		u.UpdatedAt = now

		if err := s.atomic.SavePotWithUser(ctx, p, u); err != nil {
			return err
		}
		pot = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.applyReward(ctx, userID, rewards.ActionWithdraw, amount, pot.Name)
	return pot, nil
}

func (s *service) SetGoal(ctx context.Context, potID, userID string, goalAmount int64) (*domain.Pot, error) {
	if goalAmount < 0 {
		return nil, fmt.Errorf("goal amount must not be negative: %w", domain.ErrBadRequest)
	}

	var pot *domain.Pot
	err := s.retryConflict(func() error {
		p, err := s.getOwned(ctx, potID, userID)
		if err != nil {
			return err
		}
		p.GoalAmount = goalAmount
		p.UpdatedAt = s.clk.Now()
		if err := s.pots.Save(ctx, p); err != nil {
			return err
		}
		pot = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pot, nil
}

func (s *service) Delete(ctx context.Context, potID, userID string) error {
	p, err := s.getOwned(ctx, potID, userID)
	if err != nil {
		return err
	}
	return s.pots.Delete(ctx, p)
}

// getOwned resolves a pot as if the lookup were filtered by owner: a pot that
// exists but belongs to someone else is indistinguishable from a missing one.
func (s *service) getOwned(ctx context.Context, potID, userID string) (*domain.Pot, error) {
	p, err := s.pots.Get(ctx, potID)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(userID) {
		return nil, fmt.Errorf("pot %s: %w", potID, domain.ErrNotFound)
	}
	return p, nil
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

func (s *service) applyReward(ctx context.Context, userID, action string, amount int64, potName string) {
	if err := s.reward.ApplyPotInteraction(ctx, userID, action, amount, potName); err != nil {
		slog.Error("pot reward failed", "user_id", userID, "action", action, "err", err)
	}
}
