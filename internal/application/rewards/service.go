package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/clock"
	"github.com/go-pots-api/internal/pkg/random"
)

// saveAttempts bounds the CAS retry loop around read-modify-write cycles on
// the user document.
const saveAttempts = 3

type Service interface {
	Get(ctx context.Context, userID string) (*domain.RewardLedger, error)
	// EvaluateLoginStreak advances the streak for a login happening now and
	// mints the daily scratch card when nothing is left to scratch.
	EvaluateLoginStreak(ctx context.Context, userID string) (*domain.RewardLedger, error)
	// RevealScratchCard flips the card and applies its payout exactly once.
	RevealScratchCard(ctx context.Context, userID, cardID string) (*domain.ScratchCard, *domain.RewardLedger, error)
	SaveGameScore(ctx context.Context, userID, game string, score int64) (int64, *domain.RewardLedger, error)
	ClaimOffer(ctx context.Context, userID, offerID string) (*domain.RewardLedger, error)
	// ApplyPotInteraction awards the reward for a pot action. Callers treat
	// failures as best-effort: log and move on, never fail the pot operation.
	ApplyPotInteraction(ctx context.Context, userID, action string, amount int64, potName string) error
	Notifications(ctx context.Context, userID string) ([]domain.Notification, error)
	// MarkNotificationsRead flips the given notifications to read; an empty
	// id list marks everything.
	MarkNotificationsRead(ctx context.Context, userID string, ids []string) ([]domain.Notification, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) error
}

type service struct {
	users userStore
	clk   clock.Clock
	rng   random.Source
}

func NewService(users userStore, clk clock.Clock, rng random.Source) Service {
	return &service{users: users, clk: clk, rng: rng}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.RewardLedger, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &u.Rewards, nil
}

func (s *service) EvaluateLoginStreak(ctx context.Context, userID string) (*domain.RewardLedger, error) {
	u, err := s.withUser(ctx, userID, func(u *domain.User) error {
		now := s.clk.Now()
		out := evaluateStreak(now, u.Rewards.LastLogin, u.Rewards.LoginStreak, s.rng)
		u.Rewards.LoginStreak = out.Streak
		u.Rewards.Points += out.PointsDelta
		u.Rewards.ScratchCards = append(u.Rewards.ScratchCards, out.Cards...)
		u.Notifications = append(u.Notifications, out.Notifications...)
		u.Rewards.LastLogin = &now

		if !u.Rewards.HasUnrevealedCard() {
			card := mintDailyCard(now, u.Rewards.LoginStreak, s.rng)
			u.Rewards.ScratchCards = append(u.Rewards.ScratchCards, card)
			u.Notifications = append(u.Notifications,
				newNotification(domain.NotifReward, "Daily Scratch Card",
					"You received a new scratch card for logging in today!", "gift", now))
		}
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u.Rewards, nil
}

func (s *service) RevealScratchCard(ctx context.Context, userID, cardID string) (*domain.ScratchCard, *domain.RewardLedger, error) {
	var revealed domain.ScratchCard
	u, err := s.withUser(ctx, userID, func(u *domain.User) error {
		now := s.clk.Now()
		card := u.Rewards.FindCard(cardID)
		if card == nil {
			return fmt.Errorf("scratch card %s: %w", cardID, domain.ErrNotFound)
		}
		if card.IsRevealed {
			return fmt.Errorf("scratch card %s already revealed: %w", cardID, domain.ErrConflict)
		}
		card.IsRevealed = true
		card.IsNew = false

		var msg string
		switch card.Type {
		case domain.CardPoints:
			u.Rewards.Points += card.Value
			msg = fmt.Sprintf("%d points added to your account!", card.Value)
		case domain.CardCashback:
			u.BankBalance += card.Value
			msg = fmt.Sprintf("%d cashback added to your account!", card.Value)
		default:
			// discount cards carry no automatic payout
			msg = fmt.Sprintf("%d%% discount unlocked!", card.Value)
		}
		u.Notifications = append(u.Notifications,
			newNotification(domain.NotifReward, "Scratch Card Reward!", msg, "gift", now))
		u.UpdatedAt = now
		revealed = *card
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &revealed, &u.Rewards, nil
}

func (s *service) SaveGameScore(ctx context.Context, userID, game string, score int64) (int64, *domain.RewardLedger, error) {
	if game == "" || score < 0 {
		return 0, nil, fmt.Errorf("invalid game score: %w", domain.ErrBadRequest)
	}
	pointsAwarded := score / 10
	u, err := s.withUser(ctx, userID, func(u *domain.User) error {
		now := s.clk.Now()
		u.Rewards.GameScores = append(u.Rewards.GameScores, domain.GameScore{
			Game:     game,
			Score:    score,
			PlayedAt: now,
		})
		u.Rewards.Points += pointsAwarded
		u.Notifications = append(u.Notifications,
			newNotification(domain.NotifReward, "Game Reward!",
				fmt.Sprintf("You earned %d points from playing %s!", pointsAwarded, game), "game", now))
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return pointsAwarded, &u.Rewards, nil
}

func (s *service) ClaimOffer(ctx context.Context, userID, offerID string) (*domain.RewardLedger, error) {
	u, err := s.withUser(ctx, userID, func(u *domain.User) error {
		now := s.clk.Now()
		for _, c := range u.Rewards.ClaimedOffers {
			if c.OfferID == offerID {
				return fmt.Errorf("offer %s already claimed: %w", offerID, domain.ErrConflict)
			}
		}
		u.Rewards.ClaimedOffers = append(u.Rewards.ClaimedOffers, domain.ClaimedOffer{
			OfferID:   offerID,
			ClaimedAt: now,
		})
		u.Notifications = append(u.Notifications,
			newNotification(domain.NotifReward, "Offer Claimed",
				fmt.Sprintf("Offer %s has been added to your account.", offerID), "gift", now))
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u.Rewards, nil
}

func (s *service) ApplyPotInteraction(ctx context.Context, userID, action string, amount int64, potName string) error {
	_, err := s.withUser(ctx, userID, func(u *domain.User) error {
		now := s.clk.Now()
		out := potInteraction(action, amount, potName, now, s.rng)
		u.Rewards.Points += out.Points
		if out.Card != nil {
			u.Rewards.ScratchCards = append(u.Rewards.ScratchCards, *out.Card)
		}
		u.Notifications = append(u.Notifications, out.Notifications...)
		u.UpdatedAt = now
		return nil
	})
	return err
}

func (s *service) Notifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Notifications, nil
}

func (s *service) MarkNotificationsRead(ctx context.Context, userID string, ids []string) ([]domain.Notification, error) {
	u, err := s.withUser(ctx, userID, func(u *domain.User) error {
		if len(ids) == 0 {
			for i := range u.Notifications {
				u.Notifications[i].IsRead = true
			}
			return nil
		}
		wanted := make(map[string]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
		for i := range u.Notifications {
			if wanted[u.Notifications[i].NotificationID] {
				u.Notifications[i].IsRead = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.Notifications, nil
}

// withUser runs a read-modify-write cycle on the user document, retrying a
// bounded number of times when the conditional save loses a race. An error
// from fn aborts without saving, so failed preconditions leave no partial
// mutation behind.
func (s *service) withUser(ctx context.Context, userID string, fn func(*domain.User) error) (*domain.User, error) {
	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		u, err := s.users.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := fn(u); err != nil {
			return nil, err
		}
		if err := s.users.Save(ctx, u); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return u, nil
	}
	return nil, lastErr
}
