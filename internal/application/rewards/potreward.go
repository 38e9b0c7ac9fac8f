package rewards

import (
	"fmt"
	"time"

	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/id"
	"github.com/go-pots-api/internal/pkg/random"
)

// Pot interaction actions.
const (
	ActionCreate      = "create"
	ActionDeposit     = "deposit"
	ActionWithdraw    = "withdraw"
	ActionGoalReached = "goal-reached"
)

const (
	potCreatePoints   = 20
	goalReachedPoints = 50
)

// potOutcome is what one pot interaction earns. The caller applies it.
type potOutcome struct {
	Points        int64
	Card          *domain.ScratchCard
	Notifications []domain.Notification
}

// potInteraction computes the reward for a pot action. Durations and draws:
// deposits earn one point per 100 (floor, minimum 5) and deposits of 1000+
// carry a 10% chance of a card worth 5% of the amount; withdrawals earn one
// point per 500 and stay silent when that rounds to zero; a reached goal
// always mints a card worth 100-300, valid for two weeks.
func potInteraction(action string, amount int64, potName string, now time.Time, rng random.Source) potOutcome {
	switch action {
	case ActionCreate:
		return potOutcome{
			Points: potCreatePoints,
			Notifications: []domain.Notification{
				newNotification(domain.NotifReward, "New Pot Bonus!",
					fmt.Sprintf("You earned %d points for creating a new savings pot.", potCreatePoints), "pot", now),
			},
		}

	case ActionDeposit:
		points := amount / 100
		if points < 5 {
			points = 5
		}
		out := potOutcome{
			Points: points,
			Notifications: []domain.Notification{
				newNotification(domain.NotifReward, "Deposit Bonus!",
					fmt.Sprintf("You earned %d points for depositing %d to your %s pot.", points, amount, potName), "deposit", now),
			},
		}
		if amount >= 1000 && rng.Float64() < 0.1 {
			cardType := domain.CardPoints
			if rng.Float64() > 0.6 {
				cardType = domain.CardCashback
			}
			out.Card = &domain.ScratchCard{
				CardID: id.New(),
				Type:   cardType,
				Value:  amount * 5 / 100,
				IsNew:  true,
				Expiry: now.Add(7 * 24 * time.Hour),
			}
			out.Notifications = append(out.Notifications,
				newNotification(domain.NotifReward, "Deposit Scratch Card!",
					fmt.Sprintf("You received a special scratch card for depositing to your %s pot!", potName), "gift", now))
		}
		return out

	case ActionWithdraw:
		points := amount / 500
		if points == 0 {
			return potOutcome{}
		}
		return potOutcome{
			Points: points,
			Notifications: []domain.Notification{
				newNotification(domain.NotifReward, "Withdrawal Points",
					fmt.Sprintf("You earned %d points for your withdrawal.", points), "withdraw", now),
			},
		}

	case ActionGoalReached:
		cardType := domain.CardPoints
		if rng.Float64() > 0.4 {
			cardType = domain.CardCashback
		}
		card := &domain.ScratchCard{
			CardID: id.New(),
			Type:   cardType,
			Value:  int64(rng.IntN(200) + 100),
			IsNew:  true,
			Expiry: now.Add(14 * 24 * time.Hour),
		}
		return potOutcome{
			Points: goalReachedPoints,
			Card:   card,
			Notifications: []domain.Notification{
				newNotification(domain.NotifReward, "Goal Achieved!",
					fmt.Sprintf("Congratulations! You earned %d points for reaching your savings goal!", goalReachedPoints), "goal", now),
				newNotification(domain.NotifReward, "Goal Achievement Bonus!",
					"You received a special scratch card for reaching your savings goal!", "gift", now),
			},
		}
	}
	return potOutcome{}
}
