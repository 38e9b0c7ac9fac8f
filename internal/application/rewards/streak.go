package rewards

import (
	"fmt"
	"time"

	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/id"
	"github.com/go-pots-api/internal/pkg/random"
)

const (
	firstLoginPoints  = 10
	streakBasePoints  = 5
	weeklyBonusPoints = 50
)

// streakOutcome is the result of evaluating one login against the ledger.
// The caller applies it; evaluateStreak itself mutates nothing.
type streakOutcome struct {
	Streak        int
	PointsDelta   int64
	Cards         []domain.ScratchCard
	Notifications []domain.Notification
}

// evaluateStreak computes the new streak, the points to award and the cards
// and notifications to mint for a login at now, given the previous login and
// streak. Day distance is the ceiling of the elapsed time in days: a zero
// distance (same-day re-login) changes nothing, exactly one day extends the
// streak, anything longer resets it to 1.
func evaluateStreak(now time.Time, lastLogin *time.Time, streak int, rng random.Source) streakOutcome {
	if lastLogin == nil {
		return streakOutcome{
			Streak:      1,
			PointsDelta: firstLoginPoints,
			Notifications: []domain.Notification{
				newNotification(domain.NotifReward, "Welcome Bonus!",
					fmt.Sprintf("You earned %d points for your first login.", firstLoginPoints), "gift", now),
			},
		}
	}

	daysDiff := ceilDays(now.Sub(*lastLogin))
	switch {
	case daysDiff == 0:
		return streakOutcome{Streak: streak}

	case daysDiff == 1:
		newStreak := streak + 1
		if newStreak%7 == 0 {
			card := mintWeeklyCard(now, rng)
			return streakOutcome{
				Streak:      newStreak,
				PointsDelta: weeklyBonusPoints,
				Cards:       []domain.ScratchCard{card},
				Notifications: []domain.Notification{
					newNotification(domain.NotifReward, "Weekly Streak Bonus!",
						fmt.Sprintf("Congratulations! You've logged in for %d consecutive days and earned %d bonus points.", newStreak, weeklyBonusPoints), "calendar", now),
					newNotification(domain.NotifReward, "New Scratch Card!",
						"You received a special scratch card for your weekly login streak.", "gift", now),
				},
			}
		}
		return streakOutcome{
			Streak:      newStreak,
			PointsDelta: streakBasePoints,
			Notifications: []domain.Notification{
				newNotification(domain.NotifReward, "Login Streak!",
					fmt.Sprintf("You've logged in for %d consecutive days and earned %d points.", newStreak, streakBasePoints), "calendar", now),
			},
		}

	default: // streak broken
		return streakOutcome{
			Streak:      1,
			PointsDelta: streakBasePoints,
			Notifications: []domain.Notification{
				newNotification(domain.NotifAlert, "Login Streak Reset",
					"Your login streak was reset. Visit daily to build your streak again!", "calendar", now),
			},
		}
	}
}

// mintWeeklyCard builds the scratch card awarded every seventh consecutive
// day: cashback or points, valid for a week.
func mintWeeklyCard(now time.Time, rng random.Source) domain.ScratchCard {
	cardType := domain.CardPoints
	value := int64(rng.IntN(200) + 100)
	if rng.Float64() > 0.5 {
		cardType = domain.CardCashback
		value = int64(rng.IntN(100) + 50)
	}
	return domain.ScratchCard{
		CardID: id.New(),
		Type:   cardType,
		Value:  value,
		IsNew:  true,
		Expiry: now.Add(7 * 24 * time.Hour),
	}
}

// mintDailyCard builds the consolation card handed out whenever the user has
// nothing left to scratch: a weighted type draw, a small value that grows once
// the streak passes five days, valid for three days.
func mintDailyCard(now time.Time, streak int, rng random.Source) domain.ScratchCard {
	var cardType string
	switch {
	case rng.Float64() > 0.7:
		cardType = domain.CardCashback
	case rng.Float64() > 0.5:
		cardType = domain.CardDiscount
	default:
		cardType = domain.CardPoints
	}
	bonus := 10
	if streak > 5 {
		bonus = 50
	}
	return domain.ScratchCard{
		CardID: id.New(),
		Type:   cardType,
		Value:  int64(rng.IntN(50) + bonus),
		IsNew:  true,
		Expiry: now.Add(3 * 24 * time.Hour),
	}
}

// ceilDays rounds a duration up to whole days; 1ns over a boundary counts as
// the next day.
func ceilDays(d time.Duration) int {
	if d < 0 {
		d = -d
	}
	days := d / (24 * time.Hour)
	if d%(24*time.Hour) != 0 {
		days++
	}
	return int(days)
}

func newNotification(typ, title, message, icon string, now time.Time) domain.Notification {
	return domain.Notification{
		NotificationID: id.New(),
		Type:           typ,
		Title:          title,
		Message:        message,
		Icon:           icon,
		CreatedAt:      now,
	}
}
