package rewards

import (
	"testing"
	"time"

	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := anchor.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func TestEvaluateStreak_FirstLogin(t *testing.T) {
	out := evaluateStreak(anchor, nil, 0, random.Seeded(1))

	assert.Equal(t, 1, out.Streak)
	assert.Equal(t, int64(firstLoginPoints), out.PointsDelta)
	assert.Empty(t, out.Cards)
	require.Len(t, out.Notifications, 1)
	assert.Equal(t, "Welcome Bonus!", out.Notifications[0].Title)
	assert.Equal(t, domain.NotifReward, out.Notifications[0].Type)
}

func TestEvaluateStreak_SameDay(t *testing.T) {
	out := evaluateStreak(anchor, &anchor, 4, random.Seeded(1))

	assert.Equal(t, 4, out.Streak)
	assert.Zero(t, out.PointsDelta)
	assert.Empty(t, out.Cards)
	assert.Empty(t, out.Notifications)
}

func TestEvaluateStreak_NextDayExtends(t *testing.T) {
	out := evaluateStreak(anchor, daysAgo(1), 3, random.Seeded(1))

	assert.Equal(t, 4, out.Streak)
	assert.Equal(t, int64(streakBasePoints), out.PointsDelta)
	assert.Empty(t, out.Cards)
	require.Len(t, out.Notifications, 1)
	assert.Equal(t, "Login Streak!", out.Notifications[0].Title)
}

func TestEvaluateStreak_WeeklyBonus(t *testing.T) {
	// streak 6 → 7, a multiple of seven
	out := evaluateStreak(anchor, daysAgo(1), 6, random.Seeded(1))

	assert.Equal(t, 7, out.Streak)
	assert.Equal(t, int64(weeklyBonusPoints), out.PointsDelta)
	require.Len(t, out.Cards, 1)
	require.Len(t, out.Notifications, 2)

	card := out.Cards[0]
	assert.NotEmpty(t, card.CardID)
	assert.True(t, card.IsNew)
	assert.False(t, card.IsRevealed)
	assert.Equal(t, anchor.Add(7*24*time.Hour), card.Expiry)
	assert.Contains(t, []string{domain.CardPoints, domain.CardCashback}, card.Type)
	assert.Positive(t, card.Value)
}

func TestEvaluateStreak_GapResets(t *testing.T) {
	out := evaluateStreak(anchor, daysAgo(3), 12, random.Seeded(1))

	assert.Equal(t, 1, out.Streak)
	assert.Equal(t, int64(streakBasePoints), out.PointsDelta)
	require.Len(t, out.Notifications, 1)
	assert.Equal(t, domain.NotifAlert, out.Notifications[0].Type)
	assert.Equal(t, "Login Streak Reset", out.Notifications[0].Title)
}

func TestEvaluateStreak_PartialDayCountsAsNext(t *testing.T) {
	// 23 hours ago rounds up to one day: the streak extends.
	last := anchor.Add(-23 * time.Hour)
	out := evaluateStreak(anchor, &last, 2, random.Seeded(1))
	assert.Equal(t, 3, out.Streak)

	// 25 hours rounds up to two days: the streak breaks.
	last = anchor.Add(-25 * time.Hour)
	out = evaluateStreak(anchor, &last, 2, random.Seeded(1))
	assert.Equal(t, 1, out.Streak)
}

func TestCeilDays(t *testing.T) {
	assert.Equal(t, 0, ceilDays(0))
	assert.Equal(t, 1, ceilDays(time.Nanosecond))
	assert.Equal(t, 1, ceilDays(24*time.Hour))
	assert.Equal(t, 2, ceilDays(24*time.Hour+time.Second))
	assert.Equal(t, 2, ceilDays(-30*time.Hour))
}

func TestMintDailyCard(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		card := mintDailyCard(anchor, 3, random.Seeded(seed))
		assert.Contains(t, []string{domain.CardPoints, domain.CardCashback, domain.CardDiscount}, card.Type)
		assert.GreaterOrEqual(t, card.Value, int64(10))
		assert.Less(t, card.Value, int64(60))
		assert.True(t, card.IsNew)
		assert.False(t, card.IsRevealed)
		assert.Equal(t, anchor.Add(3*24*time.Hour), card.Expiry)
	}
}

func TestMintDailyCard_LongStreakBonus(t *testing.T) {
	card := mintDailyCard(anchor, 6, random.Seeded(1))
	assert.GreaterOrEqual(t, card.Value, int64(50))
	assert.Less(t, card.Value, int64(100))
}
