package domain

import "time"

// Scratch card types. A cashback card credits the wallet on reveal, a points
// card credits reward points; discount cards carry no automatic payout.
const (
	CardCashback = "cashback"
	CardDiscount = "discount"
	CardPoints   = "points"
)

// Notification types as surfaced to clients.
const (
	NotifReward      = "reward"
	NotifTransaction = "transaction"
	NotifAlert       = "alert"
	NotifSystem      = "system"
)

// RewardLedger is embedded in User. Points only ever increase; the streak
// resets to 1 on any gap longer than a day.
type RewardLedger struct {
	Points        int64          `json:"points" dynamodbav:"points"`
	LoginStreak   int            `json:"login_streak" dynamodbav:"login_streak"`
	LastLogin     *time.Time     `json:"last_login" dynamodbav:"last_login"`
	ScratchCards  []ScratchCard  `json:"scratch_cards" dynamodbav:"scratch_cards"`
	GameScores    []GameScore    `json:"game_scores" dynamodbav:"game_scores"`
	ClaimedOffers []ClaimedOffer `json:"claimed_offers" dynamodbav:"claimed_offers"`
}

// HasUnrevealedCard reports whether any card is still waiting to be scratched.
func (l *RewardLedger) HasUnrevealedCard() bool {
	for i := range l.ScratchCards {
		if !l.ScratchCards[i].IsRevealed {
			return true
		}
	}
	return false
}

// FindCard returns a pointer into the ledger's card slice, or nil.
func (l *RewardLedger) FindCard(cardID string) *ScratchCard {
	for i := range l.ScratchCards {
		if l.ScratchCards[i].CardID == cardID {
			return &l.ScratchCards[i]
		}
	}
	return nil
}

// ScratchCard is minted unrevealed and flips to revealed exactly once;
// the payout rides on that flip. No further mutation after reveal.
type ScratchCard struct {
	CardID     string    `json:"id" dynamodbav:"card_id"`
	Type       string    `json:"type" dynamodbav:"type"`
	Value      int64     `json:"value" dynamodbav:"value"`
	IsNew      bool      `json:"is_new" dynamodbav:"is_new"`
	IsRevealed bool      `json:"is_revealed" dynamodbav:"is_revealed"`
	Expiry     time.Time `json:"expiry" dynamodbav:"expiry"`
}

type GameScore struct {
	Game     string    `json:"game" dynamodbav:"game"`
	Score    int64     `json:"score" dynamodbav:"score"`
	PlayedAt time.Time `json:"played_at" dynamodbav:"played_at"`
}

type ClaimedOffer struct {
	OfferID   string    `json:"offer_id" dynamodbav:"offer_id"`
	ClaimedAt time.Time `json:"claimed_at" dynamodbav:"claimed_at"`
}

// Notification is append-only on the user document; only IsRead ever flips.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	Type           string    `json:"type" dynamodbav:"type"`
	Title          string    `json:"title" dynamodbav:"title"`
	Message        string    `json:"message" dynamodbav:"message"`
	Icon           string    `json:"icon" dynamodbav:"icon"`
	Link           string    `json:"link,omitempty" dynamodbav:"link"`
	IsRead         bool      `json:"is_read" dynamodbav:"is_read"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}
