package domain

import "time"

// Pot is a named sub-account with its own balance and optional savings goal.
// UserID is kept as a string and compared as such, tolerating mixed identifier
// representations upstream. GoalAmount of 0 means no goal.
type Pot struct {
	PotID      string    `json:"id" dynamodbav:"pot_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	Name       string    `json:"name" dynamodbav:"name"`
	Category   string    `json:"category" dynamodbav:"category"`
	Balance    int64     `json:"balance" dynamodbav:"balance"`
	GoalAmount int64     `json:"goal_amount" dynamodbav:"goal_amount"`
	Version    int64     `json:"-" dynamodbav:"version"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

// OwnedBy compares the owning user id in string form.
func (p *Pot) OwnedBy(userID string) bool {
	return p.UserID == userID
}

type CreatePotRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=100"`
	Category   string `json:"category" validate:"required"`
	GoalAmount int64  `json:"goal_amount" validate:"gte=0"`
}

type AmountRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type SetGoalRequest struct {
	GoalAmount int64 `json:"goal_amount" validate:"gte=0"`
}
