package domain

import "time"

// Ticket statuses; transitions go new → inProgress → resolved → closed,
// with reopening allowed from resolved.
const (
	TicketNew        = "new"
	TicketInProgress = "inProgress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Ticket is a support request with an embedded message thread.
type Ticket struct {
	TicketID    string          `json:"id" dynamodbav:"ticket_id"`
	UserID      string          `json:"user_id" dynamodbav:"user_id"`
	Subject     string          `json:"subject" dynamodbav:"subject"`
	Description string          `json:"description" dynamodbav:"description"`
	Category    string          `json:"category" dynamodbav:"category"`
	Priority    string          `json:"priority" dynamodbav:"priority"`
	Status      string          `json:"status" dynamodbav:"status"`
	Messages    []TicketMessage `json:"messages" dynamodbav:"messages"`
	CreatedAt   time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time       `json:"updated" dynamodbav:"updated_at"`
}

type TicketMessage struct {
	MessageID string    `json:"id" dynamodbav:"message_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Content   string    `json:"content" dynamodbav:"content"`
	FromStaff bool      `json:"from_staff" dynamodbav:"from_staff"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateTicketRequest struct {
	Subject     string `json:"subject" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

type TicketMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type TicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new inProgress resolved closed"`
}
