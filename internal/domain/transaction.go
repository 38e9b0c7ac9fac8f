package domain

import "time"

// Transaction statuses. Transfers are written atomically with both balance
// moves, so every persisted record is completed.
const (
	TxCompleted = "completed"
	TxPending   = "pending"
	TxFailed    = "failed"
)

// Transaction is the immutable record of a wallet-to-wallet transfer.
// Created once, never mutated.
type Transaction struct {
	TransactionID string    `json:"id" dynamodbav:"transaction_id"`
	SenderID      string    `json:"sender_id" dynamodbav:"sender_id"`
	ReceiverID    string    `json:"receiver_id" dynamodbav:"receiver_id"`
	SenderName    string    `json:"sender_name" dynamodbav:"sender_name"`
	ReceiverName  string    `json:"receiver_name" dynamodbav:"receiver_name"`
	Amount        int64     `json:"amount" dynamodbav:"amount"`
	Note          string    `json:"note" dynamodbav:"note"`
	Status        string    `json:"status" dynamodbav:"status"`
	Date          time.Time `json:"date" dynamodbav:"date"`
	// Feed is a constant partition key so the transactions GSI can serve the
	// newest-first feed without a table scan.
	Feed string `json:"-" dynamodbav:"feed"`
}

type TransferRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Note       string `json:"note" validate:"max=200"`
}
