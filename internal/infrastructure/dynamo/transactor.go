package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-pots-api/internal/domain"
)

// Transactor executes multi-item writes as one atomic unit. A wallet transfer
// moves the sender document, the receiver document and the transaction record
// together, or not at all; pot deposits and withdrawals pair the user and pot
// documents the same way.
type Transactor struct {
	client *dynamodb.Client
}

func NewTransactor(client *dynamodb.Client) *Transactor {
	return &Transactor{client: client}
}

// Write commits all items in one TransactWriteItems call. A cancelled
// transaction whose reason is a failed condition check surfaces as
// domain.ErrConflict so callers can retry the read-modify-write cycle.
func (t *Transactor) Write(ctx context.Context, items ...types.TransactWriteItem) error {
	_, err := t.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err == nil {
		return nil
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return fmt.Errorf("concurrent update detected: %w", domain.ErrConflict)
			}
		}
	}
	return err
}
