package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-pots-api/internal/domain"
)

// feedPartition is the constant partition key shared by all transaction
// records so the feed GSI can serve a newest-first listing.
const feedPartition = "ALL"

// TransactionRepo provides typed DynamoDB operations for the immutable
// transactions table. Records are only ever inserted.
type TransactionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTransactionRepo(client *dynamodb.Client, tableName string) *TransactionRepo {
	return &TransactionRepo{client: client, tableName: tableName}
}

// TxPut packages the insert for a TransactWriteItems call, guarding against
// id reuse.
func (r *TransactionRepo) TxPut(t *domain.Transaction) (types.TransactWriteItem, error) {
	t.Feed = feedPartition
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("marshal transaction: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(r.tableName),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(transaction_id)"),
		},
	}, nil
}

// ListRecent returns up to limit transactions, newest first, via the feed GSI.
func (r *TransactionRepo) ListRecent(ctx context.Context, limit int32) ([]domain.Transaction, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("feed-date-index"),
		KeyConditionExpression: aws.String("feed = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":f": &types.AttributeValueMemberS{Value: feedPartition},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var txns []domain.Transaction
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}
