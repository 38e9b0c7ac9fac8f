package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-pots-api/internal/domain"
)

// PotRepo provides typed DynamoDB operations for the pots table.
// Pot documents carry the same version guard as users.
type PotRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPotRepo(client *dynamodb.Client, tableName string) *PotRepo {
	return &PotRepo{client: client, tableName: tableName}
}

func (r *PotRepo) Create(ctx context.Context, p *domain.Pot) error {
	p.Version = 1
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal pot: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pot_id)"),
	})
	return mapConditionErr(err)
}

func (r *PotRepo) Get(ctx context.Context, potID string) (*domain.Pot, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("pot_id", potID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("pot %s: %w", potID, domain.ErrNotFound)
	}
	var p domain.Pot
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser queries the user_id-created_at GSI, newest pots first.
func (r *PotRepo) ListByUser(ctx context.Context, userID string) ([]domain.Pot, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var pots []domain.Pot
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &pots); err != nil {
		return nil, err
	}
	return pots, nil
}

// Save writes the whole document back, conditional on the version it was read
// at, and bumps the version. A lost race surfaces as domain.ErrConflict.
func (r *PotRepo) Save(ctx context.Context, p *domain.Pot) error {
	item, values, err := r.versionedItem(p)
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       aws.String("version = :v"),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return mapConditionErr(err)
	}
	p.Version++
	return nil
}

// TxSave packages the conditional write for a TransactWriteItems call.
func (r *PotRepo) TxSave(p *domain.Pot) (types.TransactWriteItem, error) {
	item, values, err := r.versionedItem(p)
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:                 aws.String(r.tableName),
			Item:                      item,
			ConditionExpression:       aws.String("version = :v"),
			ExpressionAttributeValues: values,
		},
	}, nil
}

// Delete removes the pot, conditional on the version read, so a delete cannot
// clobber a concurrent deposit.
func (r *PotRepo) Delete(ctx context.Context, p *domain.Pot) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("pot_id", p.PotID),
		ConditionExpression: aws.String("version = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberN{Value: strconv.FormatInt(p.Version, 10)},
		},
	})
	return mapConditionErr(err)
}

func (r *PotRepo) versionedItem(p *domain.Pot) (map[string]types.AttributeValue, map[string]types.AttributeValue, error) {
	next := *p
	next.Version = p.Version + 1
	item, err := attributevalue.MarshalMap(&next)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal pot: %w", err)
	}
	values := map[string]types.AttributeValue{
		":v": &types.AttributeValueMemberN{Value: strconv.FormatInt(p.Version, 10)},
	}
	return item, values, nil
}
