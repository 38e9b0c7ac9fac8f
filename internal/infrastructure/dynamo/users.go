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

// UserRepo provides typed DynamoDB operations for the users table.
// User documents are versioned: every save is conditional on the version that
// was read, so two concurrent read-modify-write cycles cannot both win.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Create inserts a new user document at version 1.
// Fails with domain.ErrConflict if the id already exists.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	u.Version = 1
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	return mapConditionErr(err)
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, "email-index", "email", email)
}

func (r *UserRepo) GetByPAN(ctx context.Context, pan string) (*domain.User, error) {
	return r.queryGSI(ctx, "pan-index", "pan", pan)
}

// Save writes the whole document back, conditional on the version it was read
// at, and bumps the version. A lost race surfaces as domain.ErrConflict.
func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	item, values, err := r.versionedItem(u)
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
	u.Version++
	return nil
}

// TxSave returns the same conditional write as Save, packaged for a
// TransactWriteItems call. Callers re-read the document after commit rather
// than relying on the in-memory version.
func (r *UserRepo) TxSave(u *domain.User) (types.TransactWriteItem, error) {
	item, values, err := r.versionedItem(u)
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

// versionedItem marshals u at version+1 and returns the expression values
// pinning the version that was read.
func (r *UserRepo) versionedItem(u *domain.User) (map[string]types.AttributeValue, map[string]types.AttributeValue, error) {
	next := *u
	next.Version = u.Version + 1
	item, err := attributevalue.MarshalMap(&next)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal user: %w", err)
	}
	values := map[string]types.AttributeValue{
		":v": &types.AttributeValueMemberN{Value: strconv.FormatInt(u.Version, 10)},
	}
	return item, values, nil
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user by %s: %w", attr, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}
