package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// dynamoRecord is the table layout: the session travels as its JSON payload
// with the state and expiry lifted out for console queries and TTL.
type dynamoRecord struct {
	UserID    string `dynamodbav:"userId"`
	State     string `dynamodbav:"state"`
	Payload   string `dynamodbav:"payload"`
	UpdatedAt string `dynamodbav:"updatedAt"`
	ExpiresAt int64  `dynamodbav:"expiresAt,omitempty"`
}

// DynamoRepository stores sessions in a DynamoDB table keyed by userId.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	ttl       time.Duration
}

// NewDynamoRepository builds a repository for tableName.
func NewDynamoRepository(client dynamoAPI, tableName string, ttl time.Duration) *DynamoRepository {
	if client == nil {
		panic("session: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("session: table name cannot be empty")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &DynamoRepository{client: client, tableName: tableName, ttl: ttl}
}

func (d *DynamoRepository) Load(ctx context.Context, userID string) (*Session, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("session: failed to fetch item: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("session: failed to decode item: %w", err)
	}
	if rec.Payload == "" {
		return nil, errors.New("session: item has no payload")
	}
	return Decode([]byte(rec.Payload))
}

func (d *DynamoRepository) Save(ctx context.Context, s *Session) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(dynamoRecord{
		UserID:    s.UserID,
		State:     string(s.State()),
		Payload:   string(data),
		UpdatedAt: now.Format(time.RFC3339Nano),
		ExpiresAt: now.Add(d.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("session: failed to marshal item: %w", err)
	}
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("session: failed to persist item: %w", err)
	}
	return nil
}
