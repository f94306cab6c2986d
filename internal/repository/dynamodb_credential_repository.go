package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spec-kit/research-chat/internal/domain"
)

const emailAttribute = "email"

// DynamoDBAPI is the subset of the DynamoDB client used by the credential store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// credentialItem mirrors the table layout written by earlier releases, so
// attribute names stay name/email/password/createdAt.
type credentialItem struct {
	Email     string `dynamodbav:"email"`
	Name      string `dynamodbav:"name"`
	Password  string `dynamodbav:"password"`
	CreatedAt string `dynamodbav:"createdAt"`
}

// createdAt layouts, newest first. Older items carry a zone-less timestamp.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

type dynamoCredentialRepository struct {
	client    DynamoDBAPI
	tableName string
}

// NewDynamoCredentialRepository returns a DynamoDB-backed implementation keyed by email.
func NewDynamoCredentialRepository(client DynamoDBAPI, tableName string) CredentialRepository {
	return &dynamoCredentialRepository{client: client, tableName: tableName}
}

func (r *dynamoCredentialRepository) Get(ctx context.Context, email string) (*domain.Credential, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			emailAttribute: &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, wrapAWSError(err, "failed to get credential")
	}
	if len(result.Item) == 0 {
		return nil, ErrCredentialNotFound
	}

	var item credentialItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	return &domain.Credential{
		Email:        item.Email,
		DisplayName:  item.Name,
		PasswordHash: item.Password,
		CreatedAt:    parseCreatedAt(item.CreatedAt),
	}, nil
}

func (r *dynamoCredentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	item, err := attributevalue.MarshalMap(credentialItem{
		Email:     cred.Email,
		Name:      cred.DisplayName,
		Password:  cred.PasswordHash,
		CreatedAt: cred.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(emailAttribute))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrCredentialExists
		}
		return wrapAWSError(err, "failed to create credential")
	}
	return nil
}

func (r *dynamoCredentialRepository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return wrapAWSError(err, "failed to describe credential table")
	}
	return nil
}

func parseCreatedAt(raw string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func wrapAWSError(err error, msg string) error {
	return fmt.Errorf("%s: %w", msg, err)
}
