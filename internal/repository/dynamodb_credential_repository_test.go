package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/research-chat/internal/domain"
)

// fakeDynamo keeps items in a map and honours attribute_not_exists on put.
type fakeDynamo struct {
	items    map[string]map[string]types.AttributeValue
	puts     []*dynamodb.PutItemInput
	getErr   error
	putErr   error
	describe error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func keyOf(t map[string]types.AttributeValue) string {
	if s, ok := t["email"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	key := keyOf(in.Item)
	if _, exists := f.items[key]; exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DescribeTable(context.Context, *dynamodb.DescribeTableInput, ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.describe != nil {
		return nil, f.describe
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

func TestDynamoCredentialRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := NewDynamoCredentialRepository(fake, "users")

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err := repo.Create(ctx, &domain.Credential{
		Email:        "john.doe@example.com",
		DisplayName:  "John Doe",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    created,
	})
	require.NoError(t, err)

	require.Len(t, fake.puts, 1)
	put := fake.puts[0]
	require.Equal(t, "users", aws.ToString(put.TableName))
	require.NotNil(t, put.ConditionExpression)
	require.Contains(t, aws.ToString(put.ConditionExpression), "attribute_not_exists")
	require.Contains(t, put.ExpressionAttributeNames, "#0")
	require.Equal(t, "email", put.ExpressionAttributeNames["#0"])
	require.Empty(t, put.ExpressionAttributeValues)
	for _, attr := range []string{"email", "name", "password", "createdAt"} {
		require.Contains(t, put.Item, attr)
	}

	got, err := repo.Get(ctx, "john.doe@example.com")
	require.NoError(t, err)
	require.Equal(t, "John Doe", got.DisplayName)
	require.Equal(t, "$2a$10$hash", got.PasswordHash)
	require.True(t, created.Equal(got.CreatedAt))
}

func TestDynamoCredentialRepositoryDuplicate(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := NewDynamoCredentialRepository(fake, "users")

	cred := &domain.Credential{Email: "john.doe@example.com", PasswordHash: "first", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, cred))

	err := repo.Create(ctx, &domain.Credential{Email: "john.doe@example.com", PasswordHash: "second", CreatedAt: time.Now()})
	require.ErrorIs(t, err, ErrCredentialExists)

	got, err := repo.Get(ctx, "john.doe@example.com")
	require.NoError(t, err)
	require.Equal(t, "first", got.PasswordHash)
}

func TestDynamoCredentialRepositoryNotFound(t *testing.T) {
	repo := NewDynamoCredentialRepository(newFakeDynamo(), "users")

	_, err := repo.Get(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestDynamoCredentialRepositoryLegacyTimestamp(t *testing.T) {
	fake := newFakeDynamo()
	fake.items["old@example.com"] = map[string]types.AttributeValue{
		"email":     &types.AttributeValueMemberS{Value: "old@example.com"},
		"name":      &types.AttributeValueMemberNULL{Value: true},
		"password":  &types.AttributeValueMemberS{Value: "hash"},
		"createdAt": &types.AttributeValueMemberS{Value: "2025-03-01T12:30:45.123456"},
	}
	repo := NewDynamoCredentialRepository(fake, "users")

	got, err := repo.Get(context.Background(), "old@example.com")
	require.NoError(t, err)
	require.Empty(t, got.DisplayName)
	require.Equal(t, 2025, got.CreatedAt.Year())
	require.Equal(t, 30, got.CreatedAt.Minute())
}

func TestDynamoCredentialRepositoryPropagatesErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("throttled")
	fake := newFakeDynamo()
	fake.getErr = boom
	fake.putErr = boom
	fake.describe = boom
	repo := NewDynamoCredentialRepository(fake, "users")

	_, err := repo.Get(ctx, "john.doe@example.com")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrCredentialNotFound)

	err = repo.Create(ctx, &domain.Credential{Email: "john.doe@example.com"})
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrCredentialExists)

	require.ErrorIs(t, repo.Ping(ctx), boom)
}
