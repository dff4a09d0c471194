package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
)

// GetPermissions retrieves a user's data-access permissions from DynamoDB.
func (s *Store) GetPermissions(ctx context.Context, userID string) (*models.DataAccessPermissions, error) {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Permissions),
		Key:            stringKey("user_id", userID),
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("permissions for user %s: %w", userID, storage.ErrNotFound)
	}

	var permissions models.DataAccessPermissions
	if err := attributevalue.UnmarshalMap(result.Item, &permissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
	}

	return &permissions, nil
}

// PutPermissions creates or replaces a user's data-access permissions, conditional on the
// stored document still being at readVersion.
func (s *Store) PutPermissions(ctx context.Context, permissions *models.DataAccessPermissions, readVersion int64) error {
	item, err := attributevalue.MarshalMap(permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.Tables.Permissions),
		Item:      item,
	}
	if readVersion == 0 {
		input.ConditionExpression = aws.String("attribute_not_exists(version)")
	} else {
		input.ConditionExpression = aws.String("version = :version")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", readVersion)},
		}
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		if isWriteConflict(err) {
			return fmt.Errorf("permissions for user %s: %w", permissions.UserId, storage.ErrVersionConflict)
		}
		return fmt.Errorf("failed to put permissions in DynamoDB: %w", err)
	}

	return nil
}
