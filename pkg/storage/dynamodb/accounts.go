package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
)

// accountNumberGuard reserves an account number. It lives in the accounts table under its own key
// and carries no user_id, so it never shows up in the per-user index.
type accountNumberGuard struct {
	Id        string `dynamodbav:"id"`
	AccountId string `dynamodbav:"account_id"`
}

// CreateAccount atomically reserves the account number and stores the new account.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	accountAV, err := attributevalue.MarshalMap(account)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account: %w", err)
	}
	setSortKeyTime(accountAV, "created_at", &account.CreatedAt)
	guardAV, err := attributevalue.MarshalMap(accountNumberGuard{
		Id:        accountNumberKeyPrefix + account.AccountNumber,
		AccountId: account.Id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account number guard: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Reserve the account number.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Accounts),
					Item:                guardAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				// Operation 2: Create the account record.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Accounts),
					Item:                accountAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if isConditionFailure(err) {
			return nil, fmt.Errorf("account number %s: %w", account.AccountNumber, storage.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create account in DynamoDB: %w", err)
	}

	return account, nil
}

// GetAccount retrieves an account from DynamoDB by its ID.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Accounts),
		Key:            stringKey("id", accountID),
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get account from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("account with ID %s: %w", accountID, storage.ErrNotFound)
	}

	var account models.Account
	if err := attributevalue.UnmarshalMap(result.Item, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// ListAccountsByUserID retrieves all accounts owned by a user, oldest first.
func (s *Store) ListAccountsByUserID(ctx context.Context, userID string) ([]models.Account, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Accounts),
		IndexName:              aws.String(userCreatedAtIndex),
		KeyConditionExpression: aws.String("user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: userID},
		},
	}

	accounts := []models.Account{}
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query accounts by user ID: %w", err)
		}

		var page []models.Account
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
		}
		accounts = append(accounts, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return accounts, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// CloseAccount marks an account closed. The write only succeeds if the account is still at
// readVersion and its balance is zero.
func (s *Store) CloseAccount(ctx context.Context, account *models.Account, readVersion int64) error {
	closedAt := time.Now().UTC()
	if account.ClosedAt != nil {
		closedAt = *account.ClosedAt
	}
	closedAtAV, err := attributevalue.Marshal(closedAt)
	if err != nil {
		return fmt.Errorf("failed to marshal closed_at: %w", err)
	}
	zeroAV, err := attributevalue.Marshal(models.ZeroMoney)
	if err != nil {
		return fmt.Errorf("failed to marshal zero balance: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Accounts),
		Key:                 stringKey("id", account.Id),
		UpdateExpression:    aws.String("SET #status = :closed, closed_at = :now, updated_at = :now, version = :next"),
		ConditionExpression: aws.String("version = :version AND balance = :zero"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":closed":  &types.AttributeValueMemberS{Value: string(models.CLOSED)},
			":now":     closedAtAV,
			":zero":    zeroAV,
			":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", readVersion)},
			":next":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", readVersion+1)},
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isWriteConflict(err) {
			return fmt.Errorf("close account %s: %w", account.Id, storage.ErrVersionConflict)
		}
		return fmt.Errorf("failed to close account in DynamoDB: %w", err)
	}

	return nil
}
