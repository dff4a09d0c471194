package dynamodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
)

// ApplyPostings writes every account update and ledger entry in a single DynamoDB transaction.
// Each account update is a compare-and-swap on the version the balance was computed from, so a
// concurrent writer makes the whole transaction fail instead of silently losing an update.
func (s *Store) ApplyPostings(ctx context.Context, postings ...storage.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	accountUpdates := make([]types.TransactWriteItem, 0, len(postings))
	entryPuts := make([]types.TransactWriteItem, 0, len(postings))
	for _, p := range postings {
		balanceAV, err := attributevalue.Marshal(p.Account.Balance)
		if err != nil {
			return fmt.Errorf("failed to marshal balance: %w", err)
		}
		updatedAtAV, err := attributevalue.Marshal(p.Account.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to marshal updated_at: %w", err)
		}
		entryAV, err := attributevalue.MarshalMap(p.Entry)
		if err != nil {
			return fmt.Errorf("failed to marshal ledger entry: %w", err)
		}
		setSortKeyTime(entryAV, "created_at", &p.Entry.CreatedAt)

		accountUpdates = append(accountUpdates, types.TransactWriteItem{
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Accounts),
				Key:                 stringKey("id", p.Account.Id),
				UpdateExpression:    aws.String("SET balance = :balance, version = :next, updated_at = :now"),
				ConditionExpression: aws.String("version = :version AND #status = :active"),
				ExpressionAttributeNames: map[string]string{
					"#status": "status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":balance": balanceAV,
					":now":     updatedAtAV,
					":active":  &types.AttributeValueMemberS{Value: string(models.ACTIVE)},
					":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", p.ReadVersion)},
					":next":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", p.ReadVersion+1)},
				},
			},
		})
		entryPuts = append(entryPuts, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Ledger),
				Item:                entryAV,
				ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
			},
		})
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: append(accountUpdates, entryPuts...),
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if isWriteConflict(err) {
			return fmt.Errorf("apply postings: %w", storage.ErrVersionConflict)
		}
		return fmt.Errorf("failed to execute ledger transaction: %w", err)
	}

	return nil
}

// GetEntry retrieves a ledger entry from DynamoDB by its ID.
func (s *Store) GetEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Ledger),
		Key:       stringKey("entry_id", entryID),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("ledger entry with ID %s: %w", entryID, storage.ErrNotFound)
	}

	var entry models.LedgerEntry
	if err := attributevalue.UnmarshalMap(result.Item, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entry: %w", err)
	}

	return &entry, nil
}

// ListEntriesByUserID pages through a user's entries newest first until skip+limit matches are
// collected, then returns the requested window.
func (s *Store) ListEntriesByUserID(ctx context.Context, userID string, filter storage.EntryFilter) ([]models.LedgerEntry, error) {
	keyCondition := "user_id = :userID"
	values := map[string]types.AttributeValue{
		":userID": &types.AttributeValueMemberS{Value: userID},
	}
	if filter.Since != nil {
		keyCondition += " AND created_at >= :since"
		values[":since"] = sortKeyTime(*filter.Since)
	}

	var filters []string
	if filter.AccountID != "" {
		filters = append(filters, "account_id = :accountID")
		values[":accountID"] = &types.AttributeValueMemberS{Value: filter.AccountID}
	}
	if filter.Direction != "" {
		filters = append(filters, "direction = :direction")
		values[":direction"] = &types.AttributeValueMemberS{Value: string(filter.Direction)}
	}
	if filter.Category != "" {
		filters = append(filters, "category = :category")
		values[":category"] = &types.AttributeValueMemberS{Value: filter.Category}
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.Tables.Ledger),
		IndexName:                 aws.String(userCreatedAtIndex),
		KeyConditionExpression:    aws.String(keyCondition),
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(false), // Sort by created_at in descending order
	}
	if len(filters) > 0 {
		input.FilterExpression = aws.String(strings.Join(filters, " AND "))
	}

	// A zero limit means "everything", used by the summary.
	want := 0
	if filter.Limit > 0 {
		want = filter.Skip + filter.Limit
	}

	var entries []models.LedgerEntry
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query ledger entries by user ID: %w", err)
		}

		var page []models.LedgerEntry
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ledger entries: %w", err)
		}
		entries = append(entries, page...)

		if (want > 0 && len(entries) >= want) || len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	if filter.Skip >= len(entries) {
		return []models.LedgerEntry{}, nil
	}
	entries = entries[filter.Skip:]
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

// ListEntriesByReference retrieves both legs of a transfer, or the single entry of a posting.
func (s *Store) ListEntriesByReference(ctx context.Context, reference string) ([]models.LedgerEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Ledger),
		IndexName:              aws.String(referenceIndex),
		KeyConditionExpression: aws.String("reference = :reference"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":reference": &types.AttributeValueMemberS{Value: reference},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries by reference: %w", err)
	}

	var entries []models.LedgerEntry
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entries: %w", err)
	}

	return entries, nil
}
