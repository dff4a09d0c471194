package dynamodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
)

// grantedConsentGuard marks the single granted consent a user may hold for a consent type.
// It exists only while that consent is granted.
type grantedConsentGuard struct {
	Id        string `dynamodbav:"id"`
	ConsentId string `dynamodbav:"consent_id"`
}

func grantedGuardKey(userID, consentType string) string {
	return grantedConsentPrefix + userID + "#" + consentType
}

// marshalConsent marshals a record with index sort keys in fixed-width form.
func marshalConsent(record *models.ConsentRecord) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, err
	}
	setSortKeyTime(item, "created_at", &record.CreatedAt)
	setSortKeyTime(item, "expires_at", record.ExpiresAt)
	return item, nil
}

// GetConsent retrieves a consent record from DynamoDB by its ID.
func (s *Store) GetConsent(ctx context.Context, consentID string) (*models.ConsentRecord, error) {
	if strings.HasPrefix(consentID, grantedConsentPrefix) {
		return nil, fmt.Errorf("consent with ID %s: %w", consentID, storage.ErrNotFound)
	}

	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Consents),
		Key:            stringKey("id", consentID),
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get consent from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("consent with ID %s: %w", consentID, storage.ErrNotFound)
	}

	var record models.ConsentRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal consent: %w", err)
	}

	return &record, nil
}

// ListConsentsByUserID retrieves up to limit of a user's consents, newest first.
func (s *Store) ListConsentsByUserID(ctx context.Context, userID string, limit int32) ([]models.ConsentRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Consents),
		IndexName:              aws.String(userCreatedAtIndex),
		KeyConditionExpression: aws.String("user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false), // Sort by created_at in descending order
		Limit:            aws.Int32(limit),
	}

	records := []models.ConsentRecord{}
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query consents by user ID: %w", err)
		}

		var page []models.ConsentRecord
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal consents: %w", err)
		}
		records = append(records, page...)

		if int32(len(records)) >= limit || len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	if int32(len(records)) > limit {
		records = records[:limit]
	}
	return records, nil
}

// FindGrantedConsent follows the granted guard to the user's current consent of a type.
func (s *Store) FindGrantedConsent(ctx context.Context, userID, consentType string) (*models.ConsentRecord, error) {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Consents),
		Key:            stringKey("id", grantedGuardKey(userID, consentType)),
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get granted consent guard from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("granted %s consent for user %s: %w", consentType, userID, storage.ErrNotFound)
	}

	var guard grantedConsentGuard
	if err := attributevalue.UnmarshalMap(result.Item, &guard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal granted consent guard: %w", err)
	}

	return s.GetConsent(ctx, guard.ConsentId)
}

// ListLapsedConsents retrieves every granted consent whose expiry is at or before cutoff.
func (s *Store) ListLapsedConsents(ctx context.Context, cutoff time.Time) ([]models.ConsentRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Consents),
		IndexName:              aws.String(statusExpiresAtIndex),
		KeyConditionExpression: aws.String("#status = :granted AND expires_at <= :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":granted": &types.AttributeValueMemberS{Value: string(models.GRANTED)},
			":cutoff":  sortKeyTime(cutoff),
		},
	}

	records := []models.ConsentRecord{}
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query lapsed consents: %w", err)
		}

		var page []models.ConsentRecord
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal consents: %w", err)
		}
		records = append(records, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return records, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// CreateConsent stores a granted consent together with its guard.
func (s *Store) CreateConsent(ctx context.Context, record *models.ConsentRecord) error {
	recordAV, err := marshalConsent(record)
	if err != nil {
		return fmt.Errorf("failed to marshal consent: %w", err)
	}
	guardAV, err := attributevalue.MarshalMap(grantedConsentGuard{
		Id:        grantedGuardKey(record.UserId, record.ConsentType),
		ConsentId: record.Id,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal granted consent guard: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Claim the granted slot for this consent type.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Consents),
					Item:                guardAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				// Operation 2: Create the consent record.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Consents),
					Item:                recordAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("granted %s consent for user %s: %w", record.ConsentType, record.UserId, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create consent in DynamoDB: %w", err)
	}

	return nil
}

// TransitionConsent overwrites a record that is still in status from.
func (s *Store) TransitionConsent(ctx context.Context, record *models.ConsentRecord, from models.ConsentStatus) error {
	recordAV, err := marshalConsent(record)
	if err != nil {
		return fmt.Errorf("failed to marshal consent: %w", err)
	}

	put := &types.Put{
		TableName:           aws.String(s.Tables.Consents),
		Item:                recordAV,
		ConditionExpression: aws.String("#status = :from"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":from": &types.AttributeValueMemberS{Value: string(from)},
		},
	}

	if from != models.GRANTED {
		_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                 put.TableName,
			Item:                      put.Item,
			ConditionExpression:       put.ConditionExpression,
			ExpressionAttributeNames:  put.ExpressionAttributeNames,
			ExpressionAttributeValues: put.ExpressionAttributeValues,
		})
	} else {
		_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{
					// Operation 1: Move the record out of granted.
					Put: put,
				},
				{
					// Operation 2: Release the granted slot.
					Delete: &types.Delete{
						TableName:           aws.String(s.Tables.Consents),
						Key:                 stringKey("id", grantedGuardKey(record.UserId, record.ConsentType)),
						ConditionExpression: aws.String("consent_id = :consentID"),
						ExpressionAttributeValues: map[string]types.AttributeValue{
							":consentID": &types.AttributeValueMemberS{Value: record.Id},
						},
					},
				},
			},
		})
	}

	if err != nil {
		if isWriteConflict(err) {
			return fmt.Errorf("transition consent %s: %w", record.Id, storage.ErrVersionConflict)
		}
		return fmt.Errorf("failed to update consent in DynamoDB: %w", err)
	}

	return nil
}

// ReplaceConsent retires previous and installs next as the granted consent in one transaction.
func (s *Store) ReplaceConsent(ctx context.Context, previous, next *models.ConsentRecord) error {
	previousAV, err := marshalConsent(previous)
	if err != nil {
		return fmt.Errorf("failed to marshal previous consent: %w", err)
	}
	nextAV, err := marshalConsent(next)
	if err != nil {
		return fmt.Errorf("failed to marshal next consent: %w", err)
	}
	guardAV, err := attributevalue.MarshalMap(grantedConsentGuard{
		Id:        grantedGuardKey(next.UserId, next.ConsentType),
		ConsentId: next.Id,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal granted consent guard: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Retire the previous record.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Consents),
					Item:                previousAV,
					ConditionExpression: aws.String("#status = :granted"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":granted": &types.AttributeValueMemberS{Value: string(models.GRANTED)},
					},
				},
			},
			{
				// Operation 2: Point the granted slot at the new record.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Consents),
					Item:                guardAV,
					ConditionExpression: aws.String("consent_id = :previousID"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":previousID": &types.AttributeValueMemberS{Value: previous.Id},
					},
				},
			},
			{
				// Operation 3: Create the new record.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Consents),
					Item:                nextAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if isWriteConflict(err) {
			return fmt.Errorf("replace consent %s: %w", previous.Id, storage.ErrVersionConflict)
		}
		return fmt.Errorf("failed to execute consent replacement transaction: %w", err)
	}

	return nil
}

// DeleteConsent removes a record, provided it is still in the given status.
func (s *Store) DeleteConsent(ctx context.Context, consentID string, status models.ConsentStatus) error {
	input := &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.Tables.Consents),
		Key:                 stringKey("id", consentID),
		ConditionExpression: aws.String("#status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
		},
	}

	if _, err := s.Client.DeleteItem(ctx, input); err != nil {
		if isWriteConflict(err) {
			return fmt.Errorf("delete consent %s: %w", consentID, storage.ErrVersionConflict)
		}
		return fmt.Errorf("failed to delete consent from DynamoDB: %w", err)
	}

	return nil
}
