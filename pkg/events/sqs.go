package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the subset of the SQS client used by the publisher.
type SQSAPI interface {
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
}

// SQS accepts at most ten entries per batch.
const maxBatchSize = 10

// SQSPublisher implements the Publisher interface using AWS SQS.
type SQSPublisher struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSPublisher creates a new SQSPublisher.
func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Publisher = (*SQSPublisher)(nil)

// Publish sends the events to the queue, tagging each message with its event type.
func (p *SQSPublisher) Publish(ctx context.Context, events ...Event) error {
	for start := 0; start < len(events); start += maxBatchSize {
		end := min(start+maxBatchSize, len(events))

		entries := make([]types.SendMessageBatchRequestEntry, 0, end-start)
		for _, e := range events[start:end] {
			// Marshal the event to JSON.
			body, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event for SQS: %w", err)
			}
			entries = append(entries, types.SendMessageBatchRequestEntry{
				Id:          aws.String(e.Id),
				MessageBody: aws.String(string(body)),
				MessageAttributes: map[string]types.MessageAttributeValue{
					"event_type": {
						DataType:    aws.String("String"),
						StringValue: aws.String(string(e.Type)),
					},
				},
			})
		}

		// Send the batch to SQS.
		out, err := p.Client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
			QueueUrl: aws.String(p.QueueURL),
			Entries:  entries,
		})
		if err != nil {
			return fmt.Errorf("failed to send messages to SQS: %w", err)
		}
		if len(out.Failed) > 0 {
			return fmt.Errorf("failed to send %d of %d messages to SQS: %s", len(out.Failed), len(entries), aws.ToString(out.Failed[0].Message))
		}
	}

	return nil
}
