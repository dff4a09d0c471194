package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/ethicalbank/pkg/config"
	"github.com/chris/ethicalbank/pkg/consent"
	"github.com/chris/ethicalbank/pkg/events"
	"github.com/chris/ethicalbank/pkg/logging"
	dydbstore "github.com/chris/ethicalbank/pkg/storage/dynamodb"
	"github.com/joho/godotenv"
)

var (
	consents *consent.Service
	logger   *slog.Logger
)

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.DynamoDB.ConsentsTable == "" {
		log.Fatal("dynamodb.consents_table is required")
	}
	logger = logging.NewLogger(cfg.LogLevel, cfg.ServiceName+"-consent-expiry", cfg.Env)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})
	store := dydbstore.New(dbClient, dydbstore.Tables{Consents: cfg.DynamoDB.ConsentsTable})

	var publisher events.Publisher = events.NoOpPublisher{}
	if cfg.SQS.QueueURL != "" {
		publisher = events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.SQS.QueueURL)
	}

	// Nothing scrapes a Lambda, so the sweep summary is logged instead of counted.
	consents = consent.NewService(store, publisher, nil, logger)
}

// HandleRequest is triggered by an EventBridge Schedule. The scheduled time is the cutoff so a
// delayed or retried invocation expires the same records.
func HandleRequest(ctx context.Context, evt lambdaevents.CloudWatchEvent) error {
	now := evt.Time.UTC()
	if evt.Time.IsZero() {
		now = time.Now().UTC()
	}
	logger.InfoContext(ctx, "starting consent expiry sweep", "cutoff", now, "event_id", evt.ID)

	expired, err := consents.ExpireLapsed(ctx, now)
	if err != nil {
		// Records expired before the failure stay expired; the next run picks up the rest.
		logger.ErrorContext(ctx, "consent expiry sweep finished with errors", "expired", expired, "error", err)
		return err
	}

	logger.InfoContext(ctx, "consent expiry sweep finished", "expired", expired)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
