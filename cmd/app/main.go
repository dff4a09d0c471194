package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/ethicalbank/pkg/banking"
	"github.com/chris/ethicalbank/pkg/config"
	"github.com/chris/ethicalbank/pkg/consent"
	"github.com/chris/ethicalbank/pkg/events"
	"github.com/chris/ethicalbank/pkg/handlers"
	"github.com/chris/ethicalbank/pkg/logging"
	"github.com/chris/ethicalbank/pkg/metrics"
	"github.com/chris/ethicalbank/pkg/privacy"
	dydbstore "github.com/chris/ethicalbank/pkg/storage/dynamodb"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.ServiceName, cfg.Env)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}

	dbClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})
	store := dydbstore.New(dbClient, dydbstore.Tables{
		Accounts:    cfg.DynamoDB.AccountsTable,
		Ledger:      cfg.DynamoDB.LedgerTable,
		Consents:    cfg.DynamoDB.ConsentsTable,
		Permissions: cfg.DynamoDB.PermissionsTable,
	})

	var publisher events.Publisher = events.NoOpPublisher{}
	if cfg.SQS.QueueURL != "" {
		publisher = events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.SQS.QueueURL)
	} else {
		logger.Warn("sqs.queue_url not set, domain events are discarded")
	}

	var scoreCache privacy.ScoreCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, privacy scores will be recomputed until it recovers", "error", err)
		}
		scoreCache = privacy.NewRedisScoreCache(rdb, cfg.Privacy.ScoreTTL, "")
	}

	registry := metrics.NewRegistry()

	bank := banking.NewService(store, publisher, banking.NewMetrics(registry), logger, cfg.Ledger.MaxAttempts)
	consents := consent.NewService(store, publisher, consent.NewMetrics(registry), logger)
	privacySvc := privacy.NewService(store, consents, scoreCache, logger)

	router := handlers.NewRouter(handlers.NewApiHandler(bank, consents, privacySvc, logger), handlers.RouterOptions{
		Logger:      logger,
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		Registry:    registry,
		HTTPMetrics: metrics.NewHTTP(registry),
		MetricsPath: cfg.MetricsPath,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func configPath() string {
	if p := os.Getenv("ETHICALBANK_CONFIG_FILE"); p != "" {
		return p
	}
	return "config.yaml"
}
