// Command ingest runs the traffic telemetry ingestion service: a Kafka
// consumer feeding the batch pipeline that persists enriched readings to
// DynamoDB, publishes congestion alerts to EventBridge, and ships
// operational metrics to CloudWatch.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/joho/godotenv"

	cloudwatchadapter "github.com/gridpulse/traffic-ingest/internal/adapter/cloudwatch"
	"github.com/gridpulse/traffic-ingest/internal/adapter/dynamo"
	eventbridgeadapter "github.com/gridpulse/traffic-ingest/internal/adapter/eventbridge"
	"github.com/gridpulse/traffic-ingest/internal/adapter/httpadapter"
	kafkaadapter "github.com/gridpulse/traffic-ingest/internal/adapter/kafka"
	"github.com/gridpulse/traffic-ingest/internal/config"
	"github.com/gridpulse/traffic-ingest/internal/observability"
	"github.com/gridpulse/traffic-ingest/internal/pipeline"
)

func main() {
	_ = godotenv.Load() // local dev convenience; absent .env is fine

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}

	endpoint := func(base *string) *string {
		if cfg.AWSEndpoint == "" {
			return base
		}
		return aws.String(cfg.AWSEndpoint)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = endpoint(o.BaseEndpoint)
	})
	bridgeClient := eventbridge.NewFromConfig(awsCfg, func(o *eventbridge.Options) {
		o.BaseEndpoint = endpoint(o.BaseEndpoint)
	})
	cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		o.BaseEndpoint = endpoint(o.BaseEndpoint)
	})

	store := dynamo.NewWriter(dynamoClient, cfg.ReadingsTable, logger)
	bus := eventbridgeadapter.NewPublisher(bridgeClient, cfg.EventBusName, logger)
	sink := cloudwatchadapter.NewPublisher(cwClient, cfg.MetricNamespace, logger)

	orchestrator := pipeline.NewOrchestrator(
		pipeline.NewPersister(store, logger, metrics),
		pipeline.NewDispatcher(bus, logger, metrics),
		pipeline.NewPublisher(sink, logger, metrics),
		cfg.AlertThreshold,
		cfg.Environment,
		logger,
		metrics,
	)

	reader := kafkaadapter.NewReader(cfg, logger)
	runner := pipeline.NewRunner(reader, orchestrator, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := runner.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}

	logger.Info("shutdown complete")
}
