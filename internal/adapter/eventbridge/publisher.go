// Package eventbridge publishes congestion alerts to an EventBridge bus.
// It implements pipeline.AlertBus.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/gridpulse/traffic-ingest/internal/domain"
)

const (
	eventSource = "traffic.monitoring"
	detailType  = "CongestionAlert"
)

// API is the slice of the EventBridge client this adapter uses.
type API interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher publishes one chunk of alerts per PutEvents call. The caller
// owns chunking; a chunk here must respect the 10-entry API cap.
type Publisher struct {
	client  API
	busName string
	logger  *slog.Logger
}

func NewPublisher(client API, busName string, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, busName: busName, logger: logger}
}

// PublishChunk serializes alerts as structured events and reports the
// per-entry failure count the bus returned.
func (p *Publisher) PublishChunk(ctx context.Context, alerts []domain.Alert) (int, error) {
	if len(alerts) == 0 {
		return 0, nil
	}

	entries := make([]types.PutEventsRequestEntry, 0, len(alerts))
	for _, alert := range alerts {
		detail, err := json.Marshal(alert)
		if err != nil {
			return 0, fmt.Errorf("marshal alert %s: %w", alert.AlertID, err)
		}
		entries = append(entries, types.PutEventsRequestEntry{
			Source:       aws.String(eventSource),
			DetailType:   aws.String(detailType),
			Detail:       aws.String(string(detail)),
			EventBusName: aws.String(p.busName),
		})
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return 0, fmt.Errorf("put events to %s: %w", p.busName, err)
	}

	return int(out.FailedEntryCount), nil
}
