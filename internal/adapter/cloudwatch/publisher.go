// Package cloudwatch publishes operational metric points under a fixed
// namespace. It implements pipeline.MetricSink.
package cloudwatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/gridpulse/traffic-ingest/internal/domain"
)

// API is the slice of the CloudWatch client this adapter uses.
type API interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Publisher publishes one chunk of points per PutMetricData call. The
// caller owns chunking; a chunk here must respect the 20-datum API cap.
type Publisher struct {
	client    API
	namespace string
	logger    *slog.Logger
}

func NewPublisher(client API, namespace string, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, namespace: namespace, logger: logger}
}

// PublishChunk is fire-and-forget: the backend reports no per-datum
// failures, so the only failure mode is the call itself.
func (p *Publisher) PublishChunk(ctx context.Context, points []domain.MetricPoint) error {
	if len(points) == 0 {
		return nil
	}

	data := make([]types.MetricDatum, 0, len(points))
	for _, point := range points {
		data = append(data, mapPointToDatum(point))
	}

	if _, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: data,
	}); err != nil {
		return fmt.Errorf("put metric data to %s: %w", p.namespace, err)
	}
	return nil
}

func mapPointToDatum(point domain.MetricPoint) types.MetricDatum {
	dims := make([]types.Dimension, 0, len(point.Dimensions))
	for _, d := range point.Dimensions {
		dims = append(dims, types.Dimension{
			Name:  aws.String(d.Name),
			Value: aws.String(d.Value),
		})
	}
	return types.MetricDatum{
		MetricName: aws.String(point.Name),
		Value:      aws.Float64(point.Value),
		Unit:       types.StandardUnit(point.Unit),
		Timestamp:  aws.Time(point.Timestamp),
		Dimensions: dims,
	}
}
