package cloudwatch

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/gridpulse/traffic-ingest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCloudWatch struct {
	input *cloudwatch.PutMetricDataInput
	err   error
}

func (m *mockCloudWatch) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestPublishChunk_MapsPointsToData(t *testing.T) {
	now := time.Date(2026, time.August, 12, 9, 30, 0, 0, time.UTC)
	client := &mockCloudWatch{}
	p := NewPublisher(client, "TrafficMonitoring", slog.Default())

	err := p.PublishChunk(context.Background(), []domain.MetricPoint{
		{
			Name:  "CongestionIndex",
			Value: 72.3,
			Unit:  "None",
			Dimensions: []domain.Dimension{
				{Name: "SensorID", Value: "sensor-001"},
				{Name: "ZoneID", Value: "zone-A"},
			},
			Timestamp: now,
		},
		{Name: "ReadingsProcessed", Value: 1, Unit: "Count", Timestamp: now},
	})
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "TrafficMonitoring", *client.input.Namespace)
	require.Len(t, client.input.MetricData, 2)

	datum := client.input.MetricData[0]
	assert.Equal(t, "CongestionIndex", *datum.MetricName)
	assert.Equal(t, 72.3, *datum.Value)
	assert.Equal(t, types.StandardUnitNone, datum.Unit)
	assert.Equal(t, now, *datum.Timestamp)
	require.Len(t, datum.Dimensions, 2)
	assert.Equal(t, "SensorID", *datum.Dimensions[0].Name)
	assert.Equal(t, "sensor-001", *datum.Dimensions[0].Value)

	assert.Equal(t, types.StandardUnitCount, client.input.MetricData[1].Unit)
}

func TestPublishChunk_WrapsCallError(t *testing.T) {
	client := &mockCloudWatch{err: errors.New("backend down")}
	p := NewPublisher(client, "TrafficMonitoring", slog.Default())

	err := p.PublishChunk(context.Background(), []domain.MetricPoint{{Name: "ReadingsProcessed"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put metric data to TrafficMonitoring")
}

func TestPublishChunk_EmptyChunkMakesNoCall(t *testing.T) {
	client := &mockCloudWatch{}
	p := NewPublisher(client, "TrafficMonitoring", slog.Default())

	require.NoError(t, p.PublishChunk(context.Background(), nil))
	assert.Nil(t, client.input)
}
