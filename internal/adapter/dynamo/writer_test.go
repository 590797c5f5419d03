package dynamo

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gridpulse/traffic-ingest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	input *dynamodb.BatchWriteItemInput
	out   *dynamodb.BatchWriteItemOutput
	err   error
}

func (m *mockDynamo) BatchWriteItem(_ context.Context, params *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	if m.out != nil {
		return m.out, nil
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func testReading(uniqueID string) domain.EnrichedReading {
	return domain.EnrichedReading{
		SensorReading: domain.SensorReading{
			SensorID:        "sensor-001",
			ZoneID:          "zone-A",
			VehicleCount:    42,
			AvgSpeed:        35.5,
			CongestionIndex: 72.3,
			Timestamp:       "2026-08-12T09:00:00Z",
		},
		UniqueID:         uniqueID,
		TrafficFlowScore: 56.62,
		ProcessedAt:      "2026-08-12T09:30:00Z",
		Environment:      "test",
		TTL:              1786440600,
	}
}

func TestWriteChunk_MapsReadingsToPutRequests(t *testing.T) {
	client := &mockDynamo{}
	w := NewWriter(client, "traffic-readings", slog.Default())

	n, err := w.WriteChunk(context.Background(), []domain.EnrichedReading{
		testReading("id-1"),
		testReading("id-2"),
	})
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NotNil(t, client.input)
	writes := client.input.RequestItems["traffic-readings"]
	require.Len(t, writes, 2)

	item := writes[0].PutRequest.Item
	key, ok := item["unique_id"].(*types.AttributeValueMemberS)
	require.True(t, ok, "unique_id must be a string attribute")
	assert.Equal(t, "id-1", key.Value)

	sensor, ok := item["sensor_id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "sensor-001", sensor.Value)

	ttl, ok := item["ttl"].(*types.AttributeValueMemberN)
	require.True(t, ok, "ttl must be numeric for store expiry")
	assert.Equal(t, "1786440600", ttl.Value)

	score, ok := item["traffic_flow_score"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "56.62", score.Value)

	// Absent optional fields must not be written at all.
	assert.NotContains(t, item, "temperature")
}

func TestWriteChunk_ReportsUnprocessedItems(t *testing.T) {
	client := &mockDynamo{
		out: &dynamodb.BatchWriteItemOutput{
			UnprocessedItems: map[string][]types.WriteRequest{
				"traffic-readings": make([]types.WriteRequest, 3),
			},
		},
	}
	w := NewWriter(client, "traffic-readings", slog.Default())

	n, err := w.WriteChunk(context.Background(), []domain.EnrichedReading{testReading("id-1")})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestWriteChunk_WrapsCallError(t *testing.T) {
	client := &mockDynamo{err: errors.New("throttled")}
	w := NewWriter(client, "traffic-readings", slog.Default())

	_, err := w.WriteChunk(context.Background(), []domain.EnrichedReading{testReading("id-1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch write to traffic-readings")
}

func TestWriteChunk_EmptyChunkMakesNoCall(t *testing.T) {
	client := &mockDynamo{}
	w := NewWriter(client, "traffic-readings", slog.Default())

	n, err := w.WriteChunk(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Nil(t, client.input)
}
