//go:build integration

package integration_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkaadapter "github.com/gridpulse/traffic-ingest/internal/adapter/kafka"
	"github.com/gridpulse/traffic-ingest/internal/config"
	"github.com/gridpulse/traffic-ingest/internal/domain"
	"github.com/gridpulse/traffic-ingest/internal/observability"
	"github.com/gridpulse/traffic-ingest/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSourceTopic = "test-sensor-telemetry"

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// memStore, memBus, and memSink stand in for the AWS downstream systems so
// the test exercises the real Kafka boundary with in-memory flush targets.
type memStore struct{ written []domain.EnrichedReading }

func (m *memStore) WriteChunk(_ context.Context, readings []domain.EnrichedReading) (int, error) {
	m.written = append(m.written, readings...)
	return 0, nil
}

type memBus struct{ published []domain.Alert }

func (m *memBus) PublishChunk(_ context.Context, alerts []domain.Alert) (int, error) {
	m.published = append(m.published, alerts...)
	return 0, nil
}

type memSink struct{ published []domain.MetricPoint }

func (m *memSink) PublishChunk(_ context.Context, points []domain.MetricPoint) error {
	m.published = append(m.published, points...)
	return nil
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func envelope(t *testing.T, doc map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return []byte(base64.StdEncoding.EncodeToString(data))
}

func sensorDoc(sensorID string, congestion float64) map[string]any {
	return map[string]any{
		"sensor_id":        sensorID,
		"zone_id":          "zone-A",
		"vehicle_count":    42,
		"avg_speed":        35.5,
		"congestion_index": congestion,
		"timestamp":        "2026-08-12T09:00:00Z",
	}
}

// TestIngestEndToEnd produces envelopes to real Kafka, extracts them through
// the adapter, and runs the orchestrator against in-memory sinks.
func TestIngestEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaGroupID:       fmt.Sprintf("test-ingest-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	invalid := sensorDoc("sensor-003", 50)
	delete(invalid, "vehicle_count")

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("a"), Value: envelope(t, sensorDoc("sensor-001", 40))},
		kafkago.Message{Key: []byte("b"), Value: envelope(t, sensorDoc("sensor-002", 95))},
		kafkago.Message{Key: []byte("c"), Value: envelope(t, invalid)},
	))

	reader := kafkaadapter.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	// Retry extraction because the consumer group may need time to
	// rebalance before partitions are assigned.
	var batch []domain.RawRecord
	for len(batch) < 3 {
		more, err := reader.ExtractBatch(ctx, 50)
		require.NoError(t, err)
		batch = append(batch, more...)
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for records from source topic")
		}
	}
	require.Len(t, batch, 3)

	store := &memStore{}
	bus := &memBus{}
	sink := &memSink{}
	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()

	o := pipeline.NewOrchestrator(
		pipeline.NewPersister(store, logger, metrics),
		pipeline.NewDispatcher(bus, logger, metrics),
		pipeline.NewPublisher(sink, logger, metrics),
		80,
		"integration",
		logger,
		metrics,
	)

	result := o.ProcessBatch(ctx, batch)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 1, result.AlertsSent)

	require.Len(t, store.written, 2)
	require.Len(t, bus.published, 1)
	assert.Equal(t, "sensor-002", bus.published[0].SensorID)
	assert.Equal(t, domain.AlertCritical, bus.published[0].Level)

	// 2 successes x 4 points + 1 error point.
	assert.Len(t, sink.published, 9)

	// Simulated redelivery: reprocessing the same records yields identical
	// dedup keys, so a second invocation overwrites rather than duplicates.
	rerun := o.ProcessBatch(ctx, batch)
	assert.Equal(t, result, rerun)
	require.Len(t, store.written, 4)
	assert.Equal(t, store.written[0].UniqueID, store.written[2].UniqueID)
	assert.Equal(t, store.written[1].UniqueID, store.written[3].UniqueID)
}
