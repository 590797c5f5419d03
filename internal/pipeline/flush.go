package pipeline

import (
	"context"
	"log/slog"

	"github.com/gridpulse/traffic-ingest/internal/domain"
	"github.com/gridpulse/traffic-ingest/internal/observability"
)

// Per-call item caps of the downstream APIs: DynamoDB BatchWriteItem,
// EventBridge PutEvents, CloudWatch PutMetricData.
const (
	storeChunkSize   = 25
	busChunkSize     = 10
	metricsChunkSize = 20
)

// ReadingStore writes one chunk of readings to the keyed store and reports
// how many items the store could not accept.
type ReadingStore interface {
	WriteChunk(ctx context.Context, readings []domain.EnrichedReading) (unprocessed int, err error)
}

// AlertBus publishes one chunk of alerts and reports how many entries the
// bus rejected.
type AlertBus interface {
	PublishChunk(ctx context.Context, alerts []domain.Alert) (failed int, err error)
}

// MetricSink publishes one chunk of metric points to the metrics backend.
type MetricSink interface {
	PublishChunk(ctx context.Context, points []domain.MetricPoint) error
}

// FlushStats summarizes one flush stage. Each chunk lands in exactly one of
// the three outcomes: fully accepted, partially rejected, or failed at the
// call level.
type FlushStats struct {
	Chunks         int
	Accepted       int
	PartialRejects int
	FailedCalls    int
}

// chunk partitions items into consecutive slices of at most size elements,
// preserving order. The returned slices alias the input.
func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// Persister writes enriched readings to the keyed store in
// store-capacity-sized chunks. Every reading is attempted exactly once per
// invocation; unprocessed items and call failures are logged and counted but
// never retried in-process, since the upstream consumer redelivers and
// writes are idempotent by dedup key.
type Persister struct {
	store   ReadingStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewPersister(store ReadingStore, logger *slog.Logger, metrics *observability.Metrics) *Persister {
	return &Persister{store: store, logger: logger, metrics: metrics}
}

func (p *Persister) Flush(ctx context.Context, readings []domain.EnrichedReading) FlushStats {
	var stats FlushStats
	for _, c := range chunk(readings, storeChunkSize) {
		stats.Chunks++
		unprocessed, err := p.store.WriteChunk(ctx, c)
		if err != nil {
			stats.FailedCalls++
			p.metrics.StoreWriteErrors.Inc()
			p.logger.Error("store write failed, skipping chunk", "error", err, "chunk_size", len(c))
			continue
		}
		if unprocessed > 0 {
			stats.PartialRejects++
			p.metrics.StoreUnprocessedItems.Add(float64(unprocessed))
			p.logger.Warn("store returned unprocessed items", "unprocessed", unprocessed, "chunk_size", len(c))
			continue
		}
		stats.Accepted++
	}
	return stats
}

// Dispatcher publishes alerts to the event bus in bus-capacity-sized chunks
// with the same per-chunk failure isolation as the Persister.
type Dispatcher struct {
	bus     AlertBus
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewDispatcher(bus AlertBus, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{bus: bus, logger: logger, metrics: metrics}
}

func (d *Dispatcher) Flush(ctx context.Context, alerts []domain.Alert) FlushStats {
	var stats FlushStats
	for _, c := range chunk(alerts, busChunkSize) {
		stats.Chunks++
		failed, err := d.bus.PublishChunk(ctx, c)
		if err != nil {
			stats.FailedCalls++
			d.metrics.BusPublishErrors.Inc()
			d.logger.Error("alert publish failed, skipping chunk", "error", err, "chunk_size", len(c))
			continue
		}
		if failed > 0 {
			stats.PartialRejects++
			d.metrics.BusFailedEntries.Add(float64(failed))
			d.logger.Warn("event bus rejected entries", "failed", failed, "chunk_size", len(c))
			continue
		}
		stats.Accepted++
	}
	return stats
}

// Publisher ships metric points to the metrics backend in
// backend-capacity-sized chunks. Publication is best-effort observability:
// failures are logged and counted but never influence batch results.
type Publisher struct {
	sink    MetricSink
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewPublisher(sink MetricSink, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	return &Publisher{sink: sink, logger: logger, metrics: metrics}
}

func (p *Publisher) Flush(ctx context.Context, points []domain.MetricPoint) FlushStats {
	var stats FlushStats
	for _, c := range chunk(points, metricsChunkSize) {
		stats.Chunks++
		if err := p.sink.PublishChunk(ctx, c); err != nil {
			stats.FailedCalls++
			p.metrics.MetricsPublishErrors.Inc()
			p.logger.Warn("metric publish failed, skipping chunk", "error", err, "chunk_size", len(c))
			continue
		}
		stats.Accepted++
	}
	return stats
}
