package pipeline

import (
	"context"
	"log/slog"

	"github.com/gridpulse/traffic-ingest/internal/domain"
	"github.com/gridpulse/traffic-ingest/internal/observability"
)

// Orchestrator runs one batch invocation: each record flows independently
// through decode and enrich, successes are accumulated into per-invocation
// buffers, then the three flush stages run in order. A failed record is
// logged, counted, and skipped; a failed chunk never aborts its stage.
// ProcessBatch is designed to always return a BatchResult rather than fail,
// so the invoking runtime never retries a whole batch.
type Orchestrator struct {
	persister  *Persister
	dispatcher *Dispatcher
	publisher  *Publisher

	threshold   int
	environment string
	logger      *slog.Logger
	metrics     *observability.Metrics
}

func NewOrchestrator(persister *Persister, dispatcher *Dispatcher, publisher *Publisher, threshold int, environment string, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		persister:   persister,
		dispatcher:  dispatcher,
		publisher:   publisher,
		threshold:   threshold,
		environment: environment,
		logger:      logger,
		metrics:     metrics,
	}
}

// ProcessBatch processes one bounded batch of raw records and flushes the
// accumulated readings, alerts, and metric points to their downstream
// systems. Buffers are local to the call; invocations share no state.
func (o *Orchestrator) ProcessBatch(ctx context.Context, records []domain.RawRecord) domain.BatchResult {
	var (
		result   domain.BatchResult
		readings = make([]domain.EnrichedReading, 0, len(records))
		alerts   []domain.Alert
		points   = make([]domain.MetricPoint, 0, 4*len(records))
	)

	for _, rec := range records {
		reading, err := o.processRecord(rec)
		if err != nil {
			o.logger.Warn("record processing failed, skipping",
				"error", err,
				"topic", rec.Topic,
				"partition", rec.Partition,
				"offset", rec.Offset,
			)
			o.metrics.RecordErrors.Inc()
			result.Errors++
			points = append(points, domain.ErrorMetric(err))
			continue
		}

		result.Processed++
		readings = append(readings, reading)

		if alert, ok := domain.EvaluateAlert(reading, o.threshold); ok {
			alerts = append(alerts, alert)
		}
		points = append(points, domain.CollectReadingMetrics(reading)...)
	}

	result.AlertsSent = len(alerts)
	o.metrics.RecordsProcessed.Add(float64(result.Processed))
	o.metrics.AlertsGenerated.Add(float64(len(alerts)))

	// Flush stages are independent failure domains; each tolerates its own
	// chunk failures and none can abort the others.
	o.persister.Flush(ctx, readings)
	o.dispatcher.Flush(ctx, alerts)
	o.publisher.Flush(ctx, points)

	return result
}

func (o *Orchestrator) processRecord(rec domain.RawRecord) (domain.EnrichedReading, error) {
	payload, err := domain.DecodeRecord(rec)
	if err != nil {
		return domain.EnrichedReading{}, err
	}
	return domain.EnrichReading(payload, o.environment)
}
