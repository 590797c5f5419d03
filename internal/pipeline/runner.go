package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gridpulse/traffic-ingest/internal/domain"
	"github.com/gridpulse/traffic-ingest/internal/observability"
)

// BatchExtractor reads up to batchSize raw records from the stream.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRecord, error)
}

// Runner is the invoking runtime: it pulls bounded batches from the stream
// consumer, hands each to the orchestrator, and commits offsets after the
// flush stages complete. Redelivery after a crash is safe because persisted
// readings are keyed by dedup hash.
type Runner struct {
	extractor    BatchExtractor
	orchestrator *Orchestrator
	logger       *slog.Logger
	metrics      *observability.Metrics
	ready        atomic.Bool
	batchSize    int
}

// NewRunner creates a Runner with the given extractor and orchestrator.
func NewRunner(extractor BatchExtractor, orchestrator *Orchestrator, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Runner {
	return &Runner{
		extractor:    extractor,
		orchestrator: orchestrator,
		logger:       logger,
		metrics:      metrics,
		batchSize:    batchSize,
	}
}

// CheckReadiness returns nil once at least one batch has been processed.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("pipeline has not processed any batches yet")
	}
	return nil
}

// Run executes the ingest loop until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("pipeline started", "batch_size", r.batchSize)
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during Kafka outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !r.runOnce(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// runOnce extracts and processes one batch. Returns false if the pipeline
// should stop.
func (r *Runner) runOnce(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	batch, err := r.extractor.ExtractBatch(ctx, r.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		r.logger.Error("extract batch failed", "error", err)
		return r.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(batch) == 0 {
		return ctx.Err() == nil
	}

	r.metrics.RecordsConsumed.Add(float64(len(batch)))
	r.metrics.BatchSize.Observe(float64(len(batch)))
	*backoff = 200 * time.Millisecond

	result := r.orchestrator.ProcessBatch(ctx, batch)

	// Commit every record, including failed ones: per-record errors are
	// terminal (bad payloads never become good on redelivery) and flush
	// failures are recovered by idempotent re-writes, not re-reads.
	for _, rec := range batch {
		r.commitRecord(ctx, rec)
	}

	r.logger.Info("batch complete",
		"processed", result.Processed,
		"errors", result.Errors,
		"alerts_sent", result.AlertsSent,
		"duration", time.Since(start),
	)
	r.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	r.ready.Store(true)
	return true
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the pipeline should stop.
func (r *Runner) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitRecord commits the record offset if a commit function is available.
func (r *Runner) commitRecord(ctx context.Context, rec domain.RawRecord) {
	if rec.Commit == nil {
		return
	}
	if err := rec.Commit(ctx); err != nil {
		r.logger.Warn("commit offset failed", "error", err,
			"topic", rec.Topic, "partition", rec.Partition, "offset", rec.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
