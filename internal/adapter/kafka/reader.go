// Package kafka adapts the source Kafka topic to the pipeline's
// stream-consumer boundary.
package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gridpulse/traffic-ingest/internal/config"
	"github.com/gridpulse/traffic-ingest/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes raw records from the source topic in bounded batches.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader        *kafkago.Reader
	logger        *slog.Logger
	flushInterval time.Duration
}

// NewReader creates a consumer-group reader for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaSourceTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{reader: r, logger: logger, flushInterval: cfg.BatchFlushInterval}
}

// ExtractBatch fetches up to batchSize records, returning early once the
// flush interval elapses so a slow trickle of messages still forms batches.
// Offsets are committed later via each record's Commit callback, after the
// pipeline has flushed the batch.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRecord, error) {
	batchCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
	defer cancel()

	records := make([]domain.RawRecord, 0, batchSize)
	for len(records) < batchSize {
		msg, err := r.reader.FetchMessage(batchCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				break // flush interval elapsed, return what we have
			}
			if len(records) > 0 && ctx.Err() == nil {
				break
			}
			return nil, err
		}
		records = append(records, r.mapMessageToRawRecord(msg))
	}
	return records, nil
}

func (r *Reader) mapMessageToRawRecord(msg kafkago.Message) domain.RawRecord {
	return domain.RawRecord{
		Key:       msg.Key,
		Data:      msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}
