// Package dynamo persists enriched readings to a DynamoDB table keyed by
// dedup hash. It implements pipeline.ReadingStore.
package dynamo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gridpulse/traffic-ingest/internal/domain"
)

// API is the slice of the DynamoDB client this adapter uses.
type API interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Writer writes one chunk of readings per BatchWriteItem call. The caller
// owns chunking; a chunk here must respect the 25-item API cap.
type Writer struct {
	client API
	table  string
	logger *slog.Logger
}

func NewWriter(client API, table string, logger *slog.Logger) *Writer {
	return &Writer{client: client, table: table, logger: logger}
}

// WriteChunk puts readings keyed by unique_id. Writes are idempotent
// overwrites: a redelivered reading replaces its earlier copy. Returns the
// number of items the store could not accept; retry of those is delegated
// to upstream redelivery.
func (w *Writer) WriteChunk(ctx context.Context, readings []domain.EnrichedReading) (int, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	writes := make([]types.WriteRequest, 0, len(readings))
	for _, reading := range readings {
		item, err := attributevalue.MarshalMap(reading)
		if err != nil {
			return 0, fmt.Errorf("marshal reading %s: %w", reading.UniqueID, err)
		}
		writes = append(writes, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	out, err := w.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{w.table: writes},
	})
	if err != nil {
		return 0, fmt.Errorf("batch write to %s: %w", w.table, err)
	}

	return len(out.UnprocessedItems[w.table]), nil
}
