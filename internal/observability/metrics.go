package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingest pipeline.
type Metrics struct {
	RecordsConsumed  prometheus.Counter
	RecordsProcessed prometheus.Counter
	RecordErrors     prometheus.Counter
	AlertsGenerated  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Flush-stage metrics, one failure domain per downstream system.
	StoreUnprocessedItems prometheus.Counter
	StoreWriteErrors      prometheus.Counter
	BusFailedEntries      prometheus.Counter
	BusPublishErrors      prometheus.Counter
	MetricsPublishErrors  prometheus.Counter

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "traffic_ingest",
			Name:      "records_consumed_total",
			Help:      "Total raw records read from the source topic.",
		}),
		RecordsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "traffic_ingest",
			Name:      "records_processed_total",
			Help:      "Total records decoded and enriched successfully.",
		}),
		RecordErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "traffic_ingest",
			Name:      "record_errors_total",
			Help:      "Total records skipped for decode or validation failures.",
		}),
		AlertsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "traffic_ingest",
			Name:      "alerts_generated_total",
			Help:      "Total congestion alerts handed to the dispatcher.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "traffic_ingest",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		StoreUnprocessedItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "traffic_ingest",
			Name:      "store_unprocessed_items_total",
			Help:      "Readings the keyed store returned as unprocessed.",
		}),
		StoreWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "traffic_ingest",
			Name:      "store_write_errors_total",
			Help:      "Store write calls that failed at the call level.",
		}),
		BusFailedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "traffic_ingest",
			Name:      "bus_failed_entries_total",
			Help:      "Alert entries the event bus rejected.",
		}),
		BusPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "traffic_ingest",
			Name:      "bus_publish_errors_total",
			Help:      "Bus publish calls that failed at the call level.",
		}),
		MetricsPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "traffic_ingest",
			Name:      "metrics_publish_errors_total",
			Help:      "Metric publish calls that failed at the call level.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "traffic_ingest",
			Name:      "batch_size",
			Help:      "Number of raw records per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "traffic_ingest",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete process-and-flush cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.RecordsConsumed,
		m.RecordsProcessed,
		m.RecordErrors,
		m.AlertsGenerated,
		m.PipelineRunning,
		m.StoreUnprocessedItems,
		m.StoreWriteErrors,
		m.BusFailedEntries,
		m.BusPublishErrors,
		m.MetricsPublishErrors,
		m.BatchSize,
		m.BatchProcessingDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsConsumed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "traffic_ingest", Name: "records_consumed_total"}),
		RecordsProcessed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "traffic_ingest", Name: "records_processed_total"}),
		RecordErrors:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "traffic_ingest", Name: "record_errors_total"}),
		AlertsGenerated:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "traffic_ingest", Name: "alerts_generated_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "traffic_ingest", Name: "pipeline_running"}),
		StoreUnprocessedItems:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "traffic_ingest", Name: "store_unprocessed_items_total"}),
		StoreWriteErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "traffic_ingest", Name: "store_write_errors_total"}),
		BusFailedEntries:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "traffic_ingest", Name: "bus_failed_entries_total"}),
		BusPublishErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "traffic_ingest", Name: "bus_publish_errors_total"}),
		MetricsPublishErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "traffic_ingest", Name: "metrics_publish_errors_total"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "traffic_ingest", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "traffic_ingest", Name: "batch_processing_duration_seconds"}),
	}
}
