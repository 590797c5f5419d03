package domain

import "time"

// maxDimensionValueLen is the metrics backend's cap on dimension values.
const maxDimensionValueLen = 50

// Dimension is one ordered key/value qualifier on a metric point.
type Dimension struct {
	Name  string
	Value string
}

// MetricPoint is a single datum destined for the metrics backend.
type MetricPoint struct {
	Name       string
	Value      float64
	Unit       string
	Dimensions []Dimension
	Timestamp  time.Time
}

// CollectReadingMetrics derives the fixed set of operational metrics for one
// successfully processed reading: a processed count, the congestion index,
// the vehicle count, and the flow score, each dimensioned by sensor and
// zone. Pure function; the timestamp comes from the enrichment clock.
func CollectReadingMetrics(reading EnrichedReading) []MetricPoint {
	now := clock.Now().UTC()
	dims := []Dimension{
		{Name: "SensorID", Value: truncateDimension(reading.SensorID)},
		{Name: "ZoneID", Value: truncateDimension(reading.ZoneID)},
	}

	return []MetricPoint{
		{Name: "ReadingsProcessed", Value: 1, Unit: "Count", Dimensions: dims, Timestamp: now},
		{Name: "CongestionIndex", Value: reading.CongestionIndex, Unit: "None", Dimensions: dims, Timestamp: now},
		{Name: "VehicleCount", Value: float64(reading.VehicleCount), Unit: "Count", Dimensions: dims, Timestamp: now},
		{Name: "TrafficFlowScore", Value: reading.TrafficFlowScore, Unit: "None", Dimensions: dims, Timestamp: now},
	}
}

// ErrorMetric derives the single error-count point for a failed record,
// dimensioned by error type.
func ErrorMetric(err error) MetricPoint {
	return MetricPoint{
		Name:  "ProcessingErrors",
		Value: 1,
		Unit:  "Count",
		Dimensions: []Dimension{
			{Name: "ErrorType", Value: truncateDimension(ErrorType(err))},
		},
		Timestamp: clock.Now().UTC(),
	}
}

func truncateDimension(v string) string {
	if len(v) > maxDimensionValueLen {
		return v[:maxDimensionValueLen]
	}
	return v
}
