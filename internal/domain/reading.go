package domain

import (
	"context"
	"time"
)

// RawRecord is one unprocessed message from the stream consumer. Data holds
// the base64-encoded payload exactly as the collector published it.
type RawRecord struct {
	Key       []byte
	Data      []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// SensorPayload is the wire shape of a decoded sensor document. Required
// fields are pointers so the enricher can tell "absent" from "zero" and name
// the specific missing field in its error.
type SensorPayload struct {
	SensorID         *string  `json:"sensor_id"`
	ZoneID           *string  `json:"zone_id"`
	VehicleCount     *int     `json:"vehicle_count"`
	AvgSpeed         *float64 `json:"avg_speed"`
	CongestionIndex  *float64 `json:"congestion_index"`
	Temperature      *float64 `json:"temperature"`
	WeatherCondition string   `json:"weather_condition"`
	Timestamp        string   `json:"timestamp"`
}

// SensorReading is a validated reading with all required fields present and
// numeric values coerced to two decimal places.
type SensorReading struct {
	SensorID         string   `json:"sensor_id" dynamodbav:"sensor_id"`
	ZoneID           string   `json:"zone_id" dynamodbav:"zone_id"`
	VehicleCount     int      `json:"vehicle_count" dynamodbav:"vehicle_count"`
	AvgSpeed         float64  `json:"avg_speed" dynamodbav:"avg_speed"`
	CongestionIndex  float64  `json:"congestion_index" dynamodbav:"congestion_index"`
	Temperature      *float64 `json:"temperature,omitempty" dynamodbav:"temperature,omitempty"`
	WeatherCondition string   `json:"weather_condition,omitempty" dynamodbav:"weather_condition,omitempty"`
	Timestamp        string   `json:"timestamp" dynamodbav:"timestamp"`
}

// EnrichedReading is a SensorReading plus derived fields. UniqueID is the
// idempotency key for the keyed store; TTL is epoch seconds.
type EnrichedReading struct {
	SensorReading
	UniqueID         string  `json:"unique_id" dynamodbav:"unique_id"`
	TrafficFlowScore float64 `json:"traffic_flow_score" dynamodbav:"traffic_flow_score"`
	ProcessedAt      string  `json:"processed_at" dynamodbav:"processed_at"`
	Environment      string  `json:"environment" dynamodbav:"environment"`
	TTL              int64   `json:"ttl" dynamodbav:"ttl"`
}

// BatchResult summarizes one orchestrator invocation. It is returned to the
// invoking runtime for logging only and is never persisted.
type BatchResult struct {
	Processed  int
	Errors     int
	AlertsSent int
}
