package domain

import (
	"crypto/md5" //nolint:gosec // dedup key, not a security boundary
	"encoding/hex"
	"math"
	"strconv"
	"time"
)

const (
	// Fixed reference values for the flow-score blend: 60 mph free flow and
	// 100 vehicles per interval are "optimal". Changing either changes every
	// stored score, so treat them as part of the data contract.
	optimalSpeedMPH     = 60.0
	optimalVehicleCount = 100.0

	// Blend weights; they sum to 1.0.
	speedWeight      = 0.4
	volumeWeight     = 0.3
	congestionWeight = 0.3

	// readingTTL is how long a persisted reading stays queryable before the
	// store expires it.
	readingTTL = 7 * 24 * time.Hour
)

// EnrichReading validates a decoded sensor document and derives the stored
// representation: dedup key, traffic flow score, processing metadata, and
// TTL. It returns a ValidationError naming the first missing required field.
//
// The timestamp is defaulted to the current UTC time before the dedup key is
// computed, so the key is always a function of the value actually stored.
// Reversing that order would silently change every key for timestamp-less
// sensors.
func EnrichReading(payload SensorPayload, environment string) (EnrichedReading, error) {
	if payload.SensorID == nil {
		return EnrichedReading{}, &ValidationError{Field: "sensor_id"}
	}
	if payload.ZoneID == nil {
		return EnrichedReading{}, &ValidationError{Field: "zone_id"}
	}
	if payload.VehicleCount == nil {
		return EnrichedReading{}, &ValidationError{Field: "vehicle_count"}
	}
	if payload.AvgSpeed == nil {
		return EnrichedReading{}, &ValidationError{Field: "avg_speed"}
	}
	if payload.CongestionIndex == nil {
		return EnrichedReading{}, &ValidationError{Field: "congestion_index"}
	}

	now := clock.Now().UTC()

	timestamp := payload.Timestamp
	if timestamp == "" {
		timestamp = now.Format(time.RFC3339)
	}

	reading := SensorReading{
		SensorID:         *payload.SensorID,
		ZoneID:           *payload.ZoneID,
		VehicleCount:     *payload.VehicleCount,
		AvgSpeed:         round2(*payload.AvgSpeed),
		CongestionIndex:  round2(*payload.CongestionIndex),
		Temperature:      payload.Temperature,
		WeatherCondition: payload.WeatherCondition,
		Timestamp:        timestamp,
	}

	return EnrichedReading{
		SensorReading:    reading,
		UniqueID:         dedupKey(reading.SensorID, reading.Timestamp, reading.VehicleCount),
		TrafficFlowScore: flowScore(reading.AvgSpeed, reading.CongestionIndex, reading.VehicleCount),
		ProcessedAt:      now.Format(time.RFC3339),
		Environment:      environment,
		TTL:              now.Add(readingTTL).Unix(),
	}, nil
}

// dedupKey hashes the fields that identify one physical measurement.
// Identical inputs always produce the same key, making redelivered records
// idempotent overwrites in the keyed store.
func dedupKey(sensorID, timestamp string, vehicleCount int) string {
	sum := md5.Sum([]byte(sensorID + timestamp + strconv.Itoa(vehicleCount))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// flowScore blends speed, volume, and congestion into a 0-100 composite,
// clamped and rounded to two decimals.
func flowScore(avgSpeed, congestionIndex float64, vehicleCount int) float64 {
	speedFactor := math.Min(avgSpeed/optimalSpeedMPH, 1)
	volumeFactor := math.Min(float64(vehicleCount)/optimalVehicleCount, 1)
	congestionFactor := (100 - congestionIndex) / 100

	score := 100 * (speedWeight*speedFactor + volumeWeight*volumeFactor + congestionWeight*congestionFactor)
	return round2(math.Min(math.Max(score, 0), 100))
}

// round2 coerces a value to two decimal places so stored numbers compare
// deterministically across writes and later reads.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
