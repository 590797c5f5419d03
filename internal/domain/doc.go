// Package domain models roadside traffic-sensor telemetry.
//
// # Data Source
//
// Readings originate from curbside flow sensors that publish one JSON
// document per measurement interval. The upstream collector wraps each
// document in a transport envelope whose payload is base64-encoded, so the
// first processing step is always decode-then-parse. A reading carries the
// sensor and zone identifiers, a vehicle count for the interval, the average
// speed in mph, and a congestion index on a 0-100 scale; temperature and
// weather condition are optional and frequently absent on older firmware.
//
// # Timestamps
//
// Sensors with a synced clock report an ISO-8601 timestamp. Sensors without
// one omit the field and the enricher stamps the reading with the current
// UTC time. Defaulting happens before the dedup key is computed, so the key
// always covers the timestamp value that is actually stored.
//
// # Dedup Keys
//
// Each enriched reading gets a deterministic MD5 key over
// sensor_id + timestamp + vehicle_count. The upstream consumer redelivers
// at-least-once; identical inputs hash to identical keys, so a redelivered
// record overwrites its earlier copy in the keyed store instead of
// duplicating it. Collision resistance is not a goal here, only
// accidental-duplicate detection. See [EnrichReading].
//
// # Traffic Flow Score
//
// A composite 0-100 quality-of-flow metric blending three factors:
//
//	score = 100 * (0.4*min(avg_speed/60, 1) + 0.3*min(vehicle_count/100, 1) + 0.3*(100-congestion_index)/100)
//
// 60 mph and 100 vehicles are the fixed "optimal" reference values; the
// weights sum to 1. The result is clamped to [0, 100] and rounded to two
// decimals, as are avg_speed and congestion_index, so stored values compare
// deterministically across writes and later reads.
//
// # Alerts
//
// A reading whose congestion index strictly exceeds the configured threshold
// produces one alert: CRITICAL above 90, WARNING otherwise. Equality with
// the threshold does not trigger.
package domain
