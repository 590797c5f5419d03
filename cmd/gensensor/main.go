// Command gensensor publishes synthetic traffic-sensor readings to the
// source Kafka topic for local pipeline runs. Payloads are base64-encoded
// JSON, matching the collector's transport envelope. A fraction of records
// can be made invalid to exercise the pipeline's error path.
//
// Usage:
//
//	go run ./cmd/gensensor \
//	  -brokers localhost:9092 \
//	  -topic sensor-telemetry \
//	  -count 200 -invalid-rate 0.05 -congested-rate 0.2
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

var zones = []string{"zone-A", "zone-B", "zone-C", "zone-D"}

var weather = []string{"clear", "rain", "fog", "snow", ""}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	brokers := flag.String("brokers", "localhost:9092", "comma-separated Kafka brokers")
	topic := flag.String("topic", "sensor-telemetry", "destination topic")
	count := flag.Int("count", 100, "number of records to publish")
	sensors := flag.Int("sensors", 25, "number of distinct sensor IDs")
	invalidRate := flag.Float64("invalid-rate", 0, "fraction of records missing a required field")
	congestedRate := flag.Float64("congested-rate", 0.1, "fraction of records with congestion above 80")
	seed := flag.Int64("seed", time.Now().UnixNano(), "PRNG seed for reproducible runs")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(strings.Split(*brokers, ",")...),
		Topic:    *topic,
		Balancer: &kafkago.LeastBytes{},
	}
	defer writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	msgs := make([]kafkago.Message, 0, *count)
	invalid := 0
	for i := 0; i < *count; i++ {
		doc := makeReading(rng, *sensors, *congestedRate)
		if rng.Float64() < *invalidRate {
			delete(doc, "vehicle_count")
			invalid++
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal reading: %w", err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(doc["sensor_id"].(string)),
			Value: []byte(base64.StdEncoding.EncodeToString(data)),
		})
	}

	if err := writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}

	log.Printf("published %d records to %s (%d invalid)", *count, *topic, invalid)
	return nil
}

func makeReading(rng *rand.Rand, sensors int, congestedRate float64) map[string]any {
	congestion := rng.Float64() * 75
	if rng.Float64() < congestedRate {
		congestion = 80 + rng.Float64()*20
	}

	doc := map[string]any{
		"sensor_id":        fmt.Sprintf("sensor-%03d", rng.Intn(sensors)+1),
		"zone_id":          zones[rng.Intn(len(zones))],
		"vehicle_count":    rng.Intn(150),
		"avg_speed":        round2(rng.Float64() * 70),
		"congestion_index": round2(congestion),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	}

	if w := weather[rng.Intn(len(weather))]; w != "" {
		doc["weather_condition"] = w
		doc["temperature"] = round2(-5 + rng.Float64()*40)
	}
	return doc
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
