package domain

// AlertLevel grades a congestion alert.
type AlertLevel string

const (
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"

	// criticalCongestionIndex is the cutover from WARNING to CRITICAL,
	// independent of the configured alert threshold.
	criticalCongestionIndex = 90.0
)

// Alert is the event published to the bus when a reading's congestion index
// exceeds the configured threshold. AlertID reuses the reading's dedup key
// so redelivered records produce identical alerts.
type Alert struct {
	AlertID          string     `json:"alert_id"`
	SensorID         string     `json:"sensor_id"`
	ZoneID           string     `json:"zone_id"`
	CongestionIndex  float64    `json:"congestion_index"`
	VehicleCount     int        `json:"vehicle_count"`
	AvgSpeed         float64    `json:"avg_speed"`
	TrafficFlowScore float64    `json:"traffic_flow_score"`
	Level            AlertLevel `json:"alert_level"`
	Timestamp        string     `json:"timestamp"`
	Threshold        int        `json:"threshold"`
}

// EvaluateAlert returns an alert when the reading's congestion index
// strictly exceeds threshold; equality does not trigger. CRITICAL above 90,
// WARNING otherwise. Pure function of its inputs.
func EvaluateAlert(reading EnrichedReading, threshold int) (Alert, bool) {
	if reading.CongestionIndex <= float64(threshold) {
		return Alert{}, false
	}

	level := AlertWarning
	if reading.CongestionIndex > criticalCongestionIndex {
		level = AlertCritical
	}

	return Alert{
		AlertID:          reading.UniqueID,
		SensorID:         reading.SensorID,
		ZoneID:           reading.ZoneID,
		CongestionIndex:  reading.CongestionIndex,
		VehicleCount:     reading.VehicleCount,
		AvgSpeed:         reading.AvgSpeed,
		TrafficFlowScore: reading.TrafficFlowScore,
		Level:            level,
		Timestamp:        reading.Timestamp,
		Threshold:        threshold,
	}, true
}
