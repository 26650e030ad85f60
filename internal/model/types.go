package model

import "time"

// Vehicle identifies a single car in the session.
type Vehicle struct {
	VehicleID string // Stable identifier (e.g., "VER-1")
	Number    int    // Car number
	Team      string // Team name
	Driver    string // Driver name
}

// LiveRecord is one live telemetry observation for a single vehicle.
// Identity is VehicleID: the live buffer retains at most one record per
// vehicle, a newer observation replacing the older one.
type LiveRecord struct {
	VehicleID      string    `json:"vehicle_id"`
	LapNumber      int       `json:"lap_number"`
	LapTimeSeconds float64   `json:"lap_time"`
	Speed          float64   `json:"speed"` // km/h
	Position       int       `json:"position"`
	GapToLeader    float64   `json:"gap_to_leader"` // seconds
	ObservedAt     time.Time `json:"timestamp"`
}

// TelemetryRecord is a full historical telemetry row as served by the
// backend. The server omits fields it has no data for; missing values
// decode to zero.
type TelemetryRecord struct {
	VehicleID      string    `json:"vehicle_id"`
	LapNumber      int       `json:"lap_number"`
	LapTimeSeconds float64   `json:"lap_time"`
	Sector1Seconds float64   `json:"sector1_time,omitempty"`
	Sector2Seconds float64   `json:"sector2_time,omitempty"`
	Sector3Seconds float64   `json:"sector3_time,omitempty"`
	Speed          float64   `json:"speed"`
	RPM            int       `json:"rpm,omitempty"`
	Gear           int       `json:"gear,omitempty"`
	Throttle       float64   `json:"throttle,omitempty"` // percent
	Brake          float64   `json:"brake,omitempty"`    // percent
	Position       int       `json:"position"`
	GapToLeader    float64   `json:"gap_to_leader"`
	Timestamp      time.Time `json:"timestamp"`
}

// Live converts a historical record to its live-buffer form.
func (r TelemetryRecord) Live() LiveRecord {
	return LiveRecord{
		VehicleID:      r.VehicleID,
		LapNumber:      r.LapNumber,
		LapTimeSeconds: r.LapTimeSeconds,
		Speed:          r.Speed,
		Position:       r.Position,
		GapToLeader:    r.GapToLeader,
		ObservedAt:     r.Timestamp,
	}
}

// WeatherSnapshot is the current track environment. The stream replaces it
// wholesale on every weather frame (last-write-wins, no history).
type WeatherSnapshot struct {
	TrackTemperature float64   `json:"track_temperature"` // Celsius
	AirTemperature   float64   `json:"air_temperature"`   // Celsius
	Humidity         float64   `json:"humidity"`          // percent
	Pressure         float64   `json:"pressure,omitempty"`
	WindSpeed        float64   `json:"wind_speed,omitempty"`
	WindDirection    float64   `json:"wind_direction,omitempty"` // degrees
	Rainfall         float64   `json:"rainfall"`                 // mm
	Timestamp        time.Time `json:"timestamp,omitempty"`
}

// Alert is a race-engineering alert pushed over the stream.
type Alert struct {
	VehicleID         string    `json:"vehicle_id,omitempty"` // Empty for session-wide alerts
	AlertType         string    `json:"alert_type"`           // e.g. "TIRE_WEAR", "FUEL_LOW"
	Severity          string    `json:"severity"`             // "LOW", "MEDIUM", "HIGH", "CRITICAL"
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	RecommendedAction string    `json:"recommended_action,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}
