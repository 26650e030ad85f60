package api

import (
	"time"

	"github.com/roadsense/telemetry/internal/model"
)

// APIVehicle is a vehicle as served by GET /api/vehicles/.
type APIVehicle struct {
	VehicleID string `json:"vehicle_id"`
	Number    int    `json:"number"`
	Team      string `json:"team"`
	Driver    string `json:"driver"`
}

// ToModel converts to the internal representation.
func (v APIVehicle) ToModel() model.Vehicle {
	return model.Vehicle{
		VehicleID: v.VehicleID,
		Number:    v.Number,
		Team:      v.Team,
		Driver:    v.Driver,
	}
}

// APITelemetry is a telemetry row as served by GET /api/telemetry/current/.
type APITelemetry struct {
	VehicleID      string    `json:"vehicle_id"`
	LapNumber      int       `json:"lap_number"`
	LapTimeSeconds float64   `json:"lap_time_seconds"`
	Sector1Seconds float64   `json:"sector1_time"`
	Sector2Seconds float64   `json:"sector2_time"`
	Sector3Seconds float64   `json:"sector3_time"`
	Speed          float64   `json:"speed"`
	RPM            int       `json:"rpm"`
	Gear           int       `json:"gear"`
	Throttle       float64   `json:"throttle"`
	Brake          float64   `json:"brake"`
	Position       int       `json:"position"`
	GapToLeader    float64   `json:"gap_to_leader"`
	Timestamp      time.Time `json:"timestamp"`
}

// ToModel converts to the internal representation.
func (t APITelemetry) ToModel() model.TelemetryRecord {
	return model.TelemetryRecord{
		VehicleID:      t.VehicleID,
		LapNumber:      t.LapNumber,
		LapTimeSeconds: t.LapTimeSeconds,
		Sector1Seconds: t.Sector1Seconds,
		Sector2Seconds: t.Sector2Seconds,
		Sector3Seconds: t.Sector3Seconds,
		Speed:          t.Speed,
		RPM:            t.RPM,
		Gear:           t.Gear,
		Throttle:       t.Throttle,
		Brake:          t.Brake,
		Position:       t.Position,
		GapToLeader:    t.GapToLeader,
		Timestamp:      t.Timestamp,
	}
}

// APIWeather is the weather row as served by GET /api/weather/current/.
type APIWeather struct {
	TrackTemperature float64   `json:"track_temperature"`
	AirTemperature   float64   `json:"air_temperature"`
	Humidity         float64   `json:"humidity"`
	Pressure         float64   `json:"pressure"`
	WindSpeed        float64   `json:"wind_speed"`
	WindDirection    float64   `json:"wind_direction"`
	Rainfall         float64   `json:"rainfall"`
	Timestamp        time.Time `json:"timestamp"`
}

// ToModel converts to the internal representation.
func (w APIWeather) ToModel() model.WeatherSnapshot {
	return model.WeatherSnapshot{
		TrackTemperature: w.TrackTemperature,
		AirTemperature:   w.AirTemperature,
		Humidity:         w.Humidity,
		Pressure:         w.Pressure,
		WindSpeed:        w.WindSpeed,
		WindDirection:    w.WindDirection,
		Rainfall:         w.Rainfall,
		Timestamp:        w.Timestamp,
	}
}

// SimulateResponse is the acknowledgement from POST /api/telemetry/simulate/.
type SimulateResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
