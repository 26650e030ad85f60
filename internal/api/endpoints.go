package api

import (
	"context"

	"github.com/roadsense/telemetry/internal/model"
)

// GetVehicles fetches the vehicle roster.
func (c *Client) GetVehicles(ctx context.Context) ([]model.Vehicle, error) {
	var resp []APIVehicle
	if err := c.get(ctx, "/api/vehicles/", nil, &resp); err != nil {
		return nil, err
	}

	vehicles := make([]model.Vehicle, len(resp))
	for i, v := range resp {
		vehicles[i] = v.ToModel()
	}
	return vehicles, nil
}

// GetCurrentTelemetry fetches recent telemetry for all vehicles.
func (c *Client) GetCurrentTelemetry(ctx context.Context) ([]model.TelemetryRecord, error) {
	var resp []APITelemetry
	if err := c.get(ctx, "/api/telemetry/current/", nil, &resp); err != nil {
		return nil, err
	}

	records := make([]model.TelemetryRecord, len(resp))
	for i, t := range resp {
		records[i] = t.ToModel()
	}
	return records, nil
}

// GetCurrentWeather fetches the current weather snapshot.
func (c *Client) GetCurrentWeather(ctx context.Context) (model.WeatherSnapshot, error) {
	var resp APIWeather
	if err := c.get(ctx, "/api/weather/current/", nil, &resp); err != nil {
		return model.WeatherSnapshot{}, err
	}
	return resp.ToModel(), nil
}

// Simulate asks the backend to generate simulated telemetry. Used by
// development and demo setups; the generated rows arrive over the stream.
func (c *Client) Simulate(ctx context.Context) (SimulateResponse, error) {
	var resp SimulateResponse
	if err := c.post(ctx, "/api/telemetry/simulate/", &resp); err != nil {
		return SimulateResponse{}, err
	}
	return resp, nil
}
