package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/roadsense/telemetry/internal/model"
)

func liveRec(vehicleID string, lap int) model.LiveRecord {
	return model.LiveRecord{
		VehicleID:      vehicleID,
		LapNumber:      lap,
		LapTimeSeconds: 92.5,
		Speed:          280,
		Position:       1,
		ObservedAt:     time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC),
	}
}

func TestStore_UpsertLive_CapacityEviction(t *testing.T) {
	s := New()

	// Fill past capacity with distinct vehicles
	for i := 0; i < DefaultLiveCapacity+1; i++ {
		s.UpsertLive(liveRec(fmt.Sprintf("CAR-%03d", i), 1))
	}

	live := s.Live()
	if len(live) != DefaultLiveCapacity {
		t.Fatalf("len(Live()) = %d, want %d", len(live), DefaultLiveCapacity)
	}

	// The first-inserted record is the oldest and must be gone
	if _, ok := s.LiveFor("CAR-000"); ok {
		t.Error("oldest record CAR-000 should have been evicted")
	}

	// The newest record is at the front
	if live[0].VehicleID != fmt.Sprintf("CAR-%03d", DefaultLiveCapacity) {
		t.Errorf("front record = %s, want CAR-%03d", live[0].VehicleID, DefaultLiveCapacity)
	}
}

func TestStore_UpsertLive_ReplacesSameVehicle(t *testing.T) {
	s := New()

	s.UpsertLive(liveRec("VER-1", 10))
	s.UpsertLive(liveRec("HAM-44", 10))
	s.UpsertLive(liveRec("VER-1", 11))

	live := s.Live()
	if len(live) != 2 {
		t.Fatalf("len(Live()) = %d, want 2", len(live))
	}

	// Newer observation moved to the front
	if live[0].VehicleID != "VER-1" || live[0].LapNumber != 11 {
		t.Errorf("front record = %s lap %d, want VER-1 lap 11", live[0].VehicleID, live[0].LapNumber)
	}

	// Only one record per vehicle
	count := 0
	for _, rec := range live {
		if rec.VehicleID == "VER-1" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("VER-1 appears %d times, want 1", count)
	}
}

func TestStore_UpsertLive_EvictionUnderChurn(t *testing.T) {
	s := New(WithLiveCapacity(3))

	s.UpsertLive(liveRec("A", 1))
	s.UpsertLive(liveRec("B", 1))
	s.UpsertLive(liveRec("C", 1))

	// Updating an existing vehicle must not evict anyone
	s.UpsertLive(liveRec("A", 2))
	if len(s.Live()) != 3 {
		t.Fatalf("len(Live()) = %d, want 3", len(s.Live()))
	}

	// A new vehicle evicts the least recently updated (B)
	s.UpsertLive(liveRec("D", 1))
	if _, ok := s.LiveFor("B"); ok {
		t.Error("B should have been evicted")
	}
	if _, ok := s.LiveFor("A"); !ok {
		t.Error("A was refreshed and should survive")
	}
}

func TestStore_LiveFor(t *testing.T) {
	s := New()
	s.UpsertLive(liveRec("VER-1", 5))

	rec, ok := s.LiveFor("VER-1")
	if !ok {
		t.Fatal("LiveFor(VER-1) not found")
	}
	if rec.LapNumber != 5 {
		t.Errorf("LapNumber = %d, want 5", rec.LapNumber)
	}

	if _, ok := s.LiveFor("NOPE"); ok {
		t.Error("LiveFor(NOPE) should not be found")
	}
}

func TestStore_ReplaceHistorical(t *testing.T) {
	s := New()

	s.ReplaceHistorical([]model.TelemetryRecord{
		{VehicleID: "VER-1", LapNumber: 1},
		{VehicleID: "HAM-44", LapNumber: 1},
	})
	if len(s.Historical()) != 2 {
		t.Fatalf("len(Historical()) = %d, want 2", len(s.Historical()))
	}

	// Replacement is wholesale, not a merge
	s.ReplaceHistorical([]model.TelemetryRecord{
		{VehicleID: "LEC-16", LapNumber: 2},
	})
	got := s.Historical()
	if len(got) != 1 || got[0].VehicleID != "LEC-16" {
		t.Errorf("Historical() = %v, want single LEC-16 record", got)
	}
}

func TestStore_Weather_LastWriteWins(t *testing.T) {
	s := New()

	if _, ok := s.Weather(); ok {
		t.Error("Weather() should report absent before any update")
	}

	s.SetWeather(model.WeatherSnapshot{TrackTemperature: 38})
	s.SetWeather(model.WeatherSnapshot{TrackTemperature: 41})

	snap, ok := s.Weather()
	if !ok {
		t.Fatal("Weather() should be present")
	}
	if snap.TrackTemperature != 41 {
		t.Errorf("TrackTemperature = %v, want 41", snap.TrackTemperature)
	}
}

func TestStore_AddAlert_Capacity(t *testing.T) {
	s := New(WithAlertCapacity(2))

	s.AddAlert(model.Alert{Title: "first"})
	s.AddAlert(model.Alert{Title: "second"})
	s.AddAlert(model.Alert{Title: "third"})

	alerts := s.Alerts()
	if len(alerts) != 2 {
		t.Fatalf("len(Alerts()) = %d, want 2", len(alerts))
	}
	if alerts[0].Title != "third" || alerts[1].Title != "second" {
		t.Errorf("Alerts() order = [%s %s], want [third second]", alerts[0].Title, alerts[1].Title)
	}
}

func TestStore_LastUpdate(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 14, 30, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return fixed }))

	if _, ok := s.LastUpdate(); ok {
		t.Error("LastUpdate() should report absent before any mutation")
	}

	s.UpsertLive(liveRec("VER-1", 1))

	got, ok := s.LastUpdate()
	if !ok {
		t.Fatal("LastUpdate() should be present after a mutation")
	}
	if !got.Equal(fixed) {
		t.Errorf("LastUpdate() = %v, want %v", got, fixed)
	}
}

func TestStore_Vehicles(t *testing.T) {
	s := New()

	s.SetVehicles([]model.Vehicle{
		{VehicleID: "VER-1", Number: 1, Driver: "Verstappen"},
		{VehicleID: "HAM-44", Number: 44, Driver: "Hamilton"},
	})

	vehicles := s.Vehicles()
	if len(vehicles) != 2 {
		t.Fatalf("len(Vehicles()) = %d, want 2", len(vehicles))
	}
	if vehicles[0].VehicleID != "VER-1" {
		t.Errorf("vehicles[0].VehicleID = %q, want VER-1", vehicles[0].VehicleID)
	}

	// The roster is REST reference data and must not stamp LastUpdate
	if _, ok := s.LastUpdate(); ok {
		t.Error("SetVehicles must not stamp LastUpdate")
	}

	if got := s.Stats().VehicleCount; got != 2 {
		t.Errorf("Stats().VehicleCount = %d, want 2", got)
	}

	// Reset clears stream state but keeps the roster
	s.UpsertLive(liveRec("VER-1", 1))
	s.Reset()
	if len(s.Vehicles()) != 2 {
		t.Error("Vehicles() should survive Reset")
	}
}

func TestStore_Reset(t *testing.T) {
	s := New()

	s.UpsertLive(liveRec("VER-1", 1))
	s.ReplaceHistorical([]model.TelemetryRecord{{VehicleID: "VER-1"}})
	s.SetWeather(model.WeatherSnapshot{TrackTemperature: 40})
	s.AddAlert(model.Alert{Title: "tire wear"})

	s.Reset()

	if len(s.Live()) != 0 {
		t.Error("Live() should be empty after Reset")
	}
	if len(s.Historical()) != 0 {
		t.Error("Historical() should be empty after Reset")
	}
	if _, ok := s.Weather(); ok {
		t.Error("Weather() should be absent after Reset")
	}
	if len(s.Alerts()) != 0 {
		t.Error("Alerts() should be empty after Reset")
	}
	if _, ok := s.LastUpdate(); ok {
		t.Error("LastUpdate() should be absent after Reset")
	}
}

func TestStore_Stats(t *testing.T) {
	s := New()

	s.UpsertLive(liveRec("VER-1", 1))
	s.UpsertLive(liveRec("HAM-44", 1))
	s.SetWeather(model.WeatherSnapshot{TrackTemperature: 40})

	stats := s.Stats()
	if stats.LiveCount != 2 {
		t.Errorf("LiveCount = %d, want 2", stats.LiveCount)
	}
	if !stats.HasWeather {
		t.Error("HasWeather = false, want true")
	}
	if stats.LastUpdate.IsZero() {
		t.Error("LastUpdate should be set")
	}
}

func TestStore_CopiesAreIndependent(t *testing.T) {
	s := New()
	s.UpsertLive(liveRec("VER-1", 1))

	live := s.Live()
	live[0].VehicleID = "mutated"

	if rec, _ := s.LiveFor("VER-1"); rec.VehicleID != "VER-1" {
		t.Error("mutating the returned slice must not affect the store")
	}
}
