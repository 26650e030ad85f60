package dispatch

import (
	"sync"
	"testing"

	"github.com/roadsense/telemetry/internal/model"
	"github.com/roadsense/telemetry/internal/state"
)

// recordingSink captures enqueued records.
type recordingSink struct {
	mu      sync.Mutex
	records []model.LiveRecord
}

func (s *recordingSink) Enqueue(rec model.LiveRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestDispatcher_Telemetry(t *testing.T) {
	store := state.New()
	sink := &recordingSink{}
	d := New(store, sink, nil)

	d.HandleFrame([]byte(`{"type":"telemetry","data":{"vehicle_id":"VER-1","lap_number":12,"speed":310.5,"position":1,"timestamp":"2026-08-01T14:03:22Z"}}`))

	rec, ok := store.LiveFor("VER-1")
	if !ok {
		t.Fatal("expected live record for VER-1")
	}
	if rec.LapNumber != 12 {
		t.Errorf("LapNumber = %d, want 12", rec.LapNumber)
	}

	if sink.count() != 1 {
		t.Errorf("sink received %d records, want 1", sink.count())
	}
}

func TestDispatcher_Weather(t *testing.T) {
	store := state.New()
	d := New(store, nil, nil)

	d.HandleFrame([]byte(`{"type":"weather","data":{"track_temperature":41.0,"air_temperature":29.5}}`))

	snap, ok := store.Weather()
	if !ok {
		t.Fatal("expected weather snapshot")
	}
	if snap.TrackTemperature != 41.0 {
		t.Errorf("TrackTemperature = %v, want 41.0", snap.TrackTemperature)
	}
}

func TestDispatcher_CurrentTelemetry(t *testing.T) {
	store := state.New()
	d := New(store, nil, nil)

	d.HandleFrame([]byte(`{"type":"current_telemetry","data":[{"vehicle_id":"VER-1","lap_number":11},{"vehicle_id":"HAM-44","lap_number":11}]}`))

	if got := len(store.Historical()); got != 2 {
		t.Errorf("len(Historical()) = %d, want 2", got)
	}
}

func TestDispatcher_CurrentData(t *testing.T) {
	store := state.New()
	d := New(store, nil, nil)

	d.HandleFrame([]byte(`{"type":"current_data","telemetry":[{"vehicle_id":"VER-1"}],"weather":{"track_temperature":38.2}}`))

	if got := len(store.Historical()); got != 1 {
		t.Errorf("len(Historical()) = %d, want 1", got)
	}
	if _, ok := store.Weather(); !ok {
		t.Error("expected weather snapshot from current_data")
	}
}

func TestDispatcher_CurrentDataWithoutWeather(t *testing.T) {
	store := state.New()
	d := New(store, nil, nil)

	// Seed a weather snapshot, then apply a current_data with empty weather
	d.HandleFrame([]byte(`{"type":"weather","data":{"track_temperature":38.2}}`))
	d.HandleFrame([]byte(`{"type":"current_data","telemetry":[{"vehicle_id":"VER-1"}],"weather":{}}`))

	// An absent weather side must not clobber the existing snapshot
	snap, ok := store.Weather()
	if !ok {
		t.Fatal("weather snapshot should survive a partial current_data")
	}
	if snap.TrackTemperature != 38.2 {
		t.Errorf("TrackTemperature = %v, want 38.2", snap.TrackTemperature)
	}
}

func TestDispatcher_Alert(t *testing.T) {
	store := state.New()
	d := New(store, nil, nil)

	d.HandleFrame([]byte(`{"type":"alert","data":{"alert_type":"TIRE_WEAR","severity":"HIGH","title":"Tire wear","message":"Front left above threshold"}}`))

	alerts := store.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("len(Alerts()) = %d, want 1", len(alerts))
	}
	if alerts[0].AlertType != "TIRE_WEAR" {
		t.Errorf("AlertType = %q, want TIRE_WEAR", alerts[0].AlertType)
	}
}

func TestDispatcher_MalformedFrameLeavesStateIntact(t *testing.T) {
	store := state.New()
	d := New(store, nil, nil)

	d.HandleFrame([]byte(`{"type":"telemetry","data":{"vehicle_id":"VER-1","lap_number":5}}`))

	before := store.Stats()

	d.HandleFrame([]byte(`not json at all`))
	d.HandleFrame([]byte(`{"data":{"vehicle_id":"HAM-44"}}`))
	d.HandleFrame([]byte(`{"type":"telemetry","data":[1,2,3]}`))

	after := store.Stats()
	if after.LiveCount != before.LiveCount {
		t.Errorf("LiveCount changed from %d to %d on malformed frames", before.LiveCount, after.LiveCount)
	}
	if !after.LastUpdate.Equal(before.LastUpdate) {
		t.Error("LastUpdate changed on malformed frames")
	}

	stats := d.Stats()
	if stats.DecodeErrors != 3 {
		t.Errorf("DecodeErrors = %d, want 3", stats.DecodeErrors)
	}
}

func TestDispatcher_UnknownKind(t *testing.T) {
	store := state.New()
	d := New(store, nil, nil)

	d.HandleFrame([]byte(`{"type":"pit_stop","data":{}}`))

	stats := d.Stats()
	if stats.UnknownKinds != 1 {
		t.Errorf("UnknownKinds = %d, want 1", stats.UnknownKinds)
	}
	if stats.FramesApplied != 0 {
		t.Errorf("FramesApplied = %d, want 0", stats.FramesApplied)
	}
}

func TestDispatcher_TireIsInert(t *testing.T) {
	store := state.New()
	d := New(store, nil, nil)

	d.HandleFrame([]byte(`{"type":"tire","data":{"front_left":{"temp":98}}}`))

	stats := store.Stats()
	if stats.LiveCount != 0 || stats.HistoricalCount != 0 || stats.HasWeather {
		t.Error("tire frame must not mutate the store")
	}
}

func TestDispatcher_Reset(t *testing.T) {
	store := state.New()
	d := New(store, nil, nil)

	d.HandleFrame([]byte(`{"type":"telemetry","data":{"vehicle_id":"VER-1","lap_number":5}}`))
	d.Reset()

	if len(store.Live()) != 0 {
		t.Error("store should be empty after Reset")
	}
}

func TestDispatcher_Stats(t *testing.T) {
	store := state.New()
	d := New(store, nil, nil)

	d.HandleFrame([]byte(`{"type":"telemetry","data":{"vehicle_id":"VER-1"}}`))
	d.HandleFrame([]byte(`{"type":"weather","data":{"track_temperature":40}}`))
	d.HandleFrame([]byte(`garbage`))

	stats := d.Stats()
	if stats.FramesReceived != 3 {
		t.Errorf("FramesReceived = %d, want 3", stats.FramesReceived)
	}
	if stats.FramesApplied != 2 {
		t.Errorf("FramesApplied = %d, want 2", stats.FramesApplied)
	}
	if stats.DecodeErrors != 1 {
		t.Errorf("DecodeErrors = %d, want 1", stats.DecodeErrors)
	}
}
