package state

import (
	"sync"
	"time"

	"github.com/roadsense/telemetry/internal/model"
)

// Default capacities for the bounded collections.
const (
	DefaultLiveCapacity  = 100
	DefaultAlertCapacity = 50
)

// Stats summarizes the store for health reporting.
type Stats struct {
	VehicleCount    int
	LiveCount       int
	HistoricalCount int
	AlertCount      int
	HasWeather      bool
	LastUpdate      time.Time // Zero if no update has been applied
}

// Store is the mutex-guarded container for all stream-reconciled state.
type Store struct {
	mu sync.RWMutex

	vehicles   []model.Vehicle    // REST-seeded roster, not stream state
	live       []model.LiveRecord // Most-recent-first, unique VehicleID
	historical []model.TelemetryRecord
	weather    *model.WeatherSnapshot
	alerts     []model.Alert // Most-recent-first
	lastUpdate time.Time

	liveCap  int
	alertCap int

	now func() time.Time // Test seam
}

// Option configures a Store.
type Option func(*Store)

// WithLiveCapacity overrides the live buffer capacity.
func WithLiveCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.liveCap = n
		}
	}
}

// WithAlertCapacity overrides the alert buffer capacity.
func WithAlertCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.alertCap = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		liveCap:  DefaultLiveCapacity,
		alertCap: DefaultAlertCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetVehicles replaces the vehicle roster. The roster comes from the REST
// API, not the stream, so it does not stamp the last-update timestamp.
func (s *Store) SetVehicles(vehicles []model.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vehicles = make([]model.Vehicle, len(vehicles))
	copy(s.vehicles, vehicles)
}

// Vehicles returns a copy of the vehicle roster.
func (s *Store) Vehicles() []model.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Vehicle, len(s.vehicles))
	copy(out, s.vehicles)
	return out
}

// UpsertLive applies one live observation: any existing record for the same
// vehicle is removed, the new record is inserted at the front, the buffer is
// truncated to capacity from the tail, and the last-update timestamp is set.
func (s *Store) UpsertLive(rec model.LiveRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.live {
		if existing.VehicleID == rec.VehicleID {
			s.live = append(s.live[:i], s.live[i+1:]...)
			break
		}
	}

	s.live = append([]model.LiveRecord{rec}, s.live...)
	if len(s.live) > s.liveCap {
		s.live = s.live[:s.liveCap]
	}

	s.lastUpdate = s.now()
}

// Live returns a copy of the live buffer, most recent first.
func (s *Store) Live() []model.LiveRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LiveRecord, len(s.live))
	copy(out, s.live)
	return out
}

// LiveFor returns the live record for a vehicle, if present.
func (s *Store) LiveFor(vehicleID string) (model.LiveRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.live {
		if rec.VehicleID == vehicleID {
			return rec, true
		}
	}
	return model.LiveRecord{}, false
}

// ReplaceHistorical replaces the historical collection wholesale. There is
// no merge logic; the collection is bounded only by the upstream payload.
func (s *Store) ReplaceHistorical(recs []model.TelemetryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.historical = make([]model.TelemetryRecord, len(recs))
	copy(s.historical, recs)
	s.lastUpdate = s.now()
}

// Historical returns a copy of the historical collection.
func (s *Store) Historical() []model.TelemetryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TelemetryRecord, len(s.historical))
	copy(out, s.historical)
	return out
}

// SetWeather replaces the weather snapshot (last-write-wins).
func (s *Store) SetWeather(snap model.WeatherSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.weather = &snap
	s.lastUpdate = s.now()
}

// Weather returns the current weather snapshot, if one has been received.
func (s *Store) Weather() (model.WeatherSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.weather == nil {
		return model.WeatherSnapshot{}, false
	}
	return *s.weather, true
}

// AddAlert prepends an alert, truncating the list to capacity.
func (s *Store) AddAlert(a model.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append([]model.Alert{a}, s.alerts...)
	if len(s.alerts) > s.alertCap {
		s.alerts = s.alerts[:s.alertCap]
	}
	s.lastUpdate = s.now()
}

// Alerts returns a copy of recent alerts, most recent first.
func (s *Store) Alerts() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// LastUpdate returns the time of the most recent successful mutation and
// whether any mutation has happened since the last reset.
func (s *Store) LastUpdate() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate, !s.lastUpdate.IsZero()
}

// Stats returns a summary for health reporting.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		VehicleCount:    len(s.vehicles),
		LiveCount:       len(s.live),
		HistoricalCount: len(s.historical),
		AlertCount:      len(s.alerts),
		HasWeather:      s.weather != nil,
		LastUpdate:      s.lastUpdate,
	}
}

// Reset clears all stream-reconciled collections and the last-update
// timestamp. Called on disconnect so stale live data is never presented as
// current. The vehicle roster survives: it is REST-seeded reference data,
// not stream state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.live = nil
	s.historical = nil
	s.weather = nil
	s.alerts = nil
	s.lastUpdate = time.Time{}
}
