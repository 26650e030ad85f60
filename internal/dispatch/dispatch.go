package dispatch

import (
	"log/slog"
	"sync"

	"github.com/roadsense/telemetry/internal/codec"
	"github.com/roadsense/telemetry/internal/model"
	"github.com/roadsense/telemetry/internal/state"
)

// Sink receives live records as a side channel, e.g. for archiving.
// Implementations must not block.
type Sink interface {
	Enqueue(rec model.LiveRecord)
}

// Stats contains runtime dispatch counters.
type Stats struct {
	FramesReceived int64
	FramesApplied  int64
	DecodeErrors   int64
	UnknownKinds   int64
}

// Dispatcher decodes inbound frames and applies them to the Store.
type Dispatcher struct {
	store  *state.Store
	sink   Sink // Optional
	logger *slog.Logger

	mu       sync.Mutex
	received int64
	applied  int64
	decode   int64
	unknown  int64
}

// New creates a Dispatcher. sink may be nil.
func New(store *state.Store, sink Sink, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:  store,
		sink:   sink,
		logger: logger,
	}
}

// HandleFrame decodes one raw frame and applies its state mutation.
// It never panics and never propagates an error: bad frames are logged
// and dropped.
func (d *Dispatcher) HandleFrame(data []byte) {
	d.count(&d.received)

	ev, err := codec.Decode(data)
	if err != nil {
		d.logger.Warn("dropping undecodable frame", "error", err)
		d.count(&d.decode)
		return
	}

	switch ev := ev.(type) {
	case codec.ConnectionEstablished:
		d.logger.Info("stream session established", "message", ev.Message)

	case codec.Telemetry:
		if ev.Record == nil {
			return
		}
		d.store.UpsertLive(*ev.Record)
		if d.sink != nil {
			d.sink.Enqueue(*ev.Record)
		}

	case codec.Weather:
		if ev.Snapshot == nil {
			return
		}
		d.store.SetWeather(*ev.Snapshot)

	case codec.CurrentTelemetry:
		if ev.Records == nil {
			return
		}
		d.store.ReplaceHistorical(ev.Records)

	case codec.CurrentData:
		if ev.Telemetry != nil {
			d.store.ReplaceHistorical(ev.Telemetry)
		}
		if ev.Weather != nil {
			d.store.SetWeather(*ev.Weather)
		}

	case codec.Alert:
		if ev.Alert == nil {
			return
		}
		d.store.AddAlert(*ev.Alert)

	case codec.Tire:
		// No reconciliation target for tire data yet.
		d.logger.Debug("ignoring tire update", "bytes", len(ev.Raw))

	case codec.Unknown:
		d.logger.Warn("unrecognized event kind", "kind", ev.RawKind)
		d.count(&d.unknown)
		return
	}

	d.count(&d.applied)
}

// Reset clears all reconciled state. The connection manager calls this
// when the stream is torn down.
func (d *Dispatcher) Reset() {
	d.store.Reset()
}

// Stats returns current dispatch counters.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		FramesReceived: d.received,
		FramesApplied:  d.applied,
		DecodeErrors:   d.decode,
		UnknownKinds:   d.unknown,
	}
}

func (d *Dispatcher) count(field *int64) {
	d.mu.Lock()
	*field++
	d.mu.Unlock()
}
