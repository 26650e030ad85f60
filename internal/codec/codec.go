package codec

import (
	"encoding/json"
	"fmt"

	"github.com/roadsense/telemetry/internal/model"
)

// Wire event kinds.
const (
	KindConnectionEstablished = "connection_established"
	KindTelemetry             = "telemetry"
	KindWeather               = "weather"
	KindCurrentTelemetry      = "current_telemetry"
	KindCurrentData           = "current_data"
	KindTire                  = "tire"
	KindAlert                 = "alert"
)

// Event is a decoded inbound frame. Exactly one concrete type exists per
// recognized kind, plus Unknown for forward compatibility.
type Event interface {
	// Kind returns the wire discriminator this event was decoded from.
	Kind() string
}

// ConnectionEstablished is the server's greeting after the socket opens.
// Informational only.
type ConnectionEstablished struct {
	Message string
}

// Telemetry is a single-vehicle live update. Record is nil when the frame
// carried no payload.
type Telemetry struct {
	Record *model.LiveRecord
}

// Weather replaces the current environment snapshot. Snapshot is nil when
// the frame carried no payload.
type Weather struct {
	Snapshot *model.WeatherSnapshot
}

// CurrentTelemetry is a bulk sync of the historical telemetry collection.
type CurrentTelemetry struct {
	Records []model.TelemetryRecord
}

// CurrentData is a composite resync event. Either field may be absent;
// present fields are applied independently.
type CurrentData struct {
	Telemetry []model.TelemetryRecord
	Weather   *model.WeatherSnapshot
}

// Tire carries per-tire temperatures and pressures. The client has no
// reconciliation target for it; the payload is retained raw.
type Tire struct {
	Raw json.RawMessage
}

// Alert is a race-engineering alert. Alert is nil when the frame carried
// no payload.
type Alert struct {
	Alert *model.Alert
}

// Unknown is any kind this client does not recognize.
type Unknown struct {
	RawKind string
}

func (ConnectionEstablished) Kind() string { return KindConnectionEstablished }
func (Telemetry) Kind() string             { return KindTelemetry }
func (Weather) Kind() string               { return KindWeather }
func (CurrentTelemetry) Kind() string      { return KindCurrentTelemetry }
func (CurrentData) Kind() string           { return KindCurrentData }
func (Tire) Kind() string                  { return KindTire }
func (Alert) Kind() string                 { return KindAlert }
func (u Unknown) Kind() string             { return u.RawKind }

// envelope is the common outer shape of every inbound frame.
type envelope struct {
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Telemetry json.RawMessage `json:"telemetry"` // current_data only
	Weather   json.RawMessage `json:"weather"`   // current_data only
}

// Decode parses a raw text frame into an Event. It returns an error only
// for structurally malformed frames; unrecognized kinds decode to Unknown.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("decode frame: missing type discriminator")
	}

	switch env.Type {
	case KindConnectionEstablished:
		return ConnectionEstablished{Message: env.Message}, nil

	case KindTelemetry:
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return Telemetry{}, nil
		}
		var rec model.LiveRecord
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return nil, fmt.Errorf("decode telemetry payload: %w", err)
		}
		return Telemetry{Record: &rec}, nil

	case KindWeather:
		snap, err := decodeWeather(env.Data)
		if err != nil {
			return nil, err
		}
		return Weather{Snapshot: snap}, nil

	case KindCurrentTelemetry:
		recs, err := decodeTelemetryList(env.Data)
		if err != nil {
			return nil, err
		}
		return CurrentTelemetry{Records: recs}, nil

	case KindCurrentData:
		recs, err := decodeTelemetryList(env.Telemetry)
		if err != nil {
			return nil, err
		}
		snap, err := decodeWeather(env.Weather)
		if err != nil {
			return nil, err
		}
		return CurrentData{Telemetry: recs, Weather: snap}, nil

	case KindTire:
		return Tire{Raw: env.Data}, nil

	case KindAlert:
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return Alert{}, nil
		}
		var a model.Alert
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return nil, fmt.Errorf("decode alert payload: %w", err)
		}
		return Alert{Alert: &a}, nil

	default:
		return Unknown{RawKind: env.Type}, nil
	}
}

func decodeWeather(raw json.RawMessage) (*model.WeatherSnapshot, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	// The backend sends {} when it has no weather row yet.
	if string(raw) == "{}" {
		return nil, nil
	}
	var snap model.WeatherSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode weather payload: %w", err)
	}
	return &snap, nil
}

func decodeTelemetryList(raw json.RawMessage) ([]model.TelemetryRecord, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var recs []model.TelemetryRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("decode telemetry list: %w", err)
	}
	return recs, nil
}
