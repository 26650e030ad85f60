package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Status is the logical stream state. Transitions are driven exclusively by
// the Manager; callers only request Connect or Disconnect.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusReconnecting Status = "reconnecting"
)

// StatusInfo is a point-in-time read of the stream state.
type StatusInfo struct {
	State     Status
	LastError string // Empty when the last transition was clean
}

// Command is an outbound control message.
type Command struct {
	Type string `json:"type"`
}

// Outbound command types understood by the telemetry server.
const (
	CommandSubscribeTelemetry = "subscribe_telemetry"
	CommandRequestCurrentData = "request_current_data"
)

// TimestampedMessage wraps raw frame data with a receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw frame bytes
	ReceivedAt time.Time // Local timestamp when ReadMessage returned
}

// ClientConfig configures a single WebSocket session.
type ClientConfig struct {
	URL              string        // wss://host/ws/telemetry/
	HandshakeTimeout time.Duration // Dial deadline
	PingInterval     time.Duration // Keepalive ping cadence
	PingTimeout      time.Duration // Max silence before the session is considered stale
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Inbound message channel capacity
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     15 * time.Second,
		PingTimeout:      60 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1000,
	}
}

// ManagerConfig configures the stream Manager.
type ManagerConfig struct {
	URL                string        // Stream endpoint
	HandshakeTimeout   time.Duration // Per-dial deadline
	PingInterval       time.Duration
	PingTimeout        time.Duration
	WriteTimeout       time.Duration
	BufferSize         int
	ReconnectBaseDelay time.Duration // First retry delay
	ReconnectMaxDelay  time.Duration // Backoff ceiling
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		HandshakeTimeout:   10 * time.Second,
		PingInterval:       15 * time.Second,
		PingTimeout:        60 * time.Second,
		WriteTimeout:       5 * time.Second,
		BufferSize:         1000,
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  30 * time.Second,
	}
}

func (c *ManagerConfig) applyDefaults() {
	def := DefaultManagerConfig()
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = def.PingInterval
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = def.PingTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.BufferSize == 0 {
		c.BufferSize = def.BufferSize
	}
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = def.ReconnectBaseDelay
	}
	if c.ReconnectMaxDelay == 0 {
		c.ReconnectMaxDelay = def.ReconnectMaxDelay
	}
}

// StreamHandler consumes inbound frames and is told when the stream state
// must be discarded.
type StreamHandler interface {
	// HandleFrame processes one raw frame. Called sequentially in arrival
	// order from the session's read goroutine.
	HandleFrame(data []byte)

	// Reset discards all reconciled state. Called on manual disconnect.
	Reset()
}
