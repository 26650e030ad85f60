package connection

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Manager owns one logical telemetry stream and its lifecycle.
//
// At most one live session exists at any time. Callers request Connect or
// Disconnect and observe the result through Status; they never set state
// directly. Unexpected closure triggers reconnection with capped
// exponential backoff, retried indefinitely until Disconnect.
type Manager struct {
	cfg     ManagerConfig
	handler StreamHandler
	logger  *slog.Logger

	// dispatchMu serializes frame dispatch against the handler Reset on
	// Disconnect: a frame already dequeued can never be applied after the
	// reconciled state has been cleared.
	dispatchMu sync.Mutex

	mu      sync.Mutex
	status  Status
	lastErr string
	client  Client
	// gen identifies the current logical session. Connect and Disconnect
	// bump it; session goroutines and retry timers compare their captured
	// value against it before acting, so a stale timer can never resurrect
	// a stream the caller intentionally closed.
	gen     uint64
	attempt int
}

// NewManager creates a stream Manager. The handler receives every inbound
// frame and a Reset on manual disconnect.
func NewManager(cfg ManagerConfig, handler StreamHandler, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	return &Manager{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		status:  StatusDisconnected,
	}
}

// Connect initiates the stream. It is idempotent: a no-op while the stream
// is already connected or connecting. It returns immediately; the outcome
// is observed via Status.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.status == StatusConnected || m.status == StatusConnecting {
		m.mu.Unlock()
		return
	}
	m.gen++
	gen := m.gen
	m.status = StatusConnecting
	m.mu.Unlock()

	go m.run(gen)
}

// Disconnect tears the stream down with a normal-closure code, resets
// status and error state, and suppresses any pending reconnection. The
// handler's reconciled state is reset so stale data is never presented as
// current.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.gen++
	client := m.client
	m.client = nil
	m.status = StatusDisconnected
	m.lastErr = ""
	m.attempt = 0
	m.mu.Unlock()

	if client != nil {
		client.Close()
	}

	m.dispatchMu.Lock()
	m.handler.Reset()
	m.dispatchMu.Unlock()

	m.logger.Info("stream disconnected by caller")
}

// Status returns the current stream state and last error. A pure read.
func (m *Manager) Status() StatusInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return StatusInfo{State: m.status, LastError: m.lastErr}
}

// Send transmits a command over the active session. When no session is
// open the command is logged and dropped: a full resync is requested on
// every reconnect, so queuing would be redundant.
func (m *Manager) Send(cmd Command) {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()

	if client == nil || !client.IsConnected() {
		m.logger.Warn("dropping command, stream not connected", "type", cmd.Type)
		return
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		m.logger.Warn("failed to encode command", "type", cmd.Type, "error", err)
		return
	}
	if err := client.Send(data); err != nil {
		m.logger.Warn("failed to send command", "type", cmd.Type, "error", err)
	}
}

// run dials and services one session. It exits when the session ends,
// having either scheduled a retry or settled into Disconnected.
func (m *Manager) run(gen uint64) {
	session := uuid.NewString()
	log := m.logger.With("session", session)

	client := NewClient(ClientConfig{
		URL:              m.cfg.URL,
		HandshakeTimeout: m.cfg.HandshakeTimeout,
		PingInterval:     m.cfg.PingInterval,
		PingTimeout:      m.cfg.PingTimeout,
		WriteTimeout:     m.cfg.WriteTimeout,
		BufferSize:       m.cfg.BufferSize,
	}, log)

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.HandshakeTimeout)
	err := client.Connect(ctx)
	cancel()

	if err != nil {
		client.Close()
		m.mu.Lock()
		if gen != m.gen {
			m.mu.Unlock()
			return
		}
		m.lastErr = err.Error()
		m.status = StatusReconnecting
		m.mu.Unlock()

		log.Warn("stream dial failed", "url", m.cfg.URL, "error", err)
		m.scheduleRetry(gen, log)
		return
	}

	m.mu.Lock()
	if gen != m.gen {
		// Disconnect raced the dial; drop the session.
		m.mu.Unlock()
		client.Close()
		return
	}
	m.client = client
	m.status = StatusConnected
	m.lastErr = ""
	m.attempt = 0
	m.mu.Unlock()

	log.Info("stream connected", "url", m.cfg.URL)

	// Every entry into Connected re-subscribes and forces a full resync:
	// a fresh session is a discontinuity relative to the previous one.
	m.Send(Command{Type: CommandSubscribeTelemetry})
	m.Send(Command{Type: CommandRequestCurrentData})

	for {
		select {
		case msg := <-client.Messages():
			if !m.dispatch(gen, msg.Data) {
				return
			}

		case <-client.Done():
			// Closed out from under us by Disconnect. Any frames still
			// buffered belong to the dead session and are discarded.
			return

		case err := <-client.Errors():
			client.Close()

			m.mu.Lock()
			if gen != m.gen {
				// Caller disconnected while the error was in flight.
				m.mu.Unlock()
				return
			}
			m.client = nil

			if isNormalClose(err) {
				m.status = StatusDisconnected
				m.lastErr = ""
				m.mu.Unlock()
				log.Info("stream closed by server", "reason", err)
				return
			}

			m.lastErr = err.Error()
			m.status = StatusReconnecting
			m.mu.Unlock()

			log.Warn("stream lost", "error", err)
			m.scheduleRetry(gen, log)
			return
		}
	}
}

// dispatch applies one inbound frame unless the session identified by gen
// has been superseded. It reports whether the session is still live.
func (m *Manager) dispatch(gen uint64, data []byte) bool {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	stale := gen != m.gen
	m.mu.Unlock()
	if stale {
		return false
	}

	m.handler.HandleFrame(data)
	return true
}

// scheduleRetry arms the reconnection timer for the session identified by
// gen. The timer re-checks both the generation and the status before
// dialing again.
func (m *Manager) scheduleRetry(gen uint64, log *slog.Logger) {
	m.mu.Lock()
	m.attempt++
	attempt := m.attempt
	delay := backoffDelay(attempt, m.cfg.ReconnectBaseDelay, m.cfg.ReconnectMaxDelay)
	m.mu.Unlock()

	log.Info("scheduling reconnect", "attempt", attempt, "delay", delay)

	go func() {
		time.Sleep(delay)

		m.mu.Lock()
		if gen != m.gen || m.status != StatusReconnecting {
			m.mu.Unlock()
			return
		}
		m.gen++
		next := m.gen
		m.status = StatusConnecting
		m.mu.Unlock()

		m.run(next)
	}()
}

// isNormalClose reports whether err represents an intentional closure that
// must not trigger reconnection.
func isNormalClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
	)
}
