// Link manager: connection state machine, reconnect policy, command I/O
package link

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"treadlink/internal/telemetry"
)

const (
	reconnectDelay     = 3 * time.Second
	pollInterval       = 500 * time.Millisecond
	defaultDialTimeout = 10 * time.Second
)

// Manager owns the single logical link to the telemetry endpoint. All state
// transitions are serialized under one mutex; a generation counter identifies
// the active connection instance so late events from superseded instances
// (dial success after a newer Connect, duplicate close notifications) are
// ignored. Identity is by instance, not address, because addresses repeat
// across reconnects.
type Manager struct {
	mu  sync.Mutex
	wmu sync.Mutex // serializes writes on the transport

	log   *slog.Logger
	store *telemetry.Store
	dial  Dialer

	addr      string
	state     State
	conn      Conn
	gen       int
	reconnect *time.Timer
	pollStop  chan struct{}
	closed    bool

	reconnectAfter time.Duration
	pollEvery      time.Duration

	listeners []func(State)
}

// Option configures a Manager.
type Option func(*Manager)

// WithDialer substitutes the transport dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dial = d }
}

// WithReconnectDelay overrides the retry delay.
func WithReconnectDelay(d time.Duration) Option {
	return func(m *Manager) { m.reconnectAfter = d }
}

// WithPollInterval overrides the state-poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) { m.pollEvery = d }
}

// NewManager creates a manager in the disconnected state.
func NewManager(store *telemetry.Store, log *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		log:            log,
		store:          store,
		dial:           WebsocketDialer,
		state:          StateDisconnected,
		reconnectAfter: reconnectDelay,
		pollEvery:      pollInterval,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// OnStateChange registers a listener for state transitions. Listeners run
// with the manager lock held and must not call back into the manager.
func (m *Manager) OnStateChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connected reports whether the link is established.
func (m *Manager) Connected() bool {
	return m.State() == StateConnected
}

// Address returns the configured endpoint address.
func (m *Manager) Address() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addr
}

// Connect establishes a link to addr, superseding any active instance.
// Reconnecting to the address of an already connected link is a no-op.
// A malformed address fails into the error state without dialing.
func (m *Manager) Connect(addr string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.New("link manager is closed")
	}
	if m.state == StateConnected && m.addr == addr {
		m.log.Debug("already connected, ignoring connect request", "addr", addr)
		m.mu.Unlock()
		return nil
	}
	m.cancelReconnectLocked()
	m.closeConnLocked()

	u, err := url.Parse(addr)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		// The closed-out previous instance must not resurface: its read
		// loop's close event would otherwise overwrite the error state and
		// schedule a reconnect to the rejected address.
		m.gen++
		m.addr = addr
		m.setStateLocked(StateError)
		m.mu.Unlock()
		return fmt.Errorf("malformed link address %q", addr)
	}

	m.addr = addr
	m.gen++
	gen := m.gen
	m.setStateLocked(StateConnecting)
	m.mu.Unlock()

	go m.dialAndServe(gen, addr)
	return nil
}

func (m *Manager) dialAndServe(gen int, addr string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
	conn, err := m.dial(ctx, addr)
	cancel()

	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		m.log.Error("dial failed", "addr", addr, "err", err)
		m.setStateLocked(StateError)
		m.scheduleReconnectLocked()
		m.mu.Unlock()
		return
	}
	m.conn = conn
	stop := make(chan struct{})
	m.pollStop = stop
	m.setStateLocked(StateConnected)
	m.mu.Unlock()

	// Bootstrap: take control, then ask for the current state.
	m.Send(CmdRequestControl, nil)
	m.Send(CmdGetState, nil)

	go m.poll(stop)
	m.readLoop(gen, conn)
}

// Send serializes a command and transmits it while connected; otherwise the
// command is dropped with a log entry. Commands are never queued or retried.
func (m *Manager) Send(cmdType string, value *float64) error {
	m.mu.Lock()
	if m.state != StateConnected || m.conn == nil {
		m.mu.Unlock()
		m.log.Info("send suppressed, link not connected", "type", cmdType)
		return nil
	}
	conn := m.conn
	m.mu.Unlock()

	m.wmu.Lock()
	err := conn.WriteJSON(Command{Type: cmdType, Value: value})
	m.wmu.Unlock()
	if err != nil {
		// The read loop observes the broken transport and handles recovery.
		m.log.Error("send failed", "type", cmdType, "err", err)
		return err
	}
	if value != nil {
		m.log.Debug("sent command", "type", cmdType, "value", *value)
	} else {
		m.log.Debug("sent command", "type", cmdType)
	}
	return nil
}

// readLoop consumes inbound frames until the transport fails. Unparseable
// frames are dropped; normalized updates overwrite the shared state.
func (m *Manager) readLoop(gen int, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.handleClosed(gen, err)
			return
		}
		var payload map[string]any
		if jerr := json.Unmarshal(data, &payload); jerr != nil {
			m.log.Warn("dropping unparseable frame", "err", jerr)
			continue
		}
		u := telemetry.Normalize(payload)
		if u.Empty() {
			continue
		}
		m.store.Apply(u, time.Now().UTC())
	}
}

// poll requests the machine state on a fixed cadence while connected; some
// telemetry firmwares are pull-only.
func (m *Manager) poll(stop <-chan struct{}) {
	t := time.NewTicker(m.pollEvery)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			m.Send(CmdGetState, nil)
		}
	}
}

// handleClosed funnels both graceful closure and transport errors back to
// the disconnected state and schedules exactly one reconnect. The generation
// bump makes duplicate notifications for the same instance no-ops.
func (m *Manager) handleClosed(gen int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.gen {
		return
	}
	m.gen++
	m.log.Info("link closed", "code", closeCode(err), "err", err)
	m.closeConnLocked()
	m.store.SetLinked(false)
	m.setStateLocked(StateDisconnected)
	m.scheduleReconnectLocked()
}

func (m *Manager) scheduleReconnectLocked() {
	if m.closed || m.reconnect != nil {
		return
	}
	addr := m.addr
	m.log.Info("scheduling reconnect", "addr", addr, "delay", m.reconnectAfter)
	m.reconnect = time.AfterFunc(m.reconnectAfter, func() {
		m.mu.Lock()
		m.reconnect = nil
		closed := m.closed
		m.mu.Unlock()
		if closed {
			return
		}
		if err := m.Connect(addr); err != nil {
			m.log.Error("reconnect failed", "addr", addr, "err", err)
		}
	})
}

func (m *Manager) cancelReconnectLocked() {
	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}
}

func (m *Manager) closeConnLocked() {
	if m.pollStop != nil {
		close(m.pollStop)
		m.pollStop = nil
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
}

func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	m.state = s
	m.log.Info("link state", "state", s)
	for _, fn := range m.listeners {
		fn(s)
	}
}

// Disconnect closes the active transport and cancels any pending reconnect
// without tearing the manager down; a later Connect starts a fresh lifecycle.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.gen++
	m.cancelReconnectLocked()
	m.closeConnLocked()
	m.store.SetLinked(false)
	m.setStateLocked(StateDisconnected)
}

// Close tears down the manager: cancels any pending reconnect, closes the
// active transport, and refuses further connects. Sends racing with Close
// observe the closed state and drop.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.gen++
	m.cancelReconnectLocked()
	m.closeConnLocked()
	m.store.SetLinked(false)
	m.setStateLocked(StateDisconnected)
	return nil
}

func closeCode(err error) int {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return -1
}
