package connection

import (
	"encoding/json"
	"sync"
	"time"

	"market-sync/src/helpers"
	"market-sync/src/interfaces"
	"market-sync/src/logger"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// Connection States
// -----------------------------------------------------------------------------

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// -----------------------------------------------------------------------------
// Manager owns one transport connection, its state machine, the outbound
// queue, the subscription registry and the heartbeat monitor. All mutation
// goes through one mutex; event handlers always run with the lock released so
// they may call back into the manager (including Disconnect).
//
// Reconnect backoff is a fixed interval, not exponential; the attempt cap
// bounds how long a dead upstream gets hammered.
// -----------------------------------------------------------------------------

type Manager struct {
	cfg    models.MConnectionConfig
	url    string
	logger *logger.Logger
	dialer interfaces.IDialer
	clock  interfaces.IClock
	codec  *Codec
	bus    *EventBus

	mu        sync.Mutex
	state     State
	transport interfaces.ITransport
	queue     *OutboundQueue
	registry  *SubscriptionRegistry
	heartbeat *HeartbeatMonitor
	metrics   models.MConnectionMetrics
	lastErr   error
	attempts  int // consecutive failed dials in the current cycle
	gen       int // bumped on Disconnect so stale readers and retries bail out
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewManager(cfg models.MConnectionConfig, url string, dialer interfaces.IDialer, clock interfaces.IClock, log *logger.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		url:      url,
		logger:   log,
		dialer:   dialer,
		clock:    clock,
		codec:    NewCodec(cfg.CompressionThresholdBytes),
		bus:      NewEventBus(),
		queue:    NewOutboundQueue(cfg.MaxQueueSize),
		registry: NewSubscriptionRegistry(),
	}
}

// -----------------------------------------------------------------------------
// Event Listeners
// -----------------------------------------------------------------------------

// On registers a handler for an event ("connected", "error", or any message
// type tag). Registration under the same id is idempotent.
func (m *Manager) On(event, id string, fn Handler) {
	m.bus.On(event, id, fn)
}

// Off removes a previously registered handler.
func (m *Manager) Off(event, id string) {
	m.bus.Off(event, id)
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Connect drives DISCONNECTED (or ERROR/RECONNECTING) into CONNECTING and
// dials. No-op while already CONNECTING or CONNECTED, so a second concurrent
// call never produces a second transport.
func (m *Manager) Connect() error {
	m.mu.Lock()
	if m.state == StateConnecting || m.state == StateConnected {
		m.mu.Unlock()
		return nil
	}
	m.state = StateConnecting
	m.attempts = 0
	m.lastErr = nil
	// A new generation invalidates any retry timer left from a previous cycle
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	return m.dial(gen)
}

// -----------------------------------------------------------------------------

// dial performs one connection attempt and either finishes the open sequence
// or schedules the next retry.
func (m *Manager) dial(gen int) error {
	t, err := m.dialer.Dial(m.url)

	m.mu.Lock()
	if gen != m.gen || m.state != StateConnecting {
		// Superseded by Disconnect or another cycle
		m.mu.Unlock()
		if err == nil {
			t.Close()
		}
		return nil
	}

	if err != nil {
		m.attempts++
		m.metrics.ErrorCount++
		m.lastErr = err

		if m.attempts >= m.cfg.ReconnectAttempts {
			// Terminal: no further automatic retries, an explicit Connect
			// is required to resume.
			m.state = StateError
			m.mu.Unlock()
			m.logger.Error("Connection failed after %d attempts: %v", m.cfg.ReconnectAttempts, err)
			m.emitError("connect_failed", err)
			return helpers.NewTransportError("connect failed, attempts exhausted", err)
		}

		m.state = StateReconnecting
		m.metrics.ReconnectCount++
		attempt := m.attempts
		// Register the timer before the state change becomes visible
		retryCh := m.clock.After(time.Duration(m.cfg.ReconnectIntervalMs) * time.Millisecond)
		m.mu.Unlock()

		m.logger.Warning("Connect attempt %d/%d failed: %v. Retrying in %dms",
			attempt, m.cfg.ReconnectAttempts, err, m.cfg.ReconnectIntervalMs)
		m.emitError("connect_failed", err)
		go m.retryLater(gen, retryCh)
		return helpers.NewTransportError("connect failed", err)
	}

	// Open sequence: state first, then registry replay in registration
	// order, then queue flush in FIFO order. The lock is held across the
	// writes so no new Send can interleave.
	m.transport = t
	m.state = StateConnected
	m.attempts = 0

	hb := NewHeartbeatMonitor(m.clock,
		time.Duration(m.cfg.HeartbeatIntervalMs)*time.Millisecond, m.Send, m.logger)
	m.heartbeat = hb

	for _, sub := range m.registry.All() {
		if werr := m.writeLocked(m.subscribeMessage(sub)); werr != nil {
			m.logger.Warning("Subscribe replay failed for %s: %v", sub.Channel, werr)
		}
	}
	var flushErr error
	drained := m.queue.Drain()
	for i, msg := range drained {
		if werr := m.writeLocked(msg); werr != nil {
			flushErr = werr
			// Keep the unsent tail, original order, for the next flush.
			// Cannot overflow, the queue was just drained.
			for _, rest := range drained[i:] {
				m.queue.Enqueue(rest)
			}
			break
		}
	}
	m.mu.Unlock()

	hb.Start()
	go m.readLoop(t, gen)

	if flushErr != nil {
		m.logger.Warning("Queued message flush failed: %v", flushErr)
		m.emitError("flush_failed", flushErr)
	}

	m.logger.Info("Connected to %s", m.url)
	m.bus.Emit(EventConnected, models.MMessage{
		Type:      EventConnected,
		Timestamp: m.clock.NowMs(),
	})
	return nil
}

// -----------------------------------------------------------------------------

// retryLater waits out the fixed reconnect interval, then dials again unless
// the cycle was superseded in the meantime.
func (m *Manager) retryLater(gen int, wait <-chan time.Time) {
	<-wait

	m.mu.Lock()
	if gen != m.gen || m.state != StateReconnecting {
		m.mu.Unlock()
		return
	}
	m.state = StateConnecting
	m.mu.Unlock()

	m.dial(gen)
}

// -----------------------------------------------------------------------------

// Disconnect tears everything down synchronously: heartbeat, registry, queue,
// transport, metrics. Idempotent and safe to call from event handlers.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.gen++
	if m.heartbeat != nil {
		m.heartbeat.Stop()
		m.heartbeat = nil
	}
	m.registry.Clear()
	m.queue.Clear()
	if m.transport != nil {
		m.transport.Close()
		m.transport = nil
	}
	m.state = StateDisconnected
	m.attempts = 0
	m.metrics = models.MConnectionMetrics{}
	m.lastErr = nil
	m.mu.Unlock()

	m.logger.Info("Disconnected")
}

// -----------------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------------

// Subscribe records channels in the registry (so they survive a pending
// reconnect) and sends the subscribe frames if currently connected. Fails
// only when disconnected and the options forbid deferred retry.
func (m *Manager) Subscribe(channels []string, opts models.MSubscribeOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateConnected && !opts.RetryOnError {
		return helpers.NewTransportError("not connected and retry_on_error disabled", nil)
	}

	for _, ch := range channels {
		sub := models.MSubscription{Channel: ch, Options: opts}
		m.registry.Add(sub)

		if m.state == StateConnected {
			if err := m.writeLocked(m.subscribeMessage(sub)); err != nil {
				m.logger.Warning("Subscribe send failed for %s: %v", ch, err)
			}
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// Unsubscribe removes a channel from the registry and notifies the remote if
// connected.
func (m *Manager) Unsubscribe(channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registry.Has(channel) {
		return
	}
	m.registry.Remove(channel)

	if m.state == StateConnected {
		payload, _ := json.Marshal(models.MSubscribePayload{Channel: channel})
		msg := models.MMessage{
			Type:      models.TypeUnsubscribe,
			Payload:   payload,
			Timestamp: m.clock.NowMs(),
		}
		if err := m.writeLocked(msg); err != nil {
			m.logger.Warning("Unsubscribe send failed for %s: %v", channel, err)
		}
	}
}

// -----------------------------------------------------------------------------

func (m *Manager) subscribeMessage(sub models.MSubscription) models.MMessage {
	payload, _ := json.Marshal(models.MSubscribePayload{
		Channel: sub.Channel,
		Options: sub.Options,
	})
	return models.MMessage{
		Type:      models.TypeSubscribe,
		Payload:   payload,
		Timestamp: m.clock.NowMs(),
	}
}

// -----------------------------------------------------------------------------
// Sending
// -----------------------------------------------------------------------------

// Send transmits immediately when connected (returns true), otherwise
// enqueues for the post-reconnect flush (returns false). Transport failures
// never surface here; they go out on the error event.
func (m *Manager) Send(msg models.MMessage) bool {
	m.mu.Lock()

	if msg.Timestamp == 0 {
		msg.Timestamp = m.clock.NowMs()
	}

	if m.state == StateConnected && m.transport != nil {
		if err := m.writeLocked(msg); err == nil {
			m.mu.Unlock()
			return true
		}
		// Write failed; the read loop will notice the dead transport and
		// drive the reconnect. Fall through to queueing.
	}

	if err := m.queue.Enqueue(msg); err != nil {
		m.metrics.Overflows++
		m.mu.Unlock()
		m.logger.Warning("Outbound queue full (%d), message dropped", m.cfg.MaxQueueSize)
		m.emitError("queue_overflow", err)
		return false
	}

	m.mu.Unlock()
	return false
}

// -----------------------------------------------------------------------------

// writeLocked encodes and transmits one frame. Caller holds m.mu.
func (m *Manager) writeLocked(msg models.MMessage) error {
	data, err := m.codec.Encode(msg)
	if err != nil {
		return err
	}
	if m.transport == nil {
		return helpers.NewTransportError("no transport", nil)
	}
	if err := m.transport.WriteMessage(data); err != nil {
		m.metrics.ErrorCount++
		m.lastErr = err
		return err
	}
	m.metrics.MessagesSent++
	return nil
}

// -----------------------------------------------------------------------------
// Receiving
// -----------------------------------------------------------------------------

func (m *Manager) readLoop(t interfaces.ITransport, gen int) {
	for {
		data, err := t.ReadMessage()
		if err != nil {
			m.handleTransportFailure(gen, err)
			return
		}

		msg, derr := m.codec.Decode(data)
		if derr != nil {
			m.mu.Lock()
			m.metrics.ErrorCount++
			m.lastErr = derr
			m.mu.Unlock()
			m.logger.Warning("Dropping malformed frame: %v", derr)
			m.emitError("protocol_error", derr)
			continue
		}

		m.mu.Lock()
		m.metrics.MessagesReceived++
		m.mu.Unlock()

		if msg.Type == models.TypePong {
			m.handlePong(msg)
		}

		// Dispatch by type tag
		m.bus.Emit(msg.Type, msg)
	}
}

// -----------------------------------------------------------------------------

func (m *Manager) handlePong(msg models.MMessage) {
	var pong models.MPongPayload
	if err := json.Unmarshal(msg.Payload, &pong); err != nil {
		m.logger.Debug("Unreadable pong payload: %v", err)
		return
	}

	m.mu.Lock()
	if m.heartbeat != nil {
		m.metrics.LatencyMs = m.heartbeat.Latency(pong)
	}
	m.mu.Unlock()
}

// -----------------------------------------------------------------------------

// handleTransportFailure moves CONNECTED into RECONNECTING and kicks off the
// fixed-interval retry cycle.
func (m *Manager) handleTransportFailure(gen int, err error) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateConnected {
		// Disconnect already ran, or another cycle owns the machine
		m.mu.Unlock()
		return
	}

	if m.heartbeat != nil {
		m.heartbeat.Stop()
		m.heartbeat = nil
	}
	if m.transport != nil {
		m.transport.Close()
		m.transport = nil
	}

	m.metrics.ErrorCount++
	m.metrics.ReconnectCount++
	m.lastErr = err
	m.state = StateReconnecting
	retryCh := m.clock.After(time.Duration(m.cfg.ReconnectIntervalMs) * time.Millisecond)
	m.mu.Unlock()

	m.logger.Warning("Connection lost: %v. Reconnecting in %dms", err, m.cfg.ReconnectIntervalMs)
	m.emitError("connection_lost", err)
	go m.retryLater(gen, retryCh)
}

// -----------------------------------------------------------------------------

func (m *Manager) emitError(code string, err error) {
	payload, _ := json.Marshal(models.MErrorPayload{
		Code:    code,
		Message: err.Error(),
	})
	m.bus.Emit(EventError, models.MMessage{
		Type:      models.TypeError,
		Payload:   payload,
		Timestamp: m.clock.NowMs(),
	})
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Metrics returns a copy of the accumulated counters.
func (m *Manager) Metrics() models.MConnectionMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// LastError returns the most recent surfaced error, for polling consumers.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// QueueLen reports how many messages await the next flush.
func (m *Manager) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

// Subscriptions returns the registered channels in registration order.
func (m *Manager) Subscriptions() []models.MSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.All()
}
