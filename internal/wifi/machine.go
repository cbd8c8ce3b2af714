package wifi

import (
	"context"
	"sync"
	"time"
)

// AttachFunc runs once the station first reaches PhaseConnected.
//
// A non-nil error leaves the machine unattached so the next connected event
// invokes the hook again.
type AttachFunc func(ctx context.Context) error

// Hooks are optional observation callbacks, typically wired to metrics.
// Every field may be nil. Hooks run on the machine goroutine.
type Hooks struct {
	// OnPhase is called after every phase change with the new phase.
	OnPhase func(from, to Phase)

	// OnConnect is called after each connect request with its result.
	OnConnect func(err error)

	// OnReconnect is called when a disconnect triggers a new connect.
	OnReconnect func()

	// OnAttach is called after each attach hook invocation with its result.
	OnAttach func(err error)
}

// Machine tracks station attachment and reacts to radio events.
//
// Events are applied one at a time in arrival order. The attach hook is
// invoked on the first transition into PhaseConnected and never again once it
// has succeeded. A disconnect always triggers exactly one immediate connect
// request; anything already started on attach keeps running.
type Machine struct {
	radio    Radio
	onAttach AttachFunc
	logger   Logger
	hooks    Hooks
	now      func() time.Time

	mu    sync.RWMutex
	phase Phase
	stats Stats
}

// NewMachine creates a machine in PhaseIdle.
//
// Parameters:
//   - radio: the station radio; Connect is called on it from event handling
//   - onAttached: invoked on first successful attachment (may be nil)
func NewMachine(radio Radio, onAttached AttachFunc) *Machine {
	return &Machine{
		radio:    radio,
		onAttach: onAttached,
		logger:   noopLogger{},
		now:      time.Now,
		phase:    PhaseIdle,
	}
}

// SetLogger sets the logger for the machine.
func (m *Machine) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	m.logger = logger
}

// SetHooks installs observation callbacks. Call before Run.
func (m *Machine) SetHooks(h Hooks) {
	m.hooks = h
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Attached reports whether the attach hook has completed successfully.
func (m *Machine) Attached() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.Attached
}

// Stats returns a snapshot of the machine counters.
func (m *Machine) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.stats
	s.Phase = m.phase
	s.PhaseName = m.phase.String()
	return s
}

// Run applies radio events until ctx is cancelled or the event channel
// closes.
//
// Returns:
//   - error: ctx.Err() on cancellation, nil when the radio closed its channel
func (m *Machine) Run(ctx context.Context) error {
	events := m.radio.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				m.logger.Info("radio event channel closed")
				return nil
			}
			m.Handle(ctx, ev)
		}
	}
}

// Handle applies one event.
//
// ctx is passed through to the attach hook; anything the hook starts should
// live as long as ctx.
func (m *Machine) Handle(ctx context.Context, ev Event) {
	m.mu.Lock()
	m.stats.Events++
	m.stats.LastEvent = ev.Kind.String()
	m.stats.LastReason = ev.Reason
	m.mu.Unlock()

	m.logger.Debug("radio event", "event", ev.Kind.String(), "reason", ev.Reason, "phase", m.Phase().String())

	switch ev.Kind {
	case EventStationStarted:
		m.transition(PhaseConnecting)
		m.connect()

	case EventConnected:
		m.transition(PhaseConnected)
		if !m.Attached() {
			m.attach(ctx)
		}

	case EventDisconnected:
		m.transition(PhaseDisconnected)
		m.logger.Warn("station disconnected, reconnecting", "reason", ev.Reason)

		m.mu.Lock()
		m.stats.Reconnects++
		m.mu.Unlock()
		if m.hooks.OnReconnect != nil {
			m.hooks.OnReconnect()
		}

		m.connect()
		m.transition(PhaseConnecting)

	default:
		m.logger.Warn("ignoring unknown radio event", "event", ev.Kind.String())
	}
}

func (m *Machine) transition(to Phase) {
	m.mu.Lock()
	from := m.phase
	if from == to {
		m.mu.Unlock()
		return
	}
	m.phase = to
	m.stats.LastChange = m.now()
	m.mu.Unlock()

	m.logger.Info("station phase changed", "from", from.String(), "to", to.String())
	if m.hooks.OnPhase != nil {
		m.hooks.OnPhase(from, to)
	}
}

// connect issues a single connect request. Failures are recorded and logged;
// recovery depends on the radio reporting a later event.
func (m *Machine) connect() {
	err := m.radio.Connect()

	m.mu.Lock()
	m.stats.ConnectAttempts++
	if err != nil {
		m.stats.ConnectFailures++
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("connect request failed", "error", err)
	}
	if m.hooks.OnConnect != nil {
		m.hooks.OnConnect(err)
	}
}

func (m *Machine) attach(ctx context.Context) {
	m.mu.Lock()
	m.stats.AttachAttempts++
	m.mu.Unlock()

	var err error
	if m.onAttach != nil {
		err = m.onAttach(ctx)
	}

	m.mu.Lock()
	if err != nil {
		m.stats.AttachFailures++
	} else {
		m.stats.Attached = true
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("attach hook failed, will retry on next connection", "error", err)
	} else {
		m.logger.Info("station attached")
	}
	if m.hooks.OnAttach != nil {
		m.hooks.OnAttach(err)
	}
}
