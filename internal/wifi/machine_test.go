package wifi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeRadio records Connect calls and exposes a caller-driven event channel.
type fakeRadio struct {
	mu         sync.Mutex
	connects   int
	connectErr error
	events     chan Event
}

func newFakeRadio() *fakeRadio {
	return &fakeRadio{events: make(chan Event, 16)}
}

func (r *fakeRadio) Init(context.Context, StationConfig) error { return nil }
func (r *fakeRadio) Events() <-chan Event                      { return r.events }
func (r *fakeRadio) Start(context.Context) error               { return nil }
func (r *fakeRadio) Close() error                              { return nil }

func (r *fakeRadio) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connects++
	return r.connectErr
}

func (r *fakeRadio) Connects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connects
}

func ev(kind EventKind) Event {
	return Event{Kind: kind}
}

func TestMachine_InitialPhase(t *testing.T) {
	m := NewMachine(newFakeRadio(), nil)

	if m.Phase() != PhaseIdle {
		t.Errorf("Phase() = %s, want idle", m.Phase())
	}
	if m.Attached() {
		t.Error("Attached() = true before any event")
	}
}

func TestMachine_Transitions(t *testing.T) {
	tests := []struct {
		name         string
		events       []EventKind
		wantPhase    Phase
		wantConnects int
		wantAttach   int
	}{
		{
			name:         "station started connects",
			events:       []EventKind{EventStationStarted},
			wantPhase:    PhaseConnecting,
			wantConnects: 1,
		},
		{
			name:         "first connection attaches",
			events:       []EventKind{EventStationStarted, EventConnected},
			wantPhase:    PhaseConnected,
			wantConnects: 1,
			wantAttach:   1,
		},
		{
			name:         "repeated connected is idempotent",
			events:       []EventKind{EventStationStarted, EventConnected, EventConnected, EventConnected},
			wantPhase:    PhaseConnected,
			wantConnects: 1,
			wantAttach:   1,
		},
		{
			name:         "disconnect reconnects once",
			events:       []EventKind{EventStationStarted, EventConnected, EventDisconnected},
			wantPhase:    PhaseConnecting,
			wantConnects: 2,
			wantAttach:   1,
		},
		{
			name:         "reattach does not reinvoke hook",
			events:       []EventKind{EventStationStarted, EventConnected, EventDisconnected, EventConnected},
			wantPhase:    PhaseConnected,
			wantConnects: 2,
			wantAttach:   1,
		},
		{
			name:         "failed association while connecting",
			events:       []EventKind{EventStationStarted, EventDisconnected, EventDisconnected},
			wantPhase:    PhaseConnecting,
			wantConnects: 3,
		},
		{
			name:         "three disconnects three connects",
			events:       []EventKind{EventStationStarted, EventConnected, EventDisconnected, EventDisconnected, EventDisconnected},
			wantPhase:    PhaseConnecting,
			wantConnects: 4,
			wantAttach:   1,
		},
		{
			name:         "station restart from connected",
			events:       []EventKind{EventStationStarted, EventConnected, EventStationStarted},
			wantPhase:    PhaseConnecting,
			wantConnects: 2,
			wantAttach:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			radio := newFakeRadio()
			attaches := 0
			m := NewMachine(radio, func(context.Context) error {
				attaches++
				return nil
			})

			for _, k := range tt.events {
				m.Handle(context.Background(), ev(k))
			}

			if m.Phase() != tt.wantPhase {
				t.Errorf("Phase() = %s, want %s", m.Phase(), tt.wantPhase)
			}
			if radio.Connects() != tt.wantConnects {
				t.Errorf("Connect calls = %d, want %d", radio.Connects(), tt.wantConnects)
			}
			if attaches != tt.wantAttach {
				t.Errorf("attach calls = %d, want %d", attaches, tt.wantAttach)
			}
		})
	}
}

func TestMachine_AttachRetriedAfterFailure(t *testing.T) {
	radio := newFakeRadio()
	calls := 0
	m := NewMachine(radio, func(context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("listener busy")
		}
		return nil
	})
	ctx := context.Background()

	m.Handle(ctx, ev(EventStationStarted))
	m.Handle(ctx, ev(EventConnected))
	if m.Attached() {
		t.Fatal("Attached() = true after hook error")
	}

	// Still connected: a repeated event retries the hook.
	m.Handle(ctx, ev(EventConnected))
	if !m.Attached() {
		t.Fatal("Attached() = false after successful retry")
	}

	m.Handle(ctx, ev(EventDisconnected))
	m.Handle(ctx, ev(EventConnected))
	if calls != 2 {
		t.Errorf("attach calls = %d, want 2", calls)
	}

	s := m.Stats()
	if s.AttachAttempts != 2 || s.AttachFailures != 1 {
		t.Errorf("attach stats = %d attempts / %d failures, want 2/1", s.AttachAttempts, s.AttachFailures)
	}
}

func TestMachine_ConnectErrorNotRetried(t *testing.T) {
	radio := newFakeRadio()
	radio.connectErr = errors.New("radio busy")
	m := NewMachine(radio, nil)

	var results []error
	m.SetHooks(Hooks{OnConnect: func(err error) { results = append(results, err) }})

	m.Handle(context.Background(), ev(EventStationStarted))

	if radio.Connects() != 1 {
		t.Errorf("Connect calls = %d, want 1", radio.Connects())
	}
	if m.Phase() != PhaseConnecting {
		t.Errorf("Phase() = %s, want connecting", m.Phase())
	}
	if len(results) != 1 || results[0] == nil {
		t.Errorf("OnConnect results = %v, want one error", results)
	}

	s := m.Stats()
	if s.ConnectAttempts != 1 || s.ConnectFailures != 1 {
		t.Errorf("connect stats = %+v", s)
	}
}

func TestMachine_NilAttachHook(t *testing.T) {
	m := NewMachine(newFakeRadio(), nil)
	m.Handle(context.Background(), ev(EventStationStarted))
	m.Handle(context.Background(), ev(EventConnected))

	if !m.Attached() {
		t.Error("Attached() = false with nil hook")
	}
}

func TestMachine_Hooks(t *testing.T) {
	m := NewMachine(newFakeRadio(), nil)

	var phases []Phase
	reconnects := 0
	attaches := 0
	m.SetHooks(Hooks{
		OnPhase:     func(_, to Phase) { phases = append(phases, to) },
		OnReconnect: func() { reconnects++ },
		OnAttach:    func(error) { attaches++ },
	})

	ctx := context.Background()
	for _, k := range []EventKind{EventStationStarted, EventConnected, EventDisconnected} {
		m.Handle(ctx, ev(k))
	}

	want := []Phase{PhaseConnecting, PhaseConnected, PhaseDisconnected, PhaseConnecting}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("phases[%d] = %s, want %s", i, phases[i], want[i])
		}
	}
	if reconnects != 1 {
		t.Errorf("reconnects = %d, want 1", reconnects)
	}
	if attaches != 1 {
		t.Errorf("attaches = %d, want 1", attaches)
	}
}

func TestMachine_UnknownEventIgnored(t *testing.T) {
	radio := newFakeRadio()
	m := NewMachine(radio, nil)

	m.Handle(context.Background(), Event{Kind: EventKind(99)})

	if m.Phase() != PhaseIdle {
		t.Errorf("Phase() = %s, want idle", m.Phase())
	}
	if radio.Connects() != 0 {
		t.Errorf("Connect calls = %d, want 0", radio.Connects())
	}
	if m.Stats().Events != 1 {
		t.Errorf("Stats().Events = %d, want 1", m.Stats().Events)
	}
}

func TestMachine_RunAppliesInOrder(t *testing.T) {
	radio := newFakeRadio()
	attached := make(chan struct{})
	m := NewMachine(radio, func(context.Context) error {
		close(attached)
		return nil
	})

	radio.events <- ev(EventStationStarted)
	radio.events <- ev(EventConnected)
	radio.events <- ev(EventDisconnected)
	close(radio.events)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil on closed channel", err)
	}

	select {
	case <-attached:
	default:
		t.Fatal("attach hook not invoked")
	}

	if m.Phase() != PhaseConnecting {
		t.Errorf("Phase() = %s, want connecting", m.Phase())
	}
	if radio.Connects() != 2 {
		t.Errorf("Connect calls = %d, want 2", radio.Connects())
	}
	if m.Stats().Events != 3 {
		t.Errorf("Stats().Events = %d, want 3", m.Stats().Events)
	}
}

func TestMachine_RunStopsOnCancel(t *testing.T) {
	m := NewMachine(newFakeRadio(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestMachine_WithSimRadio(t *testing.T) {
	radio := NewSimRadio()
	radio.AutoAssociate = true
	defer radio.Close()

	attached := make(chan struct{}, 1)
	m := NewMachine(radio, func(context.Context) error {
		attached <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := radio.Init(ctx, StationConfig{SSID: "bench"}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	go func() { _ = m.Run(ctx) }()
	if err := radio.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case <-attached:
	case <-time.After(2 * time.Second):
		t.Fatal("not attached within 2s")
	}

	radio.Inject(NewEvent(EventDisconnected, "beacon loss"))

	deadline := time.Now().Add(2 * time.Second)
	for radio.Connects() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("Connects() = %d, want 2", radio.Connects())
		}
		time.Sleep(5 * time.Millisecond)
	}

	// AutoAssociate brings the station back without a second attach.
	for m.Phase() != PhaseConnected {
		if time.Now().After(deadline) {
			t.Fatalf("Phase() = %s, want connected", m.Phase())
		}
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case <-attached:
		t.Error("attach hook invoked twice")
	default:
	}
}

func TestPhase_String(t *testing.T) {
	want := map[Phase]string{
		PhaseIdle:         "idle",
		PhaseConnecting:   "connecting",
		PhaseConnected:    "connected",
		PhaseDisconnected: "disconnected",
	}
	for p, s := range want {
		if p.String() != s {
			t.Errorf("%d.String() = %q, want %q", int(p), p.String(), s)
		}
	}
	if EventConnected.String() != "connected" {
		t.Errorf("EventConnected.String() = %q", EventConnected.String())
	}
}
