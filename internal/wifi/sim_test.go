package wifi

import (
	"context"
	"errors"
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		if !ok {
			t.Fatal("event channel closed")
		}
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event within 2s")
	}
	return Event{}
}

func TestSimRadio_Lifecycle(t *testing.T) {
	r := NewSimRadio()
	defer r.Close()
	ctx := context.Background()

	if err := r.Start(ctx); !errors.Is(err, ErrNotInitialised) {
		t.Errorf("Start() before Init error = %v, want ErrNotInitialised", err)
	}
	if err := r.Init(ctx, StationConfig{}); !errors.Is(err, ErrMissingSSID) {
		t.Errorf("Init() error = %v, want ErrMissingSSID", err)
	}
	if err := r.Init(ctx, StationConfig{Interface: "wlan0", SSID: "bench"}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if r.Config().SSID != "bench" {
		t.Errorf("Config().SSID = %q", r.Config().SSID)
	}

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if e := recv(t, r.Events()); e.Kind != EventStationStarted {
		t.Errorf("first event = %s, want station_started", e.Kind)
	}
}

func TestSimRadio_AutoAssociate(t *testing.T) {
	r := NewSimRadio()
	defer r.Close()

	if err := r.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	r.AutoAssociate = true
	if err := r.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if e := recv(t, r.Events()); e.Kind != EventConnected {
		t.Errorf("event = %s, want connected", e.Kind)
	}
	if r.Connects() != 2 {
		t.Errorf("Connects() = %d, want 2", r.Connects())
	}
}

func TestSimRadio_InjectOrder(t *testing.T) {
	r := NewSimRadio()
	defer r.Close()

	kinds := []EventKind{EventConnected, EventDisconnected, EventConnected, EventDisconnected}
	for _, k := range kinds {
		r.Inject(Event{Kind: k})
	}
	for i, want := range kinds {
		if got := recv(t, r.Events()).Kind; got != want {
			t.Errorf("event %d = %s, want %s", i, got, want)
		}
	}
}

func TestSimRadio_FailConnect(t *testing.T) {
	r := NewSimRadio()
	defer r.Close()

	boom := errors.New("no carrier")
	r.FailConnect(boom)
	if err := r.Connect(); !errors.Is(err, boom) {
		t.Errorf("Connect() error = %v, want %v", err, boom)
	}
	r.FailConnect(nil)
	if err := r.Connect(); err != nil {
		t.Errorf("Connect() after clear error = %v", err)
	}
}

func TestSimRadio_Close(t *testing.T) {
	r := NewSimRadio()
	r.Inject(Event{Kind: EventConnected})

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := r.Connect(); !errors.Is(err, ErrRadioClosed) {
		t.Errorf("Connect() after Close error = %v, want ErrRadioClosed", err)
	}

	// Events is closed; any undelivered event was dropped.
	for range r.Events() {
	}
}
