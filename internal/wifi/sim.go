package wifi

import (
	"context"
	"sync"
)

// SimRadio is an in-process radio for tests and bench hosts.
//
// Emitted events are queued and delivered in order by a pump goroutine, so
// Connect may emit from the machine goroutine without blocking it.
type SimRadio struct {
	// AutoAssociate makes every successful Connect emit EventConnected.
	AutoAssociate bool

	events chan Event

	mu         sync.Mutex
	cond       *sync.Cond
	queue      []Event
	closed     bool
	cfg        StationConfig
	initDone   bool
	connects   int
	connectErr error
	initErr    error

	pumpDone chan struct{}
}

// NewSimRadio creates a simulated radio.
func NewSimRadio() *SimRadio {
	r := &SimRadio{
		events:   make(chan Event),
		pumpDone: make(chan struct{}),
	}
	r.cond = sync.NewCond(&r.mu)
	go r.pump()
	return r
}

func (r *SimRadio) pump() {
	defer close(r.pumpDone)
	defer close(r.events)

	for {
		r.mu.Lock()
		for len(r.queue) == 0 && !r.closed {
			r.cond.Wait()
		}
		if r.closed {
			r.mu.Unlock()
			return
		}
		ev := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()

		r.events <- ev
	}
}

// FailInit makes the next Init return err.
func (r *SimRadio) FailInit(err error) {
	r.mu.Lock()
	r.initErr = err
	r.mu.Unlock()
}

// FailConnect makes Connect return err until cleared with nil.
func (r *SimRadio) FailConnect(err error) {
	r.mu.Lock()
	r.connectErr = err
	r.mu.Unlock()
}

// Init implements Radio.
func (r *SimRadio) Init(_ context.Context, cfg StationConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRadioClosed
	}
	if r.initErr != nil {
		return r.initErr
	}
	r.cfg = cfg
	r.initDone = true
	return nil
}

// Events implements Radio.
func (r *SimRadio) Events() <-chan Event {
	return r.events
}

// Start implements Radio. It emits EventStationStarted.
func (r *SimRadio) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRadioClosed
	}
	if !r.initDone {
		return ErrNotInitialised
	}
	r.enqueueLocked(NewEvent(EventStationStarted, "sim"))
	return nil
}

// Connect implements Radio.
func (r *SimRadio) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRadioClosed
	}
	r.connects++
	if r.connectErr != nil {
		return r.connectErr
	}
	if r.AutoAssociate {
		r.enqueueLocked(NewEvent(EventConnected, "sim associate"))
	}
	return nil
}

// Inject queues an arbitrary event.
func (r *SimRadio) Inject(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.enqueueLocked(ev)
}

func (r *SimRadio) enqueueLocked(ev Event) {
	r.queue = append(r.queue, ev)
	r.cond.Signal()
}

// Connects returns how many times Connect was called.
func (r *SimRadio) Connects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connects
}

// Config returns the station config passed to Init.
func (r *SimRadio) Config() StationConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// Close implements Radio. Queued events not yet delivered are dropped.
func (r *SimRadio) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.cond.Broadcast()
	r.mu.Unlock()

	// Unblock a pending send if nobody is reading.
	go func() {
		for range r.events {
		}
	}()
	<-r.pumpDone
	return nil
}
