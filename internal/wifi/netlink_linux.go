//go:build linux

package wifi

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/nerrad567/relay-core/internal/process"
)

// ctrlTimeout bounds a single wpa_cli invocation.
const ctrlTimeout = 5 * time.Second

// LinkRadio is a station radio backed by wpa_supplicant and rtnetlink.
//
// Association is performed by a supervised wpa_supplicant. Link operational
// state changes observed over netlink are translated into events: entering
// IF_OPER_UP is Connected, leaving it is Disconnected.
type LinkRadio struct {
	iface      string
	supplicant SupplicantConfig
	restart    time.Duration
	logger     Logger

	events chan Event

	mu      sync.Mutex
	inited  bool
	started bool
	closed  bool
	manager *process.Manager
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewLinkRadio creates a radio for the named interface.
//
// Parameters:
//   - iface: wireless interface name, e.g. "wlan0"
//   - sc: wpa_supplicant paths
//   - restartDelay: fixed delay before restarting a crashed supplicant
func NewLinkRadio(iface string, sc SupplicantConfig, restartDelay time.Duration) *LinkRadio {
	return &LinkRadio{
		iface:      iface,
		supplicant: sc,
		restart:    restartDelay,
		logger:     noopLogger{},
		events:     make(chan Event, 16),
	}
}

// SetLogger sets the logger for the radio and its supplicant supervisor.
func (r *LinkRadio) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// Init resolves the interface, writes the supplicant configuration and
// starts the supervised supplicant.
func (r *LinkRadio) Init(ctx context.Context, cfg StationConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRadioClosed
	}
	if cfg.Interface != "" {
		r.iface = cfg.Interface
	}

	if _, err := netlink.LinkByName(r.iface); err != nil {
		var nf netlink.LinkNotFoundError
		if errors.As(err, &nf) {
			return fmt.Errorf("wireless interface %s not found: %w", r.iface, err)
		}
		return fmt.Errorf("looking up %s: %w", r.iface, err)
	}

	if err := WriteSupplicantConfig(r.supplicant.ConfigPath, cfg, r.supplicant.CtrlInterface); err != nil {
		return err
	}

	mgr := process.NewManager(process.Config{
		Name:         "wpa_supplicant",
		Binary:       r.supplicant.Binary,
		Args:         SupplicantArgs(r.iface, r.supplicant),
		RestartDelay: r.restart,
	})
	mgr.SetLogger(r.logger)
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("starting wpa_supplicant: %w", err)
	}

	r.manager = mgr
	r.inited = true
	r.logger.Info("network stack initialised", "interface", r.iface)
	return nil
}

// Events implements Radio.
func (r *LinkRadio) Events() <-chan Event {
	return r.events
}

// Start subscribes to link updates and emits EventStationStarted.
func (r *LinkRadio) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.closed:
		return ErrRadioClosed
	case !r.inited:
		return ErrNotInitialised
	case r.started:
		return nil
	}

	updates := make(chan netlink.LinkUpdate, 16)
	done := make(chan struct{})
	err := netlink.LinkSubscribeWithOptions(updates, done, netlink.LinkSubscribeOptions{
		ListExisting: true,
		ErrorCallback: func(err error) {
			r.logger.Warn("netlink subscription error", "interface", r.iface, "error", err)
		},
	})
	if err != nil {
		close(done)
		return fmt.Errorf("subscribing to link updates: %w", err)
	}

	r.done = done
	r.started = true
	r.events <- NewEvent(EventStationStarted, "supplicant running")

	r.wg.Add(1)
	go r.watch(ctx, updates, done)
	return nil
}

// watch turns oper-state transitions on our interface into events.
func (r *LinkRadio) watch(ctx context.Context, updates <-chan netlink.LinkUpdate, done <-chan struct{}) {
	defer r.wg.Done()

	up := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case u, ok := <-updates:
			if !ok {
				r.logger.Warn("netlink subscription closed", "interface", r.iface)
				return
			}
			attrs := u.Link.Attrs()
			if attrs == nil || attrs.Name != r.iface {
				continue
			}

			nowUp := attrs.OperState == netlink.OperUp
			if nowUp == up {
				continue
			}
			up = nowUp

			kind := EventDisconnected
			if nowUp {
				kind = EventConnected
			}
			ev := NewEvent(kind, attrs.OperState.String())
			select {
			case r.events <- ev:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// Connect ensures the link is administratively up and asks the supplicant
// to reassociate.
func (r *LinkRadio) Connect() error {
	r.mu.Lock()
	closed, inited := r.closed, r.inited
	r.mu.Unlock()

	if closed {
		return ErrRadioClosed
	}
	if !inited {
		return ErrNotInitialised
	}

	link, err := netlink.LinkByName(r.iface)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", r.iface, err)
	}
	if link.Attrs().Flags&unix.IFF_UP == 0 {
		if err := netlink.LinkSetUp(link); err != nil {
			return fmt.Errorf("bringing %s up: %w", r.iface, err)
		}
	}

	if r.supplicant.CtrlBinary == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ctrlTimeout)
	defer cancel()

	//nolint:gosec // binary comes from validated config
	out, err := exec.CommandContext(ctx, r.supplicant.CtrlBinary, ReconnectArgs(r.iface, r.supplicant)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("wpa_cli reconnect: %w: %s", err, string(out))
	}
	return nil
}

// Close stops the subscription and the supplicant, then closes Events.
func (r *LinkRadio) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	done := r.done
	mgr := r.manager
	r.mu.Unlock()

	if done != nil {
		close(done)
	}
	r.wg.Wait()
	close(r.events)

	if mgr != nil {
		return mgr.Stop()
	}
	return nil
}
