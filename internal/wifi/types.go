package wifi

import (
	"fmt"
	"time"
)

// Phase is the station attachment phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseConnected
	PhaseDisconnected
)

// String returns the lower-case phase name used in logs and metrics.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// AllPhases lists every phase in declaration order.
var AllPhases = []Phase{PhaseIdle, PhaseConnecting, PhaseConnected, PhaseDisconnected}

// EventKind identifies a radio event.
type EventKind int

const (
	// EventStationStarted reports that station mode is up and may connect.
	EventStationStarted EventKind = iota + 1

	// EventConnected reports link-level association with the access point.
	EventConnected

	// EventDisconnected reports loss of association, or a failed attempt.
	EventDisconnected
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventStationStarted:
		return "station_started"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one notification from the radio.
type Event struct {
	Kind EventKind

	// Reason is a free-form description from the radio, e.g. an oper state.
	Reason string

	At time.Time
}

// NewEvent creates an event stamped with the current time.
func NewEvent(kind EventKind, reason string) Event {
	return Event{Kind: kind, Reason: reason, At: time.Now()}
}

// StationConfig holds the parameters for joining one access point.
type StationConfig struct {
	Interface  string
	SSID       string
	Passphrase string
}

// Validate checks the station parameters.
//
// An empty passphrase selects an open network. Otherwise it must be an ASCII
// passphrase of 8 to 63 printable characters or a 64-digit hex PSK.
func (c StationConfig) Validate() error {
	if c.SSID == "" {
		return ErrMissingSSID
	}
	if len(c.SSID) > maxSSIDLength {
		return fmt.Errorf("%w: %d bytes", ErrSSIDTooLong, len(c.SSID))
	}
	if c.Passphrase == "" || isHexPSK(c.Passphrase) {
		return nil
	}
	if len(c.Passphrase) < 8 || len(c.Passphrase) > 63 {
		return fmt.Errorf("%w: length %d", ErrInvalidPassphrase, len(c.Passphrase))
	}
	for _, r := range c.Passphrase {
		if r < 0x20 || r > 0x7e {
			return fmt.Errorf("%w: non-printable character", ErrInvalidPassphrase)
		}
	}
	return nil
}

// maxSSIDLength is the 802.11 limit in octets.
const maxSSIDLength = 32

func isHexPSK(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// Stats is a point-in-time view of the state machine counters.
type Stats struct {
	Phase           Phase     `json:"-"`
	PhaseName       string    `json:"phase"`
	Events          uint64    `json:"events"`
	ConnectAttempts uint64    `json:"connect_attempts"`
	ConnectFailures uint64    `json:"connect_failures"`
	Reconnects      uint64    `json:"reconnects"`
	AttachAttempts  uint64    `json:"attach_attempts"`
	AttachFailures  uint64    `json:"attach_failures"`
	Attached        bool      `json:"attached"`
	LastEvent       string    `json:"last_event,omitempty"`
	LastReason      string    `json:"last_reason,omitempty"`
	LastChange      time.Time `json:"last_change"`
}
