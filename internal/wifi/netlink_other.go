//go:build !linux

package wifi

import (
	"context"
	"time"
)

// LinkRadio is unavailable off Linux; every operation fails with
// ErrUnsupported. Use SimRadio instead.
type LinkRadio struct {
	events chan Event
}

// NewLinkRadio returns a radio that reports ErrUnsupported.
func NewLinkRadio(string, SupplicantConfig, time.Duration) *LinkRadio {
	return &LinkRadio{events: make(chan Event)}
}

// SetLogger is a no-op.
func (r *LinkRadio) SetLogger(Logger) {}

// Init implements Radio.
func (r *LinkRadio) Init(context.Context, StationConfig) error { return ErrUnsupported }

// Events implements Radio.
func (r *LinkRadio) Events() <-chan Event { return r.events }

// Start implements Radio.
func (r *LinkRadio) Start(context.Context) error { return ErrUnsupported }

// Connect implements Radio.
func (r *LinkRadio) Connect() error { return ErrUnsupported }

// Close implements Radio.
func (r *LinkRadio) Close() error { return nil }
