package bootstrap

import (
	"context"
	"fmt"

	"github.com/nerrad567/relay-core/internal/wifi"
)

// StationNetwork is the network step over a wifi.Radio.
//
// The station configuration is read when Init runs, so it can come from a
// storage step that ran before.
type StationNetwork struct {
	Radio   wifi.Radio
	Station func() wifi.StationConfig
}

// Init validates the station configuration and initialises the radio.
func (n *StationNetwork) Init(ctx context.Context) error {
	cfg := n.Station()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("station config: %w", err)
	}
	return n.Radio.Init(ctx, cfg)
}

// Start requests station mode; the radio answers with StationStarted.
func (n *StationNetwork) Start(ctx context.Context) error {
	return n.Radio.Start(ctx)
}
