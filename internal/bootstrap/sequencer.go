package bootstrap

import (
	"context"
	"errors"
	"fmt"
)

// OutputInitializer prepares the output lines. *outputs.Bank satisfies it.
type OutputInitializer interface {
	Initialize() error
}

// StorageInitializer opens persistent storage and loads what the network
// step needs from it.
type StorageInitializer interface {
	Initialize(ctx context.Context) error
}

// NetworkStarter brings the network stack up and requests station start.
type NetworkStarter interface {
	Init(ctx context.Context) error
	Start(ctx context.Context) error
}

// EventLoop consumes network events until ctx is cancelled.
// *wifi.Machine satisfies it.
type EventLoop interface {
	Run(ctx context.Context) error
}

// Logger is the logging surface used during boot.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Sequencer runs the boot steps in a fixed order:
//
//  1. output lines initialised (all off)
//  2. storage opened and credentials resolved
//  3. network stack initialised
//  4. event handling started
//  5. station start requested
//
// After that it idles until the context is cancelled. Any step error stops
// the sequence and is returned; nothing later runs.
type Sequencer struct {
	Outputs OutputInitializer
	Storage StorageInitializer
	Network NetworkStarter
	Events  EventLoop
	Logger  Logger
}

// Run executes the boot sequence and blocks until ctx is cancelled.
//
// Returns:
//   - error: nil on cancellation, the failing step's error otherwise. An
//     event loop that stops on its own is reported as an error.
func (s *Sequencer) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	if err := s.Outputs.Initialize(); err != nil {
		return fmt.Errorf("initialising outputs: %w", err)
	}
	logger.Info("outputs initialised")

	if err := s.Storage.Initialize(ctx); err != nil {
		return fmt.Errorf("initialising storage: %w", err)
	}
	logger.Info("storage ready")

	if err := s.Network.Init(ctx); err != nil {
		return fmt.Errorf("initialising network: %w", err)
	}
	logger.Info("network stack initialised")

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- s.Events.Run(loopCtx)
	}()

	if err := s.Network.Start(ctx); err != nil {
		cancel()
		<-loopDone
		return fmt.Errorf("starting station: %w", err)
	}
	logger.Info("station start requested")

	select {
	case <-ctx.Done():
		<-loopDone
		return nil
	case err := <-loopDone:
		if ctx.Err() != nil {
			return nil
		}
		if err == nil || errors.Is(err, context.Canceled) {
			err = errors.New("event source closed")
		}
		return fmt.Errorf("network event loop stopped: %w", err)
	}
}
