package wifi

import "context"

// Radio is the wireless station collaborator driven by the Machine.
type Radio interface {
	// Init brings up the network stack for the given station. Errors are
	// fatal to the process.
	Init(ctx context.Context, cfg StationConfig) error

	// Events returns the channel carrying radio events in arrival order.
	// It is closed by Close.
	Events() <-chan Event

	// Start requests station mode. The radio emits EventStationStarted
	// once it is ready.
	Start(ctx context.Context) error

	// Connect requests association with the configured access point. The
	// outcome is reported later as an event.
	Connect() error

	// Close releases the radio and closes the event channel.
	Close() error
}

// Logger is the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
