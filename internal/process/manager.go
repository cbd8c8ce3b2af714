package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Status represents the current state of a supervised daemon.
type Status string

const (
	StatusStopped    Status = "stopped"
	StatusRunning    Status = "running"
	StatusRestarting Status = "restarting"
	StatusFailed     Status = "failed"
)

// ErrAlreadyRunning is returned by Start when the daemon is already supervised.
var ErrAlreadyRunning = errors.New("process: already running")

const (
	defaultRestartDelay    = 2 * time.Second
	defaultGracefulTimeout = 5 * time.Second
)

// Config describes a daemon to supervise.
type Config struct {
	// Name is a human-readable identifier for logging.
	Name string

	// Binary is the path to the executable.
	Binary string

	// Args are command-line arguments to pass to the binary.
	Args []string

	// RestartDelay is the fixed pause before restarting a daemon that exited.
	RestartDelay time.Duration

	// GracefulTimeout is how long Stop waits after SIGTERM before SIGKILL.
	GracefulTimeout time.Duration
}

// Logger defines the logging interface for the supervisor.
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

// Manager keeps one daemon running until stopped.
//
// A daemon that exits on its own is restarted after RestartDelay, forever.
// There is no attempt limit and no growing delay: the network stack cannot
// work without the daemon, so giving up is never better than trying again.
type Manager struct {
	config Config
	logger Logger

	mu       sync.RWMutex
	cmd      *exec.Cmd
	status   Status
	restarts int
	lastErr  error
	started  time.Time
	stopping bool
	done     chan struct{}
}

// NewManager creates a supervisor for cfg.
func NewManager(cfg Config) *Manager {
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = defaultRestartDelay
	}
	if cfg.GracefulTimeout <= 0 {
		cfg.GracefulTimeout = defaultGracefulTimeout
	}
	return &Manager{
		config: cfg,
		logger: noopLogger{},
		status: StatusStopped,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	m.logger = logger
}

// Start launches the daemon and supervises it until ctx is cancelled or Stop
// is called.
//
// Returns:
//   - error: ErrAlreadyRunning, or the exec error if the first launch fails
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.done != nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, m.config.Name)
	}
	m.stopping = false
	done := make(chan struct{})
	m.done = done
	m.mu.Unlock()

	cmd, err := m.launch(ctx)
	if err != nil {
		m.mu.Lock()
		m.status = StatusFailed
		m.lastErr = err
		m.done = nil
		m.mu.Unlock()
		close(done)
		return err
	}

	go m.supervise(ctx, cmd, done)
	return nil
}

func (m *Manager) launch(ctx context.Context) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, m.config.Binary, m.config.Args...) //nolint:gosec // binary comes from validated config
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", m.config.Name, err)
	}

	m.mu.Lock()
	m.cmd = cmd
	m.status = StatusRunning
	m.started = time.Now()
	m.mu.Unlock()

	go m.relay("stdout", stdout)
	go m.relay("stderr", stderr)

	m.logger.Info("daemon started", "name", m.config.Name, "pid", cmd.Process.Pid)
	return cmd, nil
}

// relay logs daemon output line by line at debug level.
func (m *Manager) relay(stream string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m.logger.Debug("daemon output",
			"name", m.config.Name,
			"stream", stream,
			"line", scanner.Text(),
		)
	}
}

func (m *Manager) supervise(ctx context.Context, cmd *exec.Cmd, done chan struct{}) {
	defer func() {
		m.mu.Lock()
		m.done = nil
		m.mu.Unlock()
		close(done)
	}()

	for {
		err := cmd.Wait()

		m.mu.Lock()
		stopping := m.stopping
		m.lastErr = err
		if stopping || ctx.Err() != nil {
			m.status = StatusStopped
			m.mu.Unlock()
			m.logger.Info("daemon stopped", "name", m.config.Name)
			return
		}
		m.status = StatusRestarting
		m.restarts++
		attempt := m.restarts
		m.mu.Unlock()

		m.logger.Warn("daemon exited, restarting",
			"name", m.config.Name,
			"error", err,
			"attempt", attempt,
			"delay", m.config.RestartDelay,
		)

		for {
			select {
			case <-ctx.Done():
				m.setStatus(StatusStopped)
				return
			case <-time.After(m.config.RestartDelay):
			}

			if m.isStopping() {
				m.setStatus(StatusStopped)
				return
			}

			next, err := m.launch(ctx)
			if err == nil {
				cmd = next
				break
			}
			m.logger.Error("daemon restart failed", "name", m.config.Name, "error", err)
			m.mu.Lock()
			m.lastErr = err
			m.mu.Unlock()
		}
	}
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

func (m *Manager) isStopping() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stopping
}

// Stop terminates the daemon's process group and waits for supervision to end.
//
// SIGTERM is sent first; SIGKILL follows after GracefulTimeout.
func (m *Manager) Stop() error {
	m.mu.Lock()
	done := m.done
	if done == nil {
		m.mu.Unlock()
		return nil
	}
	m.stopping = true
	cmd := m.cmd
	m.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		<-done
		return nil
	}

	pid := cmd.Process.Pid
	m.logger.Info("stopping daemon", "name", m.config.Name, "pid", pid)

	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		m.logger.Warn("sending SIGTERM", "name", m.config.Name, "error", err)
	}

	select {
	case <-done:
		return nil
	case <-time.After(m.config.GracefulTimeout):
		m.logger.Warn("graceful stop timed out, sending SIGKILL", "name", m.config.Name)
	}

	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("killing %s: %w", m.config.Name, err)
	}
	<-done
	return nil
}

// Status returns the current supervision status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Stats is a point-in-time view of a supervised daemon.
type Stats struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	PID       int           `json:"pid,omitempty"`
	Uptime    time.Duration `json:"uptime,omitempty"`
	Restarts  int           `json:"restarts"`
	LastError string        `json:"last_error,omitempty"`
}

// Stats returns current statistics for the daemon.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{
		Name:     m.config.Name,
		Status:   m.status,
		Restarts: m.restarts,
	}
	if m.status == StatusRunning && m.cmd != nil && m.cmd.Process != nil {
		stats.PID = m.cmd.Process.Pid
		stats.Uptime = time.Since(m.started)
	}
	if m.lastErr != nil {
		stats.LastError = m.lastErr.Error()
	}
	return stats
}
