package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/relay-core/internal/infrastructure/config"
	"github.com/nerrad567/relay-core/internal/infrastructure/logging"
	"github.com/nerrad567/relay-core/internal/outputs"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 5 * time.Second

// ErrAlreadyStarted is returned when Start is called on a running server.
var ErrAlreadyStarted = errors.New("api: server already started")

// Bank is the Output Bank surface used by the handlers.
type Bank interface {
	Len() int
	Valid(index int) bool
	Snapshot() ([]bool, error)
	Write(index int, level bool) error
	AddObserver(o outputs.Observer)
}

// Metrics receives request observations and serves the exposition endpoint.
type Metrics interface {
	Handler() http.Handler
	ObserveRequest(route string, status int, duration time.Duration)
	ObserveSetResult(result string)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WebSocket config.WebSocketConfig
	Logger    *logging.Logger
	Bank      Bank
	Metrics   Metrics         // optional; /metrics is not mounted when nil
	Hub       *Hub            // optional; created from WebSocket config when nil
	Station   StationReporter // optional; omitted from /status when nil
	Version   string
}

// Server is the HTTP control service.
//
// It is constructed once at boot and started by the attach hook once the
// station is associated. A failed Start leaves the server startable again.
type Server struct {
	cfg     config.APIConfig
	wsCfg   config.WebSocketConfig
	logger  *logging.Logger
	bank    Bank
	metrics Metrics
	hub     *Hub
	station StationReporter
	version string

	startTime time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// When WebSocket is enabled the hub is registered as a bank observer here,
// so New must be called once per bank.
//
// Parameters:
//   - deps: Required dependencies (logger, bank)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Bank == nil {
		return nil, fmt.Errorf("output bank is required")
	}

	s := &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WebSocket,
		logger:  deps.Logger,
		bank:    deps.Bank,
		metrics: deps.Metrics,
		hub:     deps.Hub,
		station: deps.Station,
		version: deps.Version,

		startTime: time.Now(),
	}

	if s.wsCfg.Enabled {
		if s.hub == nil {
			s.hub = NewHub(s.wsCfg, s.logger)
		}
		bank := s.bank
		hub := s.hub
		bank.AddObserver(outputs.ObserverFunc(func(outputs.Change) {
			levels, err := bank.Snapshot()
			if err != nil {
				s.logger.Warn("skipping output broadcast", "error", err)
				return
			}
			hub.BroadcastOutputs(levels)
		}))
	}

	return s, nil
}

// Addr returns the bound listener address, or "" when not started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the listener and serves in a background goroutine.
//
// The bind happens synchronously, so an address already in use is reported
// to the caller.
//
// Parameters:
//   - ctx: lifetime of the WebSocket hub; the listener runs until Close
//
// Returns:
//   - error: ErrAlreadyStarted, or the listen error
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return ErrAlreadyStarted
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	if s.hub != nil {
		go s.hub.Run(srvCtx)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	srv := s.server
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", ln.Addr().String())
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to gracefulShutdownTimeout for in-flight requests.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	cancel := s.cancel
	s.server = nil
	s.listener = nil
	s.cancel = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if cancel != nil {
		cancel()
	}

	ctx, done := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer done()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
