package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/relay-core/internal/infrastructure/config"
	"github.com/nerrad567/relay-core/internal/infrastructure/logging"
)

// WebSocket constants.
const (
	WSTypeOutputs = "outputs"

	// wsSendBufferSize is the per-client outbound message buffer size.
	wsSendBufferSize = 16

	// wsMaxMessageSize caps inbound frames. The live view is push-only.
	wsMaxMessageSize = 512

	defaultPingInterval = 30 * time.Second
	wsWriteWait         = 10 * time.Second
)

// WSMessage is a push sent to live view clients.
type WSMessage struct {
	Type      string `json:"type"`
	Outputs   []int  `json:"outputs"`
	Timestamp string `json:"timestamp"`
}

// Hub fans output snapshots out to connected WebSocket clients.
type Hub struct {
	cfg     config.WebSocketConfig
	logger  *logging.Logger
	clients map[*WSClient]struct{}
	mu      sync.RWMutex
}

// WSClient is one connected live view.
type WSClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Served on the local network only; any origin may watch.
		return true
	},
}

// NewHub creates a new WebSocket hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", h.ClientCount())
}

// Unregister removes a client from the hub.
// The send channel is closed under the write lock by whoever removes the
// client from the map, so it is never closed twice or sent on after close.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
}

// BroadcastOutputs pushes a level snapshot to every client. Slow clients
// whose buffer is full miss the update.
func (h *Hub) BroadcastOutputs(levels []bool) {
	data, err := outputsMessage(levels)
	if err != nil {
		h.logger.Error("failed to marshal outputs message", "error", err)
		return
	}

	// Sends never block, so holding the read lock keeps every registered
	// channel open for the whole fan-out.
	h.mu.RLock()
	for client := range h.clients {
		client.trySend(data)
	}
	recipients := len(h.clients)
	h.mu.RUnlock()

	if recipients > 0 {
		h.logger.Debug("outputs broadcast", "recipients", recipients)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) pingInterval() time.Duration {
	if h.cfg.PingInterval <= 0 {
		return defaultPingInterval
	}
	return time.Duration(h.cfg.PingInterval) * time.Second
}

// closeAll disconnects all clients and closes their send channels
// so writePump goroutines can exit.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
}

func outputsMessage(levels []bool) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      WSTypeOutputs,
		Outputs:   encodeLevels(levels),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleWebSocket upgrades the connection and sends the current snapshot
// before any change pushes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, wsSendBufferSize),
	}

	if levels, err := s.bank.Snapshot(); err != nil {
		s.logger.Warn("websocket: initial output read failed", "error", err)
	} else if data, err := outputsMessage(levels); err == nil {
		client.send <- data
	}
	s.hub.Register(client)

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound frames and keeps the read deadline fresh on pongs.
func (c *WSClient) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	wait := 2 * c.hub.pingInterval()
	c.conn.SetReadLimit(wsMaxMessageSize)
	//nolint:errcheck // best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			} else {
				c.hub.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		//nolint:errcheck // best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(wait))
	}
}

// writePump writes queued messages and periodic pings.
func (c *WSClient) writePump() {
	ticker := time.NewTicker(c.hub.pingInterval())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				//nolint:errcheck // best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues data without blocking; a full buffer drops the message.
// Callers hold the hub lock and have checked membership.
func (c *WSClient) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}
