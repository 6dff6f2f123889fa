package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/vstore/internal/errors"
)

// frame is a message sent to a devtools client.
type frame struct {
	Event   string `json:"event"`
	Payload []any  `json:"payload"`
}

// inbound is a message received from a devtools client.
type inbound struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type socketClient struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *socketClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// HubOption configures a SocketHub.
type HubOption func(*SocketHub)

// WithHubLogger sets the hub's logger.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *SocketHub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithCheckOrigin overrides the origin check of the WebSocket upgrade.
// By default every origin is accepted.
func WithCheckOrigin(check func(r *http.Request) bool) HubOption {
	return func(h *SocketHub) {
		h.upgrader.CheckOrigin = check
	}
}

// SocketHub is a Hook serving devtools clients over WebSocket. Emitted
// events are broadcast to every connected client as JSON frames of the form
// {"event": ..., "payload": [...]}. Frames received from clients are
// dispatched to the handlers registered with On.
type SocketHub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu        sync.RWMutex
	clients   map[string]*socketClient
	handlers  map[string][]func(json.RawMessage)
	onConnect []func(clientID string)
}

// NewSocketHub creates an empty hub.
func NewSocketHub(opts ...HubOption) *SocketHub {
	h := &SocketHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:   slog.Default(),
		clients:  make(map[string]*socketClient),
		handlers: make(map[string][]func(json.RawMessage)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Emit broadcasts event to all connected clients.
func (h *SocketHub) Emit(event string, payload ...any) {
	data, err := h.encode(event, payload)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*socketClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.drop(c)
		}
	}
}

// Send delivers event to a single client. Unknown clients are ignored.
func (h *SocketHub) Send(clientID, event string, payload ...any) {
	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := h.encode(event, payload)
	if err != nil {
		return
	}
	if err := c.write(data); err != nil {
		h.drop(c)
	}
}

func (h *SocketHub) encode(event string, payload []any) ([]byte, error) {
	if payload == nil {
		payload = []any{}
	}
	data, err := json.Marshal(frame{Event: event, Payload: payload})
	if err != nil {
		h.logger.Warn("devtools event dropped", "event", event, "error", err)
	}
	return data, err
}

// On registers handler for event. Handlers run on the reading goroutine of
// the client that sent the frame.
func (h *SocketHub) On(event string, handler func(payload json.RawMessage)) {
	h.mu.Lock()
	h.handlers[event] = append(h.handlers[event], handler)
	h.mu.Unlock()
}

// OnConnect registers fn to run whenever a client connects.
func (h *SocketHub) OnConnect(fn func(clientID string)) {
	h.mu.Lock()
	h.onConnect = append(h.onConnect, fn)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and serves the client until it
// disconnects.
func (h *SocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &socketClient{id: uuid.NewString(), conn: conn}

	h.mu.Lock()
	h.clients[c.id] = c
	connect := append([]func(string){}, h.onConnect...)
	h.mu.Unlock()

	h.logger.Debug("devtools client connected", "client", c.id)
	for _, fn := range connect {
		fn(c.id)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.dispatch(c.id, data)
	}

	h.drop(c)
	h.logger.Debug("devtools client disconnected", "client", c.id)
}

func (h *SocketHub) dispatch(clientID string, data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil || msg.Event == "" {
		e := errors.New("E231").WithDetailf("client %s", clientID)
		if err != nil {
			e = e.Wrap(err)
		}
		h.logger.Warn("devtools message invalid", "error", e)
		return
	}

	h.mu.RLock()
	handlers := append([]func(json.RawMessage){}, h.handlers[msg.Event]...)
	h.mu.RUnlock()

	for _, handler := range handlers {
		handler(msg.Payload)
	}
}

func (h *SocketHub) drop(c *socketClient) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (h *SocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *SocketHub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*socketClient)
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

var _ Hook = (*SocketHub)(nil)
