package preview

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/reactor/internal/errors"
)

// MessageType identifies a websocket message.
type MessageType string

const (
	// MessageHello is sent once per connection with the client ID and the
	// current rendering.
	MessageHello MessageType = "hello"

	// MessageRender carries a new rendering.
	MessageRender MessageType = "render"

	// MessageError reports a failed update to the client that sent it.
	MessageError MessageType = "error"

	// MessageSet is sent by clients to write a store key.
	MessageSet MessageType = "set"
)

// Message is exchanged with browsers over the websocket.
type Message struct {
	Type   MessageType     `json:"type"`
	Client string          `json:"client,omitempty"`
	HTML   string          `json:"html,omitempty"`
	Error  string          `json:"error,omitempty"`
	Detail string          `json:"detail,omitempty"`
	Key    string          `json:"key,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
}

// errorMessage reports e to a client as a one-line error plus its detail.
func errorMessage(key string, e *errors.Error) Message {
	return Message{Type: MessageError, Key: key, Error: e.FormatCompact(), Detail: e.Detail}
}

// client is one websocket connection. Writes are serialized because the
// hello message and broadcasts are sent from different goroutines.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages websocket connections and pushes renderings to them.
type Hub struct {
	clients  map[string]*client
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
	metrics  *HTTPMetrics

	// current is the latest rendering, sent to new connections.
	current string

	// onMessage handles client messages other than hello. It runs on the
	// connection's read goroutine.
	onMessage func(clientID string, msg Message)
}

// NewHub creates a hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local preview
			},
		},
		logger: logger,
	}
}

// OnMessage sets the handler for client messages.
func (h *Hub) OnMessage(fn func(clientID string, msg Message)) {
	h.mu.Lock()
	h.onMessage = fn
	h.mu.Unlock()
}

// HandleWebSocket handles websocket upgrade and connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("preview: websocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}

	// The client's write lock is taken before it becomes visible to
	// broadcasts, so no render can overtake the hello built from current.
	c.mu.Lock()
	h.mu.Lock()
	h.clients[c.id] = c
	h.metrics.clientConnected()
	hello, _ := json.Marshal(Message{Type: MessageHello, Client: c.id, HTML: h.current})
	h.mu.Unlock()
	err = c.conn.WriteMessage(websocket.TextMessage, hello)
	c.mu.Unlock()

	h.logger.Info("preview: client connected", "client", c.id)
	if err != nil {
		h.drop(c)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendTo(c, errorMessage("", errors.New("S002").WithDetail("Message is not valid JSON").Wrap(err)))
			continue
		}
		h.mu.RLock()
		fn := h.onMessage
		h.mu.RUnlock()
		if fn != nil {
			fn(c.id, msg)
		}
	}

	h.drop(c)
	h.logger.Info("preview: client disconnected", "client", c.id)
}

// Broadcast stores html as the current rendering and sends it to all
// clients.
func (h *Hub) Broadcast(html string) {
	h.mu.Lock()
	h.current = html
	h.mu.Unlock()
	h.broadcast(Message{Type: MessageRender, HTML: html})
}

// Send sends msg to one client. Unknown IDs are ignored.
func (h *Hub) Send(clientID string, msg Message) {
	h.mu.RLock()
	c := h.clients[clientID]
	h.mu.RUnlock()
	if c != nil {
		h.sendTo(c, msg)
	}
}

func (h *Hub) sendTo(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := c.send(data); err != nil {
		h.drop(c)
	}
}

// broadcast sends a message to all connected clients.
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		h.metrics.clientDisconnected()
	}
	h.mu.Unlock()
	c.conn.Close()
}

// Current returns the latest rendering.
func (h *Hub) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		c.conn.Close()
		delete(h.clients, id)
		h.metrics.clientDisconnected()
	}
}
