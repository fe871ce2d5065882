package progress

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"poke-battle-logger/domain/progress"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Hub pushes progress updates to websocket subscribers. Report never blocks:
// a subscriber whose buffer is full misses the update.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	latest  map[string]progress.Update
	dropped int

	buffer   int
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

type client struct {
	conn    *websocket.Conn
	send    chan progress.Update
	videoID string
}

// HubOption is a functional option for configuring Hub
type HubOption func(*Hub)

// WithBuffer sets the per-subscriber queue length
func WithBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithLogger sets the logger for connection errors
func WithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// NewHub creates an empty hub
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		latest:  make(map[string]progress.Update),
		buffer:  16,
		logger:  slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Report implements progress.Reporter
func (h *Hub) Report(ctx context.Context, u progress.Update) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest[u.VideoID] = u
	for c := range h.clients {
		if c.videoID != "" && c.videoID != u.VideoID {
			continue
		}
		select {
		case c.send <- u:
		default:
			h.dropped++
		}
	}
	return nil
}

// Latest returns the last update seen for a video
func (h *Hub) Latest(videoID string) (progress.Update, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	u, ok := h.latest[videoID]
	return u, ok
}

// Clients returns the number of connected subscribers
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many updates were discarded for slow subscribers
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// ServeHTTP upgrades the request and streams updates as JSON messages.
// The optional video_id query parameter limits the stream to one video.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan progress.Update, h.buffer),
		videoID: r.URL.Query().Get("video_id"),
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if c.videoID == "" {
		return
	}
	if u, ok := h.latest[c.videoID]; ok {
		c.send <- u
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump only watches for the peer going away
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	for u := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(u); err != nil {
			h.logger.Debug("websocket write failed", "video_id", u.VideoID, "error", err)
			c.conn.Close()
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

// Ensure Hub implements progress.Reporter
var _ progress.Reporter = (*Hub)(nil)
