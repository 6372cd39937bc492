package www

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var errHourUnknown = errors.New("current hour not in today's prices")

type Client struct {
	logger *slog.Logger
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
	name   string
}

func NewClient(hub *Hub, w http.ResponseWriter, r *http.Request, name string) (*Client, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		logger: hub.logger.With(slog.String("client", name)),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 16),
		name:   name,
	}, nil
}

// ReadPump drains incoming frames so pongs and close frames are handled.
func (c *Client) ReadPump() {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(512)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				c.logger.Debug("web socket read failed", slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("web socket set write deadline failed", slog.Any("error", err))
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(ws.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("web socket close message failed", slog.Any("error", err))
				}
				return
			}

			if err := c.conn.WriteMessage(ws.TextMessage, message); err != nil {
				c.logger.Warn("web socket write failed", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("web socket set write deadline failed", slog.Any("error", err))
				return
			}
			if err := c.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				c.logger.Debug("web socket ping message failed", slog.Any("error", err))
				return
			}
		}
	}
}

// Hub keeps the connected clients and fans out current hour updates.
type Hub struct {
	logger    *slog.Logger
	broadcast chan []byte
	join      chan *Client
	leave     chan *Client
	done      chan struct{}
	clients   map[*Client]bool
	mutex     sync.Mutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:    logger,
		broadcast: make(chan []byte),
		join:      make(chan *Client),
		leave:     make(chan *Client),
		done:      make(chan struct{}),
		clients:   make(map[*Client]bool),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			return

		case client := <-h.join:
			h.logger.Debug("registering client", slog.String("clientName", client.name))
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

		case client := <-h.leave:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				h.logger.Debug("unregistering client", slog.String("clientName", client.name))
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.logger.Warn("client send buffer full, dropping message", slog.String("clientName", client.name))
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Broadcast is a no-op once the hub has stopped.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) {
	select {
	case h.join <- c:
	case <-h.done:
		close(c.send)
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.leave <- c:
	case <-h.done:
	}
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	client, err := NewClient(s.hub, w, r, r.Header.Get("User-Agent"))
	if err != nil {
		s.logger.Error("new websocket client failed", slog.Any("error", err))
		return
	}

	// New clients get the current state right away instead of waiting for a tick
	if msg, err := s.currentHourMessage(r.Context()); err == nil {
		client.send <- msg
	}

	s.hub.add(client)
	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) currentHourMessage(ctx context.Context) ([]byte, error) {
	h, ok, err := s.pricer.CurrentHour(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errHourUnknown
	}
	return json.Marshal(NewHourJSON(h))
}
