package feed

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/librishare/librishare/pkg/logger"
	"github.com/librishare/librishare/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Client struct {
	ID          string
	Conn        *websocket.Conn
	Send        chan []byte
	ConnectedAt time.Time
}

// Hub fans activity events out to every connected feed client.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *logger.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        logger.WithContext("component", "feed_hub"),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			metrics.SetActiveFeedClients(int64(len(h.clients)))
			h.mu.Unlock()
			h.log.Debug("feed_client_registered", "client_id", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			metrics.SetActiveFeedClients(int64(len(h.clients)))
			h.mu.Unlock()
			h.log.Debug("feed_client_unregistered", "client_id", client.ID)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
					metrics.IncrementFeedBroadcasts()
				default:
					metrics.IncrementFeedBroadcastFails()
					close(client.Send)
					delete(h.clients, client)
				}
			}
			metrics.SetActiveFeedClients(int64(len(h.clients)))
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a message for every connected client, dropping it if the
// hub's buffer is full.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		metrics.IncrementFeedBroadcastFails()
		h.log.Warn("feed_broadcast_dropped")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Feed clients are read-only; drain until the connection drops.
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
