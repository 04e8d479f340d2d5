package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"salon_workflow/middleware"
	"salon_workflow/model"
	"salon_workflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict Origin to the admin console host in production
		return true
	},
}

// Client is one connected admin console.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
	mu     sync.Mutex
	closed bool
}

// Hub broadcasts finished workflow events to connected admin consoles. The
// feed is one-way: clients only send heartbeats.
type Hub struct {
	clients map[uuid.UUID]*Client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
	}
}

// Register adds a connected console.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	total := len(h.clients)
	h.mu.Unlock()

	log.Printf("Admin console connected (client: %s), total: %d", client.ID, total)
}

// Unregister removes a console and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client.ID)
	total := len(h.clients)
	h.mu.Unlock()

	client.mu.Lock()
	if !client.closed {
		close(client.Send)
		client.closed = true
	}
	client.mu.Unlock()

	log.Printf("Admin console disconnected (client: %s), total: %d", client.ID, total)
}

// Broadcast delivers a payload to every connected console. A console whose
// send buffer is full gets disconnected rather than blocking the feed.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	clientsCopy := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	for _, client := range clientsCopy {
		select {
		case client.Send <- payload:
		default:
			log.Printf("[ERROR] Send channel FULL: client=%s, closing connection", client.ID)
			go h.Unregister(client)
		}
	}
}

// NotifyEvent pushes one finished workflow event to the live feed.
// Implements the workflow's EventNotifier.
func (h *Hub) NotifyEvent(event *model.WorkflowEvent) {
	payload, err := json.Marshal(map[string]interface{}{
		"type": "workflow_event",
		"data": event,
	})
	if err != nil {
		log.Printf("[ERROR] Failed to marshal workflow event: %v", err)
		return
	}
	h.Broadcast(payload)
}

// HandleWebSocket upgrades an admin console connection.
// GET /ws?token=...
func HandleWebSocket(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			utils.Unauthorized(c, "missing token")
			return
		}

		userID, err := middleware.ValidateToken(tokenString)
		if err != nil {
			utils.Unauthorized(c, "invalid token")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ERROR] WebSocket upgrade failed for user %s: %v", userID, err)
			return
		}

		client := &Client{
			ID:     uuid.New(),
			UserID: userID,
			Conn:   conn,
			Send:   make(chan []byte, 256),
			Hub:    hub,
		}

		hub.Register(client)

		go client.readPump()
		go client.writePump()
	}
}

// readPump drains the connection; the feed is one-way, so inbound frames
// only refresh the read deadline.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure) {
				log.Printf("[ERROR] User %s WebSocket unexpected close error: %v", c.UserID, err)
			}
			break
		}
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

// writePump forwards broadcast payloads and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
