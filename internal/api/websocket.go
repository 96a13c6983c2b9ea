package api

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/twillco/storefront/internal/events"
)

// WebSocket message types
const (
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentFailed    = "payment_failed"
	EventDesignUploaded   = "design_uploaded"
	EventRecent           = "recent"
	EventPing             = "ping"
	EventPong             = "pong"
	EventError            = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// WSClient represents a connected WebSocket client
type WSClient struct {
	conn   *websocket.Conn
	send   chan WSMessage
	server *Server
	mu     sync.Mutex
}

// Hub fans broadcast messages out to connected clients from one goroutine
type Hub struct {
	clients    map[*WSClient]bool
	register   chan *WSClient
	unregister chan *WSClient
	broadcast  chan WSMessage
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	started    sync.Once
	stopped    sync.Once
	mu         sync.RWMutex
}

// NewHub creates a hub; call Start to begin delivering messages
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*WSClient]bool),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		broadcast:  make(chan WSMessage, 64),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start runs the hub goroutine
func (h *Hub) Start() {
	h.started.Do(func() {
		h.wg.Add(1)
		go h.run()
	})
}

// Stop closes every client and waits for the hub goroutine to exit
func (h *Hub) Stop() {
	h.stopped.Do(func() {
		h.cancel()
		h.wg.Wait()
	})
}

// Count is the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. It drops the message when the
// hub is backed up or stopped.
func (h *Hub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.ctx.Done():
	default:
		log.Printf("⚠️  Broadcast queue full, dropping %s", msg.Event)
	}
}

func (h *Hub) run() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Client send buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &WSClient{
		conn:   conn,
		send:   make(chan WSMessage, 256),
		server: s,
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.ctx.Done():
		conn.Close()
		return
	}

	log.Println("📡 WebSocket client connected")

	// Start goroutines
	go client.writePump()
	go client.readPump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.mu.Lock()
		err := c.conn.WriteJSON(msg)
		c.mu.Unlock()

		if err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}

	c.mu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.mu.Unlock()
}

func (c *WSClient) readPump() {
	hub := c.server.hub
	defer func() {
		select {
		case hub.unregister <- c:
		case <-hub.ctx.Done():
		}
		c.conn.Close()
		log.Println("📡 WebSocket client disconnected")
	}()

	for {
		var msg WSMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

func (c *WSClient) handleMessage(msg *WSMessage) {
	switch msg.Event {
	case EventPing:
		c.reply(WSMessage{Event: EventPong, Data: map[string]interface{}{}})
	case EventRecent:
		c.reply(WSMessage{
			Event: EventRecent,
			Data: map[string]interface{}{
				"payments": events.RedactAll(c.server.feed.Recent()),
			},
		})
	default:
		c.sendError(fmt.Sprintf("unknown event: %s", msg.Event))
	}
}

// reply queues a direct response. The hub closes send on shutdown, so the
// send is guarded by the hub's lock.
func (c *WSClient) reply(msg WSMessage) {
	hub := c.server.hub
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if !hub.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (c *WSClient) sendError(message string) {
	c.reply(WSMessage{
		Event: EventError,
		Data: map[string]interface{}{
			"error": message,
		},
	})
}

// broadcastPayment pushes a webhook outcome to every connected client
func (s *Server) broadcastPayment(rec events.Record) {
	event := EventPaymentFailed
	if rec.Succeeded() {
		event = EventPaymentSucceeded
	}

	s.hub.Broadcast(WSMessage{
		Event: event,
		Data: map[string]interface{}{
			"intent_id": rec.IntentID,
			"status":    rec.Status,
			"amount":    rec.Amount,
			"error":     rec.Error,
		},
	})

	log.Printf("📡 Broadcast: %s - %s", event, rec.IntentID)
}
