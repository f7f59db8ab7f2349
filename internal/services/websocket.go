package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a WebSocket client
type Client struct {
	ID   uint
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
}

// Hub maintains the set of active clients and delivers booking lifecycle
// events to connected users. Delivery is best-effort: a user without an open
// connection simply misses the push and sees the state on their next fetch.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %d connected", client.ID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Client %d disconnected", client.ID)
		}
	}
}

// BroadcastToUser sends a message to a specific user. A client whose send
// buffer is full gets the message dropped and is handed to the hub loop for
// eviction; the map is never mutated under the read lock and the Send channel
// is only ever closed by the unregister path.
func (h *Hub) BroadcastToUser(userID uint, message []byte) {
	h.mutex.RLock()
	var slow []*Client
	for client := range h.clients {
		if client.ID == userID {
			select {
			case client.Send <- message:
			default:
				slow = append(slow, client)
			}
		}
	}
	h.mutex.RUnlock()

	for _, client := range slow {
		select {
		case h.unregister <- client:
		default:
		}
	}
}

// WebSocketMessage is the envelope for every event pushed to a client.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// BookingEvent describes a booking lifecycle change pushed to the affected
// passenger or driver.
type BookingEvent struct {
	BookingID      uint   `json:"bookingId"`
	RideID         uint   `json:"rideId"`
	BookingStatus  string `json:"bookingStatus"`
	BookingRequest string `json:"bookingRequest"`
	SeatsRequested int    `json:"seatsRequested"`
}

// SendBookingEvent pushes a typed booking event to a user's connections.
func (h *Hub) SendBookingEvent(userID uint, eventType string, event BookingEvent) {
	message := WebSocketMessage{
		Type: eventType,
		Data: event,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling booking event: %v", err)
		return
	}

	h.BroadcastToUser(userID, data)
}

// HandleWebSocket upgrades the connection and registers the client.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:   userID,
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  hub,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so close frames are processed; clients are
// not expected to send application messages.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
