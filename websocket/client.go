package websocket

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pageturners/bookswap_backend/swap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 10000
)

// Client represents a connected websocket client
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint

	// Conversations this client has joined
	conversations map[uint]bool

	// Cancel funcs for per-book invalidation watches (bookID -> cancel)
	watches map[uint]func()

	// Set before the send channel is closed; guards bus-callback sends that
	// run outside the hub's lock
	closed bool

	mu sync.RWMutex
}

// Message represents a websocket message
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("error unmarshaling message: %v", err)
			continue
		}

		HandleIncomingMessage(c, message)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// joinConversation adds the client to a conversation
func (c *Client) joinConversation(conversationID uint) {
	c.mu.Lock()
	c.conversations[conversationID] = true
	c.mu.Unlock()
	c.hub.joinConversation(c, conversationID)
}

// leaveConversation removes the client from a conversation
func (c *Client) leaveConversation(conversationID uint) {
	c.mu.Lock()
	delete(c.conversations, conversationID)
	c.mu.Unlock()
	c.hub.leaveConversation(c, conversationID)
}

// inConversation checks if the client has joined a conversation
func (c *Client) inConversation(conversationID uint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conversations[conversationID]
}

// watchBook subscribes the client to a book's pending-offer invalidations
func (c *Client) watchBook(bookID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.watches[bookID]; ok {
		return
	}
	c.watches[bookID] = c.hub.bus.Subscribe(swap.PendingForBookTopic(bookID), func(t swap.Topic) {
		msgBytes, err := json.Marshal(Message{Type: "swap_refresh", Payload: map[string]string{"topic": string(t)}})
		if err != nil {
			log.Printf("error marshaling message: %v", err)
			return
		}
		c.trySend(msgBytes)
	})
}

// trySend delivers a message unless the client is gone or its buffer is full
func (c *Client) trySend(message []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return
	}
	select {
	case c.send <- message:
	default:
	}
}

// markClosed must be called before closing the send channel
func (c *Client) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// unwatchBook drops the client's watch on a book
func (c *Client) unwatchBook(bookID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cancel, ok := c.watches[bookID]; ok {
		cancel()
		delete(c.watches, bookID)
	}
}

// cancelWatches drops all of the client's book watches
func (c *Client) cancelWatches() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cancel := range c.watches {
		cancel()
	}
	c.watches = make(map[uint]func())
}

// parseID converts a string identifier to uint
func parseID(id string) uint {
	parsed, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		log.Printf("error parsing ID: %v", err)
		return 0
	}
	return uint(parsed)
}
