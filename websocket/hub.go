package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/pageturners/bookswap_backend/swap"
)

// Hub maintains the set of active clients, grouped by user and by
// conversation. While a user has at least one connected client, the hub keeps
// bus subscriptions for that user's offer views and forwards every hint as a
// payload-free refresh event; clients re-fetch over the REST API.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Clients per user (userID -> clients)
	users map[uint]map[*Client]bool

	// Clients per conversation (conversationID -> clients)
	conversations map[uint]map[*Client]bool

	// Mutex for the maps above
	mu sync.RWMutex

	// Invalidation bus and per-user subscription cancel funcs
	bus      *swap.Bus
	userSubs map[uint][]func()

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new hub instance
func NewHub(bus *swap.Bus) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		users:         make(map[uint]map[*Client]bool),
		conversations: make(map[uint]map[*Client]bool),
		bus:           bus,
		userSubs:      make(map[uint][]func()),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if _, ok := h.users[client.userID]; !ok {
		h.users[client.userID] = make(map[*Client]bool)
		h.subscribeUser(client.userID)
	}
	h.users[client.userID][client] = true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	client.cancelWatches()
	client.markClosed()
	close(client.send)

	if clients, ok := h.users[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.users, client.userID)
			for _, cancel := range h.userSubs[client.userID] {
				cancel()
			}
			delete(h.userSubs, client.userID)
		}
	}

	for conversationID, clients := range h.conversations {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.conversations, conversationID)
			}
		}
	}
}

// subscribeUser hooks the user's offer-view topics up to a refresh push.
// Caller holds h.mu.
func (h *Hub) subscribeUser(userID uint) {
	topics := []swap.Topic{
		swap.SentOffersTopic(userID),
		swap.ReceivedOffersTopic(userID),
	}
	for _, topic := range topics {
		cancel := h.bus.Subscribe(topic, func(t swap.Topic) {
			h.sendToUser(userID, "swap_refresh", map[string]string{"topic": string(t)})
		})
		h.userSubs[userID] = append(h.userSubs[userID], cancel)
	}
}

// joinConversation adds a client to a conversation
func (h *Hub) joinConversation(client *Client, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conversations[conversationID]; !ok {
		h.conversations[conversationID] = make(map[*Client]bool)
	}
	h.conversations[conversationID][client] = true
}

// leaveConversation removes a client from a conversation
func (h *Hub) leaveConversation(client *Client, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.conversations[conversationID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.conversations, conversationID)
		}
	}
}

// broadcastToConversation sends a message to all clients in a conversation
func (h *Hub) broadcastToConversation(conversationID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.conversations[conversationID] {
		select {
		case client.send <- message:
		default:
			// Slow client; drop it rather than block the hub
		}
	}
}

// sendToUser sends a message to every connected client of one user
func (h *Hub) sendToUser(userID uint, msgType string, payload interface{}) {
	msgBytes, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.users[userID] {
		select {
		case client.send <- msgBytes:
		default:
		}
	}
}

// BroadcastToConversation sends a message to all clients in a conversation
func BroadcastToConversation(conversationID uint, msgType string, payload interface{}) {
	if hub == nil {
		return
	}

	msgBytes, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("error marshaling message: %v", err)
		return
	}

	hub.broadcastToConversation(conversationID, msgBytes)
}

// SendToUser sends a message to every connected client of one user
func SendToUser(userID uint, msgType string, payload interface{}) {
	if hub == nil {
		return
	}
	hub.sendToUser(userID, msgType, payload)
}

// Global hub instance
var hub *Hub

// InitHub initializes the global hub
func InitHub(bus *swap.Bus) {
	hub = NewHub(bus)
	go hub.Run()
}
