package websocket

import (
	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/rs/zerolog/log"
)

type userMessage struct {
	userID  int64
	message []byte
}

// Hub maintains the set of active clients and routes messages to them by
// user. All maps are owned by the Run goroutine.
type Hub struct {
	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	direct chan userMessage
	done   chan struct{}

	// Connected clients grouped by user ID.
	users map[int64]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		direct:     make(chan userMessage, 64),
		done:       make(chan struct{}),
		users:      make(map[int64]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for _, clients := range h.users {
				for client := range clients {
					close(client.Send)
				}
			}
			h.users = make(map[int64]map[*Client]bool)
			return
		case client := <-h.Register:
			if h.users[client.UserID] == nil {
				h.users[client.UserID] = make(map[*Client]bool)
			}
			h.users[client.UserID][client] = true
			log.Info().Int64("user_id", client.UserID).Int("user_clients", len(h.users[client.UserID])).Msg("Client connected")
		case client := <-h.Unregister:
			if h.remove(client) {
				log.Info().Int64("user_id", client.UserID).Msg("Client disconnected")
			}
		case msg := <-h.direct:
			for client := range h.users[msg.userID] {
				select {
				case client.Send <- msg.message:
				default:
					// Slow consumer; drop it.
					h.remove(client)
				}
			}
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Add registers client. It reports false once the hub has stopped.
func (h *Hub) Add(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues message for every connection of userID.
func (h *Hub) SendToUser(userID int64, message []byte) {
	select {
	case h.direct <- userMessage{userID: userID, message: message}:
	case <-h.done:
	}
}

// NotifyUser pushes an activity event to the user's connections.
func (h *Hub) NotifyUser(userID int64, event models.Event) {
	h.SendToUser(userID, NewEventMessage(event))
}

func (h *Hub) remove(client *Client) bool {
	clients, ok := h.users[client.UserID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.users, client.UserID)
	}
	return true
}
