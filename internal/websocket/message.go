package websocket

import (
	"encoding/json"

	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

func encode(msg Message) []byte {
	b, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("action", msg.Action).Msg("Failed to encode websocket message")
		return nil
	}
	return b
}

// NewEventMessage wraps an activity event.
func NewEventMessage(event models.Event) []byte {
	return encode(Message{Action: "event", Payload: event})
}

// NewConnectedMessage is sent once a client has been registered.
func NewConnectedMessage(username string) []byte {
	return encode(Message{Action: "connected", Payload: map[string]string{"username": username}})
}
