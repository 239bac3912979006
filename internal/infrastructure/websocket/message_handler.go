package websocket

import (
	"encoding/json"
	"time"
)

// WebSocket Message Types
const (
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeSubscribed  = "subscribed"
	MessageTypeError       = "error"
)

// WSMessage is the envelope for both directions. Channel is a mission ID.
type WSMessage struct {
	Type      string      `json:"type"`
	Channel   string      `json:"channel,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// HandleClientMessage processes incoming WebSocket messages
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var msg WSMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		m.log.Debug("invalid client message", "uid", client.UserID, "error", err)
		m.reply(client, MessageTypeError, "", ErrorData{Message: "Invalid message format"})
		return
	}

	switch msg.Type {
	case MessageTypePing:
		m.reply(client, MessageTypePong, "", nil)

	case MessageTypeSubscribe:
		if msg.Channel == "" {
			m.reply(client, MessageTypeError, "", ErrorData{Message: "channel is required"})
			return
		}
		m.Subscribe(client, msg.Channel)
		m.reply(client, MessageTypeSubscribed, msg.Channel, nil)

	case MessageTypeUnsubscribe:
		m.Unsubscribe(client, msg.Channel)

	default:
		m.reply(client, MessageTypeError, msg.Channel, ErrorData{Message: "Unknown message type: " + msg.Type})
	}
}

func (m *Manager) reply(client *Client, msgType, channel string, data interface{}) {
	payload, err := json.Marshal(WSMessage{
		Type:      msgType,
		Channel:   channel,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if !m.clients[client] {
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}
