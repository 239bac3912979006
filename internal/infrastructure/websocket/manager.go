package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"motiv8/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
	publishBuffer  = 256
)

// Client represents a WebSocket connection client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

type publication struct {
	channel string
	message []byte
}

// Manager fans out mission events to the clients subscribed to each mission
// channel. Delivery is best effort: slow clients are dropped and nothing is
// replayed.
type Manager struct {
	clients    map[*Client]bool
	channels   map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	publish    chan publication
	mutex      sync.RWMutex
	log        logger.Logger
}

// NewManager creates a new WebSocket connection manager
func NewManager(log logger.Logger) *Manager {
	return &Manager{
		clients:    make(map[*Client]bool),
		channels:   make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		publish:    make(chan publication, publishBuffer),
		log:        log,
	}
}

// Start runs the manager's main loop in a goroutine until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client] = true
				m.mutex.Unlock()
				m.log.Debug("client registered", "uid", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				m.removeLocked(client)
				m.mutex.Unlock()
				m.log.Debug("client unregistered", "uid", client.UserID)

			case p := <-m.publish:
				m.deliver(p)

			case <-ctx.Done():
				m.mutex.Lock()
				for client := range m.clients {
					m.removeLocked(client)
				}
				m.mutex.Unlock()
				return
			}
		}
	}()
}

func (m *Manager) removeLocked(client *Client) {
	if _, ok := m.clients[client]; !ok {
		return
	}
	delete(m.clients, client)
	for name, subs := range m.channels {
		delete(subs, client)
		if len(subs) == 0 {
			delete(m.channels, name)
		}
	}
	close(client.Send)
}

func (m *Manager) deliver(p publication) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for client := range m.channels[p.channel] {
		select {
		case client.Send <- p.message:
		default:
			m.log.Warn("dropping slow client", "uid", client.UserID, "channel", p.channel)
			m.removeLocked(client)
		}
	}
}

func (m *Manager) Subscribe(client *Client, channel string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	subs, ok := m.channels[channel]
	if !ok {
		subs = make(map[*Client]bool)
		m.channels[channel] = subs
	}
	subs[client] = true
}

func (m *Manager) Unsubscribe(client *Client, channel string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if subs, ok := m.channels[channel]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(m.channels, channel)
		}
	}
}

// Subscribers reports how many clients listen on a channel.
func (m *Manager) Subscribers(channel string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.channels[channel])
}

// Publish queues an event for every subscriber of channel. It never blocks;
// when the queue is full the event is dropped.
func (m *Manager) Publish(channel, event string, payload interface{}) {
	message, err := json.Marshal(WSMessage{
		Type:      event,
		Channel:   channel,
		Data:      payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		m.log.Error("failed to encode event", "channel", channel, "event", event, "error", err)
		return
	}

	select {
	case m.publish <- publication{channel: channel, message: message}:
	default:
		m.log.Warn("publish queue full, dropping event", "channel", channel, "event", event)
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.log.Warn("unexpected close", "uid", c.UserID, "error", err)
			}
			break
		}

		m.HandleClientMessage(c, message)
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
