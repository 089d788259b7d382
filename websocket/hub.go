package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub tracks live connections per account and fans events out to them.
// Delivery is best effort: a client whose buffer is full misses the event.
type Hub struct {
	clients    map[string]*Client
	userConns  map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type ClientMessage struct {
	Action string `json:"action"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		userConns:  make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
	}
}

// Run processes registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			if h.userConns[client.UserID] == nil {
				h.userConns[client.UserID] = make(map[*Client]bool)
			}
			h.userConns[client.UserID][client] = true
			h.mu.Unlock()

			logrus.WithFields(logrus.Fields{
				"client":  client.ID,
				"account": client.UserID,
			}).Debug("websocket client registered")

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.mu.Lock()
			for _, client := range h.clients {
				close(client.Send)
			}
			h.clients = make(map[string]*Client)
			h.userConns = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	if h.userConns[client.UserID] != nil {
		delete(h.userConns[client.UserID], client)
		if len(h.userConns[client.UserID]) == 0 {
			delete(h.userConns, client.UserID)
		}
	}
	close(client.Send)

	logrus.WithFields(logrus.Fields{
		"client":  client.ID,
		"account": client.UserID,
	}).Debug("websocket client unregistered")
}

// Publish sends event to every connected client.
func (h *Hub) Publish(event string, payload interface{}) {
	data, err := json.Marshal(&Message{Event: event, Data: payload})
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("failed to encode event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		h.deliver(client, data)
	}
}

// Notify sends event to every connection of one account.
func (h *Hub) Notify(userID, event string, payload interface{}) {
	h.SendToUsers([]string{userID}, &Message{Event: event, Data: payload})
}

func (h *Hub) SendToUsers(userIDs []string, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).WithField("event", msg.Event).Error("failed to encode event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, userID := range userIDs {
		for client := range h.userConns[userID] {
			h.deliver(client, data)
		}
	}
}

func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		logrus.WithField("client", client.ID).Warn("websocket client too slow, dropping event")
	}
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}
