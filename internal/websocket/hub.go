package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"aura-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// clusterChannel fans DM events out to every API instance.
const clusterChannel = "aura:dm_events"

// Envelope is the frame written to a client.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type clusterMessage struct {
	Origin  string          `json:"origin"`
	Targets []uuid.UUID     `json:"targets"`
	Message json.RawMessage `json:"message"`
}

type Hub struct {
	// UserID -> open connections (one per device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance delivery, nil when running alone
	rdb *redis.Client
	// instance id; frames this instance published are skipped on receipt
	origin string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		origin:     uuid.NewString(),
		logger:     log,
	}
}

// Run owns registration until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("HUB", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register hands a connected client to the hub loop.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
		h.logger.Info("HUB", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// Online reports how many connections userID holds on this instance.
func (h *Hub) Online(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendToUsers delivers one frame to every connection of the given users,
// here and on the other instances.
func (h *Hub) SendToUsers(userIDs []uuid.UUID, kind string, payload interface{}) {
	if len(userIDs) == 0 {
		return
	}
	data, err := json.Marshal(Envelope{Type: kind, Data: payload})
	if err != nil {
		h.logger.Error("HUB", "Failed to encode frame", map[string]interface{}{"type": kind, "error": err.Error()})
		return
	}

	h.deliverLocal(userIDs, data)

	if h.rdb != nil {
		msg, _ := json.Marshal(clusterMessage{Origin: h.origin, Targets: userIDs, Message: data})
		if err := h.rdb.Publish(context.Background(), clusterChannel, msg).Err(); err != nil {
			h.logger.Warn("HUB", "Failed to publish to cluster", map[string]interface{}{"error": err.Error()})
		}
	}
}

// deliverLocal never blocks: a client whose buffer is full misses the frame.
func (h *Hub) deliverLocal(userIDs []uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range userIDs {
		for _, client := range h.clients[id] {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("HUB", "Client Send buffer full, dropping message", map[string]interface{}{"user_id": id})
			}
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleClusterMessage([]byte(msg.Payload))
		}
	}
}

func (h *Hub) handleClusterMessage(raw []byte) {
	var payload clusterMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn("HUB", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.origin {
		return
	}
	h.deliverLocal(payload.Targets, payload.Message)
}
