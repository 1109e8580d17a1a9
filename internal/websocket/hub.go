package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"ai-docqa-be/internal/constant"
	"ai-docqa-be/internal/dto"
	"ai-docqa-be/internal/pkg/logger"
	"ai-docqa-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans pipeline progress out to websocket subscribers. Clients subscribe
// per session key, so a browser tab only sees the run it is watching.
type Hub struct {
	// Registered clients map: session key -> list of clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionKey] = append(h.clients[client.SessionKey], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_key": client.SessionKey})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionKey]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionKey] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionKey]) == 0 {
					delete(h.clients, client.SessionKey)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"session_key": client.SessionKey})
				}
			}
			h.mu.Unlock()
		}
	}
}

// OnTransition implements the pipeline observer. It must not block the run,
// so slow clients are dropped rather than waited on.
func (h *Hub) OnTransition(sessionKey string, state rag.RunState) {
	sessionId, err := uuid.Parse(sessionKey)
	if err != nil {
		return
	}

	progress := dto.PipelineProgressDTO{
		SessionId: sessionId,
		State:     string(state),
		Timestamp: time.Now(),
	}
	data, _ := json.Marshal(map[string]interface{}{
		"type": "pipeline_progress",
		"data": progress,
	})

	h.sendLocal(sessionKey, data)

	// Publish to Redis for other instances
	if h.rdb != nil {
		payload := map[string]interface{}{
			"session_key": sessionKey,
			"message":     data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), constant.PipelineProgressChannel, jsonPayload)
	}
}

func (h *Hub) sendLocal(sessionKey string, data []byte) {
	h.mu.RLock()
	clients, ok := h.clients[sessionKey]
	h.mu.RUnlock()
	if !ok {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Run's unregister handler is the sole closer of Send; closing
			// here too would double-close on a slow client.
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"session_key": sessionKey})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the progress channel and delivers to the
	// session keys it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, constant.PipelineProgressChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			SessionKey string          `json:"session_key"`
			Message    json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.sendLocal(payload.SessionKey, payload.Message)
	}
}
