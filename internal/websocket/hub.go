package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"cognisense-backend/internal/logger"
	"cognisense-backend/internal/models"
)

const (
	channelPrefix = "user_updates:"
	writeTimeout  = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// TokenParser verifies a bearer token and returns its user id.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans live activity updates out to each user's open dashboards. With
// Redis, updates travel over per-user pub/sub channels so any instance can
// publish; without it they are delivered in-process.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*client
	redisClient *redis.Client
	auth        TokenParser
	cancelFuncs map[string]context.CancelFunc
	log         *logger.Logger
}

func NewHub(redisClient *redis.Client, auth TokenParser, log *logger.Logger) *Hub {
	return &Hub{
		connections: make(map[string][]*client),
		redisClient: redisClient,
		auth:        auth,
		cancelFuncs: make(map[string]context.CancelFunc),
		log:         logger.OrNop(log),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := h.auth.ParseToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn}
	h.registerConnection(userID, c)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(userID, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) registerConnection(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[userID] = append(h.connections[userID], c)

	// First connection for this user starts the subscription
	if h.redisClient != nil && len(h.connections[userID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[userID] = cancel
		go h.subscribeToPubSub(ctx, userID)
	}

	h.log.Debug("WebSocket connected", "user_id", userID, "total", len(h.connections[userID]))
}

func (h *Hub) unregisterConnection(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	conns := h.connections[userID]
	for i, existing := range conns {
		if existing == c {
			h.connections[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[userID]) == 0 {
		delete(h.connections, userID)
		if cancel, ok := h.cancelFuncs[userID]; ok {
			cancel()
			delete(h.cancelFuncs, userID)
		}
	}

	h.log.Debug("WebSocket disconnected", "user_id", userID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, userID string) {
	pubsub := h.redisClient.Subscribe(ctx, channelPrefix+userID)
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
			h.broadcast(userID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(userID string, data []byte) {
	h.mu.RLock()
	conns := append([]*client(nil), h.connections[userID]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			h.log.Debug("WebSocket write failed", "user_id", userID, "error", err)
		}
	}
}

// ActivityUpdate is the payload of an activity_ingested message.
type ActivityUpdate struct {
	ID                 string             `json:"id"`
	URL                string             `json:"url"`
	Domain             string             `json:"domain"`
	Title              *string            `json:"title,omitempty"`
	DurationSeconds    *float64           `json:"duration_seconds,omitempty"`
	ClassifiedCategory *string            `json:"classified_category,omitempty"`
	CategoryGroup      *string            `json:"category_group,omitempty"`
	Sentiment          *models.LabelScore `json:"sentiment,omitempty"`
	ReceivedAt         time.Time          `json:"received_at"`
}

// PublishActivity notifies the user's dashboards of a newly ingested record.
// Failures are logged only.
func (h *Hub) PublishActivity(ctx context.Context, userID string, rec *models.EnrichedRecord) {
	data, err := json.Marshal(models.WSMessage{
		Type: models.WSActivityIngested,
		Payload: ActivityUpdate{
			ID:                 rec.ID.String(),
			URL:                rec.URL,
			Domain:             rec.Domain,
			Title:              rec.Title,
			DurationSeconds:    rec.DurationSeconds,
			ClassifiedCategory: rec.ClassifiedCategory,
			CategoryGroup:      rec.CategoryGroup,
			Sentiment:          rec.Sentiment,
			ReceivedAt:         rec.ReceivedAt,
		},
	})
	if err != nil {
		h.log.Warn("Failed to encode activity update", "error", err)
		return
	}

	if h.redisClient != nil {
		err := h.redisClient.Publish(ctx, channelPrefix+userID, string(data)).Err()
		if err == nil {
			return
		}
		h.log.Warn("Redis publish failed, delivering locally", "user_id", userID, "error", err)
	}
	h.broadcast(userID, data)
}

// SendToUser sends a message directly to a user's local connections.
func (h *Hub) SendToUser(userID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.broadcast(userID, data)
}

func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Close drops every connection and subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conns := range h.connections {
		for _, c := range conns {
			c.conn.Close()
		}
		delete(h.connections, userID)
	}
	for userID, cancel := range h.cancelFuncs {
		cancel()
		delete(h.cancelFuncs, userID)
	}
}
