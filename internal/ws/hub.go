package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kost-service/internal/models"
	"kost-service/internal/observability"
)

const (
	wsKind       = "conversation"
	wsRoutingKey = "ws_events.conversations"
	writeTimeout = 10 * time.Second
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// sendBuffer is how many events may queue for one connection before it is dropped as too slow.
const sendBuffer = 16

type subscriber struct {
	conn Conn
	info ConnInfo
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newSubscriber(conn Conn, info ConnInfo) *subscriber {
	return &subscriber{
		conn: conn,
		info: info,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

// Hub maintains active conversation subscriptions keyed by profile pair.
type Hub struct {
	conversations map[string]map[Conn]*subscriber
	mu            sync.RWMutex
	sink          *observability.EventSink
	logger        *zap.Logger
}

// NewHub creates an empty hub. sink may be nil.
func NewHub(sink *observability.EventSink, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		conversations: make(map[string]map[Conn]*subscriber),
		sink:          sink,
		logger:        logger,
	}
}

// PairKey identifies the conversation between two profiles regardless of direction.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// Add registers a connection for the conversation between info.UserID and info.ContactID.
func (h *Hub) Add(conn Conn, info ConnInfo) {
	key := PairKey(info.UserID, info.ContactID)
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conversations[key]; !ok {
		h.conversations[key] = make(map[Conn]*subscriber)
	}
	if old, ok := h.conversations[key][conn]; ok {
		old.stop()
	}
	sub := newSubscriber(conn, info)
	h.conversations[key][conn] = sub
	go h.writeLoop(key, sub)
}

// writeLoop is the only writer for a connection. It exits when the subscriber is removed or a
// write fails.
func (h *Hub) writeLoop(key string, sub *subscriber) {
	for {
		select {
		case <-sub.done:
			return
		case payload := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Warn("websocket write error", zap.String("conn_id", sub.info.ConnID), zap.Error(err))
				h.drop(key, sub, err.Error())
				return
			}
		}
	}
}

// drop closes a subscriber's connection and unregisters it.
func (h *Hub) drop(key string, sub *subscriber, reason string) {
	sub.stop()
	sub.conn.Close()
	if h.removeSubscriber(key, sub) {
		observability.DecWSActive(wsKind)
		h.publishWSEvent(context.Background(), "ws_error", sub.info, reason)
	}
}

// Remove drops a connection. It reports whether the connection was registered.
func (h *Hub) Remove(key string, conn Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.conversations[key]
	if !ok {
		return false
	}
	sub, ok := subs[conn]
	if !ok {
		return false
	}
	sub.stop()
	delete(subs, conn)
	if len(subs) == 0 {
		delete(h.conversations, key)
	}
	return true
}

func (h *Hub) removeSubscriber(key string, sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.conversations[key]
	if subs[sub.conn] != sub {
		return false
	}
	delete(subs, sub.conn)
	if len(subs) == 0 {
		delete(h.conversations, key)
	}
	return true
}

// Subscribers returns the number of connections watching a conversation.
func (h *Hub) Subscribers(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conversations[key])
}

// Publish queues a stored message for everyone watching its sender/receiver pair. It never
// blocks on a connection; a subscriber whose queue is full is dropped.
func (h *Hub) Publish(msg models.ChatMessage) {
	key := PairKey(msg.SenderID, msg.ReceiverID)

	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.conversations[key]))
	for _, sub := range h.conversations[key] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(models.ConversationEvent{Type: "message", Message: &msg})
	if err != nil {
		h.logger.Error("encode conversation event", zap.Error(err))
		return
	}
	for _, sub := range subs {
		select {
		case sub.send <- payload:
		default:
			h.logger.Warn("websocket subscriber too slow", zap.String("conn_id", sub.info.ConnID))
			h.drop(key, sub, "send buffer full")
		}
	}
}

func (h *Hub) publishWSEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	observability.IncWSEvent(wsKind, event)
	h.sink.PublishEvent(ctx, wsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"kind":        wsKind,
				"contact_id":  info.ContactID,
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":    info.UserID,
				"device_id":  info.DeviceID,
				"ip":         info.IP,
				"request_id": info.RequestID,
				"trace_id":   info.TraceID,
			},
		},
	})
}
