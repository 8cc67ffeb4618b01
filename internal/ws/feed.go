package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"kost-service/internal/db"
	"kost-service/internal/models"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// Feed relays chat_messages inserts announced through LISTEN/NOTIFY to the hub, so every
// instance delivers messages written by any other instance.
type Feed struct {
	dsn    string
	hub    *Hub
	logger *zap.Logger
}

func NewFeed(dsn string, hub *Hub, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{dsn: dsn, hub: hub, logger: logger}
}

// Run listens until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) error {
	listener := pq.NewListener(f.dsn, listenerMinReconnect, listenerMaxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			f.logger.Warn("chat feed listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	defer listener.Close()

	if err := listener.Listen(db.ChatInsertChannel); err != nil {
		return fmt.Errorf("listen %s: %w", db.ChatInsertChannel, err)
	}
	f.logger.Info("chat feed listening", zap.String("channel", db.ChatInsertChannel))

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; notifications sent meanwhile are lost.
			if n == nil {
				continue
			}
			msg, err := decodeNotification(n.Extra)
			if err != nil {
				f.logger.Warn("chat feed payload", zap.Error(err))
				continue
			}
			f.hub.Publish(msg)
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				f.logger.Warn("chat feed ping", zap.Error(err))
			}
		}
	}
}

func decodeNotification(extra string) (models.ChatMessage, error) {
	var msg models.ChatMessage
	if err := json.Unmarshal([]byte(extra), &msg); err != nil {
		return models.ChatMessage{}, fmt.Errorf("decode chat notification: %w", err)
	}
	if msg.ID == "" || msg.SenderID == "" || msg.ReceiverID == "" {
		return models.ChatMessage{}, fmt.Errorf("decode chat notification: missing identifiers")
	}
	return msg, nil
}
