package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"kost-service/internal/models"
)

// Subscription is a live feed of one conversation. It must be closed by its owner.
type Subscription struct {
	conn      *websocket.Conn
	messages  chan models.ChatMessage
	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// Subscribe opens the websocket feed of the conversation with contactID.
func (c *Client) Subscribe(ctx context.Context, contactID string) (*Subscription, error) {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/ws/conversations/" + url.PathEscape(contactID)
	q := url.Values{}
	q.Set("token", c.Token())
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	u.RawQuery = q.Encode()

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			return nil, &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("subscribe: %v", err)}
		}
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	s := &Subscription{
		conn:     conn,
		messages: make(chan models.ChatMessage, 16),
		done:     make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Messages is closed when the feed ends; Err then reports why.
func (s *Subscription) Messages() <-chan models.ChatMessage {
	return s.messages
}

func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close releases the connection. It is safe to call more than once.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}

func (s *Subscription) readLoop() {
	defer close(s.messages)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}

		var event models.ConversationEvent
		if err := json.Unmarshal(data, &event); err != nil || event.Type != "message" || event.Message == nil {
			continue
		}
		select {
		case s.messages <- *event.Message:
		case <-s.done:
			return
		}
	}
}
