package client

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"kost-service/internal/models"
	"kost-service/internal/services"
)

var (
	ErrNoContact  = errors.New("no conversation selected")
	ErrEmptyDraft = errors.New("message is empty")
)

// Conversation is the chat view for one contact at a time. It owns the live subscription
// of the selected contact and releases it before switching to another one.
type Conversation struct {
	client *Client

	mu        sync.Mutex
	gen       uint64
	contactID string
	sub       *Subscription
	messages  []models.ChatMessage
	seen      map[string]struct{}
	draft     string
}

func NewConversation(c *Client) *Conversation {
	return &Conversation{client: c, seen: map[string]struct{}{}}
}

// Select switches to contactID. The feed is opened before history is fetched and both are
// merged by message id, so messages sent in between are neither lost nor duplicated.
func (cv *Conversation) Select(ctx context.Context, contactID string) error {
	cv.mu.Lock()
	cv.releaseLocked()
	cv.gen++
	gen := cv.gen
	cv.contactID = contactID
	cv.messages = nil
	cv.seen = map[string]struct{}{}
	cv.draft = ""
	cv.mu.Unlock()

	sub, err := cv.client.Subscribe(ctx, contactID)
	if err != nil {
		return err
	}

	cv.mu.Lock()
	if gen != cv.gen {
		cv.mu.Unlock()
		sub.Close()
		return ErrStale
	}
	cv.sub = sub
	cv.mu.Unlock()
	go cv.pump(gen, sub)

	history, err := cv.client.Messages(ctx, contactID)
	if err != nil {
		return err
	}
	cv.merge(gen, history...)
	return nil
}

func (cv *Conversation) pump(gen uint64, sub *Subscription) {
	for msg := range sub.Messages() {
		cv.merge(gen, msg)
	}
}

func (cv *Conversation) merge(gen uint64, msgs ...models.ChatMessage) {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	if gen != cv.gen {
		return
	}
	added := false
	for _, msg := range msgs {
		if _, ok := cv.seen[msg.ID]; ok {
			continue
		}
		cv.seen[msg.ID] = struct{}{}
		cv.messages = append(cv.messages, msg)
		added = true
	}
	if added {
		sort.SliceStable(cv.messages, func(i, j int) bool {
			return cv.messages[i].CreatedAt.Before(cv.messages[j].CreatedAt)
		})
	}
}

func (cv *Conversation) ContactID() string {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.contactID
}

// Messages returns the conversation in ascending creation order.
func (cv *Conversation) Messages() []models.ChatMessage {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	out := make([]models.ChatMessage, len(cv.messages))
	copy(out, cv.messages)
	return out
}

func (cv *Conversation) SetDraft(text string) {
	cv.mu.Lock()
	cv.draft = text
	cv.mu.Unlock()
}

func (cv *Conversation) Draft() string {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.draft
}

// Send posts the draft. On failure the draft stays for a retry; on success it is cleared
// unless it was edited meanwhile.
func (cv *Conversation) Send(ctx context.Context) (models.ChatMessage, error) {
	cv.mu.Lock()
	contactID, draft, gen := cv.contactID, cv.draft, cv.gen
	cv.mu.Unlock()

	if contactID == "" {
		return models.ChatMessage{}, ErrNoContact
	}
	if strings.TrimSpace(draft) == "" {
		return models.ChatMessage{}, ErrEmptyDraft
	}

	msg, err := cv.client.SendMessage(ctx, contactID, services.SendMessageRequest{Message: draft})
	if err != nil {
		return models.ChatMessage{}, err
	}

	cv.mu.Lock()
	if gen == cv.gen && cv.draft == draft {
		cv.draft = ""
	}
	cv.mu.Unlock()
	cv.merge(gen, msg)
	return msg, nil
}

// Close releases the subscription.
func (cv *Conversation) Close() {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	cv.gen++
	cv.releaseLocked()
}

func (cv *Conversation) releaseLocked() {
	if cv.sub != nil {
		cv.sub.Close()
		cv.sub = nil
	}
}
