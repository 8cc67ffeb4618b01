package client

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kost-service/internal/models"
)

const (
	testAPIKey = "public-key"
	testToken  = "session-token"
	tenantID   = "5b0c3c8e-4f7a-4f44-9d6e-0a5f2b1c1a01"
	ownerID    = "9e7d1f20-3b6a-4c1e-8f5d-7c2b4a6e0b01"
	owner2ID   = "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func chatMsg(id, from, to string, minute int) models.ChatMessage {
	return models.ChatMessage{
		ID:         id,
		SenderID:   from,
		ReceiverID: to,
		Message:    "msg " + id,
		CreatedAt:  base.Add(time.Duration(minute) * time.Minute),
	}
}

// chatServer imitates the chat endpoints of the service.
type chatServer struct {
	t       *testing.T
	history map[string][]models.ChatMessage
	live    map[string][]models.ChatMessage

	mu       sync.Mutex
	opened   []string
	closed   chan string
	failSend bool
}

func newChatServer(t *testing.T) (*chatServer, *Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cs := &chatServer{
		t:       t,
		history: map[string][]models.ChatMessage{},
		live:    map[string][]models.ChatMessage{},
		closed:  make(chan string, 8),
	}

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	r := gin.New()
	r.GET("/chat/conversations/:contact_id/messages", func(c *gin.Context) {
		if c.GetHeader("apikey") != testAPIKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		msgs := cs.history[c.Param("contact_id")]
		if msgs == nil {
			msgs = []models.ChatMessage{}
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	})
	r.POST("/chat/conversations/:contact_id/messages", func(c *gin.Context) {
		var req struct {
			Message string `json:"message"`
		}
		assert.NoError(t, c.ShouldBindJSON(&req))
		cs.mu.Lock()
		fail := cs.failSend
		cs.mu.Unlock()
		if fail {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
			return
		}
		msg := chatMsg("sent-1", tenantID, c.Param("contact_id"), 30)
		msg.Message = req.Message
		c.JSON(http.StatusCreated, gin.H{"message": msg})
	})
	r.GET("/ws/conversations/:contact_id", func(c *gin.Context) {
		if c.Query("token") != testToken || c.Query("apikey") != testAPIKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		contactID := c.Param("contact_id")
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		cs.mu.Lock()
		cs.opened = append(cs.opened, contactID)
		cs.mu.Unlock()

		for _, msg := range cs.live[contactID] {
			msg := msg
			if err := conn.WriteJSON(models.ConversationEvent{Type: "message", Message: &msg}); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cs.closed <- contactID
				return
			}
		}
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, testAPIKey)
	require.NoError(t, err)
	c.SetToken(testToken)
	return cs, c
}

func (cs *chatServer) openedContacts() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]string(nil), cs.opened...)
}
