package ws

import (
	"time"

	"github.com/google/uuid"
)

type ConnInfo struct {
	ConnID      string
	UserID      string
	ContactID   string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func newConnID() string {
	return uuid.NewString()
}
