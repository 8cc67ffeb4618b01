package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanOwnerTransitionOnlyFromPaid(t *testing.T) {
	statuses := []BookingStatus{BookingPending, BookingPaid, BookingConfirmed, BookingCancelled}
	for _, from := range statuses {
		for _, to := range statuses {
			want := from == BookingPaid && (to == BookingConfirmed || to == BookingCancelled)
			assert.Equal(t, want, CanOwnerTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestRoleCounterpart(t *testing.T) {
	assert.Equal(t, RoleOwner, RoleTenant.Counterpart())
	assert.Equal(t, RoleTenant, RoleOwner.Counterpart())
	assert.False(t, Role("admin").Valid())
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-02-15"`), &d))
	assert.Equal(t, "2024-02-15", d.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-02-15"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"15/02/2024"`), &d))
}

func TestDateScanAndDaysUntil(t *testing.T) {
	var in, out Date
	require.NoError(t, in.Scan(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, out.Scan("2024-02-15"))
	assert.Equal(t, 45, in.DaysUntil(out))
	assert.Equal(t, -45, out.DaysUntil(in))
}

func TestMessageVisibility(t *testing.T) {
	msg := ChatMessage{SenderID: "a", ReceiverID: "b"}
	assert.True(t, msg.VisibleTo("a"))
	assert.True(t, msg.VisibleTo("b"))
	assert.False(t, msg.VisibleTo("c"))
}
