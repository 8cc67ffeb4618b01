package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kost-service/internal/mocks"
	"kost-service/internal/models"
	"kost-service/internal/repositories"
	"kost-service/internal/services"
	"kost-service/internal/session"
)

type nopBroadcaster struct{ count int }

func (b *nopBroadcaster) Publish(models.ChatMessage) { b.count++ }

func setupChatRouter(s session.Session, profiles *mocks.ProfileRepositoryMock, messages *mocks.MessageRepositoryMock, b services.Broadcaster) http.Handler {
	handler := NewChatHandler(services.NewChatService(profiles, messages, b, nil, nil), nil)
	r := newTestRouter(&s)
	r.GET("/chat/contacts", handler.ListContacts)
	r.GET("/chat/conversations/:contact_id/messages", handler.GetMessages)
	r.POST("/chat/conversations/:contact_id/messages", handler.PostMessage)
	return r
}

func TestListContactsForTenantPreselectsFirstOwner(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	router := setupChatRouter(tenantSession, profiles, nil, nil)
	profiles.On("ListProfilesByRole", mock.Anything, models.RoleOwner).
		Return([]models.Profile{{ID: ownerID, FullName: "Bu Kost", Role: models.RoleOwner}}, nil).Once()

	rec := perform(router, http.MethodGet, "/chat/contacts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, ownerID, resp["selected_contact_id"])
	assert.Len(t, resp["contacts"], 1)
}

func TestListContactsFailure(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	router := setupChatRouter(ownerSession, profiles, nil, nil)
	profiles.On("ListProfilesByRole", mock.Anything, models.RoleTenant).Return(nil, assert.AnError).Once()

	assert.Equal(t, http.StatusInternalServerError, perform(router, http.MethodGet, "/chat/contacts", "").Code)
}

func TestGetMessages(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	router := setupChatRouter(ownerSession, nil, messages, nil)
	messages.On("ListConversation", mock.Anything, ownerID, tenantID).
		Return([]models.ChatMessage{{ID: "m-1", SenderID: tenantID, ReceiverID: ownerID, Message: "permisi"}}, nil).Once()

	rec := perform(router, http.MethodGet, "/chat/conversations/"+tenantID+"/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["messages"], 1)
	messages.AssertExpectations(t)
}

func TestPostMessage(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	b := &nopBroadcaster{}
	router := setupChatRouter(tenantSession, profiles, messages, b)
	path := "/chat/conversations/" + ownerID + "/messages"

	profiles.On("GetProfile", mock.Anything, ownerID).Return(models.Profile{ID: ownerID, Role: models.RoleOwner}, nil).Once()
	messages.On("CreateMessage", mock.Anything, mock.Anything).
		Return(models.ChatMessage{ID: "m-2", SenderID: tenantID, ReceiverID: ownerID, Message: "halo"}, nil).Once()

	rec := perform(router, http.MethodPost, path, `{"message":"  halo  "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, b.count)

	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodPost, path, `{"message":"   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodPost, "/chat/conversations/"+tenantID+"/messages", `{"message":"hi"}`).Code)
	messages.AssertExpectations(t)
}

func TestPostMessageContactChecks(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	router := setupChatRouter(ownerSession, profiles, new(mocks.MessageRepositoryMock), nil)

	profiles.On("GetProfile", mock.Anything, tenantID).Return(nil, repositories.ErrProfileNotFound).Once()
	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodPost, "/chat/conversations/"+tenantID+"/messages", `{"message":"hi"}`).Code)

	otherOwner := "11111111-2222-4333-8444-555555555555"
	profiles.On("GetProfile", mock.Anything, otherOwner).Return(models.Profile{ID: otherOwner, Role: models.RoleOwner}, nil).Once()
	assert.Equal(t, http.StatusForbidden, perform(router, http.MethodPost, "/chat/conversations/"+otherOwner+"/messages", `{"message":"hi"}`).Code)
}

func TestPostMessageBookingReference(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	router := setupChatRouter(tenantSession, profiles, messages, &nopBroadcaster{})
	path := "/chat/conversations/" + ownerID + "/messages"

	rec := perform(router, http.MethodPost, path, `{"message":"hi","booking_id":"nope"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "booking_id")
	profiles.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
	messages.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)

	profiles.On("GetProfile", mock.Anything, ownerID).Return(models.Profile{ID: ownerID, Role: models.RoleOwner}, nil).Once()
	messages.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m models.ChatMessage) bool {
		return m.BookingID != nil && *m.BookingID == bookID
	})).Return(nil, repositories.ErrBookingNotFound).Once()

	rec = perform(router, http.MethodPost, path, `{"message":"hi","booking_id":"`+bookID+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	messages.AssertExpectations(t)
}
