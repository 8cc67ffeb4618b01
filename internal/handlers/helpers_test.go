package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"kost-service/internal/models"
	"kost-service/internal/session"
)

const (
	tenantID = "5b0c3c8e-4f7a-4f44-9d6e-0a5f2b1c1a01"
	ownerID  = "9e7d1f20-3b6a-4c1e-8f5d-7c2b4a6e0b01"
	roomID   = "3f1d2c4b-5a69-4877-8a9b-0c1d2e3f4a5b"
	bookID   = "7a6b5c4d-3e2f-4a1b-9c8d-7e6f5a4b3c2d"
)

var (
	tenantSession = session.Session{UserID: tenantID, Role: models.RoleTenant}
	ownerSession  = session.Session{UserID: ownerID, Role: models.RoleOwner}
)

func newTestRouter(s *session.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if s != nil {
		sess := *s
		r.Use(func(c *gin.Context) {
			session.Set(c, sess)
			c.Next()
		})
	}
	return r
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
