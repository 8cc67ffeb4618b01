package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, 5, cfg.DashboardRecentLimit)
	assert.Equal(t, RealtimeLocal, cfg.RealtimeMode)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.RoomCacheTTL)
	assert.False(t, cfg.RejectOverlappingBookings)
	assert.Nil(t, cfg.TrustedProxyList())
	assert.Equal(t, 10*time.Minute, cfg.RateLimitIdle)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("REALTIME_MODE", RealtimePostgres)
	t.Setenv("REJECT_OVERLAPPING_BOOKINGS", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,172.16.0.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, RealtimePostgres, cfg.RealtimeMode)
	assert.True(t, cfg.RejectOverlappingBookings)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.1"}, cfg.TrustedProxyList())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRejectsUnknownRealtimeMode(t *testing.T) {
	cfg := Config{JWTSecret: "s", RealtimeMode: "kafka", DashboardRecentLimit: 5}
	assert.Error(t, cfg.Validate())
}
