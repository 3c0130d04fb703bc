package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":3001", cfg.Addr)
	assert.Equal(t, "/ws", cfg.WSPath)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "session-token", cfg.SessionCookie)
	assert.Empty(t, cfg.SessionSecret)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("RELAY_ADDR", ":9000")
	t.Setenv("RELAY_WS_PATH", "/api/socket")
	t.Setenv("RELAY_ALLOWED_ORIGINS", "https://chat.example.com, https://admin.example.com")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("RELAY_READ_BUFFER", "4096")

	cfg := ConfigFromEnv()
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "/api/socket", cfg.WSPath)
	assert.Equal(t, []string{"https://chat.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.Equal(t, 4096, cfg.ReadBufferSize)
}

func TestConfigFromEnvInvalidBuffer(t *testing.T) {
	t.Setenv("RELAY_READ_BUFFER", "not-a-number")

	cfg := ConfigFromEnv()
	assert.Equal(t, 1024, cfg.ReadBufferSize) // falls back to default
}

func TestOriginAllowed(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.OriginAllowed("http://localhost:3000"))
	assert.True(t, cfg.OriginAllowed("HTTP://LOCALHOST:3000"))
	assert.True(t, cfg.OriginAllowed(""), "non-browser clients send no origin")
	assert.False(t, cfg.OriginAllowed("http://evil.example.com"))

	cfg.AllowedOrigins = []string{"*"}
	assert.True(t, cfg.OriginAllowed("http://anywhere.example.com"))
}
