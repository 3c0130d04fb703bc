package config

import (
	"os"
	"strconv"
	"strings"
)

// RelayConfig holds the relay server configuration.
type RelayConfig struct {
	Addr            string   `json:"addr"`
	WSPath          string   `json:"ws_path"`
	AllowedOrigins  []string `json:"allowed_origins"`
	SessionSecret   string   `json:"-"`
	SessionCookie   string   `json:"session_cookie"`
	ReadBufferSize  int      `json:"read_buffer_size"`
	WriteBufferSize int      `json:"write_buffer_size"`
}

// DefaultConfig returns the default relay configuration. The WebSocket
// endpoint lives on its own sub-path so relay traffic is distinguishable
// from the application's general HTTP traffic.
func DefaultConfig() *RelayConfig {
	return &RelayConfig{
		Addr:            ":3001",
		WSPath:          "/ws",
		AllowedOrigins:  []string{"http://localhost:3000"},
		SessionCookie:   "session-token",
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// ConfigFromEnv loads relay configuration from environment variables,
// falling back to defaults for any missing values.
func ConfigFromEnv() *RelayConfig {
	cfg := DefaultConfig()

	if addr := os.Getenv("RELAY_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if path := os.Getenv("RELAY_WS_PATH"); path != "" {
		cfg.WSPath = path
	}
	if origins := os.Getenv("RELAY_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitOrigins(origins)
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.SessionSecret = secret
	}
	if cookie := os.Getenv("SESSION_COOKIE"); cookie != "" {
		cfg.SessionCookie = cookie
	}
	if size := os.Getenv("RELAY_READ_BUFFER"); size != "" {
		if n, err := strconv.Atoi(size); err == nil && n > 0 {
			cfg.ReadBufferSize = n
		}
	}
	if size := os.Getenv("RELAY_WRITE_BUFFER"); size != "" {
		if n, err := strconv.Atoi(size); err == nil && n > 0 {
			cfg.WriteBufferSize = n
		}
	}
	return cfg
}

// OriginAllowed reports whether a handshake Origin header is acceptable.
// An empty origin (non-browser client) and the "*" wildcard are allowed.
func (c *RelayConfig) OriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
