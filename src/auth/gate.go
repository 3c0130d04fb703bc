package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/valyala/fasthttp"
)

var (
	// ErrNoToken is returned when the handshake carries no session token.
	ErrNoToken = errors.New("no session token")
	// ErrInvalidToken is returned when the token fails verification.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("session token expired")
)

// Identity is an authenticated user resolved at handshake time. The relay
// binds it to the connection once; nothing received later can change it.
type Identity struct {
	UserID string
	Email  string
}

// Config holds session verification settings. The secret must match the
// one the identity provider signs session tokens with.
type Config struct {
	Secret     string
	CookieName string
	Issuer     string
}

// DefaultConfig returns gate defaults. The secret has no default; an empty
// secret rejects every handshake.
func DefaultConfig() Config {
	return Config{
		CookieName: "session-token",
		Issuer:     "webchat",
	}
}

// sessionClaims mirrors the claims the identity provider puts in session
// tokens.
type sessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Gate validates that an incoming connection is tied to an authenticated
// identity before any join or publish is allowed.
type Gate struct {
	cfg Config
}

// NewGate creates a session gate with the given configuration.
func NewGate(cfg Config) *Gate {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultConfig().CookieName
	}
	return &Gate{cfg: cfg}
}

// Authenticate resolves the identity behind a WebSocket handshake request.
// The session token is read from the configured cookie, falling back to the
// "token" query parameter for clients that cannot set cookies.
func (g *Gate) Authenticate(ctx *fasthttp.RequestCtx) (Identity, error) {
	token := string(ctx.Request.Header.Cookie(g.cfg.CookieName))
	if token == "" {
		token = string(ctx.QueryArgs().Peek("token"))
	}
	if token == "" {
		return Identity{}, ErrNoToken
	}
	return g.Verify(token)
}

// Verify checks the token signature and expiry and returns the identity it
// carries. An unconfigured secret never verifies anything: HMAC with an
// empty key is a valid signature scheme, so without this guard a forged
// token signed with the empty key would pass.
func (g *Gate) Verify(tokenString string) (Identity, error) {
	if g.cfg.Secret == "" {
		return Identity{}, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(g.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: userID, Email: claims.Email}, nil
}

// IssueToken signs a session token for a user. The relay itself never
// issues tokens in production; this exists for tests and local tooling.
func (g *Gate) IssueToken(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.cfg.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(g.cfg.Secret))
}
