package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/config"
	redisclient "github.com/drytrack/drytrack-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a session id has expired or was revoked.
var ErrSessionNotFound = errors.New("session not found")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager registers session ids (the JWT jti) against the principal they
// were issued to, so logout can revoke a token before it expires.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	Principal(ctx context.Context, sessionID string) (pkgauth.PrincipalRef, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: client, keyer: client, ttl: ttl}, nil
}

// Open registers a new session for ref and returns its id.
func (m *Manager) Open(ctx context.Context, ref pkgauth.PrincipalRef) (string, error) {
	if ref.ID == 0 {
		return "", fmt.Errorf("principal is required")
	}
	id := NewSessionID()
	if err := m.store.Set(ctx, m.keyer.SessionKey(id), ref.String(), m.ttl); err != nil {
		return "", err
	}
	return id, nil
}

// Principal returns the principal bound to sessionID.
func (m *Manager) Principal(ctx context.Context, sessionID string) (pkgauth.PrincipalRef, error) {
	if strings.TrimSpace(sessionID) == "" {
		return pkgauth.PrincipalRef{}, ErrSessionNotFound
	}
	stored, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return pkgauth.PrincipalRef{}, ErrSessionNotFound
		}
		return pkgauth.PrincipalRef{}, err
	}
	return pkgauth.ParsePrincipalRef(stored)
}

// Revoke deletes the session mapping.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// TTL is the lifetime applied to new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// NewSessionID produces the identifier used as the JWT jti and Redis key.
func NewSessionID() string {
	return uuid.NewString()
}
