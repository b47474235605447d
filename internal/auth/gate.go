package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"batchdesk/internal/cache"
	applog "batchdesk/internal/log"
)

// Session is an authenticated admin session.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// DefaultMaxSessions bounds the number of live sessions; the least recently
// used one is dropped when the bound is hit.
const DefaultMaxSessions = 256

// Gate issues and resolves sessions for one credential provider.
type Gate struct {
	creds    CredentialProvider
	sessions *cache.LRUCache[Session]
	ttl      time.Duration
	now      func() time.Time
	logger   *applog.Logger
}

type GateOption func(*Gate)

// WithTTL makes sessions expire; zero keeps them until logout or eviction.
func WithTTL(ttl time.Duration) GateOption {
	return func(g *Gate) { g.ttl = ttl }
}

func WithGateClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

func WithGateLogger(l *applog.Logger) GateOption {
	return func(g *Gate) { g.logger = l.WithComponent(applog.ComponentAuth) }
}

func NewGate(creds CredentialProvider, opts ...GateOption) *Gate {
	g := &Gate{
		creds:    creds,
		sessions: cache.NewLRUCache[Session](DefaultMaxSessions, 0),
		now:      time.Now,
		logger:   applog.FromContext(context.Background()).WithComponent(applog.ComponentAuth),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.sessions.WithClock(g.now)
	return g
}

// Login verifies the pair and opens a session.
func (g *Gate) Login(ctx context.Context, username, password string) (Session, error) {
	if err := g.creds.Verify(ctx, username, password); err != nil {
		g.logger.WarnContext(ctx, "Login rejected", applog.FieldUsername, username, applog.FieldOperation, applog.OpLogin)
		return Session{}, fmt.Errorf("login: %w", err)
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return Session{}, fmt.Errorf("new session id: %w", err)
	}
	s := Session{ID: id.String(), Username: username, CreatedAt: g.now().UTC()}
	g.sessions.SetWithTTL(s.ID, s, g.ttl)
	g.logger.InfoContext(ctx, "Login accepted", applog.FieldUsername, username, applog.FieldOperation, applog.OpLogin)
	return s, nil
}

// Logout drops the session. Unknown ids are ignored.
func (g *Gate) Logout(ctx context.Context, id string) {
	if s, ok := g.sessions.Get(id); ok {
		g.logger.InfoContext(ctx, "Logged out", applog.FieldUsername, s.Username, applog.FieldOperation, applog.OpLogout)
	}
	g.sessions.Delete(id)
}

// Lookup resolves a session id as stored in the cookie.
func (g *Gate) Lookup(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}
	return g.sessions.Get(id)
}

// Sessions exposes the store so expired entries can be swept.
func (g *Gate) Sessions() cache.Cleaner {
	return g.sessions
}
