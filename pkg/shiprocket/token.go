package shiprocket

import (
	"context"
	"sync"
	"time"
)

// refreshMargin makes a token count as expired slightly before the server says so.
const refreshMargin = 5 * time.Minute

type Token struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t Token) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt.Add(-refreshMargin))
}

// TokenCache stores the bearer token between calls. Implementations must be safe
// for concurrent use.
type TokenCache interface {
	Get(ctx context.Context) (Token, bool)
	Set(ctx context.Context, token Token) error
	Invalidate(ctx context.Context) error
}

type MemoryTokenCache struct {
	mu    sync.RWMutex
	token Token
	now   func() time.Time
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{now: time.Now}
}

func (m *MemoryTokenCache) Get(_ context.Context) (Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.token.Valid(m.now()) {
		return Token{}, false
	}
	return m.token, true
}

func (m *MemoryTokenCache) Set(_ context.Context, token Token) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokenCache) Invalidate(_ context.Context) error {
	m.mu.Lock()
	m.token = Token{}
	m.mu.Unlock()
	return nil
}
