package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T, b *fakeBackend) *Hub {
	t.Helper()
	creds := NewMemoryCredentialStore()
	api := NewPublicClient(b.srv.URL, b.srv.Client(), zap.NewNop())
	resolver := NewAvailabilityResolver(api, zap.NewNop())
	return NewHub(b.srv.URL, b.srv.Client(), creds, resolver, zap.NewNop(), 0)
}

func TestHubReusesSession(t *testing.T) {
	b := newFakeBackend(t)
	h := newTestHub(t, b)
	ctx := context.Background()

	first := h.Get(ctx, "sess-a")
	second := h.Get(ctx, "sess-a")
	assert.Same(t, first, second)

	other := h.Get(ctx, "sess-b")
	assert.NotSame(t, first, other)
}

func TestHubEvictsIdleSessions(t *testing.T) {
	b := newFakeBackend(t)
	h := newTestHub(t, b)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return base }
	stale := h.Get(ctx, "sess-stale")

	// Past the idle TTL, creating another session sweeps the stale one out.
	h.now = func() time.Time { return base.Add(h.idleTTL + time.Minute) }
	h.Get(ctx, "sess-fresh")

	h.mu.RLock()
	_, ok := h.sessions["sess-stale"]
	h.mu.RUnlock()
	assert.False(t, ok)

	// The next touch rebuilds the stale session from scratch.
	rebuilt := h.Get(ctx, "sess-stale")
	assert.NotSame(t, stale, rebuilt)
}

func TestHubCapsSessions(t *testing.T) {
	b := newFakeBackend(t)
	h := newTestHub(t, b)
	h.limit = 2
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	now := base
	h.now = func() time.Time { return now }

	h.Get(ctx, "sess-a")
	now = base.Add(time.Minute)
	h.Get(ctx, "sess-b")

	// Touching a makes b the least recently seen.
	now = base.Add(2 * time.Minute)
	h.Get(ctx, "sess-a")

	now = base.Add(3 * time.Minute)
	h.Get(ctx, "sess-c")

	h.mu.RLock()
	defer h.mu.RUnlock()
	require.Len(t, h.sessions, 2)
	assert.Contains(t, h.sessions, "sess-a")
	assert.Contains(t, h.sessions, "sess-c")
	assert.NotContains(t, h.sessions, "sess-b")
}
