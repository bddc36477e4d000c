package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// sessionIdleTTL bounds how long an untouched session's in-memory state
	// is kept. The identity survives eviction: it is rebuilt from the
	// persisted credential on the next request.
	sessionIdleTTL = 2 * time.Hour

	// sessionLimit caps the map against cookie-less clients that mint a
	// fresh session per request.
	sessionLimit = 10000
)

// UserSession bundles the per-browser-session pieces: the gateway carrying
// that session's credential, its identity store and its booking flow.
type UserSession struct {
	API     *APIClient
	Session *Session
	Flow    *BookingFlow
}

type sessionEntry struct {
	us       *UserSession
	lastSeen time.Time
}

// Hub hands out UserSessions keyed by session-cookie ID, creating and
// restoring them on first touch and evicting idle ones.
type Hub struct {
	baseURL     string
	http        *http.Client
	creds       CredentialStore
	resolver    *AvailabilityResolver
	logger      *zap.Logger
	settleDelay time.Duration
	idleTTL     time.Duration
	limit       int
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewHub(baseURL string, httpClient *http.Client, creds CredentialStore, resolver *AvailabilityResolver, logger *zap.Logger, settleDelay time.Duration) *Hub {
	return &Hub{
		baseURL:     baseURL,
		http:        httpClient,
		creds:       creds,
		resolver:    resolver,
		logger:      logger,
		settleDelay: settleDelay,
		idleTTL:     sessionIdleTTL,
		limit:       sessionLimit,
		now:         time.Now,
		sessions:    make(map[string]*sessionEntry),
	}
}

func (h *Hub) Resolver() *AvailabilityResolver {
	return h.resolver
}

// Get returns the session bundle, building it and restoring any persisted
// identity the first time the session ID is seen by this process.
func (h *Hub) Get(ctx context.Context, sessionID string) *UserSession {
	now := h.now()

	h.mu.RLock()
	entry, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if ok {
		h.mu.Lock()
		entry.lastSeen = now
		h.mu.Unlock()
		return entry.us
	}

	h.mu.Lock()
	if entry, ok = h.sessions[sessionID]; ok {
		entry.lastSeen = now
		h.mu.Unlock()
		return entry.us
	}
	h.evictLocked(now)

	api := NewAPIClient(h.baseURL, h.http, h.creds, sessionID, h.logger)
	session := NewSession(api, h.logger)
	flow := NewBookingFlow(api, session, h.resolver, h.logger, h.settleDelay)
	us := &UserSession{API: api, Session: session, Flow: flow}
	h.sessions[sessionID] = &sessionEntry{us: us, lastSeen: now}
	h.mu.Unlock()

	// Resolve a persisted credential outside the map lock; Restore only
	// touches the session's own state.
	session.Restore(ctx)
	return us
}

// evictLocked drops sessions idle past the TTL, then the least recently
// seen ones while the map is still at the cap. Callers hold h.mu.
func (h *Hub) evictLocked(now time.Time) {
	for id, entry := range h.sessions {
		if now.Sub(entry.lastSeen) > h.idleTTL {
			delete(h.sessions, id)
		}
	}
	for len(h.sessions) >= h.limit {
		oldestID := ""
		var oldest time.Time
		for id, entry := range h.sessions {
			if oldestID == "" || entry.lastSeen.Before(oldest) {
				oldestID, oldest = id, entry.lastSeen
			}
		}
		h.logger.Warn("session cap reached, evicting least recently seen session",
			zap.String("sessionID", oldestID))
		delete(h.sessions, oldestID)
	}
}
