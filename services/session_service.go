package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"guesthouse-frontend/apperrors"
	"guesthouse-frontend/models"
)

// Session is the single source of truth for one browser session's identity.
// Identity and persisted credential always change together under the lock:
// there is no window where one is set and the other is not.
type Session struct {
	api    *APIClient
	logger *zap.Logger

	mu   sync.RWMutex
	user *models.User
}

func NewSession(api *APIClient, logger *zap.Logger) *Session {
	return &Session{api: api, logger: logger}
}

// Restore resolves the identity behind a persisted credential. On any
// failure the credential is cleared so the session never holds a token
// without a resolvable identity.
func (s *Session) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.api.HasCredential(ctx) {
		return
	}
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.logger.Info("session restore failed, clearing credential",
			zap.String("code", string(apperrors.CodeOf(err))))
		s.api.ClearCredential(ctx)
		s.user = nil
		return
	}
	s.user = &user
}

// Login authenticates the session. On failure the previous identity and
// credential are left untouched.
func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.api.Login(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	s.user = &user
	return user, nil
}

func (s *Session) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.api.Register(ctx, input)
	if err != nil {
		return models.User{}, err
	}
	s.user = &user
	return user, nil
}

// Logout always clears the identity, whatever the backend says.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.api.Logout(ctx)
	s.user = nil
}

// UpdateProfile replaces the identity with the server-returned one. No
// client-side merge: server-computed fields must not drift.
func (s *Session) UpdateProfile(ctx context.Context, updates map[string]any) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return models.User{}, apperrors.New(apperrors.ErrCodeAuthRequired, "Authentication failed. Please log in again.")
	}
	user, err := s.api.UpdateProfile(ctx, updates)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeAuthRequired) {
			s.user = nil
		}
		return models.User{}, err
	}
	s.user = &user
	return user, nil
}

// CurrentUser returns a copy of the identity, or nil when unauthenticated.
func (s *Session) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated is the synchronous check the booking flow gates on.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Invalidate drops the identity after the gateway reported an expired
// credential mid-operation.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}
