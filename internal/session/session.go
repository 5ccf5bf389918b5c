// Package session persists the authenticated session (bearer token and cached user profile).
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperjump/findly/internal/models"
	"github.com/hyperjump/findly/internal/storage"
	"go.uber.org/zap"
)

// Persisted keys. A restart reconstructs the session from exactly these two entries.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrIncompleteSession is returned by Save when the token or profile is missing.
var ErrIncompleteSession = errors.New("session requires both a token and a user profile")

// Store is a stateless façade over the key/value storage; the in-memory session lives in the
// caller's application state.
type Store struct {
	kv     storage.KV
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for degraded reads.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore returns a Store backed by kv.
func NewStore(kv storage.KV, opts ...Option) *Store {
	s := &Store{kv: kv, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the persisted session. A missing key, an unreadable store, a malformed profile
// or an unknown role all yield the absent session; Load never fails.
func (s *Store) Load(ctx context.Context) models.Session {
	token, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("session token unreadable", zap.Error(err))
		}
		return models.NoSession()
	}
	raw, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("session profile unreadable", zap.Error(err))
		}
		return models.NoSession()
	}
	var profile models.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.logger.Warn("session profile malformed", zap.Error(err))
		return models.NoSession()
	}
	role, err := models.ParseRole(string(profile.Role))
	if err != nil {
		s.logger.Warn("session profile has unknown role", zap.Error(err))
		return models.NoSession()
	}
	profile.Role = role
	return models.NewSession(token, &profile)
}

// Save persists token and profile together.
func (s *Store) Save(ctx context.Context, token string, profile *models.UserProfile) error {
	if token == "" || profile == nil {
		return ErrIncompleteSession
	}
	data, err := json.Marshal(profile.Normalized())
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := s.kv.SetMany(ctx, map[string]string{KeyToken: token, KeyUser: string(data)}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes both keys. Clearing an absent session is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
