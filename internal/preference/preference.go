// Package preference persists the dark-mode preference. It survives logout.
package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/hyperjump/findly/internal/storage"
	"go.uber.org/zap"
)

// KeyDarkMode stores the flag serialized as JSON (true/false).
const KeyDarkMode = "darkMode"

// Store reads and writes the dark-mode flag. It holds no state of its own.
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

// Load returns the stored flag, or false when it is absent or unparsable.
func (s *Store) Load(ctx context.Context) bool {
	raw, err := s.kv.Get(ctx, KeyDarkMode)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("dark mode preference unreadable", zap.Error(err))
		}
		return false
	}
	var dark bool
	if err := json.Unmarshal([]byte(raw), &dark); err != nil {
		s.logger.Debug("dark mode preference unparsable", zap.String("value", raw))
		return false
	}
	return dark
}

// Save persists the flag.
func (s *Store) Save(ctx context.Context, dark bool) error {
	if err := s.kv.Set(ctx, KeyDarkMode, strconv.FormatBool(dark)); err != nil {
		return fmt.Errorf("failed to save dark mode preference: %w", err)
	}
	return nil
}
