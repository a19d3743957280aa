// Package session derives and persists the stable identifier that
// correlates all chat exchanges and lead submissions from one
// visitor's browsing context.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/google/uuid"
	"github.com/oakandvine/concierge-widget/pkg/logging"
)

// DefaultKey is the storage slot session identifiers live under.
const DefaultKey = "concierge_session_id"

// Store hands out the session identifier for one widget instance. The
// first GetOrCreate reads storage and synthesizes an identifier when
// none is persisted; later calls return the cached value without
// touching storage. A backend-issued identifier installed via Adopt
// supersedes the local value for the rest of the session.
type Store struct {
	storage Storage
	key     string
	logger  *logging.Logger

	mu sync.Mutex
	id string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		s.key = key
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a session store backed by storage.
func NewStore(storage Storage, opts ...StoreOption) *Store {
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the session identifier, synthesizing and
// persisting one on first use. Storage failures degrade to an
// unpersisted identifier; the widget must stay usable.
func (s *Store) GetOrCreate(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" {
		return s.id
	}

	stored, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("session: storage read failed, using ephemeral id", "error", err)
	}
	if stored != "" {
		s.id = stored
		return s.id
	}

	s.id = newSessionID()
	if err := s.storage.Set(ctx, s.key, s.id); err != nil {
		s.logger.Warn("session: storage write failed", "error", err)
	}
	return s.id
}

// Adopt installs a backend-issued identifier. It replaces the cached
// value and is written back to storage so both stay consistent.
func (s *Store) Adopt(ctx context.Context, id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	if s.id == id {
		s.mu.Unlock()
		return
	}
	s.id = id
	s.mu.Unlock()

	if err := s.storage.Set(ctx, s.key, id); err != nil {
		s.logger.Warn("session: storage write failed", "error", err)
	}
}

// newSessionID creates a random session identifier.
func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}
