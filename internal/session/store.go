package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vaahan-portal/violation-portal/internal/domain"
	"github.com/vaahan-portal/violation-portal/internal/repository"
)

// Well-known keys of the durable session record.
const (
	TokenKey = "jwtToken"
	UserKey  = "user"
)

// StoredSession is the durable shadow of the last known token/identity pair.
type StoredSession struct {
	Token    string
	Identity domain.Identity
}

// Store persists the session record under fixed keys of a KeySpace.
type Store struct {
	keys   repository.KeySpace
	logger *zap.Logger
}

// NewStore wraps a key space.
func NewStore(keys repository.KeySpace, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{keys: keys, logger: logger}
}

// Save overwrites both keys.
func (s *Store) Save(ctx context.Context, token string, identity domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := s.keys.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("%w: save token: %v", ErrStorageUnavailable, err)
	}
	if err := s.keys.Set(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("%w: save identity: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Load returns the stored record. It reports false when either key is
// absent or unparsable, or when the key space cannot be read.
func (s *Store) Load(ctx context.Context) (*StoredSession, bool) {
	token, err := s.keys.Get(ctx, TokenKey)
	if err != nil {
		s.logMiss("token", err)
		return nil, false
	}
	raw, err := s.keys.Get(ctx, UserKey)
	if err != nil {
		s.logMiss("identity", err)
		return nil, false
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		s.logger.Warn("stored identity unparsable", zap.Error(err))
		return nil, false
	}
	if token == "" {
		return nil, false
	}
	return &StoredSession{Token: token, Identity: identity}, true
}

// Clear removes both keys. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.keys.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Ping checks that the backing key space is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.keys.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) logMiss(what string, err error) {
	if errors.Is(err, repository.ErrKeyNotFound) {
		return
	}
	s.logger.Warn("session storage read failed", zap.String("key", what), zap.Error(err))
}
