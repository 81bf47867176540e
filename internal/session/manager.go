package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vaahan-portal/violation-portal/internal/auth"
	"github.com/vaahan-portal/violation-portal/internal/domain"
	"github.com/vaahan-portal/violation-portal/internal/events"
)

// Manager owns the process-wide authentication state. Construct one at
// startup, call Restore before serving gated views and share the pointer.
type Manager struct {
	codec  *auth.TokenCodec
	roles  *auth.RoleResolver
	store  *Store
	events events.Dispatcher
	logger *zap.Logger
	now    func() time.Time

	// opMu serializes Restore/Login/Logout so storage is always written
	// before memory; mu guards the fields below and is never held across I/O.
	opMu     sync.Mutex
	mu       sync.RWMutex
	identity *domain.Identity
	token    string
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDispatcher publishes lifecycle events to d.
func WithDispatcher(d events.Dispatcher) Option {
	return func(m *Manager) { m.events = d }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager builds an Anonymous manager.
func NewManager(codec *auth.TokenCodec, roles *auth.RoleResolver, store *Store, opts ...Option) *Manager {
	m := &Manager{
		codec:  codec,
		roles:  roles,
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore rebuilds the session from storage. A missing, malformed or expired
// record leaves the manager Anonymous and the storage cleared. The returned
// error only explains why no session was restored; it is never fatal.
func (m *Manager) Restore(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	stored, ok := m.store.Load(ctx)
	if !ok {
		m.clearStorage(ctx)
		m.set(nil, "")
		return nil
	}

	identity, err := m.identityFromToken(stored.Token)
	if err != nil {
		m.logger.Info("discarding stored session", zap.Error(err))
		m.clearStorage(ctx)
		m.set(nil, "")
		m.publish(ctx, events.Event{Type: events.EventSessionEnded, Reason: endReason(err)})
		return err
	}
	if stored.Identity.Subject == identity.Subject {
		identity = identity.WithProfile(stored.Identity.Profile)
	}

	m.set(&identity, stored.Token)
	m.logger.Info("session restored",
		zap.String("subject", identity.Subject),
		zap.String("role", string(identity.Role)),
		zap.Time("expires_at", identity.ExpiresAt),
	)
	m.publish(ctx, events.Event{Type: events.EventSessionRestored, Identity: &identity})
	return nil
}

// Login establishes a session from a token returned by a successful remote
// authentication. Profile fields overlay the token-derived identity but never
// its subject, role or expiry. A token that cannot be decoded, or is already
// expired, leaves the manager Anonymous and is reported as a login failure.
func (m *Manager) Login(ctx context.Context, profile domain.Profile, token string) (domain.Identity, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	identity, err := m.identityFromToken(token)
	if err != nil {
		m.clearStorage(ctx)
		m.set(nil, "")
		return domain.Identity{}, fmt.Errorf("login: %w", err)
	}
	identity = identity.WithProfile(profile)

	if err := m.store.Save(ctx, token, identity); err != nil {
		m.logger.Warn("session will not survive restart", zap.Error(err))
	}

	m.set(&identity, token)
	m.logger.Info("session started",
		zap.String("subject", identity.Subject),
		zap.String("role", string(identity.Role)),
	)
	m.publish(ctx, events.Event{Type: events.EventSessionStarted, Identity: &identity})
	return identity, nil
}

// Logout clears storage, then memory. Safe to call when Anonymous.
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.endLocked(ctx, events.EndReasonLogout)
}

// ExpireIf ends the session because its expiry has passed, but only while
// the session still carries token. A session replaced by a concurrent Login
// is kept. It reports whether a session was ended.
func (m *Manager) ExpireIf(ctx context.Context, token string) bool {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if token == "" || m.Token() != token {
		return false
	}
	m.endLocked(ctx, events.EndReasonExpired)
	return true
}

// Current returns a copy of the in-memory identity. It never performs I/O.
func (m *Manager) Current() (domain.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return domain.Identity{}, false
	}
	return *m.identity, true
}

// Snapshot returns the identity together with the token it came from.
func (m *Manager) Snapshot() (domain.Identity, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return domain.Identity{}, "", false
	}
	return *m.identity, m.token, true
}

// Token returns the raw token of the current session, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Now is the manager's clock.
func (m *Manager) Now() time.Time {
	return m.now()
}

// endLocked clears storage, then memory. Callers hold opMu.
func (m *Manager) endLocked(ctx context.Context, reason events.EndReason) {
	m.clearStorage(ctx)

	previous, had := m.Current()
	m.set(nil, "")
	if !had {
		return
	}
	m.logger.Info("session ended",
		zap.String("subject", previous.Subject),
		zap.String("reason", string(reason)),
	)
	m.publish(ctx, events.Event{Type: events.EventSessionEnded, Identity: &previous, Reason: reason})
}

func (m *Manager) identityFromToken(token string) (domain.Identity, error) {
	claims, err := m.codec.Decode(token)
	if err != nil {
		return domain.Identity{}, err
	}
	identity := domain.Identity{
		Subject:   claims.Subject,
		Role:      m.roles.Resolve(claims),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	identity.Username = claims.Subject
	if identity.Expired(m.now()) {
		return domain.Identity{}, fmt.Errorf("%w: expired at %s", ErrExpiredSession, identity.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return identity, nil
}

func (m *Manager) set(identity *domain.Identity, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = identity
	m.token = token
}

func (m *Manager) clearStorage(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("failed to clear stored session", zap.Error(err))
	}
}

func (m *Manager) publish(ctx context.Context, event events.Event) {
	if m.events == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = m.now()
	if err := m.events.Publish(ctx, event); err != nil {
		m.logger.Warn("session event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func endReason(err error) events.EndReason {
	if errors.Is(err, ErrExpiredSession) {
		return events.EndReasonExpired
	}
	return events.EndReasonInvalid
}
