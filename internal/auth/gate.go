package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vaahan-portal/violation-portal/internal/domain"
)

// Decision is the outcome of an access check.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToHome:
		return "redirect_to_home"
	default:
		return "unknown"
	}
}

// RoleSet is the set of roles allowed into a view. A nil set means the view
// only requires an authenticated session.
type RoleSet map[domain.Role]struct{}

// Roles builds a RoleSet.
func Roles(roles ...domain.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Has reports whether role is in the set.
func (s RoleSet) Has(role domain.Role) bool {
	_, ok := s[role]
	return ok
}

// IdentitySource is the view of the session manager the gate needs.
type IdentitySource interface {
	// Snapshot returns the identity and the token it was derived from as
	// one consistent pair.
	Snapshot() (domain.Identity, string, bool)
	// ExpireIf ends the session only while it still carries token, so a
	// login racing the check is left alone.
	ExpireIf(ctx context.Context, token string) bool
	Now() time.Time
}

// DecisionRecorder observes gate outcomes.
type DecisionRecorder interface {
	RecordDecision(decision string)
}

// Gate decides whether the current identity may enter a role-scoped view.
type Gate struct {
	source  IdentitySource
	logger  *zap.Logger
	metrics DecisionRecorder
}

// NewGate builds a gate over source. logger and metrics may be nil.
func NewGate(source IdentitySource, logger *zap.Logger, metrics DecisionRecorder) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{source: source, logger: logger, metrics: metrics}
}

// Authorize evaluates access for a view requiring one of required. An
// expired identity is ended on the spot so it cannot pass a later check.
func (g *Gate) Authorize(ctx context.Context, required RoleSet) Decision {
	decision, _ := g.authorize(ctx, required)
	return decision
}

// authorize also returns the identity the decision was made on.
func (g *Gate) authorize(ctx context.Context, required RoleSet) (Decision, domain.Identity) {
	decision, identity := g.decide(ctx, required)
	if g.metrics != nil {
		g.metrics.RecordDecision(decision.String())
	}
	return decision, identity
}

func (g *Gate) decide(ctx context.Context, required RoleSet) (Decision, domain.Identity) {
	identity, token, ok := g.source.Snapshot()
	if !ok {
		return RedirectToLogin, domain.Identity{}
	}
	if required == nil {
		return Allow, identity
	}
	if identity.Expired(g.source.Now()) {
		ended := g.source.ExpireIf(ctx, token)
		g.logger.Info("session expired at gate",
			zap.String("subject", identity.Subject),
			zap.Bool("ended", ended),
		)
		return RedirectToLogin, domain.Identity{}
	}
	if !required.Has(identity.Role) {
		g.logger.Debug("role not permitted",
			zap.String("subject", identity.Subject),
			zap.String("role", string(identity.Role)),
		)
		return RedirectToHome, identity
	}
	return Allow, identity
}
