package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vaahan-portal/violation-portal/internal/api/dto"
	"github.com/vaahan-portal/violation-portal/internal/domain"
	"github.com/vaahan-portal/violation-portal/internal/session"
)

// ErrSessionNotEstablished means the remote login succeeded but its token
// could not be turned into a session.
var ErrSessionNotEstablished = errors.New("session not established")

// LoginClient is the remote login endpoint.
type LoginClient interface {
	Login(ctx context.Context, username, password string) (*dto.LoginData, error)
}

// LoginResult is what the login view needs after a successful login.
type LoginResult struct {
	Identity domain.Identity
	Landing  string
}

// AuthService coordinates the remote login call with the session manager.
type AuthService struct {
	remote   LoginClient
	sessions *session.Manager
	logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(remote LoginClient, sessions *session.Manager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{remote: remote, sessions: sessions, logger: logger}
}

// Login authenticates against the remote API and starts a session. The
// username typed in becomes the profile username unless the server sends one.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	data, err := s.remote.Login(ctx, username, password)
	if err != nil {
		s.logger.Info("remote login rejected", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	profile := data.Profile
	if profile.Username == "" {
		profile.Username = username
	}

	identity, err := s.sessions.Login(ctx, profile, data.Token)
	if err != nil {
		s.logger.Warn("login token rejected", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSessionNotEstablished, err)
	}

	return &LoginResult{Identity: identity, Landing: identity.Role.LandingPath()}, nil
}

// Logout ends the local session. The token itself stays valid at the
// remote API until it expires; there is no revocation endpoint.
func (s *AuthService) Logout(ctx context.Context) {
	s.sessions.Logout(ctx)
}

// Current returns the session identity, if any.
func (s *AuthService) Current() (domain.Identity, bool) {
	return s.sessions.Current()
}
