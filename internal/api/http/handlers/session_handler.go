package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vaahan-portal/violation-portal/internal/api/client"
	"github.com/vaahan-portal/violation-portal/internal/api/dto"
	"github.com/vaahan-portal/violation-portal/internal/domain"
	"github.com/vaahan-portal/violation-portal/internal/service"
	apperrors "github.com/vaahan-portal/violation-portal/pkg/util"
)

// SessionService is the part of the auth service the handler uses.
type SessionService interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
	Logout(ctx context.Context)
	Current() (domain.Identity, bool)
}

// SessionHandler exposes login, logout and the current session.
type SessionHandler struct {
	auth SessionService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(auth SessionService) *SessionHandler {
	return &SessionHandler{auth: auth}
}

// Current handles GET /session.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	identity, ok := h.auth.Current()
	if !ok {
		return c.JSON(dto.SessionResponse{Nav: domain.NavLinks(nil)})
	}
	return c.JSON(dto.SessionResponse{
		Authenticated: true,
		Identity:      &identity,
		Landing:       identity.Role.LandingPath(),
		Nav:           domain.NavLinks(&identity),
	})
}

// Login handles POST /session/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		var loginErr *client.LoginError
		switch {
		case errors.As(err, &loginErr):
			return apperrors.NewUnauthorized(loginErr.Message)
		case errors.Is(err, service.ErrSessionNotEstablished):
			return apperrors.NewUnauthorized("Login failed: the server returned an unusable session token.")
		default:
			return apperrors.NewInternalError(err)
		}
	}

	return c.JSON(dto.SessionResponse{
		Authenticated: true,
		Identity:      &result.Identity,
		Landing:       result.Landing,
		Nav:           domain.NavLinks(&result.Identity),
	})
}

// Logout handles POST /session/logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(c.UserContext())
	return c.JSON(dto.SessionResponse{Landing: "/", Nav: domain.NavLinks(nil)})
}
