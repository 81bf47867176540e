package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vaahan-portal/violation-portal/internal/domain"
)

const identityKey = "auth_identity"

// Redirects names the views a denied request is sent to.
type Redirects struct {
	Login string
	Home  string
}

// GateMiddleware turns gate decisions into fiber redirects.
type GateMiddleware struct {
	gate      *Gate
	redirects Redirects
}

// NewGateMiddleware constructs middleware.
func NewGateMiddleware(gate *Gate, redirects Redirects) *GateMiddleware {
	if redirects.Login == "" {
		redirects.Login = "/login"
	}
	if redirects.Home == "" {
		redirects.Home = "/"
	}
	return &GateMiddleware{gate: gate, redirects: redirects}
}

// RequireSession admits any authenticated identity.
func (m *GateMiddleware) RequireSession() fiber.Handler {
	return m.handler(nil)
}

// RequireRoles admits identities holding one of the allowed roles.
func (m *GateMiddleware) RequireRoles(allowed ...domain.Role) fiber.Handler {
	return m.handler(Roles(allowed...))
}

func (m *GateMiddleware) handler(required RoleSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision, identity := m.gate.authorize(c.UserContext(), required)
		switch decision {
		case Allow:
			c.Locals(identityKey, identity)
			return c.Next()
		case RedirectToHome:
			return c.Redirect(m.redirects.Home, fiber.StatusFound)
		default:
			return c.Redirect(m.redirects.Login, fiber.StatusFound)
		}
	}
}

// IdentityFromContext retrieves the identity admitted by the gate.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return domain.Identity{}, false
	}
	identity, ok := val.(domain.Identity)
	return identity, ok
}
