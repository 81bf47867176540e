package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vaahan-portal/violation-portal/internal/api/dto"
	"github.com/vaahan-portal/violation-portal/internal/auth"
	"github.com/vaahan-portal/violation-portal/internal/domain"
)

const fetchFailedMessage = "Failed to fetch reports"

// CurrentIdentity reads the session without side effects.
type CurrentIdentity interface {
	Current() (domain.Identity, bool)
}

// RemoteReader performs authenticated reads against the portal API.
type RemoteReader interface {
	Get(ctx context.Context, path string, out any) error
}

// ViewsHandler renders view stubs; real markup lives in the frontend.
type ViewsHandler struct {
	sessions CurrentIdentity
	remote   RemoteReader
	logger   *zap.Logger
}

// NewViewsHandler constructs handler. remote may be nil when no view has a
// data source.
func NewViewsHandler(sessions CurrentIdentity, remote RemoteReader, logger *zap.Logger) *ViewsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewsHandler{sessions: sessions, remote: remote, logger: logger}
}

// Render returns a handler for the named view. When source is set the view's
// data is read from that API path with the session's bearer token; a failed
// read still renders the view, carrying an error message instead of data.
func (h *ViewsHandler) Render(name, source string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := auth.IdentityFromContext(c)
		if !ok {
			identity, ok = h.sessions.Current()
		}
		resp := dto.ViewResponse{View: name, Nav: domain.NavLinks(nil)}
		if ok {
			resp.Identity = &identity
			resp.Nav = domain.NavLinks(&identity)
		}

		if source != "" && h.remote != nil {
			var data json.RawMessage
			if err := h.remote.Get(c.UserContext(), source, &data); err != nil {
				h.logger.Warn("view data unavailable", zap.String("view", name), zap.String("source", source), zap.Error(err))
				resp.Error = fetchFailedMessage
			} else {
				resp.Data = data
			}
		}
		return c.JSON(resp)
	}
}
