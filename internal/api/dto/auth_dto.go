package dto

import (
	"encoding/json"

	"github.com/vaahan-portal/violation-portal/internal/domain"
)

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Envelope is the remote API's response wrapper.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    T      `json:"data"`
}

// LoginData is the payload of a successful login. Profile fields are optional.
type LoginData struct {
	Token string `json:"token"`
	domain.Profile
}

// SessionResponse describes the current session to the portal views.
type SessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	Identity      *domain.Identity `json:"identity,omitempty"`
	Landing       string           `json:"landing,omitempty"`
	Nav           []domain.NavLink `json:"nav"`
}

// ViewResponse is the stub body rendered for portal views. Data holds what
// the view read from the portal API, if anything.
type ViewResponse struct {
	View     string           `json:"view"`
	Identity *domain.Identity `json:"identity,omitempty"`
	Nav      []domain.NavLink `json:"nav"`
	Data     json.RawMessage  `json:"data,omitempty"`
	Error    string           `json:"error,omitempty"`
}
