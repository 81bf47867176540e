package events

import (
	"time"

	"github.com/vaahan-portal/violation-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionStarted  EventType = "session_started"
	EventSessionRestored EventType = "session_restored"
	EventSessionEnded    EventType = "session_ended"
)

// EndReason explains why a session ended.
type EndReason string

const (
	EndReasonLogout  EndReason = "logout"
	EndReasonExpired EndReason = "expired"
	EndReasonInvalid EndReason = "invalid"
)

// Event represents a session lifecycle transition.
type Event struct {
	ID        string           `json:"id"`
	Type      EventType        `json:"type"`
	Identity  *domain.Identity `json:"identity,omitempty"`
	Reason    EndReason        `json:"reason,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
