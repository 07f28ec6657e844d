// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"github.com/google/uuid"

	"sochi_assistant_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Dialog Domain Events
// =============================================================================

// TurnProcessed is published after every processed message, whether or
// not anything about the lead changed. The analytics module records it.
type TurnProcessed struct {
	BaseEvent
	SessionKey string    `json:"sessionKey"`
	LeadID     uuid.UUID `json:"leadId"`
	Stage      string    `json:"stage"`
	Tier       string    `json:"tier"`
	Message    string    `json:"message"`
	Questions  []string  `json:"questions"`
	// Completeness is the share of key lead fields filled so far.
	Completeness float64 `json:"completeness"`
}

func (e TurnProcessed) EventName() string { return "dialog.turn.processed" }

// StageChanged is published when the funnel advances to a new stage.
type StageChanged struct {
	BaseEvent
	SessionKey string    `json:"sessionKey"`
	LeadID     uuid.UUID `json:"leadId"`
	FromStage  string    `json:"fromStage"`
	ToStage    string    `json:"toStage"`
}

func (e StageChanged) EventName() string { return "dialog.stage.changed" }

// QualificationChanged is published when the lead's tier moves.
type QualificationChanged struct {
	BaseEvent
	SessionKey string    `json:"sessionKey"`
	LeadID     uuid.UUID `json:"leadId"`
	FromTier   string    `json:"fromTier"`
	ToTier     string    `json:"toTier"`
}

func (e QualificationChanged) EventName() string { return "dialog.qualification.changed" }

// EscalationRaised is published the first time a conversation qualifies
// for handover to a human manager.
type EscalationRaised struct {
	BaseEvent
	SessionKey string    `json:"sessionKey"`
	LeadID     uuid.UUID `json:"leadId"`
	Tier       string    `json:"tier"`
	Score      float64   `json:"score"`
	Phone      string    `json:"phone,omitempty"`
	Name       string    `json:"name,omitempty"`
	Reason     string    `json:"reason"`
}

func (e EscalationRaised) EventName() string { return "dialog.escalation.raised" }

// FollowUpDue is published by the reminder worker when a scheduled
// follow-up nudge comes due for a still-open conversation.
type FollowUpDue struct {
	BaseEvent
	SessionKey string    `json:"sessionKey"`
	LeadID     uuid.UUID `json:"leadId"`
	Attempt    int       `json:"attempt"`
	Message    string    `json:"message"`
}

func (e FollowUpDue) EventName() string { return "dialog.followup.due" }

// ViewingReminderDue is published shortly before an agreed viewing
// slot so the customer can be reminded in time.
type ViewingReminderDue struct {
	BaseEvent
	SessionKey string    `json:"sessionKey"`
	LeadID     uuid.UUID `json:"leadId"`
	SlotAt     time.Time `json:"slotAt"`
	Message    string    `json:"message"`
}

func (e ViewingReminderDue) EventName() string { return "dialog.viewing.due" }

// SessionExpired is published when the registry sweeps a stale session.
type SessionExpired struct {
	BaseEvent
	SessionKey string    `json:"sessionKey"`
	LeadID     uuid.UUID `json:"leadId"`
	Stage      string    `json:"stage"`
}

func (e SessionExpired) EventName() string { return "dialog.session.expired" }
