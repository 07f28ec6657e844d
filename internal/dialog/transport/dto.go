// Package transport defines the request and response shapes of the
// dialog HTTP API.
package transport

import (
	"time"

	"sochi_assistant_backend/internal/dialog/domain"
	"sochi_assistant_backend/internal/dialog/service"
	"sochi_assistant_backend/internal/dialog/session"
)

// ProcessTurnRequest is one incoming message from a messenger webhook
// or an operator console.
type ProcessTurnRequest struct {
	ChatID    string `json:"chatId"`
	UserID    string `json:"userId" validate:"required"`
	GroupChat bool   `json:"groupChat"`
	Message   string `json:"message" validate:"required,max=4096"`
	Name      string `json:"name" validate:"max=256"`
	Handle    string `json:"handle" validate:"max=256"`
}

// TurnResponse is the engine's verdict for one message.
type TurnResponse struct {
	SessionKey      string      `json:"sessionKey"`
	PreviousStage   string      `json:"previousStage"`
	Stage           string      `json:"stage"`
	Tier            string      `json:"tier"`
	Escalate        bool        `json:"escalate"`
	EscalationScore float64     `json:"escalationScore"`
	Completeness    float64     `json:"completeness"`
	NextQuestions   []string    `json:"nextQuestions"`
	Lead            domain.Lead `json:"lead"`
}

// SessionResponse is a conversation snapshot.
type SessionResponse struct {
	SessionKey      string      `json:"sessionKey"`
	Lead            domain.Lead `json:"lead"`
	QuestionHistory []string    `json:"questionHistory"`
	CreatedAt       time.Time   `json:"createdAt"`
	LastActivity    time.Time   `json:"lastActivity"`
}

// NewTurnResponse converts an engine result to the wire shape.
func NewTurnResponse(result service.TurnResult) TurnResponse {
	questions := result.NextQuestions
	if questions == nil {
		questions = []string{}
	}
	return TurnResponse{
		SessionKey:      result.SessionKey,
		PreviousStage:   string(result.PreviousStage),
		Stage:           string(result.Stage),
		Tier:            string(result.Tier),
		Escalate:        result.Escalate,
		EscalationScore: result.EscalationScore,
		Completeness:    result.Completeness,
		NextQuestions:   questions,
		Lead:            result.Lead,
	}
}

// NewSessionResponse converts a session snapshot to the wire shape.
func NewSessionResponse(snap session.Session) SessionResponse {
	history := snap.QuestionHistory
	if history == nil {
		history = []string{}
	}
	return SessionResponse{
		SessionKey:      snap.Key,
		Lead:            snap.Lead,
		QuestionHistory: history,
		CreatedAt:       snap.CreatedAt,
		LastActivity:    snap.LastActivity,
	}
}

// LeadListResponse is a tier-filtered page of session keys for the
// operator console.
type LeadListResponse struct {
	Tier        string   `json:"tier"`
	SessionKeys []string `json:"sessionKeys"`
}
