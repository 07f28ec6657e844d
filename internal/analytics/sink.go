package analytics

import (
	"context"
	"encoding/json"

	"sochi_assistant_backend/internal/events"
	"sochi_assistant_backend/platform/logger"

	"github.com/google/uuid"
)

// Sink subscribes to dialog events and appends each one to the
// timeline. Recording is best-effort: a failed insert is logged, never
// propagated back to the publisher.
type Sink struct {
	repo *Repository
	log  *logger.Logger
}

func NewSink(repo *Repository, log *logger.Logger) *Sink {
	return &Sink{repo: repo, log: log}
}

// Subscribe attaches the sink to every dialog event the engine emits.
func (s *Sink) Subscribe(bus events.Bus) {
	names := []string{
		events.TurnProcessed{}.EventName(),
		events.StageChanged{}.EventName(),
		events.QualificationChanged{}.EventName(),
		events.EscalationRaised{}.EventName(),
		events.FollowUpDue{}.EventName(),
		events.ViewingReminderDue{}.EventName(),
		events.SessionExpired{}.EventName(),
	}
	for _, name := range names {
		bus.Subscribe(name, events.HandlerFunc(s.record))
	}
}

func (s *Sink) record(ctx context.Context, event events.Event) error {
	rec, ok := toRecord(event)
	if !ok {
		return nil
	}

	if err := s.repo.Record(ctx, rec); err != nil {
		s.log.Error("record dialog event failed",
			"error", err,
			"event", event.EventName(),
			"session", rec.SessionKey,
		)
	}
	return nil
}

// toRecord flattens a typed event into a timeline row. The full event
// is kept as the payload so the timeline loses nothing.
func toRecord(event events.Event) (EventRecord, bool) {
	var sessionKey string
	var leadID uuid.UUID

	switch e := event.(type) {
	case events.TurnProcessed:
		sessionKey, leadID = e.SessionKey, e.LeadID
	case events.StageChanged:
		sessionKey, leadID = e.SessionKey, e.LeadID
	case events.QualificationChanged:
		sessionKey, leadID = e.SessionKey, e.LeadID
	case events.EscalationRaised:
		sessionKey, leadID = e.SessionKey, e.LeadID
	case events.FollowUpDue:
		sessionKey, leadID = e.SessionKey, e.LeadID
	case events.ViewingReminderDue:
		sessionKey, leadID = e.SessionKey, e.LeadID
	case events.SessionExpired:
		sessionKey, leadID = e.SessionKey, e.LeadID
	default:
		return EventRecord{}, false
	}

	payload := map[string]any{}
	if data, err := json.Marshal(event); err == nil {
		_ = json.Unmarshal(data, &payload)
	}

	return EventRecord{
		ID:         uuid.New(),
		SessionKey: sessionKey,
		LeadID:     leadID,
		EventType:  event.EventName(),
		Payload:    payload,
		OccurredAt: event.OccurredAt(),
	}, true
}
