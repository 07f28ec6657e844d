package analytics

import (
	"testing"

	"sochi_assistant_backend/internal/events"

	"github.com/google/uuid"
)

func TestToRecordFlattensDialogEvents(t *testing.T) {
	leadID := uuid.New()

	tests := []struct {
		name     string
		event    events.Event
		wantType string
	}{
		{
			name: "stage changed",
			event: events.StageChanged{
				BaseEvent:  events.NewBaseEvent(),
				SessionKey: "user:1",
				LeadID:     leadID,
				FromStage:  "greeting",
				ToStage:    "location",
			},
			wantType: "dialog.stage.changed",
		},
		{
			name: "escalation",
			event: events.EscalationRaised{
				BaseEvent:  events.NewBaseEvent(),
				SessionKey: "user:1",
				LeadID:     leadID,
				Tier:       "hot",
				Reason:     "hot_lead",
				Score:      0.8,
			},
			wantType: "dialog.escalation.raised",
		},
		{
			name: "follow-up due",
			event: events.FollowUpDue{
				BaseEvent:  events.NewBaseEvent(),
				SessionKey: "user:1",
				LeadID:     leadID,
				Attempt:    2,
				Message:    "Актуально?",
			},
			wantType: "dialog.followup.due",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := toRecord(tt.event)
			if !ok {
				t.Fatal("expected event to be recordable")
			}
			if rec.EventType != tt.wantType {
				t.Errorf("event type = %q, want %q", rec.EventType, tt.wantType)
			}
			if rec.SessionKey != "user:1" {
				t.Errorf("session key = %q", rec.SessionKey)
			}
			if rec.LeadID != leadID {
				t.Errorf("lead id = %s", rec.LeadID)
			}
			if rec.OccurredAt.IsZero() {
				t.Error("occurred at not set")
			}
			if len(rec.Payload) == 0 {
				t.Error("payload empty")
			}
		})
	}
}

func TestToRecordStageChangePayload(t *testing.T) {
	rec, ok := toRecord(events.StageChanged{
		BaseEvent:  events.NewBaseEvent(),
		SessionKey: "user:2",
		LeadID:     uuid.New(),
		FromStage:  "budget",
		ToStage:    "urgency",
	})
	if !ok {
		t.Fatal("expected recordable event")
	}
	if got := rec.Payload["toStage"]; got != "urgency" {
		t.Errorf("payload toStage = %v, want urgency", got)
	}
}

type unknownEvent struct{ events.BaseEvent }

func (unknownEvent) EventName() string { return "other.event" }

func TestToRecordIgnoresUnknownEvents(t *testing.T) {
	if _, ok := toRecord(unknownEvent{events.NewBaseEvent()}); ok {
		t.Error("unrelated events must not be recorded")
	}
}
