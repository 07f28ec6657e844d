package notification

import (
	"context"
	"strings"
	"testing"

	"sochi_assistant_backend/internal/events"
	"sochi_assistant_backend/platform/logger"
)

type fakeSender struct {
	sent []events.EscalationRaised
	to   string
}

func (f *fakeSender) SendEscalationEmail(_ context.Context, toEmail string, event events.EscalationRaised) error {
	f.to = toEmail
	f.sent = append(f.sent, event)
	return nil
}

func TestOnEscalationDelivers(t *testing.T) {
	sender := &fakeSender{}
	m := &Module{
		sender:    sender,
		recipient: "manager@example.com",
		log:       logger.New("test"),
	}

	event := events.EscalationRaised{
		BaseEvent:  events.NewBaseEvent(),
		SessionKey: "user:42",
		Tier:       "hot",
		Reason:     "hot_lead",
		Score:      0.8,
		Name:       "Анна",
	}

	if err := m.onEscalation(context.Background(), event); err != nil {
		t.Fatalf("onEscalation: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	if sender.to != "manager@example.com" {
		t.Errorf("unexpected recipient %q", sender.to)
	}
	if sender.sent[0].SessionKey != "user:42" {
		t.Errorf("unexpected session %q", sender.sent[0].SessionKey)
	}
}

func TestOnEscalationDisabled(t *testing.T) {
	m := &Module{log: logger.New("test")}

	event := events.EscalationRaised{
		BaseEvent:  events.NewBaseEvent(),
		SessionKey: "user:42",
	}

	if err := m.onEscalation(context.Background(), event); err != nil {
		t.Fatalf("disabled module must not fail: %v", err)
	}
}

func TestOnEscalationIgnoresOtherEvents(t *testing.T) {
	sender := &fakeSender{}
	m := &Module{sender: sender, recipient: "x@example.com", log: logger.New("test")}

	err := m.onEscalation(context.Background(), events.TurnProcessed{BaseEvent: events.NewBaseEvent()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("no email expected, got %d", len(sender.sent))
	}
}

func TestEscalationTemplateRenders(t *testing.T) {
	content, err := renderEmailTemplate("escalation.html", escalationEmailData{
		SessionKey:      "user:42",
		Name:            "Анна",
		Phone:           "+79001234567",
		Tier:            "hot",
		Reason:          "hot_lead",
		EscalationScore: "80%",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"user:42", "Анна", "+79001234567", "hot_lead"} {
		if !strings.Contains(content, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}
