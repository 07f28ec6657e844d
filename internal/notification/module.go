// Package notification turns domain events into outbound notifications.
// The dialog engine publishes escalations without knowing how managers
// are reached; this module subscribes and delivers by e-mail.
package notification

import (
	"context"

	"sochi_assistant_backend/internal/events"
	"sochi_assistant_backend/platform/config"
	"sochi_assistant_backend/platform/logger"
)

// Module wires escalation events to the configured sender.
type Module struct {
	sender    Sender
	recipient string
	log       *logger.Logger
}

// NewModule subscribes escalation delivery to the event bus. With
// e-mail disabled in config the module stays passive and only logs.
func NewModule(bus events.Bus, cfg config.EmailConfig, log *logger.Logger) *Module {
	m := &Module{
		recipient: cfg.GetEscalationRecipient(),
		log:       log,
	}

	if cfg.GetEmailEnabled() {
		m.sender = NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		)
	}

	bus.Subscribe(events.EscalationRaised{}.EventName(), events.HandlerFunc(m.onEscalation))

	return m
}

func (m *Module) onEscalation(ctx context.Context, event events.Event) error {
	e, ok := event.(events.EscalationRaised)
	if !ok {
		return nil
	}

	if m.sender == nil || m.recipient == "" {
		m.log.Info("escalation raised, email delivery disabled",
			"session", e.SessionKey,
			"reason", e.Reason,
		)
		return nil
	}

	if err := m.sender.SendEscalationEmail(ctx, m.recipient, e); err != nil {
		m.log.Error("escalation email failed", "error", err, "session", e.SessionKey)
		return err
	}

	m.log.Info("escalation email sent", "session", e.SessionKey, "to", m.recipient)
	return nil
}
