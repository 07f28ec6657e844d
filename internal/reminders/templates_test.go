package reminders

import (
	"strings"
	"testing"
	"time"
)

func TestRenderMessageWithName(t *testing.T) {
	for template := range messageTemplates {
		msg := RenderMessage(template, "user:42", "Анна")
		if msg == "" {
			t.Fatalf("template %q rendered empty", template)
		}
		if strings.Contains(msg, "{name}") {
			t.Errorf("template %q left placeholder in %q", template, msg)
		}
	}
}

func TestRenderMessageWithoutName(t *testing.T) {
	for template := range messageTemplates {
		msg := RenderMessage(template, "user:42", "")
		if msg == "" {
			t.Fatalf("template %q rendered empty", template)
		}
		if strings.Contains(msg, "{name}") {
			t.Errorf("template %q left placeholder in %q", template, msg)
		}
	}
}

func TestRenderMessageDeterministic(t *testing.T) {
	a := RenderMessage(TemplateFollowUp1h, "user:7", "Игорь")
	b := RenderMessage(TemplateFollowUp1h, "user:7", "Игорь")
	if a != b {
		t.Errorf("same session rendered differently: %q vs %q", a, b)
	}
}

func TestRenderMessageUnknownTemplate(t *testing.T) {
	if msg := RenderMessage("no_such_template", "user:1", ""); msg != "" {
		t.Errorf("expected empty message, got %q", msg)
	}
}

func TestFollowUpSequenceOrdered(t *testing.T) {
	for i := 1; i < len(followUpSequence); i++ {
		if followUpSequence[i].delay <= followUpSequence[i-1].delay {
			t.Fatalf("step %d delay %v not after %v", i, followUpSequence[i].delay, followUpSequence[i-1].delay)
		}
	}
}

func TestRenderViewingMessageFillsSlotTime(t *testing.T) {
	slot := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	msg := RenderViewingMessage("user:42", "Анна", slot)
	if msg == "" {
		t.Fatal("viewing reminder rendered empty")
	}
	if !strings.Contains(msg, "15:30") {
		t.Errorf("slot time missing from %q", msg)
	}
	if strings.Contains(msg, "{time}") || strings.Contains(msg, "{name}") {
		t.Errorf("placeholder left in %q", msg)
	}
}
