package reminders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TaskFollowUp = "dialog.followup"

// FollowUpPayload carries one scheduled nudge for a session. Attempt is
// 1-based and identifies the step in the follow-up sequence.
type FollowUpPayload struct {
	SessionKey string `json:"sessionKey"`
	LeadID     string `json:"leadId"`
	Attempt    int    `json:"attempt"`
	Template   string `json:"template"`
	Name       string `json:"name,omitempty"`
}

func NewFollowUpTask(payload FollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUp, data), nil
}

func ParseFollowUpPayload(task *asynq.Task) (FollowUpPayload, error) {
	var payload FollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpPayload{}, err
	}
	return payload, nil
}

const TaskViewingReminder = "dialog.viewing"

// ViewingReminderPayload reminds the customer about an agreed viewing
// slot shortly before it starts.
type ViewingReminderPayload struct {
	SessionKey string    `json:"sessionKey"`
	LeadID     string    `json:"leadId"`
	SlotAt     time.Time `json:"slotAt"`
	Name       string    `json:"name,omitempty"`
}

func NewViewingReminderTask(payload ViewingReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskViewingReminder, data), nil
}

func ParseViewingReminderPayload(task *asynq.Task) (ViewingReminderPayload, error) {
	var payload ViewingReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ViewingReminderPayload{}, err
	}
	return payload, nil
}

// followUpTaskID gives every step of a session's sequence a stable task
// id so re-scheduling replaces the pending task instead of stacking a
// second sequence, and cancellation can find the tasks by id.
func followUpTaskID(sessionKey string, attempt int) string {
	return fmt.Sprintf("followup:%s:%d", sessionKey, attempt)
}

func viewingTaskID(sessionKey string, step int) string {
	return fmt.Sprintf("viewing:%s:%d", sessionKey, step)
}
