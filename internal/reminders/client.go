package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sochi_assistant_backend/internal/dialog/domain"
	"sochi_assistant_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// followUpSequence is the fixed nudge cadence after a customer goes
// quiet: each step fires relative to the moment the sequence is armed.
var followUpSequence = []struct {
	delay    time.Duration
	template string
}{
	{time.Hour, TemplateFollowUp1h},
	{6 * time.Hour, TemplateFollowUp6h},
	{12 * time.Hour, TemplateFollowUp12h},
	{72 * time.Hour, TemplateFollowUp72h},
}

// Client schedules follow-up reminder tasks on the asynq queue. Every
// processed turn re-arms the session's sequence, so reminders only fire
// when the customer actually goes quiet.
type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetSchedulerQueue()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		queue:     queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleFollowUps replaces any pending sequence for the session with
// a fresh one. A hot lead's first nudge uses the urgent template.
func (c *Client) ScheduleFollowUps(ctx context.Context, sessionKey string, lead domain.Lead) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.CancelFollowUps(ctx, sessionKey); err != nil {
		return err
	}

	now := time.Now()
	for i, step := range followUpSequence {
		template := step.template
		if i == 0 && lead.Tier == domain.TierHot {
			template = TemplateHotLead
		}

		task, err := NewFollowUpTask(FollowUpPayload{
			SessionKey: sessionKey,
			LeadID:     lead.ID.String(),
			Attempt:    i + 1,
			Template:   template,
			Name:       lead.Name,
		})
		if err != nil {
			return err
		}

		_, err = c.client.EnqueueContext(ctx, task,
			asynq.ProcessAt(now.Add(step.delay)),
			asynq.Queue(c.queue),
			asynq.TaskID(followUpTaskID(sessionKey, i+1)),
		)
		if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
			return err
		}
	}

	return nil
}

// viewingOffsets are how far ahead of the agreed slot the customer is
// reminded.
var viewingOffsets = []time.Duration{time.Hour, 10 * time.Minute}

// ScheduleViewingReminders arms reminders ahead of the earliest agreed
// viewing slot. Past offsets are skipped; re-scheduling replaces any
// pending reminder for the session.
func (c *Client) ScheduleViewingReminders(ctx context.Context, sessionKey string, lead domain.Lead) error {
	if c == nil || c.client == nil || len(lead.ViewingSlots) == 0 {
		return nil
	}

	slot := lead.ViewingSlots[0]
	now := time.Now()

	for i, offset := range viewingOffsets {
		runAt := slot.Add(-offset)
		if !runAt.After(now) {
			continue
		}

		task, err := NewViewingReminderTask(ViewingReminderPayload{
			SessionKey: sessionKey,
			LeadID:     lead.ID.String(),
			SlotAt:     slot,
			Name:       lead.Name,
		})
		if err != nil {
			return err
		}

		if err := c.inspector.DeleteTask(c.queue, viewingTaskID(sessionKey, i+1)); err != nil &&
			!errors.Is(err, asynq.ErrTaskNotFound) && !errors.Is(err, asynq.ErrQueueNotFound) {
			return err
		}

		_, err = c.client.EnqueueContext(ctx, task,
			asynq.ProcessAt(runAt),
			asynq.Queue(c.queue),
			asynq.TaskID(viewingTaskID(sessionKey, i+1)),
		)
		if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
			return err
		}
	}

	return nil
}

// CancelFollowUps drops every pending nudge for the session, for
// example once the conversation is handed to a manager.
func (c *Client) CancelFollowUps(ctx context.Context, sessionKey string) error {
	if c == nil || c.inspector == nil {
		return nil
	}

	for i := range followUpSequence {
		err := c.inspector.DeleteTask(c.queue, followUpTaskID(sessionKey, i+1))
		if err != nil && !errors.Is(err, asynq.ErrTaskNotFound) && !errors.Is(err, asynq.ErrQueueNotFound) {
			return err
		}
	}

	return nil
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
