package reminders

import (
	"context"
	"fmt"

	"sochi_assistant_backend/internal/dialog/repository"
	"sochi_assistant_backend/internal/events"
	"sochi_assistant_backend/platform/apperr"
	"sochi_assistant_backend/platform/config"
	"sochi_assistant_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes scheduled follow-up tasks and turns the ones still
// relevant into FollowUpDue events for downstream delivery.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetSchedulerConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskFollowUp, w.handleFollowUp)
	mux.HandleFunc(TaskViewingReminder, w.handleViewingReminder)

	return w, nil
}

func (w *Worker) handleViewingReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseViewingReminderPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	w.log.Info("viewing reminder due",
		"session", payload.SessionKey,
		"slot", payload.SlotAt,
	)

	return w.bus.PublishSync(ctx, events.ViewingReminderDue{
		BaseEvent:  events.NewBaseEvent(),
		SessionKey: payload.SessionKey,
		LeadID:     leadID,
		SlotAt:     payload.SlotAt,
		Message:    RenderViewingMessage(payload.SessionKey, payload.Name, payload.SlotAt),
	})
}

func (w *Worker) handleFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	name := payload.Name

	// The stored lead may have learned a name or been handed over since
	// the task was scheduled; a missing record just means the store
	// never caught up and the payload stands on its own.
	lead, err := w.repo.GetLead(ctx, payload.SessionKey)
	switch {
	case err == nil:
		if lead.Name != "" {
			name = lead.Name
		}
	case !apperr.Is(err, apperr.KindNotFound):
		return err
	}

	message := RenderMessage(payload.Template, payload.SessionKey, name)
	if message == "" {
		w.log.Warn("unknown follow-up template", "template", payload.Template, "session", payload.SessionKey)
		return nil
	}

	w.log.Info("follow-up due",
		"session", payload.SessionKey,
		"attempt", payload.Attempt,
		"template", payload.Template,
	)

	return w.bus.PublishSync(ctx, events.FollowUpDue{
		BaseEvent:  events.NewBaseEvent(),
		SessionKey: payload.SessionKey,
		LeadID:     leadID,
		Attempt:    payload.Attempt,
		Message:    message,
	})
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("reminder worker stopped", "error", err)
	}
}
