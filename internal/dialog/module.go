// Package dialog provides the conversational funnel bounded context:
// message extraction, stage tracking, lead qualification and escalation.
package dialog

import (
	"context"
	"time"

	"sochi_assistant_backend/internal/dialog/extract"
	"sochi_assistant_backend/internal/dialog/handler"
	"sochi_assistant_backend/internal/dialog/repository"
	"sochi_assistant_backend/internal/dialog/service"
	"sochi_assistant_backend/internal/dialog/session"
	"sochi_assistant_backend/internal/events"
	apphttp "sochi_assistant_backend/internal/http"
	"sochi_assistant_backend/platform/config"
	"sochi_assistant_backend/platform/logger"
	"sochi_assistant_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the dialog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates and initializes the dialog module with all its
// dependencies. The Redis client is optional; without it leads are read
// straight from Postgres.
func NewModule(pool *pgxpool.Pool, rdb *redis.Client, reminders service.ReminderScheduler, bus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger) *Module {
	var store service.LeadStore

	repo := repository.New(pool)
	store = repo
	if rdb != nil {
		store = repository.NewCachedStore(repo, rdb, cfg.GetSessionTTL())
	}

	registry := session.NewRegistry(cfg.GetSessionTTL())
	extractor := extract.New(cfg.GetUSDRate())

	svc := service.New(registry, extractor, store, reminders, bus, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dialog"
}

// RegisterRoutes mounts the dialog routes under /api/v1/dialog.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/dialog"))
}

// Service exposes the dialog service for other composition-root
// consumers (the sweeper, tests).
func (m *Module) Service() *service.Service {
	return m.service
}

// RunSweeper periodically evicts idle sessions until the context is
// cancelled. Expired sessions are announced on the event bus by the
// service.
func (m *Module) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.service.SweepExpired(ctx)
		}
	}
}
