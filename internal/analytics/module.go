// Package analytics records dialog events into a persistent timeline
// and serves per-session summaries over HTTP.
package analytics

import (
	"sochi_assistant_backend/internal/events"
	apphttp "sochi_assistant_backend/internal/http"
	"sochi_assistant_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the analytics bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule wires the analytics sink into the event bus and prepares
// the read endpoints.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	NewSink(repo, log).Subscribe(bus)

	return &Module{handler: NewHandler(repo)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// RegisterRoutes mounts the analytics routes under /api/v1/dialog.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/dialog"))
}
