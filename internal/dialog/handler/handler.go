// Package handler exposes the dialog engine over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sochi_assistant_backend/internal/dialog/domain"
	"sochi_assistant_backend/internal/dialog/service"
	"sochi_assistant_backend/internal/dialog/transport"
	"sochi_assistant_backend/platform/httpkit"
	"sochi_assistant_backend/platform/sanitize"
	"sochi_assistant_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the dialog engine.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new dialog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the dialog routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/turns", h.ProcessTurn)
	rg.GET("/leads", h.ListLeads)
	rg.GET("/leads/:sessionKey", h.GetLead)
	rg.GET("/sessions/:key", h.GetSession)
	rg.GET("/sessions", h.Stats)
}

// ProcessTurn handles POST /api/v1/dialog/turns
func (h *Handler) ProcessTurn(c *gin.Context) {
	var req transport.ProcessTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ProcessTurn(c.Request.Context(), service.TurnInput{
		ChatID:    req.ChatID,
		UserID:    req.UserID,
		GroupChat: req.GroupChat,
		Message:   sanitize.Text(req.Message),
		Name:      sanitize.Text(req.Name),
		Handle:    sanitize.Text(req.Handle),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.NewTurnResponse(result))
}

// ListLeads handles GET /api/v1/dialog/leads?tier=hot&limit=50
func (h *Handler) ListLeads(c *gin.Context) {
	tier := domain.Tier(c.DefaultQuery("tier", string(domain.TierHot)))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "limit must be an integer")
		return
	}

	keys, err := h.svc.LeadsByTier(c.Request.Context(), tier, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.LeadListResponse{Tier: string(tier), SessionKeys: keys})
}

// GetLead handles GET /api/v1/dialog/leads/:sessionKey
func (h *Handler) GetLead(c *gin.Context) {
	snap, err := h.svc.Session(c.Request.Context(), c.Param("sessionKey"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap.Lead)
}

// GetSession handles GET /api/v1/dialog/sessions/:key
func (h *Handler) GetSession(c *gin.Context) {
	snap, err := h.svc.Session(c.Request.Context(), c.Param("key"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.NewSessionResponse(snap))
}

// Stats handles GET /api/v1/dialog/sessions
func (h *Handler) Stats(c *gin.Context) {
	httpkit.OK(c, h.svc.Stats())
}
