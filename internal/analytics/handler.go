package analytics

import (
	"strconv"

	"sochi_assistant_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler serves the analytics read endpoints.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes registers the analytics routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads/:sessionKey/analytics", h.Summary)
	rg.GET("/leads/:sessionKey/timeline", h.Timeline)
}

func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.repo.Summary(c.Request.Context(), c.Param("sessionKey"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, summary)
}

func (h *Handler) Timeline(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	records, err := h.repo.Timeline(c.Request.Context(), c.Param("sessionKey"), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	if records == nil {
		records = []EventRecord{}
	}
	httpkit.OK(c, gin.H{"events": records})
}
