package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/taxfolio/backend/internal/application/billing"
)

// DashboardHandler serves the billing summary endpoint
type DashboardHandler struct {
	BaseHandler
	dashboardService *billingapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *billingapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/billing/dashboard/summary", h.Summary)
}

// Summary returns aggregate billing figures as of now
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboardService.GetSummary(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
