package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/taxfolio/backend/internal/application/billing"
)

// RecurringHandler handles recurring invoice generation endpoints
type RecurringHandler struct {
	BaseHandler
	recurringService *billingapp.RecurringService
}

// NewRecurringHandler creates a new RecurringHandler
func NewRecurringHandler(recurringService *billingapp.RecurringService) *RecurringHandler {
	return &RecurringHandler{
		recurringService: recurringService,
	}
}

// RegisterRoutes registers recurring generation routes
func (h *RecurringHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/billing/recurring/generate", h.GenerateDue)
	rg.POST("/billing/invoices/:id/generate", h.GenerateNow)
}

// GenerateDue generates invoices for all recurring templates that are due
func (h *RecurringHandler) GenerateDue(c *gin.Context) {
	result, err := h.recurringService.GenerateDue(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GenerateNow generates the next invoice from a recurring template immediately
func (h *RecurringHandler) GenerateNow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.recurringService.GenerateNow(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}
