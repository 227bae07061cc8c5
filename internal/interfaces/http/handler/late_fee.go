package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/taxfolio/backend/internal/application/billing"
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/taxfolio/backend/internal/interfaces/http/dto"
)

// LateFeeHandler handles late fee rule and overdue sweep endpoints
type LateFeeHandler struct {
	BaseHandler
	lateFeeService *billingapp.LateFeeService
}

// NewLateFeeHandler creates a new LateFeeHandler
func NewLateFeeHandler(lateFeeService *billingapp.LateFeeService) *LateFeeHandler {
	return &LateFeeHandler{
		lateFeeService: lateFeeService,
	}
}

// RegisterRoutes registers late fee routes
func (h *LateFeeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rules := rg.Group("/billing/late-fee-rules")
	{
		rules.POST("", h.CreateRule)
		rules.GET("", h.ListRules)
		rules.GET("/:id", h.GetRule)
		rules.PUT("/:id", h.UpdateRule)
		rules.DELETE("/:id", h.DeleteRule)
		rules.POST("/:id/activate", h.ActivateRule)
		rules.POST("/:id/deactivate", h.DeactivateRule)
	}

	rg.POST("/billing/invoices/:id/late-fees/:ruleId", h.ApplyRule)
	rg.POST("/billing/overdue/sweep", h.SweepOverdue)
}

// CreateRule creates a new late fee rule
func (h *LateFeeHandler) CreateRule(c *gin.Context) {
	var req billingapp.LateFeeRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.lateFeeService.CreateRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetRule returns a single late fee rule
func (h *LateFeeHandler) GetRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	resp, err := h.lateFeeService.GetRule(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListRules returns late fee rules
func (h *LateFeeHandler) ListRules(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}

	rules, total, err := h.lateFeeService.ListRules(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, rules, total, req.Page, req.PageSize)
}

// UpdateRule updates a late fee rule
func (h *LateFeeHandler) UpdateRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	var req billingapp.LateFeeRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.lateFeeService.UpdateRule(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DeleteRule deletes a late fee rule
func (h *LateFeeHandler) DeleteRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	if err := h.lateFeeService.DeleteRule(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ActivateRule marks a rule as active
func (h *LateFeeHandler) ActivateRule(c *gin.Context) {
	h.setRuleActive(c, true)
}

// DeactivateRule marks a rule as inactive
func (h *LateFeeHandler) DeactivateRule(c *gin.Context) {
	h.setRuleActive(c, false)
}

func (h *LateFeeHandler) setRuleActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	resp, err := h.lateFeeService.SetRuleActive(c.Request.Context(), id, active)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ApplyRule applies a late fee rule to an overdue invoice
func (h *LateFeeHandler) ApplyRule(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	ruleID, err := uuid.Parse(c.Param("ruleId"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	resp, err := h.lateFeeService.ApplyRule(c.Request.Context(), invoiceID, ruleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// SweepOverdue runs an immediate overdue sweep and returns its result
func (h *LateFeeHandler) SweepOverdue(c *gin.Context) {
	result, err := h.lateFeeService.SweepOverdue(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
