package billing

import (
	"context"
	"time"

	"github.com/taxfolio/backend/internal/domain/billing"
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LateFeeService manages late fee rules and their application to overdue
// invoices. SweepOverdue is the entry point the scheduler calls.
type LateFeeService struct {
	invoiceRepo billing.InvoiceRepository
	ruleRepo    billing.LateFeeRuleRepository
}

// NewLateFeeService creates a new LateFeeService
func NewLateFeeService(invoiceRepo billing.InvoiceRepository, ruleRepo billing.LateFeeRuleRepository) *LateFeeService {
	return &LateFeeService{
		invoiceRepo: invoiceRepo,
		ruleRepo:    ruleRepo,
	}
}

// ===================== Requests =====================

// LateFeeRuleRequest is the input for creating or updating a rule
type LateFeeRuleRequest struct {
	Name            string           `json:"name" binding:"required"`
	Type            string           `json:"type" binding:"required"`
	Amount          decimal.Decimal  `json:"amount" binding:"required"`
	GracePeriodDays int              `json:"grace_period_days"`
	MaxAmount       *decimal.Decimal `json:"max_amount"`
}

// ===================== Responses =====================

// LateFeeRuleResponse represents a late fee rule in API responses
type LateFeeRuleResponse struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Type            string           `json:"type"`
	Amount          decimal.Decimal  `json:"amount"`
	GracePeriodDays int              `json:"grace_period_days"`
	MaxAmount       *decimal.Decimal `json:"max_amount,omitempty"`
	Active          bool             `json:"active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// SweepResult summarizes one overdue sweep run
type SweepResult struct {
	InvoicesExamined int             `json:"invoices_examined"`
	MarkedOverdue    int             `json:"marked_overdue"`
	FeesApplied      int             `json:"fees_applied"`
	TotalFees        decimal.Decimal `json:"total_fees"`
}

func toRuleResponse(rule *billing.LateFeeRule) *LateFeeRuleResponse {
	return &LateFeeRuleResponse{
		ID:              rule.ID,
		Name:            rule.Name,
		Type:            string(rule.Type),
		Amount:          rule.Amount,
		GracePeriodDays: rule.GracePeriodDays,
		MaxAmount:       rule.MaxAmount,
		Active:          rule.Active,
		CreatedAt:       rule.CreatedAt,
		UpdatedAt:       rule.UpdatedAt,
	}
}

// ===================== Rule management =====================

// CreateRule creates a new late fee rule
func (s *LateFeeService) CreateRule(ctx context.Context, req LateFeeRuleRequest) (*LateFeeRuleResponse, error) {
	rule, err := billing.NewLateFeeRule(req.Name, billing.LateFeeType(req.Type), req.Amount, req.GracePeriodDays, req.MaxAmount)
	if err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	return toRuleResponse(rule), nil
}

// UpdateRule updates an existing rule's configuration
func (s *LateFeeService) UpdateRule(ctx context.Context, id uuid.UUID, req LateFeeRuleRequest) (*LateFeeRuleResponse, error) {
	rule, err := s.findRule(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := rule.Update(req.Name, billing.LateFeeType(req.Type), req.Amount, req.GracePeriodDays, req.MaxAmount); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	return toRuleResponse(rule), nil
}

// GetRule gets a rule by ID
func (s *LateFeeService) GetRule(ctx context.Context, id uuid.UUID) (*LateFeeRuleResponse, error) {
	rule, err := s.findRule(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRuleResponse(rule), nil
}

// ListRules lists all rules with pagination
func (s *LateFeeService) ListRules(ctx context.Context, filter shared.Filter) ([]LateFeeRuleResponse, int64, error) {
	rules, err := s.ruleRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ruleRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LateFeeRuleResponse, len(rules))
	for i := range rules {
		responses[i] = *toRuleResponse(&rules[i])
	}
	return responses, total, nil
}

// SetRuleActive toggles whether the rule participates in sweeps
func (s *LateFeeService) SetRuleActive(ctx context.Context, id uuid.UUID, active bool) (*LateFeeRuleResponse, error) {
	rule, err := s.findRule(ctx, id)
	if err != nil {
		return nil, err
	}

	if active {
		rule.Activate()
	} else {
		rule.Deactivate()
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	return toRuleResponse(rule), nil
}

// DeleteRule removes a rule. Fees already applied to invoices are kept.
func (s *LateFeeService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findRule(ctx, id); err != nil {
		return err
	}
	return s.ruleRepo.Delete(ctx, id)
}

// ===================== Application =====================

// ApplyRule applies one rule to one invoice on demand
func (s *LateFeeService) ApplyRule(ctx context.Context, invoiceID, ruleID uuid.UUID) (*InvoiceResponse, error) {
	rule, err := s.findRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	now := time.Now()
	_ = invoice.MarkOverdue(now)
	if _, err := invoice.ApplyLateFee(rule, now); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// SweepOverdue marks past-due invoices overdue and applies every active
// rule whose grace period has elapsed. Re-running the sweep never charges
// the same rule twice on one invoice.
func (s *LateFeeService) SweepOverdue(ctx context.Context, asOf time.Time) (*SweepResult, error) {
	result := &SweepResult{TotalFees: decimal.Zero}

	candidates, err := s.invoiceRepo.FindOverdueCandidates(ctx, asOf)
	if err != nil {
		return nil, err
	}
	result.InvoicesExamined = len(candidates)

	rules, err := s.ruleRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	for idx := range candidates {
		invoice := &candidates[idx]
		changed := false

		if invoice.Status == billing.InvoiceStatusSent {
			if err := invoice.MarkOverdue(asOf); err == nil {
				result.MarkedOverdue++
				changed = true
			}
		}

		for r := range rules {
			rule := &rules[r]
			before := len(invoice.LateFeeApplications)
			application, err := invoice.ApplyLateFee(rule, asOf)
			if err != nil {
				continue
			}
			if len(invoice.LateFeeApplications) > before {
				result.FeesApplied++
				result.TotalFees = result.TotalFees.Add(application.Amount)
				changed = true
			}
		}

		if changed {
			if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

func (s *LateFeeService) findRule(ctx context.Context, id uuid.UUID) (*billing.LateFeeRule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Late fee rule not found")
	}
	return rule, nil
}
