package billing

import (
	"context"
	"time"

	"github.com/taxfolio/backend/internal/domain/billing"
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RecurringService generates invoices from recurring templates. The
// scheduler calls GenerateDue on an interval; each due template produces
// one fresh draft invoice and has its schedule advanced.
type RecurringService struct {
	invoiceRepo billing.InvoiceRepository
}

// NewRecurringService creates a new RecurringService
func NewRecurringService(invoiceRepo billing.InvoiceRepository) *RecurringService {
	return &RecurringService{invoiceRepo: invoiceRepo}
}

// GenerationResult summarizes one recurring generation run
type GenerationResult struct {
	TemplatesDue int         `json:"templates_due"`
	Generated    int         `json:"generated"`
	GeneratedIDs []uuid.UUID `json:"generated_ids,omitempty"`
}

// GenerateDue produces new invoices for every recurring template whose
// next issue date has arrived. Each new invoice starts as a draft with
// copied line items, a clean payment history, and a due date derived from
// the template's payment terms.
func (s *RecurringService) GenerateDue(ctx context.Context, asOf time.Time) (*GenerationResult, error) {
	result := &GenerationResult{}

	templates, err := s.invoiceRepo.FindRecurringDue(ctx, asOf)
	if err != nil {
		return nil, err
	}
	result.TemplatesDue = len(templates)

	for idx := range templates {
		source := &templates[idx]

		generated, err := s.generateOne(ctx, source, asOf)
		if err != nil {
			return result, err
		}
		if generated != nil {
			result.Generated++
			result.GeneratedIDs = append(result.GeneratedIDs, generated.ID)
		}
	}

	return result, nil
}

// GenerateNow forces generation from a single template regardless of its
// schedule position, used by the manual trigger endpoint.
func (s *RecurringService) GenerateNow(ctx context.Context, sourceID uuid.UUID) (*InvoiceResponse, error) {
	source, err := s.invoiceRepo.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	// treat the schedule as due right now
	now := time.Now()
	if source.NextIssueDate != nil && source.NextIssueDate.After(now) {
		now = *source.NextIssueDate
	}

	generated, err := s.generateOne(ctx, source, now)
	if err != nil {
		return nil, err
	}
	if generated == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Invoice is not a recurring template")
	}
	return toInvoiceResponse(generated), nil
}

func (s *RecurringService) generateOne(ctx context.Context, source *billing.Invoice, asOf time.Time) (*billing.Invoice, error) {
	template, err := billing.GenerateNext(source, asOf)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, nil
	}

	number, err := s.invoiceRepo.NextInvoiceNumber(ctx, InvoiceNumberPrefix)
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(number, template.ClientID, template.ClientName, template.TaxTreatment, template.IssueDate, template.DueDate)
	if err != nil {
		return nil, err
	}
	invoice.SetProject(template.ProjectID)
	invoice.SetPaymentTerms(template.PaymentTerms)
	invoice.SetNotes(template.Notes)
	invoice.LineItems = template.LineItems
	if err := invoice.SetDiscount(template.DiscountPercent, template.DiscountAmount); err != nil {
		return nil, err
	}
	invoice.AddDomainEvent(billing.NewRecurringInvoiceGeneratedEvent(invoice.ID, source.ID, number))

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	if err := billing.AdvanceSchedule(source); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, source); err != nil {
		return nil, err
	}

	return invoice, nil
}
