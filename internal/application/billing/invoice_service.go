package billing

import (
	"context"
	"time"

	"github.com/taxfolio/backend/internal/domain/billing"
	"github.com/taxfolio/backend/internal/domain/partner"
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceNumberPrefix is the series prefix for generated invoice numbers
const InvoiceNumberPrefix = "INV"

// InvoiceService provides application-level invoice operations. The seller
// state code comes from the business's own GST registration and drives
// intra-state versus inter-state tax resolution.
type InvoiceService struct {
	invoiceRepo     billing.InvoiceRepository
	clientRepo      partner.ClientRepository
	sellerStateCode string
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo billing.InvoiceRepository, clientRepo partner.ClientRepository, sellerStateCode string) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:     invoiceRepo,
		clientRepo:      clientRepo,
		sellerStateCode: sellerStateCode,
	}
}

// ===================== Requests =====================

// LineItemRequest carries one line item in create and update requests
type LineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	HSNCode     string          `json:"hsn_code"`
}

// CreateInvoiceRequest is the input for creating an invoice
type CreateInvoiceRequest struct {
	ClientID        uuid.UUID         `json:"client_id" binding:"required"`
	ProjectID       *uuid.UUID        `json:"project_id"`
	IssueDate       time.Time         `json:"issue_date" binding:"required"`
	DueDate         time.Time         `json:"due_date" binding:"required"`
	PaymentTerms    string            `json:"payment_terms"`
	Notes           string            `json:"notes"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
	DiscountAmount  decimal.Decimal   `json:"discount_amount"`
	LineItems       []LineItemRequest `json:"line_items"`
}

// SetDiscountRequest is the input for changing an invoice's discount.
// A fixed amount takes precedence over a percentage when both are set.
type SetDiscountRequest struct {
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
}

// RecordPaymentRequest is the input for recording a payment
type RecordPaymentRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Method     string          `json:"method" binding:"required"`
	Reference  string          `json:"reference"`
	Notes      string          `json:"notes"`
	ReceivedAt *time.Time      `json:"received_at"`
}

// EnableRecurrenceRequest is the input for turning an invoice into a
// recurring template
type EnableRecurrenceRequest struct {
	Frequency     string    `json:"frequency" binding:"required"`
	NextIssueDate time.Time `json:"next_issue_date" binding:"required"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search        string     `form:"search"`
	ClientID      *uuid.UUID `form:"client_id"`
	ProjectID     *uuid.UUID `form:"project_id"`
	Status        string     `form:"status"`
	PaymentStatus string     `form:"payment_status"`
	IssuedFrom    *time.Time `form:"issued_from" time_format:"2006-01-02"`
	IssuedTo      *time.Time `form:"issued_to" time_format:"2006-01-02"`
	IsRecurring   *bool      `form:"is_recurring"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
}

// ===================== Responses =====================

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	HSNCode       string          `json:"hsn_code,omitempty"`
	ExtendedPrice decimal.Decimal `json:"extended_price"`
}

// TaxBreakdownResponse represents the GST split in API responses
type TaxBreakdownResponse struct {
	CGSTRate   decimal.Decimal `json:"cgst_rate"`
	CGSTAmount decimal.Decimal `json:"cgst_amount"`
	SGSTRate   decimal.Decimal `json:"sgst_rate"`
	SGSTAmount decimal.Decimal `json:"sgst_amount"`
	IGSTRate   decimal.Decimal `json:"igst_rate"`
	IGSTAmount decimal.Decimal `json:"igst_amount"`
}

// PaymentEntryResponse represents a recorded payment in API responses
type PaymentEntryResponse struct {
	ID         uuid.UUID       `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// LateFeeApplicationResponse represents an applied late fee in API responses
type LateFeeApplicationResponse struct {
	ID        uuid.UUID       `json:"id"`
	RuleID    uuid.UUID       `json:"rule_id"`
	RuleName  string          `json:"rule_name"`
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"applied_at"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID              uuid.UUID                    `json:"id"`
	InvoiceNumber   string                       `json:"invoice_number"`
	ClientID        uuid.UUID                    `json:"client_id"`
	ClientName      string                       `json:"client_name"`
	ProjectID       *uuid.UUID                   `json:"project_id,omitempty"`
	Currency        string                       `json:"currency"`
	TaxTreatment    string                       `json:"tax_treatment"`
	LineItems       []LineItemResponse           `json:"line_items"`
	Subtotal        decimal.Decimal              `json:"subtotal"`
	Tax             TaxBreakdownResponse         `json:"tax"`
	TaxTotal        decimal.Decimal              `json:"tax_total"`
	DiscountPercent decimal.Decimal              `json:"discount_percent"`
	DiscountAmount  decimal.Decimal              `json:"discount_amount"`
	DiscountTotal   decimal.Decimal              `json:"discount_total"`
	LateFeeTotal    decimal.Decimal              `json:"late_fee_total"`
	TotalAmount     decimal.Decimal              `json:"total_amount"`
	PaidAmount      decimal.Decimal              `json:"paid_amount"`
	RemainingAmount decimal.Decimal              `json:"remaining_amount"`
	Status          string                       `json:"status"`
	PaymentStatus   string                       `json:"payment_status"`
	IssueDate       time.Time                    `json:"issue_date"`
	DueDate         time.Time                    `json:"due_date"`
	PaymentTerms    string                       `json:"payment_terms,omitempty"`
	Notes           string                       `json:"notes,omitempty"`
	IsRecurring     bool                         `json:"is_recurring"`
	Frequency       string                       `json:"frequency,omitempty"`
	NextIssueDate   *time.Time                   `json:"next_issue_date,omitempty"`
	Payments        []PaymentEntryResponse       `json:"payments,omitempty"`
	LateFees        []LateFeeApplicationResponse `json:"late_fees,omitempty"`
	SentAt          *time.Time                   `json:"sent_at,omitempty"`
	PaidAt          *time.Time                   `json:"paid_at,omitempty"`
	CancelledAt     *time.Time                   `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
	Version         int                          `json:"version"`
}

func toInvoiceResponse(invoice *billing.Invoice) *InvoiceResponse {
	items := make([]LineItemResponse, len(invoice.LineItems))
	for i, item := range invoice.LineItems {
		items[i] = LineItemResponse{
			ID:            item.ID,
			Description:   item.Description,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TaxRate:       item.TaxRate,
			HSNCode:       item.HSNCode,
			ExtendedPrice: item.ExtendedPrice(),
		}
	}

	payments := make([]PaymentEntryResponse, len(invoice.Payments))
	for i, p := range invoice.Payments {
		payments[i] = PaymentEntryResponse{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     string(p.Method),
			Reference:  p.Reference,
			Notes:      p.Notes,
			ReceivedAt: p.ReceivedAt,
			RecordedAt: p.RecordedAt,
		}
	}

	lateFees := make([]LateFeeApplicationResponse, len(invoice.LateFeeApplications))
	for i, a := range invoice.LateFeeApplications {
		lateFees[i] = LateFeeApplicationResponse{
			ID:        a.ID,
			RuleID:    a.RuleID,
			RuleName:  a.RuleName,
			Amount:    a.Amount,
			AppliedAt: a.AppliedAt,
		}
	}

	return &InvoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		ClientID:      invoice.ClientID,
		ClientName:    invoice.ClientName,
		ProjectID:     invoice.ProjectID,
		Currency:      string(invoice.Currency),
		TaxTreatment:  invoice.TaxTreatment.String(),
		LineItems:     items,
		Subtotal:      invoice.Subtotal,
		Tax: TaxBreakdownResponse{
			CGSTRate:   invoice.Tax.CGSTRate,
			CGSTAmount: invoice.Tax.CGSTAmount,
			SGSTRate:   invoice.Tax.SGSTRate,
			SGSTAmount: invoice.Tax.SGSTAmount,
			IGSTRate:   invoice.Tax.IGSTRate,
			IGSTAmount: invoice.Tax.IGSTAmount,
		},
		TaxTotal:        invoice.TaxTotal,
		DiscountPercent: invoice.DiscountPercent,
		DiscountAmount:  invoice.DiscountAmount,
		DiscountTotal:   invoice.DiscountTotal,
		LateFeeTotal:    invoice.LateFeeTotal,
		TotalAmount:     invoice.TotalAmount,
		PaidAmount:      invoice.PaidAmount,
		RemainingAmount: invoice.RemainingAmount(),
		Status:          invoice.Status.String(),
		PaymentStatus:   string(invoice.PaymentStatus),
		IssueDate:       invoice.IssueDate,
		DueDate:         invoice.DueDate,
		PaymentTerms:    invoice.PaymentTerms,
		Notes:           invoice.Notes,
		IsRecurring:     invoice.IsRecurring,
		Frequency:       invoice.Frequency.String(),
		NextIssueDate:   invoice.NextIssueDate,
		Payments:        payments,
		LateFees:        lateFees,
		SentAt:          invoice.SentAt,
		PaidAt:          invoice.PaidAt,
		CancelledAt:     invoice.CancelledAt,
		CreatedAt:       invoice.CreatedAt,
		UpdatedAt:       invoice.UpdatedAt,
		Version:         invoice.Version,
	}
}

// ===================== Operations =====================

// CreateInvoice creates a draft invoice for a client. Tax treatment is
// resolved from the client's GSTIN state code against the seller's.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
	}
	if !client.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot invoice an inactive client")
	}

	treatment := billing.DetermineTaxTreatment(client.StateCode, s.sellerStateCode)

	number, err := s.invoiceRepo.NextInvoiceNumber(ctx, InvoiceNumberPrefix)
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(number, client.ID, client.Name, treatment, req.IssueDate, req.DueDate)
	if err != nil {
		return nil, err
	}
	invoice.SetProject(req.ProjectID)
	invoice.SetPaymentTerms(req.PaymentTerms)
	invoice.SetNotes(req.Notes)

	for _, item := range req.LineItems {
		if _, err := invoice.AddLineItem(item.Description, item.Quantity, item.UnitPrice, item.TaxRate, item.HSNCode); err != nil {
			return nil, err
		}
	}
	if err := invoice.SetDiscount(req.DiscountPercent, req.DiscountAmount); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// GetInvoice gets an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := billing.InvoiceFilter{
		ClientID:    filter.ClientID,
		ProjectID:   filter.ProjectID,
		IssuedFrom:  filter.IssuedFrom,
		IssuedTo:    filter.IssuedTo,
		IsRecurring: filter.IsRecurring,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := billing.InvoiceStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.PaymentStatus != "" {
		paymentStatus := billing.PaymentStatus(filter.PaymentStatus)
		domainFilter.PaymentStatus = &paymentStatus
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i])
	}
	return responses, total, nil
}

// AddLineItem adds a line item to a draft invoice
func (s *InvoiceService) AddLineItem(ctx context.Context, invoiceID uuid.UUID, req LineItemRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if _, err := invoice.AddLineItem(req.Description, req.Quantity, req.UnitPrice, req.TaxRate, req.HSNCode); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// UpdateLineItem replaces a line item on a draft invoice
func (s *InvoiceService) UpdateLineItem(ctx context.Context, invoiceID, itemID uuid.UUID, req LineItemRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.UpdateLineItem(itemID, req.Description, req.Quantity, req.UnitPrice, req.TaxRate, req.HSNCode); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// RemoveLineItem deletes a line item from a draft invoice
func (s *InvoiceService) RemoveLineItem(ctx context.Context, invoiceID, itemID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.RemoveLineItem(itemID); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// SetDiscount changes the discount on a draft invoice and rebuilds its
// totals
func (s *InvoiceService) SetDiscount(ctx context.Context, invoiceID uuid.UUID, req SetDiscountRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.SetDiscount(req.DiscountPercent, req.DiscountAmount); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// SendInvoice issues a draft invoice to its client
func (s *InvoiceService) SendInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.MarkSent(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// RecordPayment records a payment against an invoice
func (s *InvoiceService) RecordPayment(ctx context.Context, id uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	if err := invoice.RecordPayment(req.Amount, billing.PaymentMethod(req.Method), req.Reference, req.Notes, receivedAt); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// CancelInvoice voids an invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID, reason string) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// EnableRecurrence turns an invoice into a recurring template
func (s *InvoiceService) EnableRecurrence(ctx context.Context, id uuid.UUID, req EnableRecurrenceRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.EnableRecurrence(billing.RecurrenceFrequency(req.Frequency), req.NextIssueDate); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// DisableRecurrence stops future generation from an invoice
func (s *InvoiceService) DisableRecurrence(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	invoice.DisableRecurrence()
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// DeleteInvoice removes a draft invoice. Issued invoices are cancelled,
// never deleted.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return err
	}
	if invoice.Status != billing.InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be deleted")
	}
	return s.invoiceRepo.Delete(ctx, id)
}

func (s *InvoiceService) findInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return invoice, nil
}
