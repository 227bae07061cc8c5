package billing

import (
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the billing context
const (
	EventTypeInvoiceCreated       = "billing.invoice.created"
	EventTypeInvoiceSent          = "billing.invoice.sent"
	EventTypeInvoicePartiallyPaid = "billing.invoice.partially_paid"
	EventTypeInvoicePaid          = "billing.invoice.paid"
	EventTypeInvoiceOverdue       = "billing.invoice.overdue"
	EventTypeInvoiceCancelled     = "billing.invoice.cancelled"
	EventTypeLateFeeApplied       = "billing.invoice.late_fee_applied"
	EventTypeRecurringGenerated   = "billing.invoice.recurring_generated"
)

const aggregateTypeInvoice = "Invoice"

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string    `json:"invoice_number"`
	ClientID      uuid.UUID `json:"client_id"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(invoiceID uuid.UUID, invoiceNumber string, clientID uuid.UUID) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, aggregateTypeInvoice, invoiceID),
		InvoiceNumber:   invoiceNumber,
		ClientID:        clientID,
	}
}

// InvoiceSentEvent is raised when an invoice is issued to a client
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string    `json:"invoice_number"`
	ClientID      uuid.UUID `json:"client_id"`
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(invoiceID uuid.UUID, invoiceNumber string, clientID uuid.UUID) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSent, aggregateTypeInvoice, invoiceID),
		InvoiceNumber:   invoiceNumber,
		ClientID:        clientID,
	}
}

// InvoicePartiallyPaidEvent is raised when a payment leaves a balance
type InvoicePartiallyPaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Remaining     decimal.Decimal `json:"remaining"`
}

// NewInvoicePartiallyPaidEvent creates a new InvoicePartiallyPaidEvent
func NewInvoicePartiallyPaidEvent(invoiceID uuid.UUID, invoiceNumber string, amount, remaining decimal.Decimal) *InvoicePartiallyPaidEvent {
	return &InvoicePartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePartiallyPaid, aggregateTypeInvoice, invoiceID),
		InvoiceNumber:   invoiceNumber,
		Amount:          amount,
		Remaining:       remaining,
	}
}

// InvoicePaidEvent is raised when an invoice is settled in full
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(invoiceID uuid.UUID, invoiceNumber string, paidAmount decimal.Decimal) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, aggregateTypeInvoice, invoiceID),
		InvoiceNumber:   invoiceNumber,
		PaidAmount:      paidAmount,
	}
}

// InvoiceOverdueEvent is raised when an invoice passes its due date unpaid
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	DaysOverdue   int    `json:"days_overdue"`
}

// NewInvoiceOverdueEvent creates a new InvoiceOverdueEvent
func NewInvoiceOverdueEvent(invoiceID uuid.UUID, invoiceNumber string, daysOverdue int) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceOverdue, aggregateTypeInvoice, invoiceID),
		InvoiceNumber:   invoiceNumber,
		DaysOverdue:     daysOverdue,
	}
}

// InvoiceCancelledEvent is raised when an invoice is voided
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Reason        string `json:"reason"`
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(invoiceID uuid.UUID, invoiceNumber, reason string) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, aggregateTypeInvoice, invoiceID),
		InvoiceNumber:   invoiceNumber,
		Reason:          reason,
	}
}

// LateFeeAppliedEvent is raised when a late fee rule charges an invoice
type LateFeeAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	RuleID        uuid.UUID       `json:"rule_id"`
	FeeAmount     decimal.Decimal `json:"fee_amount"`
}

// NewLateFeeAppliedEvent creates a new LateFeeAppliedEvent
func NewLateFeeAppliedEvent(invoiceID uuid.UUID, invoiceNumber string, ruleID uuid.UUID, feeAmount decimal.Decimal) *LateFeeAppliedEvent {
	return &LateFeeAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLateFeeApplied, aggregateTypeInvoice, invoiceID),
		InvoiceNumber:   invoiceNumber,
		RuleID:          ruleID,
		FeeAmount:       feeAmount,
	}
}

// RecurringInvoiceGeneratedEvent is raised when the scheduler produces a
// new invoice from a recurring template
type RecurringInvoiceGeneratedEvent struct {
	shared.BaseDomainEvent
	SourceInvoiceID  uuid.UUID `json:"source_invoice_id"`
	NewInvoiceNumber string    `json:"new_invoice_number"`
}

// NewRecurringInvoiceGeneratedEvent creates a new RecurringInvoiceGeneratedEvent
func NewRecurringInvoiceGeneratedEvent(newInvoiceID, sourceInvoiceID uuid.UUID, newInvoiceNumber string) *RecurringInvoiceGeneratedEvent {
	return &RecurringInvoiceGeneratedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeRecurringGenerated, aggregateTypeInvoice, newInvoiceID),
		SourceInvoiceID:  sourceInvoiceID,
		NewInvoiceNumber: newInvoiceNumber,
	}
}
