package billing

import (
	"time"

	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/taxfolio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for states that accept no further transitions
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// PaymentStatus tracks settlement independently of the lifecycle status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// Invoice is the aggregate root of the billing context. All monetary
// figures are derived from line items at full precision and rounded once
// during Recalculate; stored totals are always display-rounded.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber   string
	ClientID        uuid.UUID
	ClientName      string
	ProjectID       *uuid.UUID
	Currency        valueobject.Currency
	TaxTreatment    TaxTreatment
	LineItems       LineItems
	Subtotal        decimal.Decimal
	Tax             TaxBreakdown
	TaxTotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountTotal   decimal.Decimal
	LateFeeTotal    decimal.Decimal
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	Status          InvoiceStatus
	PaymentStatus   PaymentStatus
	IssueDate       time.Time
	DueDate         time.Time
	PaymentTerms    string
	Notes           string
	IsRecurring     bool
	Frequency       RecurrenceFrequency
	NextIssueDate   *time.Time

	Payments            PaymentEntries
	LateFeeApplications LateFeeApplications

	SentAt      *time.Time
	PaidAt      *time.Time
	CancelledAt *time.Time
}

// NewInvoice creates a draft invoice for a client. Due date must not
// precede the issue date. Line items are added afterwards; totals start
// at zero and follow from Recalculate.
func NewInvoice(invoiceNumber string, clientID uuid.UUID, clientName string, treatment TaxTreatment, issueDate, dueDate time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice number cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Client ID is required")
	}
	if !treatment.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invalid tax treatment")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "Due date cannot be before issue date")
	}

	invoice := &Invoice{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		InvoiceNumber:       invoiceNumber,
		ClientID:            clientID,
		ClientName:          clientName,
		Currency:            valueobject.DefaultCurrency,
		TaxTreatment:        treatment,
		LineItems:           LineItems{},
		Subtotal:            decimal.Zero,
		Tax:                 ZeroTaxBreakdown(),
		TaxTotal:            decimal.Zero,
		DiscountPercent:     decimal.Zero,
		DiscountAmount:      decimal.Zero,
		DiscountTotal:       decimal.Zero,
		LateFeeTotal:        decimal.Zero,
		TotalAmount:         decimal.Zero,
		PaidAmount:          decimal.Zero,
		Status:              InvoiceStatusDraft,
		PaymentStatus:       PaymentStatusPending,
		IssueDate:           issueDate,
		DueDate:             dueDate,
		Payments:            PaymentEntries{},
		LateFeeApplications: LateFeeApplications{},
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice.ID, invoiceNumber, clientID))
	return invoice, nil
}

// AddLineItem appends a validated line item and recalculates totals.
// Only draft invoices can be edited.
func (i *Invoice) AddLineItem(description string, quantity, unitPrice, taxRate decimal.Decimal, hsnCode string) (*LineItem, error) {
	if i.Status != InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Line items can only be modified on draft invoices")
	}

	item, err := NewLineItem(description, quantity, unitPrice, taxRate, hsnCode)
	if err != nil {
		return nil, err
	}

	i.LineItems = append(i.LineItems, *item)
	i.Recalculate()
	return item, nil
}

// UpdateLineItem replaces the fields of an existing line item
func (i *Invoice) UpdateLineItem(itemID uuid.UUID, description string, quantity, unitPrice, taxRate decimal.Decimal, hsnCode string) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Line items can only be modified on draft invoices")
	}

	for idx := range i.LineItems {
		if i.LineItems[idx].ID == itemID {
			replacement, err := NewLineItem(description, quantity, unitPrice, taxRate, hsnCode)
			if err != nil {
				return err
			}
			replacement.ID = itemID
			i.LineItems[idx] = *replacement
			i.Recalculate()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RemoveLineItem deletes a line item by ID
func (i *Invoice) RemoveLineItem(itemID uuid.UUID) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Line items can only be modified on draft invoices")
	}

	for idx := range i.LineItems {
		if i.LineItems[idx].ID == itemID {
			i.LineItems = append(i.LineItems[:idx], i.LineItems[idx+1:]...)
			i.Recalculate()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Recalculate rebuilds all derived monetary figures from the line items.
// Tax is computed per distinct nominal rate over that rate's taxable base,
// then summed. All intermediate sums keep full precision; rounding to
// display precision happens exactly once, here.
func (i *Invoice) Recalculate() {
	subtotal := i.LineItems.Subtotal()

	tax := ZeroTaxBreakdown()
	for _, rate := range i.LineItems.DistinctTaxRates() {
		base := i.LineItems.TaxableBaseForRate(rate)
		tax = tax.Add(ResolveGST(i.TaxTreatment, base, rate))
	}
	tax = tax.Round(valueobject.DisplayPrecision)

	i.Subtotal = valueobject.RoundDisplay(subtotal)
	i.Tax = tax
	i.TaxTotal = tax.TotalAmount()
	i.DiscountTotal = i.discountFor(i.Subtotal.Add(i.TaxTotal))
	i.TotalAmount = i.Subtotal.Add(i.TaxTotal).Sub(i.DiscountTotal).Add(i.LateFeeTotal)
	i.UpdatedAt = time.Now()
}

// discountFor resolves the configured discount against the pre-discount
// base. A fixed amount takes precedence over a percentage when both are
// set. The discount never exceeds the base.
func (i *Invoice) discountFor(base decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch {
	case i.DiscountAmount.IsPositive():
		discount = i.DiscountAmount
	case i.DiscountPercent.IsPositive():
		discount = base.Mul(i.DiscountPercent).Div(decimal.NewFromInt(100))
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(base) {
		discount = base
	}
	return valueobject.RoundDisplay(discount)
}

// SetDiscount configures an invoice-level discount as a percentage of the
// pre-discount total, a fixed amount, or both. Totals are rebuilt
// immediately.
func (i *Invoice) SetDiscount(percent, amount decimal.Decimal) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Discounts can only be changed on draft invoices")
	}
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_INPUT", "Discount percent must be between 0 and 100")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Discount amount cannot be negative")
	}

	i.DiscountPercent = percent
	i.DiscountAmount = amount
	i.Recalculate()
	return nil
}

// RemainingAmount returns the outstanding balance, clamped at zero so
// overpayments never produce a negative figure.
func (i *Invoice) RemainingAmount() decimal.Decimal {
	remaining := i.TotalAmount.Sub(i.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// RecordPayment appends a payment entry and updates settlement state.
// Overpayment is accepted and recorded in full. Cancelled invoices
// reject payments.
func (i *Invoice) RecordPayment(amount decimal.Decimal, method PaymentMethod, reference, notes string, receivedAt time.Time) error {
	if i.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Cannot record a payment on a cancelled invoice")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT", "Unknown payment method")
	}

	entry := PaymentEntry{
		ID:         uuid.New(),
		Amount:     amount,
		Method:     method,
		Reference:  reference,
		Notes:      notes,
		ReceivedAt: receivedAt,
		RecordedAt: time.Now(),
	}
	i.Payments = append(i.Payments, entry)
	i.PaidAmount = i.PaidAmount.Add(amount)
	i.UpdatedAt = time.Now()

	if i.PaidAmount.GreaterThanOrEqual(i.TotalAmount) {
		i.PaymentStatus = PaymentStatusPaid
		i.Status = InvoiceStatusPaid
		now := time.Now()
		i.PaidAt = &now
		i.AddDomainEvent(NewInvoicePaidEvent(i.ID, i.InvoiceNumber, i.PaidAmount))
	} else {
		i.PaymentStatus = PaymentStatusPartial
		i.AddDomainEvent(NewInvoicePartiallyPaidEvent(i.ID, i.InvoiceNumber, amount, i.RemainingAmount()))
	}
	return nil
}

// MarkSent transitions a draft invoice to sent. An invoice must carry at
// least one line item before it can be issued.
func (i *Invoice) MarkSent() error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be sent")
	}
	if len(i.LineItems) == 0 {
		return shared.NewDomainError("INVALID_INVOICE", "Cannot send an invoice without line items")
	}

	i.Status = InvoiceStatusSent
	now := time.Now()
	i.SentAt = &now
	i.UpdatedAt = now
	i.AddDomainEvent(NewInvoiceSentEvent(i.ID, i.InvoiceNumber, i.ClientID))
	return nil
}

// IsOverdue reports whether the invoice is past due and still unpaid as of
// the given instant. Terminal states are never overdue.
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.Status.IsTerminal() || i.Status == InvoiceStatusDraft {
		return false
	}
	return now.After(i.DueDate) && i.PaymentStatus != PaymentStatusPaid
}

// DaysOverdue returns whole days elapsed since the due date, zero when not
// overdue.
func (i *Invoice) DaysOverdue(now time.Time) int {
	if !i.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(i.DueDate).Hours() / 24)
}

// MarkOverdue transitions a sent invoice to overdue. Paid and cancelled
// invoices absorb the call without change so scheduler sweeps stay safe
// to repeat.
func (i *Invoice) MarkOverdue(now time.Time) error {
	if i.Status.IsTerminal() || i.Status == InvoiceStatusOverdue {
		return nil
	}
	if i.Status != InvoiceStatusSent {
		return shared.NewDomainError("INVALID_STATE", "Only sent invoices can become overdue")
	}
	if !i.IsOverdue(now) {
		return shared.NewDomainError("INVALID_STATE", "Invoice is not past its due date")
	}

	i.Status = InvoiceStatusOverdue
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewInvoiceOverdueEvent(i.ID, i.InvoiceNumber, i.DaysOverdue(now)))
	return nil
}

// ApplyLateFee charges the rule's fee against the outstanding balance.
// A rule applies at most once per invoice; repeated calls with the same
// rule return the existing application unchanged. Eligibility requires
// the invoice to be overdue beyond the rule's grace period with an
// unsettled balance.
func (i *Invoice) ApplyLateFee(rule *LateFeeRule, now time.Time) (*LateFeeApplication, error) {
	if i.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Late fees cannot be applied to paid or cancelled invoices")
	}
	for idx := range i.LateFeeApplications {
		if i.LateFeeApplications[idx].RuleID == rule.ID {
			return &i.LateFeeApplications[idx], nil
		}
	}
	if !i.IsOverdue(now) || i.DaysOverdue(now) <= rule.GracePeriodDays {
		return nil, shared.NewDomainError("INVALID_STATE", "Invoice is not past the rule's grace period")
	}

	fee := rule.FeeFor(i.RemainingAmount())
	application := LateFeeApplication{
		ID:        uuid.New(),
		RuleID:    rule.ID,
		RuleName:  rule.Name,
		Amount:    fee,
		AppliedAt: now,
	}

	i.LateFeeApplications = append(i.LateFeeApplications, application)
	i.LateFeeTotal = i.LateFeeTotal.Add(fee)
	i.TotalAmount = i.TotalAmount.Add(fee)
	if i.PaymentStatus == PaymentStatusPaid && i.PaidAmount.LessThan(i.TotalAmount) {
		i.PaymentStatus = PaymentStatusPartial
	}
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewLateFeeAppliedEvent(i.ID, i.InvoiceNumber, rule.ID, fee))
	return &i.LateFeeApplications[len(i.LateFeeApplications)-1], nil
}

// Cancel voids the invoice. Paid invoices cannot be cancelled.
func (i *Invoice) Cancel(reason string) error {
	if i.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Paid invoices cannot be cancelled")
	}
	if i.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}

	i.Status = InvoiceStatusCancelled
	now := time.Now()
	i.CancelledAt = &now
	i.UpdatedAt = now
	i.AddDomainEvent(NewInvoiceCancelledEvent(i.ID, i.InvoiceNumber, reason))
	return nil
}

// SetProject associates the invoice with a project
func (i *Invoice) SetProject(projectID *uuid.UUID) {
	i.ProjectID = projectID
	i.UpdatedAt = time.Now()
}

// SetNotes updates free-form notes
func (i *Invoice) SetNotes(notes string) {
	i.Notes = notes
	i.UpdatedAt = time.Now()
}

// SetPaymentTerms records the terms string ("Net 30", "Due on receipt")
func (i *Invoice) SetPaymentTerms(terms string) {
	i.PaymentTerms = terms
	i.UpdatedAt = time.Now()
}

// EnableRecurrence marks the invoice as a recurring template. The next
// issue date seeds the scheduler; each generation advances it by one
// frequency interval.
func (i *Invoice) EnableRecurrence(frequency RecurrenceFrequency, nextIssueDate time.Time) error {
	if !frequency.IsValid() {
		return shared.NewDomainError("UNSUPPORTED_FREQUENCY", "Unknown recurrence frequency")
	}

	i.IsRecurring = true
	i.Frequency = frequency
	i.NextIssueDate = &nextIssueDate
	i.UpdatedAt = time.Now()
	return nil
}

// DisableRecurrence stops future generation from this invoice
func (i *Invoice) DisableRecurrence() {
	i.IsRecurring = false
	i.Frequency = ""
	i.NextIssueDate = nil
	i.UpdatedAt = time.Now()
}
