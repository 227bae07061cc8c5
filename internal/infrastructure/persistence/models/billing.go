package models

import (
	"time"

	"github.com/taxfolio/backend/internal/domain/billing"
	"github.com/taxfolio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Line items, payments, and late fee applications live as JSONB columns
// on the invoice row; they have no identity outside their aggregate.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber   string                      `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID        uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ClientName      string                      `gorm:"type:varchar(255);not null"`
	ProjectID       *uuid.UUID                  `gorm:"type:uuid;index"`
	Currency        string                      `gorm:"type:varchar(3);not null;default:'INR'"`
	TaxTreatment    billing.TaxTreatment        `gorm:"type:varchar(20);not null"`
	LineItems       billing.LineItems           `gorm:"type:jsonb;default:'[]'"`
	Subtotal        decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	CGSTRate        decimal.Decimal             `gorm:"type:decimal(7,4);not null"`
	CGSTAmount      decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	SGSTRate        decimal.Decimal             `gorm:"type:decimal(7,4);not null"`
	SGSTAmount      decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	IGSTRate        decimal.Decimal             `gorm:"type:decimal(7,4);not null"`
	IGSTAmount      decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	TaxTotal        decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	DiscountPercent decimal.Decimal             `gorm:"type:decimal(7,4);not null;default:0"`
	DiscountAmount  decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountTotal   decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	LateFeeTotal    decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	TotalAmount     decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	PaidAmount      decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Status          billing.InvoiceStatus       `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PaymentStatus   billing.PaymentStatus       `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	IssueDate       time.Time                   `gorm:"not null;index"`
	DueDate         time.Time                   `gorm:"not null;index"`
	PaymentTerms    string                      `gorm:"type:varchar(50)"`
	Notes           string                      `gorm:"type:text"`
	IsRecurring     bool                        `gorm:"not null;default:false;index"`
	Frequency       billing.RecurrenceFrequency `gorm:"type:varchar(20)"`
	NextIssueDate   *time.Time                  `gorm:"index"`
	Payments        billing.PaymentEntries      `gorm:"type:jsonb;default:'[]'"`
	LateFees        billing.LateFeeApplications `gorm:"type:jsonb;default:'[]'"`
	SentAt          *time.Time
	PaidAt          *time.Time
	CancelledAt     *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		ClientID:          m.ClientID,
		ClientName:        m.ClientName,
		ProjectID:         m.ProjectID,
		Currency:          valueobject.Currency(m.Currency),
		TaxTreatment:      m.TaxTreatment,
		LineItems:         m.LineItems,
		Subtotal:          m.Subtotal,
		Tax: billing.TaxBreakdown{
			CGSTRate:   m.CGSTRate,
			CGSTAmount: m.CGSTAmount,
			SGSTRate:   m.SGSTRate,
			SGSTAmount: m.SGSTAmount,
			IGSTRate:   m.IGSTRate,
			IGSTAmount: m.IGSTAmount,
		},
		TaxTotal:            m.TaxTotal,
		DiscountPercent:     m.DiscountPercent,
		DiscountAmount:      m.DiscountAmount,
		DiscountTotal:       m.DiscountTotal,
		LateFeeTotal:        m.LateFeeTotal,
		TotalAmount:         m.TotalAmount,
		PaidAmount:          m.PaidAmount,
		Status:              m.Status,
		PaymentStatus:       m.PaymentStatus,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		PaymentTerms:        m.PaymentTerms,
		Notes:               m.Notes,
		IsRecurring:         m.IsRecurring,
		Frequency:           m.Frequency,
		NextIssueDate:       m.NextIssueDate,
		Payments:            m.Payments,
		LateFeeApplications: m.LateFees,
		SentAt:              m.SentAt,
		PaidAt:              m.PaidAt,
		CancelledAt:         m.CancelledAt,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(invoice *billing.Invoice) {
	m.FromDomainAggregateRoot(invoice.BaseAggregateRoot)
	m.InvoiceNumber = invoice.InvoiceNumber
	m.ClientID = invoice.ClientID
	m.ClientName = invoice.ClientName
	m.ProjectID = invoice.ProjectID
	m.Currency = string(invoice.Currency)
	m.TaxTreatment = invoice.TaxTreatment
	m.LineItems = invoice.LineItems
	m.Subtotal = invoice.Subtotal
	m.CGSTRate = invoice.Tax.CGSTRate
	m.CGSTAmount = invoice.Tax.CGSTAmount
	m.SGSTRate = invoice.Tax.SGSTRate
	m.SGSTAmount = invoice.Tax.SGSTAmount
	m.IGSTRate = invoice.Tax.IGSTRate
	m.IGSTAmount = invoice.Tax.IGSTAmount
	m.TaxTotal = invoice.TaxTotal
	m.DiscountPercent = invoice.DiscountPercent
	m.DiscountAmount = invoice.DiscountAmount
	m.DiscountTotal = invoice.DiscountTotal
	m.LateFeeTotal = invoice.LateFeeTotal
	m.TotalAmount = invoice.TotalAmount
	m.PaidAmount = invoice.PaidAmount
	m.Status = invoice.Status
	m.PaymentStatus = invoice.PaymentStatus
	m.IssueDate = invoice.IssueDate
	m.DueDate = invoice.DueDate
	m.PaymentTerms = invoice.PaymentTerms
	m.Notes = invoice.Notes
	m.IsRecurring = invoice.IsRecurring
	m.Frequency = invoice.Frequency
	m.NextIssueDate = invoice.NextIssueDate
	m.Payments = invoice.Payments
	m.LateFees = invoice.LateFeeApplications
	m.SentAt = invoice.SentAt
	m.PaidAt = invoice.PaidAt
	m.CancelledAt = invoice.CancelledAt
}

// LateFeeRuleModel is the persistence model for the LateFeeRule aggregate root.
type LateFeeRuleModel struct {
	AggregateModel
	Name            string              `gorm:"type:varchar(100);not null"`
	Type            billing.LateFeeType `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	GracePeriodDays int                 `gorm:"not null;default:0"`
	MaxAmount       *decimal.Decimal    `gorm:"type:decimal(18,4)"`
	Active          bool                `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (LateFeeRuleModel) TableName() string {
	return "late_fee_rules"
}

// ToDomain converts the persistence model to a domain LateFeeRule
func (m *LateFeeRuleModel) ToDomain() *billing.LateFeeRule {
	return &billing.LateFeeRule{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Type:              m.Type,
		Amount:            m.Amount,
		GracePeriodDays:   m.GracePeriodDays,
		MaxAmount:         m.MaxAmount,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain LateFeeRule
func (m *LateFeeRuleModel) FromDomain(rule *billing.LateFeeRule) {
	m.FromDomainAggregateRoot(rule.BaseAggregateRoot)
	m.Name = rule.Name
	m.Type = rule.Type
	m.Amount = rule.Amount
	m.GracePeriodDays = rule.GracePeriodDays
	m.MaxAmount = rule.MaxAmount
	m.Active = rule.Active
}
