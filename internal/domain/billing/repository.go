package billing

import (
	"context"
	"time"

	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter extends the base filter with billing-specific criteria
type InvoiceFilter struct {
	shared.Filter
	ClientID      *uuid.UUID
	ProjectID     *uuid.UUID
	Status        *InvoiceStatus
	PaymentStatus *PaymentStatus
	IssuedFrom    *time.Time
	IssuedTo      *time.Time
	IsRecurring   *bool
}

// InvoiceRepository defines the persistence interface for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	// FindOverdueCandidates returns sent or overdue invoices whose due date
	// has passed and which still carry a balance as of the given instant.
	FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]Invoice, error)
	// FindRecurringDue returns recurring invoices whose next issue date is
	// at or before the given instant.
	FindRecurringDue(ctx context.Context, asOf time.Time) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)
	// NextInvoiceNumber allocates the next sequential number with the
	// given prefix, e.g. "INV-2026-0042".
	NextInvoiceNumber(ctx context.Context, prefix string) (string, error)
}

// LateFeeRuleRepository defines the persistence interface for late fee rules
type LateFeeRuleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LateFeeRule, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]LateFeeRule, error)
	FindActive(ctx context.Context) ([]LateFeeRule, error)
	Save(ctx context.Context, rule *LateFeeRule) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
