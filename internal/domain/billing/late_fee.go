package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/taxfolio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LateFeeType distinguishes how a rule prices the fee
type LateFeeType string

const (
	// LateFeeTypePercentage charges a percentage of the outstanding balance
	LateFeeTypePercentage LateFeeType = "PERCENTAGE"
	// LateFeeTypeFixed charges a flat amount regardless of balance
	LateFeeTypeFixed LateFeeType = "FIXED"
)

// IsValid checks if the fee type is known
func (t LateFeeType) IsValid() bool {
	return t == LateFeeTypePercentage || t == LateFeeTypeFixed
}

// LateFeeRule is an aggregate root configuring how overdue invoices are
// penalized. GracePeriodDays extends the effective due date: a fee becomes
// chargeable only once days overdue strictly exceed the grace period.
type LateFeeRule struct {
	shared.BaseAggregateRoot
	Name            string
	Type            LateFeeType
	Amount          decimal.Decimal
	GracePeriodDays int
	MaxAmount       *decimal.Decimal
	Active          bool
}

// NewLateFeeRule creates a validated late fee rule
func NewLateFeeRule(name string, feeType LateFeeType, amount decimal.Decimal, gracePeriodDays int, maxAmount *decimal.Decimal) (*LateFeeRule, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_LATE_FEE_RULE", "Late fee rule name cannot be empty")
	}
	if !feeType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LATE_FEE_RULE", "Late fee type must be PERCENTAGE or FIXED")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_LATE_FEE_RULE", "Late fee amount cannot be negative")
	}
	if feeType == LateFeeTypePercentage && amount.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_LATE_FEE_RULE", "Percentage late fee cannot exceed 100")
	}
	if gracePeriodDays < 0 {
		return nil, shared.NewDomainError("INVALID_LATE_FEE_RULE", "Grace period cannot be negative")
	}
	if maxAmount != nil && maxAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_LATE_FEE_RULE", "Maximum fee amount cannot be negative")
	}

	return &LateFeeRule{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              feeType,
		Amount:            amount,
		GracePeriodDays:   gracePeriodDays,
		MaxAmount:         maxAmount,
		Active:            true,
	}, nil
}

// Update changes the rule's configuration
func (r *LateFeeRule) Update(name string, feeType LateFeeType, amount decimal.Decimal, gracePeriodDays int, maxAmount *decimal.Decimal) error {
	if name == "" {
		return shared.NewDomainError("INVALID_LATE_FEE_RULE", "Late fee rule name cannot be empty")
	}
	if !feeType.IsValid() {
		return shared.NewDomainError("INVALID_LATE_FEE_RULE", "Late fee type must be PERCENTAGE or FIXED")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_LATE_FEE_RULE", "Late fee amount cannot be negative")
	}
	if feeType == LateFeeTypePercentage && amount.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_LATE_FEE_RULE", "Percentage late fee cannot exceed 100")
	}
	if gracePeriodDays < 0 {
		return shared.NewDomainError("INVALID_LATE_FEE_RULE", "Grace period cannot be negative")
	}
	if maxAmount != nil && maxAmount.IsNegative() {
		return shared.NewDomainError("INVALID_LATE_FEE_RULE", "Maximum fee amount cannot be negative")
	}

	r.Name = name
	r.Type = feeType
	r.Amount = amount
	r.GracePeriodDays = gracePeriodDays
	r.MaxAmount = maxAmount
	r.UpdatedAt = time.Now()
	return nil
}

// Activate enables the rule for scheduler sweeps
func (r *LateFeeRule) Activate() {
	r.Active = true
	r.UpdatedAt = time.Now()
}

// Deactivate stops the rule from being applied to new invoices
func (r *LateFeeRule) Deactivate() {
	r.Active = false
	r.UpdatedAt = time.Now()
}

// FeeFor computes the chargeable fee for an outstanding balance, clamped
// to MaxAmount when set and rounded half-up to display precision.
func (r *LateFeeRule) FeeFor(outstanding decimal.Decimal) decimal.Decimal {
	var fee decimal.Decimal
	if r.Type == LateFeeTypePercentage {
		fee = outstanding.Mul(r.Amount).Div(hundred)
	} else {
		fee = r.Amount
	}
	if r.MaxAmount != nil && fee.GreaterThan(*r.MaxAmount) {
		fee = *r.MaxAmount
	}
	return valueobject.RoundDisplay(fee)
}

// LateFeeApplication records one rule having been applied to an invoice.
// Its presence is what makes repeated sweeps idempotent: a rule is charged
// to a given invoice at most once.
type LateFeeApplication struct {
	ID        uuid.UUID       `json:"id"`
	RuleID    uuid.UUID       `json:"rule_id"`
	RuleName  string          `json:"rule_name"`
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"applied_at"`
}

// LateFeeApplications is the set of fees charged to an invoice, stored as
// JSONB. Implements GORM Scanner/Valuer.
type LateFeeApplications []LateFeeApplication

// Value implements driver.Valuer interface for GORM to store as JSONB
func (a LateFeeApplications) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (a *LateFeeApplications) Scan(value interface{}) error {
	if value == nil {
		*a = LateFeeApplications{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LateFeeApplications: unsupported type")
	}

	if len(bytes) == 0 {
		*a = LateFeeApplications{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Contains reports whether the given rule has already been applied
func (a LateFeeApplications) Contains(ruleID uuid.UUID) bool {
	for i := range a {
		if a[i].RuleID == ruleID {
			return true
		}
	}
	return false
}

// Total returns the sum of all applied fees
func (a LateFeeApplications) Total() decimal.Decimal {
	sum := decimal.Zero
	for i := range a {
		sum = sum.Add(a[i].Amount)
	}
	return sum
}
