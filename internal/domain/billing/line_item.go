package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is a billable unit owned by its invoice. It is a value object
// within the Invoice aggregate, stored as JSONB alongside the invoice row.
// Extended price and tax amount are derived, never stored: both are kept at
// full precision so rounding error cannot compound across lines.
type LineItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"` // nominal GST percentage, [0,100]
	HSNCode     string          `json:"hsn_code,omitempty"`
}

// NewLineItem creates a validated line item
func NewLineItem(description string, quantity, unitPrice, taxRate decimal.Decimal, hsnCode string) (*LineItem, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_LINE_ITEM", "Line item description cannot be empty")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_LINE_ITEM", "Line item description cannot exceed 500 characters")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_LINE_ITEM", "Line item quantity cannot be negative")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_LINE_ITEM", "Line item unit price cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_LINE_ITEM", "Line item tax rate must be between 0 and 100")
	}
	if len(hsnCode) > 10 {
		return nil, shared.NewDomainError("INVALID_LINE_ITEM", "HSN/SAC code cannot exceed 10 characters")
	}

	return &LineItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
		HSNCode:     hsnCode,
	}, nil
}

// ExtendedPrice returns quantity x unit price at full precision
func (li *LineItem) ExtendedPrice() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// TaxAmount returns the line's tax at the nominal rate, at full precision.
// Display rounding happens only at invoice aggregation.
func (li *LineItem) TaxAmount() decimal.Decimal {
	return li.ExtendedPrice().Mul(li.TaxRate).Div(hundred)
}

// Copy returns a fresh line item with a new identity, for recurring
// invoice generation.
func (li *LineItem) Copy() LineItem {
	clone := *li
	clone.ID = uuid.New()
	return clone
}

// LineItems is the ordered line-item sequence of an invoice. Order is
// display-relevant. Implements GORM Scanner/Valuer for JSONB storage.
type LineItems []LineItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*l = LineItems{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Subtotal returns the full-precision sum of all extended prices
func (l LineItems) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range l {
		sum = sum.Add(l[i].ExtendedPrice())
	}
	return sum
}

// DistinctTaxRates returns the distinct nominal rates in appearance order.
// The invoice tax breakdown is computed per distinct rate and summed, so
// invoices mixing 5%, 12% and 18% lines stay correct.
func (l LineItems) DistinctTaxRates() []decimal.Decimal {
	rates := make([]decimal.Decimal, 0, 2)
	for i := range l {
		found := false
		for _, r := range rates {
			if r.Equal(l[i].TaxRate) {
				found = true
				break
			}
		}
		if !found {
			rates = append(rates, l[i].TaxRate)
		}
	}
	return rates
}

// TaxableBaseForRate returns the full-precision sum of extended prices of
// lines carrying the given nominal rate.
func (l LineItems) TaxableBaseForRate(rate decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for i := range l {
		if l[i].TaxRate.Equal(rate) {
			sum = sum.Add(l[i].ExtendedPrice())
		}
	}
	return sum
}
