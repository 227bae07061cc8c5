package billing

import (
	"strconv"
	"strings"
	"time"

	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurrenceFrequency is the interval at which a recurring invoice repeats
type RecurrenceFrequency string

const (
	FrequencyWeekly    RecurrenceFrequency = "WEEKLY"
	FrequencyMonthly   RecurrenceFrequency = "MONTHLY"
	FrequencyQuarterly RecurrenceFrequency = "QUARTERLY"
	FrequencyYearly    RecurrenceFrequency = "YEARLY"
)

// IsValid checks if the frequency is a known RecurrenceFrequency
func (f RecurrenceFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// String returns the string representation of RecurrenceFrequency
func (f RecurrenceFrequency) String() string {
	return string(f)
}

// DefaultPaymentTermsDays is used when an invoice carries no parsable
// payment terms.
const DefaultPaymentTermsDays = 30

// ParsePaymentTermsDays extracts the day count from a "Net N" terms string.
// "Due on receipt" yields zero days. Anything unparsable falls back to the
// default.
func ParsePaymentTermsDays(terms string) int {
	normalized := strings.ToLower(strings.TrimSpace(terms))
	if normalized == "due on receipt" {
		return 0
	}
	if rest, ok := strings.CutPrefix(normalized, "net "); ok {
		if days, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && days >= 0 {
			return days
		}
	}
	return DefaultPaymentTermsDays
}

// AdvanceDate moves a date forward by one frequency interval. Month-based
// intervals clamp to the last day of the target month, so a Jan 31 monthly
// invoice lands on Feb 28 (or Feb 29 in a leap year) instead of spilling
// into March.
func AdvanceDate(date time.Time, frequency RecurrenceFrequency) (time.Time, error) {
	switch frequency {
	case FrequencyWeekly:
		return date.AddDate(0, 0, 7), nil
	case FrequencyMonthly:
		return addMonthsClamped(date, 1), nil
	case FrequencyQuarterly:
		return addMonthsClamped(date, 3), nil
	case FrequencyYearly:
		return addMonthsClamped(date, 12), nil
	}
	return time.Time{}, shared.NewDomainError("UNSUPPORTED_FREQUENCY", "Unknown recurrence frequency")
}

// addMonthsClamped adds months keeping the day-of-month where possible and
// clamping to the target month's last day otherwise. time.AddDate is not
// used because it normalizes overflow into the following month.
func addMonthsClamped(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	targetFirst := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, date.Location())
	lastDay := targetFirst.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(targetFirst.Year(), targetFirst.Month(), day,
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// InvoiceTemplate is the prepared content of the next invoice in a
// recurring series. The invoice number is assigned by the application
// layer at persistence time, not here.
type InvoiceTemplate struct {
	SourceInvoiceID uuid.UUID
	ClientID        uuid.UUID
	ClientName      string
	ProjectID       *uuid.UUID
	TaxTreatment    TaxTreatment
	LineItems       LineItems
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	IssueDate       time.Time
	DueDate         time.Time
	PaymentTerms    string
	Notes           string
	Frequency       RecurrenceFrequency
}

// GenerateNext prepares the next invoice in a recurring series from its
// template invoice. Returns nil when the invoice is not recurring or has
// no next issue date. The new invoice is issued one frequency interval
// after the scheduled date, so a Jan 31 monthly schedule produces a
// Feb 28/29 invoice. Line items are copied with fresh identities and the
// new invoice starts with a clean payment history.
func GenerateNext(source *Invoice, now time.Time) (*InvoiceTemplate, error) {
	if !source.IsRecurring || source.NextIssueDate == nil {
		return nil, nil
	}
	if source.NextIssueDate.After(now) {
		return nil, nil
	}

	issueDate, err := AdvanceDate(*source.NextIssueDate, source.Frequency)
	if err != nil {
		return nil, err
	}
	termsDays := ParsePaymentTermsDays(source.PaymentTerms)
	dueDate := issueDate.AddDate(0, 0, termsDays)

	items := make(LineItems, 0, len(source.LineItems))
	for idx := range source.LineItems {
		items = append(items, source.LineItems[idx].Copy())
	}

	return &InvoiceTemplate{
		SourceInvoiceID: source.ID,
		ClientID:        source.ClientID,
		ClientName:      source.ClientName,
		ProjectID:       source.ProjectID,
		TaxTreatment:    source.TaxTreatment,
		LineItems:       items,
		DiscountPercent: source.DiscountPercent,
		DiscountAmount:  source.DiscountAmount,
		IssueDate:       issueDate,
		DueDate:         dueDate,
		PaymentTerms:    source.PaymentTerms,
		Notes:           source.Notes,
		Frequency:       source.Frequency,
	}, nil
}

// AdvanceSchedule moves the source invoice's next issue date forward by
// one interval after a successful generation.
func AdvanceSchedule(source *Invoice) error {
	if !source.IsRecurring || source.NextIssueDate == nil {
		return shared.NewDomainError("INVALID_STATE", "Invoice has no recurrence schedule to advance")
	}
	next, err := AdvanceDate(*source.NextIssueDate, source.Frequency)
	if err != nil {
		return err
	}
	source.NextIssueDate = &next
	source.UpdatedAt = time.Now()
	return nil
}
