package billing

import (
	"context"
	"time"

	"github.com/taxfolio/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// DashboardService aggregates billing figures for the overview screen
type DashboardService struct {
	invoiceRepo billing.InvoiceRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(invoiceRepo billing.InvoiceRepository) *DashboardService {
	return &DashboardService{invoiceRepo: invoiceRepo}
}

// BillingSummary is the headline figure set for the dashboard
type BillingSummary struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalOverdue     decimal.Decimal `json:"total_overdue"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
	TotalLateFees    decimal.Decimal `json:"total_late_fees"`
	DraftCount       int             `json:"draft_count"`
	SentCount        int             `json:"sent_count"`
	OverdueCount     int             `json:"overdue_count"`
	PaidCount        int             `json:"paid_count"`
}

// GetSummary computes the billing summary over all non-cancelled invoices.
// The walk is paged so large books don't load in one query.
func (s *DashboardService) GetSummary(ctx context.Context, asOf time.Time) (*BillingSummary, error) {
	summary := &BillingSummary{
		TotalOutstanding: decimal.Zero,
		TotalOverdue:     decimal.Zero,
		TotalCollected:   decimal.Zero,
		TotalLateFees:    decimal.Zero,
	}

	filter := billing.InvoiceFilter{}
	filter.Page = 1
	filter.PageSize = 200

	for {
		invoices, err := s.invoiceRepo.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		if len(invoices) == 0 {
			break
		}

		for idx := range invoices {
			invoice := &invoices[idx]
			switch invoice.Status {
			case billing.InvoiceStatusDraft:
				summary.DraftCount++
			case billing.InvoiceStatusSent:
				summary.SentCount++
			case billing.InvoiceStatusOverdue:
				summary.OverdueCount++
			case billing.InvoiceStatusPaid:
				summary.PaidCount++
			case billing.InvoiceStatusCancelled:
				continue
			}

			summary.TotalCollected = summary.TotalCollected.Add(invoice.PaidAmount)
			summary.TotalLateFees = summary.TotalLateFees.Add(invoice.LateFeeTotal)

			if invoice.Status == billing.InvoiceStatusSent || invoice.Status == billing.InvoiceStatusOverdue {
				remaining := invoice.RemainingAmount()
				summary.TotalOutstanding = summary.TotalOutstanding.Add(remaining)
				if invoice.IsOverdue(asOf) {
					summary.TotalOverdue = summary.TotalOverdue.Add(remaining)
				}
			}
		}

		if len(invoices) < filter.PageSize {
			break
		}
		filter.Page++
	}

	return summary, nil
}
