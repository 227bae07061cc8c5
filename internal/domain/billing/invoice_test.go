package billing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Test Helpers ====================

func createTestInvoice(t *testing.T, treatment TaxTreatment) *Invoice {
	t.Helper()
	issue := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	due := issue.AddDate(0, 0, 30)
	invoice, err := NewInvoice("INV-2026-0001", uuid.New(), "Acme Traders", treatment, issue, due)
	require.NoError(t, err)
	return invoice
}

func createSentInvoice(t *testing.T, treatment TaxTreatment) *Invoice {
	t.Helper()
	invoice := createTestInvoice(t, treatment)
	_, err := invoice.AddLineItem("Consulting services", decimal.NewFromInt(1), decimal.NewFromInt(40000), decimal.NewFromInt(18), "9983")
	require.NoError(t, err)
	require.NoError(t, invoice.MarkSent())
	return invoice
}

// ==================== Creation ====================

func TestNewInvoice(t *testing.T) {
	t.Run("valid invoice", func(t *testing.T) {
		invoice := createTestInvoice(t, TaxTreatmentIntraState)
		assert.Equal(t, InvoiceStatusDraft, invoice.Status)
		assert.Equal(t, PaymentStatusPending, invoice.PaymentStatus)
		assert.True(t, invoice.TotalAmount.IsZero())
		assert.Len(t, invoice.GetDomainEvents(), 1)
	})

	t.Run("due date before issue date rejected", func(t *testing.T) {
		issue := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		_, err := NewInvoice("INV-1", uuid.New(), "Acme", TaxTreatmentIntraState, issue, issue.AddDate(0, 0, -1))
		assert.ErrorContains(t, err, "Due date")
	})

	t.Run("due date equal to issue date allowed", func(t *testing.T) {
		issue := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		_, err := NewInvoice("INV-1", uuid.New(), "Acme", TaxTreatmentIntraState, issue, issue)
		assert.NoError(t, err)
	})

	t.Run("missing client rejected", func(t *testing.T) {
		issue := time.Now()
		_, err := NewInvoice("INV-1", uuid.Nil, "Acme", TaxTreatmentIntraState, issue, issue)
		assert.Error(t, err)
	})
}

// ==================== Aggregation ====================

func TestInvoice_Recalculate_IntraState(t *testing.T) {
	invoice := createTestInvoice(t, TaxTreatmentIntraState)
	_, err := invoice.AddLineItem("Consulting", decimal.NewFromInt(1), decimal.NewFromInt(40000), decimal.NewFromInt(18), "")
	require.NoError(t, err)

	assert.Equal(t, "40000.00", invoice.Subtotal.StringFixed(2))
	assert.Equal(t, "3600.00", invoice.Tax.CGSTAmount.StringFixed(2))
	assert.Equal(t, "3600.00", invoice.Tax.SGSTAmount.StringFixed(2))
	assert.True(t, invoice.Tax.IGSTAmount.IsZero())
	assert.Equal(t, "7200.00", invoice.TaxTotal.StringFixed(2))
	assert.Equal(t, "47200.00", invoice.TotalAmount.StringFixed(2))
}

func TestInvoice_Recalculate_InterState(t *testing.T) {
	invoice := createTestInvoice(t, TaxTreatmentInterState)
	_, err := invoice.AddLineItem("Consulting", decimal.NewFromInt(1), decimal.NewFromInt(40000), decimal.NewFromInt(18), "")
	require.NoError(t, err)

	assert.True(t, invoice.Tax.CGSTAmount.IsZero())
	assert.True(t, invoice.Tax.SGSTAmount.IsZero())
	assert.Equal(t, "7200.00", invoice.Tax.IGSTAmount.StringFixed(2))
	assert.Equal(t, "47200.00", invoice.TotalAmount.StringFixed(2))
}

func TestInvoice_Recalculate_MixedRates(t *testing.T) {
	invoice := createTestInvoice(t, TaxTreatmentInterState)
	_, err := invoice.AddLineItem("Software licence", decimal.NewFromInt(1), decimal.NewFromInt(1000), decimal.NewFromInt(18), "")
	require.NoError(t, err)
	_, err = invoice.AddLineItem("Printed manuals", decimal.NewFromInt(1), decimal.NewFromInt(1000), decimal.NewFromInt(5), "")
	require.NoError(t, err)
	_, err = invoice.AddLineItem("Training", decimal.NewFromInt(1), decimal.NewFromInt(1000), decimal.NewFromInt(12), "")
	require.NoError(t, err)

	// 180 + 50 + 120 across three distinct rates
	assert.Equal(t, "3000.00", invoice.Subtotal.StringFixed(2))
	assert.Equal(t, "350.00", invoice.TaxTotal.StringFixed(2))
	assert.Equal(t, "3350.00", invoice.TotalAmount.StringFixed(2))
}

func TestInvoice_Recalculate_RoundsOnceAtAggregation(t *testing.T) {
	invoice := createTestInvoice(t, TaxTreatmentIntraState)
	// three lines of 33.333 at 18%: per-line rounding would give a different
	// total than rounding the aggregate
	for range 3 {
		_, err := invoice.AddLineItem("Fraction", decimal.NewFromInt(1), decimal.RequireFromString("33.333"), decimal.NewFromInt(18), "")
		require.NoError(t, err)
	}

	// subtotal 99.999 -> 100.00; tax base 99.999 * 9% = 8.99991 -> 9.00 per half
	assert.Equal(t, "100.00", invoice.Subtotal.StringFixed(2))
	assert.Equal(t, "9.00", invoice.Tax.CGSTAmount.StringFixed(2))
	assert.Equal(t, "9.00", invoice.Tax.SGSTAmount.StringFixed(2))
	assert.Equal(t, "118.00", invoice.TotalAmount.StringFixed(2))
}

func TestInvoice_Recalculate_RoundingStability(t *testing.T) {
	// over N lines of fractional quantities and prices, the aggregated total
	// must stay within 0.01 per line of the full-precision total
	rates := []int64{5, 12, 18, 28}

	for _, treatment := range []TaxTreatment{TaxTreatmentIntraState, TaxTreatmentInterState} {
		t.Run(treatment.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(20260401))
			invoice := createTestInvoice(t, treatment)

			const lines = 40
			exact := decimal.Zero
			for range lines {
				quantity := decimal.NewFromFloat(rng.Float64()*9 + 0.125).Round(3)
				unitPrice := decimal.NewFromFloat(rng.Float64()*4999 + 0.07).Round(4)
				rate := decimal.NewFromInt(rates[rng.Intn(len(rates))])

				_, err := invoice.AddLineItem("Metered work", quantity, unitPrice, rate, "")
				require.NoError(t, err)

				extended := quantity.Mul(unitPrice)
				exact = exact.Add(extended).Add(extended.Mul(rate).Div(hundred))
			}

			tolerance := decimal.RequireFromString("0.01").Mul(decimal.NewFromInt(lines))
			drift := invoice.TotalAmount.Sub(exact).Abs()
			assert.True(t, drift.LessThanOrEqual(tolerance),
				"total %s drifted %s from full-precision %s", invoice.TotalAmount, drift, exact)
		})
	}
}

func TestInvoice_Discount(t *testing.T) {
	newInvoiceWithLine := func(t *testing.T) *Invoice {
		invoice := createTestInvoice(t, TaxTreatmentIntraState)
		_, err := invoice.AddLineItem("Consulting", decimal.NewFromInt(1), decimal.NewFromInt(40000), decimal.NewFromInt(18), "")
		require.NoError(t, err)
		return invoice
	}

	t.Run("percentage of pre-discount total", func(t *testing.T) {
		invoice := newInvoiceWithLine(t)
		require.NoError(t, invoice.SetDiscount(decimal.NewFromInt(10), decimal.Zero))

		// 10% of 47200
		assert.Equal(t, "4720.00", invoice.DiscountTotal.StringFixed(2))
		assert.Equal(t, "42480.00", invoice.TotalAmount.StringFixed(2))
	})

	t.Run("fixed amount wins over percentage", func(t *testing.T) {
		invoice := newInvoiceWithLine(t)
		require.NoError(t, invoice.SetDiscount(decimal.NewFromInt(10), decimal.NewFromInt(500)))

		assert.Equal(t, "500.00", invoice.DiscountTotal.StringFixed(2))
		assert.Equal(t, "46700.00", invoice.TotalAmount.StringFixed(2))
	})

	t.Run("fixed discount clamps at the pre-discount total", func(t *testing.T) {
		invoice := newInvoiceWithLine(t)
		require.NoError(t, invoice.SetDiscount(decimal.Zero, decimal.NewFromInt(99999)))

		assert.Equal(t, "47200.00", invoice.DiscountTotal.StringFixed(2))
		assert.True(t, invoice.TotalAmount.IsZero())
	})

	t.Run("survives line item recalculation", func(t *testing.T) {
		invoice := newInvoiceWithLine(t)
		require.NoError(t, invoice.SetDiscount(decimal.NewFromInt(10), decimal.Zero))
		_, err := invoice.AddLineItem("Support", decimal.NewFromInt(1), decimal.NewFromInt(1000), decimal.NewFromInt(18), "")
		require.NoError(t, err)

		// 10% of 48380
		assert.Equal(t, "4838.00", invoice.DiscountTotal.StringFixed(2))
		assert.Equal(t, "43542.00", invoice.TotalAmount.StringFixed(2))
	})

	t.Run("rejected outside draft", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		err := invoice.SetDiscount(decimal.NewFromInt(5), decimal.Zero)
		assert.ErrorContains(t, err, "draft")
	})

	t.Run("rejects out of range values", func(t *testing.T) {
		invoice := newInvoiceWithLine(t)
		assert.Error(t, invoice.SetDiscount(decimal.NewFromInt(101), decimal.Zero))
		assert.Error(t, invoice.SetDiscount(decimal.NewFromInt(-1), decimal.Zero))
		assert.Error(t, invoice.SetDiscount(decimal.Zero, decimal.NewFromInt(-5)))
	})
}

func TestInvoice_LineItemEditing(t *testing.T) {
	invoice := createTestInvoice(t, TaxTreatmentInterState)
	item, err := invoice.AddLineItem("Original", decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.NewFromInt(18), "")
	require.NoError(t, err)

	t.Run("update recalculates", func(t *testing.T) {
		require.NoError(t, invoice.UpdateLineItem(item.ID, "Updated", decimal.NewFromInt(2), decimal.NewFromInt(100), decimal.NewFromInt(18), ""))
		assert.Equal(t, "200.00", invoice.Subtotal.StringFixed(2))
	})

	t.Run("update unknown item", func(t *testing.T) {
		err := invoice.UpdateLineItem(uuid.New(), "X", decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero, "")
		assert.Error(t, err)
	})

	t.Run("remove recalculates to zero", func(t *testing.T) {
		require.NoError(t, invoice.RemoveLineItem(item.ID))
		assert.True(t, invoice.Subtotal.IsZero())
		assert.True(t, invoice.TotalAmount.IsZero())
	})

	t.Run("editing a sent invoice rejected", func(t *testing.T) {
		sent := createSentInvoice(t, TaxTreatmentInterState)
		_, err := sent.AddLineItem("Late addition", decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero, "")
		assert.Error(t, err)
	})
}

// ==================== Payments ====================

func TestInvoice_RecordPayment(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState) // total 47200
		err := invoice.RecordPayment(decimal.NewFromInt(20000), PaymentMethodUPI, "UTR123", "", time.Now())
		require.NoError(t, err)

		assert.Equal(t, PaymentStatusPartial, invoice.PaymentStatus)
		assert.Equal(t, InvoiceStatusSent, invoice.Status)
		assert.Equal(t, "27200.00", invoice.RemainingAmount().StringFixed(2))
		assert.Len(t, invoice.Payments, 1)
	})

	t.Run("full settlement across instalments", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		require.NoError(t, invoice.RecordPayment(decimal.NewFromInt(20000), PaymentMethodUPI, "", "", time.Now()))
		require.NoError(t, invoice.RecordPayment(decimal.NewFromInt(27200), PaymentMethodBankTransfer, "", "", time.Now()))

		assert.Equal(t, PaymentStatusPaid, invoice.PaymentStatus)
		assert.Equal(t, InvoiceStatusPaid, invoice.Status)
		assert.NotNil(t, invoice.PaidAt)
		assert.True(t, invoice.RemainingAmount().IsZero())
	})

	t.Run("overpayment recorded in full and clamped remaining", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		require.NoError(t, invoice.RecordPayment(decimal.NewFromInt(50000), PaymentMethodCash, "", "", time.Now()))

		assert.Equal(t, "50000.00", invoice.PaidAmount.StringFixed(2))
		assert.True(t, invoice.RemainingAmount().IsZero())
		assert.Equal(t, InvoiceStatusPaid, invoice.Status)
	})

	t.Run("zero and negative amounts rejected", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		assert.Error(t, invoice.RecordPayment(decimal.Zero, PaymentMethodCash, "", "", time.Now()))
		assert.Error(t, invoice.RecordPayment(decimal.NewFromInt(-10), PaymentMethodCash, "", "", time.Now()))
		assert.Empty(t, invoice.Payments)
	})

	t.Run("cancelled invoice rejects payments", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		require.NoError(t, invoice.Cancel("client dispute"))
		err := invoice.RecordPayment(decimal.NewFromInt(100), PaymentMethodCash, "", "", time.Now())
		assert.ErrorContains(t, err, "cancelled")
	})
}

// ==================== Lifecycle ====================

func TestInvoice_Lifecycle(t *testing.T) {
	t.Run("send requires line items", func(t *testing.T) {
		invoice := createTestInvoice(t, TaxTreatmentIntraState)
		assert.Error(t, invoice.MarkSent())
	})

	t.Run("send only from draft", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		assert.Error(t, invoice.MarkSent())
	})

	t.Run("cancel paid invoice rejected", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		require.NoError(t, invoice.RecordPayment(decimal.NewFromInt(47200), PaymentMethodCash, "", "", time.Now()))
		assert.Error(t, invoice.Cancel("too late"))
	})
}

func TestInvoice_Overdue(t *testing.T) {
	invoice := createSentInvoice(t, TaxTreatmentIntraState)
	due := invoice.DueDate

	t.Run("not overdue before due date", func(t *testing.T) {
		assert.False(t, invoice.IsOverdue(due.Add(-time.Hour)))
		assert.Equal(t, 0, invoice.DaysOverdue(due.Add(-time.Hour)))
	})

	t.Run("overdue after due date", func(t *testing.T) {
		asOf := due.AddDate(0, 0, 10)
		assert.True(t, invoice.IsOverdue(asOf))
		assert.Equal(t, 10, invoice.DaysOverdue(asOf))
	})

	t.Run("mark overdue transitions sent invoice", func(t *testing.T) {
		asOf := due.AddDate(0, 0, 1)
		require.NoError(t, invoice.MarkOverdue(asOf))
		assert.Equal(t, InvoiceStatusOverdue, invoice.Status)

		// repeated sweeps are no-ops
		require.NoError(t, invoice.MarkOverdue(asOf))
		assert.Equal(t, InvoiceStatusOverdue, invoice.Status)
	})

	t.Run("paid invoice never overdue", func(t *testing.T) {
		paid := createSentInvoice(t, TaxTreatmentIntraState)
		require.NoError(t, paid.RecordPayment(decimal.NewFromInt(47200), PaymentMethodCash, "", "", time.Now()))
		assert.False(t, paid.IsOverdue(paid.DueDate.AddDate(0, 0, 30)))
		assert.NoError(t, paid.MarkOverdue(paid.DueDate.AddDate(0, 0, 30)))
		assert.Equal(t, InvoiceStatusPaid, paid.Status)
	})
}

// ==================== Late Fees ====================

func TestInvoice_ApplyLateFee(t *testing.T) {
	percentRule := func(t *testing.T, grace int) *LateFeeRule {
		t.Helper()
		rule, err := NewLateFeeRule("2% monthly", LateFeeTypePercentage, decimal.NewFromInt(2), grace, nil)
		require.NoError(t, err)
		return rule
	}

	t.Run("fee charged on outstanding balance", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState) // total 47200
		rule := percentRule(t, 5)
		asOf := invoice.DueDate.AddDate(0, 0, 10)

		application, err := invoice.ApplyLateFee(rule, asOf)
		require.NoError(t, err)
		assert.Equal(t, "944.00", application.Amount.StringFixed(2))
		assert.Equal(t, "48144.00", invoice.TotalAmount.StringFixed(2))
		assert.Equal(t, "944.00", invoice.LateFeeTotal.StringFixed(2))
	})

	t.Run("idempotent per rule", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		rule := percentRule(t, 5)
		asOf := invoice.DueDate.AddDate(0, 0, 10)

		first, err := invoice.ApplyLateFee(rule, asOf)
		require.NoError(t, err)
		second, err := invoice.ApplyLateFee(rule, asOf.AddDate(0, 0, 30))
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, invoice.LateFeeApplications, 1)
		assert.Equal(t, "48144.00", invoice.TotalAmount.StringFixed(2))
	})

	t.Run("distinct rules stack", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		asOf := invoice.DueDate.AddDate(0, 0, 10)

		flat, err := NewLateFeeRule("Flat reminder fee", LateFeeTypeFixed, decimal.NewFromInt(500), 0, nil)
		require.NoError(t, err)

		_, err = invoice.ApplyLateFee(percentRule(t, 5), asOf)
		require.NoError(t, err)
		_, err = invoice.ApplyLateFee(flat, asOf)
		require.NoError(t, err)

		assert.Len(t, invoice.LateFeeApplications, 2)
		assert.Equal(t, "1444.00", invoice.LateFeeTotal.StringFixed(2))
	})

	t.Run("within grace period rejected", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		rule := percentRule(t, 15)
		asOf := invoice.DueDate.AddDate(0, 0, 10)

		_, err := invoice.ApplyLateFee(rule, asOf)
		assert.Error(t, err)
		assert.Empty(t, invoice.LateFeeApplications)
	})

	t.Run("day equal to grace boundary rejected", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		rule := percentRule(t, 10)
		asOf := invoice.DueDate.AddDate(0, 0, 10)

		_, err := invoice.ApplyLateFee(rule, asOf)
		assert.Error(t, err)
	})

	t.Run("capped by max amount", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		maxFee := decimal.NewFromInt(300)
		rule, err := NewLateFeeRule("Capped", LateFeeTypePercentage, decimal.NewFromInt(2), 0, &maxFee)
		require.NoError(t, err)

		application, err := invoice.ApplyLateFee(rule, invoice.DueDate.AddDate(0, 0, 3))
		require.NoError(t, err)
		assert.Equal(t, "300.00", application.Amount.StringFixed(2))
	})

	t.Run("paid invoice rejected", func(t *testing.T) {
		invoice := createSentInvoice(t, TaxTreatmentIntraState)
		require.NoError(t, invoice.RecordPayment(decimal.NewFromInt(47200), PaymentMethodCash, "", "", time.Now()))

		_, err := invoice.ApplyLateFee(percentRule(t, 0), invoice.DueDate.AddDate(0, 0, 30))
		assert.Error(t, err)
	})
}

// ==================== JSONB value objects ====================

func TestPaymentEntries_JSONBRoundTrip(t *testing.T) {
	entries := PaymentEntries{{
		ID:         uuid.New(),
		Amount:     decimal.RequireFromString("1250.75"),
		Method:     PaymentMethodUPI,
		Reference:  "UTR-991",
		ReceivedAt: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		RecordedAt: time.Now().UTC(),
	}}

	value, err := entries.Value()
	require.NoError(t, err)

	var decoded PaymentEntries
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 1)
	assert.Equal(t, entries[0].ID, decoded[0].ID)
	assert.True(t, entries[0].Amount.Equal(decoded[0].Amount))
	assert.Equal(t, "1250.75", decoded.TotalPaid().StringFixed(2))
}
