package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/taxfolio/backend/internal/domain/billing"
	"github.com/taxfolio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.InvoiceModel{}, &models.LateFeeRuleModel{})
	require.NoError(t, err)

	return db
}

func newTestInvoice(t *testing.T, number string, issueDate time.Time) *billing.Invoice {
	t.Helper()
	invoice, err := billing.NewInvoice(number, uuid.New(), "Acme Traders",
		billing.TaxTreatmentIntraState, issueDate, issueDate.AddDate(0, 0, 30))
	require.NoError(t, err)

	_, err = invoice.AddLineItem("Consulting retainer",
		decimal.NewFromInt(1), decimal.NewFromInt(40000), decimal.NewFromInt(18), "9983")
	require.NoError(t, err)
	return invoice
}

func TestInvoiceRepository_SaveAndFind(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	issueDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	invoice := newTestInvoice(t, "INV-2026-0001", issueDate)
	require.NoError(t, invoice.MarkSent())
	require.NoError(t, invoice.RecordPayment(decimal.NewFromInt(20000),
		billing.PaymentMethodBankTransfer, "UTR123", "", issueDate.AddDate(0, 0, 5)))

	require.NoError(t, repo.Save(ctx, invoice))

	t.Run("round trips the aggregate including embedded collections", func(t *testing.T) {
		found, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		require.NotNil(t, found)

		assert.Equal(t, "INV-2026-0001", found.InvoiceNumber)
		assert.Equal(t, billing.InvoiceStatusSent, found.Status)
		assert.Equal(t, billing.PaymentStatusPartial, found.PaymentStatus)
		require.Len(t, found.LineItems, 1)
		assert.Equal(t, "Consulting retainer", found.LineItems[0].Description)
		require.Len(t, found.Payments, 1)
		assert.True(t, found.Payments[0].Amount.Equal(decimal.NewFromInt(20000)))
		assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(47200)))
	})

	t.Run("finds by invoice number", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, "INV-2026-0001")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, invoice.ID, found.ID)
	})

	t.Run("returns nil for unknown invoice", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestInvoiceRepository_FindAll_Filter(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	issueDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	draft := newTestInvoice(t, "INV-2026-0001", issueDate)
	require.NoError(t, repo.Save(ctx, draft))

	sent := newTestInvoice(t, "INV-2026-0002", issueDate.AddDate(0, 0, 1))
	require.NoError(t, sent.MarkSent())
	require.NoError(t, repo.Save(ctx, sent))

	t.Run("filters by status", func(t *testing.T) {
		status := billing.InvoiceStatusSent
		invoices, err := repo.FindAll(ctx, billing.InvoiceFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, "INV-2026-0002", invoices[0].InvoiceNumber)
	})

	t.Run("filters by client", func(t *testing.T) {
		invoices, err := repo.FindAll(ctx, billing.InvoiceFilter{ClientID: &draft.ClientID})
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, draft.ID, invoices[0].ID)
	})

	t.Run("counts without pagination", func(t *testing.T) {
		count, err := repo.Count(ctx, billing.InvoiceFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestInvoiceRepository_FindOverdueCandidates(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	issueDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	dueDate := issueDate.AddDate(0, 0, 30)

	unpaid := newTestInvoice(t, "INV-2026-0001", issueDate)
	require.NoError(t, unpaid.MarkSent())
	require.NoError(t, repo.Save(ctx, unpaid))

	settled := newTestInvoice(t, "INV-2026-0002", issueDate)
	require.NoError(t, settled.MarkSent())
	require.NoError(t, settled.RecordPayment(settled.TotalAmount,
		billing.PaymentMethodUPI, "", "", issueDate.AddDate(0, 0, 2)))
	require.NoError(t, repo.Save(ctx, settled))

	stillDraft := newTestInvoice(t, "INV-2026-0003", issueDate)
	require.NoError(t, repo.Save(ctx, stillDraft))

	t.Run("nothing before the due date", func(t *testing.T) {
		candidates, err := repo.FindOverdueCandidates(ctx, dueDate)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("only unpaid sent invoices past due", func(t *testing.T) {
		candidates, err := repo.FindOverdueCandidates(ctx, dueDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, unpaid.ID, candidates[0].ID)
	})
}

func TestInvoiceRepository_FindRecurringDue(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	issueDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	nextIssue := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	recurring := newTestInvoice(t, "INV-2026-0001", issueDate)
	require.NoError(t, recurring.EnableRecurrence(billing.FrequencyMonthly, nextIssue))
	require.NoError(t, repo.Save(ctx, recurring))

	oneOff := newTestInvoice(t, "INV-2026-0002", issueDate)
	require.NoError(t, repo.Save(ctx, oneOff))

	due, err := repo.FindRecurringDue(ctx, nextIssue)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, recurring.ID, due[0].ID)

	due, err = repo.FindRecurringDue(ctx, nextIssue.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestInvoiceRepository_NextInvoiceNumber(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	year := time.Now().Year()

	t.Run("starts from one on an empty table", func(t *testing.T) {
		number, err := repo.NextInvoiceNumber(ctx, "INV")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-%d-0001", year), number)
	})

	t.Run("continues after the highest existing number", func(t *testing.T) {
		invoice := newTestInvoice(t, fmt.Sprintf("INV-%d-0041", year), time.Now())
		require.NoError(t, repo.Save(ctx, invoice))

		number, err := repo.NextInvoiceNumber(ctx, "INV")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-%d-0042", year), number)
	})
}

func TestLateFeeRuleRepository_CRUD(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormLateFeeRuleRepository(db)
	ctx := context.Background()

	rule, err := billing.NewLateFeeRule("Standard late fee",
		billing.LateFeeTypePercentage, decimal.NewFromInt(2), 7, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, rule))

	found, err := repo.FindByID(ctx, rule.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Standard late fee", found.Name)
	assert.Equal(t, 7, found.GracePeriodDays)

	rule.Deactivate()
	require.NoError(t, repo.Save(ctx, rule))

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, repo.Delete(ctx, rule.ID))
	found, err = repo.FindByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}
