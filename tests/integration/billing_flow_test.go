package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingapp "github.com/taxfolio/backend/internal/application/billing"
	partnerapp "github.com/taxfolio/backend/internal/application/partner"
	"github.com/taxfolio/backend/internal/infrastructure/persistence"
)

type billingFixture struct {
	invoiceService   *billingapp.InvoiceService
	lateFeeService   *billingapp.LateFeeService
	recurringService *billingapp.RecurringService
	dashboardService *billingapp.DashboardService
	clientService    *partnerapp.ClientService
}

func newBillingFixture(tdb *TestDB) *billingFixture {
	invoiceRepo := persistence.NewGormInvoiceRepository(tdb.DB)
	ruleRepo := persistence.NewGormLateFeeRuleRepository(tdb.DB)
	clientRepo := persistence.NewGormClientRepository(tdb.DB)

	return &billingFixture{
		invoiceService:   billingapp.NewInvoiceService(invoiceRepo, clientRepo, "29"),
		lateFeeService:   billingapp.NewLateFeeService(invoiceRepo, ruleRepo),
		recurringService: billingapp.NewRecurringService(invoiceRepo),
		dashboardService: billingapp.NewDashboardService(invoiceRepo),
		clientService:    partnerapp.NewClientService(clientRepo),
	}
}

func (f *billingFixture) createClient(t *testing.T, gstin string) *partnerapp.ClientResponse {
	t.Helper()

	client, err := f.clientService.CreateClient(context.Background(), partnerapp.CreateClientRequest{
		Name:  "Acme Traders",
		Email: "billing@acme.in",
		GSTIN: gstin,
	})
	require.NoError(t, err)
	return client
}

func TestBillingFlow_InvoiceLifecycle(t *testing.T) {
	tdb := NewTestDB(t)
	f := newBillingFixture(tdb)
	ctx := context.Background()

	client := f.createClient(t, "29ABCDE1234F1Z5")

	issueDate := time.Now().UTC().Truncate(24 * time.Hour)
	invoice, err := f.invoiceService.CreateInvoice(ctx, billingapp.CreateInvoiceRequest{
		ClientID:  client.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 30),
		LineItems: []billingapp.LineItemRequest{
			{
				Description: "Consulting retainer",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.NewFromInt(40000),
				TaxRate:     decimal.NewFromInt(18),
				HSNCode:     "9983",
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", invoice.Status)
	assert.Equal(t, "INTRA_STATE", invoice.TaxTreatment)
	assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(47200)))

	sent, err := f.invoiceService.SendInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "SENT", sent.Status)
	require.NotNil(t, sent.SentAt)

	paid, err := f.invoiceService.RecordPayment(ctx, invoice.ID, billingapp.RecordPaymentRequest{
		Amount: decimal.NewFromInt(47200),
		Method: "BANK_TRANSFER",
	})
	require.NoError(t, err)
	assert.Equal(t, "PAID", paid.Status)
	assert.Equal(t, "PAID", paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)

	// round trip through postgres including JSONB collections
	fetched, err := f.invoiceService.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	require.Len(t, fetched.LineItems, 1)
	require.Len(t, fetched.Payments, 1)
	assert.True(t, fetched.PaidAmount.Equal(decimal.NewFromInt(47200)))
}

func TestBillingFlow_OverdueSweepAppliesLateFee(t *testing.T) {
	tdb := NewTestDB(t)
	f := newBillingFixture(tdb)
	ctx := context.Background()

	client := f.createClient(t, "29ABCDE1234F1Z5")

	issueDate := time.Now().UTC().AddDate(0, 0, -60)
	invoice, err := f.invoiceService.CreateInvoice(ctx, billingapp.CreateInvoiceRequest{
		ClientID:  client.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 30),
		LineItems: []billingapp.LineItemRequest{
			{Description: "ERP rollout", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(2500)},
		},
	})
	require.NoError(t, err)

	_, err = f.invoiceService.SendInvoice(ctx, invoice.ID)
	require.NoError(t, err)

	_, err = f.lateFeeService.CreateRule(ctx, billingapp.LateFeeRuleRequest{
		Name:   "Flat penalty",
		Type:   "FIXED",
		Amount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	result, err := f.lateFeeService.SweepOverdue(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, result.InvoicesExamined)
	assert.Equal(t, 1, result.MarkedOverdue)
	assert.Equal(t, 1, result.FeesApplied)
	assert.True(t, result.TotalFees.Equal(decimal.NewFromInt(500)))

	fetched, err := f.invoiceService.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "OVERDUE", fetched.Status)
	assert.True(t, fetched.LateFeeTotal.Equal(decimal.NewFromInt(500)))
	require.Len(t, fetched.LateFees, 1)

	// a second sweep must not double-charge the same rule
	again, err := f.lateFeeService.SweepOverdue(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, again.FeesApplied)
}

func TestBillingFlow_RecurringGeneration(t *testing.T) {
	tdb := NewTestDB(t)
	f := newBillingFixture(tdb)
	ctx := context.Background()

	client := f.createClient(t, "29ABCDE1234F1Z5")

	issueDate := time.Now().UTC().AddDate(0, -1, 0)
	invoice, err := f.invoiceService.CreateInvoice(ctx, billingapp.CreateInvoiceRequest{
		ClientID:  client.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 15),
		LineItems: []billingapp.LineItemRequest{
			{Description: "Monthly retainer", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(15000), TaxRate: decimal.NewFromInt(18)},
		},
	})
	require.NoError(t, err)

	_, err = f.invoiceService.EnableRecurrence(ctx, invoice.ID, billingapp.EnableRecurrenceRequest{
		Frequency:     "MONTHLY",
		NextIssueDate: time.Now().UTC().AddDate(0, 0, -1),
	})
	require.NoError(t, err)

	result, err := f.recurringService.GenerateDue(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, result.TemplatesDue)
	assert.Equal(t, 1, result.Generated)
	require.Len(t, result.GeneratedIDs, 1)

	generated, err := f.invoiceService.GetInvoice(ctx, result.GeneratedIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", generated.Status)
	assert.NotEqual(t, invoice.InvoiceNumber, generated.InvoiceNumber)
	require.Len(t, generated.LineItems, 1)
	assert.True(t, generated.TotalAmount.Equal(invoice.TotalAmount))

	// the template's schedule advanced past now
	source, err := f.invoiceService.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, source.NextIssueDate)
	assert.True(t, source.NextIssueDate.After(time.Now().UTC().AddDate(0, 0, -1)))
}

func TestBillingFlow_DashboardSummary(t *testing.T) {
	tdb := NewTestDB(t)
	f := newBillingFixture(tdb)
	ctx := context.Background()

	client := f.createClient(t, "29ABCDE1234F1Z5")

	issueDate := time.Now().UTC().Truncate(24 * time.Hour)
	invoice, err := f.invoiceService.CreateInvoice(ctx, billingapp.CreateInvoiceRequest{
		ClientID:  client.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 30),
		LineItems: []billingapp.LineItemRequest{
			{Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10000), TaxRate: decimal.NewFromInt(18)},
		},
	})
	require.NoError(t, err)
	_, err = f.invoiceService.SendInvoice(ctx, invoice.ID)
	require.NoError(t, err)

	summary, err := f.dashboardService.GetSummary(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.True(t, summary.TotalOutstanding.Equal(decimal.NewFromInt(11800)))
}
