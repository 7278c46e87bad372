package invoice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/pkg/clock"
	service "killbill-service/internal/service/invoice"
	settingsservice "killbill-service/internal/service/settings"
	"killbill-service/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	stores *testutil.Stores
	router *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stores := testutil.NewStores()
	today := clock.Fixed(clock.Date(2024, 3, 10))
	invoices, err := service.NewInvoiceService(stores.Invoices, stores.Subscriptions, nil, today, zap.NewNop())
	require.NoError(t, err)
	h := NewInvoiceHandler(invoices, settingsservice.NewSettingsService(stores.Settings, zap.NewNop()))

	r := gin.New()
	r.POST("/invoices", h.CreateInvoice)
	r.GET("/invoices", h.ListInvoices)
	r.GET("/invoices/reminders", h.Reminders)
	r.GET("/invoices/:id", h.GetInvoice)
	r.GET("/invoices/:id/render", h.RenderInvoice)
	r.POST("/invoices/:id/mark-paid", h.MarkPaid)

	return &fixture{stores: stores, router: r}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) seedOverdue(t *testing.T) *invoice.Invoice {
	t.Helper()
	acme := f.stores.SeedClient(t, "Acme", "billing@acme.test")
	basic := f.stores.SeedPlan(t, "Basic", "100.00", "1000.00")
	sub := f.stores.SeedSubscription(t, acme, basic, subscription.CycleMonthly, clock.Date(2024, 2, 1), clock.Date(2024, 3, 10))

	inv := &invoice.Invoice{
		SubscriptionID: sub.ID,
		InvoiceNumber:  "INV-0001",
		Amount:         decimal.RequireFromString("100.00"),
		IssueDate:      clock.Date(2024, 2, 24),
		DueDate:        clock.Date(2024, 2, 29),
		Status:         invoice.StatusOverdue,
		Source:         invoice.SourceRenewal,
	}
	f.stores.Invoices.Put(inv)
	return inv
}

func TestMarkPaid(t *testing.T) {
	f := newFixture(t)
	inv := f.seedOverdue(t)
	path := "/invoices/" + strconv.FormatInt(inv.ID, 10) + "/mark-paid"

	w := f.do(http.MethodPost, path, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"already_paid":false`)
	assert.Contains(t, w.Body.String(), `"status":"paid"`)

	w = f.do(http.MethodPost, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"already_paid":true`)

	assert.Len(t, f.stores.Payments.All(), 1)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/invoices/99/mark-paid", "").Code)
}

func TestRenderInvoice(t *testing.T) {
	f := newFixture(t)
	inv := f.seedOverdue(t)

	w := f.do(http.MethodGet, "/invoices/"+strconv.FormatInt(inv.ID, 10)+"/render", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "INV-0001")
	assert.Contains(t, w.Body.String(), "Acme")
}

func TestCreateInvoice_Validation(t *testing.T) {
	f := newFixture(t)
	inv := f.seedOverdue(t)
	subID := strconv.FormatInt(inv.SubscriptionID, 10)

	w := f.do(http.MethodPost, "/invoices", `{"subscription_id":`+subID+`,"issue_date":"2024-03-10","due_date":"2024-03-01"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "due_date")

	w = f.do(http.MethodPost, "/invoices", `{"subscription_id":`+subID+`}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "INV-0002")

	all, err := f.stores.Invoices.List(context.Background(), &invoice.ListFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListAndReminders(t *testing.T) {
	f := newFixture(t)
	f.seedOverdue(t)

	w := f.do(http.MethodGet, "/invoices?status=overdue", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "INV-0001")

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/invoices?status=late", "").Code)

	w = f.do(http.MethodGet, "/invoices/reminders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"days_overdue":10`)
}
