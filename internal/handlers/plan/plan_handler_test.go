package plan

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/pkg/clock"
	service "killbill-service/internal/service/plan"
	"killbill-service/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(stores *testutil.Stores) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPlanHandler(service.NewPlanService(stores.Plans, stores.Subscriptions, zap.NewNop()))

	r := gin.New()
	r.GET("/plans", h.ListPlans)
	r.POST("/plans", h.CreatePlan)
	r.GET("/plans/:id", h.GetPlan)
	r.PUT("/plans/:id", h.UpdatePlan)
	r.DELETE("/plans/:id", h.DeletePlan)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePlan(t *testing.T) {
	r := newRouter(testutil.NewStores())

	w := serve(r, http.MethodPost, "/plans", `{"name":"Basic","price_monthly":"100.00","price_annual":"1000.00"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"is_active":true`)

	w = serve(r, http.MethodPost, "/plans", `{"name":"Broken","price_monthly":"-1","price_annual":"0"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "price_monthly")

	w = serve(r, http.MethodPost, "/plans", `{"price_monthly":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletePlan_ProtectedWhileReferenced(t *testing.T) {
	stores := testutil.NewStores()
	r := newRouter(stores)

	acme := stores.SeedClient(t, "Acme", "billing@acme.test")
	used := stores.SeedPlan(t, "Basic", "100.00", "1000.00")
	unused := stores.SeedPlan(t, "Spare", "5.00", "50.00")
	stores.SeedSubscription(t, acme, used, subscription.CycleMonthly, clock.Date(2024, 1, 1), clock.Date(2024, 1, 10))

	w := serve(r, http.MethodDelete, "/plans/"+strconv.FormatInt(used.ID, 10), "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(r, http.MethodDelete, "/plans/"+strconv.FormatInt(unused.ID, 10), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/plans/"+strconv.FormatInt(unused.ID, 10), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodGet, "/plans/"+strconv.FormatInt(used.ID, 10), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active_count":1`)
}
