package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	service "killbill-service/internal/service/client"
	"killbill-service/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stores := testutil.NewStores()
	h := NewClientHandler(service.NewClientService(stores.Clients, stores.Subscriptions, zap.NewNop()))

	r := gin.New()
	r.GET("/clients", h.ListClients)
	r.POST("/clients", h.CreateClient)
	r.GET("/clients/:id", h.GetClient)
	r.PUT("/clients/:id", h.UpdateClient)

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := serve(http.MethodPost, "/clients", `{"company_name":"Acme","contact_person":"Jane","email":"Billing@Acme.test","phone":"123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"email":"billing@acme.test"`)

	w = serve(http.MethodPost, "/clients", `{"company_name":"Acme","contact_person":"Jane","email":"not-an-email","phone":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(http.MethodPut, "/clients/1", `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"inactive"`)

	w = serve(http.MethodGet, "/clients?search=acm", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Acme")

	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/clients/42", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/clients/x", "").Code)
}
