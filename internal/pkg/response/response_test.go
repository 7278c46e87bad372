package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "killbill-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", xerrors.FieldError("due_date", "due date cannot be before issue date"), http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("load: %w", xerrors.ErrNotFound), http.StatusNotFound},
		{"protected", xerrors.ErrProtected, http.StatusConflict},
		{"conflict", xerrors.ErrConflict, http.StatusConflict},
		{"unauthorized", xerrors.ErrUnauthorized, http.StatusUnauthorized},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			FromError(c, "request failed", tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.True(t, c.IsAborted())

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.NotContains(t, body.Error, "pq:")
		})
	}
}

func TestFromError_ValidationFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromError(c, "invalid invoice", xerrors.FieldError("due_date", "due date cannot be before issue date"))

	var body struct {
		Data struct {
			Fields map[string]string `json:"fields"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "due date cannot be before issue date", body.Data.Fields["due_date"])
}
