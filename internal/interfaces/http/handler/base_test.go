package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/domain/shared"
	"github.com/signage/backend/internal/interfaces/http/dto"
	"github.com/signage/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// routeRegistrar matches the handlers' RegisterRoutes
type routeRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

func newTestEngine(registrars ...routeRegistrar) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	for _, reg := range registrars {
		reg.RegisterRoutes(api)
	}
	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	resp := decodeResponse(t, w)
	require.True(t, resp.Success, w.Body.String())
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	return data
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"entity not found", catalog.ErrEntityNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped option not found", fmt.Errorf("load: %w", catalog.ErrOptionNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"record not found", fmt.Errorf("fetch: %w", integration.ErrRecordNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"mapping not found", integration.ErrMappingNotFound, http.StatusUnprocessableEntity, dto.ErrCodeBusinessRule},
		{"wrapped mapping not found", fmt.Errorf("%w: product/ext-9", integration.ErrMappingNotFound), http.StatusUnprocessableEntity, dto.ErrCodeBusinessRule},
		{"parent not linked", integration.ErrParentNotLinked, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"entity not linked", integration.ErrEntityNotLinked, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"option not calculated", catalog.ErrOptionNotCalculated, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"invalid calculation", integration.ErrInvalidCalculation, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"invalid field name", catalog.ErrInvalidFieldName, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"negative price", catalog.ErrNegativePrice, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"concurrency conflict", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"unknown domain code", shared.NewDomainError("SOMETHING_ODD", "odd"), http.StatusInternalServerError, dto.ErrCodeUnknown},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_HandleError_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h := &BaseHandler{}
	h.HandleError(c, errors.New("pq: password authentication failed"))

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.NotContains(t, resp.Error.Message, "password")
	assert.Len(t, c.Errors, 1)
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h := &BaseHandler{}
	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
}

func TestBaseHandler_ErrorCarriesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	h := &BaseHandler{}
	r.GET("/fail", func(c *gin.Context) { h.BadRequest(c, "nope") })

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	assert.Equal(t, "req-42", resp.Error.RequestID)
}
