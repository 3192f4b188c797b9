package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/signage/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newHealthEngine(db DatabaseChecker) *gin.Engine {
	r := gin.New()
	NewHealthHandler(db).RegisterRoutes(&r.RouterGroup)
	return r
}

func TestHealthHandler_Health(t *testing.T) {
	db := new(mockDatabase)
	r := newHealthEngine(db)

	w := doRequest(r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeData(t, w)["status"])
	db.AssertNotCalled(t, "Ping", mock.Anything)
}

func TestHealthHandler_Ready(t *testing.T) {
	db := new(mockDatabase)
	db.On("Ping", mock.Anything).Return(nil)
	db.On("Stats").Return(persistence.ConnectionStats{MaxOpenConnections: 25, OpenConnections: 3, Idle: 2, InUse: 1}, nil)
	r := newHealthEngine(db)

	w := doRequest(r, http.MethodGet, "/ready", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "ready", data["status"])
	assert.Equal(t, "up", data["database"])
	pool := data["pool"].(map[string]any)
	assert.Equal(t, float64(25), pool["max_open_connections"])
	assert.Equal(t, float64(1), pool["in_use"])
}

func TestHealthHandler_Ready_StatsUnavailable(t *testing.T) {
	db := new(mockDatabase)
	db.On("Ping", mock.Anything).Return(nil)
	db.On("Stats").Return(persistence.ConnectionStats{}, errors.New("sql: database is closed"))
	r := newHealthEngine(db)

	w := doRequest(r, http.MethodGet, "/ready", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decodeData(t, w), "pool")
}

func TestHealthHandler_Ready_DatabaseDown(t *testing.T) {
	db := new(mockDatabase)
	db.On("Ping", mock.Anything).Return(errors.New("dial tcp: connection refused"))
	r := newHealthEngine(db)

	w := doRequest(r, http.MethodGet, "/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "down", data["database"])
	db.AssertNotCalled(t, "Stats")
}
