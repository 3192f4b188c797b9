package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// registrarFunc adapts a function to RouteRegistrar
type registrarFunc func(rg *gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func pong(path string) registrarFunc {
	return func(rg *gin.RouterGroup) {
		rg.GET(path, func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})
	}
}

func serve(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.APIPrefix())
	assert.Empty(t, r.registrars)
	assert.Empty(t, r.root)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
	assert.Equal(t, "/api/v2", r.APIPrefix())
}

func TestRouterRegister(t *testing.T) {
	r := NewRouter(gin.New())

	r.Register(pong("/a")).Register(pong("/b")).RegisterRoot(pong("/health"))

	assert.Len(t, r.registrars, 2)
	assert.Len(t, r.root, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).
		Register(pong("/entities/ping")).
		RegisterRoot(pong("/health")).
		Setup()

	w := serve(engine, "/api/v1/entities/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = serve(engine, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, serve(engine, "/entities/ping").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, "/api/v1/health").Code)
}

func TestRouterSetup_CustomVersion(t *testing.T) {
	engine := gin.New()
	NewRouter(engine, WithAPIVersion("v2")).Register(pong("/ping")).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, "/api/v2/ping").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, "/api/v1/ping").Code)
}
