package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "meal_planner_backend/internal/http"
	"meal_planner_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type testConfig struct{}

func (testConfig) GetHTTPAddr() string        { return ":0" }
func (testConfig) GetCORSAllowAll() bool      { return false }
func (testConfig) GetCORSOrigins() []string   { return []string{"http://localhost:4200"} }
func (testConfig) GetCORSAllowCreds() bool    { return true }
func (testConfig) GetJWTAccessSecret() string { return "secret" }

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	ctx.Protected.GET("/secret", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
}

func serve(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouterMountsModules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := New(&apphttp.App{
		Config:  testConfig{},
		Logger:  logger.Discard(),
		Modules: []apphttp.Module{pingModule{}},
	})

	assert.Equal(t, http.StatusOK, serve(engine, "/api/v1/ping").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, "/api/v1/secret").Code)
	assert.Equal(t, http.StatusOK, serve(engine, "/api/health").Code)
	assert.NotEmpty(t, serve(engine, "/api/health").Header().Get("X-Request-ID"))
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := New(&apphttp.App{
		Config: testConfig{},
		Logger: logger.Discard(),
		Health: pinger{err: errors.New("connection refused")},
	})

	assert.Equal(t, http.StatusServiceUnavailable, serve(engine, "/api/health").Code)
}
