// Package http defines the contract between the router and the feature
// modules that mount routes on it.
package http

import (
	"context"

	"meal_planner_backend/platform/config"
	"meal_planner_backend/platform/httpkit"
	"meal_planner_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module is a feature that owns a set of routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is what a module may mount routes on.
type RouterContext struct {
	// V1 is /api/v1 without authentication.
	V1 *gin.RouterGroup
	// Protected is /api/v1 behind bearer token auth.
	Protected *gin.RouterGroup
	// AssistantRateLimiter guards routes that spend model or Mapbox quota.
	AssistantRateLimiter *httpkit.IPRateLimiter
}

// RouterConfig is the configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs GET /api/health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is everything the composition root hands to the router.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health may be nil, which makes the health check always succeed.
	Health  HealthChecker
	Modules []Module
}
