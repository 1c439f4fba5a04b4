// Package storefinder provides the store lookup bounded context module.
package storefinder

import (
	apphttp "meal_planner_backend/internal/http"
	"meal_planner_backend/internal/storefinder/cache"
	"meal_planner_backend/internal/storefinder/handler"
	"meal_planner_backend/internal/storefinder/mapbox"
	"meal_planner_backend/internal/storefinder/service"
	"meal_planner_backend/platform/config"
	"meal_planner_backend/platform/logger"
	"meal_planner_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Module wires the store finder routes and exposes the service to the assistant.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the module. Results are cached in Redis when rdb is set
// and in process otherwise.
func NewModule(cfg config.StoreFinderConfig, rdb *redis.Client, val *validator.Validator, log *logger.Logger) *Module {
	client := mapbox.NewClient(mapbox.Config{
		BaseURL:     cfg.GetMapboxBaseURL(),
		AccessToken: cfg.GetMapboxAccessToken(),
		Timeout:     cfg.GetStoreFinderTimeout(),
	}, log)

	var resultCache service.Cache
	if rdb != nil {
		resultCache = cache.NewRedisCache(rdb)
	} else if memCache, err := cache.NewMemoryCache(1000); err == nil {
		resultCache = memCache
	} else {
		log.Warn("store search cache disabled", "error", err)
	}

	svc := service.New(client, resultCache, service.OptionsFromConfig(cfg), log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "storefinder"
}

// Service returns the lookup service for the assistant tools.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the lookup endpoints behind auth and the assistant rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	limited := ctx.Protected.Group("")
	limited.Use(ctx.AssistantRateLimiter.RateLimit())
	limited.GET("/stores/search", m.handler.SearchStores)
	limited.GET("/restaurants/search", m.handler.SearchRestaurants)
}

var _ apphttp.Module = (*Module)(nil)
