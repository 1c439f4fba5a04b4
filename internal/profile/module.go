// Package profile provides the user profile bounded context module.
package profile

import (
	"meal_planner_backend/internal/events"
	apphttp "meal_planner_backend/internal/http"
	"meal_planner_backend/internal/profile/handler"
	"meal_planner_backend/internal/profile/repository"
	"meal_planner_backend/internal/profile/service"
	"meal_planner_backend/internal/profile/sqltool"
	"meal_planner_backend/platform/logger"
	"meal_planner_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the profile bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	service  *service.Service
	executor *sqltool.Executor
}

// NewModule creates and initializes the profile module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)

	return &Module{
		handler:  handler.New(svc, val),
		service:  svc,
		executor: sqltool.NewExecutor(pool, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "profile"
}

// Service returns the service layer for the assistant tools.
func (m *Module) Service() *service.Service {
	return m.service
}

// Executor returns the guarded SQL executor for the profile agent.
func (m *Module) Executor() *sqltool.Executor {
	return m.executor
}

// RegisterRoutes mounts profile routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/profile", m.handler.GetProfile)
	ctx.Protected.PUT("/profile", m.handler.UpdateProfile)
	ctx.Protected.GET("/meal-plans/latest", m.handler.LatestMealPlan)
}

var _ apphttp.Module = (*Module)(nil)
