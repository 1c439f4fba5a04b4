package handler

import (
	"net/http"

	"meal_planner_backend/internal/profile/service"
	"meal_planner_backend/internal/profile/transport"
	"meal_planner_backend/platform/httpkit"
	"meal_planner_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the caller's profile.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new profile handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// GetProfile returns the caller's profile.
// GET /api/v1/profile
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := httpkit.RequireUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetProfile(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateProfile merges the request into the caller's profile.
// PUT /api/v1/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req transport.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}
	userID, ok := httpkit.RequireUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.UpdateProfile(c.Request.Context(), userID, req, service.SourceAPI)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// LatestMealPlan returns the newest saved plan.
// GET /api/v1/meal-plans/latest
func (h *Handler) LatestMealPlan(c *gin.Context) {
	userID, ok := httpkit.RequireUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.LatestMealPlan(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
