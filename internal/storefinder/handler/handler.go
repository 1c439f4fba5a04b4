// Package handler exposes the store finder over HTTP.
package handler

import (
	"net/http"

	"meal_planner_backend/internal/storefinder/mapbox"
	"meal_planner_backend/internal/storefinder/service"
	"meal_planner_backend/internal/storefinder/transport"
	"meal_planner_backend/platform/httpkit"
	"meal_planner_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgPartialLocation  = "lat and lng must be provided together"
)

// Handler handles store and restaurant lookups.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new store finder handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SearchStores finds grocery stores.
// GET /api/v1/stores/search?q=milk&lat=29.37&lng=47.97&region=KW
func (h *Handler) SearchStores(c *gin.Context) {
	h.search(c, service.GroceryProfile)
}

// SearchRestaurants finds places to eat out.
// GET /api/v1/restaurants/search?q=shawarma&lat=29.37&lng=47.97
func (h *Handler) SearchRestaurants(c *gin.Context) {
	h.search(c, service.RestaurantProfile)
}

func (h *Handler) search(c *gin.Context, profile service.Profile) {
	var req transport.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		httpkit.Error(c, http.StatusBadRequest, msgPartialLocation, nil)
		return
	}

	query := service.Query{
		Text:    req.Query,
		Region:  req.Region,
		Limit:   req.Limit,
		Profile: profile,
	}
	if req.Lat != nil {
		query.Proximity = &mapbox.Coordinate{Latitude: *req.Lat, Longitude: *req.Lng}
	}

	result, err := h.svc.Search(c.Request.Context(), query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
