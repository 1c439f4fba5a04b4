package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"meal_planner_backend/internal/storefinder/mapbox"
	"meal_planner_backend/internal/storefinder/service"
	"meal_planner_backend/internal/storefinder/transport"
	"meal_planner_backend/platform/logger"
	"meal_planner_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	lastSuggest mapbox.SuggestRequest
	suggestErr  error
}

func (s *stubProvider) Suggest(ctx context.Context, req mapbox.SuggestRequest) ([]mapbox.Candidate, error) {
	s.lastSuggest = req
	if s.suggestErr != nil {
		return nil, s.suggestErr
	}
	return []mapbox.Candidate{{MapboxID: "a", Name: "Sultan Center"}}, nil
}

func (s *stubProvider) Retrieve(ctx context.Context, id, token string) (mapbox.Place, error) {
	return mapbox.Place{MapboxID: id, Name: "Sultan Center", CountryCode: "KW", Categories: []string{"supermarket"}}, nil
}

func newRouter(p service.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.New(p, nil, service.Options{Region: "KW"}, logger.Discard())
	h := New(svc, validator.New())
	r := gin.New()
	r.GET("/stores/search", h.SearchStores)
	r.GET("/restaurants/search", h.SearchRestaurants)
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSearchStoresReturnsStores(t *testing.T) {
	p := &stubProvider{}
	r := newRouter(p)

	rec := get(r, "/stores/search?q=milk&lat=29.3759&lng=47.9774&region=kw")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp transport.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Stores, 1)
	assert.Equal(t, "Sultan Center", resp.Stores[0].Name)
	assert.Equal(t, "KW", resp.Region)
	require.NotNil(t, p.lastSuggest.Proximity)
	assert.Equal(t, 29.3759, p.lastSuggest.Proximity.Latitude)
}

func TestSearchRestaurantsUsesRestaurantCategories(t *testing.T) {
	p := &stubProvider{}
	r := newRouter(p)

	rec := get(r, "/restaurants/search?q=shawarma")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.RestaurantProfile.Categories, p.lastSuggest.Categories)
}

func TestSearchStoresRejectsBadInput(t *testing.T) {
	r := newRouter(&stubProvider{})

	for _, target := range []string{
		"/stores/search",
		"/stores/search?q=m",
		"/stores/search?q=milk&lat=29.3",
		"/stores/search?q=milk&lat=95&lng=47",
		"/stores/search?q=milk&region=KWT",
		"/stores/search?q=milk&limit=50",
	} {
		rec := get(r, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestSearchStoresMapsUpstreamFailure(t *testing.T) {
	r := newRouter(&stubProvider{suggestErr: errors.New("timeout")})

	rec := get(r, "/stores/search?q=milk")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "store lookup failed")
}
