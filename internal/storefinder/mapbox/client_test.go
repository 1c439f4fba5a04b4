package mapbox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meal_planner_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, AccessToken: "tok"}, logger.Discard())
}

func TestSuggestBuildsQueryAndSkipsUnretrievable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, suggestPath, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "milk", q.Get("q"))
		assert.Equal(t, "tok", q.Get("access_token"))
		assert.Equal(t, "sess-1", q.Get("session_token"))
		assert.Equal(t, "kw", q.Get("country"))
		assert.Equal(t, "supermarket,grocery", q.Get("poi_category"))
		assert.Equal(t, "47.9774,29.3759", q.Get("proximity"))
		assert.Equal(t, "5", q.Get("limit"))

		_, _ = w.Write([]byte(`{"suggestions":[
			{"name":"Sultan Center","mapbox_id":"a","poi_category":["supermarket"],"distance":120.5},
			{"name":"Kuwait City","feature_type":"place"},
			{"name":"Lulu","mapbox_id":"b","poi_category":"hypermarket"}
		]}`))
	})

	candidates, err := client.Suggest(context.Background(), SuggestRequest{
		Query:        "milk",
		Proximity:    &Coordinate{Latitude: 29.3759, Longitude: 47.9774},
		Country:      "KW",
		Categories:   []string{"supermarket", "grocery"},
		Limit:        5,
		SessionToken: "sess-1",
	})

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "a", candidates[0].MapboxID)
	assert.Equal(t, []string{"supermarket"}, candidates[0].Categories)
	require.NotNil(t, candidates[0].DistanceM)
	assert.InDelta(t, 120.5, *candidates[0].DistanceM, 0.001)
	assert.Equal(t, []string{"hypermarket"}, candidates[1].Categories)
}

func TestSuggestSurfacesStatusErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized - Invalid Token"}`))
	})

	_, err := client.Suggest(context.Background(), SuggestRequest{Query: "milk", SessionToken: "s"})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestSuggestRequiresToken(t *testing.T) {
	client := NewClient(Config{}, logger.Discard())
	_, err := client.Suggest(context.Background(), SuggestRequest{Query: "milk"})
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestRetrieveParsesFirstFeature(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, retrievePath))
		assert.Equal(t, "abc", strings.TrimPrefix(r.URL.Path, retrievePath))
		assert.Equal(t, "sess-1", r.URL.Query().Get("session_token"))

		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[{
			"type":"Feature",
			"geometry":{"type":"Point","coordinates":[47.98,29.37]},
			"properties":{
				"name":"The Sultan Center",
				"feature_type":"poi",
				"place_formatted":"Salmiya, Kuwait",
				"address":"Salem Al Mubarak St",
				"poi_category":["supermarket","grocery"],
				"brand":["TSC"],
				"context":{"country":{"name":"Kuwait","country_code":"kw"}}
			}
		}]}`))
	})

	place, err := client.Retrieve(context.Background(), "abc", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "The Sultan Center", place.Name)
	assert.Equal(t, "Salmiya, Kuwait", place.Address)
	assert.Equal(t, "KW", place.CountryCode)
	assert.Equal(t, "TSC", place.Brand)
	assert.InDelta(t, 29.37, place.Coordinate.Latitude, 0.0001)
	assert.InDelta(t, 47.98, place.Coordinate.Longitude, 0.0001)
	assert.Equal(t, []string{"supermarket", "grocery"}, place.Categories)
}

func TestRetrieveFallsBackToPropertiesCountry(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[{"properties":{"name":"Market","country":"sa","full_address":"Riyadh","categories":"market","coordinates":{"latitude":24.7,"longitude":46.6}}}]}`))
	})

	place, err := client.Retrieve(context.Background(), "x", "s")

	require.NoError(t, err)
	assert.Equal(t, "SA", place.CountryCode)
	assert.Equal(t, "Riyadh", place.Address)
	assert.Equal(t, []string{"market"}, place.Categories)
	assert.InDelta(t, 24.7, place.Coordinate.Latitude, 0.0001)
}

func TestRetrieveWithoutFeatures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	})

	_, err := client.Retrieve(context.Background(), "x", "s")
	assert.ErrorIs(t, err, ErrNoFeature)
}
