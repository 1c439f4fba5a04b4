package assistant

import (
	"context"
	"errors"
	"testing"

	"meal_planner_backend/internal/profile/service"
	storeservice "meal_planner_backend/internal/storefinder/service"
	"meal_planner_backend/platform/apperr"
	"meal_planner_backend/platform/logger"
	"meal_planner_backend/platform/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolset(deps Deps) *toolset {
	deps.Validator = validator.New()
	deps.Log = logger.Discard()
	return &toolset{deps: deps}
}

func TestSearchPlacesBuildsQuery(t *testing.T) {
	stores := &fakeStores{}
	ts := newToolset(Deps{Stores: stores})
	lat, lng := 29.3759, 47.9774

	out := ts.searchPlaces(context.Background(), "search_nearby_stores", storeservice.GroceryProfile, storeSearchInput{
		Query: " supermarket Salmiya ", Latitude: &lat, Longitude: &lng, MaxResults: 50,
	})

	assert.Empty(t, out.Error)
	require.Len(t, out.Stores, 1)
	assert.Equal(t, "supermarket Salmiya", stores.last.Text)
	assert.Equal(t, 10, stores.last.Limit)
	require.NotNil(t, stores.last.Proximity)
	assert.Equal(t, lng, stores.last.Proximity.Longitude)
}

func TestSearchPlacesIgnoresHalfCoordinate(t *testing.T) {
	stores := &fakeStores{}
	ts := newToolset(Deps{Stores: stores})
	lat := 29.0

	ts.searchPlaces(context.Background(), "search_restaurants", storeservice.RestaurantProfile, storeSearchInput{Query: "shawarma", Latitude: &lat})

	assert.Nil(t, stores.last.Proximity)
	assert.Equal(t, storeservice.RestaurantProfile.Name, stores.last.Profile.Name)
}

func TestSearchPlacesReportsUpstreamFailure(t *testing.T) {
	ts := newToolset(Deps{Stores: &fakeStores{err: apperr.Upstream("store lookup failed", errors.New("dial tcp"))}})

	out := ts.searchPlaces(context.Background(), "search_nearby_stores", storeservice.GroceryProfile, storeSearchInput{Query: "milk"})

	assert.Equal(t, "store lookup failed", out.Error)
	assert.NotNil(t, out.Stores)
	assert.Empty(t, out.Stores)
}

func TestToolErrorHidesUntypedErrors(t *testing.T) {
	ts := newToolset(Deps{SQL: &fakeSQL{err: errors.New("password authentication failed for user app")}})

	out := ts.executeSQL(context.Background(), Scope{UserID: "u1"}, executeSQLInput{SQL: "SELECT 1"})

	assert.Equal(t, "internal error", out.Error)
}

func TestExecuteSQLPassesScope(t *testing.T) {
	sql := &fakeSQL{}
	ts := newToolset(Deps{SQL: sql})

	out := ts.executeSQL(context.Background(), Scope{UserID: "u1", SessionID: "s1"}, executeSQLInput{
		SQL: "SELECT age FROM user_profiles WHERE user_id = :user_id", ParamsJSON: `{"user_id":"someone-else"}`, ExpectResult: true,
	})

	assert.Empty(t, out.Error)
	assert.Equal(t, int64(1), out.RowCount)
	assert.Equal(t, "u1", sql.lastScope.UserID)
	assert.Equal(t, "s1", sql.lastScope.SessionID)
}

func TestSaveProfileValidatesAndMarksSource(t *testing.T) {
	profiles := &fakeProfiles{}
	ts := newToolset(Deps{Profiles: profiles})
	age := 34

	out := ts.saveProfile(context.Background(), Scope{UserID: "u1"}, saveProfileInput{
		Age:           &age,
		ActivityLevel: "High",
		Preferences:   []preferenceInput{{Key: "likes", Value: "machboos"}},
		Allergies:     []allergyInput{{Allergy: "sesame", Severity: "Severe"}},
	})

	require.Empty(t, out.Error)
	assert.Equal(t, service.SourceAssistant, profiles.lastSource)
	assert.Equal(t, "high", profiles.lastUpdate.ActivityLevel)
	assert.Equal(t, "machboos", profiles.lastUpdate.Preferences["likes"])
	assert.Equal(t, "severe", profiles.lastUpdate.Allergies[0].Severity)

	bad := ts.saveProfile(context.Background(), Scope{UserID: "u1"}, saveProfileInput{ActivityLevel: "extreme"})
	assert.Contains(t, bad.Error, "validation failed")
}

func TestSaveMealPlanUsesSession(t *testing.T) {
	profiles := &fakeProfiles{}
	ts := newToolset(Deps{Profiles: profiles})

	out := ts.saveMealPlan(context.Background(), Scope{UserID: "u1", SessionID: "s9"}, saveMealPlanInput{
		Items:    []mealPlanItemInput{{MealType: "breakfast", Item: "Foul medames"}},
		PlanJSON: `{"day":1}`,
	})

	require.Empty(t, out.Error)
	assert.NotEmpty(t, out.MealPlanID)
	assert.Equal(t, "s9", profiles.lastSession)
	assert.JSONEq(t, `{"day":1}`, string(profiles.lastPlan.Plan))
}

func TestMemoryTools(t *testing.T) {
	mem := &fakeMemory{}
	ts := newToolset(Deps{Memory: mem})
	scope := Scope{UserID: "u1", SessionID: "s1"}

	saved := ts.saveMemory(context.Background(), scope, saveMemoryInput{Fact: "prefers dinner at 20:00"})
	require.True(t, saved.Saved)
	require.Len(t, mem.saved, 1)
	assert.Equal(t, "u1", mem.saved[0].UserID)

	loaded := ts.loadMemory(context.Background(), scope, loadMemoryInput{Query: "tea"})
	assert.Equal(t, 1, loaded.Count)
	assert.Equal(t, "- likes cardamom tea", loaded.Memories)
	assert.Equal(t, "u1", mem.recalled)
}

func TestOrchestratorToolsFollowDeps(t *testing.T) {
	ts := newToolset(Deps{Memory: &fakeMemory{}})

	tools, err := ts.orchestratorTools()

	require.NoError(t, err)
	var names []string
	for _, tl := range tools {
		names = append(names, tl.Name())
	}
	assert.Equal(t, []string{"load_memory", "save_memory"}, names)
}
