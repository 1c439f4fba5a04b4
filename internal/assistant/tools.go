package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"meal_planner_backend/internal/memory"
	profileservice "meal_planner_backend/internal/profile/service"
	"meal_planner_backend/internal/profile/sqltool"
	profiletransport "meal_planner_backend/internal/profile/transport"
	"meal_planner_backend/internal/storefinder/mapbox"
	"meal_planner_backend/internal/storefinder/service"
	storetransport "meal_planner_backend/internal/storefinder/transport"
	"meal_planner_backend/platform/apperr"
	"meal_planner_backend/platform/logger"
	"meal_planner_backend/platform/validator"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
)

// StoreSearcher runs store and restaurant lookups.
type StoreSearcher interface {
	Search(ctx context.Context, q service.Query) (storetransport.SearchResponse, error)
}

// ProfileService reads and writes the caller's profile.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (profiletransport.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req profiletransport.UpdateProfileRequest, source string) (profiletransport.ProfileResponse, error)
	SaveMealPlan(ctx context.Context, userID, sessionID string, req profiletransport.SaveMealPlanRequest) (profiletransport.MealPlanResponse, error)
}

// SQLRunner gives the model guarded access to the user tables.
type SQLRunner interface {
	InspectSchema(ctx context.Context) ([]sqltool.Table, error)
	Execute(ctx context.Context, scope sqltool.Scope, sql, paramsJSON string, expectResult bool) (sqltool.Result, error)
}

// MemoryManager stores and recalls long-term memories.
type MemoryManager interface {
	Remember(ctx context.Context, userID, sessionID, text, kind string) (memory.Record, error)
	Recall(ctx context.Context, userID, query string, limit int) ([]memory.Hit, error)
}

// Deps are the collaborators behind the assistant tools. Nil members
// switch the matching tools off.
type Deps struct {
	Stores    StoreSearcher
	Profiles  ProfileService
	SQL       SQLRunner
	Memory    MemoryManager
	Validator *validator.Validator
	Log       *logger.Logger
}

// Scope identifies whose data a tool call touches.
type Scope struct {
	UserID    string
	SessionID string
}

type toolset struct {
	deps Deps
}

func scopeFrom(ctx tool.Context) Scope {
	return Scope{UserID: ctx.UserID(), SessionID: ctx.SessionID()}
}

func withScope(ctx context.Context, scope Scope) context.Context {
	return logger.ContextWithIdentity(ctx, scope.UserID, scope.SessionID)
}

// toolError turns err into text the model may read back to the user.
func (t *toolset) toolError(ctx context.Context, name string, err error) string {
	t.deps.Log.WithContext(ctx).Warn("assistant tool failed", "tool", name, "error", err)
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
		return appErr.Message
	}
	return "internal error"
}

// =============================================================================
// Store finder
// =============================================================================

type storeSearchInput struct {
	Query      string   `json:"query" jsonschema:"what to look for, including the area or city"`
	Latitude   *float64 `json:"latitude,omitempty" jsonschema:"latitude of the user, if known"`
	Longitude  *float64 `json:"longitude,omitempty" jsonschema:"longitude of the user, if known"`
	Region     string   `json:"region,omitempty" jsonschema:"two letter country code, defaults to the configured region"`
	MaxResults int      `json:"max_results,omitempty" jsonschema:"maximum number of places, 1 to 10"`
}

type storeSearchOutput struct {
	Query    string                 `json:"query"`
	Region   string                 `json:"region,omitempty"`
	Stores   []storetransport.Store `json:"stores"`
	Fallback bool                   `json:"fallback,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

func (t *toolset) searchPlaces(ctx context.Context, name string, profile service.Profile, in storeSearchInput) storeSearchOutput {
	out := storeSearchOutput{Query: in.Query, Stores: []storetransport.Store{}}

	q := service.Query{
		Text:    strings.TrimSpace(in.Query),
		Region:  in.Region,
		Limit:   min(max(in.MaxResults, 0), mapbox.DefaultLimit),
		Profile: profile,
	}
	if in.Latitude != nil && in.Longitude != nil {
		q.Proximity = &mapbox.Coordinate{Latitude: *in.Latitude, Longitude: *in.Longitude}
	}

	result, err := t.deps.Stores.Search(ctx, q)
	if err != nil {
		out.Error = t.toolError(ctx, name, err)
		return out
	}
	out.Region = result.Region
	out.Stores = result.Stores
	out.Fallback = result.Fallback
	return out
}

// =============================================================================
// SQL
// =============================================================================

type inspectSchemaInput struct{}

type inspectSchemaOutput struct {
	Tables []sqltool.Table `json:"tables"`
	Error  string          `json:"error,omitempty"`
}

func (t *toolset) inspectSchema(ctx context.Context) inspectSchemaOutput {
	tables, err := t.deps.SQL.InspectSchema(ctx)
	if err != nil {
		return inspectSchemaOutput{Error: t.toolError(ctx, "inspect_schema", err)}
	}
	return inspectSchemaOutput{Tables: tables}
}

type executeSQLInput struct {
	SQL          string `json:"sql" jsonschema:"one SQL statement using :name placeholders"`
	ParamsJSON   string `json:"params_json,omitempty" jsonschema:"JSON object with the placeholder values"`
	ExpectResult bool   `json:"expect_result,omitempty" jsonschema:"true when the statement returns rows"`
}

type executeSQLOutput struct {
	Rows      []map[string]any `json:"rows,omitempty"`
	RowCount  int64            `json:"rowcount"`
	Truncated bool             `json:"truncated,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func (t *toolset) executeSQL(ctx context.Context, scope Scope, in executeSQLInput) executeSQLOutput {
	result, err := t.deps.SQL.Execute(ctx, sqltool.Scope{UserID: scope.UserID, SessionID: scope.SessionID}, in.SQL, in.ParamsJSON, in.ExpectResult)
	if err != nil {
		return executeSQLOutput{Error: t.toolError(ctx, "execute_sql", err)}
	}
	return executeSQLOutput{Rows: result.Rows, RowCount: result.RowCount, Truncated: result.Truncated}
}

// =============================================================================
// Profile
// =============================================================================

type getProfileInput struct{}

type profileOutput struct {
	Profile *profiletransport.ProfileResponse `json:"profile,omitempty"`
	Error   string                            `json:"error,omitempty"`
}

func (t *toolset) getProfile(ctx context.Context, scope Scope) profileOutput {
	p, err := t.deps.Profiles.GetProfile(ctx, scope.UserID)
	if err != nil {
		return profileOutput{Error: t.toolError(ctx, "get_profile", err)}
	}
	return profileOutput{Profile: &p}
}

type preferenceInput struct {
	Key   string `json:"key" jsonschema:"for example likes, dislikes or cuisine_preferences"`
	Value string `json:"value"`
}

type allergyInput struct {
	Allergy  string `json:"allergy"`
	Severity string `json:"severity,omitempty" jsonschema:"unknown, mild, moderate or severe"`
}

type saveProfileInput struct {
	Age               *int              `json:"age,omitempty"`
	Gender            string            `json:"gender,omitempty"`
	WeightKg          *float64          `json:"weight_kg,omitempty"`
	HeightCm          *float64          `json:"height_cm,omitempty"`
	DietGoal          string            `json:"diet_goal,omitempty"`
	DailyCalorieLimit *int              `json:"daily_calorie_limit,omitempty"`
	ActivityLevel     string            `json:"activity_level,omitempty" jsonschema:"low, moderate or high"`
	MealsPerDay       *int              `json:"meals_per_day,omitempty"`
	AvoidRedMeat      *bool             `json:"avoid_red_meat,omitempty"`
	Country           string            `json:"country,omitempty" jsonschema:"two letter country code"`
	Latitude          *float64          `json:"latitude,omitempty"`
	Longitude         *float64          `json:"longitude,omitempty"`
	Preferences       []preferenceInput `json:"preferences,omitempty"`
	Allergies         []allergyInput    `json:"allergies,omitempty"`
}

func (in saveProfileInput) request() profiletransport.UpdateProfileRequest {
	req := profiletransport.UpdateProfileRequest{
		Age:               in.Age,
		Gender:            in.Gender,
		WeightKg:          in.WeightKg,
		HeightCm:          in.HeightCm,
		DietGoal:          in.DietGoal,
		DailyCalorieLimit: in.DailyCalorieLimit,
		ActivityLevel:     strings.ToLower(in.ActivityLevel),
		MealsPerDay:       in.MealsPerDay,
		AvoidRedMeat:      in.AvoidRedMeat,
		Country:           in.Country,
		Latitude:          in.Latitude,
		Longitude:         in.Longitude,
	}
	if len(in.Preferences) > 0 {
		req.Preferences = make(map[string]string, len(in.Preferences))
		for _, p := range in.Preferences {
			req.Preferences[p.Key] = p.Value
		}
	}
	for _, a := range in.Allergies {
		req.Allergies = append(req.Allergies, profiletransport.Allergy{Allergy: a.Allergy, Severity: strings.ToLower(a.Severity)})
	}
	return req
}

func (t *toolset) saveProfile(ctx context.Context, scope Scope, in saveProfileInput) profileOutput {
	req := in.request()
	if err := t.deps.Validator.Struct(req); err != nil {
		return profileOutput{Error: "validation failed: " + err.Error()}
	}
	p, err := t.deps.Profiles.UpdateProfile(ctx, scope.UserID, req, profileservice.SourceAssistant)
	if err != nil {
		return profileOutput{Error: t.toolError(ctx, "save_profile", err)}
	}
	return profileOutput{Profile: &p}
}

type mealPlanItemInput struct {
	MealType string `json:"meal_type" jsonschema:"breakfast, lunch, dinner or snack"`
	Item     string `json:"item"`
	Calories *int   `json:"calories,omitempty"`
}

type saveMealPlanInput struct {
	TotalCalories *int                `json:"total_calories,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Items         []mealPlanItemInput `json:"items"`
	PlanJSON      string              `json:"plan_json,omitempty" jsonschema:"the plan document returned by meal_planner_core_agent"`
}

type saveMealPlanOutput struct {
	MealPlanID string `json:"meal_plan_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (t *toolset) saveMealPlan(ctx context.Context, scope Scope, in saveMealPlanInput) saveMealPlanOutput {
	req := profiletransport.SaveMealPlanRequest{
		TotalCalories: in.TotalCalories,
		Notes:         in.Notes,
	}
	for _, item := range in.Items {
		req.Items = append(req.Items, profiletransport.MealPlanItem{MealType: item.MealType, Item: item.Item, Calories: item.Calories})
	}
	if plan := strings.TrimSpace(in.PlanJSON); plan != "" {
		req.Plan = json.RawMessage(plan)
	}
	if err := t.deps.Validator.Struct(req); err != nil {
		return saveMealPlanOutput{Error: "validation failed: " + err.Error()}
	}

	saved, err := t.deps.Profiles.SaveMealPlan(ctx, scope.UserID, scope.SessionID, req)
	if err != nil {
		return saveMealPlanOutput{Error: t.toolError(ctx, "save_meal_plan", err)}
	}
	return saveMealPlanOutput{MealPlanID: saved.ID.String()}
}

// =============================================================================
// Memory
// =============================================================================

type loadMemoryInput struct {
	Query string `json:"query" jsonschema:"what to remember, in a few words"`
	Limit int    `json:"limit,omitempty"`
}

type loadMemoryOutput struct {
	Memories string `json:"memories"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`
}

func (t *toolset) loadMemory(ctx context.Context, scope Scope, in loadMemoryInput) loadMemoryOutput {
	hits, err := t.deps.Memory.Recall(ctx, scope.UserID, in.Query, in.Limit)
	if err != nil {
		return loadMemoryOutput{Error: t.toolError(ctx, "load_memory", err)}
	}
	return loadMemoryOutput{Memories: memory.FormatHits(hits), Count: len(hits)}
}

type saveMemoryInput struct {
	Fact string `json:"fact" jsonschema:"one short fact about the user worth remembering"`
}

type saveMemoryOutput struct {
	Saved bool   `json:"saved"`
	Error string `json:"error,omitempty"`
}

func (t *toolset) saveMemory(ctx context.Context, scope Scope, in saveMemoryInput) saveMemoryOutput {
	if _, err := t.deps.Memory.Remember(ctx, scope.UserID, scope.SessionID, in.Fact, memory.KindFact); err != nil {
		return saveMemoryOutput{Error: t.toolError(ctx, "save_memory", err)}
	}
	return saveMemoryOutput{Saved: true}
}

// =============================================================================
// ADK wiring
// =============================================================================

func (t *toolset) storeFinderTool() (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "search_nearby_stores",
		Description: "Finds supermarkets, groceries and other food shops for a query near an optional location.",
	}, func(ctx tool.Context, in storeSearchInput) (storeSearchOutput, error) {
		return t.searchPlaces(withScope(ctx, scopeFrom(ctx)), "search_nearby_stores", service.GroceryProfile, in), nil
	})
}

func (t *toolset) restaurantTool() (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "search_restaurants",
		Description: "Finds real restaurants and cafes for a query near an optional location.",
	}, func(ctx tool.Context, in storeSearchInput) (storeSearchOutput, error) {
		return t.searchPlaces(withScope(ctx, scopeFrom(ctx)), "search_restaurants", service.RestaurantProfile, in), nil
	})
}

// orchestratorTools builds the data tools available to the orchestrator.
func (t *toolset) orchestratorTools() ([]tool.Tool, error) {
	var tools []tool.Tool
	add := func(tl tool.Tool, err error) error {
		if err != nil {
			return err
		}
		tools = append(tools, tl)
		return nil
	}

	if t.deps.Profiles != nil {
		if err := add(functiontool.New(functiontool.Config{
			Name:        "get_profile",
			Description: "Returns the stored profile, preferences and allergies of the current user.",
		}, func(ctx tool.Context, _ getProfileInput) (profileOutput, error) {
			scope := scopeFrom(ctx)
			return t.getProfile(withScope(ctx, scope), scope), nil
		})); err != nil {
			return nil, err
		}
		if err := add(functiontool.New(functiontool.Config{
			Name:        "save_profile",
			Description: "Merges the given fields, preferences and allergies into the current user's profile.",
		}, func(ctx tool.Context, in saveProfileInput) (profileOutput, error) {
			scope := scopeFrom(ctx)
			return t.saveProfile(withScope(ctx, scope), scope, in), nil
		})); err != nil {
			return nil, err
		}
		if err := add(functiontool.New(functiontool.Config{
			Name:        "save_meal_plan",
			Description: "Stores a meal plan that was presented to the user.",
		}, func(ctx tool.Context, in saveMealPlanInput) (saveMealPlanOutput, error) {
			scope := scopeFrom(ctx)
			return t.saveMealPlan(withScope(ctx, scope), scope, in), nil
		})); err != nil {
			return nil, err
		}
	}

	if t.deps.SQL != nil {
		if err := add(functiontool.New(functiontool.Config{
			Name:        "inspect_schema",
			Description: "Lists the tables and columns available to execute_sql.",
		}, func(ctx tool.Context, _ inspectSchemaInput) (inspectSchemaOutput, error) {
			return t.inspectSchema(withScope(ctx, scopeFrom(ctx))), nil
		})); err != nil {
			return nil, err
		}
		if err := add(functiontool.New(functiontool.Config{
			Name:        "execute_sql",
			Description: "Runs one SQL statement with :name placeholders bound from params_json. :user_id and :session_id are always bound to the current user.",
		}, func(ctx tool.Context, in executeSQLInput) (executeSQLOutput, error) {
			scope := scopeFrom(ctx)
			return t.executeSQL(withScope(ctx, scope), scope, in), nil
		})); err != nil {
			return nil, err
		}
	}

	if t.deps.Memory != nil {
		if err := add(functiontool.New(functiontool.Config{
			Name:        "load_memory",
			Description: "Recalls earlier conversations and facts about the current user that relate to the query.",
		}, func(ctx tool.Context, in loadMemoryInput) (loadMemoryOutput, error) {
			scope := scopeFrom(ctx)
			return t.loadMemory(withScope(ctx, scope), scope, in), nil
		})); err != nil {
			return nil, err
		}
		if err := add(functiontool.New(functiontool.Config{
			Name:        "save_memory",
			Description: "Remembers one fact about the current user for later conversations.",
		}, func(ctx tool.Context, in saveMemoryInput) (saveMemoryOutput, error) {
			scope := scopeFrom(ctx)
			return t.saveMemory(withScope(ctx, scope), scope, in), nil
		})); err != nil {
			return nil, err
		}
	}

	return tools, nil
}
