package assistant

import (
	"context"
	"sync"

	"meal_planner_backend/internal/events"
	"meal_planner_backend/internal/memory"
	"meal_planner_backend/internal/profile/sqltool"
	profiletransport "meal_planner_backend/internal/profile/transport"
	"meal_planner_backend/internal/storefinder/service"
	storetransport "meal_planner_backend/internal/storefinder/transport"

	"github.com/google/uuid"
)

type fakeStores struct {
	last service.Query
	err  error
}

func (f *fakeStores) Search(ctx context.Context, q service.Query) (storetransport.SearchResponse, error) {
	f.last = q
	if f.err != nil {
		return storetransport.SearchResponse{}, f.err
	}
	return storetransport.SearchResponse{
		Query:  q.Text,
		Region: "KW",
		Stores: []storetransport.Store{{Name: "Sultan Center", Country: "KW"}},
	}, nil
}

type fakeProfiles struct {
	lastUser    string
	lastSession string
	lastUpdate  profiletransport.UpdateProfileRequest
	lastSource  string
	lastPlan    profiletransport.SaveMealPlanRequest
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID string) (profiletransport.ProfileResponse, error) {
	f.lastUser = userID
	return profiletransport.ProfileResponse{UserID: userID, Preferences: map[string]string{}}, nil
}

func (f *fakeProfiles) UpdateProfile(ctx context.Context, userID string, req profiletransport.UpdateProfileRequest, source string) (profiletransport.ProfileResponse, error) {
	f.lastUser, f.lastUpdate, f.lastSource = userID, req, source
	return profiletransport.ProfileResponse{UserID: userID, Age: req.Age}, nil
}

func (f *fakeProfiles) SaveMealPlan(ctx context.Context, userID, sessionID string, req profiletransport.SaveMealPlanRequest) (profiletransport.MealPlanResponse, error) {
	f.lastUser, f.lastSession, f.lastPlan = userID, sessionID, req
	return profiletransport.MealPlanResponse{ID: uuid.New()}, nil
}

type fakeSQL struct {
	lastScope  sqltool.Scope
	lastSQL    string
	lastParams string
	err        error
}

func (f *fakeSQL) InspectSchema(ctx context.Context) ([]sqltool.Table, error) {
	return []sqltool.Table{{Name: "user_profiles"}}, nil
}

func (f *fakeSQL) Execute(ctx context.Context, scope sqltool.Scope, sql, paramsJSON string, expectResult bool) (sqltool.Result, error) {
	f.lastScope, f.lastSQL, f.lastParams = scope, sql, paramsJSON
	if f.err != nil {
		return sqltool.Result{}, f.err
	}
	return sqltool.Result{Rows: []map[string]any{{"age": 30}}, RowCount: 1}, nil
}

type fakeMemory struct {
	mu       sync.Mutex
	saved    []memory.Record
	recalled string
}

func (f *fakeMemory) Remember(ctx context.Context, userID, sessionID, text, kind string) (memory.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := memory.Record{ID: uuid.NewString(), UserID: userID, SessionID: sessionID, Text: text, Kind: kind}
	f.saved = append(f.saved, rec)
	return rec, nil
}

func (f *fakeMemory) Recall(ctx context.Context, userID, query string, limit int) ([]memory.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recalled = userID
	return []memory.Hit{{Record: memory.Record{Text: "likes cardamom tea"}, Score: 0.9}}, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}
