// Package service implements profile reads and merges for the API and the assistant.
package service

import (
	"context"
	"encoding/json"
	"strings"

	"meal_planner_backend/internal/events"
	"meal_planner_backend/internal/profile/repository"
	"meal_planner_backend/internal/profile/transport"
	"meal_planner_backend/platform/apperr"
	"meal_planner_backend/platform/logger"
	"meal_planner_backend/platform/sanitize"
)

// Source values for ProfileUpdated.
const (
	SourceAPI       = "api"
	SourceAssistant = "assistant"
)

// Service handles profile business logic.
type Service struct {
	repo     repository.Repository
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new profile service.
func New(repo repository.Repository, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, log: log}
}

// GetProfile returns the profile with preferences and allergies.
// A user without a stored profile gets an empty profile, not an error.
func (s *Service) GetProfile(ctx context.Context, userID string) (transport.ProfileResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return transport.ProfileResponse{}, apperr.Unauthorized("user id is required")
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return transport.ProfileResponse{}, err
	}
	if apperr.Is(err, apperr.KindNotFound) {
		profile = repository.Profile{UserID: userID}
	}

	prefs, err := s.repo.ListPreferences(ctx, userID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	allergies, err := s.repo.ListAllergies(ctx, userID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	return toResponse(profile, prefs, allergies), nil
}

// UpdateProfile merges req into the stored profile and returns the result.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req transport.UpdateProfileRequest, source string) (transport.ProfileResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return transport.ProfileResponse{}, apperr.Unauthorized("user id is required")
	}

	current, err := s.repo.GetProfile(ctx, userID)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return transport.ProfileResponse{}, err
	}
	if apperr.Is(err, apperr.KindNotFound) {
		current = repository.Profile{UserID: userID}
	}

	if _, err := s.repo.UpsertProfile(ctx, mergeProfile(current, req)); err != nil {
		s.log.WithContext(ctx).DatabaseError("upsert profile", err)
		return transport.ProfileResponse{}, err
	}

	for key, value := range req.Preferences {
		key = strings.ToLower(sanitize.Text(key))
		if key == "" {
			continue
		}
		if err := s.repo.SetPreference(ctx, userID, key, sanitize.Text(value)); err != nil {
			return transport.ProfileResponse{}, err
		}
	}

	for _, allergy := range req.Allergies {
		name := strings.ToLower(sanitize.Text(allergy.Allergy))
		if name == "" {
			continue
		}
		severity := allergy.Severity
		if severity == "" {
			severity = "unknown"
		}
		if err := s.repo.AddAllergy(ctx, userID, name, severity); err != nil {
			return transport.ProfileResponse{}, err
		}
	}

	s.eventBus.Publish(ctx, events.ProfileUpdated{
		BaseEvent: events.NewBaseEvent(),
		UserID:    userID,
		Source:    source,
	})

	return s.GetProfile(ctx, userID)
}

// SaveMealPlan stores a generated plan for the user and session.
func (s *Service) SaveMealPlan(ctx context.Context, userID, sessionID string, req transport.SaveMealPlanRequest) (transport.MealPlanResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return transport.MealPlanResponse{}, apperr.Unauthorized("user id is required")
	}
	if len(req.Items) == 0 && len(req.Plan) == 0 {
		return transport.MealPlanResponse{}, apperr.Validation("meal plan needs items or a plan document")
	}
	if len(req.Plan) > 0 && !json.Valid(req.Plan) {
		return transport.MealPlanResponse{}, apperr.Validation("plan must be valid JSON")
	}

	plan := repository.MealPlan{
		UserID:        userID,
		SessionID:     sessionID,
		TotalCalories: req.TotalCalories,
		Notes:         sanitize.Text(req.Notes),
		Plan:          req.Plan,
	}
	for _, item := range req.Items {
		plan.Items = append(plan.Items, repository.MealPlanItem{
			MealType: strings.ToLower(sanitize.Text(item.MealType)),
			Item:     sanitize.Text(item.Item),
			Calories: item.Calories,
		})
	}

	saved, err := s.repo.SaveMealPlan(ctx, plan)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("save meal plan", err)
		return transport.MealPlanResponse{}, err
	}

	s.eventBus.Publish(ctx, events.MealPlanSaved{
		BaseEvent:  events.NewBaseEvent(),
		UserID:     userID,
		SessionID:  sessionID,
		MealPlanID: saved.ID,
		Title:      planTitle(saved),
	})

	return toMealPlanResponse(saved), nil
}

// LatestMealPlan returns the user's newest plan.
func (s *Service) LatestMealPlan(ctx context.Context, userID string) (transport.MealPlanResponse, error) {
	plan, err := s.repo.LatestMealPlan(ctx, userID)
	if err != nil {
		return transport.MealPlanResponse{}, err
	}
	return toMealPlanResponse(plan), nil
}

func mergeProfile(p repository.Profile, req transport.UpdateProfileRequest) repository.Profile {
	if req.Age != nil {
		p.Age = req.Age
	}
	if v := sanitize.Text(req.Gender); v != "" {
		p.Gender = strings.ToLower(v)
	}
	if req.WeightKg != nil {
		p.WeightKg = req.WeightKg
	}
	if req.HeightCm != nil {
		p.HeightCm = req.HeightCm
	}
	if v := sanitize.Text(req.DietGoal); v != "" {
		p.DietGoal = strings.ToLower(v)
	}
	if req.DailyCalorieLimit != nil {
		p.DailyCalorieLimit = req.DailyCalorieLimit
	}
	if req.ActivityLevel != "" {
		p.ActivityLevel = req.ActivityLevel
	}
	if req.MealsPerDay != nil {
		p.MealsPerDay = req.MealsPerDay
	}
	if req.AvoidRedMeat != nil {
		p.AvoidRedMeat = *req.AvoidRedMeat
	}
	if req.Country != "" {
		p.Country = strings.ToUpper(req.Country)
	}
	if req.Latitude != nil && req.Longitude != nil {
		p.Latitude = req.Latitude
		p.Longitude = req.Longitude
	}
	return p
}

func toResponse(p repository.Profile, prefs []repository.Preference, allergies []repository.Allergy) transport.ProfileResponse {
	resp := transport.ProfileResponse{
		UserID:            p.UserID,
		Age:               p.Age,
		Gender:            p.Gender,
		WeightKg:          p.WeightKg,
		HeightCm:          p.HeightCm,
		DietGoal:          p.DietGoal,
		DailyCalorieLimit: p.DailyCalorieLimit,
		ActivityLevel:     p.ActivityLevel,
		MealsPerDay:       p.MealsPerDay,
		AvoidRedMeat:      p.AvoidRedMeat,
		Country:           p.Country,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		Preferences:       make(map[string]string, len(prefs)),
		Allergies:         make([]transport.Allergy, 0, len(allergies)),
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt
		resp.UpdatedAt = &updated
	}
	for _, pref := range prefs {
		resp.Preferences[pref.Key] = pref.Value
	}
	for _, a := range allergies {
		resp.Allergies = append(resp.Allergies, transport.Allergy{Allergy: a.Allergy, Severity: a.Severity})
	}
	return resp
}

func toMealPlanResponse(plan repository.MealPlan) transport.MealPlanResponse {
	resp := transport.MealPlanResponse{
		ID:            plan.ID,
		SessionID:     plan.SessionID,
		PlanDate:      plan.PlanDate.Format("2006-01-02"),
		TotalCalories: plan.TotalCalories,
		Notes:         plan.Notes,
		Items:         make([]transport.MealPlanItem, 0, len(plan.Items)),
		Plan:          plan.Plan,
		CreatedAt:     plan.CreatedAt,
	}
	for _, item := range plan.Items {
		resp.Items = append(resp.Items, transport.MealPlanItem{MealType: item.MealType, Item: item.Item, Calories: item.Calories})
	}
	return resp
}

func planTitle(plan repository.MealPlan) string {
	if len(plan.Items) == 0 {
		return "meal plan " + plan.PlanDate.Format("2006-01-02")
	}
	names := make([]string, 0, 3)
	for i, item := range plan.Items {
		if i == 3 {
			break
		}
		names = append(names, item.Item)
	}
	return strings.Join(names, ", ")
}
