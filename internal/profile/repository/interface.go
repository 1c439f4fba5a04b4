package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Profile is the stable part of a user's meal_request.
type Profile struct {
	UserID            string    `db:"user_id"`
	Age               *int      `db:"age"`
	Gender            string    `db:"gender"`
	WeightKg          *float64  `db:"weight_kg"`
	HeightCm          *float64  `db:"height_cm"`
	DietGoal          string    `db:"diet_goal"`
	DailyCalorieLimit *int      `db:"daily_calorie_limit"`
	ActivityLevel     string    `db:"activity_level"`
	MealsPerDay       *int      `db:"meals_per_day"`
	AvoidRedMeat      bool      `db:"avoid_red_meat"`
	Country           string    `db:"country"`
	Latitude          *float64  `db:"latitude"`
	Longitude         *float64  `db:"longitude"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// Preference is a free-form key/value such as likes or cuisine_preferences.
type Preference struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Allergy is one allergen with its severity.
type Allergy struct {
	Allergy  string `db:"allergy"`
	Severity string `db:"severity"`
}

// MealPlanItem is one dish of a saved plan.
type MealPlanItem struct {
	MealType string
	Item     string
	Calories *int
}

// MealPlan is a generated plan stored for later reuse.
type MealPlan struct {
	ID            uuid.UUID
	UserID        string
	SessionID     string
	PlanDate      time.Time
	TotalCalories *int
	Notes         string
	Plan          json.RawMessage
	Items         []MealPlanItem
	CreatedAt     time.Time
}

// Repository persists profiles, preferences, allergies and meal plans.
// Every method is scoped by user id.
type Repository interface {
	GetProfile(ctx context.Context, userID string) (Profile, error)
	UpsertProfile(ctx context.Context, profile Profile) (Profile, error)
	ListPreferences(ctx context.Context, userID string) ([]Preference, error)
	SetPreference(ctx context.Context, userID, key, value string) error
	ListAllergies(ctx context.Context, userID string) ([]Allergy, error)
	AddAllergy(ctx context.Context, userID, allergy, severity string) error
	SaveMealPlan(ctx context.Context, plan MealPlan) (MealPlan, error)
	LatestMealPlan(ctx context.Context, userID string) (MealPlan, error)
}
