// Package transport holds the profile API request and response shapes.
// The same shapes are used by the assistant profile tools.
package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Allergy is one allergen entry.
type Allergy struct {
	Allergy  string `json:"allergy" validate:"required,max=64"`
	Severity string `json:"severity,omitempty" validate:"omitempty,oneof=unknown mild moderate severe"`
}

// UpdateProfileRequest carries the fields to change. Nil and empty fields keep
// their stored value; preferences and allergies are merged, never removed.
type UpdateProfileRequest struct {
	Age               *int              `json:"age,omitempty" validate:"omitempty,min=1,max=120"`
	Gender            string            `json:"gender,omitempty" validate:"omitempty,max=32"`
	WeightKg          *float64          `json:"weightKg,omitempty" validate:"omitempty,gt=0,lt=500"`
	HeightCm          *float64          `json:"heightCm,omitempty" validate:"omitempty,gt=0,lt=300"`
	DietGoal          string            `json:"dietGoal,omitempty" validate:"omitempty,max=64"`
	DailyCalorieLimit *int              `json:"dailyCalorieLimit,omitempty" validate:"omitempty,min=800,max=10000"`
	ActivityLevel     string            `json:"activityLevel,omitempty" validate:"omitempty,oneof=low moderate high"`
	MealsPerDay       *int              `json:"mealsPerDay,omitempty" validate:"omitempty,min=1,max=8"`
	AvoidRedMeat      *bool             `json:"avoidRedMeat,omitempty"`
	Country           string            `json:"country,omitempty" validate:"omitempty,region"`
	Latitude          *float64          `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude         *float64          `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Preferences       map[string]string `json:"preferences,omitempty" validate:"omitempty,max=50,dive,keys,min=1,max=64,endkeys,max=500"`
	Allergies         []Allergy         `json:"allergies,omitempty" validate:"omitempty,max=50,dive"`
}

// ProfileResponse is the full stored profile.
type ProfileResponse struct {
	UserID            string            `json:"userId"`
	Age               *int              `json:"age,omitempty"`
	Gender            string            `json:"gender,omitempty"`
	WeightKg          *float64          `json:"weightKg,omitempty"`
	HeightCm          *float64          `json:"heightCm,omitempty"`
	DietGoal          string            `json:"dietGoal,omitempty"`
	DailyCalorieLimit *int              `json:"dailyCalorieLimit,omitempty"`
	ActivityLevel     string            `json:"activityLevel,omitempty"`
	MealsPerDay       *int              `json:"mealsPerDay,omitempty"`
	AvoidRedMeat      bool              `json:"avoidRedMeat"`
	Country           string            `json:"country,omitempty"`
	Latitude          *float64          `json:"latitude,omitempty"`
	Longitude         *float64          `json:"longitude,omitempty"`
	Preferences       map[string]string `json:"preferences"`
	Allergies         []Allergy         `json:"allergies"`
	UpdatedAt         *time.Time        `json:"updatedAt,omitempty"`
}

// MealPlanItem is one dish of a saved plan.
type MealPlanItem struct {
	MealType string `json:"mealType" validate:"required,max=32"`
	Item     string `json:"item" validate:"required,max=200"`
	Calories *int   `json:"calories,omitempty" validate:"omitempty,min=0,max=5000"`
}

// SaveMealPlanRequest stores a generated plan.
type SaveMealPlanRequest struct {
	TotalCalories *int            `json:"totalCalories,omitempty" validate:"omitempty,min=0,max=20000"`
	Notes         string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Items         []MealPlanItem  `json:"items" validate:"max=40,dive"`
	Plan          json.RawMessage `json:"plan,omitempty"`
}

// MealPlanResponse is a saved plan.
type MealPlanResponse struct {
	ID            uuid.UUID       `json:"id"`
	SessionID     string          `json:"sessionId,omitempty"`
	PlanDate      string          `json:"planDate"`
	TotalCalories *int            `json:"totalCalories,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Items         []MealPlanItem  `json:"items"`
	Plan          json.RawMessage `json:"plan,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
