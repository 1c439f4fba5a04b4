// Package repository stores user profiles and meal plans in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"

	"meal_planner_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	profileNotFoundMessage  = "profile not found"
	mealPlanNotFoundMessage = "meal plan not found"

	profileColumns = `user_id, age, gender, weight_kg, height_cm, diet_goal, daily_calorie_limit,
		activity_level, meals_per_day, avoid_red_meat, country, latitude, longitude, updated_at`
)

// Repo implements Repository on a pgx pool.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new profile repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// GetProfile loads a profile.
func (r *Repo) GetProfile(ctx context.Context, userID string) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	profile, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[Profile])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, apperr.NotFound(profileNotFoundMessage)
		}
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// UpsertProfile inserts or fully replaces a profile row.
func (r *Repo) UpsertProfile(ctx context.Context, p Profile) (Profile, error) {
	query := `
		INSERT INTO user_profiles (user_id, age, gender, weight_kg, height_cm, diet_goal,
			daily_calorie_limit, activity_level, meals_per_day, avoid_red_meat, country, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			diet_goal = EXCLUDED.diet_goal,
			daily_calorie_limit = EXCLUDED.daily_calorie_limit,
			activity_level = EXCLUDED.activity_level,
			meals_per_day = EXCLUDED.meals_per_day,
			avoid_red_meat = EXCLUDED.avoid_red_meat,
			country = EXCLUDED.country,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			updated_at = now()
		RETURNING ` + profileColumns

	rows, err := r.pool.Query(ctx, query,
		p.UserID, p.Age, p.Gender, p.WeightKg, p.HeightCm, p.DietGoal,
		p.DailyCalorieLimit, p.ActivityLevel, p.MealsPerDay, p.AvoidRedMeat, p.Country, p.Latitude, p.Longitude,
	)
	if err != nil {
		return Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	saved, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[Profile])
	if err != nil {
		return Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return saved, nil
}

// ListPreferences returns a user's preferences ordered by key.
func (r *Repo) ListPreferences(ctx context.Context, userID string) ([]Preference, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT key, value, updated_at FROM user_preferences WHERE user_id = $1 ORDER BY key`, userID)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	prefs, err := pgx.CollectRows(rows, pgx.RowToStructByName[Preference])
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return prefs, nil
}

// SetPreference writes one preference, creating an empty profile if needed.
func (r *Repo) SetPreference(ctx context.Context, userID, key, value string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := ensureProfile(ctx, tx, userID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO user_preferences (user_id, key, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			userID, key, value)
		if err != nil {
			return fmt.Errorf("set preference: %w", err)
		}
		return nil
	})
}

// ListAllergies returns a user's allergies ordered by name.
func (r *Repo) ListAllergies(ctx context.Context, userID string) ([]Allergy, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT allergy, severity FROM user_allergies WHERE user_id = $1 ORDER BY allergy`, userID)
	if err != nil {
		return nil, fmt.Errorf("list allergies: %w", err)
	}
	allergies, err := pgx.CollectRows(rows, pgx.RowToStructByName[Allergy])
	if err != nil {
		return nil, fmt.Errorf("list allergies: %w", err)
	}
	return allergies, nil
}

// AddAllergy records an allergy, updating the severity if it already exists.
func (r *Repo) AddAllergy(ctx context.Context, userID, allergy, severity string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := ensureProfile(ctx, tx, userID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO user_allergies (user_id, allergy, severity)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, allergy) DO UPDATE SET severity = EXCLUDED.severity, updated_at = now()`,
			userID, allergy, severity)
		if err != nil {
			return fmt.Errorf("add allergy: %w", err)
		}
		return nil
	})
}

// SaveMealPlan stores a plan and its items in one transaction.
func (r *Repo) SaveMealPlan(ctx context.Context, plan MealPlan) (MealPlan, error) {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if len(plan.Plan) == 0 {
		plan.Plan = []byte("{}")
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO meal_plans (id, user_id, session_id, total_calories, notes, plan_json)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING plan_date, created_at`,
			plan.ID, plan.UserID, plan.SessionID, plan.TotalCalories, plan.Notes, plan.Plan,
		).Scan(&plan.PlanDate, &plan.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert meal plan: %w", err)
		}

		batch := &pgx.Batch{}
		for i, item := range plan.Items {
			batch.Queue(`
				INSERT INTO meal_plan_items (plan_id, position, meal_type, item, calories)
				VALUES ($1, $2, $3, $4, $5)`,
				plan.ID, i, item.MealType, item.Item, item.Calories)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert meal plan items: %w", err)
		}
		return nil
	})
	if err != nil {
		return MealPlan{}, err
	}
	return plan, nil
}

// LatestMealPlan returns the most recent plan with its items.
func (r *Repo) LatestMealPlan(ctx context.Context, userID string) (MealPlan, error) {
	var plan MealPlan
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, session_id, plan_date, total_calories, notes, plan_json, created_at
		FROM meal_plans
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, userID,
	).Scan(&plan.ID, &plan.UserID, &plan.SessionID, &plan.PlanDate, &plan.TotalCalories, &plan.Notes, &plan.Plan, &plan.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MealPlan{}, apperr.NotFound(mealPlanNotFoundMessage)
		}
		return MealPlan{}, fmt.Errorf("latest meal plan: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT meal_type, item, calories FROM meal_plan_items
		WHERE plan_id = $1 ORDER BY position`, plan.ID)
	if err != nil {
		return MealPlan{}, fmt.Errorf("list meal plan items: %w", err)
	}
	plan.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (MealPlanItem, error) {
		var item MealPlanItem
		err := row.Scan(&item.MealType, &item.Item, &item.Calories)
		return item, err
	})
	if err != nil {
		return MealPlan{}, fmt.Errorf("list meal plan items: %w", err)
	}
	return plan, nil
}

func ensureProfile(ctx context.Context, tx pgx.Tx, userID string) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO user_profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	return nil
}
