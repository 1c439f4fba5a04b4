// Package events declares the meal planner's domain events on top of the
// platform bus.
package events

import (
	"meal_planner_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Assistant Domain Events
// =============================================================================

// ChatTurnCompleted is published after the assistant answered a user message.
type ChatTurnCompleted struct {
	BaseEvent
	UserID      string `json:"userId"`
	SessionID   string `json:"sessionId"`
	UserMessage string `json:"userMessage"`
	Reply       string `json:"reply"`
}

func (e ChatTurnCompleted) EventName() string { return "assistant.chat.turn_completed" }

// =============================================================================
// Profile Domain Events
// =============================================================================

// ProfileUpdated is published when a user's profile row changes.
type ProfileUpdated struct {
	BaseEvent
	UserID string `json:"userId"`
	Source string `json:"source"`
}

func (e ProfileUpdated) EventName() string { return "profile.updated" }

// MealPlanSaved is published when a generated meal plan is persisted.
type MealPlanSaved struct {
	BaseEvent
	UserID     string    `json:"userId"`
	SessionID  string    `json:"sessionId"`
	MealPlanID uuid.UUID `json:"mealPlanId"`
	Title      string    `json:"title"`
}

func (e MealPlanSaved) EventName() string { return "profile.meal_plan.saved" }
