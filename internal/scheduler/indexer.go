package scheduler

import (
	"context"

	"meal_planner_backend/internal/events"
	"meal_planner_backend/internal/memory"
	"meal_planner_backend/platform/logger"
)

// MemoryIndexer turns chat and meal plan events into memory records. With
// an Enqueuer the work goes to the asynq worker, otherwise it runs inline.
type MemoryIndexer struct {
	queue  Enqueuer
	memory MemoryRecorder
	log    *logger.Logger
}

// NewMemoryIndexer creates an indexer. queue may be nil.
func NewMemoryIndexer(queue Enqueuer, mem MemoryRecorder, log *logger.Logger) *MemoryIndexer {
	return &MemoryIndexer{queue: queue, memory: mem, log: log}
}

// RegisterHandlers subscribes the indexer to the events it consumes.
func (i *MemoryIndexer) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ChatTurnCompleted{}.EventName(), i)
	bus.Subscribe(events.MealPlanSaved{}.EventName(), i)
}

// Handle routes events to the appropriate handler method.
func (i *MemoryIndexer) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ChatTurnCompleted:
		return i.onChatTurn(ctx, e)
	case events.MealPlanSaved:
		return i.onMealPlanSaved(ctx, e)
	default:
		return nil
	}
}

func (i *MemoryIndexer) onChatTurn(ctx context.Context, e events.ChatTurnCompleted) error {
	if i.queue != nil {
		return i.queue.EnqueueConversation(ctx, RecordConversationPayload{
			UserID:      e.UserID,
			SessionID:   e.SessionID,
			UserMessage: e.UserMessage,
			Reply:       e.Reply,
		})
	}
	if i.memory == nil {
		return nil
	}
	ctx = logger.ContextWithIdentity(ctx, e.UserID, e.SessionID)
	return i.memory.RecordConversation(ctx, e.UserID, e.SessionID, e.UserMessage, e.Reply)
}

func (i *MemoryIndexer) onMealPlanSaved(ctx context.Context, e events.MealPlanSaved) error {
	if i.queue != nil {
		return i.queue.EnqueueMealPlanMemory(ctx, RememberMealPlanPayload{
			UserID:     e.UserID,
			SessionID:  e.SessionID,
			MealPlanID: e.MealPlanID.String(),
			Title:      e.Title,
		})
	}
	if i.memory == nil || e.Title == "" {
		return nil
	}
	ctx = logger.ContextWithIdentity(ctx, e.UserID, e.SessionID)
	_, err := i.memory.Remember(ctx, e.UserID, e.SessionID, mealPlanFact(e.Title), memory.KindFact)
	return err
}
