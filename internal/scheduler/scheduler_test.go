package scheduler

import (
	"context"
	"errors"
	"testing"

	"meal_planner_backend/internal/events"
	"meal_planner_backend/internal/memory"
	"meal_planner_backend/platform/apperr"
	"meal_planner_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type schedulerCfg struct {
	url   string
	queue string
}

func (c schedulerCfg) GetRedisURL() string       { return c.url }
func (c schedulerCfg) GetRedisTLSInsecure() bool { return false }
func (c schedulerCfg) GetAsynqQueueName() string { return c.queue }
func (c schedulerCfg) GetAsynqConcurrency() int  { return 2 }

type fakeRecorder struct {
	conversations []RecordConversationPayload
	facts         []string
	err           error
}

func (f *fakeRecorder) RecordConversation(ctx context.Context, userID, sessionID, userMessage, reply string) error {
	f.conversations = append(f.conversations, RecordConversationPayload{UserID: userID, SessionID: sessionID, UserMessage: userMessage, Reply: reply})
	return f.err
}

func (f *fakeRecorder) Remember(ctx context.Context, userID, sessionID, text, kind string) (memory.Record, error) {
	f.facts = append(f.facts, text)
	return memory.Record{UserID: userID, Text: text, Kind: kind}, f.err
}

type fakeEnqueuer struct {
	conversations []RecordConversationPayload
	plans         []RememberMealPlanPayload
}

func (f *fakeEnqueuer) EnqueueConversation(ctx context.Context, p RecordConversationPayload) error {
	f.conversations = append(f.conversations, p)
	return nil
}

func (f *fakeEnqueuer) EnqueueMealPlanMemory(ctx context.Context, p RememberMealPlanPayload) error {
	f.plans = append(f.plans, p)
	return nil
}

func TestClientEnqueuesOnConfiguredQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(schedulerCfg{url: "redis://" + mr.Addr(), queue: "memory"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	err = client.EnqueueConversation(context.Background(), RecordConversationPayload{UserID: "u1", UserMessage: "plan dinner"})
	if err != nil {
		t.Fatalf("EnqueueConversation: %v", err)
	}

	pending, err := mr.List("asynq:{memory}:pending")
	if err != nil {
		t.Fatalf("pending list: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(pending))
	}
}

func TestNewClientRequiresRedis(t *testing.T) {
	if _, err := NewClient(schedulerCfg{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestHandleRecordConversation(t *testing.T) {
	rec := &fakeRecorder{}
	w := &Worker{memory: rec, log: logger.Discard()}
	task, err := NewRecordConversationTask(RecordConversationPayload{UserID: "u1", SessionID: "s1", UserMessage: "hi", Reply: "hello"})
	if err != nil {
		t.Fatal(err)
	}

	if err := w.handleRecordConversation(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.conversations) != 1 || rec.conversations[0].SessionID != "s1" {
		t.Fatalf("unexpected conversations: %+v", rec.conversations)
	}
}

func TestHandleRecordConversationSkipsRetryOnBadPayload(t *testing.T) {
	w := &Worker{memory: &fakeRecorder{}, log: logger.Discard()}

	err := w.handleRecordConversation(context.Background(), asynq.NewTask(TaskRecordConversation, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}

	task, _ := NewRecordConversationTask(RecordConversationPayload{UserMessage: "no user"})
	if err := w.handleRecordConversation(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for missing user, got %v", err)
	}
}

func TestHandleRecordConversationRetriesUpstreamErrors(t *testing.T) {
	w := &Worker{memory: &fakeRecorder{err: apperr.Upstream("embedding failed", errors.New("timeout"))}, log: logger.Discard()}
	task, _ := NewRecordConversationTask(RecordConversationPayload{UserID: "u1", UserMessage: "plan dinner for two people"})

	err := w.handleRecordConversation(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestHandleRememberMealPlan(t *testing.T) {
	rec := &fakeRecorder{}
	w := &Worker{memory: rec, log: logger.Discard()}
	task, _ := NewRememberMealPlanTask(RememberMealPlanPayload{UserID: "u1", Title: "Oats, Salad"})

	if err := w.handleRememberMealPlan(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.facts) != 1 || rec.facts[0] != "Saved a meal plan with: Oats, Salad" {
		t.Fatalf("unexpected facts: %v", rec.facts)
	}
}

func TestIndexerEnqueuesWhenQueueConfigured(t *testing.T) {
	q := &fakeEnqueuer{}
	rec := &fakeRecorder{}
	idx := NewMemoryIndexer(q, rec, logger.Discard())
	planID := uuid.New()

	_ = idx.Handle(context.Background(), events.ChatTurnCompleted{UserID: "u1", SessionID: "s1", UserMessage: "m", Reply: "r"})
	_ = idx.Handle(context.Background(), events.MealPlanSaved{UserID: "u1", MealPlanID: planID, Title: "Oats"})

	if len(q.conversations) != 1 || len(q.plans) != 1 {
		t.Fatalf("expected both events enqueued, got %d/%d", len(q.conversations), len(q.plans))
	}
	if q.plans[0].MealPlanID != planID.String() {
		t.Fatalf("unexpected meal plan id %q", q.plans[0].MealPlanID)
	}
	if len(rec.conversations) != 0 {
		t.Fatal("recorder must not be called when a queue is configured")
	}
}

func TestIndexerRecordsInlineWithoutQueue(t *testing.T) {
	rec := &fakeRecorder{}
	idx := NewMemoryIndexer(nil, rec, logger.Discard())
	bus := events.NewInMemoryBus(logger.Discard())
	idx.RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), events.ChatTurnCompleted{UserID: "u1", UserMessage: "m", Reply: "r"}); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if len(rec.conversations) != 1 {
		t.Fatalf("expected inline recording, got %d", len(rec.conversations))
	}
}
