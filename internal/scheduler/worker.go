package scheduler

import (
	"context"
	"fmt"
	"strings"

	"meal_planner_backend/internal/memory"
	"meal_planner_backend/platform/apperr"
	"meal_planner_backend/platform/config"
	"meal_planner_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// MemoryRecorder is the part of memory.Manager the worker needs.
type MemoryRecorder interface {
	RecordConversation(ctx context.Context, userID, sessionID, userMessage, reply string) error
	Remember(ctx context.Context, userID, sessionID, text, kind string) (memory.Record, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	memory MemoryRecorder
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, mem MemoryRecorder, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		memory: mem,
		log:    log,
	}
	w.mux.HandleFunc(TaskRecordConversation, w.handleRecordConversation)
	w.mux.HandleFunc(TaskRememberMealPlan, w.handleRememberMealPlan)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("memory worker stopped", "error", err)
	}
}

func (w *Worker) handleRecordConversation(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRecordConversationPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.UserID == "" {
		return fmt.Errorf("%w: missing user id", asynq.SkipRetry)
	}

	ctx = logger.ContextWithIdentity(ctx, payload.UserID, payload.SessionID)
	return skipPermanent(w.memory.RecordConversation(ctx, payload.UserID, payload.SessionID, payload.UserMessage, payload.Reply))
}

func (w *Worker) handleRememberMealPlan(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRememberMealPlanPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.UserID == "" || strings.TrimSpace(payload.Title) == "" {
		return nil
	}

	ctx = logger.ContextWithIdentity(ctx, payload.UserID, payload.SessionID)
	_, err = w.memory.Remember(ctx, payload.UserID, payload.SessionID, mealPlanFact(payload.Title), memory.KindFact)
	return skipPermanent(err)
}

func mealPlanFact(title string) string {
	return "Saved a meal plan with: " + strings.TrimSpace(title)
}

// skipPermanent stops asynq from retrying errors that cannot succeed later.
func skipPermanent(err error) error {
	if err == nil {
		return nil
	}
	switch apperr.GetKind(err) {
	case apperr.KindValidation, apperr.KindUnauthorized, apperr.KindBadRequest:
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return err
}
