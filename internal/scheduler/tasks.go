package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskRecordConversation = "memory.record_conversation"

const TaskRememberMealPlan = "memory.remember_meal_plan"

type RecordConversationPayload struct {
	UserID      string `json:"userId"`
	SessionID   string `json:"sessionId"`
	UserMessage string `json:"userMessage"`
	Reply       string `json:"reply"`
}

type RememberMealPlanPayload struct {
	UserID     string `json:"userId"`
	SessionID  string `json:"sessionId"`
	MealPlanID string `json:"mealPlanId"`
	Title      string `json:"title"`
}

func NewRecordConversationTask(payload RecordConversationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecordConversation, data), nil
}

func ParseRecordConversationPayload(task *asynq.Task) (RecordConversationPayload, error) {
	var payload RecordConversationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RecordConversationPayload{}, err
	}
	return payload, nil
}

func NewRememberMealPlanTask(payload RememberMealPlanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRememberMealPlan, data), nil
}

func ParseRememberMealPlanPayload(task *asynq.Task) (RememberMealPlanPayload, error) {
	var payload RememberMealPlanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RememberMealPlanPayload{}, err
	}
	return payload, nil
}
