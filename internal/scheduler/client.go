package scheduler

import (
	"context"
	"time"

	"meal_planner_backend/platform/config"
	"meal_planner_backend/platform/db"

	"github.com/hibiken/asynq"
)

const (
	taskMaxRetry = 3
	taskTimeout  = 30 * time.Second
)

type Client struct {
	client *asynq.Client
	queue  string
}

// Enqueuer schedules memory indexing work.
type Enqueuer interface {
	EnqueueConversation(ctx context.Context, payload RecordConversationPayload) error
	EnqueueMealPlanMemory(ctx context.Context, payload RememberMealPlanPayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueConversation(ctx context.Context, payload RecordConversationPayload) error {
	task, err := NewRecordConversationTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) EnqueueMealPlanMemory(ctx context.Context, payload RememberMealPlanPayload) error {
	task, err := NewRememberMealPlanTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.client == nil {
		return nil
	}
	_, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(taskMaxRetry),
		asynq.Timeout(taskTimeout),
	)
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	if q := cfg.GetAsynqQueueName(); q != "" {
		return q
	}
	return "default"
}

func redisClientOpt(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	opt, err := db.RedisOptions(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
