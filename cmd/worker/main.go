package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"meal_planner_backend/internal/assistant"
	"meal_planner_backend/internal/memory"
	"meal_planner_backend/internal/scheduler"
	"meal_planner_backend/platform/config"
	"meal_planner_backend/platform/logger"

	"google.golang.org/genai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting memory worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	if cfg.GetRedisURL() == "" {
		panic("REDIS_URL is required for the worker")
	}
	if !cfg.IsQdrantEnabled() {
		log.Warn("QDRANT_URL not configured; memories recorded by this worker stay in process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var gemini *genai.Client
	if cfg.IsGeminiEnabled() {
		gemini, err = assistant.NewGenAIClient(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize genai client", "error", err)
			panic("failed to initialize genai client: " + err.Error())
		}
	}

	memoryManager, err := memory.NewManagerFromConfig(cfg, gemini, log)
	if err != nil {
		log.Error("failed to initialize memory", "error", err)
		panic("failed to initialize memory: " + err.Error())
	}

	worker, err := scheduler.NewWorker(cfg, memoryManager, log)
	if err != nil {
		log.Error("failed to initialize memory worker", "error", err)
		panic("failed to initialize memory worker: " + err.Error())
	}

	worker.Run(ctx)
}
