package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal_planner_backend/internal/assistant"
	"meal_planner_backend/internal/chat"
	"meal_planner_backend/internal/events"
	apphttp "meal_planner_backend/internal/http"
	"meal_planner_backend/internal/http/router"
	"meal_planner_backend/internal/memory"
	"meal_planner_backend/internal/profile"
	"meal_planner_backend/internal/scheduler"
	"meal_planner_backend/internal/storefinder"
	"meal_planner_backend/migrations"
	"meal_planner_backend/platform/config"
	"meal_planner_backend/platform/db"
	"meal_planner_backend/platform/logger"
	"meal_planner_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.RequireServer(); err != nil {
		panic("invalid config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, log)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	rdb := initRedis(ctx, cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	profileModule := profile.NewModule(pool, eventBus, val, log)
	storeModule := storefinder.NewModule(cfg, rdb, val, log)

	modules := []apphttp.Module{profileModule}
	if cfg.IsMapboxEnabled() {
		modules = append(modules, storeModule)
	} else {
		log.Warn("MAPBOX_ACCESS_TOKEN not configured; store search disabled")
	}

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
		log.Warn("long-term memory disabled", "error", err)
	}

	if memoryManager != nil {
		queue, closeQueue := initMemoryQueue(cfg, log)
		if closeQueue != nil {
			defer closeQueue()
		}
		scheduler.NewMemoryIndexer(queue, memoryManager, log).RegisterHandlers(eventBus)
	}

	if cfg.IsGeminiEnabled() {
		llm, err := assistant.NewGeminiModel(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize gemini model", "error", err)
			panic("failed to initialize gemini model: " + err.Error())
		}

		deps := assistant.Deps{
			Profiles:  profileModule.Service(),
			SQL:       profileModule.Executor(),
			Validator: val,
			Log:       log,
		}
		if cfg.IsMapboxEnabled() {
			deps.Stores = storeModule.Service()
		}
		if memoryManager != nil {
			deps.Memory = memoryManager
		}

		mealAssistant, err := assistant.New(assistant.Config{
			AppName: cfg.GetAssistantAppName(),
			Model:   llm,
		}, deps, eventBus, log)
		if err != nil {
			log.Error("failed to initialize assistant", "error", err)
			panic("failed to initialize assistant: " + err.Error())
		}
		modules = append(modules, chat.NewModule(mealAssistant, val))
		log.Info("assistant initialized", "model", cfg.GetGeminiModel())
	} else {
		log.Warn("GOOGLE_API_KEY not configured; chat disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  db.NewPoolAdapter(pool),
		Modules: modules,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	rdb, err := db.NewRedisClient(ctx, cfg)
	if errors.Is(err, db.ErrRedisNotConfigured) {
		log.Warn("REDIS_URL not configured; store search cache disabled")
		return nil
	}
	if err != nil {
		log.Warn("redis unavailable; store search cache disabled", "error", err)
		return nil
	}
	return rdb
}

// initMemoryQueue returns nil when indexing has to run inline. The worker
// process only sees the same memories when they live in Qdrant.
func initMemoryQueue(cfg *config.Config, log *logger.Logger) (scheduler.Enqueuer, func()) {
	if cfg.GetRedisURL() == "" || !cfg.IsQdrantEnabled() {
		log.Info("memory indexing runs inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize memory queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
