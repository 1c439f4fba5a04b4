package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"meal_planner_backend/internal/assistant"
	"meal_planner_backend/internal/events"
	"meal_planner_backend/internal/memory"
	"meal_planner_backend/internal/profile"
	"meal_planner_backend/internal/scheduler"
	"meal_planner_backend/internal/storefinder"
	"meal_planner_backend/migrations"
	"meal_planner_backend/platform/config"
	"meal_planner_backend/platform/db"
	"meal_planner_backend/platform/logger"
	"meal_planner_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if !cfg.IsGeminiEnabled() {
		fmt.Fprintln(os.Stderr, "GOOGLE_API_KEY is required")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	deps := assistant.Deps{Validator: val, Log: log}

	if cfg.GetDatabaseURL() != "" {
		if err := db.RunMigrations(ctx, cfg, migrations.FS, log); err != nil {
			panic("failed to run database migrations: " + err.Error())
		}
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()

		profileModule := profile.NewModule(pool, eventBus, val, log)
		deps.Profiles = profileModule.Service()
		deps.SQL = profileModule.Executor()
	} else {
		log.Warn("DATABASE_URL not configured; profile tools disabled")
	}

	if cfg.IsMapboxEnabled() {
		deps.Stores = storefinder.NewModule(cfg, nil, val, log).Service()
	}

	gemini, err := assistant.NewGenAIClient(ctx, cfg)
	if err != nil {
		panic("failed to initialize genai client: " + err.Error())
	}
	if memoryManager, err := memory.NewManagerFromConfig(cfg, gemini, log); err == nil {
		deps.Memory = memoryManager
		scheduler.NewMemoryIndexer(nil, memoryManager, log).RegisterHandlers(eventBus)
	} else {
		log.Warn("long-term memory disabled", "error", err)
	}

	llm, err := assistant.NewGeminiModel(ctx, cfg)
	if err != nil {
		panic("failed to initialize gemini model: " + err.Error())
	}
	mealAssistant, err := assistant.New(assistant.Config{
		AppName: cfg.GetAssistantAppName(),
		Model:   llm,
	}, deps, eventBus, log)
	if err != nil {
		panic("failed to initialize assistant: " + err.Error())
	}

	scope := assistant.Scope{UserID: cfg.GetAssistantUserID(), SessionID: cfg.GetAssistantSessionID()}
	fmt.Printf("Meal planner chat as %q. Blank line to quit.\n", scope.UserID)
	runChat(ctx, os.Stdin, os.Stdout, mealAssistant, scope)
}

type chatter interface {
	Chat(ctx context.Context, scope assistant.Scope, message string) (assistant.Reply, error)
}

// runChat keeps the session returned by the first reply for later turns.
func runChat(ctx context.Context, in io.Reader, out io.Writer, chat chatter, scope assistant.Scope) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			return
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" || ctx.Err() != nil {
			return
		}

		reply, err := chat.Chat(ctx, scope, message)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		scope.SessionID = reply.SessionID
		fmt.Fprintf(out, "assistant> %s\n", reply.Text)
	}
}
