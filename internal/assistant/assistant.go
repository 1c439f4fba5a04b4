// Package assistant runs the meal planning orchestrator agent and its
// specialist sub-agents on the Agent Development Kit.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"meal_planner_backend/internal/events"
	"meal_planner_backend/platform/apperr"
	"meal_planner_backend/platform/logger"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// MaxMessageRunes bounds a single user message.
const MaxMessageRunes = 4000

// Config configures the assistant runtime.
type Config struct {
	AppName string
	Model   model.LLM
}

// Reply is the assistant's answer to one message.
type Reply struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"reply"`
}

// Assistant answers chat messages through the orchestrator agent.
type Assistant struct {
	runner   *runner.Runner
	sessions session.Service
	appName  string
	eventBus events.Bus
	log      *logger.Logger
}

// New builds the agent tree and its runner.
func New(cfg Config, deps Deps, eventBus events.Bus, log *logger.Logger) (*Assistant, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("assistant model is required")
	}
	if cfg.AppName == "" {
		cfg.AppName = "meal_planner"
	}
	if deps.Log == nil {
		deps.Log = log
	}

	root, err := buildOrchestrator(cfg.Model, &toolset{deps: deps})
	if err != nil {
		return nil, err
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        cfg.AppName,
		Agent:          root,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ADK runner: %w", err)
	}

	return &Assistant{
		runner:   r,
		sessions: sessions,
		appName:  cfg.AppName,
		eventBus: eventBus,
		log:      log,
	}, nil
}

// Chat sends message to the orchestrator in the scope's session and returns
// the cleaned reply. An empty SessionID starts a new session.
func (a *Assistant) Chat(ctx context.Context, scope Scope, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if strings.TrimSpace(scope.UserID) == "" {
		return Reply{}, apperr.Unauthorized("user id is required")
	}
	if message == "" {
		return Reply{}, apperr.Validation("message is empty")
	}
	if utf8.RuneCountInString(message) > MaxMessageRunes {
		return Reply{}, apperr.Validation(fmt.Sprintf("message is longer than %d characters", MaxMessageRunes))
	}
	if scope.SessionID == "" {
		scope.SessionID = uuid.NewString()
	}
	ctx = withScope(ctx, scope)
	log := a.log.WithContext(ctx)

	if err := a.ensureSession(ctx, scope); err != nil {
		log.Error("failed to prepare assistant session", "error", err)
		return Reply{}, apperr.Internal("failed to prepare session")
	}

	raw, err := a.run(ctx, scope, message)
	if err != nil {
		log.UpstreamError("gemini", "run", err)
		return Reply{}, apperr.Upstream("assistant is unavailable", err)
	}

	text := SanitizeReply(raw)
	if text == "" {
		log.Warn("assistant produced no presentable reply", "raw_length", len(raw))
		text = FallbackReply
	}

	a.eventBus.Publish(ctx, events.ChatTurnCompleted{
		BaseEvent:   events.NewBaseEvent(),
		UserID:      scope.UserID,
		SessionID:   scope.SessionID,
		UserMessage: message,
		Reply:       text,
	})

	return Reply{SessionID: scope.SessionID, Text: text}, nil
}

func (a *Assistant) ensureSession(ctx context.Context, scope Scope) error {
	get := &session.GetRequest{AppName: a.appName, UserID: scope.UserID, SessionID: scope.SessionID}
	if _, err := a.sessions.Get(ctx, get); err == nil {
		return nil
	}

	_, err := a.sessions.Create(ctx, &session.CreateRequest{
		AppName:   a.appName,
		UserID:    scope.UserID,
		SessionID: scope.SessionID,
	})
	if err != nil {
		// A concurrent request may have created it first.
		if _, getErr := a.sessions.Get(ctx, get); getErr == nil {
			return nil
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// run returns the text of the orchestrator's last answer. Earlier text
// parts are interim remarks made before tool calls.
func (a *Assistant) run(ctx context.Context, scope Scope, message string) (string, error) {
	userMessage := &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: message}},
	}

	var last string
	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}
	for event, err := range a.runner.Run(ctx, scope.UserID, scope.SessionID, userMessage, runConfig) {
		if err != nil {
			return "", err
		}
		if event == nil || event.Author != OrchestratorName || event.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range event.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			last = text
		}
	}
	return last, nil
}
