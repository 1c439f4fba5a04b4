package assistant

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"

	"meal_planner_backend/internal/events"
	"meal_planner_backend/platform/apperr"
	"meal_planner_backend/platform/logger"
	"meal_planner_backend/platform/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// scriptedLLM answers each call with the next scripted response.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []*genai.Content
	err       error
	calls     int
}

func (s *scriptedLLM) Name() string { return "scripted" }

func (s *scriptedLLM) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.err != nil {
			yield(nil, s.err)
			return
		}
		i := min(s.calls, len(s.responses)-1)
		s.calls++
		yield(&model.LLMResponse{Content: s.responses[i]}, nil)
	}
}

func newTestAssistant(t *testing.T, llm model.LLM, deps Deps, bus events.Bus) *Assistant {
	t.Helper()
	deps.Validator = validator.New()
	a, err := New(Config{AppName: "meal_planner_test", Model: llm}, deps, bus, logger.Discard())
	require.NoError(t, err)
	return a
}

func TestChatReturnsSanitizedReplyAndPublishes(t *testing.T) {
	llm := &scriptedLLM{responses: []*genai.Content{
		genai.NewContentFromText("```json\n{\"reply\": \"Hello! What should I plan today?\"}\n```", genai.RoleModel),
	}}
	bus := &recordingBus{}
	a := newTestAssistant(t, llm, Deps{}, bus)

	reply, err := a.Chat(context.Background(), Scope{UserID: "u1"}, "hi there")

	require.NoError(t, err)
	assert.Equal(t, "Hello! What should I plan today?", reply.Text)
	assert.NotEmpty(t, reply.SessionID)
	require.Len(t, bus.events, 1)
	evt := bus.events[0].(events.ChatTurnCompleted)
	assert.Equal(t, "u1", evt.UserID)
	assert.Equal(t, reply.SessionID, evt.SessionID)
	assert.Equal(t, "hi there", evt.UserMessage)
}

func TestChatKeepsSessionAcrossTurns(t *testing.T) {
	llm := &scriptedLLM{responses: []*genai.Content{genai.NewContentFromText("Sure.", genai.RoleModel)}}
	a := newTestAssistant(t, llm, Deps{}, &recordingBus{})
	ctx := context.Background()

	first, err := a.Chat(ctx, Scope{UserID: "u1", SessionID: "s1"}, "plan my lunch")
	require.NoError(t, err)
	second, err := a.Chat(ctx, Scope{UserID: "u1", SessionID: "s1"}, "and dinner")
	require.NoError(t, err)

	assert.Equal(t, "s1", first.SessionID)
	assert.Equal(t, "s1", second.SessionID)
	assert.Equal(t, 2, llm.calls)
}

func TestChatRunsToolsWithCallerIdentity(t *testing.T) {
	llm := &scriptedLLM{responses: []*genai.Content{
		{Role: genai.RoleModel, Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{
			ID:   "call-1",
			Name: "save_memory",
			Args: map[string]any{"fact": "allergic to sesame"},
		}}}},
		genai.NewContentFromText("Noted, I will keep sesame out of your meals.", genai.RoleModel),
	}}
	mem := &fakeMemory{}
	a := newTestAssistant(t, llm, Deps{Memory: mem}, &recordingBus{})

	reply, err := a.Chat(context.Background(), Scope{UserID: "u7", SessionID: "s7"}, "I am allergic to sesame")

	require.NoError(t, err)
	assert.Equal(t, "Noted, I will keep sesame out of your meals.", reply.Text)
	require.Len(t, mem.saved, 1)
	assert.Equal(t, "u7", mem.saved[0].UserID)
	assert.Equal(t, "s7", mem.saved[0].SessionID)
	assert.Equal(t, "allergic to sesame", mem.saved[0].Text)
}

func TestChatFallsBackWhenReplyIsOnlyJSON(t *testing.T) {
	llm := &scriptedLLM{responses: []*genai.Content{genai.NewContentFromText(`{"day":1,"meals":[]}`, genai.RoleModel)}}
	a := newTestAssistant(t, llm, Deps{}, &recordingBus{})

	reply, err := a.Chat(context.Background(), Scope{UserID: "u1"}, "make a plan")

	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply.Text)
}

func TestChatModelFailureIsUpstream(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("quota exceeded")}
	bus := &recordingBus{}
	a := newTestAssistant(t, llm, Deps{}, bus)

	_, err := a.Chat(context.Background(), Scope{UserID: "u1"}, "hello")

	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Empty(t, bus.events)
}

func TestChatValidatesInput(t *testing.T) {
	a := newTestAssistant(t, &scriptedLLM{responses: []*genai.Content{genai.NewContentFromText("ok", genai.RoleModel)}}, Deps{}, &recordingBus{})
	ctx := context.Background()

	_, err := a.Chat(ctx, Scope{}, "hello")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = a.Chat(ctx, Scope{UserID: "u1"}, "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
