package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"meal_planner_backend/internal/assistant"
)

type echoChat struct {
	scopes []assistant.Scope
}

func (e *echoChat) Chat(ctx context.Context, scope assistant.Scope, message string) (assistant.Reply, error) {
	e.scopes = append(e.scopes, scope)
	return assistant.Reply{SessionID: "session-1", Text: "ok: " + message}, nil
}

func TestRunChatReusesSession(t *testing.T) {
	chat := &echoChat{}
	var out bytes.Buffer

	runChat(context.Background(), strings.NewReader("hello\nplan dinner\n\n"), &out, chat, assistant.Scope{UserID: "user"})

	if len(chat.scopes) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(chat.scopes))
	}
	if chat.scopes[0].SessionID != "" {
		t.Fatalf("first turn should start a session, got %q", chat.scopes[0].SessionID)
	}
	if chat.scopes[1].SessionID != "session-1" {
		t.Fatalf("second turn should reuse the session, got %q", chat.scopes[1].SessionID)
	}
	if !strings.Contains(out.String(), "assistant> ok: plan dinner") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}
