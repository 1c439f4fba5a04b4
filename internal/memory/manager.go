package memory

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"meal_planner_backend/platform/apperr"
	"meal_planner_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	// DefaultRecallLimit is used when Recall gets a non-positive limit.
	DefaultRecallLimit = 5
	maxRecallLimit     = 20
	maxTextRunes       = 1500
	minSignalWords     = 4
)

// Manager embeds, stores and recalls records.
type Manager struct {
	store    Store
	embedder Embedder
	log      *logger.Logger
	now      func() time.Time
}

// NewManager creates a memory manager.
func NewManager(store Store, embedder Embedder, log *logger.Logger) *Manager {
	return &Manager{store: store, embedder: embedder, log: log, now: time.Now}
}

// Remember stores text for the user.
func (m *Manager) Remember(ctx context.Context, userID, sessionID, text, kind string) (Record, error) {
	if strings.TrimSpace(userID) == "" {
		return Record{}, apperr.Unauthorized("user id is required")
	}
	text = truncate(strings.TrimSpace(text), maxTextRunes)
	if text == "" {
		return Record{}, apperr.Validation("memory text is empty")
	}
	if kind == "" {
		kind = KindFact
	}

	vector, err := m.embedder.Embed(ctx, text)
	if err != nil {
		m.log.WithContext(ctx).UpstreamError("embeddings", "embed", err)
		return Record{}, apperr.Upstream("embedding failed", err)
	}

	rec := Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		SessionID: sessionID,
		Kind:      kind,
		Text:      text,
		CreatedAt: m.now(),
		Vector:    vector,
	}
	if err := m.store.Upsert(ctx, rec); err != nil {
		m.log.WithContext(ctx).UpstreamError("vector_store", "upsert", err)
		return Record{}, apperr.Upstream("memory store failed", err)
	}
	return rec, nil
}

// Recall returns the user's records closest to query, best first.
func (m *Manager) Recall(ctx context.Context, userID, query string, limit int) ([]Hit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Unauthorized("user id is required")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("memory query is empty")
	}
	if limit <= 0 {
		limit = DefaultRecallLimit
	}
	limit = min(limit, maxRecallLimit)

	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		m.log.WithContext(ctx).UpstreamError("embeddings", "embed", err)
		return nil, apperr.Upstream("embedding failed", err)
	}

	hits, err := m.store.Search(ctx, userID, vector, limit)
	if err != nil {
		m.log.WithContext(ctx).UpstreamError("vector_store", "search", err)
		return nil, apperr.Upstream("memory search failed", err)
	}
	return hits, nil
}

// RecordConversation stores one chat turn. Greetings and other short
// messages carry nothing worth recalling and are skipped.
func (m *Manager) RecordConversation(ctx context.Context, userID, sessionID, userMessage, reply string) error {
	if !worthRemembering(userMessage) {
		return nil
	}

	text := fmt.Sprintf("User: %s\nAssistant: %s", strings.TrimSpace(userMessage), strings.TrimSpace(reply))
	_, err := m.Remember(ctx, userID, sessionID, text, KindConversation)
	return err
}

// FormatHits renders hits as a bullet list for a model prompt.
func FormatHits(hits []Hit) string {
	if len(hits) == 0 {
		return "No relevant memories."
	}
	var b strings.Builder
	for _, h := range hits {
		b.WriteString("- ")
		if !h.CreatedAt.IsZero() {
			b.WriteString("(" + h.CreatedAt.Format("2006-01-02") + ") ")
		}
		b.WriteString(strings.ReplaceAll(h.Text, "\n", " | "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func worthRemembering(message string) bool {
	words := strings.FieldsFunc(message, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return len(words) >= minSignalWords
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes])
}
