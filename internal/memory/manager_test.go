package memory

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"

	"meal_planner_backend/platform/apperr"
	"meal_planner_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bagEmbedder hashes words into a small vector so texts sharing words land close together.
type bagEmbedder struct {
	err error
}

func (b bagEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if b.err != nil {
		return nil, b.err
	}
	vec := make([]float32, 512)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,:!?")))
		vec[h.Sum32()%512]++
	}
	vec[511] += 0.01
	return vec, nil
}

func TestRememberAndRecallStaysWithinUser(t *testing.T) {
	m := NewManager(NewChromemStore(), bagEmbedder{}, logger.Discard())
	ctx := context.Background()

	_, err := m.Remember(ctx, "alice", "s1", "alice is allergic to peanuts", KindFact)
	require.NoError(t, err)
	_, err = m.Remember(ctx, "alice", "s1", "alice prefers spicy food", KindFact)
	require.NoError(t, err)
	_, err = m.Remember(ctx, "bob", "s2", "bob is allergic to shellfish", KindFact)
	require.NoError(t, err)

	hits, err := m.Recall(ctx, "alice", "allergic peanuts", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "alice is allergic to peanuts", hits[0].Text)
	for _, h := range hits {
		assert.Equal(t, "alice", h.UserID)
		assert.Equal(t, KindFact, h.Kind)
	}
}

func TestRecallOnEmptyStore(t *testing.T) {
	m := NewManager(NewChromemStore(), bagEmbedder{}, logger.Discard())

	hits, err := m.Recall(context.Background(), "nobody", "anything", 0)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRememberValidation(t *testing.T) {
	m := NewManager(NewChromemStore(), bagEmbedder{}, logger.Discard())
	ctx := context.Background()

	_, err := m.Remember(ctx, "", "s", "text", "")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = m.Remember(ctx, "u", "s", "   ", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestEmbedFailureIsUpstream(t *testing.T) {
	m := NewManager(NewChromemStore(), bagEmbedder{err: errors.New("boom")}, logger.Discard())

	_, err := m.Recall(context.Background(), "u", "query", 3)

	assert.True(t, apperr.Is(err, apperr.KindUpstream))
}

func TestRecordConversationSkipsShortTurns(t *testing.T) {
	store := NewChromemStore()
	m := NewManager(store, bagEmbedder{}, logger.Discard())
	ctx := context.Background()

	require.NoError(t, m.RecordConversation(ctx, "u", "s", "thanks!", "You're welcome."))
	hits, err := m.Recall(ctx, "u", "thanks", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, m.RecordConversation(ctx, "u", "s", "plan a high protein breakfast for tomorrow", "Here is an omelette plan."))
	hits, err = m.Recall(ctx, "u", "high protein breakfast", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, KindConversation, hits[0].Kind)
	assert.Contains(t, hits[0].Text, "User: plan a high protein breakfast")
}

func TestFormatHits(t *testing.T) {
	assert.Equal(t, "No relevant memories.", FormatHits(nil))
	out := FormatHits([]Hit{{Record: Record{Text: "likes dates\nand tea"}}})
	assert.Equal(t, "- likes dates | and tea", out)
}
