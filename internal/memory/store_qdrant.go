package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meal_planner_backend/platform/qdrant"
)

// Payload keys written next to each vector.
const (
	payloadSessionID = "session_id"
	payloadKind      = "kind"
	payloadText      = "text"
	payloadCreatedAt = "created_at"
)

// QdrantStore keeps records in a Qdrant collection partitioned by user_id.
type QdrantStore struct {
	client *qdrant.Client

	mu      sync.Mutex
	ensured bool
}

// NewQdrantStore wraps a Qdrant client.
func NewQdrantStore(client *qdrant.Client) *QdrantStore {
	return &QdrantStore{client: client}
}

// Upsert writes the record, creating the collection on first use.
func (s *QdrantStore) Upsert(ctx context.Context, rec Record) error {
	if err := s.ensure(ctx, len(rec.Vector)); err != nil {
		return err
	}

	return s.client.Upsert(ctx, []qdrant.Point{{
		ID:     rec.ID,
		Vector: rec.Vector,
		Payload: map[string]any{
			qdrant.UserIDField: rec.UserID,
			payloadSessionID:   rec.SessionID,
			payloadKind:        rec.Kind,
			payloadText:        rec.Text,
			payloadCreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
		},
	}})
}

// Search returns the user's closest records.
func (s *QdrantStore) Search(ctx context.Context, userID string, vector []float32, limit int) ([]Hit, error) {
	results, err := s.client.Search(ctx, userID, vector, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		// The filter already restricts to userID; re-check the payload anyway.
		if owner := payloadString(r.Payload, qdrant.UserIDField); owner != userID {
			continue
		}
		created, _ := time.Parse(time.RFC3339, payloadString(r.Payload, payloadCreatedAt))
		hits = append(hits, Hit{
			Record: Record{
				ID:        fmt.Sprint(r.ID),
				UserID:    userID,
				SessionID: payloadString(r.Payload, payloadSessionID),
				Kind:      payloadString(r.Payload, payloadKind),
				Text:      payloadString(r.Payload, payloadText),
				CreatedAt: created,
			},
			Score: r.Score,
		})
	}
	return hits, nil
}

func (s *QdrantStore) ensure(ctx context.Context, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}
	if err := s.client.EnsureCollection(ctx, dimensions); err != nil {
		return err
	}
	s.ensured = true
	return nil
}

func payloadString(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return v
}
