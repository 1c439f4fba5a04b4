package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemStore is an in-process vector store with one collection per user.
type ChromemStore struct {
	db *chromem.DB

	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// NewChromemStore creates an empty in-memory store.
func NewChromemStore() *ChromemStore {
	return &ChromemStore{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

func (s *ChromemStore) collection(userID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, ok := s.collections[userID]
	s.mu.RUnlock()
	if ok {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, ok := s.collections[userID]; ok {
		return col, nil
	}

	// Vectors are always supplied, so no embedding func is needed.
	col, err := s.db.GetOrCreateCollection("user_"+userID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	s.collections[userID] = col
	return col, nil
}

// Upsert adds the record to the user's collection.
func (s *ChromemStore) Upsert(ctx context.Context, rec Record) error {
	col, err := s.collection(rec.UserID)
	if err != nil {
		return err
	}

	return col.AddDocument(ctx, chromem.Document{
		ID:        rec.ID,
		Content:   rec.Text,
		Embedding: rec.Vector,
		Metadata: map[string]string{
			payloadSessionID: rec.SessionID,
			payloadKind:      rec.Kind,
			payloadCreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

// Search queries the user's collection.
func (s *ChromemStore) Search(ctx context.Context, userID string, vector []float32, limit int) ([]Hit, error) {
	col, err := s.collection(userID)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection.
	n := min(limit, col.Count())
	if n <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		created, _ := time.Parse(time.RFC3339, r.Metadata[payloadCreatedAt])
		hits = append(hits, Hit{
			Record: Record{
				ID:        r.ID,
				UserID:    userID,
				SessionID: r.Metadata[payloadSessionID],
				Kind:      r.Metadata[payloadKind],
				Text:      r.Content,
				CreatedAt: created,
			},
			Score: float64(r.Similarity),
		})
	}
	return hits, nil
}
