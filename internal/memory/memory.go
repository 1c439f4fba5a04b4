// Package memory stores and recalls facts about a user by vector similarity.
// Every record belongs to one user and searches never cross users.
package memory

import (
	"context"
	"time"
)

// Kinds of records.
const (
	KindFact         = "fact"
	KindConversation = "conversation"
)

// Record is one remembered piece of text.
type Record struct {
	ID        string
	UserID    string
	SessionID string
	Kind      string
	Text      string
	CreatedAt time.Time
	Vector    []float32
}

// Hit is a recalled record with its similarity score.
type Hit struct {
	Record
	Score float64
}

// Store persists embedded records.
type Store interface {
	Upsert(ctx context.Context, rec Record) error
	Search(ctx context.Context, userID string, vector []float32, limit int) ([]Hit, error)
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
