package embeddings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedAcceptsResponseShapes(t *testing.T) {
	bodies := []string{
		`{"vector":[0.5,0.25]}`,
		`{"embedding":[0.5,0.25]}`,
		`[0.5,0.25]`,
	}

	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer k" {
				t.Errorf("missing bearer key")
			}
			_, _ = w.Write([]byte(body))
		}))

		client := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
		vector, err := client.Embed(context.Background(), "lentil soup")
		srv.Close()

		if err != nil {
			t.Fatalf("body %s: unexpected error %v", body, err)
		}
		if len(vector) != 2 || vector[0] != 0.5 {
			t.Fatalf("body %s: unexpected vector %v", body, vector)
		}
	}
}

func TestEmbedRejectsBlankText(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	if _, err := client.Embed(context.Background(), "   "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}
