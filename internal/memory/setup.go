package memory

import (
	"errors"

	"meal_planner_backend/platform/ai/embeddings"
	"meal_planner_backend/platform/config"
	"meal_planner_backend/platform/logger"
	"meal_planner_backend/platform/qdrant"

	"google.golang.org/genai"
)

// ErrNoEmbedder is returned when neither an embedding API nor Gemini is configured.
var ErrNoEmbedder = errors.New("memory needs EMBEDDING_API_URL or GOOGLE_API_KEY")

// SetupConfig is the configuration consulted by NewManagerFromConfig.
type SetupConfig interface {
	config.QdrantConfig
	config.EmbeddingConfig
	config.GeminiConfig
}

// NewManagerFromConfig picks the store and embedder backends. gemini may be
// nil when an embedding API is configured.
func NewManagerFromConfig(cfg SetupConfig, gemini *genai.Client, log *logger.Logger) (*Manager, error) {
	var embedder Embedder
	switch {
	case cfg.IsEmbeddingEnabled():
		embedder = embeddings.NewClient(embeddings.Config{
			BaseURL: cfg.GetEmbeddingAPIURL(),
			APIKey:  cfg.GetEmbeddingAPIKey(),
		})
	case gemini != nil:
		embedder = NewGeminiEmbedder(gemini, cfg.GetGeminiEmbeddingModel())
	default:
		return nil, ErrNoEmbedder
	}

	var store Store
	if cfg.IsQdrantEnabled() {
		store = NewQdrantStore(qdrant.NewClient(qdrant.Config{
			BaseURL:    cfg.GetQdrantURL(),
			APIKey:     cfg.GetQdrantAPIKey(),
			Collection: cfg.GetQdrantCollection(),
		}))
		log.Info("memory store: qdrant", "collection", cfg.GetQdrantCollection())
	} else {
		store = NewChromemStore()
		log.Info("memory store: in-process chromem")
	}

	return NewManager(store, embedder, log), nil
}
