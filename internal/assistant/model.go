package assistant

import (
	"context"
	"errors"
	"fmt"

	"meal_planner_backend/platform/config"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

// ErrModelNotConfigured is returned when no Gemini API key is set.
var ErrModelNotConfigured = errors.New("GOOGLE_API_KEY is not set")

// NewGeminiModel creates the Gemini model shared by all agents.
func NewGeminiModel(ctx context.Context, cfg config.GeminiConfig) (model.LLM, error) {
	if !cfg.IsGeminiEnabled() {
		return nil, ErrModelNotConfigured
	}
	llm, err := gemini.NewModel(ctx, cfg.GetGeminiModel(), &genai.ClientConfig{
		APIKey:  cfg.GetGoogleAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini model: %w", err)
	}
	return llm, nil
}

// NewGenAIClient creates a raw genai client, used for embeddings.
func NewGenAIClient(ctx context.Context, cfg config.GeminiConfig) (*genai.Client, error) {
	if !cfg.IsGeminiEnabled() {
		return nil, ErrModelNotConfigured
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGoogleAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
}
