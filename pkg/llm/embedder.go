package llm

import (
	"context"
	"fmt"

	"github.com/Adithya-charan/docuExtract/internal/types"
	"github.com/tmc/langchaingo/llms/ollama"
)

type EmbedderConfig struct {
	Model   string
	BaseURL string // Ollama server URL
}

// Embedder turns analysis summaries into vectors for related-document lookup.
type Embedder struct {
	Config EmbedderConfig
	embed  types.Embedder
}

func NewEmbedderWithConfig(config EmbedderConfig) (*Embedder, error) {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest" // Default Ollama model
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}

	emb, err := ollama.New(ollama.WithModel(config.Model), ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	return &Embedder{Config: config, embed: emb}, nil
}

// NewEmbedderFrom wraps any embedding backend.
func NewEmbedderFrom(e types.Embedder) *Embedder {
	return &Embedder{embed: e}
}

// EmbedText returns a single vector for text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.embed.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	return FlattenEmbeddings(embeddings), nil
}

func FlattenEmbeddings(embeddings [][]float32) []float32 {
	var flattened []float32
	for _, emb := range embeddings {
		flattened = append(flattened, emb...)
	}
	return flattened
}
