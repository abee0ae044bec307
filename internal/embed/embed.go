// Package embed maps text to fixed-length dense vectors via the Gemini
// embedding API.
package embed

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Error represents an embedding model failure: the model is unavailable or
// inference failed.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("embedding error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("embedding error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Embedder is satisfied by any text-to-vector model client. Embeddings are
// deterministic for identical input text within numeric tolerance.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// GeminiEmbedder embeds text with a Gemini embedding model. Text beyond the
// model's context window is silently truncated by the model; that is an
// accepted limitation, not an error.
type GeminiEmbedder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	dim    int
}

// NewGemini builds an embedder for the named model. dim must match the
// model's output dimensionality; it also sizes the vector collection.
func NewGemini(ctx context.Context, apiKey, model string, dim int) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, &Error{Message: "API key is required"}
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &Error{Message: "creating model client", Cause: err}
	}
	return &GeminiEmbedder{
		client: client,
		model:  client.EmbeddingModel(model),
		dim:    dim,
	}, nil
}

// Embed returns the embedding vector for text.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := g.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, &Error{Message: "embedding request failed", Cause: err}
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, &Error{Message: "model returned an empty embedding"}
	}
	return res.Embedding.Values, nil
}

// Dimension returns the configured output dimensionality.
func (g *GeminiEmbedder) Dimension() int {
	return g.dim
}

// Close releases the underlying client.
func (g *GeminiEmbedder) Close() error {
	return g.client.Close()
}
