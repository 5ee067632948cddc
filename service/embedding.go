package service

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/docchat-io/docchat-be/types"
)

// Embedder converts text into a fixed-dimension vector. The dimension must
// match the vector index's class configuration; the adapters verify the
// upstream response length so a malformed reply never reaches the index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

type OpenAIEmbedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
}

func NewOpenAIEmbedder(baseURL, apiKey, model string, dimension int) *OpenAIEmbedder {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(config),
		model:     openai.EmbeddingModel(model),
		dimension: dimension,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", types.ErrEmbeddingUnavailable)
	}
	vector := resp.Data[0].Embedding
	if len(vector) != e.dimension {
		return nil, fmt.Errorf("%w: got vector of length %d, want %d",
			types.ErrEmbeddingUnavailable, len(vector), e.dimension)
	}
	return vector, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

type GeminiEmbedder struct {
	model     *genai.EmbeddingModel
	dimension int
}

func NewGeminiEmbedder(ctx context.Context, apiKey, model string, dimension int) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = "text-embedding-004"
	}
	return &GeminiEmbedder{
		model:     client.EmbeddingModel(model),
		dimension: dimension,
	}, nil
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbeddingUnavailable, err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", types.ErrEmbeddingUnavailable)
	}
	vector := res.Embedding.Values
	if len(vector) != e.dimension {
		return nil, fmt.Errorf("%w: got vector of length %d, want %d",
			types.ErrEmbeddingUnavailable, len(vector), e.dimension)
	}
	return vector, nil
}

func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}
