package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/docchat-io/docchat-be/types"
)

// Generator produces free text for a prompt. It is opaque to the query
// planner: the planner owns context assembly, the generator only completes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// GenerateStream invokes handler for each produced fragment and returns
	// the full answer once the stream ends.
	GenerateStream(ctx context.Context, prompt string, handler types.StreamHandler) (string, error)
}

type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(baseURL, apiKey, model string) *OpenAIGenerator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Model: g.model,
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGenerationFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response generated", types.ErrGenerationFailure)
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) GenerateStream(ctx context.Context, prompt string, handler types.StreamHandler) (string, error) {
	stream, err := g.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Model: g.model,
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGenerationFailure, err)
	}
	defer stream.Close()

	var answer string
	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return answer, nil
			}
			return "", fmt.Errorf("%w: %v", types.ErrGenerationFailure, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		token := resp.Choices[0].Delta.Content
		answer += token
		handler(token)
	}
}

type GeminiGenerator struct {
	model *genai.GenerativeModel
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiGenerator{
		model: client.GenerativeModel(model),
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGenerationFailure, err)
	}
	answer := geminiResponseText(resp)
	if answer == "" {
		return "", fmt.Errorf("%w: no response generated", types.ErrGenerationFailure)
	}
	return answer, nil
}

func (g *GeminiGenerator) GenerateStream(ctx context.Context, prompt string, handler types.StreamHandler) (string, error) {
	iter := g.model.GenerateContentStream(ctx, genai.Text(prompt))
	var answer string
	for {
		resp, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				return answer, nil
			}
			return "", fmt.Errorf("%w: %v", types.ErrGenerationFailure, err)
		}
		token := geminiResponseText(resp)
		answer += token
		handler(token)
	}
}

func geminiResponseText(resp *genai.GenerateContentResponse) string {
	var text string
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
		break
	}
	return text
}
