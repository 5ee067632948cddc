package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docchat-io/docchat-be/database"
	"github.com/docchat-io/docchat-be/repository"
	"github.com/docchat-io/docchat-be/types"
	"github.com/docchat-io/docchat-be/utils"
)

// FallbackAnswer is returned when retrieval finds nothing for the document.
// No generator call is made in that case.
const FallbackAnswer = "No relevant information found in this document."

const answerPromptTemplate = `Use ONLY the information from the following document context to answer the question.
If the context does not contain the answer, state that you cannot answer based on the provided document.

Context:
%s

Question:
%s

Answer:
`

// RelevanceFunc turns the index's raw distance into a relevance score.
// It must be monotonically decreasing in distance.
type RelevanceFunc func(distance float32) float32

// CosineRelevance is the default transform for a cosine-distance index.
func CosineRelevance(distance float32) float32 {
	return 1 - distance
}

// ChatService answers questions against a single document: embed the
// question, retrieve filtered candidates, re-rank, compose a bounded context
// and generate, then record the turn.
type ChatService struct {
	embedder  Embedder
	index     database.VectorIndex
	generator Generator
	documents repository.DocumentRepo
	chats     repository.ChatRepo

	searchLimit       int // candidates fetched from the index
	contextLimit      int // candidates kept after re-ranking
	persistEmptyChats bool
	relevance         RelevanceFunc

	maxAttempts int
	baseDelay   time.Duration
}

func NewChatService(
	embedder Embedder,
	index database.VectorIndex,
	generator Generator,
	documents repository.DocumentRepo,
	chats repository.ChatRepo,
	cfg ChatServiceConfig,
) *ChatService {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 15
	}
	if cfg.ContextLimit <= 0 {
		cfg.ContextLimit = 5
	}
	if cfg.Relevance == nil {
		cfg.Relevance = CosineRelevance
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &ChatService{
		embedder:          embedder,
		index:             index,
		generator:         generator,
		documents:         documents,
		chats:             chats,
		searchLimit:       cfg.SearchLimit,
		contextLimit:      cfg.ContextLimit,
		persistEmptyChats: cfg.PersistEmptyChats,
		relevance:         cfg.Relevance,
		maxAttempts:       cfg.MaxAttempts,
		baseDelay:         cfg.BaseDelay,
	}
}

type ChatServiceConfig struct {
	SearchLimit       int
	ContextLimit      int
	PersistEmptyChats bool
	Relevance         RelevanceFunc
	MaxAttempts       int
	BaseDelay         time.Duration
}

// Answer runs the full query plan and persists the turn. When persistence
// fails after the answer was generated, the answer is returned together with
// a types.ErrPersistenceFailure so the caller can surface both facts.
func (s *ChatService) Answer(ctx context.Context, userID string, req types.ChatRequest) (string, error) {
	return s.answer(ctx, userID, req, nil)
}

// AnswerStream is Answer with the generation phase streamed through handler.
func (s *ChatService) AnswerStream(ctx context.Context, userID string, req types.ChatRequest, handler types.StreamHandler) (string, error) {
	return s.answer(ctx, userID, req, handler)
}

func (s *ChatService) answer(ctx context.Context, userID string, req types.ChatRequest, handler types.StreamHandler) (string, error) {
	if req.Question == "" || req.DocumentID == "" {
		return "", fmt.Errorf("%w: question and document_id are required", types.ErrInvalidRequest)
	}

	if _, err := s.documents.GetDocument(ctx, req.DocumentID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return "", fmt.Errorf("%w: document %s", types.ErrNotFound, req.DocumentID)
		}
		return "", fmt.Errorf("%w: %v", types.ErrPersistenceFailure, err)
	}

	// Phase 1: embed the question.
	var vector []float32
	err := utils.Retry(ctx, s.maxAttempts, s.baseDelay, types.Retryable, func() error {
		var embedErr error
		vector, embedErr = s.embedder.Embed(ctx, req.Question)
		return embedErr
	})
	if err != nil {
		return "", err
	}

	// Phase 2: retrieve candidates scoped to the document.
	hits, err := s.index.SearchByDocument(ctx, vector, req.DocumentID, s.searchLimit)
	if err != nil {
		return "", fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 {
		if s.persistEmptyChats {
			if err := s.persistTurn(ctx, userID, req, FallbackAnswer); err != nil {
				return FallbackAnswer, err
			}
		}
		return FallbackAnswer, nil
	}

	// Phase 3: re-rank and bound the context.
	top := s.rerank(hits)
	contextParts := make([]string, len(top))
	for i, hit := range top {
		contextParts[i] = hit.Text
	}
	contextText := strings.Join(contextParts, "\n\n")

	// Phase 4: compose the prompt and generate.
	prompt := fmt.Sprintf(answerPromptTemplate, contextText, req.Question)
	var answer string
	err = utils.Retry(ctx, s.maxAttempts, s.baseDelay, types.Retryable, func() error {
		var genErr error
		if handler != nil {
			answer, genErr = s.generator.GenerateStream(ctx, prompt, handler)
		} else {
			answer, genErr = s.generator.Generate(ctx, prompt)
		}
		return genErr
	})
	if err != nil {
		return "", err
	}

	if err := s.persistTurn(ctx, userID, req, answer); err != nil {
		return answer, err
	}
	return answer, nil
}

// rerank transforms distances into relevance, sorts descending and keeps the
// top contextLimit hits. The sort is stable so ties keep retrieval order.
func (s *ChatService) rerank(hits []database.ChunkHit) []database.ChunkHit {
	ranked := make([]database.ChunkHit, len(hits))
	copy(ranked, hits)
	sort.SliceStable(ranked, func(i, j int) bool {
		return s.relevance(ranked[i].Distance) > s.relevance(ranked[j].Distance)
	})
	if len(ranked) > s.contextLimit {
		ranked = ranked[:s.contextLimit]
	}
	return ranked
}

func (s *ChatService) persistTurn(ctx context.Context, userID string, req types.ChatRequest, answer string) error {
	turn := &types.ChatTurn{
		ID:         uuid.New().String(),
		UserID:     userID,
		DocumentID: req.DocumentID,
		Question:   req.Question,
		Answer:     answer,
		CreatedAt:  time.Now().Unix(),
	}
	if err := s.chats.CreateChatTurn(ctx, turn); err != nil {
		log.Printf("Failed to persist chat turn for user %s: %v", userID, err)
		return fmt.Errorf("%w: %v", types.ErrPersistenceFailure, err)
	}
	return nil
}

// History returns the user's chat turns, newest first.
func (s *ChatService) History(ctx context.Context, userID string) ([]types.ChatTurn, error) {
	turns, err := s.chats.GetChatTurnsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrPersistenceFailure, err)
	}
	return turns, nil
}
