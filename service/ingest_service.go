package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docchat-io/docchat-be/database"
	"github.com/docchat-io/docchat-be/repository"
	"github.com/docchat-io/docchat-be/types"
	"github.com/docchat-io/docchat-be/utils"
)

// IngestService turns one uploaded PDF into indexed, searchable chunks.
type IngestService struct {
	uploadDir string
	pdf       TextExtractor
	chunker   *Chunker
	embedder  Embedder
	index     database.VectorIndex
	documents repository.DocumentRepo
	chunks    repository.ChunkRepo

	embedConcurrency int
	maxAttempts      int
	baseDelay        time.Duration
}

func NewIngestService(
	uploadDir string,
	pdf TextExtractor,
	chunker *Chunker,
	embedder Embedder,
	index database.VectorIndex,
	documents repository.DocumentRepo,
	chunks repository.ChunkRepo,
	embedConcurrency int,
	maxAttempts int,
	baseDelay time.Duration,
) *IngestService {
	if embedConcurrency <= 0 {
		embedConcurrency = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &IngestService{
		uploadDir:        uploadDir,
		pdf:              pdf,
		chunker:          chunker,
		embedder:         embedder,
		index:            index,
		documents:        documents,
		chunks:           chunks,
		embedConcurrency: embedConcurrency,
		maxAttempts:      maxAttempts,
		baseDelay:        baseDelay,
	}
}

// IngestUpload validates and ingests an HTTP upload. The saved file is a
// transient artifact: it is removed once ingestion finishes, success or not.
func (s *IngestService) IngestUpload(ctx context.Context, req types.UploadRequest, file *multipart.FileHeader) (*types.UploadResponse, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: PDF file is required", types.ErrInvalidUpload)
	}
	if req.Country == "" {
		return nil, fmt.Errorf("%w: country is required", types.ErrInvalidUpload)
	}
	if req.Filename == "" {
		req.Filename = file.Filename
	}

	path, err := utils.SaveUpload(file, s.uploadDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Printf("Failed to remove uploaded file %s: %v", path, err)
		}
	}()

	return s.IngestFile(ctx, req, path)
}

// IngestFile runs the pipeline for a PDF already on disk: document record,
// text extraction, chunking, chunk persistence, embedding, one batch upsert.
// On failure after the document record exists the record stays behind; the
// vector batch is all-or-nothing, so the document is never half-indexed.
func (s *IngestService) IngestFile(ctx context.Context, req types.UploadRequest, path string) (*types.UploadResponse, error) {
	if req.Country == "" {
		return nil, fmt.Errorf("%w: country is required", types.ErrInvalidUpload)
	}

	doc := &types.Document{
		ID:        uuid.New().String(),
		Filename:  req.Filename,
		Country:   req.Country,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.documents.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: create document: %v", types.ErrPersistenceFailure, err)
	}

	text, err := s.pdf.ExtractText(ctx, path)
	if err != nil {
		return nil, err
	}

	pieces := s.chunker.Split(text)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: document contains no extractable text", types.ErrParseError)
	}

	if err := s.index.EnsureClass(ctx); err != nil {
		return nil, err
	}

	chunks := make([]types.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = types.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			ChunkIndex: i,
			Text:       piece,
		}
	}
	if err := s.chunks.CreateChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("%w: create chunks: %v", types.ErrPersistenceFailure, err)
	}

	records, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	// The batch must be confirmed before success is reported; a cancelled
	// request aborts here rather than claiming an indexed document.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err = utils.Retry(ctx, s.maxAttempts, s.baseDelay, types.Retryable, func() error {
		return s.index.BatchUpsert(ctx, records)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Ingested document %s (%s): %d chunks", doc.ID, doc.Filename, len(chunks))
	return &types.UploadResponse{
		DocumentID: doc.ID,
		ChunkCount: len(chunks),
	}, nil
}

// embedChunks generates embeddings with a bounded worker pool. All vectors
// are collected before any index write so the later upsert stays one batch.
func (s *IngestService) embedChunks(ctx context.Context, chunks []types.Chunk) ([]database.ChunkRecord, error) {
	records := make([]database.ChunkRecord, len(chunks))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.embedConcurrency)
	for i, chunk := range chunks {
		group.Go(func() error {
			var vector []float32
			err := utils.Retry(groupCtx, s.maxAttempts, s.baseDelay, types.Retryable, func() error {
				var embedErr error
				vector, embedErr = s.embedder.Embed(groupCtx, chunk.Text)
				return embedErr
			})
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", chunk.ChunkIndex, err)
			}
			records[i] = database.ChunkRecord{
				ID:         chunk.ID,
				DocumentID: chunk.DocumentID,
				ChunkIndex: chunk.ChunkIndex,
				Text:       chunk.Text,
				Vector:     vector,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
