package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat-io/docchat-be/types"
)

type fakeDocumentRepo struct {
	docs      []types.Document
	createErr error
}

func (f *fakeDocumentRepo) CreateDocument(ctx context.Context, doc *types.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeDocumentRepo) GetDocument(ctx context.Context, id string) (*types.Document, error) {
	for i := range f.docs {
		if f.docs[i].ID == id {
			return &f.docs[i], nil
		}
	}
	return nil, types.ErrNotFound
}

type fakeChunkRepo struct {
	chunks    []types.Chunk
	createErr error
}

func (f *fakeChunkRepo) CreateChunks(ctx context.Context, chunks []types.Chunk) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type ingestFixture struct {
	svc       *IngestService
	extractor *fakeExtractor
	embedder  *fakeEmbedder
	index     *fakeIndex
	documents *fakeDocumentRepo
	chunks    *fakeChunkRepo
}

func newIngestFixture(t *testing.T, extractor *fakeExtractor, maxAttempts int) *ingestFixture {
	t.Helper()
	chunker, err := NewChunker(types.ChunkerConfig{ChunkWords: 4, OverlapWords: 1})
	require.NoError(t, err)

	f := &ingestFixture{
		extractor: extractor,
		embedder:  &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}},
		index:     &fakeIndex{},
		documents: &fakeDocumentRepo{},
		chunks:    &fakeChunkRepo{},
	}
	f.svc = NewIngestService(
		"uploads",
		extractor,
		chunker,
		f.embedder,
		f.index,
		f.documents,
		f.chunks,
		2,
		maxAttempts,
		time.Millisecond,
	)
	return f
}

func TestIngestService_IngestUpload_Validation(t *testing.T) {
	f := newIngestFixture(t, &fakeExtractor{text: "some words"}, 1)

	t.Run("missing file", func(t *testing.T) {
		_, err := f.svc.IngestUpload(context.Background(), types.UploadRequest{Country: "DE"}, nil)
		assert.ErrorIs(t, err, types.ErrInvalidUpload)
	})

	t.Run("missing country", func(t *testing.T) {
		file := &multipart.FileHeader{Filename: "report.pdf"}
		_, err := f.svc.IngestUpload(context.Background(), types.UploadRequest{Filename: "report.pdf"}, file)
		assert.ErrorIs(t, err, types.ErrInvalidUpload)
	})
}

func TestIngestService_IngestFile_MissingCountry(t *testing.T) {
	f := newIngestFixture(t, &fakeExtractor{text: "some words"}, 1)

	_, err := f.svc.IngestFile(context.Background(), types.UploadRequest{Filename: "report.pdf"}, "report.pdf")
	assert.ErrorIs(t, err, types.ErrInvalidUpload)
	assert.Empty(t, f.documents.docs)
}

func TestIngestService_IngestFile_Pipeline(t *testing.T) {
	// Ten words with window 4 and overlap 1 step in threes: three chunks.
	f := newIngestFixture(t, &fakeExtractor{text: "w0 w1 w2 w3 w4 w5 w6 w7 w8 w9"}, 1)

	res, err := f.svc.IngestFile(context.Background(), types.UploadRequest{
		Filename: "report.pdf",
		Country:  "DE",
	}, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ChunkCount)

	require.Len(t, f.documents.docs, 1)
	doc := f.documents.docs[0]
	assert.Equal(t, res.DocumentID, doc.ID)
	assert.Equal(t, "report.pdf", doc.Filename)
	assert.Equal(t, "DE", doc.Country)

	// Persisted chunks and indexed records stay in lockstep, written in a
	// single batch.
	require.Len(t, f.chunks.chunks, 3)
	require.Len(t, f.index.batches, 1)
	records := f.index.batches[0]
	require.Len(t, records, len(f.chunks.chunks))
	for i, rec := range records {
		chunk := f.chunks.chunks[i]
		assert.Equal(t, chunk.ID, rec.ID)
		assert.Equal(t, doc.ID, rec.DocumentID)
		assert.Equal(t, i, rec.ChunkIndex)
		assert.Equal(t, chunk.Text, rec.Text)
		assert.Equal(t, f.embedder.vector, rec.Vector)
	}
}

func TestIngestService_IngestFile_ExtractionFailure(t *testing.T) {
	f := newIngestFixture(t, &fakeExtractor{err: fmt.Errorf("%w: broken file", types.ErrParseError)}, 1)

	_, err := f.svc.IngestFile(context.Background(), types.UploadRequest{
		Filename: "report.pdf",
		Country:  "DE",
	}, "report.pdf")
	assert.ErrorIs(t, err, types.ErrParseError)
	assert.Empty(t, f.chunks.chunks)
	assert.Zero(t, f.index.batchCalls)
}

func TestIngestService_IngestFile_NoExtractableText(t *testing.T) {
	f := newIngestFixture(t, &fakeExtractor{text: "   \n  "}, 1)

	_, err := f.svc.IngestFile(context.Background(), types.UploadRequest{
		Filename: "report.pdf",
		Country:  "DE",
	}, "report.pdf")
	assert.ErrorIs(t, err, types.ErrParseError)
	assert.Zero(t, f.index.batchCalls)
}

func TestIngestService_IngestFile_CollectionConflictAborts(t *testing.T) {
	f := newIngestFixture(t, &fakeExtractor{text: "a b c d e"}, 1)
	f.index.ensureErr = types.ErrCollectionConflict

	_, err := f.svc.IngestFile(context.Background(), types.UploadRequest{
		Filename: "report.pdf",
		Country:  "DE",
	}, "report.pdf")
	assert.ErrorIs(t, err, types.ErrCollectionConflict)
	assert.Empty(t, f.chunks.chunks)
	assert.Zero(t, f.index.batchCalls)
}

func TestIngestService_IngestFile_RetriesBatchUpsert(t *testing.T) {
	f := newIngestFixture(t, &fakeExtractor{text: "a b c d e"}, 3)
	f.index.batchErrs = []error{
		fmt.Errorf("%w: transient", types.ErrIndexWriteFailure),
		nil,
	}

	res, err := f.svc.IngestFile(context.Background(), types.UploadRequest{
		Filename: "report.pdf",
		Country:  "DE",
	}, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ChunkCount)
	assert.Equal(t, 2, f.index.batchCalls)
	assert.Len(t, f.index.batches, 1)
}

func TestIngestService_IngestFile_CancelledBeforeUpsert(t *testing.T) {
	f := newIngestFixture(t, &fakeExtractor{text: "a b c d e"}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.IngestFile(ctx, types.UploadRequest{
		Filename: "report.pdf",
		Country:  "DE",
	}, "report.pdf")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.index.batchCalls)
}

func TestIngestService_EmbedChunks(t *testing.T) {
	f := newIngestFixture(t, &fakeExtractor{}, 1)

	chunks := []types.Chunk{
		{ID: "c0", DocumentID: "doc-1", ChunkIndex: 0, Text: "first piece"},
		{ID: "c1", DocumentID: "doc-1", ChunkIndex: 1, Text: "second piece"},
		{ID: "c2", DocumentID: "doc-1", ChunkIndex: 2, Text: "third piece"},
	}

	records, err := f.svc.embedChunks(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, records, len(chunks))
	assert.Equal(t, len(chunks), f.embedder.calls)

	for i, rec := range records {
		assert.Equal(t, chunks[i].ID, rec.ID)
		assert.Equal(t, chunks[i].DocumentID, rec.DocumentID)
		assert.Equal(t, i, rec.ChunkIndex)
		assert.Equal(t, chunks[i].Text, rec.Text)
		assert.Equal(t, f.embedder.vector, rec.Vector)
	}
}

func TestIngestService_EmbedChunks_FailureNamesChunk(t *testing.T) {
	f := newIngestFixture(t, &fakeExtractor{}, 1)
	f.embedder.err = types.ErrEmbeddingUnavailable

	chunks := []types.Chunk{
		{ID: "c0", DocumentID: "doc-1", ChunkIndex: 0, Text: "first piece"},
	}

	_, err := f.svc.embedChunks(context.Background(), chunks)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "embed chunk 0")
}
