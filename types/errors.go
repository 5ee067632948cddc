package types

import (
	"errors"
	"net/http"
)

// Sentinel errors for the ingestion and query pipelines. Handlers map them
// to stable codes and HTTP statuses; internal details stay wrapped behind %w.
var (
	ErrInvalidUpload        = errors.New("invalid upload")
	ErrParseError           = errors.New("unable to extract text from document")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotFound             = errors.New("not found")
	ErrRateLimited          = errors.New("too many requests")
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	ErrCollectionConflict   = errors.New("vector collection exists with incompatible schema")
	ErrIndexWriteFailure    = errors.New("vector index write failed")
	ErrGenerationFailure    = errors.New("answer generation failed")
	ErrPersistenceFailure   = errors.New("metadata persistence failed")
)

// ErrorCode returns the stable error category for a pipeline error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidUpload):
		return "invalid_upload"
	case errors.Is(err, ErrParseError):
		return "parse_error"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrEmbeddingUnavailable):
		return "embedding_unavailable"
	case errors.Is(err, ErrCollectionConflict):
		return "collection_conflict"
	case errors.Is(err, ErrIndexWriteFailure):
		return "index_write_failure"
	case errors.Is(err, ErrGenerationFailure):
		return "generation_failure"
	case errors.Is(err, ErrPersistenceFailure):
		return "persistence_failure"
	default:
		return "internal_error"
	}
}

// HTTPStatus maps a pipeline error to the status the API responds with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidUpload),
		errors.Is(err, ErrParseError),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrEmbeddingUnavailable),
		errors.Is(err, ErrIndexWriteFailure),
		errors.Is(err, ErrGenerationFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the human-readable text safe to show a caller for a
// server-side failure. Internal wrapping detail never leaves the process.
func PublicMessage(err error) string {
	for _, sentinel := range []error{
		ErrEmbeddingUnavailable,
		ErrCollectionConflict,
		ErrIndexWriteFailure,
		ErrGenerationFailure,
		ErrPersistenceFailure,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal server error"
}

// Retryable reports whether an error class is worth another attempt.
// Parse and schema-conflict errors never are.
func Retryable(err error) bool {
	return errors.Is(err, ErrEmbeddingUnavailable) ||
		errors.Is(err, ErrIndexWriteFailure) ||
		errors.Is(err, ErrGenerationFailure)
}
