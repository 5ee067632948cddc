package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{ErrInvalidUpload, "invalid_upload"},
		{ErrParseError, "parse_error"},
		{ErrInvalidRequest, "invalid_request"},
		{ErrUnauthorized, "unauthorized"},
		{ErrNotFound, "not_found"},
		{ErrRateLimited, "rate_limited"},
		{ErrEmbeddingUnavailable, "embedding_unavailable"},
		{ErrCollectionConflict, "collection_conflict"},
		{ErrIndexWriteFailure, "index_write_failure"},
		{ErrGenerationFailure, "generation_failure"},
		{ErrPersistenceFailure, "persistence_failure"},
		{errors.New("anything else"), "internal_error"},
	}
	for _, c := range cases {
		assert.Equal(t, c.code, ErrorCode(c.err), "for %v", c.err)
	}
}

func TestErrorCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("%w: model overloaded", ErrEmbeddingUnavailable)
	assert.Equal(t, "embedding_unavailable", ErrorCode(err))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrInvalidUpload, http.StatusBadRequest},
		{ErrParseError, http.StatusBadRequest},
		{ErrInvalidRequest, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrNotFound, http.StatusNotFound},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrEmbeddingUnavailable, http.StatusBadGateway},
		{ErrIndexWriteFailure, http.StatusBadGateway},
		{ErrGenerationFailure, http.StatusBadGateway},
		{ErrCollectionConflict, http.StatusInternalServerError},
		{ErrPersistenceFailure, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, HTTPStatus(c.err), "for %v", c.err)
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(ErrEmbeddingUnavailable))
	assert.True(t, Retryable(ErrIndexWriteFailure))
	assert.True(t, Retryable(ErrGenerationFailure))
	assert.True(t, Retryable(fmt.Errorf("%w: timeout", ErrGenerationFailure)))

	assert.False(t, Retryable(ErrInvalidRequest))
	assert.False(t, Retryable(ErrCollectionConflict))
	assert.False(t, Retryable(ErrPersistenceFailure))
	assert.False(t, Retryable(errors.New("anything else")))
}

func TestPublicMessage(t *testing.T) {
	err := fmt.Errorf("%w: dial tcp 10.0.0.5:8080: connection refused", ErrIndexWriteFailure)
	msg := PublicMessage(err)
	assert.Equal(t, ErrIndexWriteFailure.Error(), msg)
	assert.NotContains(t, msg, "10.0.0.5")

	assert.Equal(t, "internal server error", PublicMessage(errors.New("mongo: socket closed")))
}
