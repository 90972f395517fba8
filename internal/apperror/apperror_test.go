package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("ingest: %w", Wrap(ErrTempFileNotFound, "", errors.New("stat failed")))

	assert.ErrorIs(t, wrapped, ErrTempFileNotFound)
	assert.NotErrorIs(t, wrapped, ErrInvalidTempPath)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.EqualError(t, errors.Unwrap(appErr), "stat failed")
}

func TestWrapDoesNotMutateSentinel(t *testing.T) {
	_ = Wrap(ErrDocumentNotFound, "custom", nil).WithDetails(map[string]any{"id": "x"})

	assert.Equal(t, "document not found", ErrDocumentNotFound.Message)
	assert.Nil(t, ErrDocumentNotFound.Details)
}

func TestStorageLimitExceeded(t *testing.T) {
	err := StorageLimitExceeded(10 * 1024 * 1024)

	assert.ErrorIs(t, err, ErrStorageLimitExceeded)
	assert.Equal(t, "storage limit of 10 MB exceeded", err.Message)
	assert.Equal(t, 10.0, err.Details["limit_mb"])
	assert.Equal(t, "storage limit exceeded", ErrStorageLimitExceeded.Message)

	half := StorageLimitExceeded(512 * 1024)
	assert.Equal(t, "storage limit of 0.50 MB exceeded", half.Message)
}
