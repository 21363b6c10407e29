package response

import (
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/readroomapp/readroom-server/internal/errors"
	"github.com/readroomapp/readroom-server/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	data := map[string]string{"message": "test"}
	JSON(w, http.StatusOK, data, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var result Envelope
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Error)
}

func TestJSON_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var result Envelope
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()

	Created(w, map[string]string{"id": "book-new"}, discardLogger())

	assert.Equal(t, http.StatusCreated, w.Code)

	var result Envelope
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestError_Generic(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusInternalServerError, "something went wrong", discardLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var result Envelope
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Equal(t, "something went wrong", result.Error)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "domain not found",
			err:        domainerrors.NotFound("shelf not found"),
			wantStatus: http.StatusNotFound,
			wantError:  "shelf not found",
		},
		{
			name:       "domain conflict",
			err:        domainerrors.Conflict("shelf name already in use"),
			wantStatus: http.StatusConflict,
			wantError:  "shelf name already in use",
		},
		{
			name:       "domain forbidden",
			err:        domainerrors.Forbidden("not your shelf"),
			wantStatus: http.StatusForbidden,
			wantError:  "not your shelf",
		},
		{
			name:       "store already exists",
			err:        store.ErrAlreadyExists,
			wantStatus: http.StatusConflict,
			wantError:  "resource already exists",
		},
		{
			name:       "wrapped store error",
			err:        fmt.Errorf("create membership: %w", store.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "resource not found",
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			HandleError(w, tt.err, discardLogger())

			assert.Equal(t, tt.wantStatus, w.Code)

			var result Envelope
			err := json.Unmarshal(w.Body.Bytes(), &result)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Equal(t, tt.wantError, result.Error)
		})
	}
}

func TestStatusCodeBoundary(t *testing.T) {
	tests := []struct {
		status          int
		expectedSuccess bool
	}{
		{200, true},
		{201, true},
		{204, true},
		{399, true},
		{400, false},
		{404, false},
		{500, false},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()

		JSON(w, tt.status, nil, discardLogger())

		var result Envelope
		err := json.Unmarshal(w.Body.Bytes(), &result)
		require.NoError(t, err)
		assert.Equal(t, tt.expectedSuccess, result.Success, "status %d", tt.status)
	}
}
