package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestWriteError_FlatBody(t *testing.T) {
	w := httptest.NewRecorder()
	WriteBadRequest(w, "Email is required")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := w.Body.Bytes()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "Email is required", resp.Error)

	// The body must be exactly {"error": ...}, nothing else.
	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Len(t, raw, 1)
}

func TestWriteTooManyRequests_RetryAfter(t *testing.T) {
	w := httptest.NewRecorder()
	WriteTooManyRequests(w, "Too many login attempts. Please try again later.", 90*time.Second)

	assert.Equal(t, 429, w.Code)
	assert.Equal(t, "90", w.Header().Get("Retry-After"))
}

func TestWriteTooManyRequests_RoundsUp(t *testing.T) {
	w := httptest.NewRecorder()
	WriteTooManyRequests(w, "slow down", 1500*time.Millisecond)

	assert.Equal(t, "2", w.Header().Get("Retry-After"))
}

func TestWriteStatusHelpers(t *testing.T) {
	cases := []struct {
		name   string
		write  func(w *httptest.ResponseRecorder)
		status int
	}{
		{"unauthorized", func(w *httptest.ResponseRecorder) { WriteUnauthorized(w, "Not authenticated") }, 401},
		{"forbidden", func(w *httptest.ResponseRecorder) { WriteForbidden(w, "Admin access required") }, 403},
		{"not found", func(w *httptest.ResponseRecorder) { WriteNotFound(w, "User not found") }, 404},
		{"conflict", func(w *httptest.ResponseRecorder) { WriteConflict(w, "User with that email or phone already exists") }, 409},
		{"internal", func(w *httptest.ResponseRecorder) { WriteInternalError(w, "Internal server error") }, 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tc.write(w)
			assert.Equal(t, tc.status, w.Code)
			assert.NotEmpty(t, decodeError(t, w).Error)
		})
	}
}
