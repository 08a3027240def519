package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/taskdesk-api/internal/api/shared"
	"github.com/taskdesk/taskdesk-api/internal/platform/logger"
)

func TestTraceMiddleware(t *testing.T) {
	logs, log := logger.NewTestLogger(t)

	var seen string
	handler := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req = req.WithContext(logger.WithLogger(req.Context(), log))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(TraceIDHeader))

	entries := logs.EntriesWithMessage(t, "inside handler")
	require.Len(t, entries, 1)
	assert.Equal(t, seen, entries[0]["trace_id"])
}

func TestRequestLogger(t *testing.T) {
	logs, log := logger.NewTestLogger(t)

	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/tasks", nil)
	req = req.WithContext(logger.WithLogger(req.Context(), log))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.EntriesWithMessage(t, "http request")
	require.Len(t, entries, 1)
	assert.Equal(t, "POST", entries[0]["method"])
	assert.Equal(t, "/tasks", entries[0]["path"])
	assert.Equal(t, float64(http.StatusCreated), entries[0]["status"])
	assert.Equal(t, float64(5), entries[0]["bytes"])
}
