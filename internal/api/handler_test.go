// internal/api/handler_test.go
package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"commit-watcher/internal/model"
	"commit-watcher/internal/poller"
)

// MockStatus is a mock of the StatusProvider interface.
type MockStatus struct {
	mock.Mock
}

func (m *MockStatus) LastSeenID() int64 {
	return m.Called().Get(0).(int64)
}

func (m *MockStatus) Keywords() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockStatus) Stats() poller.Stats {
	return m.Called().Get(0).(poller.Stats)
}

func newTestRouter(status StatusProvider) http.Handler {
	return NewRouter(status, "https://commits.example/r/rust_reboot", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(new(MockStatus))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetStatus(t *testing.T) {
	polledAt := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	t.Run("reports tracker and stats", func(t *testing.T) {
		mockS := new(MockStatus)
		mockS.On("LastSeenID").Return(int64(612345))
		mockS.On("Keywords").Return([]string{"turret"})
		mockS.On("Stats").Return(poller.Stats{
			LastPollAt:   &polledAt,
			Cycles:       12,
			Notified:     2,
			Filtered:     1,
			FetchErrors:  3,
			LastOutcome:  "unchanged",
			LatestCommit: &model.Commit{ID: 612345, Author: "Helk", Message: "Turret fix"},
		})
		rec := httptest.NewRecorder()

		newTestRouter(mockS).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got StatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "https://commits.example/r/rust_reboot", got.SourceURL)
		assert.Equal(t, int64(612345), got.LastSeenID)
		assert.Equal(t, []string{"turret"}, got.Keywords)
		assert.True(t, got.Filtered)
		assert.Equal(t, int64(12), got.Stats.Cycles)
		assert.Equal(t, int64(3), got.Stats.FetchErrors)
		assert.Equal(t, "unchanged", got.Stats.LastOutcome)
		require.NotNil(t, got.Stats.LatestCommit)
		assert.Equal(t, "Helk", got.Stats.LatestCommit.Author)
		mockS.AssertExpectations(t)
	})

	t.Run("unfiltered poller reports an empty keyword list", func(t *testing.T) {
		mockS := new(MockStatus)
		mockS.On("LastSeenID").Return(int64(0))
		mockS.On("Keywords").Return([]string(nil))
		mockS.On("Stats").Return(poller.Stats{})
		rec := httptest.NewRecorder()

		newTestRouter(mockS).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var raw map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		assert.Equal(t, []any{}, raw["keywords"])
		assert.Equal(t, false, raw["filtered"])
	})
}

func TestUnknownRoutes(t *testing.T) {
	router := newTestRouter(new(MockStatus))

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/commits", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/status", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
