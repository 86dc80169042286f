// internal/source/client_test.go
package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "commit-watcher/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// setupTestClient creates a httptest server and a client pointing to it.
func setupTestClient(t *testing.T, handler http.Handler, opts ...ClientOption) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/r/rust_reboot", testLogger(), opts...), server
}

func TestClient_Fetch(t *testing.T) {
	t.Run("returns the page body", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/r/rust_reboot", r.URL.Path)
			assert.Equal(t, "watcher-test/2.0", r.Header.Get("User-Agent"))
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "<html>ok</html>")
		})
		client, _ := setupTestClient(t, handler, WithUserAgent("watcher-test/2.0"))

		body, err := client.Fetch(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", string(body))
		assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount), "fetch must not retry")
	})

	t.Run("non-2xx status is a fetch error", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		client, server := setupTestClient(t, handler)

		body, err := client.Fetch(context.Background())

		assert.Nil(t, body)
		var fetchErr *custom_errors.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
		assert.Equal(t, server.URL+"/r/rust_reboot", fetchErr.URL)
		assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
	})

	t.Run("connection failure is a fetch error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()
		client := NewClient(url, testLogger())

		_, err := client.Fetch(context.Background())

		var fetchErr *custom_errors.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Zero(t, fetchErr.StatusCode)
		assert.Error(t, fetchErr.Unwrap())
	})

	t.Run("timeout is a fetch error", func(t *testing.T) {
		release := make(chan struct{})
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		client, _ := setupTestClient(t, handler, WithTimeout(50*time.Millisecond))
		defer close(release)

		_, err := client.Fetch(context.Background())

		var fetchErr *custom_errors.FetchError
		require.ErrorAs(t, err, &fetchErr)
	})

	t.Run("cancelled context is a fetch error", func(t *testing.T) {
		client, _ := setupTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Fetch(ctx)

		var fetchErr *custom_errors.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
