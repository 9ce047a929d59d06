package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewEmbeddingService(Config{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		Model:             "text-embedding-3-small",
		RequestsPerSecond: 1000, // no throttling in tests
	})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := NewEmbeddingService(Config{})
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		svc, err := NewEmbeddingService(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, svc.ModelName())
		assert.Equal(t, 1536, svc.Dimensions())
	})

	t.Run("large model dimensions", func(t *testing.T) {
		svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
		require.NoError(t, err)
		assert.Equal(t, 3072, svc.Dimensions())
	})
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	t.Run("orders vectors by response index", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/embeddings", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req embeddingRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{"alpha", "beta"}, req.Input)

			// Deliberately out of order
			resp := map[string]any{
				"data": []map[string]any{
					{"index": 1, "embedding": []float64{0.3, 0.4}},
					{"index": 0, "embedding": []float64{0.1, 0.2}},
				},
			}
			json.NewEncoder(w).Encode(resp) //nolint:errcheck
		})

		got, err := svc.EmbedBatch(context.Background(), []string{"alpha", "beta"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, []float32{0.1, 0.2}, got[0])
		assert.Equal(t, []float32{0.3, 0.4}, got[1])
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		got, err := svc.EmbedBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("retries on rate limit", func(t *testing.T) {
		var calls atomic.Int32
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			resp := map[string]any{
				"data": []map[string]any{{"index": 0, "embedding": []float64{0.5}}},
			}
			json.NewEncoder(w).Encode(resp) //nolint:errcheck
		})

		got, err := svc.EmbedBatch(context.Background(), []string{"alpha"})
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5}, got[0])
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"error": map[string]any{"message": "bad key", "type": "auth"},
			})
		})

		_, err := svc.EmbedBatch(context.Background(), []string{"alpha"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad key")
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestEmbeddingService_Embed(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float64{1, 2, 3}}},
		}
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	})

	got, err := svc.Embed(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, got)
}

func TestEmbeddingService_Ping(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		})
		assert.NoError(t, svc.Ping(context.Background()))
	})

	t.Run("auth failure", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		assert.Error(t, svc.Ping(context.Background()))
	})
}
