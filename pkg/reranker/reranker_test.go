package reranker_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedennaifer/aoc-haystack/internal/models"
	"github.com/ahmedennaifer/aoc-haystack/pkg/reranker"
)

func threeChunks() []models.Chunk {
	return []models.Chunk{
		{ID: "a", URL: "https://example.com/a", Content: "alpha text"},
		{ID: "b", URL: "https://example.com/b", Content: "beta text"},
		{ID: "c", URL: "https://example.com/c", Content: "gamma text"},
	}
}

func TestRerankOrdersByScore(t *testing.T) {
	var gotReq struct {
		Model           string   `json:"model"`
		Query           string   `json:"query"`
		Documents       []string `json:"documents"`
		TopN            int      `json:"top_n"`
		ReturnDocuments bool     `json:"return_documents"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results":[{"index":2,"relevance_score":0.98},{"index":0,"relevance_score":0.41},{"index":1,"relevance_score":0.07}]}`)
	}))
	defer server.Close()

	r, err := reranker.NewWithConfig(reranker.RerankerConfig{
		APIKey:   "test-key",
		Endpoint: server.URL,
	})
	require.NoError(t, err)

	ranked, err := r.Rerank(context.Background(), "which chunk", threeChunks())
	require.NoError(t, err)

	assert.Equal(t, "which chunk", gotReq.Query)
	assert.Equal(t, []string{"alpha text", "beta text", "gamma text"}, gotReq.Documents)
	assert.Equal(t, "rerank-english-v3.0", gotReq.Model)
	assert.False(t, gotReq.ReturnDocuments)

	require.Len(t, ranked, 3)
	assert.Equal(t, "c", ranked[0].ID)
	assert.Equal(t, "a", ranked[1].ID)
	assert.Equal(t, "b", ranked[2].ID)
	assert.InDelta(t, 0.98, ranked[0].Score, 1e-9)
	assert.InDelta(t, 0.41, ranked[1].Score, 1e-9)
	assert.InDelta(t, 0.07, ranked[2].Score, 1e-9)
}

func TestRerankIsAPermutation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"index":1,"relevance_score":0.9},{"index":2,"relevance_score":0.5},{"index":0,"relevance_score":0.1}]}`)
	}))
	defer server.Close()

	r, err := reranker.NewWithConfig(reranker.RerankerConfig{APIKey: "k", Endpoint: server.URL})
	require.NoError(t, err)

	chunks := threeChunks()
	ranked, err := r.Rerank(context.Background(), "q", chunks)
	require.NoError(t, err)
	require.Len(t, ranked, len(chunks))

	seen := map[string]bool{}
	for _, chunk := range ranked {
		seen[chunk.ID] = true
	}
	for _, chunk := range chunks {
		assert.True(t, seen[chunk.ID], "chunk %s missing after rerank", chunk.ID)
	}
}

func TestRerankEmptyInputSkipsAPI(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	r, err := reranker.NewWithConfig(reranker.RerankerConfig{APIKey: "k", Endpoint: server.URL})
	require.NoError(t, err)

	ranked, err := r.Rerank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.Zero(t, calls)
}

func TestRerankTopN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TopN int `json:"top_n"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.TopN)

		fmt.Fprint(w, `{"results":[{"index":2,"relevance_score":0.98},{"index":0,"relevance_score":0.41}]}`)
	}))
	defer server.Close()

	r, err := reranker.NewWithConfig(reranker.RerankerConfig{APIKey: "k", Endpoint: server.URL, TopN: 2})
	require.NoError(t, err)

	ranked, err := r.Rerank(context.Background(), "q", threeChunks())
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "c", ranked[0].ID)
	assert.Equal(t, "a", ranked[1].ID)
}

func TestRerankRequiresAPIKey(t *testing.T) {
	_, err := reranker.NewWithConfig(reranker.RerankerConfig{})
	assert.Error(t, err)
}

func TestRerankErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api token"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	r, err := reranker.NewWithConfig(reranker.RerankerConfig{APIKey: "bad", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = r.Rerank(context.Background(), "q", threeChunks())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestRerankRejectsInvalidIndexes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"index":7,"relevance_score":0.9}]}`)
	}))
	defer server.Close()

	r, err := reranker.NewWithConfig(reranker.RerankerConfig{APIKey: "k", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = r.Rerank(context.Background(), "q", threeChunks())
	assert.Error(t, err)
}
