package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahmedennaifer/aoc-haystack/internal/models"
)

type RerankerConfig struct {
	APIKey   string
	Model    string
	Endpoint string
	TopN     int // 0 keeps every chunk
	Timeout  time.Duration
	Logger   *slog.Logger
}

type Reranker struct {
	config RerankerConfig
	client *http.Client
	logger *slog.Logger
}

func NewWithConfig(config RerankerConfig) (*Reranker, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("rerank API key is required")
	}
	if config.Model == "" {
		config.Model = "rerank-english-v3.0"
	}
	if config.Endpoint == "" {
		config.Endpoint = "https://api.cohere.ai/v1/rerank"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.TopN < 0 {
		config.TopN = 0
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Reranker{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: config.Logger,
	}, nil
}

type rerankRequest struct {
	Model           string   `json:"model"`
	Query           string   `json:"query"`
	Documents       []string `json:"documents"`
	TopN            int      `json:"top_n,omitempty"`
	ReturnDocuments bool     `json:"return_documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank scores every chunk against the query and returns the same chunks
// reordered by descending relevance, scores attached. An empty chunk list
// is returned as-is without calling the API.
func (r *Reranker) Rerank(ctx context.Context, query string, chunks []models.Chunk) ([]models.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	documents := make([]string, len(chunks))
	for i, chunk := range chunks {
		documents[i] = chunk.Content
	}

	payload, err := json.Marshal(rerankRequest{
		Model:           r.config.Model,
		Query:           query,
		Documents:       documents,
		TopN:            r.config.TopN,
		ReturnDocuments: false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.config.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling rerank endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("rerank endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var result rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding rerank response: %w", err)
	}

	ranked := make([]models.Chunk, 0, len(result.Results))
	seen := make(map[int]bool, len(result.Results))
	for _, res := range result.Results {
		if res.Index < 0 || res.Index >= len(chunks) || seen[res.Index] {
			return nil, fmt.Errorf("rerank response referenced invalid document index %d", res.Index)
		}
		seen[res.Index] = true

		chunk := chunks[res.Index]
		chunk.Score = res.RelevanceScore
		ranked = append(ranked, chunk)
	}

	if r.config.TopN == 0 && len(ranked) != len(chunks) {
		return nil, fmt.Errorf("rerank response covered %d of %d documents", len(ranked), len(chunks))
	}
	if r.config.TopN > 0 && len(ranked) > r.config.TopN {
		ranked = ranked[:r.config.TopN]
	}

	r.logger.Debug("reranked chunks", "chunks", len(chunks), "kept", len(ranked))
	return ranked, nil
}
