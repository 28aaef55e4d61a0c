package types

import (
	"context"

	"github.com/ahmedennaifer/aoc-haystack/internal/models"
)

// Stage contracts wired together by the pipeline. Each stage is a thin
// adapter; the pipeline owns ordering and error propagation.

type Fetcher interface {
	FetchAll(ctx context.Context, urls []string) []models.FetchedResource
}

type Converter interface {
	ConvertAll(resources []models.FetchedResource) []models.Document
}

type Splitter interface {
	SplitAll(docs []models.Document) []models.Chunk
}

type Reranker interface {
	Rerank(ctx context.Context, query string, chunks []models.Chunk) ([]models.Chunk, error)
}

type PromptBuilder interface {
	BuildPrompt(chunks []models.Chunk, query string) (string, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
