package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmedennaifer/aoc-haystack/internal/models"
	"github.com/ahmedennaifer/aoc-haystack/internal/types"
)

// Pipeline chains the five stages of one question-answering run. Stages
// execute strictly in sequence; each consumes the previous stage's full
// output before the next starts.
type Pipeline struct {
	fetcher   types.Fetcher
	converter types.Converter
	splitter  types.Splitter
	reranker  types.Reranker
	prompter  types.PromptBuilder
	generator types.Generator
	logger    *slog.Logger
}

type Option func(*Pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func New(fetcher types.Fetcher, converter types.Converter, splitter types.Splitter, reranker types.Reranker, prompter types.PromptBuilder, generator types.Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:   fetcher,
		converter: converter,
		splitter:  splitter,
		reranker:  reranker,
		prompter:  prompter,
		generator: generator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes fetch, convert, split, rerank, prompt and generate for one
// query over the given URLs. Per-URL fetch and conversion failures shrink
// the context; rerank and generation failures fail the run.
func (p *Pipeline) Run(ctx context.Context, urls []string, query string) (*models.Answer, error) {
	resources := p.fetcher.FetchAll(ctx, urls)
	p.logger.Info("fetched sources", "requested", len(urls), "failed", countFailed(resources))

	docs := p.converter.ConvertAll(resources)
	p.logger.Info("converted documents", "documents", len(docs))

	chunks := p.splitter.SplitAll(docs)
	p.logger.Info("split into chunks", "chunks", len(chunks))

	ranked, err := p.reranker.Rerank(ctx, query, chunks)
	if err != nil {
		return nil, fmt.Errorf("reranking chunks: %w", err)
	}

	if len(ranked) == 0 {
		p.logger.Warn("no context available, generating from the bare query", "query", query)
	}

	prompt, err := p.prompter.BuildPrompt(ranked, query)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	text, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &models.Answer{
		Text:    text,
		Sources: sourceURLs(ranked),
	}, nil
}

func countFailed(resources []models.FetchedResource) int {
	failed := 0
	for _, resource := range resources {
		if resource.Err != nil {
			failed++
		}
	}
	return failed
}

// sourceURLs lists the distinct URLs behind the ranked chunks in first
// appearance order.
func sourceURLs(chunks []models.Chunk) []string {
	var sources []string
	seen := make(map[string]bool)

	for _, chunk := range chunks {
		if !seen[chunk.URL] {
			sources = append(sources, chunk.URL)
			seen[chunk.URL] = true
		}
	}

	return sources
}
