package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// GeneratorConfig represents the configuration for the answer generator.
type GeneratorConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	BaseURL     string // OpenAI-compatible endpoint
	APIKey      string
	Logger      *slog.Logger
}

// Generator turns a fully rendered prompt into an answer through an
// OpenAI-compatible chat completion endpoint.
type Generator struct {
	config GeneratorConfig
	llm    llms.Model
	logger *slog.Logger
}

// NewGeneratorWithConfig creates a new Generator with the given configuration.
func NewGeneratorWithConfig(config GeneratorConfig) (*Generator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("generation API key is required")
	}
	if config.Model == "" {
		config.Model = "llama3-70b-8192"
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 512
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.groq.com/openai/v1"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	llm, err := openai.New(
		openai.WithModel(config.Model),
		openai.WithBaseURL(config.BaseURL),
		openai.WithToken(config.APIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &Generator{
		config: config,
		llm:    llm,
		logger: config.Logger,
	}, nil
}

// Generate sends the prompt as a single user message and returns the text
// of the first candidate completion.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	opts := []llms.CallOption{llms.WithMaxTokens(g.config.MaxTokens)}
	if g.config.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(g.config.Temperature))
	}

	response, err := g.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("generation error: %w", err)
	}
	if response == nil || len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices in response")
	}

	g.logger.Debug("generation finished", "stop_reason", response.Choices[0].StopReason)
	return response.Choices[0].Content, nil
}
