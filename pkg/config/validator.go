package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	if c.LLM.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.api_key",
			Message: "GROQ_API_KEY environment variable is required",
		})
	}

	if c.LLM.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "generation base URL is required",
		})
	} else if _, err := url.Parse(c.LLM.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid generation base URL",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 8192 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 8192",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	// Validate Reranker config
	if c.Reranker.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "reranker.api_key",
			Message: "COHERE_API_KEY environment variable is required",
		})
	}

	if c.Reranker.Endpoint == "" {
		errors = append(errors, ValidationError{
			Field:   "reranker.endpoint",
			Message: "rerank endpoint is required",
		})
	} else if _, err := url.Parse(c.Reranker.Endpoint); err != nil {
		errors = append(errors, ValidationError{
			Field:   "reranker.endpoint",
			Message: "invalid rerank endpoint",
		})
	}

	if c.Reranker.TopN < 0 {
		errors = append(errors, ValidationError{
			Field:   "reranker.top_n",
			Message: "top_n must be non-negative",
		})
	}

	if c.Reranker.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "reranker.timeout_seconds",
			Message: "timeout_seconds must be positive",
		})
	}

	// Validate Fetcher config
	if c.Fetcher.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "fetcher.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Fetcher.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "fetcher.timeout_seconds",
			Message: "timeout_seconds must be positive",
		})
	}

	if c.Fetcher.MaxContentSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "fetcher.max_content_size",
			Message: "max_content_size must be positive",
		})
	}

	// Validate Converter config
	switch c.Converter.Mode {
	case "auto", "readability":
	default:
		errors = append(errors, ValidationError{
			Field:   "converter.mode",
			Message: fmt.Sprintf("unknown mode: %s", c.Converter.Mode),
		})
	}

	switch c.Converter.Format {
	case "text", "markdown":
	default:
		errors = append(errors, ValidationError{
			Field:   "converter.format",
			Message: fmt.Sprintf("unknown format: %s", c.Converter.Format),
		})
	}

	// Validate Splitter config
	if c.Splitter.SplitLength < 1 {
		errors = append(errors, ValidationError{
			Field:   "splitter.split_length",
			Message: "split_length must be positive",
		})
	}

	if c.Splitter.SplitOverlap < 0 || c.Splitter.SplitOverlap >= c.Splitter.SplitLength {
		errors = append(errors, ValidationError{
			Field:   "splitter.split_overlap",
			Message: "split_overlap must be non-negative and less than split_length",
		})
	}

	return errors
}
