package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		APIKey      string  `yaml:"-"`
	} `yaml:"llm"`

	Reranker struct {
		Endpoint       string `yaml:"endpoint"`
		Model          string `yaml:"model"`
		TopN           int    `yaml:"top_n"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		APIKey         string `yaml:"-"`
	} `yaml:"reranker"`

	Fetcher struct {
		RateLimit      float64 `yaml:"rate_limit"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		UserAgent      string  `yaml:"user_agent"`
		MaxContentSize int64   `yaml:"max_content_size"`
	} `yaml:"fetcher"`

	Converter struct {
		Mode   string `yaml:"mode"`
		Format string `yaml:"format"`
	} `yaml:"converter"`

	Splitter struct {
		SplitLength  int `yaml:"split_length"`
		SplitOverlap int `yaml:"split_overlap"`
	} `yaml:"splitter"`
}

func LoadConfig(path string) (*Config, error) {
	// A local .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/aoc-haystack/config.yaml"),
			"/etc/aoc-haystack/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Model == "" {
		config.LLM.Model = "llama3-70b-8192"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 512
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}

	if config.Reranker.Endpoint == "" {
		config.Reranker.Endpoint = "https://api.cohere.ai/v1/rerank"
	}
	if config.Reranker.Model == "" {
		config.Reranker.Model = "rerank-english-v3.0"
	}
	if config.Reranker.TimeoutSeconds == 0 {
		config.Reranker.TimeoutSeconds = 30
	}

	if config.Fetcher.RateLimit == 0 {
		config.Fetcher.RateLimit = 2.0
	}
	if config.Fetcher.TimeoutSeconds == 0 {
		config.Fetcher.TimeoutSeconds = 30
	}
	if config.Fetcher.UserAgent == "" {
		config.Fetcher.UserAgent = "aoc-haystack/1.0"
	}
	if config.Fetcher.MaxContentSize == 0 {
		config.Fetcher.MaxContentSize = 10 << 20
	}

	if config.Converter.Mode == "" {
		config.Converter.Mode = "auto"
	}
	if config.Converter.Format == "" {
		config.Converter.Format = "text"
	}

	if config.Splitter.SplitLength == 0 {
		config.Splitter.SplitLength = 10
	}
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if baseURL := os.Getenv("GROQ_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if key := os.Getenv("COHERE_API_KEY"); key != "" {
		config.Reranker.APIKey = key
	}
}
