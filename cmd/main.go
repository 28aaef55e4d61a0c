package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/ahmedennaifer/aoc-haystack/internal/logger"
	cfgPkg "github.com/ahmedennaifer/aoc-haystack/pkg/config"
	"github.com/ahmedennaifer/aoc-haystack/pkg/converter"
	"github.com/ahmedennaifer/aoc-haystack/pkg/fetcher"
	"github.com/ahmedennaifer/aoc-haystack/pkg/llm"
	"github.com/ahmedennaifer/aoc-haystack/pkg/pipeline"
	"github.com/ahmedennaifer/aoc-haystack/pkg/reranker"
	"github.com/ahmedennaifer/aoc-haystack/pkg/splitter"
)

// The pages every run answers from.
var sourceURLs = []string{
	"https://haystack.deepset.ai/blog/extracting-metadata-filter",
	"https://haystack.deepset.ai/blog/query-expansion",
	"https://haystack.deepset.ai/blog/query-decomposition",
	"https://haystack.deepset.ai/cookbook/metadata_enrichment",
}

const defaultQuery = "Which methods can I use to transform query for better retrieval?"

func main() {
	cfg, query, err := parseFlags()
	if err != nil {
		log.Fatal(err)
	}

	if err := run(cfg, query); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() (*cfgPkg.Config, string, error) {
	var (
		configPath   string
		query        string
		model        string
		baseURL      string
		maxTokens    int
		temperature  float64
		topN         int
		splitLength  int
		splitOverlap int
		rateLimit    float64
		mode         string
		format       string
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&query, "query", defaultQuery, "Question to answer")
	flag.StringVar(&model, "model", "", "Generation model")
	flag.StringVar(&baseURL, "base-url", "", "OpenAI-compatible endpoint for generation")
	flag.IntVar(&maxTokens, "max-tokens", 0, "Maximum tokens in the answer")
	flag.Float64Var(&temperature, "temperature", 0, "Generation temperature")
	flag.IntVar(&topN, "top-n", 0, "Keep only the N best chunks, 0 keeps all")
	flag.IntVar(&splitLength, "split-length", 0, "Sentences per chunk")
	flag.IntVar(&splitOverlap, "split-overlap", 0, "Sentences shared between consecutive chunks")
	flag.Float64Var(&rateLimit, "rate-limit", 0, "Fetch rate limit in requests per second")
	flag.StringVar(&mode, "mode", "", "Content extraction mode: auto or readability")
	flag.StringVar(&format, "format", "", "Document format: text or markdown")
	flag.Parse()

	cfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		return nil, "", err
	}

	// Flags override the config file only when set on the command line.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.LLM.Model = model
		case "base-url":
			cfg.LLM.BaseURL = baseURL
		case "max-tokens":
			cfg.LLM.MaxTokens = maxTokens
		case "temperature":
			cfg.LLM.Temperature = temperature
		case "top-n":
			cfg.Reranker.TopN = topN
		case "split-length":
			cfg.Splitter.SplitLength = splitLength
		case "split-overlap":
			cfg.Splitter.SplitOverlap = splitOverlap
		case "rate-limit":
			cfg.Fetcher.RateLimit = rateLimit
		case "mode":
			cfg.Converter.Mode = mode
		case "format":
			cfg.Converter.Format = format
		}
	})

	return cfg, query, nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(cfg *cfgPkg.Config, query string) error {
	logg := logger.New("aoc-haystack")

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("  %s", e.Error())
		}
		return fmt.Errorf("invalid configuration")
	}

	conv, err := converter.NewWithConfig(converter.ConverterConfig{
		Mode:   cfg.Converter.Mode,
		Format: cfg.Converter.Format,
		Logger: logg,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize converter: %v", err)
	}

	rank, err := reranker.NewWithConfig(reranker.RerankerConfig{
		APIKey:   cfg.Reranker.APIKey,
		Model:    cfg.Reranker.Model,
		Endpoint: cfg.Reranker.Endpoint,
		TopN:     cfg.Reranker.TopN,
		Timeout:  time.Duration(cfg.Reranker.TimeoutSeconds) * time.Second,
		Logger:   logg,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize reranker: %v", err)
	}

	gen, err := llm.NewGeneratorWithConfig(llm.GeneratorConfig{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Logger:      logg,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %v", err)
	}

	color.Blue("\nAnswering from %d web sources\n", len(sourceURLs))

	fetchBar := getProgressBar(len(sourceURLs), "📄 Fetching pages...")
	var genSpinner *progressbar.ProgressBar
	fetched := 0

	fetch := fetcher.NewWithConfig(fetcher.FetcherConfig{
		RateLimit:      cfg.Fetcher.RateLimit,
		Timeout:        time.Duration(cfg.Fetcher.TimeoutSeconds) * time.Second,
		UserAgent:      cfg.Fetcher.UserAgent,
		MaxContentSize: cfg.Fetcher.MaxContentSize,
		Logger:         logg,
		OnProgress: func(url string) {
			fetched++
			fetchBar.Add(1)
			if fetched == len(sourceURLs) {
				fetchBar.Finish()
				fmt.Println()
				genSpinner = getSpinner("🤖 Reranking and generating...")
			}
		},
	})

	split := splitter.NewWithConfig(splitter.SplitterConfig{
		SplitLength:  cfg.Splitter.SplitLength,
		SplitOverlap: cfg.Splitter.SplitOverlap,
		Logger:       logg,
	})

	prompter := llm.NewPromptBuilder(llm.PromptConfig{})

	pipe := pipeline.New(fetch, conv, split, rank, prompter, gen, pipeline.WithLogger(logg))

	answer, err := pipe.Run(context.Background(), sourceURLs, query)
	if genSpinner != nil {
		genSpinner.Finish()
		fmt.Println()
	}
	if err != nil {
		return err
	}

	answerPrompt := color.New(color.FgCyan).PrintfFunc()
	color.Green("\n✓ Answer\n")
	answerPrompt("%s\n", answer.Text)

	if len(answer.Sources) > 0 {
		color.Blue("\nSources:")
		for _, src := range answer.Sources {
			fmt.Printf("  - %s\n", src)
		}
	}

	return nil
}
