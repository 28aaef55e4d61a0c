package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahmedennaifer/aoc-haystack/internal/models"
	"golang.org/x/time/rate"
)

type FetcherConfig struct {
	RateLimit      float64 // requests per second
	Timeout        time.Duration
	UserAgent      string
	MaxContentSize int64
	OnProgress     func(url string)
	Logger         *slog.Logger
}

type Fetcher struct {
	config  FetcherConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewWithConfig(config FetcherConfig) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if config.UserAgent == "" {
		config.UserAgent = "aoc-haystack/1.0"
	}
	if config.MaxContentSize == 0 {
		config.MaxContentSize = 10 << 20 // 10 MiB
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Fetcher{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		logger:  config.Logger,
	}
}

func New() *Fetcher {
	return NewWithConfig(FetcherConfig{})
}

// Fetch retrieves a single URL and returns its raw body.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (models.FetchedResource, error) {
	resource := models.FetchedResource{URL: urlStr}

	if err := f.limiter.Wait(ctx); err != nil {
		resource.Err = err
		return resource, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		resource.Err = fmt.Errorf("building request for %s: %w", urlStr, err)
		return resource, resource.Err
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		resource.Err = fmt.Errorf("fetching %s: %w", urlStr, err)
		return resource, resource.Err
	}
	defer resp.Body.Close()

	resource.StatusCode = resp.StatusCode
	resource.ContentType = resp.Header.Get("Content-Type")

	if resp.StatusCode != http.StatusOK {
		resource.Err = fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
		return resource, resource.Err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxContentSize+1))
	if err != nil {
		resource.Err = fmt.Errorf("reading body of %s: %w", urlStr, err)
		return resource, resource.Err
	}
	if int64(len(body)) > f.config.MaxContentSize {
		resource.Err = fmt.Errorf("content of %s exceeds %d bytes", urlStr, f.config.MaxContentSize)
		return resource, resource.Err
	}

	resource.Body = body
	return resource, nil
}

// FetchAll retrieves every URL in order. A failed fetch is recorded on its
// resource and does not stop the remaining URLs. The result keeps the input
// order and always has one entry per URL.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []models.FetchedResource {
	resources := make([]models.FetchedResource, 0, len(urls))

	for _, urlStr := range urls {
		resource, err := f.Fetch(ctx, urlStr)
		if err != nil {
			f.logger.Warn("fetch failed", "url", urlStr, "error", err)
		} else {
			f.logger.Debug("fetched", "url", urlStr, "bytes", len(resource.Body))
		}
		resources = append(resources, resource)

		if f.config.OnProgress != nil {
			f.config.OnProgress(urlStr)
		}
	}

	return resources
}
