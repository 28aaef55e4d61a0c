package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcherDefaults(t *testing.T) {
	f := New()

	assert.Equal(t, 30*time.Second, f.config.Timeout)
	assert.Equal(t, 2.0, f.config.RateLimit)
	assert.Equal(t, int64(10<<20), f.config.MaxContentSize)
	assert.NotEmpty(t, f.config.UserAgent)
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>hello</p></body></html>"))
	}))
	defer server.Close()

	f := NewWithConfig(FetcherConfig{RateLimit: 100})

	resource, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, resource.URL)
	assert.Equal(t, http.StatusOK, resource.StatusCode)
	assert.Contains(t, string(resource.Body), "hello")
	assert.Contains(t, resource.ContentType, "text/html")
}

func TestFetchAllKeepsOrderAndRecordsFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/one", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("page one"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/two", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("page two"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var progressed []string
	f := NewWithConfig(FetcherConfig{
		RateLimit: 100,
		OnProgress: func(url string) {
			progressed = append(progressed, url)
		},
	})

	urls := []string{server.URL + "/one", server.URL + "/missing", server.URL + "/two"}
	resources := f.FetchAll(context.Background(), urls)

	require.Len(t, resources, 3)
	for i, resource := range resources {
		assert.Equal(t, urls[i], resource.URL)
	}

	assert.NoError(t, resources[0].Err)
	assert.Error(t, resources[1].Err)
	assert.NoError(t, resources[2].Err)

	assert.Contains(t, string(resources[0].Body), "page one")
	assert.Contains(t, string(resources[2].Body), "page two")

	// Progress fires for failed URLs too
	assert.Equal(t, urls, progressed)
}

func TestFetchContentSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	f := NewWithConfig(FetcherConfig{RateLimit: 100, MaxContentSize: 1024})

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestFetchAllCancelledContext(t *testing.T) {
	f := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resources := f.FetchAll(ctx, []string{"http://127.0.0.1:1/unreachable"})
	require.Len(t, resources, 1)
	assert.Error(t, resources[0].Err)
}
