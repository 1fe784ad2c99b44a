package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title> Go Concurrency Patterns </title>
  <meta name="description" content="Pipelines and cancellation">
  <meta name="keywords" content="go, channels">
  <meta name="author" content="Gopher">
  <style>body { color: red; }</style>
</head>
<body>
  <header>Site navigation</header>
  <h1>Pipelines</h1>
  <p>Channels   connect
     stages.</p>
  <script>console.log("hidden")</script>
  <noscript>enable js</noscript>
  <footer>Copyright</footer>
</body>
</html>`

func TestFetch_ExtractsVisibleTextAndMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, samplePage)
	}))
	defer srv.Close()

	page, err := New(5*time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Go Concurrency Patterns", page.Title)
	assert.Equal(t, "Pipelines Channels connect stages.", page.VisibleText)
	assert.Equal(t, len(page.VisibleText), page.TextLength)
	assert.Equal(t, "Pipelines and cancellation", page.MetaDescription)
	assert.Equal(t, "go, channels", page.MetaKeywords)
	assert.Equal(t, "Gopher", page.MetaAuthor)
	assert.False(t, page.Timestamp.IsZero())
}

func TestFetch_TruncatesLongText(t *testing.T) {
	body := "<html><body><p>" + strings.Repeat("a", 4000) + "</p></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	page, err := New(5*time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, 4000, page.TextLength)
	assert.Len(t, page.VisibleText, 3003)
	assert.True(t, strings.HasSuffix(page.VisibleText, "..."))
}

func TestFetch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	s := New(5 * time.Second)

	_, err := s.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)

	_, err = s.Fetch(context.Background(), "ftp://example.com/file")
	assert.Error(t, err)
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{"news.bbc.co.uk", "bbc.co.uk"},
		{"www.Example.com", "example.com"},
		{"example.com", "example.com"},
		{"localhost", "localhost"},
	}

	for _, tc := range tests {
		t.Run(tc.host, func(t *testing.T) {
			assert.Equal(t, tc.expected, RegistrableDomain(tc.host))
		})
	}
}

func TestFetch_AcceptsAny2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		fmt.Fprint(w, "<html><body><p>cached copy</p></body></html>")
	}))
	defer srv.Close()

	page, err := New(5*time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "cached copy", page.VisibleText)
}

func TestFetch_HonorsCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>late</body></html>")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(5*time.Second).Fetch(ctx, srv.URL)
	assert.Error(t, err)
}
