package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Training to Failure</title><script>track();</script></head>
<body>
<nav>Home | Articles</nav>
<p>Training close to failure drives hypertrophy.</p>
<p>Leave one or two reps in reserve on compounds.</p>
<footer>Subscribe</footer>
</body>
</html>`

func TestScraper_FetchExtractsTitleAndParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	scraper := NewScraper(5 * time.Second)

	article, err := scraper.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Training to Failure", article.Title)
	assert.Contains(t, article.Text, "Training close to failure drives hypertrophy.")
	assert.Contains(t, article.Text, "Leave one or two reps in reserve on compounds.")
	assert.NotContains(t, article.Text, "track();")
	assert.NotContains(t, article.Text, "Home | Articles")
	assert.NotContains(t, article.Text, "Subscribe")
}

func TestScraper_FetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewScraper(5 * time.Second).Fetch(context.Background(), srv.URL)

	assert.Error(t, err)
}

func TestScraper_FetchBodyFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Bare Page</title></head><body>Plain text, no paragraphs.</body></html>`))
	}))
	defer srv.Close()

	article, err := NewScraper(5 * time.Second).Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Bare Page", article.Title)
	assert.Contains(t, article.Text, "Plain text, no paragraphs.")
}

func TestScraper_FetchNoText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Empty</title></head><body></body></html>`))
	}))
	defer srv.Close()

	_, err := NewScraper(5 * time.Second).Fetch(context.Background(), srv.URL)

	assert.Error(t, err)
}
