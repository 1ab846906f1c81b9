package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Scraper fetches web articles and extracts their readable text.
type Scraper struct {
	httpClient *http.Client
}

// NewScraper creates a scraper with a bounded fetch timeout.
func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Article is the extracted content of a web page.
type Article struct {
	Title string
	Text  string
}

// Fetch downloads a page and extracts its title and paragraph text. Script,
// style and nav noise is stripped before extraction.
func (s *Scraper) Fetch(ctx context.Context, url string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "coach-engine/1.0 (+knowledge ingestion)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = url
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) > 0 {
			paragraphs = append(paragraphs, text)
		}
	})

	text := strings.Join(paragraphs, "\n\n")
	if text == "" {
		// Some pages carry everything in the body without paragraph markup.
		text = strings.TrimSpace(doc.Find("body").Text())
	}
	if text == "" {
		return nil, fmt.Errorf("no extractable text at %s", url)
	}

	return &Article{Title: title, Text: text}, nil
}
