// Package scraper fetches Amazon search result pages and extracts ASIN
// candidates from them. It exists for catalog entries PA-API cannot
// match by keyword; the parse is best effort against Amazon's public
// search markup.
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/helmwise/helmwise-backend/internal/infrastructure/config"
)

// SearchResult is one parsed result card, in page order.
type SearchResult struct {
	ASIN     string
	Title    string
	URL      string
	Price    float64
	Position int
}

// Fetcher retrieves a raw HTML page. Implemented by the plain HTTP
// fetcher and the headless browser fetcher.
type Fetcher interface {
	FetchPage(ctx context.Context, pageURL string) (string, error)
}

// Scraper searches Amazon and parses result pages.
type Scraper struct {
	cfg     config.ScraperConfig
	fetcher Fetcher
	logger  *slog.Logger
	rng     *rand.Rand
}

// New creates a scraper using the given fetcher (see NewHTTPFetcher and
// NewBrowserFetcher).
func New(cfg config.ScraperConfig, fetcher Fetcher, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Search fetches the search results page for the query and returns the
// parsed result cards. A randomized delay runs before each fetch to
// respect the site's rate expectations.
func (s *Scraper) Search(ctx context.Context, query string) ([]SearchResult, error) {
	s.throttle(ctx)

	pageURL := fmt.Sprintf("%s/s?%s", strings.TrimRight(s.cfg.BaseURL, "/"),
		url.Values{"k": {query}}.Encode())

	html, err := s.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}

	results, err := ParseSearchPage(html, s.cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("search page parsed", "query", query, "results", len(results))
	return results, nil
}

// throttle sleeps a randomized delay within the configured bounds.
func (s *Scraper) throttle(ctx context.Context) {
	span := s.cfg.MaxDelayMs - s.cfg.MinDelayMs
	delay := s.cfg.MinDelayMs
	if span > 0 {
		delay += s.rng.Intn(span + 1)
	}

	timer := time.NewTimer(time.Duration(delay) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// ParseSearchPage extracts result cards from Amazon search HTML. Cards
// are identified by their data-asin attribute; sponsored placeholders
// (empty data-asin) are skipped.
func ParseSearchPage(html, baseURL string) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var results []SearchResult
	doc.Find("[data-component-type=s-search-result], div.s-result-item").Each(func(_ int, sel *goquery.Selection) {
		asin, ok := sel.Attr("data-asin")
		if !ok || asin == "" {
			return
		}

		title := strings.TrimSpace(sel.Find("h2").First().Text())
		if title == "" {
			title = strings.TrimSpace(sel.Find("span.a-text-normal").First().Text())
		}

		href, _ := sel.Find("h2 a, a.a-link-normal").First().Attr("href")
		if href != "" && strings.HasPrefix(href, "/") {
			href = strings.TrimRight(baseURL, "/") + href
		}

		price := parsePrice(
			sel.Find("span.a-price > span.a-offscreen").First().Text(),
		)

		results = append(results, SearchResult{
			ASIN:     asin,
			Title:    title,
			URL:      href,
			Price:    price,
			Position: len(results),
		})
	})

	return results, nil
}

// parsePrice turns "$59.99" into 59.99; unparseable prices become 0.
func parsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	var v float64
	if _, err := fmt.Sscanf(s, "%f", &v); err != nil {
		return 0
	}
	return v
}

// HTTPFetcher fetches pages with a plain HTTP client and browser-like
// headers.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates the default fetcher.
func NewHTTPFetcher(cfg config.ScraperConfig) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		userAgent: cfg.UserAgent,
	}
}

// FetchPage implements Fetcher.
func (f *HTTPFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
