package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/helmwise/helmwise-backend/internal/infrastructure/config"
)

// BrowserFetcher renders pages in a headless browser. Used with the
// --headless flag when plain HTTP fetches come back without the
// JavaScript-populated result grid.
type BrowserFetcher struct {
	timeout time.Duration
}

// NewBrowserFetcher creates a headless browser fetcher.
func NewBrowserFetcher(cfg config.ScraperConfig) *BrowserFetcher {
	return &BrowserFetcher{timeout: time.Duration(cfg.TimeoutSec) * time.Second}
}

// FetchPage implements Fetcher.
func (b *BrowserFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}
	return html, nil
}
