package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmwise/helmwise-backend/internal/infrastructure/config"
)

const searchPageFixture = `
<html><body>
<div class="s-main-slot">
  <div data-component-type="s-search-result" data-asin="B07KMVJJK7" class="s-result-item">
    <h2><a class="a-link-normal" href="/Giro-Register-MIPS-Adult-Helmet/dp/B07KMVJJK7"><span>Giro Register MIPS Adult Recreational Cycling Helmet</span></a></h2>
    <span class="a-price"><span class="a-offscreen">$64.95</span></span>
  </div>
  <div data-component-type="s-search-result" data-asin="" class="s-result-item">
    <h2><span>Sponsored placeholder</span></h2>
  </div>
  <div data-component-type="s-search-result" data-asin="B08XYZX123" class="s-result-item">
    <h2><a class="a-link-normal" href="/Bell-Z20-MIPS/dp/B08XYZX123"><span>Bell Z20 MIPS Road Bike Helmet</span></a></h2>
    <span class="a-price"><span class="a-offscreen">$1,299.00</span></span>
  </div>
  <div data-component-type="s-search-result" data-asin="B09NOPRICE" class="s-result-item">
    <h2><a class="a-link-normal" href="/dp/B09NOPRICE"><span>Unbranded Helmet</span></a></h2>
  </div>
</div>
</body></html>`

func TestParseSearchPage(t *testing.T) {
	results, err := ParseSearchPage(searchPageFixture, "https://www.amazon.com")
	require.NoError(t, err)
	require.Len(t, results, 3)

	first := results[0]
	assert.Equal(t, "B07KMVJJK7", first.ASIN)
	assert.Equal(t, "Giro Register MIPS Adult Recreational Cycling Helmet", first.Title)
	assert.Equal(t, "https://www.amazon.com/Giro-Register-MIPS-Adult-Helmet/dp/B07KMVJJK7", first.URL)
	assert.InDelta(t, 64.95, first.Price, 0.001)
	assert.Equal(t, 0, first.Position)

	assert.Equal(t, "B08XYZX123", results[1].ASIN)
	assert.InDelta(t, 1299.00, results[1].Price, 0.001)
	assert.Equal(t, 1, results[1].Position)

	// Missing price parses to zero rather than failing the card.
	assert.Equal(t, "B09NOPRICE", results[2].ASIN)
	assert.Zero(t, results[2].Price)
}

func TestParseSearchPageEmpty(t *testing.T) {
	results, err := ParseSearchPage("<html><body></body></html>", "https://www.amazon.com")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchUsesFetcherAndQuery(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		_, _ = w.Write([]byte(searchPageFixture))
	}))
	defer srv.Close()

	cfg := config.ScraperConfig{
		BaseURL:    srv.URL,
		UserAgent:  "test-agent",
		MinDelayMs: 0,
		MaxDelayMs: 0,
		TimeoutSec: 5,
	}
	s := New(cfg, NewHTTPFetcher(cfg), nil)

	results, err := s.Search(context.Background(), "giro register mips helmet")
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Contains(t, gotURL, "/s?")
	assert.Contains(t, gotURL, "giro+register+mips+helmet")
}

func TestHTTPFetcherSendsBrowserHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(config.ScraperConfig{UserAgent: "Mozilla/5.0 test", TimeoutSec: 5})
	_, err := f.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Mozilla/5.0 test", gotUA)
}

func TestHTTPFetcherNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(config.ScraperConfig{UserAgent: "ua", TimeoutSec: 5})
	_, err := f.FetchPage(context.Background(), srv.URL)
	assert.Error(t, err)
}
