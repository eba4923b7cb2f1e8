// Package paapi is a minimal Amazon Product Advertising API (PA-API 5)
// client. The API is treated as an opaque collaborator returning product
// title, price, image, and availability by keyword query or ASIN.
//
// Calls are rate limited client-side (the default tier allows one
// request per second) and counted against a self-imposed daily budget.
package paapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/helmwise/helmwise-backend/internal/infrastructure/config"
)

// Sentinel errors.
var (
	// ErrBudgetExhausted means the configured daily call budget was hit.
	ErrBudgetExhausted = errors.New("paapi: daily call budget exhausted")
	// ErrNoResults means the API answered but returned nothing usable.
	ErrNoResults = errors.New("paapi: no results")
	// ErrThrottled means the API rejected the call for rate reasons even
	// after retries.
	ErrThrottled = errors.New("paapi: throttled")
)

const (
	searchItemsPath = "/paapi5/searchitems"
	getItemsPath    = "/paapi5/getitems"

	searchItemsTarget = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.SearchItems"
	getItemsTarget    = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.GetItems"
)

// Offer is the subset of PA-API item data the stores consume.
type Offer struct {
	ASIN          string  `json:"asin"`
	Title         string  `json:"title"`
	DetailPageURL string  `json:"detailPageUrl"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	Price         float64 `json:"price"`
	LowestPrice   float64 `json:"lowestPrice"`
	HighestPrice  float64 `json:"highestPrice"`
	Currency      string  `json:"currency"`
	OfferCount    int     `json:"offerCount"`
	Available     bool    `json:"available"`
}

// Client calls PA-API 5 over signed HTTPS.
type Client struct {
	cfg      config.PAAPIConfig
	http     *http.Client
	limiter  *rate.Limiter
	signer   *signer
	logger   *slog.Logger
	endpoint string // overridable in tests
	calls    atomic.Int64
}

// New creates a PA-API client from configuration.
func New(cfg config.PAAPIConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 8 * time.Second
	rc.Logger = nil

	return &Client{
		cfg:      cfg,
		http:     rc.StandardClient(),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		signer:   newSigner(cfg.AccessKey, cfg.SecretKey, cfg.Region),
		logger:   logger,
		endpoint: "https://" + cfg.Host,
	}
}

// CallsMade reports how many calls this client has issued.
func (c *Client) CallsMade() int {
	return int(c.calls.Load())
}

// SearchItems queries PA-API by keywords and returns ranked offers.
func (c *Client) SearchItems(ctx context.Context, keywords string) ([]Offer, error) {
	payload := map[string]any{
		"Keywords":    keywords,
		"SearchIndex": "SportingGoods",
		"ItemCount":   10,
		"PartnerTag":  c.cfg.PartnerTag,
		"PartnerType": "Associates",
		"Resources":   itemResources,
	}

	var resp searchResponse
	if err := c.call(ctx, searchItemsPath, searchItemsTarget, payload, &resp); err != nil {
		return nil, err
	}
	offers := toOffers(resp.SearchResult.Items)
	if len(offers) == 0 {
		return nil, ErrNoResults
	}
	return offers, nil
}

// GetItems looks up offers for specific ASINs.
func (c *Client) GetItems(ctx context.Context, asins []string) ([]Offer, error) {
	if len(asins) == 0 {
		return nil, ErrNoResults
	}

	payload := map[string]any{
		"ItemIds":     asins,
		"PartnerTag":  c.cfg.PartnerTag,
		"PartnerType": "Associates",
		"Resources":   itemResources,
	}

	var resp getResponse
	if err := c.call(ctx, getItemsPath, getItemsTarget, payload, &resp); err != nil {
		return nil, err
	}
	offers := toOffers(resp.ItemsResult.Items)
	if len(offers) == 0 {
		return nil, ErrNoResults
	}
	return offers, nil
}

var itemResources = []string{
	"ItemInfo.Title",
	"Images.Primary.Medium",
	"Offers.Listings.Price",
	"Offers.Listings.Availability.Type",
	"Offers.Summaries.LowestPrice",
	"Offers.Summaries.HighestPrice",
	"Offers.Summaries.OfferCount",
}

func (c *Client) call(ctx context.Context, path, target string, payload any, out any) error {
	if c.cfg.DailyBudget > 0 && c.calls.Load() >= int64(c.cfg.DailyBudget) {
		return ErrBudgetExhausted
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("X-Amz-Target", target)
	c.signer.sign(req, body, time.Now().UTC())

	c.calls.Add(1)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("paapi request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, _ := io.ReadAll(resp.Body)
	c.logger.Debug("paapi call", "target", target, "status", resp.StatusCode,
		"durationMs", time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrThrottled
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("paapi: status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	if err := json.Unmarshal(data, out); err != nil {
		// Malformed response degrades to "no result"
		c.logger.Warn("paapi malformed response", "target", target, "err", err)
		return ErrNoResults
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Wire types for the PA-API response subset we read.

type searchResponse struct {
	SearchResult struct {
		Items []item `json:"Items"`
	} `json:"SearchResult"`
}

type getResponse struct {
	ItemsResult struct {
		Items []item `json:"Items"`
	} `json:"ItemsResult"`
}

type item struct {
	ASIN          string `json:"ASIN"`
	DetailPageURL string `json:"DetailPageURL"`
	ItemInfo      struct {
		Title struct {
			DisplayValue string `json:"DisplayValue"`
		} `json:"Title"`
	} `json:"ItemInfo"`
	Images struct {
		Primary struct {
			Medium struct {
				URL string `json:"URL"`
			} `json:"Medium"`
		} `json:"Primary"`
	} `json:"Images"`
	Offers struct {
		Listings []struct {
			Price struct {
				Amount   float64 `json:"Amount"`
				Currency string  `json:"Currency"`
			} `json:"Price"`
			Availability struct {
				Type string `json:"Type"`
			} `json:"Availability"`
		} `json:"Listings"`
		Summaries []struct {
			LowestPrice struct {
				Amount float64 `json:"Amount"`
			} `json:"LowestPrice"`
			HighestPrice struct {
				Amount float64 `json:"Amount"`
			} `json:"HighestPrice"`
			OfferCount int `json:"OfferCount"`
		} `json:"Summaries"`
	} `json:"Offers"`
}

func toOffers(items []item) []Offer {
	out := make([]Offer, 0, len(items))
	for _, it := range items {
		if it.ASIN == "" {
			continue
		}
		o := Offer{
			ASIN:          it.ASIN,
			Title:         it.ItemInfo.Title.DisplayValue,
			DetailPageURL: it.DetailPageURL,
			ImageURL:      it.Images.Primary.Medium.URL,
		}
		if len(it.Offers.Listings) > 0 {
			l := it.Offers.Listings[0]
			o.Price = l.Price.Amount
			o.Currency = l.Price.Currency
			o.Available = l.Availability.Type == "" || l.Availability.Type == "Now"
		}
		o.LowestPrice, o.HighestPrice = o.Price, o.Price
		for _, s := range it.Offers.Summaries {
			if s.LowestPrice.Amount > 0 && (o.LowestPrice == 0 || s.LowestPrice.Amount < o.LowestPrice) {
				o.LowestPrice = s.LowestPrice.Amount
			}
			if s.HighestPrice.Amount > o.HighestPrice {
				o.HighestPrice = s.HighestPrice.Amount
			}
			o.OfferCount += s.OfferCount
		}
		out = append(out, o)
	}
	return out
}
