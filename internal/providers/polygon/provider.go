// Package polygon implements the market data provider backed by the
// Polygon.io aggregates and reference APIs.
package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/alphalens/internal/httpclient"
	"github.com/ternarybob/alphalens/internal/interfaces"
	"github.com/ternarybob/alphalens/internal/models"
	"github.com/ternarybob/alphalens/internal/services/cache"
)

const (
	// DefaultBaseURL is the base URL for the Polygon API.
	DefaultBaseURL = "https://api.polygon.io"

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// ProviderName tags cache keys and provenance entries.
	ProviderName = "polygon"

	// companyInfoTTL pins company metadata for a day; it changes rarely.
	companyInfoTTL = 24 * time.Hour
)

// Provider fetches price history and company metadata from Polygon.
type Provider struct {
	baseURL  string
	apiKey   string
	http     *httpclient.RetryingClient
	cache    interfaces.ProviderCache
	cacheTTL time.Duration
	limiter  *rate.Limiter
	logger   arbor.ILogger
}

// Option configures the Provider.
type Option func(*Provider)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) Option {
	return func(p *Provider) {
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithCacheTTL sets the price history cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		p.cacheTTL = ttl
	}
}

// New creates a Polygon market data provider.
func New(apiKey string, http *httpclient.RetryingClient, providerCache interfaces.ProviderCache, logger arbor.ILogger, opts ...Option) *Provider {
	p := &Provider{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		http:     http,
		cache:    providerCache,
		cacheTTL: 60 * time.Second,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return ProviderName
}

// aggsResponse is the Polygon v2 aggregates payload.
type aggsResponse struct {
	Status  string    `json:"status"`
	Error   string    `json:"error"`
	Results []aggsBar `json:"results"`
}

type aggsBar struct {
	Timestamp int64   `json:"t"` // milliseconds
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// GetPriceHistory fetches daily OHLCV bars for the trailing days window.
// Results are cached; an ERROR status maps to a transient ProviderError
// while an empty result set means the ticker does not exist.
func (p *Provider) GetPriceHistory(ctx context.Context, ticker string, days int) (*models.PriceSeries, error) {
	cacheKey := cache.MakeKey(ProviderName, "price_history", ticker,
		map[string]string{"days": strconv.Itoa(days)})

	if entry, err := p.cache.Get(ctx, cacheKey); err == nil {
		var series models.PriceSeries
		if err := json.Unmarshal(entry.Data, &series); err == nil {
			p.logger.Debug().Str("key", cacheKey).Msg("Cache hit for price history")
			return &series, nil
		}
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &interfaces.ProviderError{
			Provider: ProviderName, Ticker: ticker,
			Message: "rate limiter interrupted", Err: err,
		}
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	reqURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s",
		p.baseURL, ticker, start.Format("2006-01-02"), end.Format("2006-01-02"))

	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("sort", "asc")
	params.Set("apiKey", p.apiKey)

	body, err := p.http.Get(ctx, reqURL, params, nil)
	if err != nil {
		return nil, &interfaces.ProviderError{
			Provider: ProviderName, Ticker: ticker,
			Message: "price history request failed", Err: err,
		}
	}

	var resp aggsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &interfaces.ProviderError{
			Provider: ProviderName, Ticker: ticker,
			Message: "malformed price history response", Err: err,
		}
	}

	if resp.Status == "ERROR" {
		msg := resp.Error
		if msg == "" {
			msg = "unknown API error"
		}
		return nil, &interfaces.ProviderError{Provider: ProviderName, Ticker: ticker, Message: msg}
	}

	if len(resp.Results) == 0 {
		return nil, &interfaces.InvalidTickerError{
			Ticker:  ticker,
			Message: "not found or has no trading data",
		}
	}

	series := &models.PriceSeries{Ticker: ticker}
	for _, bar := range resp.Results {
		series.Dates = append(series.Dates,
			time.UnixMilli(bar.Timestamp).UTC().Format("2006-01-02"))
		series.Opens = append(series.Opens, bar.Open)
		series.Highs = append(series.Highs, bar.High)
		series.Lows = append(series.Lows, bar.Low)
		series.Closes = append(series.Closes, bar.Close)
		series.Volumes = append(series.Volumes, int64(bar.Volume))
	}

	p.cacheResult(ctx, cacheKey, ticker, series, p.cacheTTL)

	p.logger.Info().
		Str("ticker", ticker).
		Int("bars", series.Len()).
		Msg("Fetched price history from Polygon")

	return series, nil
}

// tickerDetailsResponse is the Polygon v3 reference payload.
type tickerDetailsResponse struct {
	Status  string `json:"status"`
	Results struct {
		Name            string `json:"name"`
		SICDescription  string `json:"sic_description"`
		PrimaryExchange string `json:"primary_exchange"`
	} `json:"results"`
}

// GetCompanyInfo fetches company metadata. Best-effort: any failure
// degrades to a placeholder carrying just the ticker so the news query
// can still run.
func (p *Provider) GetCompanyInfo(ctx context.Context, ticker string) (*models.CompanyInfo, error) {
	cacheKey := cache.MakeKey(ProviderName, "company_info", ticker, nil)

	if entry, err := p.cache.Get(ctx, cacheKey); err == nil {
		var info models.CompanyInfo
		if err := json.Unmarshal(entry.Data, &info); err == nil {
			return &info, nil
		}
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return &models.CompanyInfo{Name: ticker}, nil
	}

	params := url.Values{}
	params.Set("apiKey", p.apiKey)

	body, err := p.http.Get(ctx, fmt.Sprintf("%s/v3/reference/tickers/%s", p.baseURL, ticker), params, nil)
	if err != nil {
		p.logger.Warn().Str("ticker", ticker).Err(err).Msg("Company info lookup failed, using placeholder")
		return &models.CompanyInfo{Name: ticker}, nil
	}

	var resp tickerDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Status != "OK" {
		p.logger.Warn().Str("ticker", ticker).Msg("Company info unavailable, using placeholder")
		return &models.CompanyInfo{Name: ticker}, nil
	}

	info := &models.CompanyInfo{
		Name:     resp.Results.Name,
		Industry: resp.Results.SICDescription,
		Exchange: resp.Results.PrimaryExchange,
	}
	if info.Name == "" {
		info.Name = ticker
	}

	p.cacheCompanyInfo(ctx, cacheKey, ticker, info)
	return info, nil
}

func (p *Provider) cacheResult(ctx context.Context, key, ticker string, series *models.PriceSeries, ttl time.Duration) {
	data, err := json.Marshal(series)
	if err != nil {
		return
	}
	now := time.Now().UTC()
	entry := &models.CacheEntry{
		CacheKey:  key,
		Provider:  ProviderName,
		Ticker:    ticker,
		Data:      data,
		FetchedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := p.cache.Set(ctx, entry); err != nil {
		p.logger.Warn().Str("key", key).Err(err).Msg("Failed to cache price history")
	}
}

func (p *Provider) cacheCompanyInfo(ctx context.Context, key, ticker string, info *models.CompanyInfo) {
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	now := time.Now().UTC()
	entry := &models.CacheEntry{
		CacheKey:  key,
		Provider:  ProviderName,
		Ticker:    ticker,
		Data:      data,
		FetchedAt: now,
		ExpiresAt: now.Add(companyInfoTTL),
	}
	if err := p.cache.Set(ctx, entry); err != nil {
		p.logger.Warn().Str("key", key).Err(err).Msg("Failed to cache company info")
	}
}
