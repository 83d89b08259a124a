// Package fmp implements the fundamentals provider backed by the
// Financial Modeling Prep TTM endpoints.
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/alphalens/internal/httpclient"
	"github.com/ternarybob/alphalens/internal/interfaces"
	"github.com/ternarybob/alphalens/internal/models"
	"github.com/ternarybob/alphalens/internal/services/cache"
)

const (
	// DefaultBaseURL is the base URL for the FMP v3 API.
	DefaultBaseURL = "https://financialmodelingprep.com/api/v3"

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// ProviderName tags cache keys and provenance entries.
	ProviderName = "fmp"
)

// Provider fetches fundamentals by combining the FMP profile,
// ratios-ttm, and key-metrics-ttm endpoints.
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

// WithCacheTTL sets the fundamentals cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		p.cacheTTL = ttl
	}
}

// New creates an FMP fundamentals provider.
func New(apiKey string, http *httpclient.RetryingClient, providerCache interfaces.ProviderCache, logger arbor.ILogger, opts ...Option) *Provider {
	p := &Provider{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		http:     http,
		cache:    providerCache,
		cacheTTL: 24 * time.Hour,
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

type profileEntry struct {
	MarketCap *float64 `json:"mktCap"`
}

type ratiosEntry struct {
	PERatioTTM         *float64 `json:"peRatioTTM"`
	NetProfitMarginTTM *float64 `json:"netProfitMarginTTM"`
	DebtEquityRatioTTM *float64 `json:"debtEquityRatioTTM"`
}

type keyMetricsEntry struct {
	RevenueGrowthTTM *float64 `json:"revenueGrowthTTM"`
}

// GetFundamentals fetches TTM financial metrics. Metrics the API omits
// stay nil; the scorer rescales around the gaps. All three endpoint
// responses land in one cache entry with a 24h TTL.
func (p *Provider) GetFundamentals(ctx context.Context, ticker string) (*models.FundamentalMetrics, error) {
	cacheKey := cache.MakeKey(ProviderName, "fundamentals", ticker, nil)

	if entry, err := p.cache.Get(ctx, cacheKey); err == nil {
		var m models.FundamentalMetrics
		if err := json.Unmarshal(entry.Data, &m); err == nil {
			p.logger.Debug().Str("key", cacheKey).Msg("Cache hit for fundamentals")
			return &m, nil
		}
	}

	var profiles []profileEntry
	if err := p.fetchEndpoint(ctx, "/profile/"+ticker, ticker, &profiles); err != nil {
		return nil, err
	}
	var ratios []ratiosEntry
	if err := p.fetchEndpoint(ctx, "/ratios-ttm/"+ticker, ticker, &ratios); err != nil {
		return nil, err
	}
	var keyMetrics []keyMetricsEntry
	if err := p.fetchEndpoint(ctx, "/key-metrics-ttm/"+ticker, ticker, &keyMetrics); err != nil {
		return nil, err
	}

	m := &models.FundamentalMetrics{}
	if len(profiles) > 0 {
		m.MarketCap = profiles[0].MarketCap
	}
	if len(ratios) > 0 {
		m.PERatio = ratios[0].PERatioTTM
		m.ProfitMargin = ratios[0].NetProfitMarginTTM
		m.DebtToEquity = ratios[0].DebtEquityRatioTTM
	}
	if len(keyMetrics) > 0 {
		m.RevenueGrowth = keyMetrics[0].RevenueGrowthTTM
	}

	p.cacheResult(ctx, cacheKey, ticker, m)

	p.logger.Info().Str("ticker", ticker).Msg("Fetched fundamentals from FMP")
	return m, nil
}

// fetchEndpoint calls one FMP endpoint and decodes its list payload.
// FMP signals errors as a JSON object with an "Error Message" field.
func (p *Provider) fetchEndpoint(ctx context.Context, path, ticker string, out interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return &interfaces.ProviderError{
			Provider: ProviderName, Ticker: ticker,
			Message: "rate limiter interrupted", Err: err,
		}
	}

	params := url.Values{}
	params.Set("apikey", p.apiKey)

	body, err := p.http.Get(ctx, p.baseURL+path, params, nil)
	if err != nil {
		return &interfaces.ProviderError{
			Provider: ProviderName, Ticker: ticker,
			Message: fmt.Sprintf("request to %s failed", path), Err: err,
		}
	}

	var apiErr struct {
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorMessage != "" {
		return &interfaces.ProviderError{
			Provider: ProviderName, Ticker: ticker, Message: apiErr.ErrorMessage,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &interfaces.ProviderError{
			Provider: ProviderName, Ticker: ticker,
			Message: fmt.Sprintf("malformed response from %s", path), Err: err,
		}
	}
	return nil
}

func (p *Provider) cacheResult(ctx context.Context, key, ticker string, m *models.FundamentalMetrics) {
	data, err := json.Marshal(m)
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
		ExpiresAt: now.Add(p.cacheTTL),
	}
	if err := p.cache.Set(ctx, entry); err != nil {
		p.logger.Warn().Str("key", key).Err(err).Msg("Failed to cache fundamentals")
	}
}
