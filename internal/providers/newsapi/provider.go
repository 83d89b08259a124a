// Package newsapi implements the news provider backed by NewsAPI.org.
//
// Queries run in two stages: a precise company-name query first, then a
// ticker-with-stock-context fallback when the first stage finds nothing.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/alphalens/internal/httpclient"
	"github.com/ternarybob/alphalens/internal/interfaces"
	"github.com/ternarybob/alphalens/internal/models"
	"github.com/ternarybob/alphalens/internal/services/cache"
	"github.com/ternarybob/alphalens/internal/services/sentiment"
)

const (
	// DefaultBaseURL is the base URL for the NewsAPI v2 API.
	DefaultBaseURL = "https://newsapi.org/v2"

	// DefaultPageSize bounds articles fetched per request.
	DefaultPageSize = 8

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// ProviderName tags cache keys and provenance entries.
	ProviderName = "newsapi"
)

// companySuffixes are stripped from company names to sharpen search
// queries. Order matters: longer forms first.
var companySuffixes = []string{
	".Com", ".com", ", Inc.", " Inc.", " Inc", " Corporation",
	" Corp.", " Corp", " Ltd.", " Ltd", " LLC", " PLC",
}

// Provider fetches recent news and labels each article with the
// lexicon-based sentiment classifier.
type Provider struct {
	baseURL  string
	apiKey   string
	http     *httpclient.RetryingClient
	cache    interfaces.ProviderCache
	cacheTTL time.Duration
	pageSize int
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

// WithPageSize sets the per-request article count.
func WithPageSize(pageSize int) Option {
	return func(p *Provider) {
		p.pageSize = pageSize
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) Option {
	return func(p *Provider) {
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithCacheTTL sets the news cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		p.cacheTTL = ttl
	}
}

// New creates a NewsAPI news provider.
func New(apiKey string, http *httpclient.RetryingClient, providerCache interfaces.ProviderCache, logger arbor.ILogger, opts ...Option) *Provider {
	p := &Provider{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		http:     http,
		cache:    providerCache,
		cacheTTL: 5 * time.Minute,
		pageSize: DefaultPageSize,
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

type everythingResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title  string `json:"title"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		PublishedAt string `json:"publishedAt"`
		URL         string `json:"url"`
		Description string `json:"description"`
	} `json:"articles"`
}

// GetNews fetches up to maxArticles recent English articles for a
// ticker. Empty result sets are cached too: a quiet ticker should not
// re-query on every run.
func (p *Provider) GetNews(ctx context.Context, ticker string, maxArticles int, companyName string) ([]models.NewsArticle, error) {
	cacheKey := cache.MakeKey(ProviderName, "news", ticker,
		map[string]string{"max_articles": strconv.Itoa(maxArticles)})

	if entry, err := p.cache.Get(ctx, cacheKey); err == nil {
		var articles []models.NewsArticle
		if err := json.Unmarshal(entry.Data, &articles); err == nil {
			p.logger.Debug().Str("key", cacheKey).Msg("Cache hit for news")
			return articles, nil
		}
	}

	var articles []models.NewsArticle
	for _, query := range p.buildQueries(ticker, companyName) {
		fetched, err := p.fetchArticles(ctx, ticker, query, maxArticles)
		if err != nil {
			return nil, err
		}
		if len(fetched) > 0 {
			p.logger.Info().
				Str("ticker", ticker).
				Str("query", query).
				Int("articles", len(fetched)).
				Msg("Fetched news from NewsAPI")
			articles = fetched
			break
		}
		p.logger.Debug().Str("ticker", ticker).Str("query", query).Msg("No results, trying fallback query")
	}

	p.cacheResult(ctx, cacheKey, ticker, articles)
	return articles, nil
}

// buildQueries returns the search queries to try in order. The precise
// company-name form goes first when a usable name is available.
func (p *Provider) buildQueries(ticker, companyName string) []string {
	queries := make([]string, 0, 2)
	if companyName != "" && companyName != ticker {
		queries = append(queries, fmt.Sprintf("%q AND %s", cleanCompanyName(companyName), ticker))
	}
	queries = append(queries, fmt.Sprintf("%q AND (stock OR shares OR earnings)", ticker))
	return queries
}

func (p *Provider) fetchArticles(ctx context.Context, ticker, query string, maxArticles int) ([]models.NewsArticle, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &interfaces.ProviderError{
			Provider: ProviderName, Ticker: ticker,
			Message: "rate limiter interrupted", Err: err,
		}
	}

	pageSize := p.pageSize
	if maxArticles < pageSize {
		pageSize = maxArticles
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("language", "en")

	headers := http.Header{}
	headers.Set("X-Api-Key", p.apiKey)

	body, err := p.http.Get(ctx, p.baseURL+"/everything", params, headers)
	if err != nil {
		return nil, &interfaces.ProviderError{
			Provider: ProviderName, Ticker: ticker,
			Message: "news request failed", Err: err,
		}
	}

	var resp everythingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &interfaces.ProviderError{
			Provider: ProviderName, Ticker: ticker,
			Message: "malformed news response", Err: err,
		}
	}

	if resp.Status == "error" {
		msg := resp.Message
		if msg == "" {
			msg = "unknown API error"
		}
		return nil, &interfaces.ProviderError{Provider: ProviderName, Ticker: ticker, Message: msg}
	}

	articles := make([]models.NewsArticle, 0, len(resp.Articles))
	for _, raw := range resp.Articles {
		if len(articles) >= maxArticles {
			break
		}
		source := raw.Source.Name
		if source == "" {
			source = "Unknown"
		}
		articles = append(articles, models.NewsArticle{
			Title:          raw.Title,
			Source:         source,
			PublishedAt:    raw.PublishedAt,
			URL:            raw.URL,
			Summary:        raw.Description,
			SentimentLabel: sentiment.Label(sentiment.ScoreText(raw.Title + " " + raw.Description)),
		})
	}
	return articles, nil
}

func cleanCompanyName(name string) string {
	for _, suffix := range companySuffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}
	return strings.TrimSpace(name)
}

func (p *Provider) cacheResult(ctx context.Context, key, ticker string, articles []models.NewsArticle) {
	data, err := json.Marshal(articles)
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
		p.logger.Warn().Str("key", key).Err(err).Msg("Failed to cache news")
	}
}
