// Package interfaces defines the contracts between the recommendation
// pipeline and its collaborators: data providers, the response cache,
// and the run-history store.
package interfaces

import (
	"context"
	"fmt"

	"github.com/ternarybob/alphalens/internal/models"
)

// MarketDataProvider fetches historical price data for a ticker.
type MarketDataProvider interface {
	// Name returns the provider identity tag recorded in provenance.
	Name() string

	// GetPriceHistory fetches up to days of daily OHLCV bars, oldest first.
	GetPriceHistory(ctx context.Context, ticker string, days int) (*models.PriceSeries, error)

	// GetCompanyInfo fetches company metadata. Best-effort: callers must
	// tolerate failure and degrade to a ticker-name placeholder.
	GetCompanyInfo(ctx context.Context, ticker string) (*models.CompanyInfo, error)
}

// FundamentalsProvider fetches company financial metrics.
type FundamentalsProvider interface {
	Name() string
	GetFundamentals(ctx context.Context, ticker string) (*models.FundamentalMetrics, error)
}

// NewsProvider fetches recent news articles for a ticker. companyName may
// be empty; providers use it to sharpen the search query when present.
type NewsProvider interface {
	Name() string
	GetNews(ctx context.Context, ticker string, maxArticles int, companyName string) ([]models.NewsArticle, error)
}

// ProviderError is a transient provider failure: the provider was
// reachable but could not serve usable data. Eligible for synthetic
// fallback in the pipeline.
type ProviderError struct {
	Provider string
	Ticker   string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error for %s: %s", e.Provider, e.Ticker, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// InvalidTickerError is a permanent condition: the provider has no data
// for the ticker. Never falls back; aborts the run.
type InvalidTickerError struct {
	Ticker  string
	Message string
}

func (e *InvalidTickerError) Error() string {
	return fmt.Sprintf("invalid ticker %s: %s", e.Ticker, e.Message)
}
