package synthetic

import (
	"context"

	"github.com/ternarybob/alphalens/internal/common"
	"github.com/ternarybob/alphalens/internal/models"
)

// FundamentalsProviderName is the provenance tag for synthetic financials.
const FundamentalsProviderName = "synthetic_fundamentals"

// fundamentals holds fixed metrics for well-known tickers.
var fundamentals = map[string]models.FundamentalMetrics{
	"AAPL":  metrics(28.5, 0.08, 0.25, 1.8, 2_900_000_000_000),
	"MSFT":  metrics(35.2, 0.12, 0.36, 0.4, 2_800_000_000_000),
	"GOOGL": metrics(24.8, 0.10, 0.22, 0.1, 1_800_000_000_000),
	"GOOG":  metrics(24.8, 0.10, 0.22, 0.1, 1_800_000_000_000),
	"AMZN":  metrics(62.5, 0.11, 0.06, 0.8, 1_850_000_000_000),
	"NVDA":  metrics(65.0, 0.55, 0.45, 0.4, 1_200_000_000_000),
	"META":  metrics(22.5, 0.15, 0.28, 0.2, 1_000_000_000_000),
	"TSLA":  metrics(72.0, 0.18, 0.11, 0.1, 790_000_000_000),
	"JPM":   metrics(11.5, 0.06, 0.32, 1.2, 500_000_000_000),
	"V":     metrics(29.0, 0.09, 0.52, 0.5, 550_000_000_000),
	"JNJ":   metrics(15.2, 0.04, 0.18, 0.4, 385_000_000_000),
}

// companyInfo holds fixed metadata for well-known tickers. Shared with
// the synthetic market provider's GetCompanyInfo.
var companyInfo = map[string]models.CompanyInfo{
	"AAPL":  {Name: "Apple Inc.", Sector: "Technology", Industry: "Consumer Electronics", Exchange: "NASDAQ"},
	"MSFT":  {Name: "Microsoft Corporation", Sector: "Technology", Industry: "Software - Infrastructure", Exchange: "NASDAQ"},
	"GOOGL": {Name: "Alphabet Inc.", Sector: "Technology", Industry: "Internet Content & Information", Exchange: "NASDAQ"},
	"GOOG":  {Name: "Alphabet Inc.", Sector: "Technology", Industry: "Internet Content & Information", Exchange: "NASDAQ"},
	"AMZN":  {Name: "Amazon.com, Inc.", Sector: "Consumer Cyclical", Industry: "Internet Retail", Exchange: "NASDAQ"},
	"NVDA":  {Name: "NVIDIA Corporation", Sector: "Technology", Industry: "Semiconductors", Exchange: "NASDAQ"},
	"META":  {Name: "Meta Platforms, Inc.", Sector: "Technology", Industry: "Internet Content & Information", Exchange: "NASDAQ"},
	"TSLA":  {Name: "Tesla, Inc.", Sector: "Consumer Cyclical", Industry: "Auto Manufacturers", Exchange: "NASDAQ"},
	"JPM":   {Name: "JPMorgan Chase & Co.", Sector: "Financial Services", Industry: "Banks - Diversified", Exchange: "NYSE"},
	"V":     {Name: "Visa Inc.", Sector: "Financial Services", Industry: "Credit Services", Exchange: "NYSE"},
	"JNJ":   {Name: "Johnson & Johnson", Sector: "Healthcare", Industry: "Drug Manufacturers - General", Exchange: "NYSE"},
}

// FundamentalsProvider serves fixed or hash-derived financial metrics.
type FundamentalsProvider struct{}

// NewFundamentalsProvider creates a synthetic fundamentals provider.
func NewFundamentalsProvider() *FundamentalsProvider {
	return &FundamentalsProvider{}
}

func (p *FundamentalsProvider) Name() string {
	return FundamentalsProviderName
}

// GetFundamentals returns the fixed table entry for known tickers, or
// hash-derived values for unknown ones.
func (p *FundamentalsProvider) GetFundamentals(ctx context.Context, ticker string) (*models.FundamentalMetrics, error) {
	if m, ok := fundamentals[ticker]; ok {
		return &m, nil
	}

	hash := common.TickerHash(ticker)
	m := metrics(
		15.0+float64(hash%30),
		0.05+float64(hash%20)*0.01,
		0.10+float64(hash%25)*0.01,
		0.3+float64(hash%15)*0.1,
		50_000_000_000+float64(hash%100)*10_000_000_000,
	)
	return &m, nil
}

func metrics(pe, growth, margin, debt, marketCap float64) models.FundamentalMetrics {
	return models.FundamentalMetrics{
		PERatio:       &pe,
		RevenueGrowth: &growth,
		ProfitMargin:  &margin,
		DebtToEquity:  &debt,
		MarketCap:     &marketCap,
	}
}
