package synthetic

import (
	"context"
	"strings"
	"testing"

	"github.com/ternarybob/alphalens/internal/interfaces"
	"github.com/ternarybob/alphalens/internal/models"
)

// Compile-time interface checks.
var (
	_ interfaces.MarketDataProvider   = (*MarketProvider)(nil)
	_ interfaces.FundamentalsProvider = (*FundamentalsProvider)(nil)
	_ interfaces.NewsProvider         = (*NewsProvider)(nil)
)

func TestMarketProviderDeterministic(t *testing.T) {
	ctx := context.Background()
	provider := NewMarketProvider()

	first, err := provider.GetPriceHistory(ctx, "AAPL", 200)
	if err != nil {
		t.Fatalf("GetPriceHistory: %v", err)
	}
	second, err := provider.GetPriceHistory(ctx, "AAPL", 200)
	if err != nil {
		t.Fatalf("GetPriceHistory: %v", err)
	}

	if first.Len() != 200 {
		t.Errorf("series length = %d, want 200", first.Len())
	}
	for i := range first.Closes {
		if first.Closes[i] != second.Closes[i] {
			t.Fatalf("closes diverge at bar %d: %v vs %v", i, first.Closes[i], second.Closes[i])
		}
	}
}

func TestMarketProviderSeriesShape(t *testing.T) {
	series, err := NewMarketProvider().GetPriceHistory(context.Background(), "MSFT", 60)
	if err != nil {
		t.Fatalf("GetPriceHistory: %v", err)
	}

	if len(series.Opens) != 60 || len(series.Highs) != 60 ||
		len(series.Lows) != 60 || len(series.Closes) != 60 || len(series.Volumes) != 60 {
		t.Fatal("OHLCV slices must all match the requested length")
	}

	for i := range series.Closes {
		if series.Highs[i] < series.Lows[i] {
			t.Errorf("bar %d: high %v below low %v", i, series.Highs[i], series.Lows[i])
		}
		if series.Closes[i] <= 0 {
			t.Errorf("bar %d: non-positive close %v", i, series.Closes[i])
		}
		if series.Volumes[i] <= 0 {
			t.Errorf("bar %d: non-positive volume %d", i, series.Volumes[i])
		}
	}

	// Fixed reference date keeps output reproducible across runs
	if last := series.Dates[len(series.Dates)-1]; last != "2024-01-15" {
		t.Errorf("last date = %s, want 2024-01-15", last)
	}
}

func TestMarketProviderDatesSkipWeekends(t *testing.T) {
	series, err := NewMarketProvider().GetPriceHistory(context.Background(), "AAPL", 30)
	if err != nil {
		t.Fatalf("GetPriceHistory: %v", err)
	}
	// 2024-01-13 and 2024-01-14 were a weekend
	for _, d := range series.Dates {
		if d == "2024-01-13" || d == "2024-01-14" {
			t.Errorf("weekend date %s must not appear in series", d)
		}
	}
}

func TestMarketProviderVariesByTicker(t *testing.T) {
	ctx := context.Background()
	provider := NewMarketProvider()

	aapl, _ := provider.GetPriceHistory(ctx, "AAPL", 50)
	msft, _ := provider.GetPriceHistory(ctx, "MSFT", 50)

	if aapl.LatestClose() == msft.LatestClose() {
		t.Error("different tickers must generate different series")
	}
}

func TestMarketProviderCompanyInfo(t *testing.T) {
	ctx := context.Background()
	provider := NewMarketProvider()

	known, err := provider.GetCompanyInfo(ctx, "AAPL")
	if err != nil {
		t.Fatalf("GetCompanyInfo: %v", err)
	}
	if known.Name != "Apple Inc." {
		t.Errorf("Name = %q, want Apple Inc.", known.Name)
	}

	unknown, err := provider.GetCompanyInfo(ctx, "ZZZZZ")
	if err != nil {
		t.Fatalf("GetCompanyInfo: %v", err)
	}
	if unknown.Name != "ZZZZZ Inc." {
		t.Errorf("unknown ticker Name = %q, want ZZZZZ Inc.", unknown.Name)
	}
}

func TestFundamentalsProviderKnownTicker(t *testing.T) {
	m, err := NewFundamentalsProvider().GetFundamentals(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("GetFundamentals: %v", err)
	}
	if m.PERatio == nil || *m.PERatio != 65.0 {
		t.Errorf("NVDA PERatio = %v, want 65.0", m.PERatio)
	}
	if m.RevenueGrowth == nil || *m.RevenueGrowth != 0.55 {
		t.Errorf("NVDA RevenueGrowth = %v, want 0.55", m.RevenueGrowth)
	}
}

func TestFundamentalsProviderUnknownTickerDeterministic(t *testing.T) {
	ctx := context.Background()
	provider := NewFundamentalsProvider()

	first, err := provider.GetFundamentals(ctx, "QQQQ")
	if err != nil {
		t.Fatalf("GetFundamentals: %v", err)
	}
	second, _ := provider.GetFundamentals(ctx, "QQQQ")

	if *first.PERatio != *second.PERatio {
		t.Error("unknown ticker fundamentals must be deterministic")
	}
	if first.PERatio == nil || first.RevenueGrowth == nil ||
		first.ProfitMargin == nil || first.DebtToEquity == nil || first.MarketCap == nil {
		t.Error("all synthetic metrics must be populated")
	}
}

func TestNewsProviderBiasShapesMix(t *testing.T) {
	ctx := context.Background()
	provider := NewNewsProvider()

	nvda, err := provider.GetNews(ctx, "NVDA", 20, "NVIDIA Corporation")
	if err != nil {
		t.Fatalf("GetNews: %v", err)
	}
	meta, err := provider.GetNews(ctx, "META", 20, "Meta Platforms, Inc.")
	if err != nil {
		t.Fatalf("GetNews: %v", err)
	}

	if len(nvda) != 20 {
		t.Errorf("got %d articles, want 20", len(nvda))
	}

	// NVDA (bias 0.8) must mention more bullish headlines than META (bias 0.4)
	if countContaining(nvda, "record quarterly earnings") <= 0 {
		t.Error("high-bias ticker must produce positive headlines")
	}
	if countContaining(meta, "misses earnings estimates") <= 0 {
		t.Error("low-bias ticker must produce negative headlines")
	}
}

func TestNewsProviderDeterministic(t *testing.T) {
	ctx := context.Background()
	provider := NewNewsProvider()

	first, _ := provider.GetNews(ctx, "AAPL", 10, "")
	second, _ := provider.GetNews(ctx, "AAPL", 10, "")

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Title != second[i].Title || first[i].PublishedAt != second[i].PublishedAt {
			t.Fatalf("article %d differs between runs", i)
		}
	}
}

func TestNewsProviderNewestFirst(t *testing.T) {
	articles, err := NewNewsProvider().GetNews(context.Background(), "AAPL", 10, "")
	if err != nil {
		t.Fatalf("GetNews: %v", err)
	}
	for i := 1; i < len(articles); i++ {
		if articles[i].PublishedAt > articles[i-1].PublishedAt {
			t.Errorf("articles out of order at %d: %s after %s",
				i, articles[i].PublishedAt, articles[i-1].PublishedAt)
		}
	}
}

func countContaining(articles []models.NewsArticle, substr string) int {
	count := 0
	for _, a := range articles {
		if strings.Contains(a.Title, substr) {
			count++
		}
	}
	return count
}
