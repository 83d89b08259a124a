package synthetic

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/alphalens/internal/common"
	"github.com/ternarybob/alphalens/internal/models"
)

// NewsProviderName is the provenance tag for synthetic news.
const NewsProviderName = "synthetic_news"

var positiveTemplates = []string{
	"%s reports record quarterly earnings, beating analyst expectations",
	"%s announces major partnership with industry leader",
	"%s stock upgraded by multiple analysts to 'Buy'",
	"%s unveils innovative new product line",
	"%s expands into emerging markets with strong growth potential",
	"Institutional investors increase %s holdings significantly",
}

var negativeTemplates = []string{
	"%s misses earnings estimates, stock under pressure",
	"%s faces regulatory investigation, shares decline",
	"%s announces layoffs amid cost-cutting measures",
	"%s loses major contract to competitor",
	"Analysts downgrade %s citing growth concerns",
	"%s recalls products due to safety issues",
}

var neutralTemplates = []string{
	"%s to report earnings next week, analysts mixed",
	"%s CEO speaks at industry conference",
	"%s announces board member retirement",
	"%s maintains guidance for fiscal year",
	"%s completes routine acquisition",
	"Market analysts provide mixed outlook for %s",
}

var newsSources = []string{
	"Reuters",
	"Bloomberg",
	"CNBC",
	"Wall Street Journal",
	"Financial Times",
	"MarketWatch",
}

// sentimentBias skews the positive/negative article mix per ticker.
// 0.5 is balanced; higher means more bullish coverage.
var sentimentBias = map[string]float64{
	"AAPL":  0.6,
	"MSFT":  0.7,
	"GOOGL": 0.5,
	"AMZN":  0.55,
	"NVDA":  0.8,
	"META":  0.4,
	"TSLA":  0.45,
	"JPM":   0.5,
	"V":     0.6,
	"JNJ":   0.55,
}

// newsBaseDate fixes article timestamps for reproducible output.
var newsBaseDate = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

// NewsProvider generates template-based articles with a per-ticker
// sentiment mix.
type NewsProvider struct{}

// NewNewsProvider creates a synthetic news provider.
func NewNewsProvider() *NewsProvider {
	return &NewsProvider{}
}

func (p *NewsProvider) Name() string {
	return NewsProviderName
}

// GetNews generates up to maxArticles articles, newest first. The
// positive/negative split follows the ticker's bias entry, or a
// hash-derived bias for unknown tickers. companyName is ignored; the
// templates are keyed on the symbol.
func (p *NewsProvider) GetNews(ctx context.Context, ticker string, maxArticles int, companyName string) ([]models.NewsArticle, error) {
	bias, ok := sentimentBias[ticker]
	if !ok {
		hash := common.TickerHash(ticker)
		bias = 0.5 + float64(hash%20-10)*0.02
	}

	positiveCount := int(float64(maxArticles) * bias * 0.6)
	negativeCount := int(float64(maxArticles) * (1 - bias) * 0.6)
	neutralCount := maxArticles - positiveCount - negativeCount

	articles := make([]models.NewsArticle, 0, maxArticles)
	index := 0

	for i := 0; i < positiveCount; i++ {
		articles = append(articles, makeArticle(ticker, positiveTemplates[i%len(positiveTemplates)], "positive", index))
		index++
	}
	for i := 0; i < negativeCount; i++ {
		articles = append(articles, makeArticle(ticker, negativeTemplates[i%len(negativeTemplates)], "negative", index))
		index++
	}
	for i := 0; i < neutralCount; i++ {
		articles = append(articles, makeArticle(ticker, neutralTemplates[i%len(neutralTemplates)], "neutral", index))
		index++
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt > articles[j].PublishedAt
	})

	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}
	return articles, nil
}

func makeArticle(ticker, template, kind string, index int) models.NewsArticle {
	published := newsBaseDate.
		Add(-time.Duration(index) * 24 * time.Hour).
		Add(-time.Duration(index*3) * time.Hour)

	return models.NewsArticle{
		Title:       fmt.Sprintf(template, ticker),
		Source:      newsSources[index%len(newsSources)],
		PublishedAt: published.Format(time.RFC3339),
		URL:         fmt.Sprintf("https://example.com/news/%s-%d", strings.ToLower(ticker), index),
		Summary:     fmt.Sprintf("Summary for %s %s news article #%d", ticker, kind, index),
	}
}
