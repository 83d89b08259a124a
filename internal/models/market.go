package models

// PriceSeries holds daily OHLCV bars for one ticker, chronologically
// ascending. All slices have equal length.
type PriceSeries struct {
	Ticker  string    `json:"ticker"`
	Dates   []string  `json:"dates"` // yyyy-mm-dd
	Opens   []float64 `json:"opens"`
	Highs   []float64 `json:"highs"`
	Lows    []float64 `json:"lows"`
	Closes  []float64 `json:"closes"`
	Volumes []int64   `json:"volumes"`
}

// Len returns the number of bars in the series.
func (p *PriceSeries) Len() int {
	return len(p.Dates)
}

// LatestClose returns the most recent closing price, or 0 for an empty series.
func (p *PriceSeries) LatestClose() float64 {
	if len(p.Closes) == 0 {
		return 0
	}
	return p.Closes[len(p.Closes)-1]
}

// TechnicalIndicators are the price-derived signals computed per ticker.
type TechnicalIndicators struct {
	RSI           float64 `json:"rsi"`
	MACD          float64 `json:"macd"`
	MACDSignal    float64 `json:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram"`
	SMA50         float64 `json:"sma_50"`
	SMA200        float64 `json:"sma_200"`
	CurrentPrice  float64 `json:"current_price"`
	VolumeTrend   float64 `json:"volume_trend"` // >1 increasing, <1 decreasing
}

// FundamentalMetrics are company financials. Each metric is independently
// optional; nil means the provider had no value.
type FundamentalMetrics struct {
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	RevenueGrowth *float64 `json:"revenue_growth,omitempty"`
	ProfitMargin  *float64 `json:"profit_margin,omitempty"`
	DebtToEquity  *float64 `json:"debt_to_equity,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
}

// CompanyInfo is best-effort company metadata used to sharpen news queries.
type CompanyInfo struct {
	Name     string `json:"name"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
	Exchange string `json:"exchange,omitempty"`
}

// Sentiment labels assigned per article by the news adapter.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// NewsArticle is a single news item for a ticker.
type NewsArticle struct {
	Title          string `json:"title"`
	Source         string `json:"source"`
	PublishedAt    string `json:"published_at"`
	URL            string `json:"url"`
	Summary        string `json:"summary,omitempty"`
	SentimentLabel string `json:"sentiment_label,omitempty"`
}

// SentimentSummary aggregates sentiment across the article set for one
// ticker. Score is in [-1,1].
type SentimentSummary struct {
	Score         float64 `json:"score"`
	ArticleCount  int     `json:"article_count"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	NeutralCount  int     `json:"neutral_count"`
}
