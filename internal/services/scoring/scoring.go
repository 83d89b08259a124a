// Package scoring turns evidence packets into ranked, allocated stock
// scores. Component scores are bracket based so identical inputs always
// produce identical output regardless of which provider served the data.
package scoring

import (
	"math"
	"sort"

	"github.com/ternarybob/alphalens/internal/models"
)

// Composite score weights. Must sum to 1.0.
const (
	TechnicalWeight   = 0.40
	FundamentalWeight = 0.30
	SentimentWeight   = 0.30
)

// TechnicalScore grades indicators on a 0-100 scale from four
// components: RSI (25), MACD histogram (25), price vs SMAs (30) and
// volume trend (20).
func TechnicalScore(ind models.TechnicalIndicators) float64 {
	score := 0.0

	// RSI: oversold reads bullish, overbought bearish
	switch {
	case ind.RSI < 30:
		score += 25
	case ind.RSI < 40:
		score += 20
	case ind.RSI > 70:
		score += 5
	case ind.RSI > 60:
		score += 10
	default:
		score += 15
	}

	// MACD histogram: positive means bullish momentum
	switch {
	case ind.MACDHistogram > 0.5:
		score += 25
	case ind.MACDHistogram > 0:
		score += 20
	case ind.MACDHistogram > -0.5:
		score += 10
	default:
		score += 5
	}

	aboveSMA50 := ind.CurrentPrice > ind.SMA50
	aboveSMA200 := ind.CurrentPrice > ind.SMA200

	smaScore := 5.0
	switch {
	case aboveSMA50 && aboveSMA200:
		smaScore = 30
	case aboveSMA200:
		smaScore = 20
	case aboveSMA50:
		smaScore = 15
	}
	// Golden cross bonus, capped at the component maximum
	if ind.SMA50 > ind.SMA200 {
		smaScore = math.Min(30, smaScore+5)
	}
	score += smaScore

	switch {
	case ind.VolumeTrend > 1.2:
		score += 20
	case ind.VolumeTrend > 1.0:
		score += 15
	case ind.VolumeTrend > 0.8:
		score += 10
	default:
		score += 5
	}

	return round2(score)
}

// FundamentalScore grades financials on a 0-100 scale. Each available
// metric contributes up to 25 points; when fewer than four metrics are
// present the sum is rescaled so partial data is not penalized. No
// metrics at all scores 0.
func FundamentalScore(m models.FundamentalMetrics) float64 {
	score := 0.0
	components := 0

	if m.PERatio != nil {
		switch pe := *m.PERatio; {
		case pe < 0:
			score += 5
		case pe < 15:
			score += 25
		case pe < 25:
			score += 20
		case pe < 40:
			score += 12
		default:
			score += 5
		}
		components++
	}

	if m.RevenueGrowth != nil {
		switch growth := *m.RevenueGrowth; {
		case growth > 0.20:
			score += 25
		case growth > 0.10:
			score += 20
		case growth > 0.05:
			score += 15
		case growth > 0:
			score += 10
		default:
			score += 5
		}
		components++
	}

	if m.ProfitMargin != nil {
		switch margin := *m.ProfitMargin; {
		case margin > 0.25:
			score += 25
		case margin > 0.15:
			score += 20
		case margin > 0.08:
			score += 15
		case margin > 0:
			score += 10
		default:
			score += 5
		}
		components++
	}

	if m.DebtToEquity != nil {
		switch debt := *m.DebtToEquity; {
		case debt < 0.3:
			score += 25
		case debt < 0.6:
			score += 20
		case debt < 1.0:
			score += 15
		case debt < 2.0:
			score += 10
		default:
			score += 5
		}
		components++
	}

	if components > 0 && components < 4 {
		score = score * (4 / float64(components))
	}

	return round2(math.Min(100.0, score))
}

// SentimentScore maps the [-1,1] aggregate sentiment onto 0-100,
// regressed toward neutral 50 when the article count is too small to
// trust the signal.
func SentimentScore(s models.SentimentSummary) float64 {
	baseScore := (s.Score + 1) / 2 * 100

	var confidence float64
	switch {
	case s.ArticleCount >= 15:
		confidence = 1.0
	case s.ArticleCount >= 10:
		confidence = 0.9
	case s.ArticleCount >= 5:
		confidence = 0.8
	default:
		confidence = 0.6
	}

	return round2(50 + (baseScore-50)*confidence)
}

// CompositeScore combines the three component scores with the fixed
// 40/30/30 weighting.
func CompositeScore(b models.ScoreBreakdown) float64 {
	composite := b.Technical*TechnicalWeight +
		b.Fundamental*FundamentalWeight +
		b.Sentiment*SentimentWeight
	return round2(composite)
}

// TickerBreakdown pairs a ticker with its component scores for ranking.
type TickerBreakdown struct {
	Ticker    string
	Breakdown models.ScoreBreakdown
}

// RankAndAllocate sorts tickers by composite score descending and
// assigns capital proportionally to score. Equal composites break ties
// by ticker ascending so a run is fully deterministic. A zero score
// total falls back to an equal split.
func RankAndAllocate(entries []TickerBreakdown) []models.StockScore {
	scores := make([]models.StockScore, 0, len(entries))
	totalScore := 0.0
	for _, e := range entries {
		composite := CompositeScore(e.Breakdown)
		totalScore += composite
		scores = append(scores, models.StockScore{
			Ticker:         e.Ticker,
			CompositeScore: composite,
			Breakdown:      e.Breakdown,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].CompositeScore != scores[j].CompositeScore {
			return scores[i].CompositeScore > scores[j].CompositeScore
		}
		return scores[i].Ticker < scores[j].Ticker
	})

	for i := range scores {
		scores[i].Rank = i + 1

		var allocation float64
		if totalScore > 0 {
			allocation = scores[i].CompositeScore / totalScore * 100
		} else {
			allocation = 100 / float64(len(scores))
		}
		scores[i].AllocationPct = round2(allocation)
	}

	return scores
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
