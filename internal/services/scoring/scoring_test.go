package scoring

import (
	"math"
	"testing"

	"github.com/ternarybob/alphalens/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestWeightsSumToOne(t *testing.T) {
	sum := TechnicalWeight + FundamentalWeight + SentimentWeight
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum to %v, want 1.0", sum)
	}
}

func TestTechnicalScore(t *testing.T) {
	tests := []struct {
		name string
		ind  models.TechnicalIndicators
		want float64
	}{
		{
			// 25 (oversold) + 25 (strong momentum) + 30 (above both, capped) + 20 (volume)
			name: "maximally bullish",
			ind: models.TechnicalIndicators{
				RSI: 25, MACDHistogram: 1.0,
				CurrentPrice: 110, SMA50: 100, SMA200: 90,
				VolumeTrend: 1.5,
			},
			want: 100,
		},
		{
			// 5 (overbought) + 5 (strong bearish) + 5 (below both, no cross) + 5 (declining)
			name: "maximally bearish",
			ind: models.TechnicalIndicators{
				RSI: 80, MACDHistogram: -1.0,
				CurrentPrice: 80, SMA50: 100, SMA200: 110,
				VolumeTrend: 0.5,
			},
			want: 20,
		},
		{
			// 15 (neutral RSI) + 10 (weak bearish) + 20+5 (above 200 only + golden cross) + 10 (stable)
			name: "mixed signals",
			ind: models.TechnicalIndicators{
				RSI: 50, MACDHistogram: -0.2,
				CurrentPrice: 105, SMA50: 110, SMA200: 100,
				VolumeTrend: 0.9,
			},
			want: 60,
		},
		{
			// Golden cross bonus must not push the SMA component past 30
			name: "golden cross capped",
			ind: models.TechnicalIndicators{
				RSI: 50, MACDHistogram: 0.2,
				CurrentPrice: 120, SMA50: 110, SMA200: 100,
				VolumeTrend: 1.1,
			},
			want: 15 + 20 + 30 + 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TechnicalScore(tt.ind); got != tt.want {
				t.Errorf("TechnicalScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFundamentalScore(t *testing.T) {
	tests := []struct {
		name    string
		metrics models.FundamentalMetrics
		want    float64
	}{
		{
			name: "all strong",
			metrics: models.FundamentalMetrics{
				PERatio:       ptr(12.0),
				RevenueGrowth: ptr(0.25),
				ProfitMargin:  ptr(0.30),
				DebtToEquity:  ptr(0.2),
			},
			want: 100,
		},
		{
			name: "all weak",
			metrics: models.FundamentalMetrics{
				PERatio:       ptr(55.0),
				RevenueGrowth: ptr(-0.05),
				ProfitMargin:  ptr(-0.02),
				DebtToEquity:  ptr(3.0),
			},
			want: 20,
		},
		{
			// Two strong metrics rescaled by 4/2 must still reach 100
			name: "partial data rescaled",
			metrics: models.FundamentalMetrics{
				PERatio:      ptr(12.0),
				ProfitMargin: ptr(0.30),
			},
			want: 100,
		},
		{
			// One moderate metric: 15 * 4 = 60
			name: "single metric",
			metrics: models.FundamentalMetrics{
				RevenueGrowth: ptr(0.08),
			},
			want: 60,
		},
		{
			name: "negative earnings",
			metrics: models.FundamentalMetrics{
				PERatio: ptr(-10.0),
			},
			want: 20,
		},
		{
			name:    "no metrics",
			metrics: models.FundamentalMetrics{},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FundamentalScore(tt.metrics); got != tt.want {
				t.Errorf("FundamentalScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFundamentalScoreNeverExceeds100(t *testing.T) {
	metrics := models.FundamentalMetrics{
		PERatio:       ptr(10.0),
		RevenueGrowth: ptr(0.5),
		ProfitMargin:  ptr(0.4),
	}
	// Three metrics at 25 each = 75, rescaled by 4/3 = 100, capped
	if got := FundamentalScore(metrics); got > 100 {
		t.Errorf("FundamentalScore = %v, must not exceed 100", got)
	}
}

func TestSentimentScore(t *testing.T) {
	tests := []struct {
		name    string
		summary models.SentimentSummary
		want    float64
	}{
		{"strongly positive full confidence", models.SentimentSummary{Score: 1.0, ArticleCount: 20}, 100},
		{"strongly negative full confidence", models.SentimentSummary{Score: -1.0, ArticleCount: 20}, 0},
		{"neutral", models.SentimentSummary{Score: 0.0, ArticleCount: 20}, 50},
		// base 100, confidence 0.6: 50 + 50*0.6 = 80
		{"positive but few articles", models.SentimentSummary{Score: 1.0, ArticleCount: 2}, 80},
		// base 100, confidence 0.8
		{"positive moderate coverage", models.SentimentSummary{Score: 1.0, ArticleCount: 5}, 90},
		// base 100, confidence 0.9
		{"positive good coverage", models.SentimentSummary{Score: 1.0, ArticleCount: 10}, 95},
		{"no articles regresses to neutral", models.SentimentSummary{}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SentimentScore(tt.summary); got != tt.want {
				t.Errorf("SentimentScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompositeScore(t *testing.T) {
	breakdown := models.ScoreBreakdown{Technical: 80, Fundamental: 60, Sentiment: 70}
	// 80*0.4 + 60*0.3 + 70*0.3 = 32 + 18 + 21 = 71
	if got := CompositeScore(breakdown); got != 71.0 {
		t.Errorf("CompositeScore = %v, want 71.0", got)
	}
}

func TestRankAndAllocate(t *testing.T) {
	entries := []TickerBreakdown{
		{Ticker: "LOW", Breakdown: models.ScoreBreakdown{Technical: 20, Fundamental: 20, Sentiment: 20}},
		{Ticker: "HIGH", Breakdown: models.ScoreBreakdown{Technical: 90, Fundamental: 90, Sentiment: 90}},
		{Ticker: "MID", Breakdown: models.ScoreBreakdown{Technical: 50, Fundamental: 50, Sentiment: 50}},
	}

	scores := RankAndAllocate(entries)

	if len(scores) != 3 {
		t.Fatalf("got %d scores, want 3", len(scores))
	}
	if scores[0].Ticker != "HIGH" || scores[1].Ticker != "MID" || scores[2].Ticker != "LOW" {
		t.Errorf("order = %s/%s/%s, want HIGH/MID/LOW",
			scores[0].Ticker, scores[1].Ticker, scores[2].Ticker)
	}
	for i, s := range scores {
		if s.Rank != i+1 {
			t.Errorf("rank[%d] = %d, want %d", i, s.Rank, i+1)
		}
	}

	total := 0.0
	for _, s := range scores {
		total += s.AllocationPct
	}
	if math.Abs(total-100) > 0.05 {
		t.Errorf("total allocation = %v, want ~100", total)
	}
	if scores[0].AllocationPct <= scores[2].AllocationPct {
		t.Error("higher score must receive higher allocation")
	}
}

func TestRankAndAllocateZeroScoresEqualSplit(t *testing.T) {
	entries := []TickerBreakdown{
		{Ticker: "A"},
		{Ticker: "B"},
	}

	scores := RankAndAllocate(entries)
	for _, s := range scores {
		if s.AllocationPct != 50.0 {
			t.Errorf("allocation for %s = %v, want 50.0 equal split", s.Ticker, s.AllocationPct)
		}
	}
}

func TestRankAndAllocateTieBreaksByTicker(t *testing.T) {
	breakdown := models.ScoreBreakdown{Technical: 60, Fundamental: 60, Sentiment: 60}
	entries := []TickerBreakdown{
		{Ticker: "ZZZ", Breakdown: breakdown},
		{Ticker: "AAA", Breakdown: breakdown},
	}

	scores := RankAndAllocate(entries)
	if scores[0].Ticker != "AAA" || scores[1].Ticker != "ZZZ" {
		t.Errorf("tie order = %s/%s, want AAA/ZZZ", scores[0].Ticker, scores[1].Ticker)
	}
}

func TestRankAndAllocateSingleTicker(t *testing.T) {
	scores := RankAndAllocate([]TickerBreakdown{
		{Ticker: "ONLY", Breakdown: models.ScoreBreakdown{Technical: 70, Fundamental: 70, Sentiment: 70}},
	})
	if len(scores) != 1 || scores[0].AllocationPct != 100.0 || scores[0].Rank != 1 {
		t.Errorf("single ticker = %+v, want rank 1 at 100%%", scores[0])
	}
}
