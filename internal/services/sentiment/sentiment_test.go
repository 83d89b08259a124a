package sentiment

import (
	"math"
	"testing"

	"github.com/ternarybob/alphalens/internal/models"
)

func TestScoreText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"no keywords", "the company reported quarterly results", 0.0},
		{"all positive", "record growth and strong momentum", 1.0},
		{"all negative", "lawsuit and regulatory pressure", -1.0},
		{"balanced mix", "strong growth despite layoff concern", 0.0},
		{"three positive one negative", "record growth beat but weak guidance", 0.5},
		{"case insensitive", "RECORD GROWTH", 1.0},
		{"empty", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreText(tt.text)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ScoreText(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.5, models.SentimentPositive},
		{0.21, models.SentimentPositive},
		{0.2, models.SentimentNeutral},
		{0.0, models.SentimentNeutral},
		{-0.2, models.SentimentNeutral},
		{-0.21, models.SentimentNegative},
		{-1.0, models.SentimentNegative},
	}

	for _, tt := range tests {
		if got := Label(tt.score); got != tt.want {
			t.Errorf("Label(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got.Score != 0 || got.ArticleCount != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero summary", got)
	}
}

func TestSummarize(t *testing.T) {
	articles := []models.NewsArticle{
		{Title: "Company reports record growth", Summary: "Strong momentum continues"},
		{Title: "Analysts downgrade on regulatory concern"},
		{Title: "Quarterly results scheduled for next week"},
	}

	got := Summarize(articles)

	if got.ArticleCount != 3 {
		t.Errorf("ArticleCount = %d, want 3", got.ArticleCount)
	}
	if got.PositiveCount != 1 || got.NegativeCount != 1 || got.NeutralCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1",
			got.PositiveCount, got.NegativeCount, got.NeutralCount)
	}
	// (1.0 + -1.0 + 0.0) / 3 = 0.0
	if got.Score != 0.0 {
		t.Errorf("Score = %v, want 0.0", got.Score)
	}
}

func TestSummarizeRoundsToThreeDecimals(t *testing.T) {
	articles := []models.NewsArticle{
		{Title: "record growth"},
		{Title: "nothing notable"},
		{Title: "no signal here"},
	}

	got := Summarize(articles)
	// 1.0 / 3 rounded to 3 decimals
	if got.Score != 0.333 {
		t.Errorf("Score = %v, want 0.333", got.Score)
	}
}

func TestSummarizeUsesTitleAndSummary(t *testing.T) {
	articles := []models.NewsArticle{
		{Title: "Company update", Summary: "Announces strategic partnership and expansion"},
	}

	got := Summarize(articles)
	if got.PositiveCount != 1 {
		t.Errorf("PositiveCount = %d, want 1 (summary text must be scored)", got.PositiveCount)
	}
}
