// Package sentiment scores news text with a fixed financial keyword
// lexicon. Deterministic and dependency free so the pipeline behaves
// identically with live or synthetic news.
package sentiment

import (
	"math"
	"strings"

	"github.com/ternarybob/alphalens/internal/models"
)

// positiveKeywords mark bullish language in headlines and summaries.
var positiveKeywords = []string{
	"record", "beat", "exceed", "growth", "upgrade", "buy",
	"innovative", "expand", "increase", "strong", "success",
	"partnership", "opportunity", "momentum", "outperform",
}

// negativeKeywords mark bearish language.
var negativeKeywords = []string{
	"miss", "decline", "downgrade", "sell", "concern", "pressure",
	"layoff", "investigation", "recall", "loss", "weak", "fail",
	"regulatory", "lawsuit", "cut", "warning", "underperform",
}

// labelThreshold separates positive/negative articles from neutral ones.
const labelThreshold = 0.2

// ScoreText returns a sentiment score in [-1,1] for a block of text.
// Zero matches yield 0 (neutral).
func ScoreText(text string) float64 {
	lower := strings.ToLower(text)

	positive := 0
	for _, word := range positiveKeywords {
		if strings.Contains(lower, word) {
			positive++
		}
	}
	negative := 0
	for _, word := range negativeKeywords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return 0.0
	}

	score := float64(positive-negative) / float64(total)
	return math.Max(-1.0, math.Min(1.0, score))
}

// ScoreArticle scores an article on its title and summary combined.
func ScoreArticle(article models.NewsArticle) float64 {
	return ScoreText(article.Title + " " + article.Summary)
}

// Label maps a score to a sentiment label.
func Label(score float64) string {
	switch {
	case score > labelThreshold:
		return models.SentimentPositive
	case score < -labelThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Summarize aggregates article sentiment into a per-ticker summary.
// The overall score is the mean article score rounded to 3 decimals.
// An empty article set is fully neutral.
func Summarize(articles []models.NewsArticle) models.SentimentSummary {
	if len(articles) == 0 {
		return models.SentimentSummary{}
	}

	summary := models.SentimentSummary{ArticleCount: len(articles)}
	totalScore := 0.0

	for _, article := range articles {
		score := ScoreArticle(article)
		totalScore += score

		switch Label(score) {
		case models.SentimentPositive:
			summary.PositiveCount++
		case models.SentimentNegative:
			summary.NegativeCount++
		default:
			summary.NeutralCount++
		}
	}

	summary.Score = math.Round(totalScore/float64(len(articles))*1000) / 1000
	return summary
}
