// Package recommendation orchestrates the full pipeline: validate the
// request, gather evidence per ticker from the configured providers
// with synthetic fallback, score, rank, allocate, and persist the run.
package recommendation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/alphalens/internal/common"
	"github.com/ternarybob/alphalens/internal/interfaces"
	"github.com/ternarybob/alphalens/internal/models"
	"github.com/ternarybob/alphalens/internal/services/indicators"
	"github.com/ternarybob/alphalens/internal/services/scoring"
	"github.com/ternarybob/alphalens/internal/services/sentiment"
)

// Providers bundles the data sources the pipeline draws from. Fallbacks
// substitute for their primary on transient failure; they are expected
// to never fail.
type Providers struct {
	Market       interfaces.MarketDataProvider
	Fundamentals interfaces.FundamentalsProvider
	News         interfaces.NewsProvider

	FallbackMarket       interfaces.MarketDataProvider
	FallbackFundamentals interfaces.FundamentalsProvider
	FallbackNews         interfaces.NewsProvider
}

// Options tunes pipeline fetch sizes.
type Options struct {
	PriceHistoryDays int
	MaxNewsArticles  int
}

// Service runs recommendation pipelines.
type Service struct {
	providers Providers
	runs      interfaces.RunStore
	opts      Options
	validate  *validator.Validate
	logger    arbor.ILogger
}

// NewService creates the pipeline service. runs may be nil when run
// history persistence is disabled.
func NewService(providers Providers, runs interfaces.RunStore, opts Options, logger arbor.ILogger) *Service {
	if opts.PriceHistoryDays <= 0 {
		opts.PriceHistoryDays = 200
	}
	if opts.MaxNewsArticles <= 0 {
		opts.MaxNewsArticles = 20
	}

	validate := validator.New()
	validate.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		_, err := common.NormalizeTicker(fl.Field().String())
		return err == nil
	})

	return &Service{
		providers: providers,
		runs:      runs,
		opts:      opts,
		validate:  validate,
		logger:    logger,
	}
}

// tickerEvidence is the per-ticker fan-out result.
type tickerEvidence struct {
	ticker   string
	evidence models.EvidencePacket
	err      error
}

// Run executes one pipeline run for a user. Ticker symbols are
// normalized and deduplicated before plan limits apply. The returned
// result is already persisted when a run store is configured.
func (s *Service) Run(ctx context.Context, req *models.RecommendationRequest, user *models.User) (*models.RecommendationResult, error) {
	tickers, err := common.NormalizeTickers(req.Tickers)
	if err != nil {
		return nil, err
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("request contains no tickers")
	}

	normalized := &models.RecommendationRequest{Tickers: tickers, Horizon: req.Horizon}
	if err := s.validate.Struct(normalized); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if !req.Horizon.IsValid() {
		return nil, fmt.Errorf("unknown horizon %q", req.Horizon)
	}
	if err := models.ValidateRequestForPlan(normalized, user.Plan); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Strs("tickers", tickers).
		Str("horizon", string(req.Horizon)).
		Msg("Starting recommendation run")

	evidence, err := s.gatherEvidence(ctx, tickers)
	if err != nil {
		return nil, err
	}
	// Evidence may still resolve after cancellation (synthetic providers
	// never block); an aborted run must not persist or return it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make([]scoring.TickerBreakdown, 0, len(evidence))
	for _, packet := range evidence {
		entries = append(entries, scoring.TickerBreakdown{
			Ticker: packet.Ticker,
			Breakdown: models.ScoreBreakdown{
				Technical:   scoring.TechnicalScore(packet.Technical),
				Fundamental: scoring.FundamentalScore(packet.Fundamental),
				Sentiment:   scoring.SentimentScore(packet.Sentiment),
			},
		})
	}

	result := &models.RecommendationResult{
		RunID:     uuid.NewString(),
		UserID:    user.ID,
		Tickers:   tickers,
		Horizon:   req.Horizon,
		Scores:    scoring.RankAndAllocate(entries),
		Evidence:  evidence,
		CreatedAt: time.Now().UTC(),
	}

	if s.runs != nil {
		if _, err := s.runs.Save(ctx, result); err != nil {
			s.logger.Warn().Str("run_id", result.RunID).Err(err).Msg("Failed to persist run")
		}
	}

	s.logger.Info().
		Str("run_id", result.RunID).
		Str("top_pick", result.Scores[0].Ticker).
		Str("top_score", fmt.Sprintf("%.2f", result.Scores[0].CompositeScore)).
		Msg("Recommendation run complete")

	return result, nil
}

// gatherEvidence fans out one goroutine per ticker. Any ticker-level
// failure aborts the whole run: a partial ranking would misallocate
// capital.
func (s *Service) gatherEvidence(ctx context.Context, tickers []string) ([]models.EvidencePacket, error) {
	results := make([]tickerEvidence, len(tickers))
	var wg sync.WaitGroup

	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			evidence, err := s.gatherTicker(ctx, ticker)
			results[i] = tickerEvidence{ticker: ticker, err: err}
			if err == nil {
				results[i].evidence = *evidence
			}
		}(i, ticker)
	}
	wg.Wait()

	packets := make([]models.EvidencePacket, 0, len(tickers))
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		packets = append(packets, r.evidence)
	}
	return packets, nil
}

// gatherTicker fetches the three evidence facets concurrently and
// assembles one packet.
func (s *Service) gatherTicker(ctx context.Context, ticker string) (*models.EvidencePacket, error) {
	var (
		wg sync.WaitGroup

		series     *models.PriceSeries
		marketProv models.FacetProvenance
		marketErr  error

		metrics    *models.FundamentalMetrics
		fundProv   models.FacetProvenance
		fundErr    error

		articles []models.NewsArticle
		newsProv models.FacetProvenance
		newsErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		series, marketProv, marketErr = s.fetchMarket(ctx, ticker)
	}()
	go func() {
		defer wg.Done()
		metrics, fundProv, fundErr = s.fetchFundamentals(ctx, ticker)
	}()
	go func() {
		defer wg.Done()
		articles, newsProv, newsErr = s.fetchNews(ctx, ticker)
	}()
	wg.Wait()

	for _, err := range []error{marketErr, fundErr, newsErr} {
		if err != nil {
			return nil, err
		}
	}

	return &models.EvidencePacket{
		Ticker:      ticker,
		Technical:   indicators.Compute(series),
		Fundamental: *metrics,
		Sentiment:   sentiment.Summarize(articles),
		Provenance: models.Provenance{
			Market:       marketProv,
			Fundamentals: fundProv,
			News:         newsProv,
		},
		FetchedAt: time.Now().UTC(),
	}, nil
}

// fetchMarket tries the primary market provider and substitutes the
// fallback on transient failure. An unknown ticker never falls back.
func (s *Service) fetchMarket(ctx context.Context, ticker string) (*models.PriceSeries, models.FacetProvenance, error) {
	primary := s.providers.Market
	series, err := primary.GetPriceHistory(ctx, ticker, s.opts.PriceHistoryDays)
	if err == nil {
		return series, provenance(primary.Name()), nil
	}

	var invalidErr *interfaces.InvalidTickerError
	if errors.As(err, &invalidErr) {
		return nil, models.FacetProvenance{}, err
	}
	// A cancelled run aborts; it must not complete on synthetic data.
	if ctx.Err() != nil {
		return nil, models.FacetProvenance{}, err
	}
	if s.providers.FallbackMarket == nil {
		return nil, models.FacetProvenance{}, err
	}

	s.logger.Warn().
		Str("ticker", ticker).
		Str("provider", primary.Name()).
		Err(err).
		Msg("Market data unavailable, using synthetic fallback")

	series, fbErr := s.providers.FallbackMarket.GetPriceHistory(ctx, ticker, s.opts.PriceHistoryDays)
	if fbErr != nil {
		return nil, models.FacetProvenance{}, fbErr
	}
	return series, provenance(s.providers.FallbackMarket.Name()), nil
}

func (s *Service) fetchFundamentals(ctx context.Context, ticker string) (*models.FundamentalMetrics, models.FacetProvenance, error) {
	primary := s.providers.Fundamentals
	metrics, err := primary.GetFundamentals(ctx, ticker)
	if err == nil {
		return metrics, provenance(primary.Name()), nil
	}

	var invalidErr *interfaces.InvalidTickerError
	if errors.As(err, &invalidErr) {
		return nil, models.FacetProvenance{}, err
	}
	if ctx.Err() != nil {
		return nil, models.FacetProvenance{}, err
	}
	if s.providers.FallbackFundamentals == nil {
		return nil, models.FacetProvenance{}, err
	}

	s.logger.Warn().
		Str("ticker", ticker).
		Str("provider", primary.Name()).
		Err(err).
		Msg("Fundamentals unavailable, using synthetic fallback")

	metrics, fbErr := s.providers.FallbackFundamentals.GetFundamentals(ctx, ticker)
	if fbErr != nil {
		return nil, models.FacetProvenance{}, fbErr
	}
	return metrics, provenance(s.providers.FallbackFundamentals.Name()), nil
}

// fetchNews looks up the company name first so the news query can use
// it. The lookup is best-effort; the query falls back to the bare
// ticker form when no name is available.
func (s *Service) fetchNews(ctx context.Context, ticker string) ([]models.NewsArticle, models.FacetProvenance, error) {
	companyName := ""
	if info, err := s.providers.Market.GetCompanyInfo(ctx, ticker); err == nil && info.Name != ticker {
		companyName = info.Name
	}

	primary := s.providers.News
	articles, err := primary.GetNews(ctx, ticker, s.opts.MaxNewsArticles, companyName)
	if err == nil {
		return articles, provenance(primary.Name()), nil
	}

	var invalidErr *interfaces.InvalidTickerError
	if errors.As(err, &invalidErr) {
		return nil, models.FacetProvenance{}, err
	}
	if ctx.Err() != nil {
		return nil, models.FacetProvenance{}, err
	}
	if s.providers.FallbackNews == nil {
		return nil, models.FacetProvenance{}, err
	}

	s.logger.Warn().
		Str("ticker", ticker).
		Str("provider", primary.Name()).
		Err(err).
		Msg("News unavailable, using synthetic fallback")

	articles, fbErr := s.providers.FallbackNews.GetNews(ctx, ticker, s.opts.MaxNewsArticles, companyName)
	if fbErr != nil {
		return nil, models.FacetProvenance{}, fbErr
	}
	return articles, provenance(s.providers.FallbackNews.Name()), nil
}

func provenance(name string) models.FacetProvenance {
	return models.FacetProvenance{Provider: name, FetchedAt: time.Now().UTC()}
}
