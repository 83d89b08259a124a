// Package app wires configuration, storage, providers, and services
// into a runnable application.
package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/alphalens/internal/common"
	"github.com/ternarybob/alphalens/internal/httpclient"
	"github.com/ternarybob/alphalens/internal/interfaces"
	"github.com/ternarybob/alphalens/internal/providers/fmp"
	"github.com/ternarybob/alphalens/internal/providers/newsapi"
	"github.com/ternarybob/alphalens/internal/providers/polygon"
	"github.com/ternarybob/alphalens/internal/providers/synthetic"
	"github.com/ternarybob/alphalens/internal/services/cache"
	"github.com/ternarybob/alphalens/internal/services/recommendation"
	"github.com/ternarybob/alphalens/internal/services/scheduler"
	badgerstorage "github.com/ternarybob/alphalens/internal/storage/badger"
)

// App holds all application components and dependencies.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	RecommendationService *recommendation.Service
	SchedulerService      *scheduler.Service
}

// New builds the application from configuration. Each data facet uses
// its live provider when an API key is configured, otherwise the
// synthetic one; the synthetic providers also serve as transient-failure
// fallbacks either way.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	providerCache, runStore, err := a.initStorage()
	if err != nil {
		return nil, err
	}

	httpClient := httpclient.New(logger,
		httpclient.WithTimeout(config.HTTP.Timeout()),
		httpclient.WithMaxRetries(config.HTTP.MaxRetries),
		httpclient.WithRetryBackoff(config.HTTP.RetryBackoff()),
	)

	providers := recommendation.Providers{
		FallbackMarket:       synthetic.NewMarketProvider(),
		FallbackFundamentals: synthetic.NewFundamentalsProvider(),
		FallbackNews:         synthetic.NewNewsProvider(),
	}

	if key := config.Providers.PolygonAPIKey; key != "" {
		providers.Market = polygon.New(key, httpClient, providerCache, logger,
			polygon.WithRateLimit(config.Providers.RateLimit),
			polygon.WithCacheTTL(config.Cache.MarketTTL()),
		)
	} else {
		logger.Info().Msg("No Polygon API key configured, using synthetic market data")
		providers.Market = providers.FallbackMarket
	}

	if key := config.Providers.FMPAPIKey; key != "" {
		providers.Fundamentals = fmp.New(key, httpClient, providerCache, logger,
			fmp.WithRateLimit(config.Providers.RateLimit),
			fmp.WithCacheTTL(config.Cache.FundamentalsTTL()),
		)
	} else {
		logger.Info().Msg("No FMP API key configured, using synthetic fundamentals")
		providers.Fundamentals = providers.FallbackFundamentals
	}

	if key := config.Providers.NewsAPIKey; key != "" {
		newsOpts := []newsapi.Option{
			newsapi.WithRateLimit(config.Providers.RateLimit),
			newsapi.WithCacheTTL(config.Cache.NewsTTL()),
			newsapi.WithPageSize(config.Providers.NewsPageSize),
		}
		if config.Providers.NewsAPIBaseURL != "" {
			newsOpts = append(newsOpts, newsapi.WithBaseURL(config.Providers.NewsAPIBaseURL))
		}
		providers.News = newsapi.New(key, httpClient, providerCache, logger, newsOpts...)
	} else {
		logger.Info().Msg("No NewsAPI key configured, using synthetic news")
		providers.News = providers.FallbackNews
	}

	a.RecommendationService = recommendation.NewService(providers, runStore,
		recommendation.Options{
			PriceHistoryDays: config.Pipeline.PriceHistoryDays,
			MaxNewsArticles:  config.Pipeline.MaxNewsArticles,
		}, logger)

	a.SchedulerService = scheduler.NewService(providerCache, logger)

	return a, nil
}

// initStorage opens Badger for the cache and run history. With the
// cache disabled a no-op cache keeps providers fetch-only, but run
// history still persists.
func (a *App) initStorage() (interfaces.ProviderCache, interfaces.RunStore, error) {
	manager, err := badgerstorage.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = manager

	var providerCache interfaces.ProviderCache = manager.CacheStorage()
	if !a.Config.Cache.Enabled {
		a.Logger.Info().Msg("Provider cache disabled, every request fetches fresh data")
		providerCache = cache.NewNoOpCache()
	}

	return providerCache, manager.RunStorage(), nil
}

// StartScheduler begins periodic cache sweeps. No-op when the cache is
// disabled; a no-op cache has nothing to sweep.
func (a *App) StartScheduler() error {
	if !a.Config.Cache.Enabled {
		return nil
	}
	return a.SchedulerService.Start(a.Config.Cache.SweepSchedule)
}

// Close stops background work and releases storage.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}
	if a.StorageManager != nil {
		return a.StorageManager.Close()
	}
	return nil
}
