package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/alphalens/internal/app"
	"github.com/ternarybob/alphalens/internal/common"
	"github.com/ternarybob/alphalens/internal/models"
)

// configPaths allows multiple -config flags; later files override earlier ones.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	tickersFlag = flag.String("tickers", "", "Comma-separated ticker symbols (e.g. AAPL,MSFT,NVDA)")
	horizonFlag = flag.String("horizon", "1M", "Investment horizon: 1W, 1M, 3M, 6M, 1Y")
	planFlag    = flag.String("plan", "free", "Subscription plan: free or pro")
	userFlag    = flag.String("user", "local", "User ID for run history")
	historyFlag = flag.Bool("history", false, "List recent runs for the user instead of running the pipeline")
	limitFlag   = flag.Int("limit", 10, "Maximum runs to list with -history")
	showVersion = flag.Bool("version", false, "Print version information")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("AlphaLens version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup order: config, logger, banner, then the app itself
	var err error
	if len(configFiles) == 0 {
		if _, statErr := os.Stat("alphalens.toml"); statErr == nil {
			configFiles = append(configFiles, "alphalens.toml")
		}
	}
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	application, err := app.New(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *historyFlag {
		if err := listHistory(ctx, application); err != nil {
			logger.Error().Err(err).Msg("Failed to list run history")
			os.Exit(1)
		}
		return
	}

	if err := runPipeline(ctx, application); err != nil {
		logger.Error().Err(err).Msg("Recommendation run failed")
		os.Exit(1)
	}
}

func runPipeline(ctx context.Context, application *app.App) error {
	if *tickersFlag == "" {
		return fmt.Errorf("no tickers given, pass -tickers AAPL,MSFT")
	}

	if err := application.StartScheduler(); err != nil {
		return err
	}

	req := &models.RecommendationRequest{
		Tickers: strings.Split(*tickersFlag, ","),
		Horizon: models.Horizon(strings.ToUpper(*horizonFlag)),
	}
	user := &models.User{
		ID:   *userFlag,
		Plan: models.Plan(strings.ToLower(*planFlag)),
	}

	result, err := application.RecommendationService.Run(ctx, req, user)
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func printResult(result *models.RecommendationResult) {
	fmt.Printf("\nRun %s  (horizon %s)\n\n", result.RunID, result.Horizon)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tTICKER\tCOMPOSITE\tTECH\tFUND\tSENT\tALLOC%\tSOURCES")
	for _, s := range result.Scores {
		sources := "-"
		for _, packet := range result.Evidence {
			if packet.Ticker == s.Ticker {
				sources = fmt.Sprintf("%s/%s/%s",
					packet.Provenance.Market.Provider,
					packet.Provenance.Fundamentals.Provider,
					packet.Provenance.News.Provider)
				break
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			s.Rank, s.Ticker, s.CompositeScore,
			s.Breakdown.Technical, s.Breakdown.Fundamental, s.Breakdown.Sentiment,
			s.AllocationPct, sources)
	}
	w.Flush()
	fmt.Println()
}

func listHistory(ctx context.Context, application *app.App) error {
	summaries, err := application.StorageManager.RunStorage().GetByUser(ctx, *userFlag, *limitFlag, 0)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Printf("No runs recorded for user %q\n", *userFlag)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tRUN ID\tHORIZON\tTICKERS\tTOP PICK\tTOP SCORE")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\n",
			s.CreatedAt.Format("2006-01-02 15:04"), s.RunID, s.Horizon,
			strings.Join(s.Tickers, ","), s.TopPick, s.TopScore)
	}
	return w.Flush()
}
