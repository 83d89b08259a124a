package models

import (
	"fmt"
	"time"
)

// Horizon is the requested investment time window.
type Horizon string

const (
	HorizonOneWeek     Horizon = "1W"
	HorizonOneMonth    Horizon = "1M"
	HorizonThreeMonths Horizon = "3M"
	HorizonSixMonths   Horizon = "6M"
	HorizonOneYear     Horizon = "1Y"
)

// Horizons lists all valid horizon values.
var Horizons = []Horizon{
	HorizonOneWeek,
	HorizonOneMonth,
	HorizonThreeMonths,
	HorizonSixMonths,
	HorizonOneYear,
}

// IsValid reports whether h is a known horizon value.
func (h Horizon) IsValid() bool {
	for _, v := range Horizons {
		if h == v {
			return true
		}
	}
	return false
}

// Plan is the user's subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// User is the authenticated caller as consumed from the auth layer.
// Only the fields the pipeline needs are carried here.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Plan  Plan   `json:"plan"`
}

// PlanLimits defines the constraints a plan places on a request.
type PlanLimits struct {
	MaxTickers      int
	AllowedHorizons []Horizon
}

// planLimits are fixed per-plan constraints, enforced before any fetch.
var planLimits = map[Plan]PlanLimits{
	PlanFree: {MaxTickers: 3, AllowedHorizons: []Horizon{HorizonOneMonth}},
	PlanPro:  {MaxTickers: 5, AllowedHorizons: Horizons},
}

// LimitsForPlan returns the constraints for a plan. Unknown plans get
// free-tier limits.
func LimitsForPlan(plan Plan) PlanLimits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[PlanFree]
}

// PlanConstraintError indicates a request exceeds the user's plan limits.
type PlanConstraintError struct {
	Plan    Plan
	Message string
}

func (e *PlanConstraintError) Error() string {
	return fmt.Sprintf("plan constraint violated (%s): %s", e.Plan, e.Message)
}

// ValidateRequestForPlan checks a request against the user's plan limits.
// Returns a *PlanConstraintError on violation.
func ValidateRequestForPlan(req *RecommendationRequest, plan Plan) error {
	limits := LimitsForPlan(plan)

	if len(req.Tickers) > limits.MaxTickers {
		return &PlanConstraintError{
			Plan: plan,
			Message: fmt.Sprintf("plan allows a maximum of %d tickers per run, request contains %d",
				limits.MaxTickers, len(req.Tickers)),
		}
	}

	for _, h := range limits.AllowedHorizons {
		if req.Horizon == h {
			return nil
		}
	}
	return &PlanConstraintError{
		Plan: plan,
		Message: fmt.Sprintf("plan does not allow horizon %q, allowed: %v",
			req.Horizon, limits.AllowedHorizons),
	}
}

// RecommendationRequest is the validated input for one pipeline run.
// Tickers are expected to be normalized via common.NormalizeTickers
// before the pipeline executes.
type RecommendationRequest struct {
	Tickers []string `json:"tickers" validate:"required,min=1,dive,ticker"`
	Horizon Horizon  `json:"horizon" validate:"required"`
}

// ScoreBreakdown holds the three component scores, each in [0,100].
type ScoreBreakdown struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Sentiment   float64 `json:"sentiment"`
}

// StockScore is the ranked scoring result for one ticker.
type StockScore struct {
	Ticker         string         `json:"ticker"`
	CompositeScore float64        `json:"composite_score"`
	Breakdown      ScoreBreakdown `json:"breakdown"`
	Rank           int            `json:"rank"`
	AllocationPct  float64        `json:"allocation_pct"`
}

// FacetProvenance records which provider actually served one data facet.
type FacetProvenance struct {
	Provider  string    `json:"provider"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Provenance tracks the serving provider per facet of an evidence packet.
type Provenance struct {
	Market       FacetProvenance `json:"market"`
	Fundamentals FacetProvenance `json:"fundamentals"`
	News         FacetProvenance `json:"news"`
}

// EvidencePacket is the resolved input bundle for one ticker in one run.
// Immutable once built.
type EvidencePacket struct {
	Ticker      string              `json:"ticker"`
	Technical   TechnicalIndicators `json:"technical"`
	Fundamental FundamentalMetrics  `json:"fundamental"`
	Sentiment   SentimentSummary    `json:"sentiment"`
	Provenance  Provenance          `json:"provenance"`
	FetchedAt   time.Time           `json:"fetched_at"`
}

// RecommendationResult is the output of one pipeline run.
type RecommendationResult struct {
	RunID     string           `json:"run_id" badgerhold:"key"`
	UserID    string           `json:"user_id" badgerholdIndex:"UserID"`
	Tickers   []string         `json:"tickers"`
	Horizon   Horizon          `json:"horizon"`
	Scores    []StockScore     `json:"scores"`
	Evidence  []EvidencePacket `json:"evidence"`
	CreatedAt time.Time        `json:"created_at"`
}

// TotalAllocation sums the allocation percentages; should be ~100.
func (r *RecommendationResult) TotalAllocation() float64 {
	total := 0.0
	for _, s := range r.Scores {
		total += s.AllocationPct
	}
	return total
}

// Summary reduces a result to its history-listing form.
func (r *RecommendationResult) Summary() RunSummary {
	summary := RunSummary{
		RunID:     r.RunID,
		Tickers:   r.Tickers,
		Horizon:   r.Horizon,
		CreatedAt: r.CreatedAt,
	}
	if len(r.Scores) > 0 {
		summary.TopPick = r.Scores[0].Ticker
		summary.TopScore = r.Scores[0].CompositeScore
	}
	return summary
}

// RunSummary is the compact form of a run used for history listings.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Tickers   []string  `json:"tickers"`
	Horizon   Horizon   `json:"horizon"`
	TopPick   string    `json:"top_pick,omitempty"`
	TopScore  float64   `json:"top_score,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
