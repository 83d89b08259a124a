package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/alphalens/internal/interfaces"
	"github.com/ternarybob/alphalens/internal/models"
)

// RunStorage implements the RunStore interface for Badger
type RunStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRunStorage creates a new RunStorage instance
func NewRunStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RunStore {
	return &RunStorage{
		db:     db,
		logger: logger,
	}
}

// Save stores a recommendation result keyed by its run ID.
func (s *RunStorage) Save(ctx context.Context, result *models.RecommendationResult) (string, error) {
	if result.RunID == "" {
		return "", fmt.Errorf("cannot save result without run ID")
	}

	if err := s.db.Store().Upsert(result.RunID, result); err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}

	s.logger.Debug().
		Str("run_id", result.RunID).
		Str("user_id", result.UserID).
		Int("tickers", len(result.Tickers)).
		Msg("Saved recommendation run")

	return result.RunID, nil
}

// GetByID retrieves a run by its ID.
func (s *RunStorage) GetByID(ctx context.Context, runID string) (*models.RecommendationResult, error) {
	var result models.RecommendationResult
	err := s.db.Store().Get(runID, &result)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &result, nil
}

// GetByUser returns run summaries for a user, newest first.
func (s *RunStorage) GetByUser(ctx context.Context, userID string, limit, offset int) ([]models.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var results []models.RecommendationResult
	query := badgerhold.Where("UserID").Eq(userID).
		SortBy("CreatedAt").Reverse().
		Skip(offset).Limit(limit)
	if err := s.db.Store().Find(&results, query); err != nil {
		return nil, fmt.Errorf("failed to list runs for user: %w", err)
	}

	summaries := make([]models.RunSummary, 0, len(results))
	for i := range results {
		summaries = append(summaries, results[i].Summary())
	}
	return summaries, nil
}

// Delete removes a run. Returns false if the run did not exist.
func (s *RunStorage) Delete(ctx context.Context, runID string) (bool, error) {
	err := s.db.Store().Delete(runID, &models.RecommendationResult{})
	if err == badgerhold.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete run: %w", err)
	}
	return true, nil
}
