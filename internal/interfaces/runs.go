package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/alphalens/internal/models"
)

// ErrRunNotFound is returned by RunStore.GetByID for unknown run IDs.
var ErrRunNotFound = errors.New("run not found")

// RunStore persists recommendation results for history queries.
type RunStore interface {
	// Save stores a result and returns its run ID.
	Save(ctx context.Context, result *models.RecommendationResult) (string, error)

	// GetByID returns a stored result, or ErrRunNotFound.
	GetByID(ctx context.Context, runID string) (*models.RecommendationResult, error)

	// GetByUser returns run summaries for a user, newest first.
	GetByUser(ctx context.Context, userID string, limit, offset int) ([]models.RunSummary, error)

	// Delete removes a run. Returns false if the run did not exist.
	Delete(ctx context.Context, runID string) (bool, error)
}
