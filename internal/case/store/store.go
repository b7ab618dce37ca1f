package store

import (
	"context"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/models"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain"
)

// Store persists case aggregates. Implementations are pure I/O; all domain
// logic (transitions, completeness rules) belongs to the aggregate and the
// service. Cases are never hard-deleted.
type Store interface {
	Create(ctx context.Context, c *models.Case) error
	Get(ctx context.Context, id domain.CaseID) (*models.Case, error)
	Update(ctx context.Context, c *models.Case) error
}
