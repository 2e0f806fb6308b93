package milestones

import (
	"context"

	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, milestone *models.Milestone) (*models.Milestone, error)
	GetByID(ctx context.Context, id int64) (*models.Milestone, error)
	List(ctx context.Context) ([]*models.Milestone, error)
}
