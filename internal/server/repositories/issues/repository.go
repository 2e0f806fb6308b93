package issues

import (
	"context"

	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, issue *models.Issue) (*models.Issue, error)
	// GetByID returns the issue with its owner and milestone resolved.
	GetByID(ctx context.Context, id int64) (*models.Issue, error)
	// GetByIDForUpdate returns the bare issue row, locking it until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Issue, error)
	List(ctx context.Context) ([]*models.Issue, error)
	Update(ctx context.Context, issue *models.Issue) error
	Delete(ctx context.Context, id int64) error
}
