package attachments

import (
	"context"

	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error)
	GetByID(ctx context.Context, id int64) (*models.Attachment, error)
	ListByIssue(ctx context.Context, issueID int64) ([]*models.Attachment, error)
	MarkUploaded(ctx context.Context, id int64) error
}
