package users

import (
	"context"

	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByLogin(ctx context.Context, userID string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
