package users

import (
	"context"

	"github.com/dmitrijs2005/geophoto/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
