package photos

import (
	"context"

	"github.com/dmitrijs2005/geophoto/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, photo *models.Photo) (*models.Photo, error)
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	Delete(ctx context.Context, id string) error
	// ListByOwner returns photos newest-first. An empty ownerID lists all
	// photos (the public map view).
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Photo, error)
}
