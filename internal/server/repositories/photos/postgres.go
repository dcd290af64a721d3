package photos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/geophoto/internal/common"
	"github.com/dmitrijs2005/geophoto/internal/dbx"
	"github.com/dmitrijs2005/geophoto/internal/server/models"
)

// PostgresRepository implements photo metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, photo *models.Photo) (*models.Photo, error) {

	query :=
		`INSERT INTO photos (owner_id, title, storage_key, public_url, file_size, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		photo.OwnerID, photo.Title, photo.StorageKey, photo.PublicURL, photo.FileSize,
		photo.Location.Latitude, photo.Location.Longitude).
		Scan(&photo.ID, &photo.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return photo, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query :=
		`SELECT id, owner_id, title, storage_key, public_url, file_size, latitude, longitude, created_at
		 FROM photos
		 WHERE id = $1
		 `

	photo := &models.Photo{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&photo.ID, &photo.OwnerID, &photo.Title,
		&photo.StorageKey, &photo.PublicURL, &photo.FileSize,
		&photo.Location.Latitude, &photo.Location.Longitude, &photo.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return photo, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM photos WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Photo, error) {
	query :=
		`SELECT id, owner_id, title, storage_key, public_url, file_size, latitude, longitude, created_at
		 FROM photos
		 WHERE ($1 = '' OR owner_id::text = $1)
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select photos: %w", err)
	}
	defer rows.Close()

	var result []*models.Photo
	for rows.Next() {
		var item models.Photo
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Title, &item.StorageKey, &item.PublicURL,
			&item.FileSize, &item.Location.Latitude, &item.Location.Longitude, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
