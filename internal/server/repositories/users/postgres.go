package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/geophoto/internal/common"
	"github.com/dmitrijs2005/geophoto/internal/dbx"
	"github.com/dmitrijs2005/geophoto/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert creates the user on first login or refreshes the mutable profile
// fields on subsequent logins, keyed by google_id. Quota ceilings are set
// from the record only on insert; existing users keep their configured
// ceilings and live counters. One atomic statement, no find-then-create.
func (r *PostgresRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (google_id, email, name, profile_picture, max_uploads, max_storage_bytes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (google_id)
		 DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name,
		 	profile_picture = EXCLUDED.profile_picture, updated_at = now()
		 RETURNING id, upload_count, total_storage_used, max_uploads, max_storage_bytes, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.GoogleID, user.Email, user.Name, user.ProfilePicture, user.MaxUploads, user.MaxStorageBytes).
		Scan(&user.ID, &user.UploadCount, &user.TotalStorageUsed, &user.MaxUploads, &user.MaxStorageBytes,
			&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, google_id, email, name, profile_picture, upload_count, total_storage_used,
		 	max_uploads, max_storage_bytes, created_at, updated_at
		 FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.GoogleID, &user.Email, &user.Name,
		&user.ProfilePicture, &user.UploadCount, &user.TotalStorageUsed,
		&user.MaxUploads, &user.MaxStorageBytes, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
