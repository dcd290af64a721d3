package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/geophoto/internal/common"
	"github.com/dmitrijs2005/geophoto/internal/dbx"
)

type PostgresLedger struct {
	db dbx.DBTX
}

func NewPostgresLedger(db dbx.DBTX) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (r *PostgresLedger) Usage(ctx context.Context, ownerID string) (*Usage, error) {
	query :=
		`SELECT upload_count, total_storage_used, max_uploads, max_storage_bytes FROM users
		 WHERE id = $1
		 `

	u := &Usage{}
	err := r.db.QueryRowContext(ctx, query, ownerID).
		Scan(&u.UploadCount, &u.TotalStorageUsed, &u.MaxUploads, &u.MaxStorageBytes)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

func (r *PostgresLedger) CheckAdmission(ctx context.Context, ownerID string, incomingBytes int64) error {
	u, err := r.Usage(ctx, ownerID)
	if err != nil {
		return err
	}
	return admit(u, incomingBytes)
}

// admit applies the ceiling rules to a usage snapshot. The upload-count
// check runs first so the rejection reason is deterministic when both
// ceilings would fail.
func admit(u *Usage, incomingBytes int64) error {
	if u.UploadCount >= u.MaxUploads {
		return common.ErrUploadLimitReached
	}
	if u.TotalStorageUsed+incomingBytes > u.MaxStorageBytes {
		return common.ErrStorageLimitReached
	}
	return nil
}

// CommitIncrease performs the charge and the ceiling re-validation in one
// conditional UPDATE. Zero rows affected means the owner either raced past
// a ceiling since the admission check or does not exist; the reason is
// re-derived with a fresh read.
func (r *PostgresLedger) CommitIncrease(ctx context.Context, ownerID string, bytes int64) error {
	query :=
		`UPDATE users
		 SET upload_count = upload_count + 1,
		 	total_storage_used = total_storage_used + $2,
		 	updated_at = now()
		 WHERE id = $1
		 	AND upload_count < max_uploads
		 	AND total_storage_used + $2 <= max_storage_bytes
		 `

	res, err := r.db.ExecContext(ctx, query, ownerID, bytes)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		u, err := r.Usage(ctx, ownerID)
		if err != nil {
			return err
		}
		if err := admit(u, bytes); err != nil {
			return err
		}
		return fmt.Errorf("quota commit affected no rows for owner %s", ownerID)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// CommitDecrease releases one upload, flooring both counters at zero. The
// previous counter values are captured in the same statement so the caller
// learns whether the floor was hit.
func (r *PostgresLedger) CommitDecrease(ctx context.Context, ownerID string, bytes int64) (bool, error) {
	query :=
		`WITH prev AS (
		 	SELECT upload_count, total_storage_used FROM users WHERE id = $1 FOR UPDATE
		 )
		 UPDATE users
		 SET upload_count = GREATEST(users.upload_count - 1, 0),
		 	total_storage_used = GREATEST(users.total_storage_used - $2, 0),
		 	updated_at = now()
		 FROM prev
		 WHERE users.id = $1
		 RETURNING prev.upload_count < 1 OR prev.total_storage_used < $2
		 `

	var clamped bool
	err := r.db.QueryRowContext(ctx, query, ownerID, bytes).Scan(&clamped)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	return clamped, nil
}
