// Package services contains server-side business logic. This file implements
// PhotoService, which orchestrates the quota-enforced upload pipeline, photo
// deletion, and listing.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/geophoto/internal/common"
	"github.com/dmitrijs2005/geophoto/internal/dbx"
	"github.com/dmitrijs2005/geophoto/internal/logging"
	"github.com/dmitrijs2005/geophoto/internal/server/models"
	"github.com/dmitrijs2005/geophoto/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/geophoto/internal/server/storage"
)

// Transcoder converts an uploaded image into the stored representation.
type Transcoder interface {
	Transcode(data []byte) ([]byte, error)
}

// UploadRequest carries one validated-at-the-edge upload. Data is the raw
// uploaded payload; admission is pre-checked against its size, while quota
// is ultimately charged for the transcoded size.
type UploadRequest struct {
	OwnerID   string
	Title     string
	Latitude  float64
	Longitude float64
	Data      []byte
}

// PhotoService composes the quota ledger, transcoder, object store, and
// photo metadata repository into the user-visible upload and delete
// operations. The two stores are independent, so multi-step operations run
// as an explicit sequence with compensating actions instead of a
// transaction; see Upload and Delete for the ordering rules.
type PhotoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	transcoder  Transcoder
	logger      logging.Logger
}

func NewPhotoService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore,
	transcoder Transcoder, logger logging.Logger) *PhotoService {
	return &PhotoService{
		db:          db,
		repomanager: m,
		store:       store,
		transcoder:  transcoder,
		logger:      logger.With("module", "photo_service"),
	}
}

// withRetry runs fn with a small bounded retry for transient failures.
// Only errors marked retryable by fn are retried.
func (s *PhotoService) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(2, retry.NewConstant(100*time.Millisecond))
	return retry.Do(ctx, backoff, fn)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Upload runs the pipeline: validate, admit, transcode, store, record,
// commit. Steps execute strictly in this order; quota is charged last and
// for the bytes actually stored. Rejections before the object-store write
// leave no side effects. Failures after a durable write trigger the
// compensations described inline.
func (s *PhotoService) Upload(ctx context.Context, req *UploadRequest) (*models.Photo, error) {

	if req.OwnerID == "" {
		return nil, common.ErrUnauthenticated
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: no photo file provided", common.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrInvalidRequest)
	}
	if !isFinite(req.Latitude) || !isFinite(req.Longitude) {
		return nil, fmt.Errorf("%w: latitude and longitude must be finite", common.ErrInvalidRequest)
	}

	ledger := s.repomanager.Quota(s.db)

	// Conservative pre-check against the uploaded size. The transcoder never
	// produces more bytes than it consumes, so an admitted upload cannot be
	// rejected later for size alone.
	if err := ledger.CheckAdmission(ctx, req.OwnerID, int64(len(req.Data))); err != nil {
		return nil, err
	}

	encoded, err := s.transcoder.Transcode(req.Data)
	if err != nil {
		return nil, err
	}

	var key, publicURL string
	err = s.withRetry(ctx, func(ctx context.Context) error {
		var perr error
		key, publicURL, perr = s.store.Put(ctx, encoded, req.OwnerID)
		if errors.Is(perr, common.ErrStoreUnavailable) {
			return retry.RetryableError(perr)
		}
		return perr
	})
	if err != nil {
		return nil, err
	}

	photo := &models.Photo{
		OwnerID:    req.OwnerID,
		Title:      req.Title,
		StorageKey: key,
		PublicURL:  publicURL,
		FileSize:   int64(len(encoded)),
		Location:   models.Location{Latitude: req.Latitude, Longitude: req.Longitude},
	}

	photo, err = s.repomanager.Photos(s.db).Insert(ctx, photo)
	if err != nil {
		// The blob is durable but has no record. Compensate with a
		// best-effort delete; if that fails too, the orphan is logged for
		// out-of-band reconciliation and never blocks the response.
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.logger.Error(ctx, "orphaned blob left for reconciliation",
				"key", key, "owner_id", req.OwnerID, "error", derr)
		}
		return nil, fmt.Errorf("%w: photo insert: %v", common.ErrPersistenceFailed, err)
	}

	commit := func(ctx context.Context) error {
		cerr := ledger.CommitIncrease(ctx, req.OwnerID, photo.FileSize)
		switch {
		case cerr == nil:
			return nil
		case errors.Is(cerr, common.ErrUploadLimitReached),
			errors.Is(cerr, common.ErrStorageLimitReached),
			errors.Is(cerr, common.ErrNotFound):
			return cerr
		default:
			return retry.RetryableError(cerr)
		}
	}

	if err := s.withRetry(ctx, commit); err != nil {
		if errors.Is(err, common.ErrUploadLimitReached) || errors.Is(err, common.ErrStorageLimitReached) {
			// A concurrent upload won the last slot between the admission
			// check and the commit. Undo the record and the blob so the
			// rejection stays side-effect-free.
			s.compensateUpload(ctx, photo)
			return nil, err
		}
		// The photo is durable and valid, only the accounting is behind.
		// It is reconciled out of band, never rolled back.
		s.logger.Error(ctx, "quota commit failed after photo stored, needs reconciliation",
			"photo_id", photo.ID, "owner_id", req.OwnerID, "bytes", photo.FileSize, "error", err)
		return nil, fmt.Errorf("%w: quota commit: %v", common.ErrPersistenceFailed, err)
	}

	s.logger.Info(ctx, "photo uploaded",
		"photo_id", photo.ID, "owner_id", req.OwnerID, "bytes", photo.FileSize)

	return photo, nil
}

func (s *PhotoService) compensateUpload(ctx context.Context, photo *models.Photo) {
	if err := s.repomanager.Photos(s.db).Delete(ctx, photo.ID); err != nil {
		s.logger.Error(ctx, "compensating photo delete failed",
			"photo_id", photo.ID, "error", err)
	}
	if err := s.store.Delete(ctx, photo.StorageKey); err != nil {
		s.logger.Error(ctx, "compensating blob delete failed, orphan left for reconciliation",
			"key", photo.StorageKey, "error", err)
	}
}

// Delete removes a photo the requester owns. The blob is deleted first, then
// the ledger is decremented, then the record is removed: a crash mid-way can
// only leave an unreferenced blob, never a miscounted ledger.
func (s *PhotoService) Delete(ctx context.Context, photoID, requesterID string) error {

	if requesterID == "" {
		return common.ErrUnauthenticated
	}

	photo, err := s.repomanager.Photos(s.db).GetByID(ctx, photoID)
	if err != nil {
		return err
	}
	if photo.OwnerID != requesterID {
		return common.ErrForbidden
	}

	// Idempotent on the object layer, so safe to retry.
	err = s.withRetry(ctx, func(ctx context.Context) error {
		if derr := s.store.Delete(ctx, photo.StorageKey); derr != nil {
			return retry.RetryableError(derr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		clamped, derr := s.repomanager.Quota(tx).CommitDecrease(ctx, photo.OwnerID, photo.FileSize)
		if errors.Is(derr, common.ErrNotFound) {
			// The owner row vanished while the photo record still exists.
			// That is ledger corruption, not a routine miss; do not let it
			// surface as a 404 on the photo.
			s.logger.Error(ctx, "owner row missing during quota release",
				"owner_id", photo.OwnerID, "photo_id", photo.ID)
			return fmt.Errorf("%w: quota decrease: owner %s missing", common.ErrPersistenceFailed, photo.OwnerID)
		}
		if derr != nil {
			return fmt.Errorf("quota decrease: %w", derr)
		}
		if clamped {
			s.logger.Warn(ctx, "quota counters clamped at zero during release",
				"photo_id", photo.ID, "owner_id", photo.OwnerID, "bytes", photo.FileSize)
		}
		return s.repomanager.Photos(tx).Delete(ctx, photo.ID)
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// A concurrent delete got there first. The blob is already gone
			// and the ledger was never decremented in this transaction.
			return common.ErrNotFound
		}
		if errors.Is(err, common.ErrPersistenceFailed) {
			return err
		}
		return fmt.Errorf("%w: photo delete: %v", common.ErrPersistenceFailed, err)
	}

	s.logger.Info(ctx, "photo deleted", "photo_id", photo.ID, "owner_id", photo.OwnerID)

	return nil
}

// List returns photos newest-first, optionally filtered to one owner.
func (s *PhotoService) List(ctx context.Context, ownerID string) ([]*models.Photo, error) {
	return s.repomanager.Photos(s.db).ListByOwner(ctx, ownerID)
}
