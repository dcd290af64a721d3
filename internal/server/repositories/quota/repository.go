// Package quota maintains the per-owner usage counters (upload_count,
// total_storage_used) stored on the users table and enforces the configured
// ceilings. Counter mutations are single atomic conditional statements so
// that concurrent uploads by the same owner cannot pass the ceiling, even
// when the preceding admission check raced.
package quota

import (
	"context"
)

// Usage is the quota state of one owner at the time of a read.
type Usage struct {
	UploadCount      int64
	TotalStorageUsed int64
	MaxUploads       int64
	MaxStorageBytes  int64
}

type Ledger interface {
	// CheckAdmission reads the owner's counters and rejects with
	// common.ErrUploadLimitReached or common.ErrStorageLimitReached if the
	// upload would pass a ceiling. The count check takes precedence when
	// both would fail. This is advisory only; CommitIncrease re-validates.
	CheckAdmission(ctx context.Context, ownerID string, incomingBytes int64) error

	// CommitIncrease atomically charges one upload of the given byte size
	// against the owner, re-validating both ceilings inside the same
	// statement. Returns the same ceiling errors as CheckAdmission when the
	// admission raced away between check and commit.
	CommitIncrease(ctx context.Context, ownerID string, bytes int64) error

	// CommitDecrease atomically releases one upload of the given byte size.
	// Counters never go below zero; clamped reports whether clamping
	// occurred so the caller can log the discrepancy.
	CommitDecrease(ctx context.Context, ownerID string, bytes int64) (clamped bool, err error)

	// Usage returns the owner's current counters and ceilings.
	Usage(ctx context.Context, ownerID string) (*Usage, error)
}
