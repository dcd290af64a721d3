// Package common defines shared constants and sentinel errors used across
// the geophoto server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Request validation errors (terminal, side-effect-free).
	ErrInvalidRequest = errors.New("invalid request")

	// Auth errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidToken    = errors.New("invalid token")

	// Quota admission errors. Both are terminal and side-effect-free;
	// the upload-count check takes precedence when both ceilings would fail.
	ErrUploadLimitReached  = errors.New("upload limit reached")
	ErrStorageLimitReached = errors.New("storage limit reached")

	// Transcoder error: the payload could not be decoded as an image.
	ErrUnsupportedMedia = errors.New("unsupported media")

	// Infrastructure errors.
	ErrStoreUnavailable  = errors.New("object store unavailable")
	ErrPersistenceFailed = errors.New("persistence failed")
)
