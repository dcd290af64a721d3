// Package storage provides durable blob storage for transcoded photos.
package storage

import "context"

// ObjectStore is the durable content store for photo blobs.
//
// Put either fully succeeds (the object is durably readable at the returned
// public URL) or fails with nothing visible. Delete is idempotent: removing
// a key that does not exist is success. Transport and auth failures wrap
// common.ErrStoreUnavailable.
type ObjectStore interface {
	Put(ctx context.Context, data []byte, ownerID string) (key string, publicURL string, err error)
	Delete(ctx context.Context, key string) error
}
