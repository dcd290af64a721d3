// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account identified by an upstream-verified Google profile.
// The quota counters are maintained by the quota ledger and must always
// match the user's live photos: UploadCount equals the number of photos,
// TotalStorageUsed equals the sum of their stored byte sizes.
type User struct {
	ID             string    `json:"id"`
	GoogleID       string    `json:"googleId"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	ProfilePicture string    `json:"profilePicture"`
	UploadCount    int64     `json:"uploadCount"`
	// TotalStorageUsed is charged against stored (transcoded) bytes,
	// not uploaded bytes.
	TotalStorageUsed int64     `json:"totalStorageUsed"`
	MaxUploads       int64     `json:"maxUploads"`
	MaxStorageBytes  int64     `json:"maxStorageBytes"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
