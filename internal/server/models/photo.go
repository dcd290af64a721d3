package models

import "time"

// Location is a point on the map the photo is pinned to.
// Both coordinates are required and must be finite.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Photo describes one stored image. The blob itself lives in object storage
// under StorageKey; FileSize is the size of the transcoded object actually
// stored, which is what the owner's quota is charged for.
//
// A Photo is created only after the blob is durably written and deleted only
// after the blob is removed, so a record never points at a missing object.
type Photo struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Title      string    `json:"title"`
	StorageKey string    `json:"storageKey"`
	PublicURL  string    `json:"publicUrl"`
	FileSize   int64     `json:"fileSize"`
	Location   Location  `json:"location"`
	CreatedAt  time.Time `json:"createdAt"`
}
