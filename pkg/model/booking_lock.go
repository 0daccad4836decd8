package model

import "time"

// RoomLock is an advisory lock document keyed by room. Holding it while a
// reservation runs its check-then-write keeps two requests for the same room
// from interleaving in the common case; the post-write re-validation in the
// booking service remains the authoritative guard for when a lock expires
// mid-flight.
type RoomLock struct {
	ID        string    `json:"id" bson:"_id"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
