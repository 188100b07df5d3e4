package proximity

import (
	"time"
)

// NearbyUser is one user returned from a radius query, carrying the
// activity attached to their most recent live observation.
type NearbyUser struct {
	UserID         string    `json:"user_id" db:"user_id"`
	DistanceMeters float64   `json:"distance_meters" db:"distance_meters"`
	ActivityType   string    `json:"activity_type" db:"activity_type"`
	LocationName   *string   `json:"location_name,omitempty" db:"location_name"`
	DetectedAt     time.Time `json:"detected_at" db:"detected_at"`
}
