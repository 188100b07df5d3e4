package activity

import (
	"fmt"
	"time"
)

// ActivityType is the coarse label inferred from a location sample.
type ActivityType string

const (
	ActivityCoffee   ActivityType = "coffee"
	ActivityLunch    ActivityType = "lunch"
	ActivityDinner   ActivityType = "dinner"
	ActivityCommute  ActivityType = "commute"
	ActivityExercise ActivityType = "exercise"
	ActivityLeisure  ActivityType = "leisure"
	ActivityWork     ActivityType = "work"
	ActivityShopping ActivityType = "shopping"
	ActivitySocial   ActivityType = "social"
)

// VenueType is the venue category attached to a detection.
type VenueType string

const (
	VenueCafe       VenueType = "cafe"
	VenueRestaurant VenueType = "restaurant"
	VenueTransit    VenueType = "transit"
	VenueOutdoor    VenueType = "outdoor"
)

// Sample is one reading from the device geolocation provider.
type Sample struct {
	Latitude  float64   `json:"latitude" validate:"required,latitude"`
	Longitude float64   `json:"longitude" validate:"required,longitude"`
	Accuracy  float64   `json:"accuracy"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
}

// Detection is the classifier output for a single sample.
type Detection struct {
	ActivityType ActivityType `json:"activity_type"`
	VenueType    VenueType    `json:"venue_type,omitempty"`
	Confidence   float64      `json:"confidence"`
	LocationName *string      `json:"location_name,omitempty"`
}

// Observation is a persisted activity detection. Rows are append-only and
// become invisible to matching once expires_at passes.
type Observation struct {
	ID           string       `json:"id" db:"id"`
	UserID       string       `json:"user_id" db:"user_id"`
	ActivityType ActivityType `json:"activity_type" db:"activity_type"`
	VenueType    *string      `json:"venue_type,omitempty" db:"venue_type"`
	Latitude     float64      `json:"latitude" db:"latitude"`
	Longitude    float64      `json:"longitude" db:"longitude"`
	Confidence   float64      `json:"confidence" db:"confidence"`
	Speed        float64      `json:"speed" db:"speed"`
	LocationName *string      `json:"location_name,omitempty" db:"location_name"`
	DetectedAt   time.Time    `json:"detected_at" db:"detected_at"`
	ExpiresAt    time.Time    `json:"expires_at" db:"expires_at"`
}

// Pattern tracks how often a user does an activity in a given weekly slot.
// One row per (user, day_of_week, time_slot, activity_type).
type Pattern struct {
	ID              string       `json:"id" db:"id"`
	UserID          string       `json:"user_id" db:"user_id"`
	DayOfWeek       int          `json:"day_of_week" db:"day_of_week"`
	TimeSlot        string       `json:"time_slot" db:"time_slot"`
	ActivityType    ActivityType `json:"activity_type" db:"activity_type"`
	Frequency       float64      `json:"frequency" db:"frequency"`
	OccurrenceCount int          `json:"occurrence_count" db:"occurrence_count"`
	LastOccurred    time.Time    `json:"last_occurred" db:"last_occurred"`
}

// Presence is the user's live location row, written on every sample.
type Presence struct {
	UserID            string    `json:"user_id" db:"user_id"`
	Latitude          float64   `json:"current_latitude" db:"current_latitude"`
	Longitude         float64   `json:"current_longitude" db:"current_longitude"`
	IsOnline          bool      `json:"is_online" db:"is_online"`
	LastSeen          time.Time `json:"last_seen" db:"last_seen"`
	LocationUpdatedAt time.Time `json:"location_updated_at" db:"location_updated_at"`
}

// TimeSlot formats an hour as the pattern bucket key, e.g. "09:00".
func TimeSlot(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}
