package synchronicity

import (
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Synchronicity records that several users were doing the same activity in
// the same place at the same time. Rows are append-only; only the lobby
// linkage and notification timestamp are ever mutated, and records expire
// rather than being deleted.
type Synchronicity struct {
	ID             string         `json:"id" db:"id"`
	UserIDs        pq.StringArray `json:"user_ids" db:"user_ids"`
	ActivityType   string         `json:"activity_type" db:"activity_type"`
	LocationName   *string        `json:"location_name,omitempty" db:"location_name"`
	Latitude       float64        `json:"latitude" db:"latitude"`
	Longitude      float64        `json:"longitude" db:"longitude"`
	SyncScore      float64        `json:"sync_score" db:"sync_score"`
	DistanceMeters float64        `json:"distance_meters" db:"distance_meters"`
	LobbyCreated   bool           `json:"lobby_created" db:"lobby_created"`
	LobbyID        *string        `json:"lobby_id,omitempty" db:"lobby_id"`
	DedupKey       string         `json:"-" db:"dedup_key"`
	Open           bool           `json:"-" db:"open"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	ExpiresAt      time.Time      `json:"expires_at" db:"expires_at"`
	NotifiedAt     *time.Time     `json:"notified_at,omitempty" db:"notified_at"`
}

// DedupKey produces the deterministic key the storage layer enforces
// uniqueness on: the sorted member set plus the activity. Two concurrent
// scans producing the identical synchronicity collide on it.
func DedupKey(userIDs []string, activityType string) string {
	sorted := make([]string, len(userIDs))
	copy(sorted, userIDs)
	sort.Strings(sorted)
	return activityType + ":" + strings.Join(sorted, ",")
}
