package lobby

import (
	"time"

	"github.com/lib/pq"
)

// LobbyStatus tracks the lifecycle of an auto-generated lobby.
type LobbyStatus string

const (
	StatusOpen      LobbyStatus = "open"
	StatusStarted   LobbyStatus = "started"
	StatusCancelled LobbyStatus = "cancelled"
)

// LobbyType is the coarse category shown in the client's lobby browser.
type LobbyType string

const (
	TypeDinner LobbyType = "dinner"
	TypeSports LobbyType = "sports"
	TypeSocial LobbyType = "social"
)

// Lobby is an auto-generated meetup seeded from a synchronicity. The host
// is the first member of the synchronicity; everyone in the member set is
// pre-joined.
type Lobby struct {
	ID                  string      `json:"id" db:"id"`
	HostID              string      `json:"host_id" db:"host_id"`
	Title               string      `json:"title" db:"title"`
	Description         string      `json:"description" db:"description"`
	ActivityType        string      `json:"activity_type" db:"activity_type"`
	LocationName        string      `json:"location_name" db:"location_name"`
	Latitude            float64     `json:"latitude" db:"latitude"`
	Longitude           float64     `json:"longitude" db:"longitude"`
	MaxParticipants     int         `json:"max_participants" db:"max_participants"`
	MinParticipants     int         `json:"min_participants" db:"min_participants"`
	CurrentParticipants int         `json:"current_participants" db:"current_participants"`
	ScheduledTime       time.Time   `json:"scheduled_time" db:"scheduled_time"`
	Status              LobbyStatus `json:"status" db:"status"`
	LobbyType           LobbyType   `json:"lobby_type" db:"lobby_type"`
	IsAutoGenerated     bool        `json:"is_auto_generated" db:"is_auto_generated"`
	SynchronicityID     *string     `json:"synchronicity_id,omitempty" db:"synchronicity_id"`
	AutoStartAt         *time.Time  `json:"auto_start_at,omitempty" db:"auto_start_at"`
	IsPaid              bool        `json:"is_paid" db:"is_paid"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`

	// Populated on creation, not stored on the lobby row.
	UserIDs pq.StringArray `json:"user_ids,omitempty" db:"-"`
}

// Participant links a user to a lobby.
type Participant struct {
	ID            string    `json:"id" db:"id"`
	LobbyID       string    `json:"lobby_id" db:"lobby_id"`
	UserID        string    `json:"user_id" db:"user_id"`
	Status        string    `json:"status" db:"status"`
	PaymentStatus string    `json:"payment_status" db:"payment_status"`
	JoinedAt      time.Time `json:"joined_at" db:"joined_at"`
}

// MapActivityToLobbyType buckets an activity into the lobby category.
func MapActivityToLobbyType(activityType string) LobbyType {
	switch activityType {
	case "lunch", "dinner":
		return TypeDinner
	case "exercise":
		return TypeSports
	default:
		return TypeSocial
	}
}
