package ping

import "time"

// PingStatus tracks the lifecycle of a ping.
type PingStatus string

const (
	StatusPending  PingStatus = "pending"
	StatusAccepted PingStatus = "accepted"
	StatusIgnored  PingStatus = "ignored"
	StatusExpired  PingStatus = "expired"
)

// PingActivity is what the sender proposes to do together.
type PingActivity string

const (
	ActivityCoffee PingActivity = "coffee"
	ActivityGaming PingActivity = "gaming"
	ActivitySports PingActivity = "sports"
	ActivityDinner PingActivity = "dinner"
)

// ValidActivity reports whether the activity is one the app knows.
func ValidActivity(a PingActivity) bool {
	switch a {
	case ActivityCoffee, ActivityGaming, ActivitySports, ActivityDinner:
		return true
	}
	return false
}

// Ping is a lightweight invitation from one user to another. It stays
// actionable for a short window and then expires.
type Ping struct {
	ID        string       `json:"id" db:"id"`
	FromUser  string       `json:"from_user" db:"from_user"`
	ToUser    string       `json:"to_user" db:"to_user"`
	Activity  PingActivity `json:"activity" db:"activity"`
	Status    PingStatus   `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	ExpiresAt time.Time    `json:"expires_at" db:"expires_at"`
}

// Match is created when a ping is accepted. The pair can chat until the
// match window closes.
type Match struct {
	ID        string       `json:"id" db:"id"`
	UserA     string       `json:"user_a" db:"user_a"`
	UserB     string       `json:"user_b" db:"user_b"`
	Activity  PingActivity `json:"activity" db:"activity"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	ExpiresAt time.Time    `json:"expires_at" db:"expires_at"`
}

// Involves reports whether the user is one of the matched pair.
func (m *Match) Involves(userID string) bool {
	return m.UserA == userID || m.UserB == userID
}

// ChatMessage is one message inside a match's chat window.
type ChatMessage struct {
	ID        string    `json:"id" db:"id"`
	MatchID   string    `json:"match_id" db:"match_id"`
	SenderID  string    `json:"sender_id" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SendPingRequest is the payload for sending a ping.
type SendPingRequest struct {
	ToUser   string       `json:"to_user" validate:"required,uuid"`
	Activity PingActivity `json:"activity"`
}

// SendMessageRequest is the payload for posting a chat message.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}
