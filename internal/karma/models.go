package karma

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TransactionType labels why karma moved.
type TransactionType string

const (
	TypeHelpGiven    TransactionType = "help_given"
	TypeHelpReceived TransactionType = "help_received"
	TypeRequest      TransactionType = "request"
	TypeEmergency    TransactionType = "emergency"
	TypeBonus        TransactionType = "bonus"
	TypePenalty      TransactionType = "penalty"
	TypeReward       TransactionType = "reward"
)

// Difficulty grades a help task.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Metadata is a free-form jsonb payload attached to a transaction.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(Metadata{})
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, m)
	case string:
		return json.Unmarshal([]byte(data), m)
	default:
		return errors.New("unsupported jsonb source type")
	}
}

// Transaction is one karma ledger entry. The ledger is append-only; the
// balance is always the sum of a user's transactions.
type Transaction struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"user_id" db:"user_id"`
	Amount        int             `json:"amount" db:"amount"`
	Type          TransactionType `json:"transaction_type" db:"transaction_type"`
	RelatedUserID *string         `json:"related_user_id,omitempty" db:"related_user_id"`
	Description   string          `json:"description" db:"description"`
	Multiplier    float64         `json:"multiplier" db:"multiplier"`
	Metadata      Metadata        `json:"metadata" db:"metadata"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Balance is the derived karma standing for one user.
type Balance struct {
	Balance     int    `json:"balance"`
	Level       int    `json:"level"`
	LevelName   string `json:"level_name"`
	NextLevelAt int    `json:"next_level_at"`
}

// LeaderboardEntry is one row of the karma leaderboard.
type LeaderboardEntry struct {
	UserID  string `json:"user_id" db:"id"`
	Balance int    `json:"balance" db:"karma_balance"`
	Level   int    `json:"level" db:"-"`
}
