package ping

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreatePing(ctx context.Context, ping *Ping) error
	GetPing(ctx context.Context, id string) (*Ping, error)

	// HasActivePing reports whether the sender already has a pending,
	// unexpired ping for the same activity targeting the user.
	HasActivePing(ctx context.Context, fromUser, toUser string, activity PingActivity, now time.Time) (bool, error)

	UpdatePingStatus(ctx context.Context, id string, status PingStatus) error

	// ListActivePings returns pending and accepted unexpired pings sent
	// by or to the user, newest first.
	ListActivePings(ctx context.Context, userID string, now time.Time) ([]*Ping, error)

	// ExpirePending flips pending pings past their expiry to expired,
	// returning how many were touched.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)

	CreateMatch(ctx context.Context, match *Match) error
	GetMatch(ctx context.Context, id string) (*Match, error)
	ListActiveMatches(ctx context.Context, userID string, now time.Time) ([]*Match, error)

	CreateMessage(ctx context.Context, message *ChatMessage) error
	ListMessages(ctx context.Context, matchID string) ([]*ChatMessage, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreatePing(ctx context.Context, ping *Ping) error {
	if ping.ID == "" {
		ping.ID = uuid.NewString()
	}

	query := `
		INSERT INTO pings (id, from_user, to_user, activity, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6)
		RETURNING created_at
	`

	return r.db.QueryRowxContext(
		ctx, query,
		ping.ID, ping.FromUser, ping.ToUser, ping.Activity, ping.Status, ping.ExpiresAt,
	).Scan(&ping.CreatedAt)
}

func (r *postgresRepository) GetPing(ctx context.Context, id string) (*Ping, error) {
	var ping Ping
	query := `SELECT * FROM pings WHERE id = $1`

	err := r.db.GetContext(ctx, &ping, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &ping, nil
}

func (r *postgresRepository) HasActivePing(ctx context.Context, fromUser, toUser string, activity PingActivity, now time.Time) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM pings
		WHERE from_user = $1 AND to_user = $2 AND activity = $3 AND status = 'pending' AND expires_at > $4
	`

	err := r.db.GetContext(ctx, &count, query, fromUser, toUser, activity, now)
	return count > 0, err
}

func (r *postgresRepository) UpdatePingStatus(ctx context.Context, id string, status PingStatus) error {
	query := `UPDATE pings SET status = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *postgresRepository) ListActivePings(ctx context.Context, userID string, now time.Time) ([]*Ping, error) {
	var pings []*Ping
	query := `
		SELECT * FROM pings
		WHERE (from_user = $1 OR to_user = $1)
		  AND status IN ('pending', 'accepted')
		  AND expires_at > $2
		ORDER BY created_at DESC
	`

	err := r.db.SelectContext(ctx, &pings, query, userID, now)
	return pings, err
}

func (r *postgresRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE pings SET status = 'expired' WHERE status = 'pending' AND expires_at < $1`

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *postgresRepository) CreateMatch(ctx context.Context, match *Match) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}

	query := `
		INSERT INTO matches (id, user_a, user_b, activity, created_at, expires_at)
		VALUES ($1, $2, $3, $4, NOW(), $5)
		RETURNING created_at
	`

	return r.db.QueryRowxContext(
		ctx, query,
		match.ID, match.UserA, match.UserB, match.Activity, match.ExpiresAt,
	).Scan(&match.CreatedAt)
}

func (r *postgresRepository) GetMatch(ctx context.Context, id string) (*Match, error) {
	var match Match
	query := `SELECT * FROM matches WHERE id = $1`

	err := r.db.GetContext(ctx, &match, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &match, nil
}

func (r *postgresRepository) ListActiveMatches(ctx context.Context, userID string, now time.Time) ([]*Match, error) {
	var matches []*Match
	query := `
		SELECT * FROM matches
		WHERE (user_a = $1 OR user_b = $1) AND expires_at > $2
		ORDER BY created_at DESC
	`

	err := r.db.SelectContext(ctx, &matches, query, userID, now)
	return matches, err
}

func (r *postgresRepository) CreateMessage(ctx context.Context, message *ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}

	query := `
		INSERT INTO chat_messages (id, match_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	return r.db.QueryRowxContext(
		ctx, query,
		message.ID, message.MatchID, message.SenderID, message.Content,
	).Scan(&message.CreatedAt)
}

func (r *postgresRepository) ListMessages(ctx context.Context, matchID string) ([]*ChatMessage, error) {
	var messages []*ChatMessage
	query := `SELECT * FROM chat_messages WHERE match_id = $1 ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &messages, query, matchID)
	return messages, err
}
