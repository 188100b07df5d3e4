package synchronicity

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	// Create inserts the synchronicity unless an open record with the
	// same dedup key already exists, in which case that record is
	// returned instead. The uniqueness lives in a partial index so two
	// concurrent scans converge on one row.
	Create(ctx context.Context, s *Synchronicity) (*Synchronicity, error)

	// GetOpenContaining finds an open record whose member set contains
	// all of userIDs for the given activity.
	GetOpenContaining(ctx context.Context, userIDs []string, activityType string) (*Synchronicity, error)

	GetForUser(ctx context.Context, userID string) ([]*Synchronicity, error)
	MarkNotified(ctx context.Context, id string) error
	MarkLobbyCreated(ctx context.Context, id, lobbyID string) error

	// CloseExpired flips the open flag on records past their expiry so
	// the dedup index stops considering them.
	CloseExpired(ctx context.Context) (int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, s *Synchronicity) (*Synchronicity, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.DedupKey = DedupKey(s.UserIDs, s.ActivityType)

	query := `
		INSERT INTO synchronicities (
			id, user_ids, activity_type, location_name, latitude, longitude,
			sync_score, distance_meters, lobby_created, dedup_key, open,
			created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9, TRUE, NOW(), $10)
		ON CONFLICT (dedup_key) WHERE open DO NOTHING
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		s.ID, pq.StringArray(s.UserIDs), s.ActivityType, s.LocationName,
		s.Latitude, s.Longitude, s.SyncScore, s.DistanceMeters,
		s.DedupKey, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt)

	if err == sql.ErrNoRows {
		// Lost the race; hand back the row that won.
		return r.getByDedupKey(ctx, s.DedupKey)
	}
	if err != nil {
		return nil, err
	}

	s.Open = true
	return s, nil
}

func (r *postgresRepository) getByDedupKey(ctx context.Context, dedupKey string) (*Synchronicity, error) {
	var s Synchronicity
	query := `
		SELECT * FROM synchronicities
		WHERE dedup_key = $1 AND open AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &s, query, dedupKey)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *postgresRepository) GetOpenContaining(ctx context.Context, userIDs []string, activityType string) (*Synchronicity, error) {
	var s Synchronicity
	query := `
		SELECT * FROM synchronicities
		WHERE user_ids @> $1 AND activity_type = $2 AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &s, query, pq.StringArray(userIDs), activityType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *postgresRepository) GetForUser(ctx context.Context, userID string) ([]*Synchronicity, error) {
	var records []*Synchronicity
	query := `
		SELECT * FROM synchronicities
		WHERE user_ids @> $1 AND expires_at > NOW()
		ORDER BY sync_score DESC
	`

	err := r.db.SelectContext(ctx, &records, query, pq.StringArray{userID})
	return records, err
}

func (r *postgresRepository) MarkNotified(ctx context.Context, id string) error {
	query := `UPDATE synchronicities SET notified_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *postgresRepository) MarkLobbyCreated(ctx context.Context, id, lobbyID string) error {
	query := `
		UPDATE synchronicities
		SET lobby_created = TRUE, lobby_id = $2
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, lobbyID)
	return err
}

func (r *postgresRepository) CloseExpired(ctx context.Context) (int64, error) {
	query := `UPDATE synchronicities SET open = FALSE WHERE open AND expires_at <= NOW()`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
