package activity

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Observations
	CreateObservation(ctx context.Context, obs *Observation) error
	GetLatestObservation(ctx context.Context, userID string) (*Observation, error)
	GetObservationsSince(ctx context.Context, userID string, since time.Time) ([]*Observation, error)
	DeleteObservationsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Patterns
	IncrementPattern(ctx context.Context, userID string, dayOfWeek int, timeSlot string, activityType ActivityType, capCount int) error
	GetPattern(ctx context.Context, userID string, dayOfWeek int, timeSlot string, activityType ActivityType) (*Pattern, error)

	// Presence
	UpsertPresence(ctx context.Context, p *Presence) error
	GetPresence(ctx context.Context, userID string) (*Presence, error)
	MarkOffline(ctx context.Context, userID string) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// Observation Methods

func (r *postgresRepository) CreateObservation(ctx context.Context, obs *Observation) error {
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}

	query := `
		INSERT INTO user_activities (
			id, user_id, activity_type, venue_type, latitude, longitude,
			confidence, speed, location_name, detected_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		obs.ID, obs.UserID, obs.ActivityType, obs.VenueType,
		obs.Latitude, obs.Longitude, obs.Confidence, obs.Speed,
		obs.LocationName, obs.DetectedAt, obs.ExpiresAt,
	)

	return err
}

func (r *postgresRepository) GetLatestObservation(ctx context.Context, userID string) (*Observation, error) {
	var obs Observation
	query := `
		SELECT * FROM user_activities
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY detected_at DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &obs, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &obs, nil
}

func (r *postgresRepository) GetObservationsSince(ctx context.Context, userID string, since time.Time) ([]*Observation, error) {
	var observations []*Observation
	query := `
		SELECT * FROM user_activities
		WHERE user_id = $1 AND detected_at >= $2
		ORDER BY detected_at ASC
	`

	err := r.db.SelectContext(ctx, &observations, query, userID, since)
	return observations, err
}

func (r *postgresRepository) DeleteObservationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM user_activities WHERE detected_at < $1`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// Pattern Methods

func (r *postgresRepository) IncrementPattern(ctx context.Context, userID string, dayOfWeek int, timeSlot string, activityType ActivityType, capCount int) error {
	// frequency saturates at occurrence_count/capCount, capped at 1.0
	query := `
		INSERT INTO activity_patterns (
			id, user_id, day_of_week, time_slot, activity_type,
			frequency, occurrence_count, last_occurred
		) VALUES ($1, $2, $3, $4, $5, LEAST(1.0 / $6, 1.0), 1, NOW())
		ON CONFLICT (user_id, day_of_week, time_slot, activity_type)
		DO UPDATE SET
			occurrence_count = activity_patterns.occurrence_count + 1,
			frequency = LEAST((activity_patterns.occurrence_count + 1)::float / $6, 1.0),
			last_occurred = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, dayOfWeek, timeSlot, activityType, capCount)
	return err
}

func (r *postgresRepository) GetPattern(ctx context.Context, userID string, dayOfWeek int, timeSlot string, activityType ActivityType) (*Pattern, error) {
	var pattern Pattern
	query := `
		SELECT * FROM activity_patterns
		WHERE user_id = $1 AND day_of_week = $2 AND time_slot = $3 AND activity_type = $4
	`

	err := r.db.GetContext(ctx, &pattern, query, userID, dayOfWeek, timeSlot, activityType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &pattern, nil
}

// Presence Methods

func (r *postgresRepository) UpsertPresence(ctx context.Context, p *Presence) error {
	query := `
		INSERT INTO user_presence (
			user_id, current_latitude, current_longitude,
			is_online, last_seen, location_updated_at
		) VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			current_latitude = $2,
			current_longitude = $3,
			is_online = TRUE,
			last_seen = NOW(),
			location_updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, p.UserID, p.Latitude, p.Longitude)
	return err
}

func (r *postgresRepository) GetPresence(ctx context.Context, userID string) (*Presence, error) {
	var p Presence
	query := `SELECT * FROM user_presence WHERE user_id = $1`

	err := r.db.GetContext(ctx, &p, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *postgresRepository) MarkOffline(ctx context.Context, userID string) error {
	query := `
		UPDATE user_presence
		SET is_online = FALSE, last_seen = NOW()
		WHERE user_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
