package rhythm

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	UpsertRhythm(ctx context.Context, rhythm *UserRhythm) error
	GetRhythm(ctx context.Context, userID string) (*UserRhythm, error)
	ListOtherRhythms(ctx context.Context, userID string) ([]*UserRhythm, error)

	// Compatibility evaluates the stored compatibility function between
	// two users' rhythms.
	Compatibility(ctx context.Context, userAID, userBID string) (float64, error)

	// UpsertMirrorMatch stores the pair unordered; (a,b) and (b,a)
	// share one row.
	UpsertMirrorMatch(ctx context.Context, userAID, userBID string, score float64, routines []string) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) UpsertRhythm(ctx context.Context, rhythm *UserRhythm) error {
	query := `
		INSERT INTO user_rhythms (
			user_id, wake_time, sleep_time, lunch_time, workout_pattern,
			commute_pattern, social_peaks, rhythm_type, energy_peaks,
			coffee_spots, favorite_venues, weekend_routine,
			calculated_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			wake_time = EXCLUDED.wake_time,
			sleep_time = EXCLUDED.sleep_time,
			lunch_time = EXCLUDED.lunch_time,
			workout_pattern = EXCLUDED.workout_pattern,
			commute_pattern = EXCLUDED.commute_pattern,
			social_peaks = EXCLUDED.social_peaks,
			rhythm_type = EXCLUDED.rhythm_type,
			energy_peaks = EXCLUDED.energy_peaks,
			coffee_spots = EXCLUDED.coffee_spots,
			favorite_venues = EXCLUDED.favorite_venues,
			weekend_routine = EXCLUDED.weekend_routine,
			calculated_at = NOW(),
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(
		ctx, query,
		rhythm.UserID, rhythm.WakeTime, rhythm.SleepTime, rhythm.LunchTime,
		rhythm.WorkoutPattern, rhythm.CommutePattern, rhythm.SocialPeaks,
		rhythm.RhythmType, rhythm.EnergyPeaks, rhythm.CoffeeSpots,
		rhythm.FavoriteVenues, rhythm.WeekendRoutine,
	)
	return err
}

func (r *postgresRepository) GetRhythm(ctx context.Context, userID string) (*UserRhythm, error) {
	var rhythm UserRhythm
	query := `SELECT * FROM user_rhythms WHERE user_id = $1`

	err := r.db.GetContext(ctx, &rhythm, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rhythm, nil
}

func (r *postgresRepository) ListOtherRhythms(ctx context.Context, userID string) ([]*UserRhythm, error) {
	var rhythms []*UserRhythm
	query := `SELECT * FROM user_rhythms WHERE user_id != $1`

	err := r.db.SelectContext(ctx, &rhythms, query, userID)
	return rhythms, err
}

func (r *postgresRepository) Compatibility(ctx context.Context, userAID, userBID string) (float64, error) {
	var score sql.NullFloat64
	query := `SELECT calculate_rhythm_compatibility($1, $2)`

	if err := r.db.GetContext(ctx, &score, query, userAID, userBID); err != nil {
		return 0, err
	}

	return score.Float64, nil
}

func (r *postgresRepository) UpsertMirrorMatch(ctx context.Context, userAID, userBID string, score float64, routines []string) error {
	// Canonical ordering keeps (a,b) and (b,a) on one row.
	if userBID < userAID {
		userAID, userBID = userBID, userAID
	}

	query := `
		INSERT INTO mirror_matches (user_a, user_b, overlap_score, shared_routines, last_updated)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_a, user_b) DO UPDATE SET
			overlap_score = EXCLUDED.overlap_score,
			shared_routines = EXCLUDED.shared_routines,
			last_updated = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, userAID, userBID, score, pq.StringArray(routines))
	return err
}
