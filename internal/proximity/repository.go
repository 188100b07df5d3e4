package proximity

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	// FindNearby runs the radius query entirely in Postgres: latest
	// non-expired observation per user within radiusMeters of the point,
	// excluding the requesting user.
	FindNearby(ctx context.Context, userID string, lat, lon, radiusMeters float64) ([]NearbyUser, error)

	// LatestObservations resolves activity metadata for a candidate set
	// produced by the geo index.
	LatestObservations(ctx context.Context, userIDs []string) (map[string]NearbyUser, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) FindNearby(ctx context.Context, userID string, lat, lon, radiusMeters float64) ([]NearbyUser, error) {
	var users []NearbyUser

	query := `
		SELECT user_id, activity_type, location_name, detected_at, distance_meters
		FROM (
			SELECT DISTINCT ON (user_id)
				user_id, activity_type, location_name, detected_at,
				2 * 6371000 * asin(sqrt(
					power(sin(radians(latitude - $2) / 2), 2) +
					cos(radians($2)) * cos(radians(latitude)) *
					power(sin(radians(longitude - $3) / 2), 2)
				)) AS distance_meters
			FROM user_activities
			WHERE user_id <> $1 AND expires_at > NOW()
			ORDER BY user_id, detected_at DESC
		) latest
		WHERE distance_meters <= $4
		ORDER BY distance_meters ASC
	`

	err := r.db.SelectContext(ctx, &users, query, userID, lat, lon, radiusMeters)
	return users, err
}

func (r *postgresRepository) LatestObservations(ctx context.Context, userIDs []string) (map[string]NearbyUser, error) {
	if len(userIDs) == 0 {
		return map[string]NearbyUser{}, nil
	}

	var rows []NearbyUser
	query := `
		SELECT DISTINCT ON (user_id)
			user_id, activity_type, location_name, detected_at, 0 AS distance_meters
		FROM user_activities
		WHERE user_id = ANY($1) AND expires_at > NOW()
		ORDER BY user_id, detected_at DESC
	`

	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(userIDs)); err != nil {
		return nil, err
	}

	out := make(map[string]NearbyUser, len(rows))
	for _, row := range rows {
		out[row.UserID] = row
	}

	return out, nil
}
