// internal/proximity/matcher.go

package proximity

import (
	"context"
	"log"
)

// GeoIndex is the live presence index queried before falling back to
// Postgres. *RedisGeo satisfies it.
type GeoIndex interface {
	Radius(ctx context.Context, lat, lon, radiusMeters float64) ([]GeoMember, error)
}

type Matcher interface {
	// FindNearbyUsers returns users within radiusMeters of the point with
	// a live (non-expired) activity observation, excluding userID.
	// No pagination; callers post-filter by activity.
	FindNearbyUsers(ctx context.Context, userID string, lat, lon, radiusMeters float64) ([]NearbyUser, error)
}

type matcher struct {
	repo Repository
	geo  GeoIndex // optional
}

func NewMatcher(repo Repository, geo GeoIndex) Matcher {
	return &matcher{repo: repo, geo: geo}
}

func (m *matcher) FindNearbyUsers(ctx context.Context, userID string, lat, lon, radiusMeters float64) ([]NearbyUser, error) {
	if m.geo != nil {
		users, err := m.viaGeoIndex(ctx, userID, lat, lon, radiusMeters)
		if err == nil {
			return users, nil
		}
		log.Printf("Geo index query failed, falling back to Postgres: %v", err)
	}

	return m.repo.FindNearby(ctx, userID, lat, lon, radiusMeters)
}

func (m *matcher) viaGeoIndex(ctx context.Context, userID string, lat, lon, radiusMeters float64) ([]NearbyUser, error) {
	members, err := m.geo.Radius(ctx, lat, lon, radiusMeters)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(members))
	for _, member := range members {
		if member.UserID == userID {
			continue
		}
		candidates = append(candidates, member.UserID)
	}

	observations, err := m.repo.LatestObservations(ctx, candidates)
	if err != nil {
		return nil, err
	}

	// Users present in the index but without a live observation are not
	// matchable: they moved recently but the classifier had nothing
	// confident to say.
	users := make([]NearbyUser, 0, len(candidates))
	for _, member := range members {
		obs, ok := observations[member.UserID]
		if !ok {
			continue
		}
		obs.DistanceMeters = member.DistanceMeters
		users = append(users, obs)
	}

	return users, nil
}
