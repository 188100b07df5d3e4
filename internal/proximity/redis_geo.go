package proximity

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// RedisGeo maintains the live presence geo index with Redis GEO commands.
// Membership is best-effort: the Postgres observation rows decide whether
// a candidate is actually matchable.
type RedisGeo struct {
	client *redis.Client
	key    string
}

type GeoMember struct {
	UserID         string
	DistanceMeters float64
}

func NewRedisGeo(client *redis.Client, key string) *RedisGeo {
	return &RedisGeo{client: client, key: key}
}

func (r *RedisGeo) Upsert(ctx context.Context, userID string, lat, lon float64) error {
	return r.client.GeoAdd(ctx, r.key, &redis.GeoLocation{
		Name:      userID,
		Latitude:  lat,
		Longitude: lon,
	}).Err()
}

func (r *RedisGeo) Remove(ctx context.Context, userID string) error {
	return r.client.ZRem(ctx, r.key, userID).Err()
}

// Radius returns members within radiusMeters, closest first.
func (r *RedisGeo) Radius(ctx context.Context, lat, lon, radiusMeters float64) ([]GeoMember, error) {
	res, err := r.client.GeoRadius(ctx, r.key, lon, lat, &redis.GeoRadiusQuery{
		Radius:   radiusMeters,
		Unit:     "m",
		WithDist: true,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	members := make([]GeoMember, 0, len(res))
	for _, g := range res {
		members = append(members, GeoMember{
			UserID:         g.Name,
			DistanceMeters: g.Dist,
		})
	}

	return members, nil
}
