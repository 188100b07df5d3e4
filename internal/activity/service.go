// internal/activity/service.go

package activity

import (
	"context"
	"errors"
	"log"
	"time"
)

var ErrInvalidSample = errors.New("sample has no usable coordinates")

// GeoIndex mirrors presence writes into the live geo index used for
// proximity queries. Implemented by the proximity package.
type GeoIndex interface {
	Upsert(ctx context.Context, userID string, lat, lon float64) error
	Remove(ctx context.Context, userID string) error
}

type Service interface {
	// RecordSample processes one device sample: presence is written
	// unconditionally, the observation only when the classifier is
	// confident enough. The returned observation is nil when discarded.
	RecordSample(ctx context.Context, userID string, sample Sample) (*Observation, error)

	GetCurrentActivity(ctx context.Context, userID string) (*Observation, error)
	GetPattern(ctx context.Context, userID string, at time.Time, activityType ActivityType) (*Pattern, error)
	GetLastLocation(ctx context.Context, userID string) (*Presence, error)
	StopTracking(ctx context.Context, userID string) error

	// PruneObservations drops observations detected before the cutoff.
	// Expired rows are already invisible to matching; this bounds table
	// growth past the rhythm analysis window.
	PruneObservations(ctx context.Context, cutoff time.Time) error
}

type Config struct {
	ObservationTTL  time.Duration
	MinConfidence   float64
	PatternCapCount int
}

type service struct {
	repo Repository
	geo  GeoIndex
	cfg  Config
	now  func() time.Time
}

func NewService(repo Repository, geo GeoIndex, cfg Config) Service {
	if cfg.ObservationTTL <= 0 {
		cfg.ObservationTTL = 2 * time.Hour
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = 0.6
	}
	if cfg.PatternCapCount <= 0 {
		cfg.PatternCapCount = 20
	}

	return &service{
		repo: repo,
		geo:  geo,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *service) RecordSample(ctx context.Context, userID string, sample Sample) (*Observation, error) {
	if sample.Latitude == 0 && sample.Longitude == 0 {
		return nil, ErrInvalidSample
	}

	now := s.now()

	// Samples buffered offline arrive late; the device timestamp is
	// when the activity actually happened.
	sampledAt := sample.Timestamp
	if sampledAt.IsZero() {
		sampledAt = now
	}

	// Presence is written on every sample regardless of what the
	// classifier decides.
	presence := &Presence{
		UserID:    userID,
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
	}
	if err := s.repo.UpsertPresence(ctx, presence); err != nil {
		return nil, err
	}

	if s.geo != nil {
		if err := s.geo.Upsert(ctx, userID, sample.Latitude, sample.Longitude); err != nil {
			// The Postgres row is the source of truth; a stale geo
			// index self-heals on the next sample.
			log.Printf("Failed to update presence geo index for %s: %v", userID, err)
		}
	}

	detection := Classify(sampledAt.Hour(), sample.Speed)
	if detection.Confidence <= s.cfg.MinConfidence {
		return nil, nil
	}

	obs := &Observation{
		UserID:       userID,
		ActivityType: detection.ActivityType,
		Latitude:     sample.Latitude,
		Longitude:    sample.Longitude,
		Confidence:   detection.Confidence,
		Speed:        sample.Speed,
		LocationName: detection.LocationName,
		DetectedAt:   sampledAt,
		ExpiresAt:    sampledAt.Add(s.cfg.ObservationTTL),
	}
	if detection.VenueType != "" {
		venue := string(detection.VenueType)
		obs.VenueType = &venue
	}

	if err := s.repo.CreateObservation(ctx, obs); err != nil {
		return nil, err
	}

	RecordObservation(string(detection.ActivityType))

	if err := s.repo.IncrementPattern(ctx, userID, int(sampledAt.Weekday()), TimeSlot(sampledAt.Hour()), detection.ActivityType, s.cfg.PatternCapCount); err != nil {
		// Pattern bookkeeping is advisory; the observation already landed.
		log.Printf("Failed to update activity pattern for %s: %v", userID, err)
	}

	return obs, nil
}

func (s *service) GetCurrentActivity(ctx context.Context, userID string) (*Observation, error) {
	return s.repo.GetLatestObservation(ctx, userID)
}

func (s *service) GetPattern(ctx context.Context, userID string, at time.Time, activityType ActivityType) (*Pattern, error) {
	return s.repo.GetPattern(ctx, userID, int(at.Weekday()), TimeSlot(at.Hour()), activityType)
}

func (s *service) GetLastLocation(ctx context.Context, userID string) (*Presence, error) {
	return s.repo.GetPresence(ctx, userID)
}

func (s *service) PruneObservations(ctx context.Context, cutoff time.Time) error {
	deleted, err := s.repo.DeleteObservationsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("Pruned %d stale activity observations", deleted)
	}
	return nil
}

func (s *service) StopTracking(ctx context.Context, userID string) error {
	if s.geo != nil {
		if err := s.geo.Remove(ctx, userID); err != nil {
			log.Printf("Failed to remove %s from presence geo index: %v", userID, err)
		}
	}
	return s.repo.MarkOffline(ctx, userID)
}
