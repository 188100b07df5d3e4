package activity

import (
	"context"
	"testing"
	"time"
)

type fakeRepo struct {
	observations []*Observation
	patterns     map[string]*Pattern
	presence     *Presence
	patternIncs  int
	offline      bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{patterns: make(map[string]*Pattern)}
}

func (f *fakeRepo) CreateObservation(ctx context.Context, obs *Observation) error {
	f.observations = append(f.observations, obs)
	return nil
}

func (f *fakeRepo) GetLatestObservation(ctx context.Context, userID string) (*Observation, error) {
	if len(f.observations) == 0 {
		return nil, nil
	}
	return f.observations[len(f.observations)-1], nil
}

func (f *fakeRepo) GetObservationsSince(ctx context.Context, userID string, since time.Time) ([]*Observation, error) {
	return f.observations, nil
}

func (f *fakeRepo) IncrementPattern(ctx context.Context, userID string, dayOfWeek int, timeSlot string, activityType ActivityType, capCount int) error {
	f.patternIncs++
	return nil
}

func (f *fakeRepo) GetPattern(ctx context.Context, userID string, dayOfWeek int, timeSlot string, activityType ActivityType) (*Pattern, error) {
	return f.patterns[timeSlot], nil
}

func (f *fakeRepo) UpsertPresence(ctx context.Context, p *Presence) error {
	f.presence = p
	return nil
}

func (f *fakeRepo) DeleteObservationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) GetPresence(ctx context.Context, userID string) (*Presence, error) {
	return f.presence, nil
}

func (f *fakeRepo) MarkOffline(ctx context.Context, userID string) error {
	f.offline = true
	return nil
}

type fakeGeo struct{ upserts, removes int }

func (f *fakeGeo) Upsert(ctx context.Context, userID string, lat, lon float64) error {
	f.upserts++
	return nil
}

func (f *fakeGeo) Remove(ctx context.Context, userID string) error {
	f.removes++
	return nil
}

func atHour(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 2, hour, 5, 0, 0, time.UTC)
	}
}

func TestRecordSamplePersistsConfidentDetection(t *testing.T) {
	repo := newFakeRepo()
	g := &fakeGeo{}
	svc := NewService(repo, g, Config{}).(*service)
	svc.now = atHour(9)

	obs, err := svc.RecordSample(context.Background(), "u1", Sample{Latitude: 55.676, Longitude: 12.568, Speed: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if obs == nil {
		t.Fatal("expected observation for a 0.7 confidence detection")
	}
	if obs.ActivityType != ActivityCoffee {
		t.Fatalf("expected coffee, got %s", obs.ActivityType)
	}
	if obs.ExpiresAt.Sub(obs.DetectedAt) != 2*time.Hour {
		t.Fatalf("unexpected TTL: %v", obs.ExpiresAt.Sub(obs.DetectedAt))
	}
	if repo.patternIncs != 1 {
		t.Fatalf("expected one pattern increment, got %d", repo.patternIncs)
	}
}

func TestRecordSampleUsesDeviceTimestamp(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, Config{}).(*service)
	svc.now = atHour(12) // server receives the upload at lunch time

	// Buffered offline at 09:00; still a coffee observation.
	sampledAt := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	obs, err := svc.RecordSample(context.Background(), "u1", Sample{
		Latitude:  55.676,
		Longitude: 12.568,
		Speed:     0.1,
		Timestamp: sampledAt,
	})
	if err != nil {
		t.Fatal(err)
	}
	if obs == nil {
		t.Fatal("expected observation")
	}
	if obs.ActivityType != ActivityCoffee {
		t.Fatalf("expected coffee for a 09:00 sample, got %s", obs.ActivityType)
	}
	if !obs.DetectedAt.Equal(sampledAt) {
		t.Fatalf("expected DetectedAt %v, got %v", sampledAt, obs.DetectedAt)
	}
	if !obs.ExpiresAt.Equal(sampledAt.Add(2 * time.Hour)) {
		t.Fatalf("unexpected expiry: %v", obs.ExpiresAt)
	}
}

func TestRecordSampleDiscardsLowConfidence(t *testing.T) {
	repo := newFakeRepo()
	g := &fakeGeo{}
	svc := NewService(repo, g, Config{}).(*service)
	svc.now = atHour(15) // leisure fallback, confidence 0.5

	obs, err := svc.RecordSample(context.Background(), "u1", Sample{Latitude: 55.676, Longitude: 12.568, Speed: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if obs != nil {
		t.Fatal("low-confidence detection must be discarded")
	}
	if len(repo.observations) != 0 {
		t.Fatal("no observation row expected")
	}

	// Presence is still written unconditionally.
	if repo.presence == nil {
		t.Fatal("presence must be updated on every sample")
	}
	if g.upserts != 1 {
		t.Fatal("geo index must be updated on every sample")
	}
}

func TestRecordSampleRejectsNullIsland(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, Config{})

	_, err := svc.RecordSample(context.Background(), "u1", Sample{})
	if err != ErrInvalidSample {
		t.Fatalf("expected ErrInvalidSample, got %v", err)
	}
}

func TestStopTrackingMarksOffline(t *testing.T) {
	repo := newFakeRepo()
	g := &fakeGeo{}
	svc := NewService(repo, g, Config{})

	if err := svc.StopTracking(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	if !repo.offline {
		t.Fatal("expected presence marked offline")
	}
	if g.removes != 1 {
		t.Fatal("expected geo index removal")
	}
}
