package synchronicity

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/spontanapp/spontan-backend/internal/activity"
	"github.com/spontanapp/spontan-backend/internal/proximity"
)

type fakeRepo struct {
	created []*Synchronicity
	open    []*Synchronicity

	closedCount int64
	notified    []string
}

func (f *fakeRepo) Create(ctx context.Context, s *Synchronicity) (*Synchronicity, error) {
	s.DedupKey = DedupKey(s.UserIDs, s.ActivityType)
	for _, existing := range f.open {
		if existing.DedupKey == s.DedupKey {
			return existing, nil
		}
	}
	s.ID = "sync-1"
	s.Open = true
	f.created = append(f.created, s)
	f.open = append(f.open, s)
	return s, nil
}

func (f *fakeRepo) GetOpenContaining(ctx context.Context, userIDs []string, activityType string) (*Synchronicity, error) {
	key := DedupKey(userIDs, activityType)
	for _, existing := range f.open {
		if existing.DedupKey == key {
			return existing, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetForUser(ctx context.Context, userID string) ([]*Synchronicity, error) {
	return f.open, nil
}

func (f *fakeRepo) MarkNotified(ctx context.Context, id string) error {
	f.notified = append(f.notified, id)
	return nil
}

func (f *fakeRepo) MarkLobbyCreated(ctx context.Context, id, lobbyID string) error {
	return nil
}

func (f *fakeRepo) CloseExpired(ctx context.Context) (int64, error) {
	return f.closedCount, nil
}

type fakeActivities struct {
	current *activity.Observation
	pattern *activity.Pattern

	patternErr error
}

func (f *fakeActivities) GetCurrentActivity(ctx context.Context, userID string) (*activity.Observation, error) {
	return f.current, nil
}

func (f *fakeActivities) GetPattern(ctx context.Context, userID string, at time.Time, activityType activity.ActivityType) (*activity.Pattern, error) {
	if f.patternErr != nil {
		return nil, f.patternErr
	}
	return f.pattern, nil
}

type fakeMatcher struct {
	nearby []proximity.NearbyUser
	err    error
}

func (f *fakeMatcher) FindNearbyUsers(ctx context.Context, userID string, lat, lon, radiusMeters float64) ([]proximity.NearbyUser, error) {
	return f.nearby, f.err
}

type fakeNotifier struct {
	notified [][]string
}

func (f *fakeNotifier) NotifySynchronicity(userIDs []string, s *Synchronicity) {
	f.notified = append(f.notified, userIDs)
}

type fakeLobbyHook struct {
	seen []*Synchronicity
}

func (f *fakeLobbyHook) OnSynchronicity(ctx context.Context, s *Synchronicity) {
	f.seen = append(f.seen, s)
}

func newTestService(repo *fakeRepo, activities *fakeActivities, m *fakeMatcher, n *fakeNotifier) *service {
	// A nil *fakeNotifier must stay a nil interface inside the service.
	var notifier Notifier
	if n != nil {
		notifier = n
	}
	svc := NewService(repo, activities, m, notifier, Config{
		ScanRadiusMeters: 500,
		TTL:              2 * time.Hour,
	}).(*service)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func coffeeObservation(userID string, detectedAt time.Time) *activity.Observation {
	return &activity.Observation{
		ID:           "obs-" + userID,
		UserID:       userID,
		ActivityType: activity.ActivityCoffee,
		Latitude:     55.676,
		Longitude:    12.568,
		Confidence:   0.7,
		DetectedAt:   detectedAt,
		ExpiresAt:    detectedAt.Add(2 * time.Hour),
	}
}

func TestScanCreatesSynchronicity(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	repo := &fakeRepo{}
	activities := &fakeActivities{current: coffeeObservation("user-a", now.Add(-time.Minute))}
	matcher := &fakeMatcher{nearby: []proximity.NearbyUser{
		{UserID: "user-b", DistanceMeters: 80, ActivityType: "coffee", DetectedAt: now.Add(-2 * time.Minute)},
	}}
	notifier := &fakeNotifier{}

	svc := newTestService(repo, activities, matcher, notifier)
	hook := &fakeLobbyHook{}
	svc.SetLobbyHook(hook)

	results, err := svc.ScanForSynchronicities(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected 1 synchronicity, got %d", len(results))
	}

	sync := results[0]
	// 80 m and 2 min both hit the top bonus band, so the score caps.
	if math.Abs(sync.SyncScore-1.0) > 1e-9 {
		t.Errorf("Expected score 1.0, got %v", sync.SyncScore)
	}
	if sync.ActivityType != "coffee" {
		t.Errorf("Expected activity coffee, got %s", sync.ActivityType)
	}
	if len(sync.UserIDs) != 2 || sync.UserIDs[0] != "user-a" || sync.UserIDs[1] != "user-b" {
		t.Errorf("Unexpected member set: %v", sync.UserIDs)
	}
	if !sync.ExpiresAt.Equal(now.Add(2 * time.Hour)) {
		t.Errorf("Unexpected expiry: %v", sync.ExpiresAt)
	}

	if len(notifier.notified) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifier.notified))
	}
	if len(hook.seen) != 1 {
		t.Errorf("Expected lobby hook invocation, got %d", len(hook.seen))
	}
}

func TestScanFiltersDifferentActivities(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	repo := &fakeRepo{}
	activities := &fakeActivities{current: coffeeObservation("user-a", now)}
	matcher := &fakeMatcher{nearby: []proximity.NearbyUser{
		{UserID: "user-b", DistanceMeters: 50, ActivityType: "commute", DetectedAt: now},
		{UserID: "user-c", DistanceMeters: 60, ActivityType: "lunch", DetectedAt: now},
	}}

	svc := newTestService(repo, activities, matcher, nil)

	results, err := svc.ScanForSynchronicities(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("Expected no synchronicities, got %v", results)
	}
	if len(repo.created) != 0 {
		t.Errorf("Expected nothing persisted, got %d records", len(repo.created))
	}
}

func TestScanWithoutCurrentActivity(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeActivities{}, &fakeMatcher{}, nil)

	results, err := svc.ScanForSynchronicities(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("Expected no synchronicities without an observation, got %v", results)
	}
}

func TestScanReusesOpenSynchronicity(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	existing := &Synchronicity{
		ID:           "sync-existing",
		UserIDs:      []string{"user-a", "user-b"},
		ActivityType: "coffee",
		SyncScore:    0.9,
		Open:         true,
		DedupKey:     DedupKey([]string{"user-a", "user-b"}, "coffee"),
	}

	repo := &fakeRepo{open: []*Synchronicity{existing}}
	activities := &fakeActivities{current: coffeeObservation("user-a", now)}
	matcher := &fakeMatcher{nearby: []proximity.NearbyUser{
		{UserID: "user-b", DistanceMeters: 80, ActivityType: "coffee", DetectedAt: now},
	}}
	notifier := &fakeNotifier{}

	svc := newTestService(repo, activities, matcher, notifier)

	results, err := svc.ScanForSynchronicities(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(results) != 1 || results[0].ID != "sync-existing" {
		t.Fatalf("Expected the existing record back, got %v", results)
	}
	if len(repo.created) != 0 {
		t.Errorf("Expected no new record, got %d", len(repo.created))
	}
	if len(notifier.notified) != 0 {
		t.Errorf("Reused records should not re-notify, got %d notifications", len(notifier.notified))
	}
}

func TestScanPatternBonus(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	repo := &fakeRepo{}
	activities := &fakeActivities{
		current: coffeeObservation("user-a", now),
		pattern: &activity.Pattern{Frequency: 0.8},
	}
	// 250 m and 30 min old: 0.5 + 0.2 distance + 0.1 habit.
	matcher := &fakeMatcher{nearby: []proximity.NearbyUser{
		{UserID: "user-b", DistanceMeters: 250, ActivityType: "coffee", DetectedAt: now.Add(-30 * time.Minute)},
	}}

	svc := newTestService(repo, activities, matcher, nil)

	results, err := svc.ScanForSynchronicities(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 synchronicity, got %d", len(results))
	}
	if math.Abs(results[0].SyncScore-0.8) > 1e-9 {
		t.Errorf("Expected score 0.8, got %v", results[0].SyncScore)
	}
}

func TestScanPatternLookupFailureIsNonFatal(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	repo := &fakeRepo{}
	activities := &fakeActivities{
		current:    coffeeObservation("user-a", now),
		patternErr: errors.New("db unavailable"),
	}
	matcher := &fakeMatcher{nearby: []proximity.NearbyUser{
		{UserID: "user-b", DistanceMeters: 80, ActivityType: "coffee", DetectedAt: now.Add(-2 * time.Minute)},
	}}

	svc := newTestService(repo, activities, matcher, nil)

	results, err := svc.ScanForSynchronicities(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("Expected scan to succeed without the pattern, got %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 synchronicity, got %d", len(results))
	}
}
