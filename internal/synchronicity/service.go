// internal/synchronicity/service.go

package synchronicity

import (
	"context"
	"log"
	"time"

	"github.com/spontanapp/spontan-backend/internal/activity"
	"github.com/spontanapp/spontan-backend/internal/proximity"
)

// ActivitySource is the slice of the activity service the scanner needs.
type ActivitySource interface {
	GetCurrentActivity(ctx context.Context, userID string) (*activity.Observation, error)
	GetPattern(ctx context.Context, userID string, at time.Time, activityType activity.ActivityType) (*activity.Pattern, error)
}

// LobbyHook is invoked after a synchronicity is created or refreshed, so
// the lobby creator can decide whether it warrants a lobby. Wired in main
// to avoid a package cycle.
type LobbyHook interface {
	OnSynchronicity(ctx context.Context, s *Synchronicity)
}

// Notifier pushes synchronicity events to connected clients.
type Notifier interface {
	NotifySynchronicity(userIDs []string, s *Synchronicity)
}

type Service interface {
	// ScanForSynchronicities runs one scan cycle for the user: locate
	// their live activity, find nearby users doing the same thing, and
	// create or reuse a synchronicity record.
	ScanForSynchronicities(ctx context.Context, userID string) ([]*Synchronicity, error)

	GetForUser(ctx context.Context, userID string) ([]*Synchronicity, error)
	MarkNotified(ctx context.Context, id string) error
	MarkLobbyCreated(ctx context.Context, id, lobbyID string) error
	CloseExpired(ctx context.Context) error

	// SetLobbyHook wires the auto-lobby creator after construction; the
	// lobby package depends on this one, so the hook cannot be a
	// constructor argument.
	SetLobbyHook(hook LobbyHook)
}

type Config struct {
	ScanRadiusMeters float64
	TTL              time.Duration
}

type service struct {
	repo       Repository
	activities ActivitySource
	matcher    proximity.Matcher
	notifier   Notifier
	lobbyHook  LobbyHook
	cfg        Config
	now        func() time.Time
}

func NewService(repo Repository, activities ActivitySource, matcher proximity.Matcher, notifier Notifier, cfg Config) Service {
	if cfg.ScanRadiusMeters <= 0 {
		cfg.ScanRadiusMeters = 500
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}

	return &service{
		repo:       repo,
		activities: activities,
		matcher:    matcher,
		notifier:   notifier,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *service) SetLobbyHook(hook LobbyHook) {
	s.lobbyHook = hook
}

func (s *service) ScanForSynchronicities(ctx context.Context, userID string) ([]*Synchronicity, error) {
	obs, err := s.activities.GetCurrentActivity(ctx, userID)
	if err != nil {
		return nil, err
	}
	if obs == nil {
		return nil, nil
	}

	nearby, err := s.matcher.FindNearbyUsers(ctx, userID, obs.Latitude, obs.Longitude, s.cfg.ScanRadiusMeters)
	if err != nil {
		return nil, err
	}

	matching := make([]proximity.NearbyUser, 0, len(nearby))
	for _, user := range nearby {
		if user.ActivityType == string(obs.ActivityType) {
			matching = append(matching, user)
		}
	}

	RecordScan(len(matching))

	if len(matching) == 0 {
		return nil, nil
	}

	sync, err := s.createOrReuse(ctx, userID, obs, matching)
	if err != nil {
		return nil, err
	}
	if sync == nil {
		return nil, nil
	}

	return []*Synchronicity{sync}, nil
}

func (s *service) createOrReuse(ctx context.Context, userID string, obs *activity.Observation, matching []proximity.NearbyUser) (*Synchronicity, error) {
	userIDs := make([]string, 0, len(matching)+1)
	userIDs = append(userIDs, userID)
	for _, user := range matching {
		userIDs = append(userIDs, user.UserID)
	}

	existing, err := s.repo.GetOpenContaining(ctx, userIDs, string(obs.ActivityType))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.now()

	var distanceSum, ageSum float64
	for _, user := range matching {
		distanceSum += user.DistanceMeters
		ageSum += now.Sub(user.DetectedAt).Minutes()
	}
	avgDistance := distanceSum / float64(len(matching))
	avgAge := ageSum / float64(len(matching))

	var frequency float64
	pattern, err := s.activities.GetPattern(ctx, userID, now, obs.ActivityType)
	if err != nil {
		// Habit strength is a bonus, not a requirement.
		log.Printf("Failed to load activity pattern for %s: %v", userID, err)
	} else if pattern != nil {
		frequency = pattern.Frequency
	}

	sync := &Synchronicity{
		UserIDs:        userIDs,
		ActivityType:   string(obs.ActivityType),
		LocationName:   obs.LocationName,
		Latitude:       obs.Latitude,
		Longitude:      obs.Longitude,
		SyncScore:      Score(avgDistance, avgAge, frequency),
		DistanceMeters: avgDistance,
		ExpiresAt:      now.Add(s.cfg.TTL),
	}

	created, err := s.repo.Create(ctx, sync)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, nil
	}

	RecordSynchronicity(created.SyncScore)

	if s.notifier != nil {
		s.notifier.NotifySynchronicity(created.UserIDs, created)
	}

	if s.lobbyHook != nil {
		s.lobbyHook.OnSynchronicity(ctx, created)
	}

	return created, nil
}

func (s *service) GetForUser(ctx context.Context, userID string) ([]*Synchronicity, error) {
	return s.repo.GetForUser(ctx, userID)
}

func (s *service) MarkNotified(ctx context.Context, id string) error {
	return s.repo.MarkNotified(ctx, id)
}

func (s *service) MarkLobbyCreated(ctx context.Context, id, lobbyID string) error {
	return s.repo.MarkLobbyCreated(ctx, id, lobbyID)
}

func (s *service) CloseExpired(ctx context.Context) error {
	closed, err := s.repo.CloseExpired(ctx)
	if err != nil {
		return err
	}
	if closed > 0 {
		log.Printf("Closed %d expired synchronicities", closed)
	}
	return nil
}
