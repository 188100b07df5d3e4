// internal/lobby/creator.go

package lobby

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/spontanapp/spontan-backend/internal/geo"
	"github.com/spontanapp/spontan-backend/internal/synchronicity"
)

// SyncMarker is the slice of the synchronicity service the creator needs
// to link a lobby back to its source record.
type SyncMarker interface {
	MarkLobbyCreated(ctx context.Context, id, lobbyID string) error
}

// Notifier pushes lobby events to connected clients.
type Notifier interface {
	NotifyLobbyCreated(userIDs []string, lobby *Lobby)
}

type Service interface {
	// CreateAutoLobby turns a qualifying synchronicity into an open
	// lobby with the member set pre-joined. Returns nil when the
	// synchronicity does not qualify or already has a lobby.
	CreateAutoLobby(ctx context.Context, sync *synchronicity.Synchronicity) (*Lobby, error)

	// CheckAndStartLobbies starts or cancels auto-generated lobbies
	// whose auto-start time has passed, depending on whether enough
	// people joined.
	CheckAndStartLobbies(ctx context.Context) error

	// GetAutoLobbiesNearby lists open auto-generated lobbies within
	// radiusKm of the point.
	GetAutoLobbiesNearby(ctx context.Context, lat, lon, radiusKm float64) ([]*Lobby, error)

	GetLobby(ctx context.Context, id string) (*Lobby, error)

	// OnSynchronicity satisfies the synchronicity package's lobby hook.
	OnSynchronicity(ctx context.Context, sync *synchronicity.Synchronicity)
}

type Config struct {
	ScoreMin       float64
	LeadTime       time.Duration
	AutoStartAfter time.Duration
	BrowseRadiusKm float64
}

type service struct {
	repo       Repository
	syncMarker SyncMarker
	notifier   Notifier
	cfg        Config
	now        func() time.Time
	pick       func(n int) int
}

func NewService(repo Repository, syncMarker SyncMarker, notifier Notifier, cfg Config) Service {
	if cfg.ScoreMin == 0 {
		cfg.ScoreMin = 0.7
	}
	if cfg.LeadTime <= 0 {
		cfg.LeadTime = 15 * time.Minute
	}
	if cfg.AutoStartAfter <= 0 {
		cfg.AutoStartAfter = 60 * time.Minute
	}
	if cfg.BrowseRadiusKm <= 0 {
		cfg.BrowseRadiusKm = 2
	}

	return &service{
		repo:       repo,
		syncMarker: syncMarker,
		notifier:   notifier,
		cfg:        cfg,
		now:        time.Now,
		pick:       rand.Intn,
	}
}

func (s *service) OnSynchronicity(ctx context.Context, sync *synchronicity.Synchronicity) {
	lobby, err := s.CreateAutoLobby(ctx, sync)
	if err != nil {
		log.Printf("Failed to create auto lobby for synchronicity %s: %v", sync.ID, err)
		return
	}
	if lobby != nil {
		log.Printf("Auto lobby %s created from synchronicity %s (%d members)", lobby.ID, sync.ID, len(lobby.UserIDs))
	}
}

func (s *service) shouldCreateLobby(ctx context.Context, sync *synchronicity.Synchronicity) (bool, error) {
	if sync.LobbyCreated {
		return false, nil
	}
	if sync.SyncScore < s.cfg.ScoreMin {
		return false, nil
	}
	if len(sync.UserIDs) < 2 {
		return false, nil
	}

	existing, err := s.repo.GetBySynchronicityID(ctx, sync.ID)
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

func (s *service) CreateAutoLobby(ctx context.Context, sync *synchronicity.Synchronicity) (*Lobby, error) {
	ok, err := s.shouldCreateLobby(ctx, sync)
	if err != nil || !ok {
		return nil, err
	}

	now := s.now()
	autoStart := now.Add(s.cfg.AutoStartAfter)

	lobby := &Lobby{
		HostID:          sync.UserIDs[0],
		Title:           s.generateTitle(sync),
		Description:     generateDescription(sync),
		ActivityType:    sync.ActivityType,
		LocationName:    locationOr(sync.LocationName, "Nearby"),
		Latitude:        sync.Latitude,
		Longitude:       sync.Longitude,
		MaxParticipants: maxParticipants(len(sync.UserIDs)),
		MinParticipants: 2,
		ScheduledTime:   now.Add(s.cfg.LeadTime),
		Status:          StatusOpen,
		LobbyType:       MapActivityToLobbyType(sync.ActivityType),
		IsAutoGenerated: true,
		SynchronicityID: &sync.ID,
		AutoStartAt:     &autoStart,
		UserIDs:         sync.UserIDs,
	}

	if err := s.repo.Create(ctx, lobby); err != nil {
		return nil, err
	}

	if err := s.repo.AddParticipants(ctx, lobby.ID, sync.UserIDs); err != nil {
		// The lobby exists without its members pre-joined; they can
		// still join through the browser.
		log.Printf("Failed to pre-join members to lobby %s: %v", lobby.ID, err)
	} else {
		lobby.CurrentParticipants = len(sync.UserIDs)
	}

	if err := s.syncMarker.MarkLobbyCreated(ctx, sync.ID, lobby.ID); err != nil {
		log.Printf("Failed to link lobby %s to synchronicity %s: %v", lobby.ID, sync.ID, err)
	}

	RecordLobbyCreated(string(lobby.LobbyType))

	if s.notifier != nil {
		s.notifier.NotifyLobbyCreated(sync.UserIDs, lobby)
	}

	return lobby, nil
}

// maxParticipants leaves room for a few walk-ins on top of the member
// set, capped at a table-sized group.
func maxParticipants(members int) int {
	max := members + 3
	if max > 6 {
		max = 6
	}
	return max
}

func locationOr(name *string, fallback string) string {
	if name != nil && *name != "" {
		return *name
	}
	return fallback
}

var titleTemplates = map[string][]string{
	"coffee": {
		"Coffee Meet-up @ %s",
		"Spontaneous Coffee %s",
		"Coffee Break Together",
	},
	"lunch": {
		"Lunch Squad @ %s",
		"Lunch Together %s",
		"Spontaneous Lunch Meet",
	},
	"dinner": {
		"Dinner Crew @ %s",
		"Evening Dinner %s",
		"Spontaneous Dinner",
	},
	"exercise": {
		"Workout Buddies @ %s",
		"Exercise Together",
		"Spontaneous Workout",
	},
	"leisure": {
		"Hangout @ %s",
		"Social Meet-up",
		"Spontaneous Gathering",
	},
}

func (s *service) generateTitle(sync *synchronicity.Synchronicity) string {
	templates, ok := titleTemplates[sync.ActivityType]
	if !ok {
		templates = titleTemplates["leisure"]
	}

	template := templates[s.pick(len(templates))]
	if !strings.Contains(template, "%s") {
		return template
	}
	return fmt.Sprintf(template, locationOr(sync.LocationName, "nearby"))
}

func generateDescription(sync *synchronicity.Synchronicity) string {
	count := len(sync.UserIDs)
	location := locationOr(sync.LocationName, "this area")

	switch sync.ActivityType {
	case "coffee":
		return fmt.Sprintf("%d personer drikker kaffe lige nu ved %s! Join for en hyggelig snak og spontan connection.", count, location)
	case "lunch":
		return fmt.Sprintf("%d personer spiser frokost ved %s! Perfekt timing til at møde nye mennesker over mad.", count, location)
	case "dinner":
		return fmt.Sprintf("%d personer skal spise aftensmad ved %s! Join for god mad og social hygge.", count, location)
	case "exercise":
		return fmt.Sprintf("%d personer træner lige nu ved %s! Find workout buddies og hold dig motiveret.", count, location)
	case "leisure":
		return fmt.Sprintf("%d personer hænger ud ved %s! Spontan social aktivitet - kom og vær med!", count, location)
	case "social":
		return fmt.Sprintf("%d personer mødes ved %s! Perfect timing til ny connections.", count, location)
	default:
		return fmt.Sprintf("%d personer er aktive ved %s! Join og lav nye connections.", count, location)
	}
}

func (s *service) CheckAndStartLobbies(ctx context.Context) error {
	due, err := s.repo.ListAutoStartDue(ctx, s.now())
	if err != nil {
		return err
	}

	for _, lobby := range due {
		status := StatusStarted
		if lobby.CurrentParticipants < lobby.MinParticipants {
			status = StatusCancelled
		}

		if err := s.repo.UpdateStatus(ctx, lobby.ID, status); err != nil {
			log.Printf("Failed to update lobby %s to %s: %v", lobby.ID, status, err)
			continue
		}

		RecordLobbyResolved(string(status))
	}

	return nil
}

func (s *service) GetAutoLobbiesNearby(ctx context.Context, lat, lon, radiusKm float64) ([]*Lobby, error) {
	if radiusKm <= 0 {
		radiusKm = s.cfg.BrowseRadiusKm
	}

	open, err := s.repo.ListOpenAuto(ctx, s.now())
	if err != nil {
		return nil, err
	}

	nearby := make([]*Lobby, 0, len(open))
	for _, lobby := range open {
		if geo.HaversineKm(lat, lon, lobby.Latitude, lobby.Longitude) <= radiusKm {
			nearby = append(nearby, lobby)
		}
	}

	return nearby, nil
}

func (s *service) GetLobby(ctx context.Context, id string) (*Lobby, error) {
	return s.repo.GetByID(ctx, id)
}
