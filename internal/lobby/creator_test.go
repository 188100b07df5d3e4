package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/spontanapp/spontan-backend/internal/synchronicity"
)

type fakeRepo struct {
	lobbies      map[string]*Lobby
	participants map[string][]string
	statuses     map[string]LobbyStatus
	due          []*Lobby
	open         []*Lobby
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		lobbies:      make(map[string]*Lobby),
		participants: make(map[string][]string),
		statuses:     make(map[string]LobbyStatus),
	}
}

func (f *fakeRepo) Create(ctx context.Context, lobby *Lobby) error {
	if lobby.ID == "" {
		lobby.ID = "lobby-1"
	}
	lobby.CreatedAt = time.Now()
	f.lobbies[lobby.ID] = lobby
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Lobby, error) {
	return f.lobbies[id], nil
}

func (f *fakeRepo) GetBySynchronicityID(ctx context.Context, synchronicityID string) (*Lobby, error) {
	for _, lobby := range f.lobbies {
		if lobby.SynchronicityID != nil && *lobby.SynchronicityID == synchronicityID {
			return lobby, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) AddParticipants(ctx context.Context, lobbyID string, userIDs []string) error {
	f.participants[lobbyID] = append(f.participants[lobbyID], userIDs...)
	return nil
}

func (f *fakeRepo) ListAutoStartDue(ctx context.Context, now time.Time) ([]*Lobby, error) {
	return f.due, nil
}

func (f *fakeRepo) ListOpenAuto(ctx context.Context, now time.Time) ([]*Lobby, error) {
	return f.open, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id string, status LobbyStatus) error {
	f.statuses[id] = status
	return nil
}

type fakeSyncMarker struct {
	linked map[string]string
}

func (f *fakeSyncMarker) MarkLobbyCreated(ctx context.Context, id, lobbyID string) error {
	if f.linked == nil {
		f.linked = make(map[string]string)
	}
	f.linked[id] = lobbyID
	return nil
}

func newTestService(repo *fakeRepo, marker *fakeSyncMarker) *service {
	svc := NewService(repo, marker, nil, Config{}).(*service)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	svc.pick = func(n int) int { return 0 }
	return svc
}

func qualifyingSync() *synchronicity.Synchronicity {
	name := "Torvehallerne"
	return &synchronicity.Synchronicity{
		ID:           "sync-1",
		UserIDs:      []string{"user-a", "user-b"},
		ActivityType: "coffee",
		LocationName: &name,
		Latitude:     55.683,
		Longitude:    12.570,
		SyncScore:    0.8,
	}
}

func TestCreateAutoLobby(t *testing.T) {
	repo := newFakeRepo()
	marker := &fakeSyncMarker{}
	svc := newTestService(repo, marker)

	lobby, err := svc.CreateAutoLobby(context.Background(), qualifyingSync())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if lobby == nil {
		t.Fatal("Expected a lobby")
	}

	if lobby.HostID != "user-a" {
		t.Errorf("Expected first member as host, got %s", lobby.HostID)
	}
	if lobby.Title != "Coffee Meet-up @ Torvehallerne" {
		t.Errorf("Unexpected title: %q", lobby.Title)
	}
	if lobby.MaxParticipants != 5 {
		t.Errorf("Expected max participants 5 (2 members + 3), got %d", lobby.MaxParticipants)
	}
	if lobby.MinParticipants != 2 {
		t.Errorf("Expected min participants 2, got %d", lobby.MinParticipants)
	}
	if lobby.LobbyType != TypeSocial {
		t.Errorf("Expected coffee to map to social, got %s", lobby.LobbyType)
	}

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	if !lobby.ScheduledTime.Equal(now.Add(15 * time.Minute)) {
		t.Errorf("Expected scheduled time 15 min out, got %v", lobby.ScheduledTime)
	}
	if lobby.AutoStartAt == nil || !lobby.AutoStartAt.Equal(now.Add(60*time.Minute)) {
		t.Errorf("Expected auto start 60 min out, got %v", lobby.AutoStartAt)
	}

	if got := repo.participants[lobby.ID]; len(got) != 2 {
		t.Errorf("Expected 2 pre-joined members, got %v", got)
	}
	if marker.linked["sync-1"] != lobby.ID {
		t.Errorf("Expected synchronicity linked to lobby, got %v", marker.linked)
	}
}

func TestCreateAutoLobbyMaxParticipantsCapped(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeSyncMarker{})

	sync := qualifyingSync()
	sync.UserIDs = []string{"u1", "u2", "u3", "u4", "u5"}

	lobby, err := svc.CreateAutoLobby(context.Background(), sync)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if lobby.MaxParticipants != 6 {
		t.Errorf("Expected cap at 6, got %d", lobby.MaxParticipants)
	}
}

func TestCreateAutoLobbySkipsUnqualified(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*synchronicity.Synchronicity)
	}{
		{"score below threshold", func(s *synchronicity.Synchronicity) { s.SyncScore = 0.69 }},
		{"lobby already created", func(s *synchronicity.Synchronicity) { s.LobbyCreated = true }},
		{"single member", func(s *synchronicity.Synchronicity) { s.UserIDs = []string{"user-a"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := newTestService(repo, &fakeSyncMarker{})

			sync := qualifyingSync()
			tt.mutate(sync)

			lobby, err := svc.CreateAutoLobby(context.Background(), sync)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if lobby != nil {
				t.Errorf("Expected no lobby, got %v", lobby)
			}
			if len(repo.lobbies) != 0 {
				t.Errorf("Expected nothing persisted, got %d lobbies", len(repo.lobbies))
			}
		})
	}
}

func TestCreateAutoLobbyIdempotentPerSynchronicity(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeSyncMarker{})

	sync := qualifyingSync()
	first, err := svc.CreateAutoLobby(context.Background(), sync)
	if err != nil || first == nil {
		t.Fatalf("First creation failed: %v, %v", first, err)
	}

	second, err := svc.CreateAutoLobby(context.Background(), sync)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if second != nil {
		t.Errorf("Expected no second lobby for the same synchronicity, got %v", second)
	}
}

func TestCheckAndStartLobbies(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeSyncMarker{})

	repo.due = []*Lobby{
		{ID: "full", CurrentParticipants: 3, MinParticipants: 2},
		{ID: "empty", CurrentParticipants: 1, MinParticipants: 2},
	}

	if err := svc.CheckAndStartLobbies(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if repo.statuses["full"] != StatusStarted {
		t.Errorf("Expected full lobby started, got %s", repo.statuses["full"])
	}
	if repo.statuses["empty"] != StatusCancelled {
		t.Errorf("Expected empty lobby cancelled, got %s", repo.statuses["empty"])
	}
}

func TestGetAutoLobbiesNearby(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeSyncMarker{})

	repo.open = []*Lobby{
		{ID: "close", Latitude: 55.676, Longitude: 12.568},
		{ID: "far", Latitude: 55.85, Longitude: 12.568},
	}

	lobbies, err := svc.GetAutoLobbiesNearby(context.Background(), 55.676, 12.568, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(lobbies) != 1 || lobbies[0].ID != "close" {
		t.Errorf("Expected only the close lobby, got %v", lobbies)
	}
}

func TestMapActivityToLobbyType(t *testing.T) {
	tests := []struct {
		activity string
		want     LobbyType
	}{
		{"coffee", TypeSocial},
		{"lunch", TypeDinner},
		{"dinner", TypeDinner},
		{"exercise", TypeSports},
		{"commute", TypeSocial},
		{"unknown", TypeSocial},
	}

	for _, tt := range tests {
		if got := MapActivityToLobbyType(tt.activity); got != tt.want {
			t.Errorf("MapActivityToLobbyType(%q) = %s, want %s", tt.activity, got, tt.want)
		}
	}
}
