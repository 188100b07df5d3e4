package karma

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	transactions []*Transaction
	balances     map[string]int
	cached       map[string]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		balances: make(map[string]int),
		cached:   make(map[string]int),
	}
}

func (f *fakeRepo) InsertTransaction(ctx context.Context, tx *Transaction) error {
	tx.ID = "tx"
	tx.CreatedAt = time.Now()
	f.transactions = append(f.transactions, tx)
	f.balances[tx.UserID] += tx.Amount
	return nil
}

func (f *fakeRepo) GetBalance(ctx context.Context, userID string) (int, error) {
	return f.balances[userID], nil
}

func (f *fakeRepo) UpdateProfileBalance(ctx context.Context, userID string, balance int) error {
	f.cached[userID] = balance
	return nil
}

func (f *fakeRepo) ListTransactions(ctx context.Context, userID string, limit int) ([]*Transaction, error) {
	return f.transactions, nil
}

func (f *fakeRepo) Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	return nil, nil
}

func newTestService(repo *fakeRepo, hour int) *service {
	svc := NewService(repo, Config{}).(*service)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		metadata Metadata
		want     float64
	}{
		{"daytime base rate", 14, nil, 1.0},
		{"night doubles", 23, nil, 2.0},
		{"early morning doubles", 6, nil, 2.0},
		{"rain at daytime", 14, Metadata{"weather": "rain"}, 1.5},
		{"storm at daytime", 14, Metadata{"weather": "storm"}, 2.0},
		{"night storm stacks", 23, Metadata{"weather": "storm"}, 4.0},
		{"night rain stacks", 23, Metadata{"weather": "rain"}, 3.0},
		{"emergency always face value", 23, Metadata{"emergency": true, "weather": "storm"}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Multiplier(tt.hour, tt.metadata); got != tt.want {
				t.Errorf("Multiplier(%d, %v) = %v, want %v", tt.hour, tt.metadata, got, tt.want)
			}
		})
	}
}

func TestAddKarmaAppliesMultiplier(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, 23)

	tx, err := svc.AddKarma(context.Background(), "user-a", 5, TypeHelpGiven, "night help", nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if tx.Amount != 10 {
		t.Errorf("Expected 5*2.0 = 10, got %d", tx.Amount)
	}
	if tx.Multiplier != 2.0 {
		t.Errorf("Expected multiplier 2.0, got %v", tx.Multiplier)
	}
	if repo.cached["user-a"] != 10 {
		t.Errorf("Expected cached balance refreshed, got %d", repo.cached["user-a"])
	}
}

func TestHelpNeighbor(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, 14)

	if err := svc.HelpNeighbor(context.Background(), "helper", "helped", "carried groceries", DifficultyMedium); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if repo.balances["helper"] != 5 {
		t.Errorf("Expected helper +5, got %d", repo.balances["helper"])
	}
	// Half of 5 rounds up to 3.
	if repo.balances["helped"] != -3 {
		t.Errorf("Expected helped -3, got %d", repo.balances["helped"])
	}
}

func TestHelpNeighborDifficulties(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		helper     int
		helped     int
	}{
		{DifficultyEasy, 2, -1},
		{DifficultyMedium, 5, -3},
		{DifficultyHard, 10, -5},
	}

	for _, tt := range tests {
		t.Run(string(tt.difficulty), func(t *testing.T) {
			repo := newFakeRepo()
			svc := newTestService(repo, 14)

			if err := svc.HelpNeighbor(context.Background(), "helper", "helped", "task", tt.difficulty); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if repo.balances["helper"] != tt.helper || repo.balances["helped"] != tt.helped {
				t.Errorf("Expected %d/%d, got %d/%d", tt.helper, tt.helped, repo.balances["helper"], repo.balances["helped"])
			}
		})
	}
}

func TestRequestHelpChecksBalance(t *testing.T) {
	repo := newFakeRepo()
	repo.balances["rich"] = 20
	repo.balances["exact"] = 2
	svc := newTestService(repo, 14)

	if err := svc.RequestHelp(context.Background(), "rich", "move a sofa", 2); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if repo.balances["rich"] != 18 {
		t.Errorf("Expected 18 after request, got %d", repo.balances["rich"])
	}

	if err := svc.RequestHelp(context.Background(), "exact", "move a sofa", 2); err != nil {
		t.Errorf("Exact balance should cover the cost, got %v", err)
	}

	// A fresh user falls back to the default balance of 10.
	if err := svc.RequestHelp(context.Background(), "fresh", "huge favor", 50); !errors.Is(err, ErrInsufficientKarma) {
		t.Errorf("Expected ErrInsufficientKarma, got %v", err)
	}
}

func TestEmergencyHelpIgnoresMultiplier(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, 23)

	if err := svc.EmergencyHelp(context.Background(), "helper", "helped", "flat tire"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// 15 even at night.
	if repo.balances["helper"] != 15 {
		t.Errorf("Expected 15, got %d", repo.balances["helper"])
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		balance int
		level   int
		name    string
		next    int
	}{
		{10, 1, "Newcomer", 50},
		{49, 1, "Newcomer", 50},
		{50, 2, "Neighbor", 150},
		{299, 3, "Friend", 300},
		{999, 5, "Guardian", 1000},
		{24999, 9, "Master", 25000},
		{25000, 10, "Grandmaster", 50000},
		{99999, 10, "Grandmaster", 50000},
	}

	for _, tt := range tests {
		level := Level(tt.balance)
		if level != tt.level {
			t.Errorf("Level(%d) = %d, want %d", tt.balance, level, tt.level)
		}
		if got := LevelName(level); got != tt.name {
			t.Errorf("LevelName(%d) = %s, want %s", level, got, tt.name)
		}
		if got := NextLevelAt(level); got != tt.next {
			t.Errorf("NextLevelAt(%d) = %d, want %d", level, got, tt.next)
		}
	}
}

func TestGetBalanceDefaultsForNewUsers(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, 14)

	balance, err := svc.GetBalance(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if balance.Balance != 10 || balance.Level != 1 || balance.LevelName != "Newcomer" {
		t.Errorf("Unexpected default balance: %+v", balance)
	}
}
