// internal/karma/service.go

package karma

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"
)

var ErrInsufficientKarma = errors.New("not enough karma for this request")

type Service interface {
	GetBalance(ctx context.Context, userID string) (*Balance, error)

	// AddKarma appends a ledger entry with the situational multiplier
	// applied and refreshes the cached profile balance.
	AddKarma(ctx context.Context, userID string, amount int, txType TransactionType, description string, relatedUserID *string, metadata Metadata) (*Transaction, error)

	// HelpNeighbor credits the helper by task difficulty and debits the
	// helped half of that, rounded up.
	HelpNeighbor(ctx context.Context, helperID, helpedID, task string, difficulty Difficulty) error

	// RequestHelp debits the requester, refusing when their balance
	// cannot cover the cost.
	RequestHelp(ctx context.Context, requesterID, task string, karmaCost int) error

	EmergencyHelp(ctx context.Context, helperID, helpedID, description string) error
	GiveBonus(ctx context.Context, userID, reason string, amount int) error
	ApplyPenalty(ctx context.Context, userID, reason string, amount int) error

	GetTransactionHistory(ctx context.Context, userID string, limit int) ([]*Transaction, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error)
}

type Config struct {
	DefaultBalance int
}

type service struct {
	repo Repository
	cfg  Config
	now  func() time.Time
}

func NewService(repo Repository, cfg Config) Service {
	if cfg.DefaultBalance == 0 {
		cfg.DefaultBalance = 10
	}

	return &service{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *service) GetBalance(ctx context.Context, userID string) (*Balance, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance == 0 {
		balance = s.cfg.DefaultBalance
	}

	level := Level(balance)
	return &Balance{
		Balance:     balance,
		Level:       level,
		LevelName:   LevelName(level),
		NextLevelAt: NextLevelAt(level),
	}, nil
}

func (s *service) AddKarma(ctx context.Context, userID string, amount int, txType TransactionType, description string, relatedUserID *string, metadata Metadata) (*Transaction, error) {
	multiplier := Multiplier(s.now().Hour(), metadata)
	finalAmount := int(math.Round(float64(amount) * multiplier))

	tx := &Transaction{
		UserID:        userID,
		Amount:        finalAmount,
		Type:          txType,
		RelatedUserID: relatedUserID,
		Description:   description,
		Multiplier:    multiplier,
		Metadata:      metadata,
	}

	if err := s.repo.InsertTransaction(ctx, tx); err != nil {
		return nil, err
	}

	RecordTransaction(string(txType), finalAmount)

	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		log.Printf("Failed to refresh karma balance for %s: %v", userID, err)
		return tx, nil
	}
	if err := s.repo.UpdateProfileBalance(ctx, userID, balance); err != nil {
		log.Printf("Failed to cache karma balance for %s: %v", userID, err)
	}

	return tx, nil
}

var difficultyBase = map[Difficulty]int{
	DifficultyEasy:   2,
	DifficultyMedium: 5,
	DifficultyHard:   10,
}

func (s *service) HelpNeighbor(ctx context.Context, helperID, helpedID, task string, difficulty Difficulty) error {
	base, ok := difficultyBase[difficulty]
	if !ok {
		base = difficultyBase[DifficultyMedium]
	}

	metadata := Metadata{"task": task, "difficulty": string(difficulty)}

	if _, err := s.AddKarma(ctx, helperID, base, TypeHelpGiven,
		fmt.Sprintf("Helped neighbor: %s", task), &helpedID, metadata); err != nil {
		return err
	}

	cost := (base + 1) / 2
	_, err := s.AddKarma(ctx, helpedID, -cost, TypeHelpReceived,
		fmt.Sprintf("Received help: %s", task), &helperID, metadata)
	return err
}

func (s *service) RequestHelp(ctx context.Context, requesterID, task string, karmaCost int) error {
	if karmaCost <= 0 {
		karmaCost = 2
	}

	balance, err := s.GetBalance(ctx, requesterID)
	if err != nil {
		return err
	}
	if balance.Balance < karmaCost {
		return ErrInsufficientKarma
	}

	_, err = s.AddKarma(ctx, requesterID, -karmaCost, TypeRequest,
		fmt.Sprintf("Requested help: %s", task), nil, Metadata{"task": task})
	return err
}

func (s *service) EmergencyHelp(ctx context.Context, helperID, helpedID, description string) error {
	_, err := s.AddKarma(ctx, helperID, 15, TypeEmergency,
		fmt.Sprintf("Emergency help: %s", description), &helpedID,
		Metadata{"emergency": true, "description": description})
	return err
}

func (s *service) GiveBonus(ctx context.Context, userID, reason string, amount int) error {
	if amount <= 0 {
		amount = 5
	}

	_, err := s.AddKarma(ctx, userID, amount, TypeBonus,
		fmt.Sprintf("Bonus: %s", reason), nil, Metadata{"reason": reason})
	return err
}

func (s *service) ApplyPenalty(ctx context.Context, userID, reason string, amount int) error {
	if amount <= 0 {
		amount = 5
	}

	_, err := s.AddKarma(ctx, userID, -amount, TypePenalty,
		fmt.Sprintf("Penalty: %s", reason), nil, Metadata{"reason": reason})
	return err
}

func (s *service) GetTransactionHistory(ctx context.Context, userID string, limit int) ([]*Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListTransactions(ctx, userID, limit)
}

func (s *service) GetLeaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.Leaderboard(ctx, limit)
}
