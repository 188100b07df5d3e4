// internal/ping/service.go

package ping

import (
	"context"
	"errors"
	"log"
	"time"
)

var (
	ErrPingAlreadySent = errors.New("an active ping for this activity already targets the user")
	ErrPingNotFound    = errors.New("ping not found")
	ErrPingExpired     = errors.New("ping has expired")
	ErrPingNotPending  = errors.New("ping is no longer pending")
	ErrSelfPing        = errors.New("cannot ping yourself")
	ErrInvalidActivity = errors.New("unknown ping activity")
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchExpired    = errors.New("match window has closed")
	ErrNotParticipant  = errors.New("user is not part of this match")
)

// Notifier pushes ping and match events to connected clients.
type Notifier interface {
	NotifyPing(toUser string, ping *Ping)
	NotifyMatch(userIDs []string, match *Match)
	NotifyMessage(userIDs []string, message *ChatMessage)
}

type Service interface {
	// SendPing creates a pending ping unless an active one for the same
	// activity already targets the recipient.
	SendPing(ctx context.Context, fromUser, toUser string, activity PingActivity) (*Ping, error)

	// AcceptPing turns a pending ping into exactly one match. An expired
	// ping is marked expired and rejected.
	AcceptPing(ctx context.Context, userID, pingID string) (*Match, error)

	IgnorePing(ctx context.Context, userID, pingID string) error
	GetActivePings(ctx context.Context, userID string) ([]*Ping, error)
	GetActiveMatches(ctx context.Context, userID string) ([]*Match, error)

	// SendMessage posts into a match's chat; rejected once the match
	// window has closed.
	SendMessage(ctx context.Context, userID, matchID, content string) (*ChatMessage, error)

	GetMessages(ctx context.Context, userID, matchID string) ([]*ChatMessage, error)

	// ExpireOldPings is the periodic sweep that retires pending pings
	// past their expiry.
	ExpireOldPings(ctx context.Context) error
}

type Config struct {
	PingTTL     time.Duration
	MatchWindow time.Duration
}

type service struct {
	repo     Repository
	notifier Notifier
	cfg      Config
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier, cfg Config) Service {
	if cfg.PingTTL <= 0 {
		cfg.PingTTL = 15 * time.Minute
	}
	if cfg.MatchWindow <= 0 {
		cfg.MatchWindow = 24 * time.Hour
	}

	return &service{
		repo:     repo,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *service) SendPing(ctx context.Context, fromUser, toUser string, activity PingActivity) (*Ping, error) {
	if fromUser == toUser {
		return nil, ErrSelfPing
	}
	if activity == "" {
		activity = ActivityCoffee
	}
	if !ValidActivity(activity) {
		return nil, ErrInvalidActivity
	}

	now := s.now()

	exists, err := s.repo.HasActivePing(ctx, fromUser, toUser, activity, now)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPingAlreadySent
	}

	ping := &Ping{
		FromUser:  fromUser,
		ToUser:    toUser,
		Activity:  activity,
		Status:    StatusPending,
		ExpiresAt: now.Add(s.cfg.PingTTL),
	}

	if err := s.repo.CreatePing(ctx, ping); err != nil {
		return nil, err
	}

	RecordPingSent(string(activity))

	if s.notifier != nil {
		s.notifier.NotifyPing(toUser, ping)
	}

	return ping, nil
}

func (s *service) AcceptPing(ctx context.Context, userID, pingID string) (*Match, error) {
	ping, err := s.repo.GetPing(ctx, pingID)
	if err != nil {
		return nil, err
	}
	if ping == nil {
		return nil, ErrPingNotFound
	}
	if ping.ToUser != userID {
		return nil, ErrPingNotFound
	}
	if ping.Status != StatusPending {
		return nil, ErrPingNotPending
	}

	now := s.now()
	if ping.ExpiresAt.Before(now) {
		if err := s.repo.UpdatePingStatus(ctx, pingID, StatusExpired); err != nil {
			log.Printf("Failed to expire ping %s: %v", pingID, err)
		}
		return nil, ErrPingExpired
	}

	if err := s.repo.UpdatePingStatus(ctx, pingID, StatusAccepted); err != nil {
		return nil, err
	}

	match := &Match{
		UserA:     ping.FromUser,
		UserB:     ping.ToUser,
		Activity:  ping.Activity,
		ExpiresAt: now.Add(s.cfg.MatchWindow),
	}

	if err := s.repo.CreateMatch(ctx, match); err != nil {
		return nil, err
	}

	RecordMatch(string(match.Activity))

	if s.notifier != nil {
		s.notifier.NotifyMatch([]string{match.UserA, match.UserB}, match)
	}

	return match, nil
}

func (s *service) IgnorePing(ctx context.Context, userID, pingID string) error {
	ping, err := s.repo.GetPing(ctx, pingID)
	if err != nil {
		return err
	}
	if ping == nil || ping.ToUser != userID {
		return ErrPingNotFound
	}
	if ping.Status != StatusPending {
		return ErrPingNotPending
	}

	return s.repo.UpdatePingStatus(ctx, pingID, StatusIgnored)
}

func (s *service) GetActivePings(ctx context.Context, userID string) ([]*Ping, error) {
	return s.repo.ListActivePings(ctx, userID, s.now())
}

func (s *service) GetActiveMatches(ctx context.Context, userID string) ([]*Match, error) {
	return s.repo.ListActiveMatches(ctx, userID, s.now())
}

func (s *service) SendMessage(ctx context.Context, userID, matchID, content string) (*ChatMessage, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if !match.Involves(userID) {
		return nil, ErrNotParticipant
	}
	if match.ExpiresAt.Before(s.now()) {
		return nil, ErrMatchExpired
	}

	message := &ChatMessage{
		MatchID:  matchID,
		SenderID: userID,
		Content:  content,
	}

	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	RecordMessage()

	if s.notifier != nil {
		s.notifier.NotifyMessage([]string{match.UserA, match.UserB}, message)
	}

	return message, nil
}

func (s *service) GetMessages(ctx context.Context, userID, matchID string) ([]*ChatMessage, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if !match.Involves(userID) {
		return nil, ErrNotParticipant
	}

	return s.repo.ListMessages(ctx, matchID)
}

func (s *service) ExpireOldPings(ctx context.Context) error {
	expired, err := s.repo.ExpirePending(ctx, s.now())
	if err != nil {
		return err
	}
	if expired > 0 {
		RecordPingsExpired(expired)
		log.Printf("Expired %d stale pings", expired)
	}
	return nil
}
