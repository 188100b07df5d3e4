package lobby

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, lobby *Lobby) error
	GetByID(ctx context.Context, id string) (*Lobby, error)
	GetBySynchronicityID(ctx context.Context, synchronicityID string) (*Lobby, error)

	// AddParticipants pre-joins the member set and updates the
	// participant count in one transaction.
	AddParticipants(ctx context.Context, lobbyID string, userIDs []string) error

	// ListAutoStartDue returns open auto-generated lobbies whose
	// auto-start time has passed.
	ListAutoStartDue(ctx context.Context, now time.Time) ([]*Lobby, error)

	// ListOpenAuto returns open auto-generated lobbies that have not yet
	// reached their auto-start time.
	ListOpenAuto(ctx context.Context, now time.Time) ([]*Lobby, error)

	UpdateStatus(ctx context.Context, id string, status LobbyStatus) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, lobby *Lobby) error {
	if lobby.ID == "" {
		lobby.ID = uuid.NewString()
	}

	query := `
		INSERT INTO lobbies (
			id, host_id, title, description, activity_type, location_name,
			latitude, longitude, max_participants, min_participants,
			current_participants, scheduled_time, status, lobby_type,
			is_auto_generated, synchronicity_id, auto_start_at, is_paid,
			created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, NOW()
		)
		RETURNING created_at
	`

	return r.db.QueryRowxContext(
		ctx, query,
		lobby.ID, lobby.HostID, lobby.Title, lobby.Description,
		lobby.ActivityType, lobby.LocationName, lobby.Latitude, lobby.Longitude,
		lobby.MaxParticipants, lobby.MinParticipants, lobby.CurrentParticipants,
		lobby.ScheduledTime, lobby.Status, lobby.LobbyType,
		lobby.IsAutoGenerated, lobby.SynchronicityID, lobby.AutoStartAt, lobby.IsPaid,
	).Scan(&lobby.CreatedAt)
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Lobby, error) {
	var lobby Lobby
	query := `SELECT * FROM lobbies WHERE id = $1`

	err := r.db.GetContext(ctx, &lobby, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &lobby, nil
}

func (r *postgresRepository) GetBySynchronicityID(ctx context.Context, synchronicityID string) (*Lobby, error) {
	var lobby Lobby
	query := `SELECT * FROM lobbies WHERE synchronicity_id = $1 LIMIT 1`

	err := r.db.GetContext(ctx, &lobby, query, synchronicityID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &lobby, nil
}

func (r *postgresRepository) AddParticipants(ctx context.Context, lobbyID string, userIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO lobby_participants (id, lobby_id, user_id, status, payment_status, joined_at)
		VALUES ($1, $2, $3, 'joined', 'completed', NOW())
		ON CONFLICT (lobby_id, user_id) DO NOTHING
	`

	for _, userID := range userIDs {
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), lobbyID, userID); err != nil {
			return err
		}
	}

	update := `
		UPDATE lobbies
		SET current_participants = (
			SELECT COUNT(*) FROM lobby_participants WHERE lobby_id = $1
		)
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update, lobbyID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *postgresRepository) ListAutoStartDue(ctx context.Context, now time.Time) ([]*Lobby, error) {
	var lobbies []*Lobby
	query := `
		SELECT * FROM lobbies
		WHERE is_auto_generated = TRUE AND status = 'open' AND auto_start_at < $1
	`

	err := r.db.SelectContext(ctx, &lobbies, query, now)
	return lobbies, err
}

func (r *postgresRepository) ListOpenAuto(ctx context.Context, now time.Time) ([]*Lobby, error) {
	var lobbies []*Lobby
	query := `
		SELECT * FROM lobbies
		WHERE is_auto_generated = TRUE AND status = 'open' AND auto_start_at > $1
	`

	err := r.db.SelectContext(ctx, &lobbies, query, now)
	return lobbies, err
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id string, status LobbyStatus) error {
	query := `UPDATE lobbies SET status = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}
