package karma

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	InsertTransaction(ctx context.Context, tx *Transaction) error

	// GetBalance sums the user's ledger via the stored balance function.
	GetBalance(ctx context.Context, userID string) (int, error)

	// UpdateProfileBalance caches the derived balance on the profile row
	// so the leaderboard can sort without summing ledgers.
	UpdateProfileBalance(ctx context.Context, userID string, balance int) error

	ListTransactions(ctx context.Context, userID string, limit int) ([]*Transaction, error)
	Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) InsertTransaction(ctx context.Context, tx *Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	query := `
		INSERT INTO karma_transactions (
			id, user_id, amount, transaction_type, related_user_id,
			description, multiplier, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	return r.db.QueryRowxContext(
		ctx, query,
		tx.ID, tx.UserID, tx.Amount, tx.Type, tx.RelatedUserID,
		tx.Description, tx.Multiplier, tx.Metadata,
	).Scan(&tx.CreatedAt)
}

func (r *postgresRepository) GetBalance(ctx context.Context, userID string) (int, error) {
	var balance sql.NullInt64
	query := `SELECT get_karma_balance($1)`

	if err := r.db.GetContext(ctx, &balance, query, userID); err != nil {
		return 0, err
	}
	if !balance.Valid {
		return 0, nil
	}

	return int(balance.Int64), nil
}

func (r *postgresRepository) UpdateProfileBalance(ctx context.Context, userID string, balance int) error {
	query := `UPDATE profiles SET karma_balance = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, balance)
	return err
}

func (r *postgresRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]*Transaction, error) {
	var transactions []*Transaction
	query := `
		SELECT * FROM karma_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &transactions, query, userID, limit)
	return transactions, err
}

func (r *postgresRepository) Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	var entries []*LeaderboardEntry
	query := `
		SELECT id, karma_balance FROM profiles
		ORDER BY karma_balance DESC
		LIMIT $1
	`

	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		entry.Level = Level(entry.Balance)
	}

	return entries, nil
}
