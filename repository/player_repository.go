package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bingo/database"
	"bingo/models"
)

// PlayerRepository implements the service.PlayerRepository interface
type PlayerRepository struct {
	q queryable
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{q: db.Pool}
}

// newPlayerRepositoryWithTx creates a new player repository with a transaction
func newPlayerRepositoryWithTx(tx queryable) *PlayerRepository {
	return &PlayerRepository{q: tx}
}

// GetByID retrieves a player by their ID
func (r *PlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	query := `
		SELECT id, username, balance, is_active, created_at, updated_at
		FROM players
		WHERE id = $1
	`

	var player models.Player
	err := r.q.QueryRow(ctx, query, id).Scan(
		&player.ID,
		&player.Username,
		&player.Balance,
		&player.IsActive,
		&player.CreatedAt,
		&player.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}

	return &player, nil
}

// Create creates a new player with a zero balance
func (r *PlayerRepository) Create(ctx context.Context, username string) (*models.Player, error) {
	query := `
		INSERT INTO players (id, username, balance)
		VALUES ($1, $2, 0)
		RETURNING id, username, balance, is_active, created_at, updated_at
	`

	var player models.Player
	err := r.q.QueryRow(ctx, query, uuid.New(), username).Scan(
		&player.ID,
		&player.Username,
		&player.Balance,
		&player.IsActive,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create player %s: %w", username, err)
	}

	return &player, nil
}

// GetAll returns all players
func (r *PlayerRepository) GetAll(ctx context.Context) ([]*models.Player, error) {
	query := `
		SELECT id, username, balance, is_active, created_at, updated_at
		FROM players
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var player models.Player
		err := rows.Scan(
			&player.ID,
			&player.Username,
			&player.Balance,
			&player.IsActive,
			&player.CreatedAt,
			&player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, &player)
	}

	return players, rows.Err()
}

// AddBalance adds to a player's balance atomically
func (r *PlayerRepository) AddBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE players
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("failed to add balance for player %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("player %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// DeductBalance deducts from a player's balance atomically. The balance
// check happens in the same statement, so a concurrent deduction can never
// push the balance negative.
func (r *PlayerRepository) DeductBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE players
		SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2
	`

	tag, err := r.q.Exec(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for player %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		player, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if player == nil {
			return fmt.Errorf("player %s: %w", id, models.ErrNotFound)
		}
		return fmt.Errorf("player %s has balance %s, needs %s: %w",
			id, player.Balance, amount, models.ErrInsufficientFunds)
	}

	return nil
}
