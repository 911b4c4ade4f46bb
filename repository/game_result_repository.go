package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bingo/database"
	"bingo/models"
)

// GameResultRepository implements the service.GameResultRepository interface
type GameResultRepository struct {
	q queryable
}

// NewGameResultRepository creates a new game result repository
func NewGameResultRepository(db *database.DB) *GameResultRepository {
	return &GameResultRepository{q: db.Pool}
}

// newGameResultRepositoryWithTx creates a new game result repository with a transaction
func newGameResultRepositoryWithTx(tx queryable) *GameResultRepository {
	return &GameResultRepository{q: tx}
}

// Create writes the immutable outcome snapshot for a game. The game_id
// unique constraint rejects a second snapshot for the same game.
func (r *GameResultRepository) Create(ctx context.Context, result *models.GameResult) error {
	query := `
		INSERT INTO game_results (id, game_id, drawn_numbers, total_sum, size_result)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		result.ID,
		result.GameID,
		result.DrawnNumbers,
		result.TotalSum,
		result.SizeResult,
	).Scan(&result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create result for game %s: %w", result.GameID, err)
	}

	return nil
}

// GetByGameID retrieves the snapshot for a game
func (r *GameResultRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) (*models.GameResult, error) {
	query := `
		SELECT id, game_id, drawn_numbers, total_sum, size_result, created_at
		FROM game_results
		WHERE game_id = $1
	`

	var result models.GameResult
	err := r.q.QueryRow(ctx, query, gameID).Scan(
		&result.ID,
		&result.GameID,
		&result.DrawnNumbers,
		&result.TotalSum,
		&result.SizeResult,
		&result.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result for game %s: %w", gameID, err)
	}

	return &result, nil
}

// GetRecent returns the latest outcome snapshots, newest first
func (r *GameResultRepository) GetRecent(ctx context.Context, limit int) ([]*models.GameResult, error) {
	query := `
		SELECT id, game_id, drawn_numbers, total_sum, size_result, created_at
		FROM game_results
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent results: %w", err)
	}
	defer rows.Close()

	var results []*models.GameResult
	for rows.Next() {
		var result models.GameResult
		err := rows.Scan(
			&result.ID,
			&result.GameID,
			&result.DrawnNumbers,
			&result.TotalSum,
			&result.SizeResult,
			&result.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}
