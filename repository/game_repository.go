package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bingo/database"
	"bingo/models"
)

// GameRepository implements the service.GameRepository interface
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// newGameRepositoryWithTx creates a new game repository with a transaction
func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

// Create creates a new scheduled game
func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, game_number, draw_time, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		game.ID,
		game.GameNumber,
		game.DrawTime,
		game.Status,
	).Scan(&game.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game %s: %w", game.GameNumber, err)
	}

	return nil
}

// GetByID retrieves a game by its ID
func (r *GameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := gameSelectColumns + `
		FROM games
		WHERE id = $1
	`

	game, err := r.scanGame(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}

	return game, nil
}

// GetCurrent returns the next scheduled game at or after the given time
func (r *GameRepository) GetCurrent(ctx context.Context, now time.Time) (*models.Game, error) {
	query := gameSelectColumns + `
		FROM games
		WHERE status = 'scheduled' AND draw_time >= $1
		ORDER BY draw_time
		LIMIT 1
	`

	game, err := r.scanGame(r.q.QueryRow(ctx, query, now))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current game: %w", err)
	}

	return game, nil
}

// GetDueForDraw returns scheduled games whose draw time has passed
func (r *GameRepository) GetDueForDraw(ctx context.Context, now time.Time) ([]*models.Game, error) {
	query := gameSelectColumns + `
		FROM games
		WHERE status = 'scheduled' AND draw_time <= $1
		ORDER BY draw_time
	`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := r.scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// GetRecent returns recently completed games, newest first
func (r *GameRepository) GetRecent(ctx context.Context, limit int) ([]*models.Game, error) {
	query := gameSelectColumns + `
		FROM games
		WHERE status = 'completed'
		ORDER BY completed_at DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := r.scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// Update writes a game's mutable fields. Terminal games are excluded in the
// statement itself, so a completed or cancelled game can never be rewritten.
func (r *GameRepository) Update(ctx context.Context, game *models.Game) error {
	query := `
		UPDATE games
		SET status = $2, drawn_numbers = $3, total_sum = $4, size_result = $5, completed_at = $6
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')
	`

	tag, err := r.q.Exec(ctx, query,
		game.ID,
		game.Status,
		game.DrawnNumbers,
		game.TotalSum,
		game.SizeResult,
		game.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", game.ID, err)
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.GetByID(ctx, game.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("game %s: %w", game.ID, models.ErrNotFound)
		}
		return models.NewStateError("game %s is already %s", existing.GameNumber, existing.Status)
	}

	return nil
}

const gameSelectColumns = `
		SELECT id, game_number, draw_time, status, drawn_numbers, total_sum, size_result, created_at, completed_at`

func (r *GameRepository) scanGame(row pgx.Row) (*models.Game, error) {
	var game models.Game
	err := row.Scan(
		&game.ID,
		&game.GameNumber,
		&game.DrawTime,
		&game.Status,
		&game.DrawnNumbers,
		&game.TotalSum,
		&game.SizeResult,
		&game.CreatedAt,
		&game.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &game, nil
}
