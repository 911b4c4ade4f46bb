package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bingo/database"
	"bingo/models"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Create creates a new pending bet
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	selection, err := models.MarshalSelection(bet.Selection)
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}

	query := `
		INSERT INTO bets (id, player_id, game_id, bet_type, selection, bet_amount, potential_win, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING placed_at
	`

	err = r.q.QueryRow(ctx, query,
		bet.ID,
		bet.PlayerID,
		bet.GameID,
		bet.BetType,
		selection,
		bet.BetAmount,
		bet.PotentialWin,
		bet.Status,
	).Scan(&bet.PlacedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet for player %s: %w", bet.PlayerID, err)
	}

	return nil
}

// GetByID retrieves a bet by its ID
func (r *BetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	query := betSelectColumns + `
		FROM bets
		WHERE id = $1
	`

	bet, err := r.scanBet(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %s: %w", id, err)
	}

	return bet, nil
}

// GetByPlayer returns the most recent bets for a player
func (r *BetRepository) GetByPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]*models.Bet, error) {
	query := betSelectColumns + `
		FROM bets
		WHERE player_id = $1
		ORDER BY placed_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets for player %s: %w", playerID, err)
	}
	defer rows.Close()

	return r.scanBets(rows)
}

// GetPendingByGame returns all bets for a game still in pending status
func (r *BetRepository) GetPendingByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Bet, error) {
	query := betSelectColumns + `
		FROM bets
		WHERE game_id = $1 AND status = 'pending'
		ORDER BY placed_at
	`

	rows, err := r.q.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending bets for game %s: %w", gameID, err)
	}
	defer rows.Close()

	return r.scanBets(rows)
}

// MarkResolved moves a bet from pending to the given terminal status. The
// pending guard is part of the statement, so a bet that already reached a
// terminal status is left untouched and false is returned.
func (r *BetRepository) MarkResolved(ctx context.Context, betID uuid.UUID, status models.BetStatus, actualWin decimal.Decimal, resolvedAt time.Time) (bool, error) {
	if !status.IsTerminal() {
		return false, fmt.Errorf("status %s is not terminal", status)
	}

	query := `
		UPDATE bets
		SET status = $2, actual_win = $3, resolved_at = $4
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := r.q.Exec(ctx, query, betID, status, actualWin, resolvedAt)
	if err != nil {
		return false, fmt.Errorf("failed to resolve bet %s: %w", betID, err)
	}

	return tag.RowsAffected() > 0, nil
}

const betSelectColumns = `
		SELECT id, player_id, game_id, bet_type, selection, bet_amount, potential_win, actual_win, status, placed_at, resolved_at`

func (r *BetRepository) scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	var rawSelection []byte
	err := row.Scan(
		&bet.ID,
		&bet.PlayerID,
		&bet.GameID,
		&bet.BetType,
		&rawSelection,
		&bet.BetAmount,
		&bet.PotentialWin,
		&bet.ActualWin,
		&bet.Status,
		&bet.PlacedAt,
		&bet.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}

	selection, err := models.ParseSelection(bet.BetType, rawSelection)
	if err != nil {
		return nil, fmt.Errorf("failed to parse selection of bet %s: %w", bet.ID, err)
	}
	bet.Selection = selection

	return &bet, nil
}

func (r *BetRepository) scanBets(rows pgx.Rows) ([]*models.Bet, error) {
	var bets []*models.Bet
	for rows.Next() {
		bet, err := r.scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}
