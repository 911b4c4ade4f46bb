package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetType identifies which payout rules a bet plays under.
type BetType string

const (
	BetTypeSingleNumber    BetType = "single_number"
	BetTypeMatchingNumbers BetType = "matching_numbers"
	BetTypeTotalSum        BetType = "total_sum"
	BetTypeSize            BetType = "size"
)

// BetStatus represents the lifecycle state of a bet. A bet starts pending
// and moves exactly once to a terminal state.
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"
	BetStatusWon       BetStatus = "won"
	BetStatusLost      BetStatus = "lost"
	BetStatusCancelled BetStatus = "cancelled"
	BetStatusRefunded  BetStatus = "refunded"
)

// IsTerminal reports whether the status admits no further transition.
func (s BetStatus) IsTerminal() bool {
	return s != BetStatusPending
}

// Bet represents a wager placed on a game.
//
// PotentialWin is an optimistic pre-draw preview and is never a guarantee;
// the binding payout is ActualWin, set at settlement.
type Bet struct {
	ID           uuid.UUID        `db:"id"`
	PlayerID     uuid.UUID        `db:"player_id"`
	GameID       uuid.UUID        `db:"game_id"`
	BetType      BetType          `db:"bet_type"`
	Selection    Selection        `db:"-"`
	BetAmount    decimal.Decimal  `db:"bet_amount"`
	PotentialWin decimal.Decimal  `db:"potential_win"`
	ActualWin    *decimal.Decimal `db:"actual_win"`
	Status       BetStatus        `db:"status"`
	PlacedAt     time.Time        `db:"placed_at"`
	ResolvedAt   *time.Time       `db:"resolved_at"`
}
