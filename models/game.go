package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the lifecycle state of a game.
type GameStatus string

const (
	GameStatusScheduled GameStatus = "scheduled"
	GameStatusDrawing   GameStatus = "drawing"
	GameStatusCompleted GameStatus = "completed"
	GameStatusCancelled GameStatus = "cancelled"
)

// SizeResult is the categorical banding of a game's total sum.
type SizeResult string

const (
	SizeSmall SizeResult = "small"
	SizeTie   SizeResult = "tie"
	SizeLarge SizeResult = "large"
)

// SizeBanding selects which total-sum bands map to Small/Tie/Large.
// Two bandings exist historically; the tie band is the only difference.
type SizeBanding string

const (
	// SizeBandingWideTie: Small 3-9, Tie 10-11, Large 12-18. Default.
	SizeBandingWideTie SizeBanding = "10-11"

	// SizeBandingNarrowTie: Small 3-10, Tie 11, Large 12-18.
	SizeBandingNarrowTie SizeBanding = "11"
)

// Classify maps a total sum to its size result under this banding.
// The sum of three dice in [1,6] is always within [3,18].
func (b SizeBanding) Classify(sum int) (SizeResult, error) {
	if sum < 3 || sum > 18 {
		return "", fmt.Errorf("total sum %d out of range [3,18]", sum)
	}
	tieLow := 10
	if b == SizeBandingNarrowTie {
		tieLow = 11
	}
	switch {
	case sum < tieLow:
		return SizeSmall, nil
	case sum <= 11:
		return SizeTie, nil
	default:
		return SizeLarge, nil
	}
}

// Game represents one scheduled draw round.
type Game struct {
	ID           uuid.UUID   `db:"id"`
	GameNumber   string      `db:"game_number"`
	DrawTime     time.Time   `db:"draw_time"`
	Status       GameStatus  `db:"status"`
	DrawnNumbers []int       `db:"drawn_numbers"`
	TotalSum     *int        `db:"total_sum"`
	SizeResult   *SizeResult `db:"size_result"`
	CreatedAt    time.Time   `db:"created_at"`
	CompletedAt  *time.Time  `db:"completed_at"`
}

// IsOpenForBetting reports whether bets may still be placed on the game.
func (g *Game) IsOpenForBetting() bool {
	return g.Status == GameStatusScheduled
}

// IsTerminal reports whether the game has reached a final state.
func (g *Game) IsTerminal() bool {
	return g.Status == GameStatusCompleted || g.Status == GameStatusCancelled
}
