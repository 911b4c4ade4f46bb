package models

import (
	"time"

	"github.com/google/uuid"
)

// GameResult is the immutable snapshot of a completed game's outcome,
// written exactly once at draw time.
type GameResult struct {
	ID           uuid.UUID  `db:"id"`
	GameID       uuid.UUID  `db:"game_id"`
	DrawnNumbers []int      `db:"drawn_numbers"`
	TotalSum     int        `db:"total_sum"`
	SizeResult   SizeResult `db:"size_result"`
	CreatedAt    time.Time  `db:"created_at"`
}
