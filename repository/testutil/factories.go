package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bingo/models"
)

// CreateTestGame creates a scheduled test game drawing an hour from now
func CreateTestGame(gameNumber string) *models.Game {
	return &models.Game{
		ID:         uuid.New(),
		GameNumber: gameNumber,
		DrawTime:   time.Now().Add(time.Hour),
		Status:     models.GameStatusScheduled,
	}
}

// CreateTestBet creates a pending single-number test bet
func CreateTestBet(playerID, gameID uuid.UUID, amount decimal.Decimal) *models.Bet {
	selection := models.SingleNumberSelection{Number: 4}
	return &models.Bet{
		ID:           uuid.New(),
		PlayerID:     playerID,
		GameID:       gameID,
		BetType:      models.BetTypeSingleNumber,
		Selection:    selection,
		BetAmount:    amount,
		PotentialWin: amount.Mul(decimal.RequireFromString("1.95")),
		Status:       models.BetStatusPending,
	}
}

// CreateTestResult creates an outcome snapshot for a game
func CreateTestResult(gameID uuid.UUID, drawn [3]int) *models.GameResult {
	sum := drawn[0] + drawn[1] + drawn[2]
	size, _ := models.SizeBandingWideTie.Classify(sum)
	return &models.GameResult{
		ID:           uuid.New(),
		GameID:       gameID,
		DrawnNumbers: drawn[:],
		TotalSum:     sum,
		SizeResult:   size,
	}
}
