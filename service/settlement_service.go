package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"bingo/events"
	"bingo/metrics"
	"bingo/models"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
	calculator *PrizeCalculator
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, calculator *PrizeCalculator) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		calculator: calculator,
	}
}

// Settle resolves every pending bet of a completed game. Each bet is one
// atomic unit: status update, winner credit and ledger entry commit together
// or roll back together. A failure on one bet leaves it pending for a later
// retry and never blocks the rest of the batch. A game with no pending bets
// is a no-op success, which makes the whole operation idempotent.
func (s *settlementService) Settle(ctx context.Context, gameID uuid.UUID) (*models.SettlementReport, error) {
	started := time.Now()
	defer metrics.RecordSettlement(started)

	game, result, pending, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	report := &models.SettlementReport{GameID: gameID}
	for _, bet := range pending {
		resolved, err := s.settleBet(ctx, bet, game, result)
		if err != nil {
			log.WithFields(log.Fields{
				"gameId": gameID,
				"betId":  bet.ID,
				"error":  err,
			}).Error("Failed to settle bet; it stays pending for retry")
			metrics.RecordBetSettled("failed")
			report.Failed = append(report.Failed, models.SettlementFailure{
				BetID:  bet.ID,
				Reason: err.Error(),
			})
			continue
		}
		if resolved {
			report.Resolved = append(report.Resolved, bet.ID)
		}
	}

	log.WithFields(log.Fields{
		"gameId":   gameID,
		"resolved": len(report.Resolved),
		"failed":   len(report.Failed),
	}).Info("Settlement batch finished")

	return report, nil
}

func (s *settlementService) loadGame(ctx context.Context, gameID uuid.UUID) (*models.Game, *models.GameResult, []*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, nil, nil, fmt.Errorf("game %s: %w", gameID, models.ErrNotFound)
	}
	if game.Status != models.GameStatusCompleted {
		return nil, nil, nil, models.NewStateError("game %s is not completed (status: %s)", game.GameNumber, game.Status)
	}

	result, err := uow.GameResultRepository().GetByGameID(ctx, gameID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get game result: %w", err)
	}
	if result == nil {
		return nil, nil, nil, fmt.Errorf("result snapshot for game %s: %w", gameID, models.ErrNotFound)
	}

	pending, err := uow.BetRepository().GetPendingByGame(ctx, gameID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get pending bets: %w", err)
	}

	return game, result, pending, nil
}

// settleBet resolves a single bet in its own transaction. It reports false
// without error when the bet was already resolved by a concurrent or earlier
// run; terminal bets are never touched twice.
func (s *settlementService) settleBet(ctx context.Context, bet *models.Bet, game *models.Game, result *models.GameResult) (bool, error) {
	prize, err := s.calculator.Evaluate(bet.Selection, result.DrawnNumbers)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate bet: %w", err)
	}

	status := models.BetStatusLost
	actualWin := decimal.Zero
	if prize.Win {
		status = models.BetStatusWon
		actualWin = bet.BetAmount.Mul(prize.Multiplier)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	resolved, err := uow.BetRepository().MarkResolved(ctx, bet.ID, status, actualWin, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to mark bet resolved: %w", err)
	}
	if !resolved {
		// Already settled by an earlier run.
		return false, nil
	}

	if prize.Win {
		if _, err := CreditPlayer(ctx, uow, bet.PlayerID, models.TransactionTypeBetWon, actualWin, &bet.ID,
			fmt.Sprintf("bet won on game %s", game.GameNumber)); err != nil {
			return false, err
		}
	}

	uow.EventBus().Publish(events.BetSettledEvent{
		BetID:     bet.ID,
		PlayerID:  bet.PlayerID,
		GameID:    bet.GameID,
		Status:    status,
		WinAmount: actualWin,
	})

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.RecordBetSettled(string(status))
	return true, nil
}
