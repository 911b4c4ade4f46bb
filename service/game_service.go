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

type gameService struct {
	uowFactory UnitOfWorkFactory
	settlement SettlementService
	rng        RandomSource
	banding    models.SizeBanding
}

// NewGameService creates a new game service. The random source is injected
// so tests can supply deterministic sequences.
func NewGameService(uowFactory UnitOfWorkFactory, settlement SettlementService, rng RandomSource, banding models.SizeBanding) GameService {
	return &gameService{
		uowFactory: uowFactory,
		settlement: settlement,
		rng:        rng,
		banding:    banding,
	}
}

func (s *gameService) CreateGame(ctx context.Context, gameNumber string, drawTime time.Time) (*models.Game, error) {
	if gameNumber == "" {
		return nil, models.NewValidationError("game number cannot be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	game := &models.Game{
		ID:         uuid.New(),
		GameNumber: gameNumber,
		DrawTime:   drawTime,
		Status:     models.GameStatusScheduled,
	}
	if err := uow.GameRepository().Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return game, nil
}

// TriggerDraw draws the three numbers for a scheduled game, snapshots the
// outcome and settles all pending bets. The numbers, the snapshot and the
// completed status land in one commit; settlement then runs bet by bet. If a
// previous run was interrupted after that commit, re-invoking on the
// completed game does not redraw; it re-runs settlement, which skips every
// bet that already left pending status.
func (s *gameService) TriggerDraw(ctx context.Context, gameID uuid.UUID) (*models.GameResult, error) {
	result, err := s.draw(ctx, gameID)
	if err != nil {
		metrics.RecordDraw("fail", "")
		return nil, err
	}
	metrics.RecordDraw("success", string(result.SizeResult))

	if _, err := s.settlement.Settle(ctx, gameID); err != nil {
		return nil, fmt.Errorf("draw committed but settlement failed: %w", err)
	}
	return result, nil
}

func (s *gameService) draw(ctx context.Context, gameID uuid.UUID) (*models.GameResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %s: %w", gameID, models.ErrNotFound)
	}

	if game.Status == models.GameStatusCompleted {
		// Numbers already committed; hand back the existing snapshot so the
		// caller proceeds straight to settlement.
		result, err := uow.GameResultRepository().GetByGameID(ctx, gameID)
		if err != nil {
			return nil, fmt.Errorf("failed to get game result: %w", err)
		}
		if result == nil {
			return nil, fmt.Errorf("result snapshot for game %s: %w", gameID, models.ErrNotFound)
		}
		return result, nil
	}
	if game.Status != models.GameStatusScheduled {
		return nil, models.NewStateError("game %s is not in scheduled status (status: %s)", game.GameNumber, game.Status)
	}

	// Drawing is a transient state inside this commit unit; it is never
	// observable on its own once the draw succeeds.
	game.Status = models.GameStatusDrawing

	drawn := make([]int, 3)
	for i := range drawn {
		drawn[i] = s.rng.Intn(6) + 1
	}
	totalSum := drawn[0] + drawn[1] + drawn[2]
	sizeResult, err := s.banding.Classify(totalSum)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	game.Status = models.GameStatusCompleted
	game.DrawnNumbers = drawn
	game.TotalSum = &totalSum
	game.SizeResult = &sizeResult
	game.CompletedAt = &now

	if err := uow.GameRepository().Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	result := &models.GameResult{
		ID:           uuid.New(),
		GameID:       gameID,
		DrawnNumbers: drawn,
		TotalSum:     totalSum,
		SizeResult:   sizeResult,
	}
	if err := uow.GameResultRepository().Create(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to create game result: %w", err)
	}

	uow.EventBus().Publish(events.GameCompletedEvent{
		GameID:       gameID,
		GameNumber:   game.GameNumber,
		DrawnNumbers: drawn,
		TotalSum:     totalSum,
		SizeResult:   sizeResult,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameId":     gameID,
		"gameNumber": game.GameNumber,
		"drawn":      drawn,
		"totalSum":   totalSum,
		"size":       sizeResult,
	}).Info("Game drawn")

	return result, nil
}

// DrawDueGames triggers the draw of every scheduled game whose draw time
// has passed. A failing game is logged and skipped; the next poll retries it.
func (s *gameService) DrawDueGames(ctx context.Context) error {
	due, err := s.dueGames(ctx)
	if err != nil {
		return err
	}

	for _, game := range due {
		if _, err := s.TriggerDraw(ctx, game.ID); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"gameId":     game.ID,
				"gameNumber": game.GameNumber,
			}).Error("Failed to draw due game")
		}
	}
	return nil
}

func (s *gameService) dueGames(ctx context.Context) ([]*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	due, err := uow.GameRepository().GetDueForDraw(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get due games: %w", err)
	}
	return due, nil
}

// CancelGame cancels a scheduled or drawing game and refunds the bet amount
// of every pending bet. The status change and all refunds are one atomic
// unit.
func (s *gameService) CancelGame(ctx context.Context, gameID uuid.UUID) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return fmt.Errorf("game %s: %w", gameID, models.ErrNotFound)
	}
	if game.IsTerminal() {
		return models.NewStateError("game %s cannot be cancelled (status: %s)", game.GameNumber, game.Status)
	}

	pending, err := uow.BetRepository().GetPendingByGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get pending bets: %w", err)
	}

	now := time.Now()
	for _, bet := range pending {
		refunded, err := uow.BetRepository().MarkResolved(ctx, bet.ID, models.BetStatusRefunded, decimal.Zero, now)
		if err != nil {
			return fmt.Errorf("failed to mark bet %s refunded: %w", bet.ID, err)
		}
		if !refunded {
			continue
		}
		if _, err := CreditPlayer(ctx, uow, bet.PlayerID, models.TransactionTypeRefund, bet.BetAmount, &bet.ID,
			fmt.Sprintf("bet refunded, game %s cancelled", game.GameNumber)); err != nil {
			return err
		}
	}

	game.Status = models.GameStatusCancelled
	if err := uow.GameRepository().Update(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	uow.EventBus().Publish(events.GameCancelledEvent{
		GameID:       gameID,
		GameNumber:   game.GameNumber,
		RefundedBets: len(pending),
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameId":       gameID,
		"refundedBets": len(pending),
	}).Info("Game cancelled")

	return nil
}

func (s *gameService) GetGame(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %s: %w", gameID, models.ErrNotFound)
	}
	return game, nil
}

func (s *gameService) GetCurrentGame(ctx context.Context) (*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetCurrent(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get current game: %w", err)
	}
	return game, nil
}

func (s *gameService) GetRecentGames(ctx context.Context, limit int) ([]*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	games, err := uow.GameRepository().GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent games: %w", err)
	}
	return games, nil
}
