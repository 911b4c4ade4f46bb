package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bingo/events"
	"bingo/metrics"
	"bingo/models"
)

type bettingService struct {
	uowFactory UnitOfWorkFactory
	calculator *PrizeCalculator
}

// NewBettingService creates a new betting service
func NewBettingService(uowFactory UnitOfWorkFactory, calculator *PrizeCalculator) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
		calculator: calculator,
	}
}

func (s *bettingService) PlaceBet(ctx context.Context, playerID, gameID uuid.UUID, betType models.BetType, rawSelection json.RawMessage, amount decimal.Decimal) (*models.Bet, error) {
	bet, err := s.placeBet(ctx, playerID, gameID, betType, rawSelection, amount)
	if err != nil {
		metrics.RecordBetPlaced("fail", string(betType))
		return nil, err
	}
	metrics.RecordBetPlaced("success", string(betType))
	return bet, nil
}

func (s *bettingService) placeBet(ctx context.Context, playerID, gameID uuid.UUID, betType models.BetType, rawSelection json.RawMessage, amount decimal.Decimal) (*models.Bet, error) {
	if amount.Sign() <= 0 {
		return nil, models.NewValidationError("bet amount must be positive, got %s", amount)
	}

	selection, err := models.ParseSelection(betType, rawSelection)
	if err != nil {
		return nil, err
	}

	// Advisory preview only; the binding payout is computed at settlement.
	potentialWin, err := s.calculator.PotentialWin(selection, amount)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %s: %w", gameID, models.ErrNotFound)
	}
	if !game.IsOpenForBetting() {
		return nil, models.NewStateError("game %s is not open for betting (status: %s)", game.GameNumber, game.Status)
	}

	bet := &models.Bet{
		ID:           uuid.New(),
		PlayerID:     playerID,
		GameID:       gameID,
		BetType:      betType,
		Selection:    selection,
		BetAmount:    amount,
		PotentialWin: potentialWin,
		Status:       models.BetStatusPending,
	}

	// Debit, bet row and ledger entry land in one commit or not at all.
	if _, err := DebitPlayer(ctx, uow, playerID, models.TransactionTypeBetPlaced, amount, &bet.ID,
		fmt.Sprintf("bet placed on game %s", game.GameNumber)); err != nil {
		return nil, err
	}

	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetID:    bet.ID,
		PlayerID: playerID,
		GameID:   gameID,
		BetType:  betType,
		Amount:   amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bet, nil
}

func (s *bettingService) GetPlayerBets(ctx context.Context, playerID uuid.UUID, limit int) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get player bets: %w", err)
	}
	return bets, nil
}
