package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bingo/models"
)

// fixedRolls is a RandomSource yielding a predetermined sequence.
type fixedRolls struct {
	rolls []int
	i     int
}

func (f *fixedRolls) Intn(n int) int {
	v := f.rolls[f.i%len(f.rolls)]
	f.i++
	return v
}

// MockSettlementService is a mock implementation of SettlementService
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) Settle(ctx context.Context, gameID uuid.UUID) (*models.SettlementReport, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementReport), args.Error(1)
}

func TestGameService_CreateGame(t *testing.T) {
	ctx := context.Background()
	f := newUowFixture()
	service := NewGameService(f.factory, new(MockSettlementService), &fixedRolls{rolls: []int{0}}, models.SizeBandingWideTie)

	drawTime := time.Now().Add(time.Hour)

	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.gameRepo.On("Create", ctx, mock.MatchedBy(func(g *models.Game) bool {
		return g.GameNumber == "G-100" &&
			g.Status == models.GameStatusScheduled &&
			g.DrawTime.Equal(drawTime)
	})).Return(nil)

	game, err := service.CreateGame(ctx, "G-100", drawTime)

	require.NoError(t, err)
	assert.Equal(t, models.GameStatusScheduled, game.Status)
	f.gameRepo.AssertExpectations(t)
}

func TestGameService_CreateGame_EmptyNumber(t *testing.T) {
	f := newUowFixture()
	service := NewGameService(f.factory, new(MockSettlementService), &fixedRolls{rolls: []int{0}}, models.SizeBandingWideTie)

	_, err := service.CreateGame(context.Background(), "", time.Now())

	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
	f.factory.AssertNotCalled(t, "Create")
}

func TestGameService_TriggerDraw(t *testing.T) {
	ctx := context.Background()
	f := newUowFixture()
	settlement := new(MockSettlementService)

	// Intn yields 0,3,5 so the dice land on 1,4,6: sum 11, tie.
	rng := &fixedRolls{rolls: []int{0, 3, 5}}
	service := NewGameService(f.factory, settlement, rng, models.SizeBandingWideTie)

	gameID := uuid.New()
	game := &models.Game{
		ID:         gameID,
		GameNumber: "G-042",
		Status:     models.GameStatusScheduled,
	}

	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.publisher.On("Publish", mock.Anything).Return()

	f.gameRepo.On("GetByID", ctx, gameID).Return(game, nil)
	f.gameRepo.On("Update", ctx, mock.MatchedBy(func(g *models.Game) bool {
		return g.ID == gameID &&
			g.Status == models.GameStatusCompleted &&
			assert.ObjectsAreEqual([]int{1, 4, 6}, g.DrawnNumbers) &&
			*g.TotalSum == 11 &&
			*g.SizeResult == models.SizeTie &&
			g.CompletedAt != nil
	})).Return(nil)
	f.resultRepo.On("Create", ctx, mock.MatchedBy(func(r *models.GameResult) bool {
		return r.GameID == gameID &&
			assert.ObjectsAreEqual([]int{1, 4, 6}, r.DrawnNumbers) &&
			r.TotalSum == 11 &&
			r.SizeResult == models.SizeTie
	})).Return(nil)

	settlement.On("Settle", ctx, gameID).Return(&models.SettlementReport{GameID: gameID}, nil)

	result, err := service.TriggerDraw(ctx, gameID)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 6}, result.DrawnNumbers)
	assert.Equal(t, 11, result.TotalSum)
	assert.Equal(t, models.SizeTie, result.SizeResult)

	f.gameRepo.AssertExpectations(t)
	f.resultRepo.AssertExpectations(t)
	settlement.AssertExpectations(t)
}

func TestGameService_TriggerDraw_CompletedGameResettles(t *testing.T) {
	ctx := context.Background()
	f := newUowFixture()
	settlement := new(MockSettlementService)
	service := NewGameService(f.factory, settlement, &fixedRolls{rolls: []int{0}}, models.SizeBandingWideTie)

	gameID := uuid.New()
	game := completedGame(gameID)
	existing := resultFor(gameID)

	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.gameRepo.On("GetByID", ctx, gameID).Return(game, nil)
	f.resultRepo.On("GetByGameID", ctx, gameID).Return(existing, nil)

	settlement.On("Settle", ctx, gameID).Return(&models.SettlementReport{GameID: gameID}, nil)

	result, err := service.TriggerDraw(ctx, gameID)

	require.NoError(t, err)
	// The committed outcome is returned untouched; no second draw happens.
	assert.Equal(t, existing.ID, result.ID)
	f.gameRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.resultRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	settlement.AssertExpectations(t)
}

func TestGameService_TriggerDraw_CancelledGame(t *testing.T) {
	ctx := context.Background()
	f := newUowFixture()
	settlement := new(MockSettlementService)
	service := NewGameService(f.factory, settlement, &fixedRolls{rolls: []int{0}}, models.SizeBandingWideTie)

	gameID := uuid.New()
	game := &models.Game{ID: gameID, GameNumber: "G-042", Status: models.GameStatusCancelled}

	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.gameRepo.On("GetByID", ctx, gameID).Return(game, nil)

	_, err := service.TriggerDraw(ctx, gameID)

	require.Error(t, err)
	assert.True(t, models.IsStateError(err))
	settlement.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
}

func TestGameService_CancelGame_RefundsPendingBets(t *testing.T) {
	ctx := context.Background()
	f := newUowFixture()
	service := NewGameService(f.factory, new(MockSettlementService), &fixedRolls{rolls: []int{0}}, models.SizeBandingWideTie)

	gameID := uuid.New()
	game := &models.Game{ID: gameID, GameNumber: "G-042", Status: models.GameStatusScheduled}

	bet := pendingBet(gameID, models.BetTypeSingleNumber, models.SingleNumberSelection{Number: 2}, 100)

	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.publisher.On("Publish", mock.Anything).Return()

	f.gameRepo.On("GetByID", ctx, gameID).Return(game, nil)
	f.betRepo.On("GetPendingByGame", ctx, gameID).Return([]*models.Bet{bet}, nil)

	f.betRepo.On("MarkResolved", ctx, bet.ID, models.BetStatusRefunded,
		decimal.Zero, mock.AnythingOfType("time.Time")).Return(true, nil)
	f.playerRepo.On("GetByID", ctx, bet.PlayerID).Return(&models.Player{
		ID: bet.PlayerID, Balance: decimal.NewFromInt(400),
	}, nil)
	f.playerRepo.On("AddBalance", ctx, bet.PlayerID, decimal.NewFromInt(100)).Return(nil)
	f.txRepo.On("Record", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Type == models.TransactionTypeRefund &&
			tx.Amount.Equal(decimal.NewFromInt(100)) &&
			tx.ReferenceID != nil && *tx.ReferenceID == bet.ID
	})).Return(nil)

	f.gameRepo.On("Update", ctx, mock.MatchedBy(func(g *models.Game) bool {
		return g.ID == gameID && g.Status == models.GameStatusCancelled
	})).Return(nil)

	err := service.CancelGame(ctx, gameID)

	require.NoError(t, err)
	f.betRepo.AssertExpectations(t)
	f.playerRepo.AssertExpectations(t)
	f.txRepo.AssertExpectations(t)
	f.gameRepo.AssertExpectations(t)
}

func TestGameService_CancelGame_TerminalGame(t *testing.T) {
	ctx := context.Background()
	f := newUowFixture()
	service := NewGameService(f.factory, new(MockSettlementService), &fixedRolls{rolls: []int{0}}, models.SizeBandingWideTie)

	gameID := uuid.New()

	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.gameRepo.On("GetByID", ctx, gameID).Return(completedGame(gameID), nil)

	err := service.CancelGame(ctx, gameID)

	require.Error(t, err)
	assert.True(t, models.IsStateError(err))
	f.uow.AssertNotCalled(t, "Commit")
}

func TestGameService_DrawDueGames_Empty(t *testing.T) {
	ctx := context.Background()
	f := newUowFixture()
	service := NewGameService(f.factory, new(MockSettlementService), &fixedRolls{rolls: []int{0}}, models.SizeBandingWideTie)

	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.gameRepo.On("GetDueForDraw", ctx, mock.AnythingOfType("time.Time")).Return([]*models.Game{}, nil)

	err := service.DrawDueGames(ctx)

	require.NoError(t, err)
	f.gameRepo.AssertExpectations(t)
}
