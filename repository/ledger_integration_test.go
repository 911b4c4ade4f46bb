package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bingo/events"
	"bingo/models"
	"bingo/repository/testutil"
	"bingo/service"
)

// fixedRolls yields a predetermined dice sequence.
type fixedRolls struct {
	rolls []int
	i     int
}

func (f *fixedRolls) Intn(n int) int {
	v := f.rolls[f.i%len(f.rolls)]
	f.i++
	return v
}

type engine struct {
	factory    service.UnitOfWorkFactory
	ledger     service.LedgerService
	betting    service.BettingService
	settlement service.SettlementService
	games      service.GameService
}

func newEngine(t *testing.T, testDB *testutil.TestDatabase, rolls []int) *engine {
	t.Helper()

	bus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	calc := service.NewPrizeCalculator(models.SizeBandingWideTie)
	settlement := service.NewSettlementService(factory, calc)

	return &engine{
		factory:    factory,
		ledger:     service.NewLedgerService(factory),
		betting:    service.NewBettingService(factory, calc),
		settlement: settlement,
		games:      service.NewGameService(factory, settlement, &fixedRolls{rolls: rolls}, models.SizeBandingWideTie),
	}
}

func createPlayer(t *testing.T, testDB *testutil.TestDatabase, username string) *models.Player {
	t.Helper()
	player, err := NewPlayerRepository(testDB.DB).Create(context.Background(), username)
	require.NoError(t, err)
	return player
}

// requireLedgerInvariant asserts that the player's balance equals the sum of
// all their transaction amounts.
func requireLedgerInvariant(t *testing.T, e *engine, testDB *testutil.TestDatabase, player *models.Player) {
	t.Helper()
	ctx := context.Background()

	balance, err := e.ledger.GetBalance(ctx, player.ID)
	require.NoError(t, err)

	sum, err := NewTransactionRepository(testDB.DB).SumAmountsByPlayer(ctx, player.ID)
	require.NoError(t, err)

	assert.True(t, balance.Equal(sum), "balance %s != transaction sum %s", balance, sum)
}

func TestLedger_PlaceDrawSettle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	// Dice land on 1,4,6: sum 11, tie.
	e := newEngine(t, testDB, []int{0, 3, 5})

	winner := createPlayer(t, testDB, "alice")
	loser := createPlayer(t, testDB, "bob")

	_, err := e.ledger.Deposit(ctx, winner.ID, decimal.NewFromInt(1000), "initial deposit")
	require.NoError(t, err)
	_, err = e.ledger.Deposit(ctx, loser.ID, decimal.NewFromInt(500), "initial deposit")
	require.NoError(t, err)

	game, err := e.games.CreateGame(ctx, "G-001", time.Now().Add(time.Hour))
	require.NoError(t, err)

	winningBet, err := e.betting.PlaceBet(ctx, winner.ID, game.ID, models.BetTypeSingleNumber, json.RawMessage(`4`), decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = e.betting.PlaceBet(ctx, loser.ID, game.ID, models.BetTypeSingleNumber, json.RawMessage(`3`), decimal.NewFromInt(50))
	require.NoError(t, err)

	result, err := e.games.TriggerDraw(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 6}, result.DrawnNumbers)
	assert.Equal(t, 11, result.TotalSum)

	// Winner: 1000 - 100 + 195 = 1095. Loser: 500 - 50 = 450.
	winnerBalance, err := e.ledger.GetBalance(ctx, winner.ID)
	require.NoError(t, err)
	assert.True(t, winnerBalance.Equal(decimal.RequireFromString("1095")), "got %s", winnerBalance)

	loserBalance, err := e.ledger.GetBalance(ctx, loser.ID)
	require.NoError(t, err)
	assert.True(t, loserBalance.Equal(decimal.NewFromInt(450)), "got %s", loserBalance)

	requireLedgerInvariant(t, e, testDB, winner)
	requireLedgerInvariant(t, e, testDB, loser)

	// The winning bet carries its resolution.
	settled, err := NewBetRepository(testDB.DB).GetByID(ctx, winningBet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusWon, settled.Status)
	require.NotNil(t, settled.ActualWin)
	assert.True(t, settled.ActualWin.Equal(decimal.RequireFromString("195")))
	assert.NotNil(t, settled.ResolvedAt)
}

func TestLedger_DoubleSettleIsNoOp(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	e := newEngine(t, testDB, []int{0, 3, 5})

	player := createPlayer(t, testDB, "carol")
	_, err := e.ledger.Deposit(ctx, player.ID, decimal.NewFromInt(1000), "initial deposit")
	require.NoError(t, err)

	game, err := e.games.CreateGame(ctx, "G-002", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = e.betting.PlaceBet(ctx, player.ID, game.ID, models.BetTypeSingleNumber, json.RawMessage(`4`), decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = e.games.TriggerDraw(ctx, game.ID)
	require.NoError(t, err)

	balanceAfterFirst, err := e.ledger.GetBalance(ctx, player.ID)
	require.NoError(t, err)
	txsAfterFirst, err := e.ledger.GetTransactions(ctx, player.ID, 100)
	require.NoError(t, err)

	// Settling again resolves nothing and credits nothing.
	report, err := e.settlement.Settle(ctx, game.ID)
	require.NoError(t, err)
	assert.Empty(t, report.Resolved)
	assert.Empty(t, report.Failed)

	// Triggering the draw again does not redraw either.
	result, err := e.games.TriggerDraw(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 6}, result.DrawnNumbers)

	balanceAfterSecond, err := e.ledger.GetBalance(ctx, player.ID)
	require.NoError(t, err)
	txsAfterSecond, err := e.ledger.GetTransactions(ctx, player.ID, 100)
	require.NoError(t, err)

	assert.True(t, balanceAfterFirst.Equal(balanceAfterSecond))
	assert.Len(t, txsAfterSecond, len(txsAfterFirst))
	requireLedgerInvariant(t, e, testDB, player)
}

func TestLedger_InsufficientFundsLeavesNothingBehind(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	e := newEngine(t, testDB, []int{0})

	player := createPlayer(t, testDB, "dave")
	_, err := e.ledger.Deposit(ctx, player.ID, decimal.NewFromInt(30), "initial deposit")
	require.NoError(t, err)

	game, err := e.games.CreateGame(ctx, "G-003", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = e.betting.PlaceBet(ctx, player.ID, game.ID, models.BetTypeSingleNumber, json.RawMessage(`4`), decimal.NewFromInt(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientFunds))

	// Balance untouched, no bet row, no ledger entry beyond the deposit.
	balance, err := e.ledger.GetBalance(ctx, player.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(30)))

	bets, err := e.betting.GetPlayerBets(ctx, player.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, bets)

	txs, err := e.ledger.GetTransactions(ctx, player.ID, 10)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	requireLedgerInvariant(t, e, testDB, player)
}

func TestLedger_CancelRefundsPendingBets(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	e := newEngine(t, testDB, []int{0})

	player := createPlayer(t, testDB, "erin")
	_, err := e.ledger.Deposit(ctx, player.ID, decimal.NewFromInt(200), "initial deposit")
	require.NoError(t, err)

	game, err := e.games.CreateGame(ctx, "G-004", time.Now().Add(time.Hour))
	require.NoError(t, err)

	bet, err := e.betting.PlaceBet(ctx, player.ID, game.ID, models.BetTypeSize, json.RawMessage(`"large"`), decimal.NewFromInt(80))
	require.NoError(t, err)

	require.NoError(t, e.games.CancelGame(ctx, game.ID))

	// The stake is back and the bet is refunded, not lost.
	balance, err := e.ledger.GetBalance(ctx, player.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(200)))

	refunded, err := NewBetRepository(testDB.DB).GetByID(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusRefunded, refunded.Status)

	// The cancelled game refuses further bets and draws.
	_, err = e.betting.PlaceBet(ctx, player.ID, game.ID, models.BetTypeSize, json.RawMessage(`"small"`), decimal.NewFromInt(10))
	assert.True(t, models.IsStateError(err))
	_, err = e.games.TriggerDraw(ctx, game.ID)
	assert.True(t, models.IsStateError(err))

	requireLedgerInvariant(t, e, testDB, player)
}

func TestLedger_WithdrawAndBonus(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	e := newEngine(t, testDB, []int{0})

	player := createPlayer(t, testDB, "frank")
	_, err := e.ledger.Deposit(ctx, player.ID, decimal.NewFromInt(100), "initial deposit")
	require.NoError(t, err)

	_, err = e.ledger.GrantBonus(ctx, player.ID, decimal.NewFromInt(25), "welcome bonus")
	require.NoError(t, err)

	_, err = e.ledger.Withdraw(ctx, player.ID, decimal.NewFromInt(40), "payout")
	require.NoError(t, err)

	_, err = e.ledger.Withdraw(ctx, player.ID, decimal.NewFromInt(1000), "too much")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientFunds))

	balance, err := e.ledger.GetBalance(ctx, player.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(85)))
	requireLedgerInvariant(t, e, testDB, player)
}
