package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bingo/events"
	"bingo/models"
)

// PlayerRepository defines the interface for player data access
type PlayerRepository interface {
	// GetByID retrieves a player by id, returning nil when not found
	GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error)

	// Create creates a new player with a zero balance
	Create(ctx context.Context, username string) (*models.Player, error)

	// GetAll returns all players
	GetAll(ctx context.Context) ([]*models.Player, error)

	// AddBalance adds to a player's balance atomically
	AddBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// DeductBalance deducts from a player's balance atomically, returning
	// models.ErrInsufficientFunds when the balance is too low
	DeductBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Record appends a new transaction row
	Record(ctx context.Context, tx *models.Transaction) error

	// GetByPlayer returns the most recent transactions for a player
	GetByPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]*models.Transaction, error)

	// SumAmountsByPlayer returns the sum of all transaction amounts for a
	// player; it must always equal the player's balance
	SumAmountsByPlayer(ctx context.Context, playerID uuid.UUID) (decimal.Decimal, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create creates a new pending bet
	Create(ctx context.Context, bet *models.Bet) error

	// GetByID retrieves a bet by id, returning nil when not found
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)

	// GetByPlayer returns the most recent bets for a player
	GetByPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]*models.Bet, error)

	// GetPendingByGame returns all bets for a game still in pending status
	GetPendingByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Bet, error)

	// MarkResolved moves a bet from pending to the given terminal status.
	// It reports false when the bet was not pending, so terminal states are
	// never overwritten.
	MarkResolved(ctx context.Context, betID uuid.UUID, status models.BetStatus, actualWin decimal.Decimal, resolvedAt time.Time) (bool, error)
}

// GameRepository defines the interface for game data access
type GameRepository interface {
	// Create creates a new scheduled game
	Create(ctx context.Context, game *models.Game) error

	// GetByID retrieves a game by id, returning nil when not found
	GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error)

	// GetCurrent returns the next scheduled game at or after the given time
	GetCurrent(ctx context.Context, now time.Time) (*models.Game, error)

	// GetDueForDraw returns scheduled games whose draw time has passed
	GetDueForDraw(ctx context.Context, now time.Time) ([]*models.Game, error)

	// GetRecent returns recently completed games, newest first
	GetRecent(ctx context.Context, limit int) ([]*models.Game, error)

	// Update writes a game's mutable fields. Games already in a terminal
	// status are never updated; such a call returns a StateError.
	Update(ctx context.Context, game *models.Game) error
}

// GameResultRepository defines the interface for outcome snapshots
type GameResultRepository interface {
	// Create writes the immutable outcome snapshot for a game
	Create(ctx context.Context, result *models.GameResult) error

	// GetByGameID retrieves the snapshot for a game, nil when not found
	GetByGameID(ctx context.Context, gameID uuid.UUID) (*models.GameResult, error)

	// GetRecent returns the latest outcome snapshots, newest first
	GetRecent(ctx context.Context, limit int) ([]*models.GameResult, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// RandomSource supplies die rolls for draws. Production wires math/rand;
// tests supply fixed sequences to assert exact payouts.
type RandomSource interface {
	// Intn returns a uniformly random int in [0,n)
	Intn(n int) int
}

// DrawHistorySource is the read-only port consumed by the external
// statistics subsystem. The settlement core never depends on it.
type DrawHistorySource interface {
	// FetchRecent returns the outcomes of the last n completed draws
	FetchRecent(ctx context.Context, n int) ([]*models.GameResult, error)
}

// BettingService defines the interface for bet placement
type BettingService interface {
	// PlaceBet validates and places a bet on an open game, debiting the
	// player and appending the ledger entry in one atomic unit
	PlaceBet(ctx context.Context, playerID, gameID uuid.UUID, betType models.BetType, selection json.RawMessage, amount decimal.Decimal) (*models.Bet, error)

	// GetPlayerBets returns the most recent bets for a player
	GetPlayerBets(ctx context.Context, playerID uuid.UUID, limit int) ([]*models.Bet, error)
}

// GameService owns the game lifecycle
type GameService interface {
	// CreateGame schedules a new game
	CreateGame(ctx context.Context, gameNumber string, drawTime time.Time) (*models.Game, error)

	// TriggerDraw draws the numbers for a scheduled game and settles it.
	// Re-invoking on an already completed game does not redraw; it re-runs
	// settlement, which is idempotent.
	TriggerDraw(ctx context.Context, gameID uuid.UUID) (*models.GameResult, error)

	// DrawDueGames triggers the draw of every scheduled game whose draw
	// time has passed, continuing past per-game failures
	DrawDueGames(ctx context.Context) error

	// CancelGame cancels a scheduled or drawing game and refunds every
	// pending bet
	CancelGame(ctx context.Context, gameID uuid.UUID) error

	// GetGame retrieves a game by id
	GetGame(ctx context.Context, gameID uuid.UUID) (*models.Game, error)

	// GetCurrentGame returns the next game open for betting
	GetCurrentGame(ctx context.Context) (*models.Game, error)

	// GetRecentGames returns recently completed games
	GetRecentGames(ctx context.Context, limit int) ([]*models.Game, error)
}

// SettlementService resolves the pending bets of a completed game
type SettlementService interface {
	// Settle resolves every pending bet of the game exactly once and
	// reports per-bet failures without aborting the batch
	Settle(ctx context.Context, gameID uuid.UUID) (*models.SettlementReport, error)
}

// LedgerService exposes direct balance operations
type LedgerService interface {
	// Deposit credits a player's balance
	Deposit(ctx context.Context, playerID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error)

	// Withdraw debits a player's balance, failing on insufficient funds
	Withdraw(ctx context.Context, playerID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error)

	// GrantBonus credits a promotional bonus
	GrantBonus(ctx context.Context, playerID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error)

	// GetBalance returns a player's current balance
	GetBalance(ctx context.Context, playerID uuid.UUID) (decimal.Decimal, error)

	// GetTransactions returns the most recent ledger entries for a player
	GetTransactions(ctx context.Context, playerID uuid.UUID, limit int) ([]*models.Transaction, error)
}

// StatsService computes frequency heuristics over completed-game history.
// It only ever reads; it holds no lock needed by placement or settlement.
type StatsService interface {
	// NumberFrequency returns how often each face appeared in the last n draws
	NumberFrequency(ctx context.Context, lastN int) (map[int]int, error)

	// SizeDistribution returns how often each size result occurred in the
	// last n draws
	SizeDistribution(ctx context.Context, lastN int) (map[models.SizeResult]int, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	PlayerRepository() PlayerRepository
	TransactionRepository() TransactionRepository
	BetRepository() BetRepository
	GameRepository() GameRepository
	GameResultRepository() GameResultRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
