package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bingo/events"
	"bingo/models"
)

// CreditPlayer increments a player's balance and appends the paired ledger
// entry inside the caller's unit of work. This is the single entry point for
// credits; a balance change is never visible without its transaction row.
func CreditPlayer(ctx context.Context, uow UnitOfWork, playerID uuid.UUID, txType models.TransactionType, amount decimal.Decimal, referenceID *uuid.UUID, description string) (*models.Transaction, error) {
	if amount.Sign() <= 0 {
		return nil, models.NewValidationError("credit amount must be positive, got %s", amount)
	}

	player, err := uow.PlayerRepository().GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("player %s: %w", playerID, models.ErrNotFound)
	}

	if err := uow.PlayerRepository().AddBalance(ctx, playerID, amount); err != nil {
		return nil, fmt.Errorf("failed to add balance: %w", err)
	}

	tx := &models.Transaction{
		PlayerID:      playerID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: player.Balance,
		BalanceAfter:  player.Balance.Add(amount),
		Description:   description,
		ReferenceID:   referenceID,
	}
	if err := uow.TransactionRepository().Record(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		PlayerID:        playerID,
		OldBalance:      tx.BalanceBefore,
		NewBalance:      tx.BalanceAfter,
		TransactionType: txType,
		ChangeAmount:    amount,
	})

	return tx, nil
}

// DebitPlayer decrements a player's balance and appends the paired ledger
// entry inside the caller's unit of work. Returns models.ErrInsufficientFunds
// when the balance cannot cover the amount.
func DebitPlayer(ctx context.Context, uow UnitOfWork, playerID uuid.UUID, txType models.TransactionType, amount decimal.Decimal, referenceID *uuid.UUID, description string) (*models.Transaction, error) {
	if amount.Sign() <= 0 {
		return nil, models.NewValidationError("debit amount must be positive, got %s", amount)
	}

	player, err := uow.PlayerRepository().GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("player %s: %w", playerID, models.ErrNotFound)
	}

	if err := uow.PlayerRepository().DeductBalance(ctx, playerID, amount); err != nil {
		return nil, fmt.Errorf("failed to deduct balance: %w", err)
	}

	tx := &models.Transaction{
		PlayerID:      playerID,
		Type:          txType,
		Amount:        amount.Neg(),
		BalanceBefore: player.Balance,
		BalanceAfter:  player.Balance.Sub(amount),
		Description:   description,
		ReferenceID:   referenceID,
	}
	if err := uow.TransactionRepository().Record(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		PlayerID:        playerID,
		OldBalance:      tx.BalanceBefore,
		NewBalance:      tx.BalanceAfter,
		TransactionType: txType,
		ChangeAmount:    amount.Neg(),
	})

	return tx, nil
}

type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

func (s *ledgerService) Deposit(ctx context.Context, playerID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error) {
	return s.credit(ctx, playerID, models.TransactionTypeDeposit, amount, description)
}

func (s *ledgerService) GrantBonus(ctx context.Context, playerID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error) {
	return s.credit(ctx, playerID, models.TransactionTypeBonus, amount, description)
}

func (s *ledgerService) credit(ctx context.Context, playerID uuid.UUID, txType models.TransactionType, amount decimal.Decimal, description string) (*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	tx, err := CreditPlayer(ctx, uow, playerID, txType, amount, nil, description)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tx, nil
}

func (s *ledgerService) Withdraw(ctx context.Context, playerID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tx, err := DebitPlayer(ctx, uow, playerID, models.TransactionTypeWithdrawal, amount, nil, description)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tx, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, playerID uuid.UUID) (decimal.Decimal, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByID(ctx, playerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return decimal.Zero, fmt.Errorf("player %s: %w", playerID, models.ErrNotFound)
	}
	return player.Balance, nil
}

func (s *ledgerService) GetTransactions(ctx context.Context, playerID uuid.UUID, limit int) ([]*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txs, err := uow.TransactionRepository().GetByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return txs, nil
}
