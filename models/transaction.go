package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of balance change.
type TransactionType string

const (
	TransactionTypeBetPlaced  TransactionType = "bet_placed"
	TransactionTypeBetWon     TransactionType = "bet_won"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeBonus      TransactionType = "bonus"
)

// Transaction is one append-only ledger entry. Amount is signed; debits are
// negative. BalanceAfter = BalanceBefore + Amount and equals the player's
// balance at the commit that wrote this row.
type Transaction struct {
	ID            uuid.UUID       `db:"id"`
	PlayerID      uuid.UUID       `db:"player_id"`
	Type          TransactionType `db:"type"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Description   string          `db:"description"`
	ReferenceID   *uuid.UUID      `db:"reference_id"`
	CreatedAt     time.Time       `db:"created_at"`
}
