package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bingo/database"
	"bingo/models"
)

// TransactionRepository implements the service.TransactionRepository interface
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Record appends a new transaction row. Rows are never updated or deleted;
// the table is the audit trail for every balance change.
func (r *TransactionRepository) Record(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, player_id, type, amount, balance_before, balance_after, description, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	err := r.q.QueryRow(ctx, query,
		tx.ID,
		tx.PlayerID,
		tx.Type,
		tx.Amount,
		tx.BalanceBefore,
		tx.BalanceAfter,
		tx.Description,
		tx.ReferenceID,
	).Scan(&tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record transaction for player %s: %w", tx.PlayerID, err)
	}

	return nil
}

// GetByPlayer returns the most recent transactions for a player
func (r *TransactionRepository) GetByPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, player_id, type, amount, balance_before, balance_after, description, reference_id, created_at
		FROM transactions
		WHERE player_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for player %s: %w", playerID, err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.PlayerID,
			&tx.Type,
			&tx.Amount,
			&tx.BalanceBefore,
			&tx.BalanceAfter,
			&tx.Description,
			&tx.ReferenceID,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}

// SumAmountsByPlayer returns the sum of all transaction amounts for a player
func (r *TransactionRepository) SumAmountsByPlayer(ctx context.Context, playerID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE player_id = $1
	`

	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, query, playerID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for player %s: %w", playerID, err)
	}

	return sum, nil
}
