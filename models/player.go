package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Player represents a registered player and their current balance.
// The balance is always equal to the sum of the player's transaction
// amounts; every change goes through the ledger.
type Player struct {
	ID        uuid.UUID       `db:"id"`
	Username  string          `db:"username"`
	Balance   decimal.Decimal `db:"balance"`
	IsActive  bool            `db:"is_active"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
