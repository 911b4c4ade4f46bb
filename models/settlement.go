package models

import (
	"github.com/google/uuid"
)

// SettlementFailure records one bet that could not be resolved during a
// settlement batch. The bet stays pending and is retried on the next run.
type SettlementFailure struct {
	BetID  uuid.UUID
	Reason string
}

// SettlementReport summarises one settlement run for a game. Settlement is
// idempotent: a run over a game with no pending bets reports empty slices.
type SettlementReport struct {
	GameID   uuid.UUID
	Resolved []uuid.UUID
	Failed   []SettlementFailure
}
