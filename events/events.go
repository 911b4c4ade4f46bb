package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"bingo/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeBetPlaced     EventType = "bet_placed"
	EventTypeBetSettled    EventType = "bet_settled"
	EventTypeGameCompleted EventType = "game_completed"
	EventTypeGameCancelled EventType = "game_cancelled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	PlayerID        uuid.UUID
	OldBalance      decimal.Decimal
	NewBalance      decimal.Decimal
	TransactionType models.TransactionType
	ChangeAmount    decimal.Decimal
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BetPlacedEvent represents a bet that was placed
type BetPlacedEvent struct {
	BetID    uuid.UUID
	PlayerID uuid.UUID
	GameID   uuid.UUID
	BetType  models.BetType
	Amount   decimal.Decimal
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetSettledEvent represents a bet resolved by settlement
type BetSettledEvent struct {
	BetID     uuid.UUID
	PlayerID  uuid.UUID
	GameID    uuid.UUID
	Status    models.BetStatus
	WinAmount decimal.Decimal
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
}

// GameCompletedEvent represents a game whose numbers have been drawn
type GameCompletedEvent struct {
	GameID       uuid.UUID
	GameNumber   string
	DrawnNumbers []int
	TotalSum     int
	SizeResult   models.SizeResult
}

func (e GameCompletedEvent) Type() EventType {
	return EventTypeGameCompleted
}

// GameCancelledEvent represents a cancelled game with refunded bets
type GameCancelledEvent struct {
	GameID       uuid.UUID
	GameNumber   string
	RefundedBets int
}

func (e GameCancelledEvent) Type() EventType {
	return EventTypeGameCancelled
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit. Events are emitted on a
// background context so they outlive the transaction's context.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after db rollback to drop pending events.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
