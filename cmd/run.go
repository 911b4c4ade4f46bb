package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"bingo/config"
	"bingo/database"
	"bingo/events"
	"bingo/repository"
	"bingo/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	setupLogging(cfg)

	log.Info("Starting bingo settlement engine...")

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	eventBus := events.NewBus()
	subscribeEventLoggers(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	calculator := service.NewPrizeCalculator(cfg.SizeBanding())
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	settlementService := service.NewSettlementService(uowFactory, calculator)
	gameService := service.NewGameService(uowFactory, settlementService, rng, cfg.SizeBanding())
	log.Info("Services initialized")

	// Draw loop: poll for scheduled games past their draw time and settle
	// them. Bet placement and ledger operations are driven by callers of
	// the service layer, not by this process.
	go runDrawLoop(ctx, gameService, cfg.DrawPollInterval)

	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Metrics server failed")
		}
	}()
	log.WithField("addr", cfg.MetricsAddr).Info("Metrics exporter listening")

	log.WithField("environment", cfg.Environment).Info("Engine is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Metrics server shutdown failed")
	}

	db.Close()
	log.Info("Shutdown completed")

	return nil
}

func runDrawLoop(ctx context.Context, gameService service.GameService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := gameService.DrawDueGames(ctx); err != nil {
				log.WithError(err).Error("Draw loop iteration failed")
			}
		}
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.DebugLevel)
	}
}

// subscribeEventLoggers attaches an audit log line to every domain event.
func subscribeEventLoggers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.BalanceChangeEvent); ok {
			log.WithFields(log.Fields{
				"playerId":   ev.PlayerID,
				"type":       ev.TransactionType,
				"amount":     ev.ChangeAmount,
				"newBalance": ev.NewBalance,
			}).Info("Balance changed")
		}
	})
	bus.Subscribe(events.EventTypeBetPlaced, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.BetPlacedEvent); ok {
			log.WithFields(log.Fields{
				"betId":    ev.BetID,
				"playerId": ev.PlayerID,
				"gameId":   ev.GameID,
				"betType":  ev.BetType,
				"amount":   ev.Amount,
			}).Info("Bet placed")
		}
	})
	bus.Subscribe(events.EventTypeBetSettled, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.BetSettledEvent); ok {
			log.WithFields(log.Fields{
				"betId":     ev.BetID,
				"playerId":  ev.PlayerID,
				"status":    ev.Status,
				"winAmount": ev.WinAmount,
			}).Info("Bet settled")
		}
	})
	bus.Subscribe(events.EventTypeGameCompleted, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.GameCompletedEvent); ok {
			log.WithFields(log.Fields{
				"gameId":   ev.GameID,
				"drawn":    ev.DrawnNumbers,
				"totalSum": ev.TotalSum,
				"size":     ev.SizeResult,
			}).Info("Game completed")
		}
	})
	bus.Subscribe(events.EventTypeGameCancelled, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.GameCancelledEvent); ok {
			log.WithFields(log.Fields{
				"gameId":       ev.GameID,
				"refundedBets": ev.RefundedBets,
			}).Info("Game cancelled")
		}
	})
}
