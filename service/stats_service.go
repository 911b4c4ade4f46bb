package service

import (
	"context"
	"fmt"

	"bingo/models"
)

type statsService struct {
	history DrawHistorySource
}

// NewStatsService creates a stats service over a draw history source
func NewStatsService(history DrawHistorySource) StatsService {
	return &statsService{history: history}
}

func (s *statsService) NumberFrequency(ctx context.Context, lastN int) (map[int]int, error) {
	results, err := s.fetch(ctx, lastN)
	if err != nil {
		return nil, err
	}
	freq := make(map[int]int, 6)
	for face := 1; face <= 6; face++ {
		freq[face] = 0
	}
	for _, r := range results {
		for _, n := range r.DrawnNumbers {
			freq[n]++
		}
	}
	return freq, nil
}

func (s *statsService) SizeDistribution(ctx context.Context, lastN int) (map[models.SizeResult]int, error) {
	results, err := s.fetch(ctx, lastN)
	if err != nil {
		return nil, err
	}
	dist := map[models.SizeResult]int{
		models.SizeSmall: 0,
		models.SizeTie:   0,
		models.SizeLarge: 0,
	}
	for _, r := range results {
		dist[r.SizeResult]++
	}
	return dist, nil
}

func (s *statsService) fetch(ctx context.Context, lastN int) ([]*models.GameResult, error) {
	if lastN <= 0 {
		return nil, models.NewValidationError("lastN must be positive, got %d", lastN)
	}
	results, err := s.history.FetchRecent(ctx, lastN)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draw history: %w", err)
	}
	return results, nil
}

// resultHistorySource adapts the unit-of-work repositories to the read-only
// DrawHistorySource port.
type resultHistorySource struct {
	uowFactory UnitOfWorkFactory
}

// NewDrawHistorySource creates a DrawHistorySource backed by stored game
// results
func NewDrawHistorySource(uowFactory UnitOfWorkFactory) DrawHistorySource {
	return &resultHistorySource{uowFactory: uowFactory}
}

func (s *resultHistorySource) FetchRecent(ctx context.Context, n int) ([]*models.GameResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	results, err := uow.GameResultRepository().GetRecent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent results: %w", err)
	}
	return results, nil
}
