package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bingo/models"
)

// stubHistory serves a fixed slice of results.
type stubHistory struct {
	results []*models.GameResult
}

func (s *stubHistory) FetchRecent(ctx context.Context, n int) ([]*models.GameResult, error) {
	if n < len(s.results) {
		return s.results[:n], nil
	}
	return s.results, nil
}

func historyOf(draws ...[3]int) *stubHistory {
	h := &stubHistory{}
	for _, d := range draws {
		sum := d[0] + d[1] + d[2]
		size, _ := models.SizeBandingWideTie.Classify(sum)
		h.results = append(h.results, &models.GameResult{
			ID:           uuid.New(),
			GameID:       uuid.New(),
			DrawnNumbers: d[:],
			TotalSum:     sum,
			SizeResult:   size,
		})
	}
	return h
}

func TestStatsService_NumberFrequency(t *testing.T) {
	ctx := context.Background()
	service := NewStatsService(historyOf(
		[3]int{1, 4, 6},
		[3]int{4, 4, 2},
		[3]int{6, 6, 6},
	))

	freq, err := service.NumberFrequency(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 0, 4: 3, 5: 0, 6: 4}, freq)
}

func TestStatsService_SizeDistribution(t *testing.T) {
	ctx := context.Background()
	service := NewStatsService(historyOf(
		[3]int{1, 2, 3}, // 6, small
		[3]int{2, 3, 5}, // 10, tie
		[3]int{6, 6, 6}, // 18, large
		[3]int{5, 6, 6}, // 17, large
	))

	dist, err := service.SizeDistribution(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, map[models.SizeResult]int{
		models.SizeSmall: 1,
		models.SizeTie:   1,
		models.SizeLarge: 2,
	}, dist)
}

func TestStatsService_RejectsNonPositiveWindow(t *testing.T) {
	service := NewStatsService(historyOf())

	_, err := service.NumberFrequency(context.Background(), 0)
	assert.True(t, models.IsValidationError(err))

	_, err = service.SizeDistribution(context.Background(), -1)
	assert.True(t, models.IsValidationError(err))
}
