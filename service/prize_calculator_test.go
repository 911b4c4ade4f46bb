package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bingo/models"
)

func TestPrizeCalculator_SingleNumber(t *testing.T) {
	calc := NewPrizeCalculator(models.SizeBandingWideTie)

	tests := []struct {
		name   string
		number int
		drawn  []int
		win    bool
	}{
		{"number appears once", 4, []int{1, 4, 6}, true},
		{"number appears twice", 2, []int{2, 2, 5}, true},
		{"number absent", 3, []int{1, 4, 6}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Evaluate(models.SingleNumberSelection{Number: tt.number}, tt.drawn)
			require.NoError(t, err)
			assert.Equal(t, tt.win, result.Win)
			if tt.win {
				assert.True(t, result.Multiplier.Equal(decimal.RequireFromString("1.95")))
			}
		})
	}
}

func TestPrizeCalculator_MatchingNumbers(t *testing.T) {
	calc := NewPrizeCalculator(models.SizeBandingWideTie)

	tests := []struct {
		name       string
		picks      [3]int
		drawn      []int
		win        bool
		matches    int
		multiplier string
	}{
		{"all three match", [3]int{1, 3, 5}, []int{5, 1, 3}, true, 3, "210"},
		{"two of three match", [3]int{1, 3, 5}, []int{1, 3, 6}, true, 2, "3.5"},
		{"one match loses", [3]int{1, 3, 5}, []int{1, 2, 6}, false, 1, ""},
		{"no match loses", [3]int{1, 3, 5}, []int{2, 4, 6}, false, 0, ""},
		// Membership is against the drawn set: a pick matches if it
		// appears anywhere, regardless of duplicates in the draw.
		{"duplicate draw counts each pick once", [3]int{2, 2, 5}, []int{2, 5, 5}, true, 3, "210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Evaluate(models.MatchingNumbersSelection{Numbers: tt.picks}, tt.drawn)
			require.NoError(t, err)
			assert.Equal(t, tt.win, result.Win)
			assert.Equal(t, tt.matches, result.Matches)
			if tt.win {
				assert.True(t, result.Multiplier.Equal(decimal.RequireFromString(tt.multiplier)))
			}
		})
	}
}

func TestPrizeCalculator_TotalSum(t *testing.T) {
	calc := NewPrizeCalculator(models.SizeBandingWideTie)

	tests := []struct {
		name       string
		sum        int
		drawn      []int
		win        bool
		multiplier string
	}{
		{"minimum sum pays extreme", 3, []int{1, 1, 1}, true, "210"},
		{"maximum sum pays extreme", 18, []int{6, 6, 6}, true, "210"},
		{"sum 4 pays rare", 4, []int{1, 1, 2}, true, "70"},
		{"sum 17 pays rare", 17, []int{6, 6, 5}, true, "70"},
		{"sum 5 pays uncommon", 5, []int{1, 2, 2}, true, "35"},
		{"sum 16 pays uncommon", 16, []int{4, 6, 6}, true, "35"},
		{"middle sum pays base", 10, []int{2, 3, 5}, true, "1.95"},
		{"wrong sum loses", 12, []int{2, 3, 5}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Evaluate(models.TotalSumSelection{Sum: tt.sum}, tt.drawn)
			require.NoError(t, err)
			assert.Equal(t, tt.win, result.Win)
			if tt.win {
				assert.True(t, result.Multiplier.Equal(decimal.RequireFromString(tt.multiplier)),
					"expected multiplier %s, got %s", tt.multiplier, result.Multiplier)
			}
		})
	}
}

func TestPrizeCalculator_Size(t *testing.T) {
	tests := []struct {
		name    string
		banding models.SizeBanding
		pick    models.SizeResult
		drawn   []int
		win     bool
	}{
		{"small wins below tie band", models.SizeBandingWideTie, models.SizeSmall, []int{1, 2, 3}, true},
		{"sum 9 is small", models.SizeBandingWideTie, models.SizeSmall, []int{2, 3, 4}, true},
		{"sum 10 is tie under wide band", models.SizeBandingWideTie, models.SizeTie, []int{2, 3, 5}, true},
		{"sum 11 is tie under wide band", models.SizeBandingWideTie, models.SizeTie, []int{3, 3, 5}, true},
		{"sum 12 is large", models.SizeBandingWideTie, models.SizeLarge, []int{4, 4, 4}, true},
		{"small pick loses on tie", models.SizeBandingWideTie, models.SizeSmall, []int{2, 3, 5}, false},

		{"sum 10 is small under narrow band", models.SizeBandingNarrowTie, models.SizeSmall, []int{2, 3, 5}, true},
		{"sum 11 is tie under narrow band", models.SizeBandingNarrowTie, models.SizeTie, []int{3, 3, 5}, true},
		{"sum 12 is large under narrow band", models.SizeBandingNarrowTie, models.SizeLarge, []int{4, 4, 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewPrizeCalculator(tt.banding)
			result, err := calc.Evaluate(models.SizeSelection{Size: tt.pick}, tt.drawn)
			require.NoError(t, err)
			assert.Equal(t, tt.win, result.Win)
		})
	}
}

func TestPrizeCalculator_RejectsBadInput(t *testing.T) {
	calc := NewPrizeCalculator(models.SizeBandingWideTie)

	t.Run("wrong draw length", func(t *testing.T) {
		_, err := calc.Evaluate(models.SingleNumberSelection{Number: 1}, []int{1, 2})
		assert.True(t, models.IsValidationError(err))
	})

	t.Run("drawn number out of range", func(t *testing.T) {
		_, err := calc.Evaluate(models.SingleNumberSelection{Number: 1}, []int{1, 2, 7})
		assert.True(t, models.IsValidationError(err))
	})

	t.Run("invalid selection", func(t *testing.T) {
		_, err := calc.Evaluate(models.SingleNumberSelection{Number: 9}, []int{1, 2, 3})
		assert.True(t, models.IsValidationError(err))
	})
}

func TestPrizeCalculator_PotentialWin(t *testing.T) {
	calc := NewPrizeCalculator(models.SizeBandingWideTie)
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name     string
		sel      models.Selection
		expected string
	}{
		{"single number", models.SingleNumberSelection{Number: 3}, "195"},
		{"matching numbers assumes full match", models.MatchingNumbersSelection{Numbers: [3]int{1, 2, 3}}, "21000"},
		{"total sum extreme", models.TotalSumSelection{Sum: 18}, "21000"},
		{"total sum middle", models.TotalSumSelection{Sum: 10}, "195"},
		{"size", models.SizeSelection{Size: models.SizeLarge}, "195"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win, err := calc.PotentialWin(tt.sel, amount)
			require.NoError(t, err)
			assert.True(t, win.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, win)
		})
	}
}
