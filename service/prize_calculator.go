package service

import (
	"github.com/shopspring/decimal"

	"bingo/models"
)

// Payout multipliers. TotalSum pays by rarity of the sum; MatchingNumbers
// pays by the number of matched picks.
var (
	multBase        = decimal.RequireFromString("1.95")
	multTwoMatches  = decimal.RequireFromString("3.5")
	multThreeMatch  = decimal.RequireFromString("210")
	multSumExtreme  = decimal.RequireFromString("210") // sum 3 or 18
	multSumRare     = decimal.RequireFromString("70")  // sum 4 or 17
	multSumUncommon = decimal.RequireFromString("35")  // sum 5 or 16
)

// PrizeResult is the outcome of evaluating one bet against a draw.
type PrizeResult struct {
	Win        bool
	Multiplier decimal.Decimal
	// Matches is the matched-pick count for matching-numbers bets, 0 otherwise.
	Matches int
}

// PrizeCalculator evaluates bets against drawn numbers. It is stateless and
// pure; the only knob is which size banding is in force.
type PrizeCalculator struct {
	banding models.SizeBanding
}

// NewPrizeCalculator creates a prize calculator using the given size banding.
func NewPrizeCalculator(banding models.SizeBanding) *PrizeCalculator {
	return &PrizeCalculator{banding: banding}
}

// Evaluate returns win/lose and the payout multiplier for a selection
// against the three drawn numbers.
func (c *PrizeCalculator) Evaluate(sel models.Selection, drawn []int) (PrizeResult, error) {
	if err := validateDrawnNumbers(drawn); err != nil {
		return PrizeResult{}, err
	}
	if err := sel.Validate(); err != nil {
		return PrizeResult{}, err
	}

	switch s := sel.(type) {
	case models.SingleNumberSelection:
		if containsNumber(drawn, s.Number) {
			return PrizeResult{Win: true, Multiplier: multBase}, nil
		}

	case models.MatchingNumbersSelection:
		// Each picked value counts if it appears anywhere in the draw;
		// membership is against the drawn set, not a multiset intersection.
		matches := 0
		for _, n := range s.Numbers {
			if containsNumber(drawn, n) {
				matches++
			}
		}
		switch matches {
		case 3:
			return PrizeResult{Win: true, Multiplier: multThreeMatch, Matches: matches}, nil
		case 2:
			return PrizeResult{Win: true, Multiplier: multTwoMatches, Matches: matches}, nil
		default:
			return PrizeResult{Matches: matches}, nil
		}

	case models.TotalSumSelection:
		if s.Sum == sumOf(drawn) {
			return PrizeResult{Win: true, Multiplier: totalSumMultiplier(s.Sum)}, nil
		}

	case models.SizeSelection:
		size, err := c.banding.Classify(sumOf(drawn))
		if err != nil {
			return PrizeResult{}, err
		}
		if s.Size == size {
			return PrizeResult{Win: true, Multiplier: multBase}, nil
		}

	default:
		return PrizeResult{}, models.NewValidationError("unknown selection type %T", sel)
	}

	return PrizeResult{Multiplier: decimal.Zero}, nil
}

// PotentialWin returns the optimistic pre-draw payout preview: the amount
// times the multiplier of the most favorable winning outcome for the
// selection. It is advisory only and never a guarantee.
func (c *PrizeCalculator) PotentialWin(sel models.Selection, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := sel.Validate(); err != nil {
		return decimal.Zero, err
	}

	var mult decimal.Decimal
	switch s := sel.(type) {
	case models.SingleNumberSelection:
		mult = multBase
	case models.MatchingNumbersSelection:
		mult = multThreeMatch
	case models.TotalSumSelection:
		mult = totalSumMultiplier(s.Sum)
	case models.SizeSelection:
		mult = multBase
	default:
		return decimal.Zero, models.NewValidationError("unknown selection type %T", sel)
	}

	return amount.Mul(mult), nil
}

func totalSumMultiplier(sum int) decimal.Decimal {
	switch sum {
	case 3, 18:
		return multSumExtreme
	case 4, 17:
		return multSumRare
	case 5, 16:
		return multSumUncommon
	default:
		return multBase
	}
}

func validateDrawnNumbers(drawn []int) error {
	if len(drawn) != 3 {
		return models.NewValidationError("draw must have exactly 3 numbers, got %d", len(drawn))
	}
	for _, n := range drawn {
		if n < 1 || n > 6 {
			return models.NewValidationError("drawn number %d out of range [1,6]", n)
		}
	}
	return nil
}

func containsNumber(drawn []int, n int) bool {
	for _, d := range drawn {
		if d == n {
			return true
		}
	}
	return false
}

func sumOf(drawn []int) int {
	sum := 0
	for _, n := range drawn {
		sum += n
	}
	return sum
}
