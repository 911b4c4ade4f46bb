package models

import (
	"encoding/json"
	"fmt"
)

// Selection is the tagged variant of a bet's pick. Each bet type carries a
// differently shaped selection; parsing dispatches on the bet type once at
// the boundary so the rest of the engine never inspects raw JSON.
type Selection interface {
	BetType() BetType
	Validate() error
}

// SingleNumberSelection bets that one number in [1,6] appears in the draw.
type SingleNumberSelection struct {
	Number int
}

func (s SingleNumberSelection) BetType() BetType { return BetTypeSingleNumber }

func (s SingleNumberSelection) Validate() error {
	if s.Number < 1 || s.Number > 6 {
		return NewValidationError("single number must be in [1,6], got %d", s.Number)
	}
	return nil
}

// MatchingNumbersSelection bets that at least 2 of 3 picked numbers are
// among the drawn numbers.
type MatchingNumbersSelection struct {
	Numbers [3]int
}

func (s MatchingNumbersSelection) BetType() BetType { return BetTypeMatchingNumbers }

func (s MatchingNumbersSelection) Validate() error {
	for _, n := range s.Numbers {
		if n < 1 || n > 6 {
			return NewValidationError("matching numbers must each be in [1,6], got %d", n)
		}
	}
	return nil
}

// TotalSumSelection bets on the exact sum of the three drawn numbers.
type TotalSumSelection struct {
	Sum int
}

func (s TotalSumSelection) BetType() BetType { return BetTypeTotalSum }

func (s TotalSumSelection) Validate() error {
	if s.Sum < 3 || s.Sum > 18 {
		return NewValidationError("total sum must be in [3,18], got %d", s.Sum)
	}
	return nil
}

// SizeSelection bets on the size band of the total sum.
type SizeSelection struct {
	Size SizeResult
}

func (s SizeSelection) BetType() BetType { return BetTypeSize }

func (s SizeSelection) Validate() error {
	switch s.Size {
	case SizeSmall, SizeTie, SizeLarge:
		return nil
	}
	return NewValidationError("size must be one of small/tie/large, got %q", string(s.Size))
}

// MarshalSelection encodes a selection as its wire value: a bare number for
// single-number and total-sum bets, a 3-element array for matching numbers,
// and a string for size bets.
func MarshalSelection(sel Selection) ([]byte, error) {
	switch s := sel.(type) {
	case SingleNumberSelection:
		return json.Marshal(s.Number)
	case MatchingNumbersSelection:
		return json.Marshal(s.Numbers[:])
	case TotalSumSelection:
		return json.Marshal(s.Sum)
	case SizeSelection:
		return json.Marshal(string(s.Size))
	}
	return nil, fmt.Errorf("unknown selection type %T", sel)
}

// ParseSelection decodes the wire value for the given bet type and validates
// its shape and range. Malformed input yields a ValidationError.
func ParseSelection(betType BetType, raw []byte) (Selection, error) {
	var sel Selection
	switch betType {
	case BetTypeSingleNumber:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, NewValidationError("single number selection must be an integer: %v", err)
		}
		sel = SingleNumberSelection{Number: n}
	case BetTypeMatchingNumbers:
		var ns []int
		if err := json.Unmarshal(raw, &ns); err != nil {
			return nil, NewValidationError("matching numbers selection must be an integer array: %v", err)
		}
		if len(ns) != 3 {
			return nil, NewValidationError("matching numbers selection must have exactly 3 numbers, got %d", len(ns))
		}
		sel = MatchingNumbersSelection{Numbers: [3]int{ns[0], ns[1], ns[2]}}
	case BetTypeTotalSum:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, NewValidationError("total sum selection must be an integer: %v", err)
		}
		sel = TotalSumSelection{Sum: n}
	case BetTypeSize:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, NewValidationError("size selection must be a string: %v", err)
		}
		sel = SizeSelection{Size: SizeResult(s)}
	default:
		return nil, NewValidationError("unknown bet type %q", string(betType))
	}

	if err := sel.Validate(); err != nil {
		return nil, err
	}
	return sel, nil
}
