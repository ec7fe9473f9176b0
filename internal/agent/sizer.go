package agent

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Side is the direction of a paper position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
	SideClose Side = "CLOSE"
)

// ParseSide accepts any casing; unknown values are an error.
func ParseSide(raw string) (Side, error) {
	switch s := Side(strings.ToUpper(strings.TrimSpace(raw))); s {
	case SideLong, SideShort, SideClose:
		return s, nil
	default:
		return "", fmt.Errorf("unknown side %q", raw)
	}
}

// Choice is the ternary action picked for one symbol per cycle.
type Choice int

const (
	ChoiceIncrease Choice = iota
	ChoiceDecrease
	ChoiceClose
)

func (c Choice) String() string {
	switch c {
	case ChoiceIncrease:
		return "increase_position"
	case ChoiceDecrease:
		return "decrease_position"
	case ChoiceClose:
		return "close_position"
	default:
		return "unknown"
	}
}

// PositionState is the current paper position of one symbol. Size may
// arrive signed.
type PositionState struct {
	Symbol string
	Size   float64
	Side   Side
}

// SizingDecision is the order to submit next.
type SizingDecision struct {
	Size float64
	Side Side
}

const sizePlaces = 8

// NextSizeAndSide maps the current position and an action to the next
// position. A decrease below zero is not clamped: its magnitude becomes the
// next size and the side follows the rules below.
func NextSizeAndSide(state PositionState, tradeUnit float64, choice Choice) SizingDecision {
	current := math.Abs(state.Size)

	var raw decimal.Decimal
	switch choice {
	case ChoiceIncrease:
		raw = round8(current + tradeUnit)
	case ChoiceDecrease:
		raw = round8(current - tradeUnit)
	default:
		raw = decimal.Zero
	}

	var side Side
	switch {
	case raw.IsZero():
		side = SideClose
	case state.Side == SideClose || state.Size == 0:
		if raw.IsPositive() {
			side = SideLong
		} else {
			side = SideShort
		}
	default:
		side = state.Side
	}
	size, _ := raw.Abs().Float64()
	return SizingDecision{Size: size, Side: side}
}

// round8 rounds the exact binary value of v to 8 places, ties to even.
// strconv formats from the exact value, so 1.5e-08 (stored just below the
// tie) rounds down.
func round8(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', sizePlaces, 64))
	if err != nil {
		return decimal.Zero
	}
	return d
}
