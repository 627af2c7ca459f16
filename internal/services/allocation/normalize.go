package allocation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places percentages are rounded to.
const Precision = 2

var hundred = decimal.NewFromInt(100)

// ErrInvalidInput is matched by every error Normalize returns.
var ErrInvalidInput = errors.New("invalid allocation input")

// InvalidInputError describes why a set of weights cannot be normalized.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Weight is an identifier with a raw or normalized percentage.
type Weight struct {
	ID      string
	Percent decimal.Decimal
}

// Normalize scales weights so that, after rounding each to two decimal places
// (half away from zero), they sum to exactly 100.00. Any rounding residual is
// added to the first weight. Inputs already summing to 100 are only rounded
// before the residual step. The input slice is not modified. If a negative
// residual would push the first weight below zero the input is rejected.
func Normalize(weights []Weight) ([]Weight, error) {
	if len(weights) == 0 {
		return nil, &InvalidInputError{Reason: "no weights"}
	}

	sum := decimal.Zero
	for i, w := range weights {
		if w.ID == "" {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("weight %d has no identifier", i)}
		}
		if w.Percent.IsNegative() {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("weight %q is negative", w.ID)}
		}
		sum = sum.Add(w.Percent)
	}
	if !sum.IsPositive() {
		return nil, &InvalidInputError{Reason: "weights sum to zero"}
	}

	out := make([]Weight, len(weights))
	total := decimal.Zero
	for i, w := range weights {
		p := w.Percent
		if !sum.Equal(hundred) {
			p = p.Mul(hundred).Div(sum)
		}
		p = p.Round(Precision)
		out[i] = Weight{ID: w.ID, Percent: p}
		total = total.Add(p)
	}

	if residual := hundred.Sub(total); !residual.IsZero() {
		out[0].Percent = out[0].Percent.Add(residual)
		if out[0].Percent.IsNegative() {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("rounding residual drives weight %q negative", out[0].ID)}
		}
	}
	return out, nil
}

// Sum adds the percentages of weights.
func Sum(weights []Weight) decimal.Decimal {
	total := decimal.Zero
	for _, w := range weights {
		total = total.Add(w.Percent)
	}
	return total
}

func weightsOf(entries []Entry) []Weight {
	ws := make([]Weight, len(entries))
	for i, e := range entries {
		ws[i] = Weight{ID: e.Ticker, Percent: e.Percent}
	}
	return ws
}
