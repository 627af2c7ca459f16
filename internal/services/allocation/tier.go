// Package allocation implements the rule-based portfolio generator: a fixed
// allocation table per risk tier, a normalizer that makes percentages sum to
// exactly 100.00, and a generator that combines the two.
package allocation

import "strings"

// Tier is a coarse user risk classification.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// DefaultTier is used when a profile carries no recognisable risk level.
const DefaultTier = TierMedium

// Tiers lists every tier in ascending order of risk.
var Tiers = []Tier{TierLow, TierMedium, TierHigh}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierLow, TierMedium, TierHigh:
		return true
	}
	return false
}

func (t Tier) String() string { return string(t) }

// ParseTier resolves a raw risk level. Matching is case-insensitive and
// ignores surrounding whitespace. The boolean is false for empty or
// unrecognised input, in which case DefaultTier is returned.
func ParseTier(raw string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(raw)))
	if t.Valid() {
		return t, true
	}
	return DefaultTier, false
}

// ResolveTier is ParseTier without the recognition flag.
func ResolveTier(raw string) Tier {
	t, _ := ParseTier(raw)
	return t
}
