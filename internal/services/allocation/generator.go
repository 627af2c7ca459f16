package allocation

import "github.com/shopspring/decimal"

// Profile carries the fields of a user's risk profile the generator reads.
type Profile struct {
	RiskLevel       string
	InvestmentGoal  string
	ExperienceLevel string
	Country         string
}

// Preferences are optional user preferences. Amount is accepted for forward
// compatibility and does not influence the allocation.
type Preferences struct {
	Amount *decimal.Decimal
}

// AssetAllocation is one asset of a generated portfolio.
type AssetAllocation struct {
	Ticker  string
	Name    string
	Percent decimal.Decimal
	Reason  string
}

// Portfolio is the output of Generate. Asset order follows the table.
type Portfolio struct {
	Tier    Tier
	Assets  []AssetAllocation
	Metrics Metrics
}

// Total returns the sum of all asset percentages.
func (p Portfolio) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Assets {
		total = total.Add(a.Percent)
	}
	return total
}

// Generate builds a portfolio for a profile. It is deterministic and never
// fails: unknown or missing risk levels fall back to DefaultTier, and every
// tier in the table is verified to normalize when the package loads.
func Generate(profile Profile, _ Preferences) Portfolio {
	tier := ResolveTier(profile.RiskLevel)
	ta, ok := Lookup(tier)
	if !ok {
		panic("allocation: resolved tier " + string(tier) + " missing from table")
	}

	weights, err := Normalize(weightsOf(ta.Entries))
	if err != nil {
		panic("allocation: " + err.Error())
	}

	assets := make([]AssetAllocation, len(weights))
	for i, w := range weights {
		info := catalog[w.ID]
		assets[i] = AssetAllocation{
			Ticker:  w.ID,
			Name:    info.Name,
			Percent: w.Percent,
			Reason:  info.Reason,
		}
	}

	return Portfolio{
		Tier:    tier,
		Assets:  assets,
		Metrics: ta.Metrics,
	}
}
