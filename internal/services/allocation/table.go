package allocation

import "github.com/shopspring/decimal"

// Metrics are the indicative return and risk figures attached to a tier.
type Metrics struct {
	ExpectedReturn decimal.Decimal
	Risk           decimal.Decimal
}

// Entry is one raw row of the allocation table.
type Entry struct {
	Ticker  string
	Percent decimal.Decimal
}

// TierAllocation is the fixed content of one tier.
type TierAllocation struct {
	Tier    Tier
	Entries []Entry
	Metrics Metrics
}

// AssetInfo describes an instrument the table may allocate to.
type AssetInfo struct {
	Ticker string
	Name   string
	Reason string
}

var catalog = map[string]AssetInfo{
	"TLT":     {"TLT", "iShares 20+ Year Treasury Bond ETF", "Long-term US Treasury bonds."},
	"JNJ":     {"JNJ", "Johnson & Johnson", "Stable pharmaceutical company paying dividends."},
	"MSFT":    {"MSFT", "Microsoft Corporation", "Global technology leader."},
	"EMB":     {"EMB", "iShares J.P. Morgan USD Emerging Markets Bond ETF", "Emerging market sovereign bonds."},
	"VT":      {"VT", "Vanguard Total World Stock ETF", "Diversified global equity coverage."},
	"NVDA":    {"NVDA", "NVIDIA Corporation", "Technology and semiconductors."},
	"BTC-USD": {"BTC-USD", "Bitcoin USD", "Leading cryptocurrency, high volatility."},
	"GLD":     {"GLD", "SPDR Gold Trust", "Physical gold, inflation protection."},
	"AAPL":    {"AAPL", "Apple Inc.", "Innovation and global consumer demand."},
	"GOOGL":   {"GOOGL", "Alphabet Inc.", "Technology and digital advertising."},
	"AMZN":    {"AMZN", "Amazon.com Inc.", "E-commerce and cloud services."},
	"XLF":     {"XLF", "Financial Select Sector SPDR Fund", "US financial sector."},
	"XLE":     {"XLE", "Energy Select Sector SPDR Fund", "US energy sector."},
}

type row struct {
	ticker  string
	percent string
}

func buildTier(t Tier, ret, risk string, rows ...row) TierAllocation {
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = Entry{Ticker: r.ticker, Percent: decimal.RequireFromString(r.percent)}
	}
	return TierAllocation{
		Tier:    t,
		Entries: entries,
		Metrics: Metrics{
			ExpectedReturn: decimal.RequireFromString(ret),
			Risk:           decimal.RequireFromString(risk),
		},
	}
}

// table is built once at package initialisation and never written again.
var table = map[Tier]TierAllocation{
	TierLow: buildTier(TierLow, "0.05", "0.03",
		row{"TLT", "35"}, row{"JNJ", "25"}, row{"MSFT", "15"}, row{"EMB", "15"}, row{"VT", "10"},
	),
	TierMedium: buildTier(TierMedium, "0.10", "0.08",
		row{"TLT", "25"}, row{"JNJ", "15"}, row{"MSFT", "15"}, row{"EMB", "15"}, row{"VT", "10"},
		row{"NVDA", "10"}, row{"BTC-USD", "10"},
	),
	TierHigh: buildTier(TierHigh, "0.18", "0.15",
		row{"TLT", "18"}, row{"JNJ", "15"}, row{"MSFT", "13"}, row{"EMB", "12"}, row{"VT", "10"},
		row{"NVDA", "10"}, row{"BTC-USD", "8"}, row{"GLD", "7"}, row{"AAPL", "4"}, row{"GOOGL", "3"},
	),
}

// Lookup returns the allocation for a known tier. It does not coerce: the
// boolean is false for unknown tiers, and callers resolve raw input with
// ResolveTier first. The returned entries are a copy and may be modified.
func Lookup(t Tier) (TierAllocation, bool) {
	ta, ok := table[t]
	if !ok {
		return TierAllocation{}, false
	}
	entries := make([]Entry, len(ta.Entries))
	copy(entries, ta.Entries)
	ta.Entries = entries
	return ta, true
}

// Asset returns catalog information for a ticker.
func Asset(ticker string) (AssetInfo, bool) {
	a, ok := catalog[ticker]
	return a, ok
}

// Catalog returns every known asset, keyed by ticker.
func Catalog() map[string]AssetInfo {
	out := make(map[string]AssetInfo, len(catalog))
	for k, v := range catalog {
		out[k] = v
	}
	return out
}

func init() {
	for _, t := range Tiers {
		ta := table[t]
		seen := make(map[string]bool, len(ta.Entries))
		for _, e := range ta.Entries {
			if _, ok := catalog[e.Ticker]; !ok {
				panic("allocation: ticker " + e.Ticker + " missing from catalog")
			}
			if seen[e.Ticker] {
				panic("allocation: duplicate ticker " + e.Ticker + " in tier " + string(t))
			}
			seen[e.Ticker] = true
		}
		if _, err := Normalize(weightsOf(ta.Entries)); err != nil {
			panic("allocation: tier " + string(t) + " does not normalize: " + err.Error())
		}
	}
}
