// Package signals computes summary indicators over daily price bars
package signals

import (
	"math"

	"github.com/abriltello/portafolioAI/internal/models"
)

// Trend classifications.
const (
	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendNeutral = "neutral"
)

// tradingDays annualises daily volatility.
const tradingDays = 252

// Indicator periods.
const (
	ShortPeriod = 20
	LongPeriod  = 50
	RSIPeriod   = 14
	ATRPeriod   = 14
)

// All functions take bars oldest first, the order PriceHistory carries them in.

// SMA returns the simple moving average of the last period closes, or 0 when
// there are fewer bars than period.
func SMA(bars []models.PriceBar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}
	sum := 0.0
	for _, b := range bars[len(bars)-period:] {
		sum += b.Close
	}
	return sum / float64(period)
}

// EMA returns the exponential moving average seeded with the SMA of the first
// period closes.
func EMA(bars []models.PriceBar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}
	multiplier := 2.0 / float64(period+1)
	ema := SMA(bars[:period], period)
	for _, b := range bars[period:] {
		ema = (b.Close-ema)*multiplier + ema
	}
	return ema
}

// RSI returns the relative strength index over the last period changes.
// Fewer than period+1 bars yields the neutral 50.
func RSI(bars []models.PriceBar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 50
	}
	var gains, losses float64
	window := bars[len(bars)-period-1:]
	for i := 1; i < len(window); i++ {
		change := window[i].Close - window[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	if losses == 0 {
		if gains == 0 {
			return 50
		}
		return 100
	}
	rs := gains / losses
	return 100 - (100 / (1 + rs))
}

// ATR returns the average true range over the last period bars.
func ATR(bars []models.PriceBar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 0
	}
	window := bars[len(bars)-period-1:]
	sum := 0.0
	for i := 1; i < len(window); i++ {
		high, low, prevClose := window[i].High, window[i].Low, window[i-1].Close
		sum += math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
	}
	return sum / float64(period)
}

// Volatility returns the annualised standard deviation of daily close-to-close
// returns as a percentage.
func Volatility(bars []models.PriceBar) float64 {
	if len(bars) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		if bars[i-1].Close == 0 {
			continue
		}
		returns = append(returns, bars[i].Close/bars[i-1].Close-1)
	}
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance) * math.Sqrt(tradingDays) * 100
}

// HighLow returns the highest high and lowest low of the series.
func HighLow(bars []models.PriceBar) (high, low float64) {
	if len(bars) == 0 {
		return 0, 0
	}
	high, low = bars[0].High, bars[0].Low
	for _, b := range bars[1:] {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	return high, low
}

// ClassifyRSI labels an RSI value.
func ClassifyRSI(rsi float64) string {
	switch {
	case rsi >= 70:
		return "overbought"
	case rsi <= 30:
		return "oversold"
	}
	return "neutral"
}

// DetermineTrend is bullish when price is above the long average and the short
// average leads it, bearish for the mirror case. Missing averages are neutral.
func DetermineTrend(price, short, long float64) string {
	if short == 0 || long == 0 {
		return TrendNeutral
	}
	if price > long && short > long {
		return TrendBullish
	}
	if price < long && short < long {
		return TrendBearish
	}
	return TrendNeutral
}

// Compute summarises a series. It returns nil for an empty series.
func Compute(bars []models.PriceBar) *models.Indicators {
	if len(bars) == 0 {
		return nil
	}
	first, last := bars[0].Close, bars[len(bars)-1].Close

	ind := &models.Indicators{
		LastClose:  round2(last),
		SMAShort:   round2(SMA(bars, ShortPeriod)),
		SMALong:    round2(SMA(bars, LongPeriod)),
		EMAShort:   round2(EMA(bars, ShortPeriod)),
		RSI:        round2(RSI(bars, RSIPeriod)),
		ATR:        round2(ATR(bars, ATRPeriod)),
		Volatility: round2(Volatility(bars)),
	}
	if first != 0 {
		ind.ReturnPct = round2((last/first - 1) * 100)
	}
	high, low := HighLow(bars)
	ind.PeriodHigh, ind.PeriodLow = round2(high), round2(low)
	ind.RSISignal = ClassifyRSI(ind.RSI)
	ind.Trend = DetermineTrend(last, SMA(bars, ShortPeriod), SMA(bars, LongPeriod))
	return ind
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
