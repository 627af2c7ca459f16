package models

import "time"

// StockQuote is a point-in-time quote returned to clients. When the provider
// fails for a ticker, numeric fields are zero and Error carries the reason.
type StockQuote struct {
	Ticker             string    `json:"ticker"`
	Name               string    `json:"name"`
	CurrentPrice       float64   `json:"current_price"`
	PreviousClose      float64   `json:"previous_close"`
	PriceChange        float64   `json:"price_change"`
	PriceChangePercent float64   `json:"price_change_percent"`
	Currency           string    `json:"currency"`
	Open               float64   `json:"open"`
	DayHigh            float64   `json:"day_high"`
	DayLow             float64   `json:"day_low"`
	Volume             int64     `json:"volume"`
	Timestamp          time.Time `json:"timestamp,omitempty"`
	Error              string    `json:"error,omitempty"`
}

// PriceBar is one day of historical prices.
type PriceBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Indicators summarise a price history. Averages need enough bars and are
// omitted otherwise.
type Indicators struct {
	LastClose  float64 `json:"last_close"`
	ReturnPct  float64 `json:"return_pct"`
	SMAShort   float64 `json:"sma_20,omitempty"`
	SMALong    float64 `json:"sma_50,omitempty"`
	EMAShort   float64 `json:"ema_20,omitempty"`
	RSI        float64 `json:"rsi_14"`
	RSISignal  string  `json:"rsi_signal"`
	ATR        float64 `json:"atr_14,omitempty"`
	Volatility float64 `json:"volatility_pct"`
	PeriodHigh float64 `json:"period_high"`
	PeriodLow  float64 `json:"period_low"`
	Trend      string  `json:"trend"`
}

// PriceHistory is the historical series for a ticker over a named period.
type PriceHistory struct {
	Ticker     string      `json:"ticker"`
	Period     string      `json:"period"`
	Data       []PriceBar  `json:"data"`
	Indicators *Indicators `json:"indicators,omitempty"`
}

// RealTimeQuote is the raw quote returned by the market data provider.
type RealTimeQuote struct {
	Code          string
	Open          float64
	High          float64
	Low           float64
	Close         float64
	PreviousClose float64
	Change        float64
	ChangePercent float64
	Volume        int64
	Timestamp     time.Time
}

// EODBar is one end-of-day bar from the market data provider.
type EODBar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}
