// Package market serves stock quotes and price history from the market data provider
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/metrics"
	"github.com/abriltello/portafolioAI/internal/models"
	"github.com/abriltello/portafolioAI/internal/services/allocation"
	"github.com/abriltello/portafolioAI/internal/signals"
)

// MaxTickers is the largest batch accepted by GetQuotes.
const MaxTickers = 50

// DefaultPeriod is used when no history period is given.
const DefaultPeriod = "1y"

var (
	ErrNoTickers      = errors.New("at least one ticker is required")
	ErrTooManyTickers = fmt.Errorf("at most %d tickers per request", MaxTickers)
	ErrInvalidPeriod  = errors.New("invalid period")
	ErrNoData         = errors.New("no data found")
	ErrNotConfigured  = errors.New("market data provider not configured")
)

// Periods lists the accepted history periods in display order.
var Periods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// Compile-time interface check
var _ interfaces.MarketService = (*Service)(nil)

// Service implements MarketService
type Service struct {
	client   interfaces.MarketDataClient
	cache    interfaces.Cache
	cacheTTL time.Duration
	breaker  *gobreaker.CircuitBreaker
	metrics  *metrics.Registry
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates a market service. client and cache may be nil.
func NewService(client interfaces.MarketDataClient, cache interfaces.Cache, cacheTTL time.Duration, registry *metrics.Registry, logger *common.Logger) *Service {
	return &Service{
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
		breaker:  newBreaker("market-data", logger),
		metrics:  registry,
		logger:   logger,
		now:      time.Now,
	}
}

// NormalizeTickers trims, upper-cases and de-duplicates tickers keeping first-seen order.
func NormalizeTickers(tickers []string) ([]string, error) {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, ErrNoTickers
	}
	if len(out) > MaxTickers {
		return nil, ErrTooManyTickers
	}
	return out, nil
}

// GetQuotes returns one quote per distinct ticker. Provider failures are
// reported per ticker and never fail the batch.
func (s *Service) GetQuotes(ctx context.Context, tickers []string) ([]models.StockQuote, error) {
	normalized, err := NormalizeTickers(tickers)
	if err != nil {
		return nil, err
	}

	quotes := make([]models.StockQuote, 0, len(normalized))
	for _, ticker := range normalized {
		q, err := s.quote(ctx, ticker)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Quote unavailable, returning fallback")
			quotes = append(quotes, fallbackQuote(ticker, err))
			continue
		}
		quotes = append(quotes, *q)
	}
	return quotes, nil
}

// GetQuote returns a single quote. ErrNoData when the provider has nothing for the ticker.
func (s *Service) GetQuote(ctx context.Context, ticker string) (*models.StockQuote, error) {
	normalized, err := NormalizeTickers([]string{ticker})
	if err != nil {
		return nil, err
	}
	return s.quote(ctx, normalized[0])
}

func fallbackQuote(ticker string, err error) models.StockQuote {
	msg := err.Error()
	if errors.Is(err, ErrNoData) {
		msg = "no data found"
	}
	return models.StockQuote{
		Ticker:   ticker,
		Name:     ticker,
		Currency: "USD",
		Error:    msg,
	}
}

func (s *Service) quote(ctx context.Context, ticker string) (*models.StockQuote, error) {
	if s.client == nil {
		return nil, ErrNotConfigured
	}

	key := "quote:" + ticker
	var cached models.StockQuote
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.GetRealTimeQuote(ctx, ticker)
	})
	if err != nil {
		if isProviderHealthy(err) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("quote %s: %w", ticker, err)
	}

	raw, _ := result.(*models.RealTimeQuote)
	if raw == nil || raw.Close == 0 {
		return nil, ErrNoData
	}

	q := toStockQuote(ticker, raw)
	s.cacheSet(ctx, key, q)
	return q, nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func toStockQuote(ticker string, raw *models.RealTimeQuote) *models.StockQuote {
	name := ticker
	if info, ok := allocation.Asset(ticker); ok {
		name = info.Name
	}

	change := raw.Change
	if change == 0 && raw.PreviousClose != 0 {
		change = raw.Close - raw.PreviousClose
	}
	changePct := raw.ChangePercent
	if changePct == 0 && raw.PreviousClose > 0 {
		changePct = change / raw.PreviousClose * 100
	}

	return &models.StockQuote{
		Ticker:             ticker,
		Name:               name,
		CurrentPrice:       round2(raw.Close),
		PreviousClose:      round2(raw.PreviousClose),
		PriceChange:        round2(change),
		PriceChangePercent: round2(changePct),
		Currency:           "USD",
		Open:               round2(raw.Open),
		DayHigh:            round2(raw.High),
		DayLow:             round2(raw.Low),
		Volume:             raw.Volume,
		Timestamp:          raw.Timestamp,
	}
}

// ValidPeriod reports whether period is accepted by GetHistory.
func ValidPeriod(period string) bool {
	for _, p := range Periods {
		if p == period {
			return true
		}
	}
	return false
}

// periodWindow returns the date range to request and how many trailing bars to keep (0 = all).
func periodWindow(period string, now time.Time) (from time.Time, keep int) {
	switch period {
	case "1d":
		return now.AddDate(0, 0, -7), 1
	case "5d":
		return now.AddDate(0, 0, -14), 5
	case "1mo":
		return now.AddDate(0, -1, 0), 0
	case "3mo":
		return now.AddDate(0, -3, 0), 0
	case "6mo":
		return now.AddDate(0, -6, 0), 0
	case "1y":
		return now.AddDate(-1, 0, 0), 0
	case "2y":
		return now.AddDate(-2, 0, 0), 0
	case "5y":
		return now.AddDate(-5, 0, 0), 0
	case "10y":
		return now.AddDate(-10, 0, 0), 0
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), 0
	default: // max
		return time.Time{}, 0
	}
}

// GetHistory returns daily bars for ticker over period, oldest first
func (s *Service) GetHistory(ctx context.Context, ticker, period string) (*models.PriceHistory, error) {
	normalized, err := NormalizeTickers([]string{ticker})
	if err != nil {
		return nil, err
	}
	ticker = normalized[0]

	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = DefaultPeriod
	}
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("%w: %s (valid: %s)", ErrInvalidPeriod, period, strings.Join(Periods, ", "))
	}
	if s.client == nil {
		return nil, ErrNotConfigured
	}

	now := s.now().UTC()
	key := fmt.Sprintf("history:%s:%s:%s", ticker, period, now.Format("2006-01-02"))
	var cached models.PriceHistory
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	from, keep := periodWindow(period, now)
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.GetEOD(ctx, ticker, from, now)
	})
	if err != nil {
		if isProviderHealthy(err) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("history %s: %w", ticker, err)
	}

	bars, _ := result.([]models.EODBar)
	if keep > 0 && len(bars) > keep {
		bars = bars[len(bars)-keep:]
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	history := &models.PriceHistory{
		Ticker: ticker,
		Period: period,
		Data:   make([]models.PriceBar, len(bars)),
	}
	for i, b := range bars {
		history.Data[i] = models.PriceBar{
			Date:   b.Date.Format("2006-01-02"),
			Open:   round2(b.Open),
			High:   round2(b.High),
			Low:    round2(b.Low),
			Close:  round2(b.Close),
			Volume: b.Volume,
		}
	}

	history.Indicators = signals.Compute(history.Data)

	s.cacheSet(ctx, key, history)
	return history, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.metrics.CacheResult("error")
		s.logger.Warn().Err(err).Str("key", key).Msg("Quote cache read failed")
		return false
	}
	if !ok {
		s.metrics.CacheResult("miss")
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.metrics.CacheResult("error")
		return false
	}
	s.metrics.CacheResult("hit")
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Quote cache write failed")
	}
}
