// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" || s == "NA" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	if string(data) == "null" {
		*f = 0
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
	DefaultExchange  = "US"
)

// Client implements interfaces.MarketDataClient against EODHD.
type Client struct {
	baseURL         string
	apiKey          string
	defaultExchange string
	httpClient      *http.Client
	logger          *common.Logger
	limiter         *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithDefaultExchange sets the exchange suffix for bare tickers
func WithDefaultExchange(exchange string) ClientOption {
	return func(c *Client) {
		if exchange != "" {
			c.defaultExchange = strings.ToUpper(exchange)
		}
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:         DefaultBaseURL,
		apiKey:          apiKey,
		defaultExchange: DefaultExchange,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Symbol maps an application ticker to an EODHD symbol. Tickers that already
// carry an exchange suffix are kept, crypto pairs such as BTC-USD go to the
// CC exchange, and bare tickers get the default exchange.
func (c *Client) Symbol(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if strings.Contains(t, ".") {
		return t
	}
	if base, quote, ok := strings.Cut(t, "-"); ok && base != "" && len(quote) >= 3 {
		return t + ".CC"
	}
	return t + "." + c.defaultExchange
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type realTimeResponse struct {
	Code          string      `json:"code"`
	Timestamp     flexFloat64 `json:"timestamp"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	Volume        flexFloat64 `json:"volume"`
	PreviousClose flexFloat64 `json:"previousClose"`
	Change        flexFloat64 `json:"change"`
	ChangePercent flexFloat64 `json:"change_p"`
}

// GetRealTimeQuote retrieves the latest (delayed) quote for a ticker
func (c *Client) GetRealTimeQuote(ctx context.Context, ticker string) (*models.RealTimeQuote, error) {
	path := fmt.Sprintf("/real-time/%s", c.Symbol(ticker))

	var resp realTimeResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Code == "" && resp.Close == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "no quote data", Endpoint: path}
	}

	quote := &models.RealTimeQuote{
		Code:          resp.Code,
		Open:          float64(resp.Open),
		High:          float64(resp.High),
		Low:           float64(resp.Low),
		Close:         float64(resp.Close),
		PreviousClose: float64(resp.PreviousClose),
		Change:        float64(resp.Change),
		ChangePercent: float64(resp.ChangePercent),
		Volume:        int64(resp.Volume),
	}
	if resp.Timestamp > 0 {
		quote.Timestamp = time.Unix(int64(resp.Timestamp), 0)
	}
	return quote, nil
}

type eodBarResponse struct {
	Date          string      `json:"date"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
	Volume        flexFloat64 `json:"volume"`
}

// GetEOD retrieves daily end-of-day bars, oldest first
func (c *Client) GetEOD(ctx context.Context, ticker string, from, to time.Time) ([]models.EODBar, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	if !from.IsZero() {
		params.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("to", to.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s", c.Symbol(ticker))

	var bars []eodBarResponse
	if err := c.get(ctx, path, params, &bars); err != nil {
		return nil, err
	}

	out := make([]models.EODBar, 0, len(bars))
	for _, b := range bars {
		date, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			c.logger.Debug().Str("date", b.Date).Str("ticker", ticker).Msg("Skipping bar with unparseable date")
			continue
		}
		out = append(out, models.EODBar{
			Date:     date,
			Open:     float64(b.Open),
			High:     float64(b.High),
			Low:      float64(b.Low),
			Close:    float64(b.Close),
			AdjClose: float64(b.AdjustedClose),
			Volume:   int64(b.Volume),
		})
	}
	return out, nil
}

// Compile-time check
var _ interfaces.MarketDataClient = (*Client)(nil)
