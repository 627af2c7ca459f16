package market

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/abriltello/portafolioAI/internal/clients/eodhd"
	"github.com/abriltello/portafolioAI/internal/common"
)

// newBreaker trips after 3 consecutive failures, or when more than 5% of at
// least 20 requests in the interval fail.
func newBreaker(name string, logger *common.Logger) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		total := counts.Requests
		if total < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(total) > 0.05
	}
	st.IsSuccessful = isProviderHealthy
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Market data breaker state changed")
	}
	return gobreaker.NewCircuitBreaker(st)
}

// isProviderHealthy treats unknown-symbol responses as healthy so bad input
// cannot open the breaker.
func isProviderHealthy(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *eodhd.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusBadRequest
	}
	return false
}
