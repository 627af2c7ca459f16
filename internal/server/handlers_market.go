package server

import "net/http"

// writeMarketError maps provider failures that carry no sentinel to 502.
func (s *Server) writeMarketError(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := statusFor(err); status == http.StatusInternalServerError {
		s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Market data request failed")
		WriteErrorWithCode(w, http.StatusBadGateway, "Market data provider error", "provider_error")
		return
	}
	s.writeServiceError(w, r, err)
}

// handleStockData handles POST /api/stock-data with {"tickers": [...]}.
func (s *Server) handleStockData(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Tickers []string `json:"tickers"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	quotes, err := s.app.MarketService.GetQuotes(r.Context(), body.Tickers)
	if err != nil {
		s.writeMarketError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(quotes),
		"stocks":  quotes,
	})
}

// handleStockQuote handles GET /api/stock-data/{ticker}.
func (s *Server) handleStockQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	quote, err := s.app.MarketService.GetQuote(r.Context(), r.PathValue("ticker"))
	if err != nil {
		s.writeMarketError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, quote)
}

// handleStockHistoryPost handles POST /api/stock-data/historical with {"ticker", "period"}.
func (s *Server) handleStockHistoryPost(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Ticker string `json:"ticker"`
		Period string `json:"period"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	s.writeHistory(w, r, body.Ticker, body.Period)
}

// handleStockHistory handles GET /api/historical/{ticker}?period=.
func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeHistory(w, r, r.PathValue("ticker"), r.URL.Query().Get("period"))
}

func (s *Server) writeHistory(w http.ResponseWriter, r *http.Request, ticker, period string) {
	history, err := s.app.MarketService.GetHistory(r.Context(), ticker, period)
	if err != nil {
		s.writeMarketError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, history)
}
