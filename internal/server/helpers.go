package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/services/allocation"
	"github.com/abriltello/portafolioAI/internal/services/auth"
	"github.com/abriltello/portafolioAI/internal/services/content"
	"github.com/abriltello/portafolioAI/internal/services/education"
	"github.com/abriltello/portafolioAI/internal/services/market"
	"github.com/abriltello/portafolioAI/internal/services/portfolio"
)

// maxBodyBytes limits JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// OKResponse is the standard success envelope.
type OKResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteOK writes data inside the success envelope.
func WriteOK(w http.ResponseWriter, statusCode int, data interface{}) {
	WriteJSON(w, statusCode, OKResponse{Status: "ok", Data: data})
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteErrorWithCode(w, http.StatusBadRequest, "Request body is required", "invalid_request")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "Invalid JSON: "+err.Error(), "invalid_request")
		return false
	}
	return true
}

// queryInt returns the positive integer query parameter name, or def.
func queryInt(r *http.Request, name string, def, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// statusFor maps service errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, auth.ErrUserBlocked):
		return http.StatusForbidden, "user_blocked"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, auth.ErrInvalidResetToken):
		return http.StatusBadRequest, "invalid_reset_token"
	case errors.Is(err, auth.ErrValidation),
		errors.Is(err, allocation.ErrInvalidInput),
		errors.Is(err, portfolio.ErrInvalidParams),
		errors.Is(err, content.ErrInvalidContent),
		errors.Is(err, education.ErrEmptyConcept),
		errors.Is(err, market.ErrNoTickers),
		errors.Is(err, market.ErrTooManyTickers),
		errors.Is(err, market.ErrInvalidPeriod):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, interfaces.ErrNotFound), errors.Is(err, market.ErrNoData):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, market.ErrNotConfigured):
		return http.StatusServiceUnavailable, "provider_unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeServiceError writes err with the status statusFor assigns it.
// Internal errors are logged and reported without detail.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		WriteErrorWithCode(w, status, "Internal server error", code)
		return
	}
	WriteErrorWithCode(w, status, err.Error(), code)
}
