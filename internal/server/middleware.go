package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
)

// responseWriter wraps http.ResponseWriter to capture status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

type routeKey struct{}

// routeInfo carries the matched route pattern back out to the metrics middleware.
type routeInfo struct {
	pattern string
}

// unmatchedRoute labels requests that did not match a registered route.
const unmatchedRoute = "unmatched"

// recoveryMiddleware catches panics and returns 500.
func recoveryMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Str("panic", fmt.Sprintf("%v", rec)).
						Str("path", r.URL.Path).
						Msg("Panic recovered in HTTP handler")
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware adds CORS headers for the web client.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-Correlation-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Correlation-ID, X-New-Access-Token, X-New-Token-Expires-In")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request counts and latency by route pattern.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := &routeInfo{pattern: unmatchedRoute}
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), routeKey{}, info)))

		s.app.Metrics.ObserveRequest(r.Method, info.pattern, rw.statusCode, time.Since(start))
	})
}

// clientIP returns the first X-Forwarded-For address, or the remote host.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// bearerTokenMiddleware validates an Authorization: Bearer header when present
// and populates UserContext from the stored user, so role changes and blocks
// apply to tokens already issued. Requests without the header pass through
// anonymously; route wrappers decide whether that is allowed.
//
// When sliding expiry is enabled and the token is >50% through its lifetime,
// a fresh access token is returned in the X-New-Access-Token response header.
func (s *Server) bearerTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := common.WithClientIP(r.Context(), clientIP(r))

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		claims, err := s.app.AuthService.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			writeBearerChallenge(w, "invalid_token", "invalid or expired token")
			return
		}

		user, err := s.app.AuthService.GetUser(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				writeBearerChallenge(w, "invalid_token", "user not found")
				return
			}
			s.writeServiceError(w, r, err)
			return
		}

		uc := &common.UserContext{
			UserID:  user.UserID,
			Email:   user.Email,
			Name:    user.Name,
			Role:    user.Role,
			Blocked: user.IsBlocked(),
		}
		ctx = common.WithUserContext(ctx, uc)

		if !uc.Blocked && s.app.AuthService.ShouldRefresh(claims) {
			if token, err := s.app.AuthService.SignToken(user); err == nil {
				w.Header().Set("X-New-Access-Token", token)
				w.Header().Set("X-New-Token-Expires-In", fmt.Sprintf("%d", int(s.app.Config.Auth.GetTokenExpiry().Seconds())))
			} else {
				s.logger.Warn().Err(err).Str("user_id", user.UserID).Msg("Failed to refresh access token")
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeBearerChallenge writes a 401 response with a WWW-Authenticate header.
func writeBearerChallenge(w http.ResponseWriter, errorCode, description string) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer error="%s", error_description="%s"`, errorCode, description))
	WriteErrorWithCode(w, http.StatusUnauthorized, description, errorCode)
}

// correlationIDMiddleware extracts or generates a correlation ID.
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID := r.Header.Get("X-Request-ID")
		if corrID == "" {
			corrID = r.Header.Get("X-Correlation-ID")
		}
		if corrID == "" {
			corrID = uuid.New().String()[:8]
		}
		w.Header().Set("X-Correlation-ID", corrID)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			event := logger.Trace()
			if rw.statusCode >= 500 {
				event = logger.Error()
			} else if rw.statusCode >= 400 {
				event = logger.Info()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Int("bytes", rw.bytesWritten).
				Dur("duration", time.Since(start)).
				Str("correlation_id", w.Header().Get("X-Correlation-ID")).
				Str("user_id", common.ResolveUserID(r.Context())).
				Msg("HTTP request")
		})
	}
}

// withRole rejects requests whose caller does not satisfy role. It is the
// only authorization gate; admin satisfies every role.
func (s *Server) withRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := common.Authorize(common.UserContextFromContext(r.Context()), role); err != nil {
			if errors.Is(err, common.ErrUnauthenticated) {
				w.Header().Set("WWW-Authenticate", "Bearer")
			}
			status, code := statusFor(err)
			WriteErrorWithCode(w, status, err.Error(), code)
			return
		}
		next(w, r)
	}
}

// applyMiddleware wraps a handler with the middleware stack.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply in reverse order (last applied = first executed)
	handler = loggingMiddleware(s.logger)(handler)
	handler = correlationIDMiddleware(handler)
	handler = s.bearerTokenMiddleware(handler)
	handler = s.metricsMiddleware(handler)
	handler = corsMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}
