package server

import (
	"net/http"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/models"
)

// handle registers h for pattern and records the pattern as the metrics route label.
func handle(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info, ok := r.Context().Value(routeKey{}).(*routeInfo); ok {
			info.pattern = pattern
		}
		h.ServeHTTP(w, r)
	}))
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	user := func(h http.HandlerFunc) http.Handler { return s.withRole(models.RoleUser, h) }
	admin := func(h http.HandlerFunc) http.Handler { return s.withRole(models.RoleAdmin, h) }
	public := func(h http.HandlerFunc) http.Handler { return h }

	// System
	handle(mux, "/api/health", public(s.handleHealth))
	handle(mux, "/api/version", public(s.handleVersion))
	handle(mux, "/metrics", s.app.Metrics.Handler())

	// Auth
	handle(mux, "/api/auth/register", public(s.handleRegister))
	handle(mux, "/api/auth/login", public(s.handleLogin))
	handle(mux, "/api/auth/me", user(s.handleMe))
	handle(mux, "/api/auth/forgot-password", public(s.handleForgotPassword))
	handle(mux, "/api/auth/reset-password", public(s.handleResetPassword))
	handle(mux, "/api/risk-profile", user(s.handleRiskProfile))

	// Portfolios
	handle(mux, "/api/optimize", user(s.handleOptimize))
	handle(mux, "/api/portfolio/{user_id}", user(s.handlePortfolioForUser))
	handle(mux, "/api/portfolio/{user_id}/history", user(s.handlePortfolioHistory))
	handle(mux, "/api/portfolios/{id}/chart", user(s.handlePortfolioChart))
	handle(mux, "/api/simulate", user(s.handleSimulate))

	// Market data
	handle(mux, "/api/stock-data", user(s.handleStockData))
	handle(mux, "/api/stock-data/historical", user(s.handleStockHistoryPost))
	handle(mux, "/api/stock-data/{ticker}", user(s.handleStockQuote))
	handle(mux, "/api/historical/{ticker}", user(s.handleStockHistory))

	// Content, education and support
	handle(mux, "/api/news", public(s.handleNews))
	handle(mux, "/api/content", public(s.handleContentList))
	handle(mux, "/api/content/{id}", public(s.handleContentGet))
	handle(mux, "/api/education/explain", public(s.handleExplain))
	handle(mux, "/api/support/contact", public(s.handleSupportContact))

	// Admin - users
	handle(mux, "/api/admin/users", admin(s.handleAdminUsers))
	handle(mux, "/api/admin/users/{id}", admin(s.handleAdminUser))
	handle(mux, "/api/admin/users/{id}/block", admin(s.handleAdminUserStatus(models.UserStatusBlocked)))
	handle(mux, "/api/admin/users/{id}/unblock", admin(s.handleAdminUserStatus(models.UserStatusActive)))
	handle(mux, "/api/admin/users/{id}/reset-password", admin(s.handleAdminUserResetPassword))
	handle(mux, "/api/admin/users/{id}/activity", admin(s.handleAdminUserActivity))

	// Admin - portfolios and simulations
	handle(mux, "/api/admin/portfolios", admin(s.handleAdminPortfolios))
	handle(mux, "/api/admin/portfolios/{id}", admin(s.handleAdminPortfolio))
	handle(mux, "/api/admin/portfolios/user/{user_id}", admin(s.handleAdminPortfoliosByUser))
	handle(mux, "/api/admin/simulations", admin(s.handleAdminSimulations))
	handle(mux, "/api/admin/simulations/portfolio/{id}", admin(s.handleAdminPortfolioSimulations))
	handle(mux, "/api/admin/simulations/{portfolio_id}/{key}", admin(s.handleAdminSimulationDelete))

	// Admin - content, support, logs, config
	handle(mux, "/api/admin/content", admin(s.handleAdminContent))
	handle(mux, "/api/admin/content/import", admin(s.handleAdminContentImport))
	handle(mux, "/api/admin/content/{id}", admin(s.handleAdminContentItem))
	handle(mux, "/api/admin/support/messages", admin(s.handleAdminSupportList))
	handle(mux, "/api/admin/support/messages/{id}", admin(s.handleAdminSupportItem))
	handle(mux, "/api/admin/logs", admin(s.handleAdminLogs))
	handle(mux, "/api/admin/logs/{id}", admin(s.handleAdminLog))
	handle(mux, "/api/admin/config", admin(s.handleAdminConfig))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		WriteErrorWithCode(w, http.StatusNotFound, "Not found", "not_found")
	})
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteOK(w, http.StatusOK, common.GetVersionInfo())
}
