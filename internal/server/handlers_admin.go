package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

// --- Users ---

// handleAdminUsers handles GET /api/admin/users.
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	users, err := s.app.AuthService.ListUsers(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"count": len(users),
		"users": toUserResponses(users),
	})
}

// handleAdminUser handles GET, PUT, PATCH and DELETE /api/admin/users/{id}.
func (s *Server) handleAdminUser(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete) {
		return
	}
	ctx := r.Context()
	actorID := common.ResolveUserID(ctx)
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		user, err := s.app.AuthService.GetUser(ctx, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, toUserResponse(user))

	case http.MethodPut, http.MethodPatch:
		var patch interfaces.UserPatch
		if !DecodeJSON(w, r, &patch) {
			return
		}
		user, err := s.app.AuthService.UpdateUser(ctx, actorID, id, patch)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, toUserResponse(user))

	case http.MethodDelete:
		if err := s.app.AuthService.DeleteUser(ctx, actorID, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, map[string]string{"deleted": id})
	}
}

// handleAdminUserStatus returns the handler for POST /api/admin/users/{id}/block and /unblock.
func (s *Server) handleAdminUserStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		ctx := r.Context()
		user, err := s.app.AuthService.SetStatus(ctx, common.ResolveUserID(ctx), r.PathValue("id"), status)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, toUserResponse(user))
	}
}

// handleAdminUserResetPassword handles POST /api/admin/users/{id}/reset-password.
func (s *Server) handleAdminUserResetPassword(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()
	token, expires, err := s.app.AuthService.IssueResetToken(ctx, common.ResolveUserID(ctx), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"reset_token": token,
		"expires_at":  expires.UTC().Format(time.RFC3339),
	})
}

// handleAdminUserActivity handles GET /api/admin/users/{id}/activity?limit=.
func (s *Server) handleAdminUserActivity(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := s.app.AuthService.GetUser(ctx, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	entries, err := s.app.Storage.AuditStore().ListByUser(ctx, id, queryInt(r, "limit", defaultLogLimit, maxLogLimit))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"user_id": id,
		"count":   len(entries),
		"entries": entries,
	})
}

// --- Portfolios ---

// handleAdminPortfolios handles GET /api/admin/portfolios.
func (s *Server) handleAdminPortfolios(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	portfolios, err := s.app.PortfolioService.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"count":      len(portfolios),
		"portfolios": portfolios,
	})
}

// handleAdminPortfolio handles GET, PUT and DELETE /api/admin/portfolios/{id}.
func (s *Server) handleAdminPortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete) {
		return
	}
	ctx := r.Context()
	actorID := common.ResolveUserID(ctx)
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		p, err := s.app.PortfolioService.Get(ctx, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, p)

	case http.MethodPut, http.MethodPatch:
		var patch interfaces.PortfolioPatch
		if !DecodeJSON(w, r, &patch) {
			return
		}
		p, err := s.app.PortfolioService.AdminUpdate(ctx, actorID, id, patch)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, p)

	case http.MethodDelete:
		if err := s.app.PortfolioService.Delete(ctx, actorID, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, map[string]string{"deleted": id})
	}
}

// handleAdminPortfoliosByUser handles GET /api/admin/portfolios/user/{user_id}.
func (s *Server) handleAdminPortfoliosByUser(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID := r.PathValue("user_id")
	portfolios, err := s.app.PortfolioService.ListByUser(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"user_id":    userID,
		"count":      len(portfolios),
		"portfolios": portfolios,
	})
}

// --- Simulations ---

// handleAdminSimulations handles GET /api/admin/simulations.
func (s *Server) handleAdminSimulations(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeSimulations(w, r, "")
}

// handleAdminPortfolioSimulations handles GET /api/admin/simulations/portfolio/{id}.
func (s *Server) handleAdminPortfolioSimulations(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeSimulations(w, r, r.PathValue("id"))
}

func (s *Server) writeSimulations(w http.ResponseWriter, r *http.Request, portfolioID string) {
	records, err := s.app.PortfolioService.ListSimulations(r.Context(), portfolioID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"count":       len(records),
		"simulations": records,
	})
}

// handleAdminSimulationDelete handles DELETE /api/admin/simulations/{portfolio_id}/{key},
// where key is a simulation id or its RFC 3339 timestamp.
func (s *Server) handleAdminSimulationDelete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	ctx := r.Context()
	portfolioID, key := r.PathValue("portfolio_id"), r.PathValue("key")
	if err := s.app.PortfolioService.DeleteSimulation(ctx, common.ResolveUserID(ctx), portfolioID, key); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]string{
		"portfolio_id": portfolioID,
		"deleted":      key,
	})
}

// --- Logs ---

// handleAdminLogs handles GET /api/admin/logs?limit=&user_id=.
func (s *Server) handleAdminLogs(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()
	store := s.app.Storage.AuditStore()
	limit := queryInt(r, "limit", defaultLogLimit, maxLogLimit)

	var (
		entries []*models.AuditEntry
		err     error
	)
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		entries, err = store.ListByUser(ctx, userID, limit)
	} else {
		entries, err = store.List(ctx, limit)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// handleAdminLog handles GET and DELETE /api/admin/logs/{id}.
func (s *Server) handleAdminLog(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	ctx := r.Context()
	store := s.app.Storage.AuditStore()
	id := r.PathValue("id")

	if r.Method == http.MethodDelete {
		if err := store.Delete(ctx, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, map[string]string{"deleted": id})
		return
	}

	entry, err := store.Get(ctx, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, entry)
}

// --- System config ---

// handleAdminConfig handles GET and PUT /api/admin/config. PUT shallow-merges the body.
func (s *Server) handleAdminConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodPatch) {
		return
	}
	ctx := r.Context()
	store := s.app.Storage.ConfigStore()

	if r.Method == http.MethodGet {
		cfg, err := store.Get(ctx)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, cfg)
		return
	}

	var patch map[string]any
	if !DecodeJSON(w, r, &patch) {
		return
	}
	actorID := common.ResolveUserID(ctx)
	cfg, err := store.Merge(ctx, patch, actorID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.app.Audit.Record(ctx, "", actorID, models.AuditConfigUpdate, fmt.Sprintf("%d keys", len(patch)))
	WriteOK(w, http.StatusOK, cfg)
}
