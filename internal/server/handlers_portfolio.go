package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// handleOptimize handles POST /api/optimize: generate and store a portfolio for the caller.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req interfaces.OptimizeRequest
	// An empty body generates from the stored risk profile.
	if r.ContentLength != 0 && !DecodeJSON(w, r, &req) {
		return
	}

	uc := common.UserContextFromContext(r.Context())
	p, err := s.app.PortfolioService.Optimize(r.Context(), uc.UserID, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusCreated, p)
}

// handlePortfolioForUser handles GET /api/portfolio/{user_id}.
func (s *Server) handlePortfolioForUser(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc := common.UserContextFromContext(r.Context())
	p, err := s.app.PortfolioService.GetForUser(r.Context(), uc.UserID, uc.Role, r.PathValue("user_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, p)
}

// handlePortfolioHistory handles GET /api/portfolio/{user_id}/history.
func (s *Server) handlePortfolioHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc := common.UserContextFromContext(r.Context())
	history, err := s.app.PortfolioService.History(r.Context(), uc.UserID, uc.Role, r.PathValue("user_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"count":      len(history),
		"portfolios": history,
	})
}

// handlePortfolioChart handles GET /api/portfolios/{id}/chart and returns a PNG.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	p, err := s.app.PortfolioService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !common.CanAccessUser(common.UserContextFromContext(r.Context()), p.UserID) {
		s.writeServiceError(w, r, common.ErrForbidden)
		return
	}

	png, err := s.app.PortfolioService.RenderAllocationChart(p)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleSimulate handles POST /api/simulate. Without portfolio_id the caller's
// latest portfolio is projected.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		PortfolioID string                  `json:"portfolio_id"`
		Params      models.SimulationParams `json:"params"`
	}
	if r.ContentLength != 0 && !DecodeJSON(w, r, &body) {
		return
	}

	ctx := r.Context()
	uc := common.UserContextFromContext(ctx)
	if body.PortfolioID == "" {
		latest, err := s.app.PortfolioService.GetForUser(ctx, uc.UserID, uc.Role, uc.UserID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				WriteErrorWithCode(w, http.StatusNotFound, "No portfolio to simulate; generate one first", "not_found")
				return
			}
			s.writeServiceError(w, r, err)
			return
		}
		body.PortfolioID = latest.PortfolioID
	}

	sim, err := s.app.PortfolioService.Simulate(ctx, uc.UserID, body.PortfolioID, body.Params)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusCreated, map[string]interface{}{
		"portfolio_id": body.PortfolioID,
		"simulation":   sim,
	})
}
