package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abriltello/portafolioAI/internal/models"
)

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	e := newTestEnv(t)
	_, userToken := e.signup("Ana", "ana@example.com")

	paths := []string{
		"/api/admin/users",
		"/api/admin/portfolios",
		"/api/admin/simulations",
		"/api/admin/content",
		"/api/admin/support/messages",
		"/api/admin/logs",
		"/api/admin/config",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, p, "", nil).Code)

			rr := e.do(http.MethodGet, p, userToken, nil)
			assert.Equal(t, http.StatusForbidden, rr.Code)
			assert.Equal(t, "forbidden", decodeError(t, rr).Code)
		})
	}
}

func TestAdminUsers(t *testing.T) {
	e := newTestEnv(t)
	adminID, adminToken := e.signup("Root", adminEmail)
	anaID, _ := e.signup("Ana", "ana@example.com")
	e.signup("Ben", "ben@example.com")

	rr := e.do(http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Count int            `json:"count"`
		Users []userResponse `json:"users"`
	}
	decodeData(t, rr, &list)
	assert.Equal(t, 3, list.Count)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = e.do(http.MethodGet, "/api/admin/users/"+anaID, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var ana userResponse
	decodeData(t, rr, &ana)
	assert.Equal(t, "ana@example.com", ana.Email)

	rr = e.do(http.MethodPatch, "/api/admin/users/"+anaID, adminToken, map[string]string{
		"name": "Ana Maria", "role": models.RoleAdmin, "risk_level": "HIGH",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decodeData(t, rr, &ana)
	assert.Equal(t, "Ana Maria", ana.Name)
	assert.Equal(t, models.RoleAdmin, ana.Role)
	require.NotNil(t, ana.RiskProfile)
	assert.Equal(t, "high", ana.RiskProfile.RiskLevel)

	rr = e.do(http.MethodPatch, "/api/admin/users/"+anaID, adminToken, map[string]string{"email": "ben@example.com"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = e.do(http.MethodPatch, "/api/admin/users/"+anaID, adminToken, map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(http.MethodPost, "/api/admin/users/"+adminID+"/block", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(http.MethodGet, "/api/admin/users/"+anaID+"/activity", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var activity struct {
		Count   int                 `json:"count"`
		Entries []models.AuditEntry `json:"entries"`
	}
	decodeData(t, rr, &activity)
	assert.NotZero(t, activity.Count)

	rr = e.do(http.MethodDelete, "/api/admin/users/"+anaID, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/admin/users/"+anaID, adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/admin/users/missing/activity", adminToken, nil).Code)
}

func TestAdminPortfolios(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.signup("Root", adminEmail)
	anaID, anaToken := e.signup("Ana", "ana@example.com")
	p := optimize(t, e, anaToken, map[string]string{"risk_level": "low"})

	rr := e.do(http.MethodGet, "/api/admin/portfolios", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Count int `json:"count"`
	}
	decodeData(t, rr, &list)
	assert.Equal(t, 1, list.Count)

	rr = e.do(http.MethodGet, "/api/admin/portfolios/user/"+anaID, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &list)
	assert.Equal(t, 1, list.Count)

	rr = e.do(http.MethodPut, "/api/admin/portfolios/"+p.PortfolioID, adminToken, map[string]interface{}{
		"assets": []map[string]interface{}{
			{"ticker": "vt", "allocation_pct": 1},
			{"ticker": "GLD", "allocation_pct": 1},
			{"ticker": "TLT", "allocation_pct": 1},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated models.Portfolio
	decodeData(t, rr, &updated)
	require.Len(t, updated.Assets, 3)
	assert.Equal(t, "VT", updated.Assets[0].Ticker)
	assert.Equal(t, 33.34, updated.Assets[0].AllocationPct)
	assert.Equal(t, 33.33, updated.Assets[1].AllocationPct)
	assert.Equal(t, "SPDR Gold Trust", updated.Assets[1].Name)

	rr = e.do(http.MethodPut, "/api/admin/portfolios/"+p.PortfolioID, adminToken, map[string]interface{}{
		"assets": []map[string]interface{}{{"ticker": "VT", "allocation_pct": -1}},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(http.MethodDelete, "/api/admin/portfolios/"+p.PortfolioID, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/admin/portfolios/"+p.PortfolioID, adminToken, nil).Code)
}

func TestAdminSimulations(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.signup("Root", adminEmail)
	_, anaToken := e.signup("Ana", "ana@example.com")
	p := optimize(t, e, anaToken, nil)

	for i := 0; i < 2; i++ {
		rr := e.do(http.MethodPost, "/api/simulate", anaToken, map[string]interface{}{"portfolio_id": p.PortfolioID})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := e.do(http.MethodGet, "/api/admin/simulations", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Count       int                       `json:"count"`
		Simulations []models.SimulationRecord `json:"simulations"`
	}
	decodeData(t, rr, &list)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, p.PortfolioID, list.Simulations[0].PortfolioID)

	key := list.Simulations[0].SimulationID
	rr = e.do(http.MethodDelete, "/api/admin/simulations/"+p.PortfolioID+"/"+key, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = e.do(http.MethodGet, "/api/admin/simulations/portfolio/"+p.PortfolioID, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &list)
	assert.Equal(t, 1, list.Count)

	rr = e.do(http.MethodDelete, "/api/admin/simulations/"+p.PortfolioID+"/"+key, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminLogs(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.signup("Root", adminEmail)
	anaID, anaToken := e.signup("Ana", "ana@example.com")
	optimize(t, e, anaToken, nil)

	rr := e.do(http.MethodGet, "/api/admin/logs?user_id="+anaID, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Count   int                 `json:"count"`
		Entries []models.AuditEntry `json:"entries"`
	}
	decodeData(t, rr, &list)
	require.NotZero(t, list.Count)

	actions := make([]string, 0, list.Count)
	for _, entry := range list.Entries {
		assert.Equal(t, anaID, entry.UserID)
		actions = append(actions, entry.Action)
	}
	assert.Contains(t, actions, models.AuditPortfolioGenerate)

	rr = e.do(http.MethodGet, "/api/admin/logs?limit=1", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &list)
	assert.Equal(t, 1, list.Count)

	id := list.Entries[0].EntryID
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/admin/logs/"+id, adminToken, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/admin/logs/"+id, adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/admin/logs/"+id, adminToken, nil).Code)
}

func TestAdminConfig(t *testing.T) {
	e := newTestEnv(t)
	adminID, adminToken := e.signup("Root", adminEmail)

	rr := e.do(http.MethodGet, "/api/admin/config", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var cfg models.SystemConfig
	decodeData(t, rr, &cfg)
	assert.Empty(t, cfg.Values)

	rr = e.do(http.MethodPut, "/api/admin/config", adminToken, map[string]interface{}{"maintenance": true, "banner": "hi"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = e.do(http.MethodPut, "/api/admin/config", adminToken, map[string]interface{}{"banner": "hello"})
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &cfg)
	assert.Equal(t, true, cfg.Values["maintenance"])
	assert.Equal(t, "hello", cfg.Values["banner"])
	assert.NotEmpty(t, cfg.ModifiedBy)

	rr = e.do(http.MethodGet, "/api/admin/users/"+adminID+"/activity", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var activity struct {
		Entries []models.AuditEntry `json:"entries"`
	}
	decodeData(t, rr, &activity)
	updates := 0
	for _, entry := range activity.Entries {
		if entry.Action == models.AuditConfigUpdate {
			updates++
		}
	}
	assert.Equal(t, 2, updates)
}
