package portfolio

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/metrics"
	"github.com/abriltello/portafolioAI/internal/models"
	"github.com/abriltello/portafolioAI/internal/services/allocation"
	"github.com/abriltello/portafolioAI/internal/services/audit"
	"github.com/abriltello/portafolioAI/internal/storage/filestore"
)

type fixture struct {
	svc     *Service
	store   interfaces.StorageManager
	metrics *metrics.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := common.NewSilentLogger()
	mgr, err := filestore.NewManager(logger, t.TempDir())
	require.NoError(t, err)
	reg := metrics.NewRegistry()
	svc := NewService(mgr, audit.NewRecorder(mgr.AuditStore(), logger), reg, logger)
	return &fixture{svc: svc, store: mgr, metrics: reg}
}

func (f *fixture) addUser(t *testing.T, id string, profile *models.RiskProfile) {
	t.Helper()
	require.NoError(t, f.store.UserStore().Save(context.Background(), &models.User{
		UserID:      id,
		Name:        id,
		Email:       id + "@example.com",
		Role:        models.RoleUser,
		Status:      models.UserStatusActive,
		RiskProfile: profile,
		CreatedAt:   time.Now(),
	}))
}

func sumPct(assets []models.Asset) float64 {
	total := 0.0
	for _, a := range assets {
		total += a.AllocationPct
	}
	return total
}

func TestOptimize_UsesRequestThenProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "u1", &models.RiskProfile{RiskLevel: "low", InvestmentGoal: "retirement"})

	p, err := f.svc.Optimize(ctx, "u1", interfaces.OptimizeRequest{})
	require.NoError(t, err)
	assert.Equal(t, "low", p.RiskLevel)
	assert.Equal(t, "retirement", p.InvestmentGoal)
	assert.Len(t, p.Assets, 5)
	assert.InDelta(t, 100.0, sumPct(p.Assets), 1e-9)
	assert.Equal(t, 0.05, p.Metrics.ExpectedReturn)
	assert.NotNil(t, p.SimulationHistory)

	p, err = f.svc.Optimize(ctx, "u1", interfaces.OptimizeRequest{RiskLevel: "HIGH"})
	require.NoError(t, err)
	assert.Equal(t, "high", p.RiskLevel)
	assert.Len(t, p.Assets, 10)
	assert.Equal(t, "TLT", p.Assets[0].Ticker)
	assert.Equal(t, 18.0, p.Assets[0].AllocationPct)

	stored, err := f.store.PortfolioStore().ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PortfoliosGenerated.WithLabelValues("high")))

	entries, err := f.store.AuditStore().ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, models.AuditPortfolioGenerate, entries[0].Action)
}

func TestOptimize_UnknownTierIsMedium(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", nil)

	p, err := f.svc.Optimize(context.Background(), "u1", interfaces.OptimizeRequest{RiskLevel: "yolo"})
	require.NoError(t, err)
	assert.Equal(t, "medium", p.RiskLevel)
	assert.Len(t, p.Assets, 7)
}

func TestOptimize_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Optimize(context.Background(), "ghost", interfaces.OptimizeRequest{})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestGetForUser_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "u1", nil)

	_, err := f.svc.GetForUser(ctx, "u1", models.RoleUser, "u1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	first, err := f.svc.Optimize(ctx, "u1", interfaces.OptimizeRequest{RiskLevel: "low"})
	require.NoError(t, err)
	f.svc.now = func() time.Time { return time.Now().Add(time.Minute) }
	second, err := f.svc.Optimize(ctx, "u1", interfaces.OptimizeRequest{RiskLevel: "high"})
	require.NoError(t, err)

	latest, err := f.svc.GetForUser(ctx, "u1", models.RoleUser, "u1")
	require.NoError(t, err)
	assert.Equal(t, second.PortfolioID, latest.PortfolioID)

	_, err = f.svc.GetForUser(ctx, "u2", models.RoleUser, "u1")
	assert.ErrorIs(t, err, common.ErrForbidden)

	latest, err = f.svc.GetForUser(ctx, "admin", models.RoleAdmin, "u1")
	require.NoError(t, err)
	assert.Equal(t, second.PortfolioID, latest.PortfolioID)

	history, err := f.svc.History(ctx, "u1", models.RoleUser, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.PortfolioID, history[0].PortfolioID)
	assert.Equal(t, first.PortfolioID, history[1].PortfolioID)

	_, err = f.svc.History(ctx, "u2", models.RoleUser, "u1")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestProject(t *testing.T) {
	metrics := models.Metrics{ExpectedReturn: 0.10, Risk: 0.08}

	res := Project(models.SimulationParams{Amount: 10000, Years: 2}, metrics)
	require.Len(t, res.Points, 3)
	assert.Equal(t, models.ProjectionPoint{Year: 0, Contributed: 10000, Expected: 10000, Pessimistic: 10000, Optimistic: 10000}, res.Points[0])
	assert.Equal(t, models.ProjectionPoint{Year: 1, Contributed: 10000, Expected: 11000, Pessimistic: 10200, Optimistic: 11800}, res.Points[1])
	assert.Equal(t, 12100.0, res.FinalExpected)
	assert.Equal(t, 10404.0, res.FinalPessimistic)
	assert.Equal(t, 13924.0, res.FinalOptimistic)

	res = Project(models.SimulationParams{Amount: 10000, Years: 2, MonthlyContribution: 100}, metrics)
	assert.Equal(t, 12200.0, res.Points[1].Expected)
	assert.Equal(t, 14620.0, res.FinalExpected)
	assert.Equal(t, 12400.0, res.TotalContributed)
}

func TestProject_RoundsAndClamps(t *testing.T) {
	res := Project(models.SimulationParams{Amount: 1000, Years: 1}, models.Metrics{ExpectedReturn: 0.123456, Risk: 0})
	assert.Equal(t, 1123.46, res.FinalExpected)

	res = Project(models.SimulationParams{Amount: 1000, Years: 3}, models.Metrics{ExpectedReturn: 0, Risk: 2})
	assert.Equal(t, 0.0, res.FinalPessimistic)
	assert.Equal(t, 27000.0, res.FinalOptimistic)
}

func TestResolveParams(t *testing.T) {
	p, err := ResolveParams(models.SimulationParams{})
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultAmount), p.Amount)
	assert.Equal(t, DefaultYears, p.Years)

	p, err = ResolveParams(models.SimulationParams{Amount: 500, Years: 80})
	require.NoError(t, err)
	assert.Equal(t, MaxYears, p.Years)

	for _, bad := range []models.SimulationParams{
		{Amount: -1},
		{Years: -2},
		{MonthlyContribution: -5},
	} {
		_, err := ResolveParams(bad)
		assert.ErrorIs(t, err, ErrInvalidParams)
		assert.True(t, IsInvalidInput(err))
	}
}

func TestSimulate_OwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "u1", nil)
	f.addUser(t, "u2", nil)

	p, err := f.svc.Optimize(ctx, "u1", interfaces.OptimizeRequest{RiskLevel: "medium"})
	require.NoError(t, err)

	sim, err := f.svc.Simulate(ctx, "u1", p.PortfolioID, models.SimulationParams{Years: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, sim.Params.Years)
	assert.Equal(t, float64(DefaultAmount), sim.Params.Amount)
	assert.Len(t, sim.Result.Points, 4)

	_, err = f.svc.Simulate(ctx, "u2", p.PortfolioID, models.SimulationParams{})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = f.svc.Simulate(ctx, "u1", "missing", models.SimulationParams{})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	stored, err := f.store.PortfolioStore().Get(ctx, p.PortfolioID)
	require.NoError(t, err)
	require.Len(t, stored.SimulationHistory, 1)
	assert.Equal(t, sim.SimulationID, stored.SimulationHistory[0].SimulationID)
}

func TestListAndDeleteSimulations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "u1", nil)
	f.addUser(t, "u2", nil)

	p1, err := f.svc.Optimize(ctx, "u1", interfaces.OptimizeRequest{})
	require.NoError(t, err)
	p2, err := f.svc.Optimize(ctx, "u2", interfaces.OptimizeRequest{})
	require.NoError(t, err)

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return base }
	s1, err := f.svc.Simulate(ctx, "u1", p1.PortfolioID, models.SimulationParams{})
	require.NoError(t, err)
	f.svc.now = func() time.Time { return base.Add(time.Hour) }
	s2, err := f.svc.Simulate(ctx, "u2", p2.PortfolioID, models.SimulationParams{})
	require.NoError(t, err)

	all, err := f.svc.ListSimulations(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, s2.SimulationID, all[0].SimulationID)
	assert.Equal(t, "u2", all[0].UserID)
	assert.Equal(t, p1.PortfolioID, all[1].PortfolioID)

	one, err := f.svc.ListSimulations(ctx, p1.PortfolioID)
	require.NoError(t, err)
	require.Len(t, one, 1)

	require.NoError(t, f.svc.DeleteSimulation(ctx, "admin", p1.PortfolioID, s1.Timestamp.Format(time.RFC3339Nano)))
	one, err = f.svc.ListSimulations(ctx, p1.PortfolioID)
	require.NoError(t, err)
	assert.Empty(t, one)

	assert.ErrorIs(t, f.svc.DeleteSimulation(ctx, "admin", p1.PortfolioID, "nope"), interfaces.ErrNotFound)
}

func TestAdminUpdate_Renormalizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "u1", nil)

	p, err := f.svc.Optimize(ctx, "u1", interfaces.OptimizeRequest{RiskLevel: "low"})
	require.NoError(t, err)

	level := "high"
	updated, err := f.svc.AdminUpdate(ctx, "admin", p.PortfolioID, interfaces.PortfolioPatch{
		Assets: []models.Asset{
			{Ticker: "aapl", AllocationPct: 1},
			{Ticker: "MSFT", AllocationPct: 1},
			{Ticker: "CUSTOM", AllocationPct: 1, Name: "Custom Fund"},
		},
		Metrics:   &models.Metrics{ExpectedReturn: 0.2, Risk: 0.1},
		RiskLevel: &level,
	})
	require.NoError(t, err)

	require.Len(t, updated.Assets, 3)
	assert.Equal(t, "AAPL", updated.Assets[0].Ticker)
	assert.Equal(t, 33.34, updated.Assets[0].AllocationPct)
	assert.Equal(t, 33.33, updated.Assets[1].AllocationPct)
	assert.Equal(t, "Apple Inc.", updated.Assets[0].Name)
	assert.Equal(t, "Custom Fund", updated.Assets[2].Name)
	assert.Equal(t, "high", updated.RiskLevel)
	assert.Equal(t, 0.2, updated.Metrics.ExpectedReturn)
}

func TestAdminUpdate_RejectsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "u1", nil)

	p, err := f.svc.Optimize(ctx, "u1", interfaces.OptimizeRequest{})
	require.NoError(t, err)

	cases := map[string][]models.Asset{
		"negative":  {{Ticker: "A", AllocationPct: -1}, {Ticker: "B", AllocationPct: 50}},
		"zero sum":  {{Ticker: "A", AllocationPct: 0}},
		"empty id":  {{Ticker: " ", AllocationPct: 10}},
		"duplicate": {{Ticker: "A", AllocationPct: 10}, {Ticker: "a", AllocationPct: 10}},
		"residual below zero": {
			{Ticker: "A", AllocationPct: 0.004},
			{Ticker: "B", AllocationPct: 33.335},
			{Ticker: "C", AllocationPct: 33.335},
			{Ticker: "D", AllocationPct: 33.326},
		},
	}
	for name, assets := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.AdminUpdate(ctx, "admin", p.PortfolioID, interfaces.PortfolioPatch{Assets: assets})
			assert.ErrorIs(t, err, allocation.ErrInvalidInput)
			assert.True(t, IsInvalidInput(err))
		})
	}

	stored, err := f.svc.Get(ctx, p.PortfolioID)
	require.NoError(t, err)
	for _, a := range stored.Assets {
		assert.GreaterOrEqual(t, a.AllocationPct, 0.0)
	}

	_, err = f.svc.AdminUpdate(ctx, "admin", "missing", interfaces.PortfolioPatch{})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "u1", nil)

	p, err := f.svc.Optimize(ctx, "u1", interfaces.OptimizeRequest{})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "admin", p.PortfolioID))
	_, err = f.svc.Get(ctx, p.PortfolioID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, "admin", p.PortfolioID), interfaces.ErrNotFound)
}

func TestRenderAllocationChart(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", nil)

	p, err := f.svc.Optimize(context.Background(), "u1", interfaces.OptimizeRequest{RiskLevel: "high"})
	require.NoError(t, err)

	data, err := f.svc.RenderAllocationChart(p)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())

	_, err = RenderAllocationChart(&models.Portfolio{PortfolioID: "empty"})
	assert.Error(t, err)
}
