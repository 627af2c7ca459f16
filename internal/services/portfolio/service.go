// Package portfolio generates, stores and projects user portfolios
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/metrics"
	"github.com/abriltello/portafolioAI/internal/models"
	"github.com/abriltello/portafolioAI/internal/services/allocation"
	"github.com/abriltello/portafolioAI/internal/services/audit"
)

// Compile-time interface check
var _ interfaces.PortfolioService = (*Service)(nil)

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	audit   *audit.Recorder
	metrics *metrics.Registry
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, recorder *audit.Recorder, registry *metrics.Registry, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		audit:   recorder,
		metrics: registry,
		logger:  logger,
		now:     time.Now,
	}
}

// Optimize generates a portfolio for userID and persists it. Fields missing
// from req fall back to the user's saved risk profile.
func (s *Service) Optimize(ctx context.Context, userID string, req interfaces.OptimizeRequest) (*models.Portfolio, error) {
	user, err := s.storage.UserStore().Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := allocation.Profile{
		RiskLevel:       req.RiskLevel,
		InvestmentGoal:  req.InvestmentGoal,
		ExperienceLevel: req.ExperienceLevel,
		Country:         req.Country,
	}
	prefs := req.Preferences
	if rp := user.RiskProfile; rp != nil {
		profile.RiskLevel = firstNonEmpty(profile.RiskLevel, rp.RiskLevel)
		profile.InvestmentGoal = firstNonEmpty(profile.InvestmentGoal, rp.InvestmentGoal)
		profile.ExperienceLevel = firstNonEmpty(profile.ExperienceLevel, rp.ExperienceLevel)
		profile.Country = firstNonEmpty(profile.Country, rp.Country)
		if prefs == nil {
			prefs = rp.Preferences
		}
	}

	generated := allocation.Generate(profile, preferencesFrom(prefs))

	now := s.now().UTC()
	p := &models.Portfolio{
		PortfolioID:       uuid.New().String(),
		UserID:            userID,
		RiskLevel:         generated.Tier.String(),
		InvestmentGoal:    profile.InvestmentGoal,
		Preferences:       prefs,
		Assets:            toAssets(generated.Assets),
		Metrics:           toMetrics(generated.Metrics),
		SimulationHistory: []models.Simulation{},
		GeneratedAt:       now,
		ModifiedAt:        now,
	}

	if err := s.storage.PortfolioStore().Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.metrics.PortfolioGenerated(p.RiskLevel)
	s.audit.Record(ctx, userID, "", models.AuditPortfolioGenerate, p.RiskLevel)
	s.logger.Info().Str("user_id", userID).Str("portfolio_id", p.PortfolioID).Str("tier", p.RiskLevel).Msg("Portfolio generated")
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// preferencesFrom reads the optional investment amount from free-form preferences.
func preferencesFrom(prefs map[string]any) allocation.Preferences {
	var out allocation.Preferences
	switch v := prefs["amount"].(type) {
	case float64:
		d := decimal.NewFromFloat(v)
		out.Amount = &d
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			out.Amount = &d
		}
	}
	return out
}

func toAssets(in []allocation.AssetAllocation) []models.Asset {
	out := make([]models.Asset, len(in))
	for i, a := range in {
		out[i] = models.Asset{
			Ticker:        a.Ticker,
			Name:          a.Name,
			AllocationPct: a.Percent.InexactFloat64(),
			Reason:        a.Reason,
		}
	}
	return out
}

func toMetrics(m allocation.Metrics) models.Metrics {
	return models.Metrics{
		ExpectedReturn: m.ExpectedReturn.InexactFloat64(),
		Risk:           m.Risk.InexactFloat64(),
	}
}

// Get returns a portfolio by id
func (s *Service) Get(ctx context.Context, portfolioID string) (*models.Portfolio, error) {
	return s.storage.PortfolioStore().Get(ctx, portfolioID)
}

func canAccess(requesterID, requesterRole, userID string) bool {
	return common.CanAccessUser(&common.UserContext{UserID: requesterID, Role: requesterRole}, userID)
}

// GetForUser returns the most recent portfolio of userID
func (s *Service) GetForUser(ctx context.Context, requesterID, requesterRole, userID string) (*models.Portfolio, error) {
	if !canAccess(requesterID, requesterRole, userID) {
		return nil, common.ErrForbidden
	}
	return s.storage.PortfolioStore().LatestForUser(ctx, userID)
}

// History returns every portfolio of userID, newest first
func (s *Service) History(ctx context.Context, requesterID, requesterRole, userID string) ([]*models.Portfolio, error) {
	if !canAccess(requesterID, requesterRole, userID) {
		return nil, common.ErrForbidden
	}
	return s.storage.PortfolioStore().ListByUser(ctx, userID)
}

// List returns all portfolios
func (s *Service) List(ctx context.Context) ([]*models.Portfolio, error) {
	return s.storage.PortfolioStore().List(ctx)
}

// ListByUser returns the portfolios of userID, newest first
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	return s.storage.PortfolioStore().ListByUser(ctx, userID)
}

// AdminUpdate applies an admin edit. Submitted assets are re-normalized so
// the stored allocation always sums to 100.
func (s *Service) AdminUpdate(ctx context.Context, actorID, portfolioID string, patch interfaces.PortfolioPatch) (*models.Portfolio, error) {
	p, err := s.storage.PortfolioStore().Get(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	var changed []string
	if len(patch.Assets) > 0 {
		assets, err := normalizeAssets(patch.Assets)
		if err != nil {
			return nil, err
		}
		p.Assets = assets
		changed = append(changed, "assets")
	}
	if patch.Metrics != nil {
		if patch.Metrics.Risk < 0 {
			return nil, &allocation.InvalidInputError{Reason: "risk must not be negative"}
		}
		p.Metrics = *patch.Metrics
		changed = append(changed, "metrics")
	}
	if patch.RiskLevel != nil {
		p.RiskLevel = allocation.ResolveTier(*patch.RiskLevel).String()
		changed = append(changed, "risk_level")
	}

	p.ModifiedAt = s.now().UTC()
	if err := s.storage.PortfolioStore().Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.audit.Record(ctx, p.UserID, actorID, models.AuditPortfolioUpdate, strings.Join(changed, ","))
	return p, nil
}

// normalizeAssets runs submitted assets through the allocation normalizer.
func normalizeAssets(in []models.Asset) ([]models.Asset, error) {
	seen := make(map[string]bool, len(in))
	weights := make([]allocation.Weight, len(in))
	for i, a := range in {
		ticker := strings.ToUpper(strings.TrimSpace(a.Ticker))
		if seen[ticker] {
			return nil, &allocation.InvalidInputError{Reason: fmt.Sprintf("duplicate ticker %s", ticker)}
		}
		seen[ticker] = true
		weights[i] = allocation.Weight{ID: ticker, Percent: decimal.NewFromFloat(a.AllocationPct)}
	}

	normalized, err := allocation.Normalize(weights)
	if err != nil {
		return nil, err
	}

	out := make([]models.Asset, len(normalized))
	for i, w := range normalized {
		asset := in[i]
		asset.Ticker = w.ID
		asset.AllocationPct = w.Percent.InexactFloat64()
		if info, ok := allocation.Asset(w.ID); ok {
			if asset.Name == "" {
				asset.Name = info.Name
			}
			if asset.Reason == "" {
				asset.Reason = info.Reason
			}
		}
		if asset.Name == "" {
			asset.Name = w.ID
		}
		out[i] = asset
	}
	return out, nil
}

// Delete removes a portfolio
func (s *Service) Delete(ctx context.Context, actorID, portfolioID string) error {
	p, err := s.storage.PortfolioStore().Get(ctx, portfolioID)
	if err != nil {
		return err
	}
	if err := s.storage.PortfolioStore().Delete(ctx, portfolioID); err != nil {
		return err
	}
	s.audit.Record(ctx, p.UserID, actorID, models.AuditPortfolioDelete, portfolioID)
	return nil
}

// ListSimulations flattens simulation histories, newest first. An empty
// portfolioID lists simulations across all portfolios.
func (s *Service) ListSimulations(ctx context.Context, portfolioID string) ([]models.SimulationRecord, error) {
	var portfolios []*models.Portfolio
	if portfolioID != "" {
		p, err := s.storage.PortfolioStore().Get(ctx, portfolioID)
		if err != nil {
			return nil, err
		}
		portfolios = []*models.Portfolio{p}
	} else {
		all, err := s.storage.PortfolioStore().List(ctx)
		if err != nil {
			return nil, err
		}
		portfolios = all
	}

	records := []models.SimulationRecord{}
	for _, p := range portfolios {
		for _, sim := range p.SimulationHistory {
			records = append(records, models.SimulationRecord{
				PortfolioID: p.PortfolioID,
				UserID:      p.UserID,
				Simulation:  sim,
			})
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

// DeleteSimulation removes one simulation from a portfolio's history
func (s *Service) DeleteSimulation(ctx context.Context, actorID, portfolioID, key string) error {
	p, err := s.storage.PortfolioStore().Get(ctx, portfolioID)
	if err != nil {
		return err
	}
	if err := s.storage.PortfolioStore().DeleteSimulation(ctx, portfolioID, key); err != nil {
		return err
	}
	s.audit.Record(ctx, p.UserID, actorID, models.AuditSimulationDelete, key)
	return nil
}

// IsInvalidInput reports whether err is a rejected allocation or simulation input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, allocation.ErrInvalidInput) || errors.Is(err, ErrInvalidParams)
}
