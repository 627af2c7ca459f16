package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// PortfolioStore implements interfaces.PortfolioStore.
type PortfolioStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewPortfolioStore(db *surrealdb.DB, logger *common.Logger) *PortfolioStore {
	return &PortfolioStore{db: db, logger: logger}
}

func (s *PortfolioStore) Get(ctx context.Context, portfolioID string) (*models.Portfolio, error) {
	p, err := surrealdb.Select[models.Portfolio](ctx, s.db, surrealmodels.NewRecordID(tablePortfolio, portfolioID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select portfolio: %w", err)
	}
	if p == nil || p.PortfolioID == "" {
		return nil, interfaces.ErrNotFound
	}
	return p, nil
}

func (s *PortfolioStore) Save(ctx context.Context, p *models.Portfolio) error {
	if p.PortfolioID == "" {
		return fmt.Errorf("portfolio id is required")
	}
	if p.SimulationHistory == nil {
		p.SimulationHistory = []models.Simulation{}
	}
	return upsert(ctx, s.db, tablePortfolio, p.PortfolioID, p)
}

func (s *PortfolioStore) Delete(ctx context.Context, portfolioID string) error {
	return deleteRecord[models.Portfolio](ctx, s.db, tablePortfolio, portfolioID)
}

func (s *PortfolioStore) List(ctx context.Context) ([]*models.Portfolio, error) {
	rows, err := queryAll[models.Portfolio](ctx, s.db, "SELECT * FROM portfolio ORDER BY generated_at DESC", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	return rows, nil
}

func (s *PortfolioStore) ListByUser(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	sql := "SELECT * FROM portfolio WHERE user_id = $user_id ORDER BY generated_at DESC"
	rows, err := queryAll[models.Portfolio](ctx, s.db, sql, map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios for user: %w", err)
	}
	return rows, nil
}

func (s *PortfolioStore) LatestForUser(ctx context.Context, userID string) (*models.Portfolio, error) {
	sql := "SELECT * FROM portfolio WHERE user_id = $user_id ORDER BY generated_at DESC LIMIT 1"
	rows, err := queryAll[models.Portfolio](ctx, s.db, sql, map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get latest portfolio: %w", err)
	}
	if len(rows) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return rows[0], nil
}

// AppendSimulation pushes onto simulation_history in a single owner-scoped update.
func (s *PortfolioStore) AppendSimulation(ctx context.Context, portfolioID, userID string, sim models.Simulation) error {
	sql := `UPDATE type::record('portfolio', $id)
		SET simulation_history = array::append(simulation_history ?? [], $sim), modified_at = $now
		WHERE user_id = $user_id RETURN AFTER`
	vars := map[string]any{
		"id":      portfolioID,
		"user_id": userID,
		"sim":     sim,
		"now":     time.Now(),
	}
	rows, err := queryAll[models.Portfolio](ctx, s.db, sql, vars)
	if err != nil {
		return fmt.Errorf("failed to append simulation: %w", err)
	}
	if len(rows) == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (s *PortfolioStore) DeleteSimulation(ctx context.Context, portfolioID, key string) error {
	p, err := s.Get(ctx, portfolioID)
	if err != nil {
		return err
	}
	kept := make([]models.Simulation, 0, len(p.SimulationHistory))
	removed := false
	for _, sim := range p.SimulationHistory {
		if !removed && simulationMatches(sim, key) {
			removed = true
			continue
		}
		kept = append(kept, sim)
	}
	if !removed {
		return interfaces.ErrNotFound
	}

	sql := "UPDATE type::record('portfolio', $id) SET simulation_history = $history, modified_at = $now"
	vars := map[string]any{"id": portfolioID, "history": kept, "now": time.Now()}
	if _, err := surrealdb.Query[[]models.Portfolio](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to delete simulation: %w", err)
	}
	return nil
}

// simulationMatches reports whether key is the simulation's id or its RFC 3339 timestamp.
func simulationMatches(sim models.Simulation, key string) bool {
	if sim.SimulationID == key {
		return true
	}
	if t, err := time.Parse(time.RFC3339Nano, key); err == nil {
		return sim.Timestamp.Equal(t)
	}
	return false
}
