package filestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// PortfolioStore implements interfaces.PortfolioStore.
type PortfolioStore struct {
	dir *jsonDir
}

func (s *PortfolioStore) Get(_ context.Context, portfolioID string) (*models.Portfolio, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()
	return s.get(portfolioID)
}

func (s *PortfolioStore) get(portfolioID string) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := s.dir.read(portfolioID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PortfolioStore) Save(_ context.Context, p *models.Portfolio) error {
	if p.PortfolioID == "" {
		return fmt.Errorf("portfolio id is required")
	}
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	return s.dir.write(p.PortfolioID, p)
}

func (s *PortfolioStore) Delete(_ context.Context, portfolioID string) error {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	return s.dir.remove(portfolioID)
}

// List returns all portfolios, newest first.
func (s *PortfolioStore) List(_ context.Context) ([]*models.Portfolio, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()

	all, err := readAll[models.Portfolio](s.dir)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(all)
	return all, nil
}

func (s *PortfolioStore) ListByUser(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Portfolio, 0)
	for _, p := range all {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PortfolioStore) LatestForUser(ctx context.Context, userID string) (*models.Portfolio, error) {
	list, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return list[0], nil
}

func (s *PortfolioStore) AppendSimulation(_ context.Context, portfolioID, userID string, sim models.Simulation) error {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()

	p, err := s.get(portfolioID)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return interfaces.ErrNotFound
	}
	p.SimulationHistory = append(p.SimulationHistory, sim)
	p.ModifiedAt = time.Now()
	return s.dir.write(p.PortfolioID, p)
}

func (s *PortfolioStore) DeleteSimulation(_ context.Context, portfolioID, key string) error {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()

	p, err := s.get(portfolioID)
	if err != nil {
		return err
	}
	kept := p.SimulationHistory[:0]
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
	p.SimulationHistory = kept
	p.ModifiedAt = time.Now()
	return s.dir.write(p.PortfolioID, p)
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

func sortNewestFirst(list []*models.Portfolio) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].GeneratedAt.After(list[j].GeneratedAt)
	})
}
