package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// Projection defaults and limits.
const (
	DefaultAmount = 10000
	DefaultYears  = 5
	MaxYears      = 50
)

// ErrInvalidParams is returned for negative simulation inputs.
var ErrInvalidParams = errors.New("invalid simulation parameters")

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// ResolveParams applies defaults and limits to params.
func ResolveParams(params models.SimulationParams) (models.SimulationParams, error) {
	if params.Amount < 0 {
		return params, fmt.Errorf("%w: amount must not be negative", ErrInvalidParams)
	}
	if params.MonthlyContribution < 0 {
		return params, fmt.Errorf("%w: monthly_contribution must not be negative", ErrInvalidParams)
	}
	if params.Years < 0 {
		return params, fmt.Errorf("%w: years must not be negative", ErrInvalidParams)
	}
	if params.Amount == 0 {
		params.Amount = DefaultAmount
	}
	if params.Years == 0 {
		params.Years = DefaultYears
	}
	if params.Years > MaxYears {
		params.Years = MaxYears
	}
	return params, nil
}

// Project compounds the initial amount yearly at the expected return, and at
// the expected return minus and plus the risk figure. Contributions for a
// year are added at its end. Values never drop below zero and are reported
// at two decimal places; compounding keeps full precision.
func Project(params models.SimulationParams, metrics models.Metrics) models.SimulationResult {
	amount := decimal.NewFromFloat(params.Amount)
	yearly := decimal.NewFromFloat(params.MonthlyContribution).Mul(twelve)
	rate := decimal.NewFromFloat(metrics.ExpectedReturn)
	risk := decimal.NewFromFloat(metrics.Risk)

	growth := [3]decimal.Decimal{
		one.Add(rate),
		one.Add(rate.Sub(risk)),
		one.Add(rate.Add(risk)),
	}
	balance := [3]decimal.Decimal{amount, amount, amount}
	contributed := amount

	points := make([]models.ProjectionPoint, 0, params.Years+1)
	points = append(points, point(0, contributed, balance))

	for year := 1; year <= params.Years; year++ {
		for i := range balance {
			balance[i] = balance[i].Mul(growth[i]).Add(yearly)
			if balance[i].IsNegative() {
				balance[i] = decimal.Zero
			}
		}
		contributed = contributed.Add(yearly)
		points = append(points, point(year, contributed, balance))
	}

	last := points[len(points)-1]
	return models.SimulationResult{
		FinalExpected:    last.Expected,
		FinalPessimistic: last.Pessimistic,
		FinalOptimistic:  last.Optimistic,
		TotalContributed: last.Contributed,
		Points:           points,
	}
}

func point(year int, contributed decimal.Decimal, balance [3]decimal.Decimal) models.ProjectionPoint {
	return models.ProjectionPoint{
		Year:        year,
		Contributed: contributed.Round(2).InexactFloat64(),
		Expected:    balance[0].Round(2).InexactFloat64(),
		Pessimistic: balance[1].Round(2).InexactFloat64(),
		Optimistic:  balance[2].Round(2).InexactFloat64(),
	}
}

// Simulate projects a portfolio owned by userID and appends the result to its history
func (s *Service) Simulate(ctx context.Context, userID, portfolioID string, params models.SimulationParams) (*models.Simulation, error) {
	resolved, err := ResolveParams(params)
	if err != nil {
		return nil, err
	}

	p, err := s.storage.PortfolioStore().Get(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, interfaces.ErrNotFound
	}

	sim := models.Simulation{
		SimulationID: uuid.New().String(),
		Timestamp:    s.now().UTC().Truncate(time.Millisecond),
		Params:       resolved,
		Result:       Project(resolved, p.Metrics),
	}

	if err := s.storage.PortfolioStore().AppendSimulation(ctx, portfolioID, userID, sim); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "", models.AuditSimulationRun, portfolioID)
	return &sim, nil
}
