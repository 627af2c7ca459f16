package models

import "time"

// Asset is one line of a stored portfolio allocation.
type Asset struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	AllocationPct float64 `json:"allocation_pct"`
	Reason        string  `json:"reason"`
}

// Metrics are the indicative expected return and risk attached to a portfolio.
type Metrics struct {
	ExpectedReturn float64 `json:"expected_return"`
	Risk           float64 `json:"risk"`
}

// Portfolio is a generated portfolio persisted for a user.
type Portfolio struct {
	PortfolioID       string         `json:"portfolio_id"`
	UserID            string         `json:"user_id"`
	RiskLevel         string         `json:"risk_level"`
	InvestmentGoal    string         `json:"investment_goal,omitempty"`
	Preferences       map[string]any `json:"preferences,omitempty"`
	Assets            []Asset        `json:"assets"`
	Metrics           Metrics        `json:"metrics"`
	SimulationHistory []Simulation   `json:"simulation_history"`
	GeneratedAt       time.Time      `json:"generated_at"`
	ModifiedAt        time.Time      `json:"modified_at"`
}

// SimulationParams are the inputs to a growth projection.
type SimulationParams struct {
	Amount              float64 `json:"amount"`
	Years               int     `json:"years"`
	MonthlyContribution float64 `json:"monthly_contribution"`
}

// ProjectionPoint is the projected value at the end of a year.
type ProjectionPoint struct {
	Year        int     `json:"year"`
	Contributed float64 `json:"contributed"`
	Expected    float64 `json:"expected"`
	Pessimistic float64 `json:"pessimistic"`
	Optimistic  float64 `json:"optimistic"`
}

// SimulationResult is the outcome of a projection.
type SimulationResult struct {
	FinalExpected    float64           `json:"final_expected"`
	FinalPessimistic float64           `json:"final_pessimistic"`
	FinalOptimistic  float64           `json:"final_optimistic"`
	TotalContributed float64           `json:"total_contributed"`
	Points           []ProjectionPoint `json:"points"`
}

// Simulation is one entry of a portfolio's simulation history.
type Simulation struct {
	SimulationID string           `json:"simulation_id"`
	Timestamp    time.Time        `json:"timestamp"`
	Params       SimulationParams `json:"params"`
	Result       SimulationResult `json:"result"`
}

// SimulationRecord flattens a simulation with its owning portfolio for admin listings.
type SimulationRecord struct {
	PortfolioID string `json:"portfolio_id"`
	UserID      string `json:"user_id"`
	Simulation
}
